// Package tags provides the taxonomy model: tags, immutable snapshots,
// the lookup index used for classification, and the cached blob-backed
// snapshot store.
package tags

import "time"

// Type partitions the taxonomy into its category axes.
type Type string

const (
	TypeHorizon  Type = "Horizon"
	TypePractice Type = "Practice"
	TypeStream   Type = "Stream"
	TypeRole     Type = "Role"
	TypeVendor   Type = "Vendor"
	TypeProduct  Type = "Product"
	TypeTopic    Type = "Topic"
)

// Types lists all valid tag types.
var Types = []Type{
	TypeHorizon,
	TypePractice,
	TypeStream,
	TypeRole,
	TypeVendor,
	TypeProduct,
	TypeTopic,
}

// HorizonNames is the fixed value set for Horizon tags.
var HorizonNames = []string{"Solve", "Plan", "Explore"}

// Valid reports whether t is a known tag type.
func (t Type) Valid() bool {
	for _, known := range Types {
		if t == known {
			return true
		}
	}
	return false
}

// Tag is a single taxonomy entry.
type Tag struct {
	ID                 string    `json:"id"`
	Name               string    `json:"name"`
	Aliases            []string  `json:"aliases"`
	ShortForm          string    `json:"short_form"`
	Type               Type      `json:"type"`
	PublicDescription  string    `json:"public_description"`
	InternalCommentary string    `json:"internal_commentary"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// Snapshot is an immutable, versioned export of the full taxonomy.
// It is swapped atomically on refresh, never mutated in place.
type Snapshot struct {
	Version       string    `json:"version"`
	SyncTimestamp time.Time `json:"sync_timestamp"`
	Source        string    `json:"source"`
	TagsCount     int       `json:"tags_count"`
	Tags          []Tag     `json:"tags"`
}

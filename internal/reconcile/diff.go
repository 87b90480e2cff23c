package reconcile

import (
	"slices"

	"github.com/fathomline/taxa/internal/tags"
)

// Change records an updated tag and which fields changed.
type Change struct {
	Tag           tags.Tag `json:"tag"`
	ChangedFields []string `json:"changed_fields"`
}

// Diff is the result of comparing a fresh tag set against the current
// snapshot, keyed by tag ID.
type Diff struct {
	Added     []tags.Tag
	Updated   []Change
	Removed   []tags.Tag
	Unchanged int
}

// DiffSnapshot compares the fresh tag set against the tags of the
// current snapshot. A nil current snapshot treats everything as added.
func DiffSnapshot(current *tags.Snapshot, fresh []tags.Tag) Diff {
	existing := make(map[string]tags.Tag)
	if current != nil {
		for _, t := range current.Tags {
			existing[t.ID] = t
		}
	}

	var diff Diff
	seen := make(map[string]bool, len(fresh))

	for _, t := range fresh {
		seen[t.ID] = true

		prev, ok := existing[t.ID]
		if !ok {
			diff.Added = append(diff.Added, t)
			continue
		}

		if fields := changedFields(prev, t); len(fields) > 0 {
			diff.Updated = append(diff.Updated, Change{Tag: t, ChangedFields: fields})
		} else {
			diff.Unchanged++
		}
	}

	if current != nil {
		for _, t := range current.Tags {
			if !seen[t.ID] {
				diff.Removed = append(diff.Removed, t)
			}
		}
	}

	return diff
}

func changedFields(prev, next tags.Tag) []string {
	var fields []string

	if prev.Name != next.Name {
		fields = append(fields, "name")
	}
	if !slices.Equal(prev.Aliases, next.Aliases) {
		fields = append(fields, "aliases")
	}
	if prev.ShortForm != next.ShortForm {
		fields = append(fields, "short_form")
	}
	if prev.Type != next.Type {
		fields = append(fields, "type")
	}
	if prev.PublicDescription != next.PublicDescription {
		fields = append(fields, "public_description")
	}
	if prev.InternalCommentary != next.InternalCommentary {
		fields = append(fields, "internal_commentary")
	}

	return fields
}

// Package classify turns raw model output into validated, enriched
// classification results against the tag taxonomy.
package classify

import (
	"encoding/json"

	"github.com/fathomline/taxa/internal/tags"
)

// TagRef is a resolved classification entry.
type TagRef struct {
	Name       string         `json:"name"`
	ShortForm  string         `json:"short_form,omitempty"`
	Confidence float64        `json:"confidence"`
	MatchedVia tags.MatchKind `json:"matched_via"`
}

// Result is the enriched classification for a single document.
// After enrichment, Horizon and Practice are either both present and
// valid or the result fails ValidateRules.
type Result struct {
	Horizon  *TagRef  `json:"horizon"`
	Practice *TagRef  `json:"practice"`
	Streams  []TagRef `json:"streams"`
	Roles    []TagRef `json:"roles"`
	Vendors  []TagRef `json:"vendors"`
	Products []TagRef `json:"products"`
	Topics   []TagRef `json:"topics"`
}

// RawEntry is a single candidate from the model. The model emits either
// a bare name string or an object with name and confidence; both decode
// into the same form, with confidence coerced to float64.
type RawEntry struct {
	Name       string
	Confidence float64
}

// UnmarshalJSON accepts "name" or {"name": ..., "confidence": ...}.
func (e *RawEntry) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		e.Name = s
		return nil
	}

	var obj struct {
		Name       string      `json:"name"`
		Confidence json.Number `json:"confidence"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}

	e.Name = obj.Name
	if obj.Confidence != "" {
		if f, err := obj.Confidence.Float64(); err == nil {
			e.Confidence = f
		}
	}
	return nil
}

// RawOutput is the typed intermediate form of the model's JSON response,
// parsed before any taxonomy rules apply.
type RawOutput struct {
	Horizon  *RawEntry  `json:"horizon"`
	Practice *RawEntry  `json:"practice"`
	Streams  []RawEntry `json:"streams"`
	Roles    []RawEntry `json:"roles"`
	Vendors  []RawEntry `json:"vendors"`
	Products []RawEntry `json:"products"`
	Topics   []RawEntry `json:"topics"`
}

// Dropped records a candidate entry that enrichment could not use,
// preserving observability into what the model reported.
type Dropped struct {
	Category string `json:"category"`
	Name     string `json:"name"`
	Reason   string `json:"reason"`
}

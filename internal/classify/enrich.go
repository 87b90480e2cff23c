package classify

import (
	"fmt"
	"slices"

	"github.com/fathomline/taxa/internal/tags"
)

const (
	horizonFallbackName        = "Solve"
	horizonFallbackConfidence  = 0.5
	practiceFallbackConfidence = 0.3
)

// Enrich reconciles raw model output against the tag index and the
// mandatory taxonomy rules. Horizon and Practice fall back to defaults
// when absent or unresolvable; optional-category entries that do not
// resolve to a tag of the expected type are dropped, never fatal. The
// returned diagnostics list every dropped or suspect entry.
func Enrich(raw *RawOutput, idx *tags.Index) (*Result, []Dropped) {
	var dropped []Dropped

	result := &Result{
		Streams:  []TagRef{},
		Roles:    []TagRef{},
		Vendors:  []TagRef{},
		Products: []TagRef{},
		Topics:   []TagRef{},
	}

	result.Horizon = enrichHorizon(raw.Horizon, idx, &dropped)
	result.Practice = enrichPractice(raw.Practice, idx, &dropped)

	result.Streams = enrichOptional("streams", raw.Streams, tags.TypeStream, idx, &dropped)
	result.Roles = enrichOptional("roles", raw.Roles, tags.TypeRole, idx, &dropped)
	result.Vendors = enrichOptional("vendors", raw.Vendors, tags.TypeVendor, idx, &dropped)
	result.Products = enrichOptional("products", raw.Products, tags.TypeProduct, idx, &dropped)
	result.Topics = enrichOptional("topics", raw.Topics, tags.TypeTopic, idx, &dropped)

	return result, dropped
}

func enrichHorizon(entry *RawEntry, idx *tags.Index, dropped *[]Dropped) *TagRef {
	if entry != nil {
		tag, kind := idx.Resolve(entry.Name)
		if tag != nil && tag.Type == tags.TypeHorizon && slices.Contains(tags.HorizonNames, tag.Name) {
			return newRef(tag, entry.Confidence, kind, "horizon", dropped)
		}
		*dropped = append(*dropped, Dropped{
			Category: "horizon",
			Name:     entry.Name,
			Reason:   "does not resolve to a valid horizon tag",
		})
	}

	fallback := idx.LookupByName(horizonFallbackName)
	if fallback == nil || fallback.Type != tags.TypeHorizon {
		return nil
	}

	return &TagRef{
		Name:       fallback.Name,
		ShortForm:  fallback.ShortForm,
		Confidence: horizonFallbackConfidence,
		MatchedVia: tags.MatchDefault,
	}
}

func enrichPractice(entry *RawEntry, idx *tags.Index, dropped *[]Dropped) *TagRef {
	if entry != nil {
		tag, kind := idx.Resolve(entry.Name)
		if tag != nil && tag.Type == tags.TypePractice {
			return newRef(tag, entry.Confidence, kind, "practice", dropped)
		}
		*dropped = append(*dropped, Dropped{
			Category: "practice",
			Name:     entry.Name,
			Reason:   "does not resolve to a practice tag",
		})
	}

	practices := idx.ByType(tags.TypePractice)
	if len(practices) == 0 {
		return nil
	}

	first := practices[0]
	return &TagRef{
		Name:       first.Name,
		ShortForm:  first.ShortForm,
		Confidence: practiceFallbackConfidence,
		MatchedVia: tags.MatchDefault,
	}
}

func enrichOptional(category string, entries []RawEntry, want tags.Type, idx *tags.Index, dropped *[]Dropped) []TagRef {
	refs := make([]TagRef, 0, len(entries))

	for _, entry := range entries {
		tag, kind := idx.Resolve(entry.Name)
		if tag == nil || tag.Type != want {
			*dropped = append(*dropped, Dropped{
				Category: category,
				Name:     entry.Name,
				Reason:   fmt.Sprintf("does not resolve to a %s tag", want),
			})
			continue
		}
		refs = append(refs, *newRef(tag, entry.Confidence, kind, category, dropped))
	}

	return refs
}

// newRef builds a TagRef carrying the model-reported confidence as-is.
// Out-of-range values are preserved but recorded in diagnostics.
func newRef(tag *tags.Tag, confidence float64, kind tags.MatchKind, category string, dropped *[]Dropped) *TagRef {
	if confidence < 0 || confidence > 1 {
		*dropped = append(*dropped, Dropped{
			Category: category,
			Name:     tag.Name,
			Reason:   fmt.Sprintf("confidence %g outside [0,1], stored as reported", confidence),
		})
	}
	return &TagRef{
		Name:       tag.Name,
		ShortForm:  tag.ShortForm,
		Confidence: confidence,
		MatchedVia: kind,
	}
}

// ValidateRules re-checks the mandatory taxonomy rules on an enriched
// result. It is the caller-visible gate between a structurally sound
// result and a usable one.
func ValidateRules(result *Result) (bool, []string) {
	var errs []string

	if result.Horizon == nil {
		errs = append(errs, "horizon is required")
	} else if !slices.Contains(tags.HorizonNames, result.Horizon.Name) {
		errs = append(errs, fmt.Sprintf("horizon %q is not one of %v", result.Horizon.Name, tags.HorizonNames))
	}

	if result.Practice == nil {
		errs = append(errs, "practice is required")
	}

	return len(errs) == 0, errs
}

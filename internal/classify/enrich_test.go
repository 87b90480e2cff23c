package classify

import (
	"strings"
	"testing"

	"github.com/fathomline/taxa/internal/tags"
)

func testIndex() *tags.Index {
	return tags.BuildIndex([]tags.Tag{
		{ID: "1", Name: "Solve", Type: tags.TypeHorizon, ShortForm: "SLV"},
		{ID: "2", Name: "Plan", Type: tags.TypeHorizon},
		{ID: "3", Name: "Explore", Type: tags.TypeHorizon},
		{ID: "4", Name: "Engineering", Type: tags.TypePractice, Aliases: []string{"eng"}, ShortForm: "ENG"},
		{ID: "5", Name: "Design", Type: tags.TypePractice},
		{ID: "6", Name: "Cloud", Type: tags.TypeStream},
		{ID: "7", Name: "Architect", Type: tags.TypeRole},
	})
}

func TestEnrichResolvesValidOutput(t *testing.T) {
	raw := &RawOutput{
		Horizon:  &RawEntry{Name: "Plan", Confidence: 0.9},
		Practice: &RawEntry{Name: "eng", Confidence: 0.8},
		Streams:  []RawEntry{{Name: "cloud", Confidence: 0.7}},
	}

	result, dropped := Enrich(raw, testIndex())

	if result.Horizon == nil || result.Horizon.Name != "Plan" {
		t.Fatalf("Horizon = %v, want Plan", result.Horizon)
	}
	if result.Horizon.MatchedVia != tags.MatchPrimary {
		t.Errorf("Horizon matched_via = %q, want primary", result.Horizon.MatchedVia)
	}
	if result.Practice == nil || result.Practice.Name != "Engineering" {
		t.Fatalf("Practice = %v, want Engineering", result.Practice)
	}
	if result.Practice.MatchedVia != tags.MatchAlias {
		t.Errorf("Practice matched_via = %q, want alias", result.Practice.MatchedVia)
	}
	if len(result.Streams) != 1 || result.Streams[0].Name != "Cloud" {
		t.Errorf("Streams = %v, want [Cloud]", result.Streams)
	}
	if len(dropped) != 0 {
		t.Errorf("dropped = %v, want none", dropped)
	}
}

func TestEnrichHorizonFallback(t *testing.T) {
	tests := []struct {
		name string
		raw  *RawOutput
	}{
		{"missing horizon", &RawOutput{Practice: &RawEntry{Name: "Design"}}},
		{"unresolvable horizon", &RawOutput{
			Horizon:  &RawEntry{Name: "Unknown", Confidence: 0.9},
			Practice: &RawEntry{Name: "Design"},
		}},
		{"horizon resolves to wrong type", &RawOutput{
			Horizon:  &RawEntry{Name: "Engineering", Confidence: 0.9},
			Practice: &RawEntry{Name: "Design"},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, _ := Enrich(tt.raw, testIndex())

			if result.Horizon == nil {
				t.Fatal("Horizon is nil, want Solve fallback")
			}
			if result.Horizon.Name != "Solve" {
				t.Errorf("Horizon = %q, want Solve", result.Horizon.Name)
			}
			if result.Horizon.Confidence != 0.5 {
				t.Errorf("Horizon confidence = %g, want 0.5", result.Horizon.Confidence)
			}
			if result.Horizon.MatchedVia != tags.MatchDefault {
				t.Errorf("Horizon matched_via = %q, want default", result.Horizon.MatchedVia)
			}
		})
	}
}

func TestEnrichPracticeFallback(t *testing.T) {
	result, _ := Enrich(&RawOutput{Horizon: &RawEntry{Name: "Solve", Confidence: 1}}, testIndex())

	if result.Practice == nil {
		t.Fatal("Practice is nil, want fallback")
	}
	// first practice in snapshot order
	if result.Practice.Name != "Engineering" {
		t.Errorf("Practice = %q, want Engineering", result.Practice.Name)
	}
	if result.Practice.Confidence != 0.3 {
		t.Errorf("Practice confidence = %g, want 0.3", result.Practice.Confidence)
	}
	if result.Practice.MatchedVia != tags.MatchDefault {
		t.Errorf("Practice matched_via = %q, want default", result.Practice.MatchedVia)
	}
}

func TestEnrichDropsUnresolvableOptional(t *testing.T) {
	raw := &RawOutput{
		Horizon:  &RawEntry{Name: "Solve", Confidence: 1},
		Practice: &RawEntry{Name: "Design", Confidence: 1},
		Streams:  []RawEntry{{Name: "Nope"}, {Name: "Architect"}},
	}

	result, dropped := Enrich(raw, testIndex())

	if len(result.Streams) != 0 {
		t.Errorf("Streams = %v, want empty", result.Streams)
	}
	// both the unknown name and the wrong-type match are dropped
	if len(dropped) != 2 {
		t.Fatalf("dropped = %v, want 2 entries", dropped)
	}
	for _, d := range dropped {
		if d.Category != "streams" {
			t.Errorf("dropped category = %q, want streams", d.Category)
		}
	}
}

func TestEnrichPreservesOutOfRangeConfidence(t *testing.T) {
	raw := &RawOutput{
		Horizon:  &RawEntry{Name: "Solve", Confidence: 1.5},
		Practice: &RawEntry{Name: "Design", Confidence: 0.9},
	}

	result, dropped := Enrich(raw, testIndex())

	if result.Horizon.Confidence != 1.5 {
		t.Errorf("Horizon confidence = %g, want 1.5 as reported", result.Horizon.Confidence)
	}

	found := false
	for _, d := range dropped {
		if d.Category == "horizon" && strings.Contains(d.Reason, "outside [0,1]") {
			found = true
		}
	}
	if !found {
		t.Errorf("dropped = %v, want out-of-range diagnostic for horizon", dropped)
	}
}

func TestValidateRules(t *testing.T) {
	tests := []struct {
		name   string
		result *Result
		ok     bool
	}{
		{"valid", &Result{
			Horizon:  &TagRef{Name: "Solve"},
			Practice: &TagRef{Name: "Engineering"},
		}, true},
		{"missing horizon", &Result{Practice: &TagRef{Name: "Engineering"}}, false},
		{"missing practice", &Result{Horizon: &TagRef{Name: "Solve"}}, false},
		{"horizon outside enum", &Result{
			Horizon:  &TagRef{Name: "Build"},
			Practice: &TagRef{Name: "Engineering"},
		}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, errs := ValidateRules(tt.result)
			if ok != tt.ok {
				t.Errorf("ValidateRules() = %v (%v), want %v", ok, errs, tt.ok)
			}
			if !tt.ok && len(errs) == 0 {
				t.Error("invalid result produced no error messages")
			}
		})
	}
}

package reconcile

import (
	"testing"

	"github.com/fathomline/taxa/internal/tags"
)

func TestValidateTag(t *testing.T) {
	tests := []struct {
		name     string
		tag      tags.Tag
		problems int
	}{
		{"valid practice", tags.Tag{ID: "1", Name: "Engineering", Type: tags.TypePractice}, 0},
		{"valid horizon", tags.Tag{ID: "2", Name: "Solve", Type: tags.TypeHorizon}, 0},
		{"missing id", tags.Tag{Name: "Engineering", Type: tags.TypePractice}, 1},
		{"missing name", tags.Tag{ID: "1", Type: tags.TypePractice}, 1},
		{"unknown type", tags.Tag{ID: "1", Name: "X", Type: "Category"}, 1},
		{"horizon outside enum", tags.Tag{ID: "1", Name: "Build", Type: tags.TypeHorizon}, 1},
		{"everything wrong", tags.Tag{Type: "Category"}, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			problems := ValidateTag(tt.tag)
			if len(problems) != tt.problems {
				t.Errorf("ValidateTag problems = %v, want %d", problems, tt.problems)
			}
		})
	}
}

package reconcile

import (
	"fmt"
	"slices"

	"github.com/fathomline/taxa/internal/tags"
)

// ValidateTag checks a fetched tag against the taxonomy rules. It
// returns every problem found rather than stopping at the first.
func ValidateTag(t tags.Tag) []string {
	var problems []string

	if t.ID == "" {
		problems = append(problems, "id is required")
	}
	if t.Name == "" {
		problems = append(problems, "name is required")
	}
	if !t.Type.Valid() {
		problems = append(problems, fmt.Sprintf("unknown type %q", t.Type))
	}
	if t.Type == tags.TypeHorizon && !slices.Contains(tags.HorizonNames, t.Name) {
		problems = append(problems, fmt.Sprintf("horizon name %q not in %v", t.Name, tags.HorizonNames))
	}

	return problems
}

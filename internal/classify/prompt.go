package classify

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/fathomline/taxa/internal/tags"
)

const (
	// PromptCharBudget caps the document text embedded in the prompt.
	PromptCharBudget = 100_000
	// TruncationMarker is appended when document text exceeds the budget.
	TruncationMarker = "\n[Document truncated for analysis]"
)

const systemInstruction = `You are a document classification engine. Classify the document below against the provided taxonomy.

Respond with a single JSON object of this shape:
{
  "horizon": {"name": "...", "confidence": 0.0},
  "practice": {"name": "...", "confidence": 0.0},
  "streams": [{"name": "...", "confidence": 0.0}],
  "roles": [{"name": "...", "confidence": 0.0}],
  "vendors": [{"name": "...", "confidence": 0.0}],
  "products": [{"name": "...", "confidence": 0.0}],
  "topics": [{"name": "...", "confidence": 0.0}]
}

Rules:
- horizon must be exactly one of: Solve, Plan, Explore.
- practice must be exactly one tag of type Practice.
- Use only tag names or aliases that appear in the taxonomy.
- Omit optional categories you cannot support with evidence from the document.
- confidence is your certainty in [0.0, 1.0].

Respond with JSON only, no surrounding prose.`

// BuildPrompt composes the classification prompt from document text and
// the index's prompt view. Text beyond the character budget is truncated
// with a marker so the model knows the document is incomplete.
func BuildPrompt(text string, idx *tags.Index) (string, error) {
	taxonomy, err := json.Marshal(idx.ForPrompt())
	if err != nil {
		return "", fmt.Errorf("encode taxonomy: %w", err)
	}

	if len(text) > PromptCharBudget {
		text = text[:PromptCharBudget] + TruncationMarker
	}

	var b strings.Builder
	b.WriteString(systemInstruction)
	b.WriteString("\n\nTAXONOMY:\n")
	b.Write(taxonomy)
	b.WriteString("\n\nDOCUMENT:\n")
	b.WriteString(text)

	return b.String(), nil
}

package formatting

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrParseFailed indicates the content was not valid JSON, bare or
// inside a markdown code fence.
var ErrParseFailed = errors.New("failed to parse response")

// Parse unmarshals model output into T. Models frequently wrap JSON in
// a ```json fence; if the content does not parse directly, the fenced
// body is tried before giving up with ErrParseFailed.
func Parse[T any](content string) (T, error) {
	var result T
	content = strings.TrimSpace(content)

	if err := json.Unmarshal([]byte(content), &result); err == nil {
		return result, nil
	}

	if fenced, ok := stripFence(content); ok {
		if err := json.Unmarshal([]byte(fenced), &result); err == nil {
			return result, nil
		}
	}

	return result, fmt.Errorf("%w: %s", ErrParseFailed, content)
}

func stripFence(content string) (string, bool) {
	start := strings.Index(content, "```")
	if start == -1 {
		return "", false
	}

	body := content[start+3:]
	body = strings.TrimPrefix(body, "json")

	end := strings.Index(body, "```")
	if end == -1 {
		return "", false
	}

	return strings.TrimSpace(body[:end]), true
}

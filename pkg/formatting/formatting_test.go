package formatting

import (
	"errors"
	"testing"
)

func TestParseBytes(t *testing.T) {
	tests := []struct {
		input string
		want  int64
	}{
		{"0", 0},
		{"1024", 1024},
		{"5MB", 5 << 20},
		{"50MB", 50 << 20},
		{"1.5KB", 1536},
		{"2 GB", 2 << 30},
		{"10kb", 10 << 10},
		{" 512B ", 512},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseBytes(tt.input)
			if err != nil {
				t.Fatalf("ParseBytes(%q) error: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ParseBytes(%q) = %d, want %d", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseBytesInvalid(t *testing.T) {
	for _, input := range []string{"", "MB", "5XB", "abc"} {
		if _, err := ParseBytes(input); err == nil {
			t.Errorf("ParseBytes(%q) succeeded, want error", input)
		}
	}
}

type payload struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"bare json", `{"name": "alpha", "count": 3}`},
		{"fenced", "```json\n{\"name\": \"alpha\", \"count\": 3}\n```"},
		{"fenced no language", "```\n{\"name\": \"alpha\", \"count\": 3}\n```"},
		{"prose around fence", "Here is the result:\n```json\n{\"name\": \"alpha\", \"count\": 3}\n```\nDone."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse[payload](tt.content)
			if err != nil {
				t.Fatalf("Parse() error: %v", err)
			}
			if got.Name != "alpha" || got.Count != 3 {
				t.Errorf("Parse() = %+v", got)
			}
		})
	}
}

func TestParseFailure(t *testing.T) {
	_, err := Parse[payload]("not json at all")
	if !errors.Is(err, ErrParseFailed) {
		t.Errorf("Parse() error = %v, want ErrParseFailed", err)
	}
}

package extract

import (
	"errors"
	"strings"
	"testing"
)

func TestSupported(t *testing.T) {
	tests := []struct {
		mime string
		want bool
	}{
		{"application/pdf", true},
		{"text/plain", true},
		{"text/plain; charset=utf-8", true},
		{"TEXT/PLAIN", true},
		{"image/png", true},
		{"application/vnd.openxmlformats-officedocument.wordprocessingml.document", true},
		{"application/zip", false},
		{"text/html", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := Supported(tt.mime); got != tt.want {
			t.Errorf("Supported(%q) = %v, want %v", tt.mime, got, tt.want)
		}
	}
}

func TestValidateText(t *testing.T) {
	if err := ValidateText(strings.Repeat("x", MinTextLength)); err != nil {
		t.Errorf("text at minimum length rejected: %v", err)
	}
	if err := ValidateText(strings.Repeat("x", MinTextLength-1)); !errors.Is(err, ErrTextTooShort) {
		t.Errorf("text below minimum = %v, want ErrTextTooShort", err)
	}
	// surrounding whitespace does not count toward the minimum
	padded := "   " + strings.Repeat("x", MinTextLength-1) + "   "
	if err := ValidateText(padded); !errors.Is(err, ErrTextTooShort) {
		t.Errorf("padded short text = %v, want ErrTextTooShort", err)
	}
}

func TestPlaintextExtract(t *testing.T) {
	var p Plaintext

	text, err := p.ExtractText([]byte("hello world"), "text/plain; charset=utf-8", "doc.txt")
	if err != nil {
		t.Fatalf("ExtractText: %v", err)
	}
	if text != "hello world" {
		t.Errorf("text = %q", text)
	}

	if _, err := p.ExtractText([]byte("x"), "application/zip", "doc.zip"); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("unsupported format = %v, want ErrUnsupportedFormat", err)
	}

	if _, err := p.ExtractText([]byte("%PDF-1.7"), "application/pdf", "doc.pdf"); !errors.Is(err, ErrExtractionFailed) {
		t.Errorf("pdf without extractor = %v, want ErrExtractionFailed", err)
	}

	if _, err := p.ExtractText([]byte{0xff, 0xfe, 0xfd}, "text/plain", "doc.txt"); !errors.Is(err, ErrExtractionFailed) {
		t.Errorf("invalid UTF-8 = %v, want ErrExtractionFailed", err)
	}
}

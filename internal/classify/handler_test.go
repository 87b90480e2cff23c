package classify

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/fathomline/taxa/internal/extract"
	"github.com/fathomline/taxa/internal/tags"
)

type stubStore struct {
	snap *tags.Snapshot
}

func (s *stubStore) Load(ctx context.Context) (*tags.Snapshot, error) {
	return s.snap, nil
}

func (s *stubStore) Publish(ctx context.Context, snap *tags.Snapshot) error {
	s.snap = snap
	return nil
}

type stubInvoker struct {
	raw *RawOutput
	err error
}

func (s *stubInvoker) Invoke(ctx context.Context, text string, idx *tags.Index) (*RawOutput, error) {
	return s.raw, s.err
}

func (s *stubInvoker) Model() string { return "test-model" }

func testHandler(invoker Invoker) *Handler {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := &stubStore{snap: &tags.Snapshot{Version: "v1", Tags: []tags.Tag{
		{ID: "1", Name: "Solve", Type: tags.TypeHorizon},
		{ID: "2", Name: "Plan", Type: tags.TypeHorizon},
		{ID: "3", Name: "Explore", Type: tags.TypeHorizon},
		{ID: "4", Name: "Engineering", Type: tags.TypePractice},
	}}}
	cache := tags.NewCache(store, time.Hour, logger, nil)
	return NewHandler(cache, extract.Plaintext{}, invoker, logger, 1<<20)
}

func classifyRequest(t *testing.T, content, mime string) *http.Request {
	t.Helper()
	body := fmt.Sprintf(`{"filename": "doc.txt", "content_type": %q, "content_base64": %q}`,
		mime, base64.StdEncoding.EncodeToString([]byte(content)))
	r := httptest.NewRequest("POST", "/classify", strings.NewReader(body))
	r.Header.Set("Content-Type", "application/json")
	return r
}

func TestClassifySuccess(t *testing.T) {
	invoker := &stubInvoker{raw: &RawOutput{
		Horizon:  &RawEntry{Name: "Plan", Confidence: 0.9},
		Practice: &RawEntry{Name: "Engineering", Confidence: 0.8},
	}}
	h := testHandler(invoker)

	text := strings.Repeat("meaningful document content ", 5)
	rec := httptest.NewRecorder()
	h.Classify(rec, classifyRequest(t, text, "text/plain"))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body)
	}

	var resp SyncResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Status != "success" {
		t.Errorf("status = %q", resp.Status)
	}
	if resp.Classification == nil || resp.Classification.Horizon.Name != "Plan" {
		t.Errorf("classification = %+v", resp.Classification)
	}
	if resp.ModelUsed != "test-model" {
		t.Errorf("model_used = %q", resp.ModelUsed)
	}
	if resp.TextLength != len(text) {
		t.Errorf("text_length = %d, want %d", resp.TextLength, len(text))
	}
	if resp.Document.Filename != "doc.txt" {
		t.Errorf("document = %+v", resp.Document)
	}
}

func TestClassifyRejections(t *testing.T) {
	longText := strings.Repeat("x", 100)

	tests := []struct {
		name       string
		content    string
		mime       string
		wantStatus int
		wantCode   string
	}{
		{"unsupported format", longText, "application/zip", http.StatusUnsupportedMediaType, "UNSUPPORTED_FORMAT"},
		{"text too short", "tiny", "text/plain", http.StatusUnprocessableEntity, "TEXT_TOO_SHORT"},
		{"no extractor for format", longText, "application/pdf", http.StatusUnprocessableEntity, "EXTRACTION_FAILED"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := testHandler(&stubInvoker{raw: &RawOutput{}})

			rec := httptest.NewRecorder()
			h.Classify(rec, classifyRequest(t, tt.content, tt.mime))

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}

			var envelope struct {
				Status    string `json:"status"`
				ErrorCode string `json:"error_code"`
			}
			if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if envelope.Status != "error" || envelope.ErrorCode != tt.wantCode {
				t.Errorf("envelope = %+v, want error/%s", envelope, tt.wantCode)
			}
		})
	}
}

func TestClassifyOversizeDocument(t *testing.T) {
	invoker := &stubInvoker{raw: &RawOutput{}}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := &stubStore{snap: &tags.Snapshot{Tags: []tags.Tag{}}}
	cache := tags.NewCache(store, time.Hour, logger, nil)
	h := NewHandler(cache, extract.Plaintext{}, invoker, logger, 64)

	rec := httptest.NewRecorder()
	h.Classify(rec, classifyRequest(t, strings.Repeat("x", 65), "text/plain"))

	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("status = %d, want 413", rec.Code)
	}
}

func TestClassifyInvokerFailure(t *testing.T) {
	invoker := &stubInvoker{err: fmt.Errorf("%w: model unreachable", ErrClassificationFailed)}
	h := testHandler(invoker)

	rec := httptest.NewRecorder()
	h.Classify(rec, classifyRequest(t, strings.Repeat("x", 100), "text/plain"))

	if rec.Code != http.StatusBadGateway {
		t.Errorf("status = %d, want 502", rec.Code)
	}
}

package jobs

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

	"github.com/google/uuid"

	"github.com/fathomline/taxa/internal/auth"
	"github.com/fathomline/taxa/internal/classify"
	"github.com/fathomline/taxa/pkg/pagination"
)

type fakeSystem struct {
	created  *CreateCommand
	job      *Job
	ownedErr error
}

func (f *fakeSystem) Handler(d Dispatcher, syncThreshold, asyncMax int64) *Handler { return nil }

func (f *fakeSystem) Create(ctx context.Context, cmd CreateCommand) (*Job, error) {
	f.created = &cmd
	job := &Job{
		ID:        uuid.New(),
		Status:    StatusPending,
		Filename:  cmd.Filename,
		SizeBytes: int64(len(cmd.Data)),
		MIMEType:  cmd.MIMEType,
	}
	f.job = job
	return job, nil
}

func (f *fakeSystem) Get(ctx context.Context, id uuid.UUID) (*Job, error) {
	return f.job, nil
}

func (f *fakeSystem) GetOwned(ctx context.Context, id uuid.UUID, ownerKeyHash string) (*Job, error) {
	if f.ownedErr != nil {
		return nil, f.ownedErr
	}
	return f.job, nil
}

func (f *fakeSystem) List(ctx context.Context, ownerKeyHash string, page pagination.PageRequest) (*pagination.PageResult[Job], error) {
	return &pagination.PageResult[Job]{Data: []Job{}, Page: page.Page, PageSize: page.PageSize}, nil
}

func (f *fakeSystem) MarkProcessing(ctx context.Context, id uuid.UUID) error { return nil }

func (f *fakeSystem) Release(ctx context.Context, id uuid.UUID) error { return nil }

func (f *fakeSystem) UpdateProgress(ctx context.Context, id uuid.UUID, stage string, percent int) error {
	return nil
}

func (f *fakeSystem) Complete(ctx context.Context, id uuid.UUID, result *classify.Result, processingTimeMs int64) error {
	return nil
}

func (f *fakeSystem) Fail(ctx context.Context, id uuid.UUID, code, message string) error { return nil }

type fakeDispatcher struct {
	dispatched []uuid.UUID
	err        error
}

func (f *fakeDispatcher) Dispatch(ctx context.Context, id uuid.UUID) error {
	if f.err != nil {
		return f.err
	}
	f.dispatched = append(f.dispatched, id)
	return nil
}

func newTestHandler(sys System, dispatcher Dispatcher) *Handler {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	cfg := pagination.Config{DefaultPageSize: 20, MaxPageSize: 100}
	return NewHandler(sys, dispatcher, logger, cfg, 64, 1<<20)
}

func submitRequest(t *testing.T, size int, authenticated bool) *http.Request {
	t.Helper()
	content := strings.Repeat("x", size)
	body := fmt.Sprintf(`{"filename": "doc.txt", "content_type": "text/plain", "content_base64": %q}`,
		base64.StdEncoding.EncodeToString([]byte(content)))

	r := httptest.NewRequest("POST", "/jobs", strings.NewReader(body))
	r.Header.Set("Content-Type", "application/json")
	if authenticated {
		r = r.WithContext(auth.WithPrincipal(r.Context(), &auth.Principal{KeyHash: "owner-hash"}))
	}
	return r
}

func TestSubmitAccepted(t *testing.T) {
	sys := &fakeSystem{}
	dispatcher := &fakeDispatcher{}
	h := newTestHandler(sys, dispatcher)

	rec := httptest.NewRecorder()
	h.Submit(rec, submitRequest(t, 100, true))

	if rec.Code != http.StatusAccepted {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body)
	}

	var resp SubmitResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Status != StatusPending {
		t.Errorf("status = %q, want pending", resp.Status)
	}
	if resp.StatusURL != fmt.Sprintf("/api/jobs/%s", resp.JobID) {
		t.Errorf("status_url = %q", resp.StatusURL)
	}
	if resp.EstimatedCompletionSeconds != 10 {
		t.Errorf("estimate = %d, want floor of 10", resp.EstimatedCompletionSeconds)
	}

	if sys.created == nil || sys.created.OwnerKeyHash != "owner-hash" {
		t.Errorf("created = %+v, want owner hash recorded", sys.created)
	}
	if len(dispatcher.dispatched) != 1 || dispatcher.dispatched[0] != resp.JobID {
		t.Errorf("dispatched = %v, want the new job", dispatcher.dispatched)
	}
}

func TestSubmitRejections(t *testing.T) {
	tests := []struct {
		name          string
		size          int
		authenticated bool
		wantStatus    int
		wantCode      string
	}{
		{"unauthenticated", 100, false, http.StatusUnauthorized, "UNAUTHORIZED"},
		{"below sync threshold", 32, true, http.StatusBadRequest, "DOCUMENT_TOO_SMALL"},
		{"above async max", 1<<20 + 1, true, http.StatusRequestEntityTooLarge, "DOCUMENT_TOO_LARGE"},
		// so big the body cap cuts the read short of a parsed document
		{"body past read cap", 3 << 20, true, http.StatusRequestEntityTooLarge, "DOCUMENT_TOO_LARGE"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestHandler(&fakeSystem{}, &fakeDispatcher{})
			rec := httptest.NewRecorder()
			h.Submit(rec, submitRequest(t, tt.size, tt.authenticated))

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}

			var envelope struct {
				ErrorCode string `json:"error_code"`
			}
			if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if envelope.ErrorCode != tt.wantCode {
				t.Errorf("error_code = %q, want %q", envelope.ErrorCode, tt.wantCode)
			}
		})
	}
}

func statusRequest(id string) *http.Request {
	r := httptest.NewRequest("GET", "/jobs/"+id, nil)
	r.SetPathValue("id", id)
	return r.WithContext(auth.WithPrincipal(r.Context(), &auth.Principal{KeyHash: "owner-hash"}))
}

func TestStatusBodyByState(t *testing.T) {
	id := uuid.New()
	completed := time.Now()
	ms := int64(1234)

	tests := []struct {
		name     string
		job      *Job
		wantKeys []string
	}{
		{"pending", &Job{ID: id, Status: StatusPending, SizeBytes: 100},
			[]string{"estimated_completion_seconds"}},
		{"processing", &Job{ID: id, Status: StatusProcessing, Progress: &Progress{Stage: "classification", Percent: 50}},
			[]string{"progress"}},
		{"completed", &Job{ID: id, Status: StatusCompleted, Result: &classify.Result{}, ProcessingTimeMs: &ms, CompletedAt: &completed},
			[]string{"result", "processing_time_ms", "completed_at"}},
		{"failed", &Job{ID: id, Status: StatusFailed, Error: &JobError{Code: "EXTRACTION_FAILED", Message: "no text"}, FailedAt: &completed},
			[]string{"error", "failed_at"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestHandler(&fakeSystem{job: tt.job}, &fakeDispatcher{})

			rec := httptest.NewRecorder()
			h.Status(rec, statusRequest(id.String()))

			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d, body = %s", rec.Code, rec.Body)
			}

			var body map[string]any
			if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
				t.Fatalf("decode: %v", err)
			}
			for _, key := range tt.wantKeys {
				if _, ok := body[key]; !ok {
					t.Errorf("body missing %q: %v", key, body)
				}
			}
			if body["status"] != string(tt.job.Status) {
				t.Errorf("status field = %v, want %s", body["status"], tt.job.Status)
			}
		})
	}
}

func TestStatusErrors(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"not found", ErrNotFound, http.StatusNotFound, "JOB_NOT_FOUND"},
		{"foreign job", ErrForbidden, http.StatusForbidden, "FORBIDDEN"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestHandler(&fakeSystem{ownedErr: tt.err}, &fakeDispatcher{})

			rec := httptest.NewRecorder()
			h.Status(rec, statusRequest(uuid.NewString()))

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}

			var envelope struct {
				ErrorCode string `json:"error_code"`
			}
			if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if envelope.ErrorCode != tt.wantCode {
				t.Errorf("error_code = %q, want %q", envelope.ErrorCode, tt.wantCode)
			}
		})
	}
}

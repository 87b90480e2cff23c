package jobs

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/fathomline/taxa/internal/auth"
	"github.com/fathomline/taxa/internal/extract"
	"github.com/fathomline/taxa/internal/upload"
	"github.com/fathomline/taxa/pkg/handlers"
	"github.com/fathomline/taxa/pkg/pagination"
	"github.com/fathomline/taxa/pkg/routes"
)

// SubmitResponse acknowledges an accepted async submission.
type SubmitResponse struct {
	JobID                      uuid.UUID `json:"job_id"`
	Status                     Status    `json:"status"`
	StatusURL                  string    `json:"status_url"`
	EstimatedCompletionSeconds int       `json:"estimated_completion_seconds"`
}

// Handler provides HTTP endpoints for async job operations.
type Handler struct {
	sys           System
	dispatcher    Dispatcher
	logger        *slog.Logger
	pagination    pagination.Config
	syncThreshold int64
	asyncMax      int64
}

// NewHandler creates a job handler. Submissions at or below
// syncThreshold belong on the sync endpoint; above asyncMax they are
// rejected outright.
func NewHandler(
	sys System,
	dispatcher Dispatcher,
	logger *slog.Logger,
	pagination pagination.Config,
	syncThreshold, asyncMax int64,
) *Handler {
	return &Handler{
		sys:           sys,
		dispatcher:    dispatcher,
		logger:        logger.With("handler", "jobs"),
		pagination:    pagination,
		syncThreshold: syncThreshold,
		asyncMax:      asyncMax,
	}
}

// Routes returns the route group definition for job endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/jobs",
		Routes: []routes.Route{
			{Method: "POST", Pattern: "", Handler: h.Submit},
			{Method: "GET", Pattern: "", Handler: h.List},
			{Method: "GET", Pattern: "/{id}", Handler: h.Status},
		},
	}
}

// Submit accepts an async classification job: payload validation,
// durable pending record, dispatch, 202 with a polling URL.
func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.FromRequest(r)
	if !ok {
		handlers.RespondCode(w, h.logger, http.StatusUnauthorized,
			"UNAUTHORIZED", "authentication required", nil)
		return
	}

	doc, err := upload.FromRequest(r, upload.BodyLimit(h.asyncMax))
	switch {
	case errors.Is(err, upload.ErrTooLarge):
		handlers.RespondCode(w, h.logger, http.StatusRequestEntityTooLarge,
			"DOCUMENT_TOO_LARGE", "document exceeds the asynchronous size limit", map[string]any{
				"max_bytes": h.asyncMax,
			})
		return
	case err != nil:
		handlers.RespondCode(w, h.logger, http.StatusBadRequest,
			"INVALID_REQUEST", "could not parse document payload", nil)
		return
	}

	if doc.Size() > h.asyncMax {
		handlers.RespondCode(w, h.logger, http.StatusRequestEntityTooLarge,
			"DOCUMENT_TOO_LARGE", "document exceeds the asynchronous size limit", map[string]any{
				"max_bytes":  h.asyncMax,
				"size_bytes": doc.Size(),
			})
		return
	}

	if doc.Size() <= h.syncThreshold {
		handlers.RespondCode(w, h.logger, http.StatusBadRequest,
			"DOCUMENT_TOO_SMALL", "document fits the synchronous endpoint, submit it there", map[string]any{
				"sync_threshold_bytes": h.syncThreshold,
				"size_bytes":           doc.Size(),
			})
		return
	}

	if !extract.Supported(doc.MIME) {
		handlers.RespondCode(w, h.logger, http.StatusUnsupportedMediaType,
			"UNSUPPORTED_FORMAT", "document format is not supported", map[string]any{
				"mime_type": doc.MIME,
			})
		return
	}

	if pages := extract.PDFPageCount(h.logger, doc.Data, doc.MIME); pages != nil {
		h.logger.Info("pdf submission", "filename", doc.Filename, "pages", *pages)
	}

	job, err := h.sys.Create(r.Context(), CreateCommand{
		Data:         doc.Data,
		Filename:     doc.Filename,
		MIMEType:     doc.MIME,
		OwnerKeyHash: principal.KeyHash,
	})
	if err != nil {
		handlers.RespondCode(w, h.logger, MapHTTPStatus(err),
			"INTERNAL_ERROR", "could not create job", nil)
		return
	}

	if err := h.dispatcher.Dispatch(r.Context(), job.ID); err != nil {
		h.logger.Error("job dispatch failed", "id", job.ID, "error", err)
		handlers.RespondCode(w, h.logger, http.StatusInternalServerError,
			"INTERNAL_ERROR", "could not dispatch job", nil)
		return
	}

	handlers.RespondJSON(w, http.StatusAccepted, SubmitResponse{
		JobID:                      job.ID,
		Status:                     job.Status,
		StatusURL:                  fmt.Sprintf("/api/jobs/%s", job.ID),
		EstimatedCompletionSeconds: EstimateSeconds(job.SizeBytes),
	})
}

// Status returns the owner-scoped job state. The body shape varies by
// status: progress while processing, result or error once terminal.
func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.FromRequest(r)
	if !ok {
		handlers.RespondCode(w, h.logger, http.StatusUnauthorized,
			"UNAUTHORIZED", "authentication required", nil)
		return
	}

	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondCode(w, h.logger, http.StatusBadRequest,
			"INVALID_REQUEST", "invalid job id", nil)
		return
	}

	job, err := h.sys.GetOwned(r.Context(), id, principal.KeyHash)
	if err != nil {
		handlers.RespondCode(w, h.logger, MapHTTPStatus(err),
			statusErrorCode(err), err.Error(), nil)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, statusBody(job))
}

// List returns the owner's unexpired jobs, newest first.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.FromRequest(r)
	if !ok {
		handlers.RespondCode(w, h.logger, http.StatusUnauthorized,
			"UNAUTHORIZED", "authentication required", nil)
		return
	}

	page := pagination.PageRequestFromQuery(r.URL.Query(), h.pagination)

	result, err := h.sys.List(r.Context(), principal.KeyHash, page)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusInternalServerError, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

func statusBody(job *Job) map[string]any {
	body := map[string]any{
		"job_id":     job.ID,
		"status":     job.Status,
		"filename":   job.Filename,
		"created_at": job.CreatedAt,
	}

	switch job.Status {
	case StatusPending:
		body["estimated_completion_seconds"] = EstimateSeconds(job.SizeBytes)
	case StatusProcessing:
		if job.Progress != nil {
			body["progress"] = job.Progress
		}
	case StatusCompleted:
		body["result"] = job.Result
		body["processing_time_ms"] = job.ProcessingTimeMs
		body["completed_at"] = job.CompletedAt
	case StatusFailed:
		body["error"] = job.Error
		body["failed_at"] = job.FailedAt
	}

	return body
}

func statusErrorCode(err error) string {
	switch MapHTTPStatus(err) {
	case http.StatusNotFound:
		return "JOB_NOT_FOUND"
	case http.StatusForbidden:
		return "FORBIDDEN"
	default:
		return "INTERNAL_ERROR"
	}
}

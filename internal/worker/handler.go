package worker

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/fathomline/taxa/pkg/handlers"
	"github.com/fathomline/taxa/pkg/routes"
)

// TriggerRequest identifies the job a delivery is for.
type TriggerRequest struct {
	JobID uuid.UUID `json:"job_id"`
}

// Handler exposes the internal worker trigger endpoint.
type Handler struct {
	rt     *Runtime
	logger *slog.Logger
}

// NewHandler creates the worker trigger handler.
func NewHandler(rt *Runtime) *Handler {
	return &Handler{
		rt:     rt,
		logger: rt.Logger.With("handler", "worker"),
	}
}

// Routes returns the route group for the worker trigger.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/worker",
		Routes: []routes.Route{
			{Method: "POST", Pattern: "/trigger", Handler: h.Trigger},
		},
	}
}

// Trigger runs the pipeline for one job. Business failures still return
// 200 so the delivery mechanism does not retry them; only
// infrastructure errors produce a server-error status.
func (h *Handler) Trigger(w http.ResponseWriter, r *http.Request) {
	var req TriggerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.JobID == uuid.Nil {
		handlers.RespondCode(w, h.logger, http.StatusBadRequest,
			"INVALID_REQUEST", "job_id required", nil)
		return
	}

	if err := Execute(r.Context(), h.rt, req.JobID); err != nil {
		handlers.RespondCode(w, h.logger, http.StatusInternalServerError,
			"INTERNAL_ERROR", err.Error(), nil)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"job_id": req.JobID,
	})
}

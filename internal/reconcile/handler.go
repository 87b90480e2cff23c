package reconcile

import (
	"log/slog"
	"net/http"

	"github.com/fathomline/taxa/internal/auth"
	"github.com/fathomline/taxa/internal/tags"
	"github.com/fathomline/taxa/pkg/handlers"
	"github.com/fathomline/taxa/pkg/routes"
)

// Handler exposes taxonomy inspection and the admin sync trigger.
type Handler struct {
	reconciler *Reconciler
	cache      *tags.Cache
	logger     *slog.Logger
}

// NewHandler creates the tags handler.
func NewHandler(reconciler *Reconciler, cache *tags.Cache, logger *slog.Logger) *Handler {
	return &Handler{
		reconciler: reconciler,
		cache:      cache,
		logger:     logger.With("handler", "tags"),
	}
}

// Routes returns the route group for taxonomy endpoints. Sync is
// restricted to admin keys.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/tags",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "", Handler: h.Current},
			{Method: "POST", Pattern: "/sync", Handler: auth.RequireAdmin(h.logger, h.Sync)},
		},
	}
}

// Current returns the cached snapshot.
func (h *Handler) Current(w http.ResponseWriter, r *http.Request) {
	snap, err := h.cache.Snapshot(r.Context())
	if err != nil {
		status := tags.MapHTTPStatus(err)
		code := "INTERNAL_ERROR"
		if status == http.StatusNotFound {
			code = "SNAPSHOT_NOT_FOUND"
		}
		handlers.RespondCode(w, h.logger, status, code, err.Error(), nil)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, snap)
}

// Sync runs a full reconciliation against the external source.
func (h *Handler) Sync(w http.ResponseWriter, r *http.Request) {
	report, err := h.reconciler.Sync(r.Context())
	if err != nil {
		handlers.RespondCode(w, h.logger, MapHTTPStatus(err),
			"SYNC_FAILED", err.Error(), nil)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, report)
}

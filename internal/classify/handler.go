package classify

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/fathomline/taxa/internal/extract"
	"github.com/fathomline/taxa/internal/tags"
	"github.com/fathomline/taxa/internal/upload"
	"github.com/fathomline/taxa/pkg/handlers"
	"github.com/fathomline/taxa/pkg/routes"
)

// DocumentInfo echoes the submitted document's identity in responses.
type DocumentInfo struct {
	Filename string `json:"filename"`
	Size     int64  `json:"size"`
	MIME     string `json:"mime_type"`
}

// SyncResponse is the inline classification response.
type SyncResponse struct {
	Status           string       `json:"status"`
	Document         DocumentInfo `json:"document"`
	Classification   *Result      `json:"classification"`
	ProcessingTimeMs int64        `json:"processing_time_ms"`
	ModelUsed        string       `json:"model_used"`
	TextLength       int          `json:"text_length"`
}

// Handler serves the synchronous classification endpoint.
type Handler struct {
	cache     *tags.Cache
	extractor extract.Extractor
	invoker   Invoker
	logger    *slog.Logger
	syncMax   int64
}

// NewHandler creates the sync classification handler.
func NewHandler(
	cache *tags.Cache,
	extractor extract.Extractor,
	invoker Invoker,
	logger *slog.Logger,
	syncMax int64,
) *Handler {
	return &Handler{
		cache:     cache,
		extractor: extractor,
		invoker:   invoker,
		logger:    logger.With("handler", "classify"),
		syncMax:   syncMax,
	}
}

// Routes returns the route group for the sync classification endpoint.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/classify",
		Routes: []routes.Route{
			{Method: "POST", Pattern: "", Handler: h.Classify},
		},
	}
}

// Classify extracts text from the submitted document and classifies it
// inline. Documents above the sync threshold are rejected; the async
// endpoint handles those.
func (h *Handler) Classify(w http.ResponseWriter, r *http.Request) {
	started := time.Now()

	doc, err := upload.FromRequest(r, upload.BodyLimit(h.syncMax))
	switch {
	case errors.Is(err, upload.ErrTooLarge):
		handlers.RespondCode(w, h.logger, http.StatusRequestEntityTooLarge,
			"DOCUMENT_TOO_LARGE", "document exceeds the synchronous size limit", map[string]any{
				"max_bytes": h.syncMax,
			})
		return
	case err != nil:
		handlers.RespondCode(w, h.logger, http.StatusBadRequest,
			"INVALID_REQUEST", "could not parse document payload", nil)
		return
	}

	if doc.Size() > h.syncMax {
		handlers.RespondCode(w, h.logger, http.StatusRequestEntityTooLarge,
			"DOCUMENT_TOO_LARGE", "document exceeds the synchronous size limit", map[string]any{
				"max_bytes":  h.syncMax,
				"size_bytes": doc.Size(),
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

	text, err := h.extractor.ExtractText(doc.Data, doc.MIME, doc.Filename)
	if err != nil {
		handlers.RespondCode(w, h.logger, extract.MapHTTPStatus(err),
			extractErrorCode(err), err.Error(), nil)
		return
	}

	if err := extract.ValidateText(text); err != nil {
		handlers.RespondCode(w, h.logger, http.StatusUnprocessableEntity,
			"TEXT_TOO_SHORT", err.Error(), nil)
		return
	}

	idx, err := h.cache.Index(r.Context())
	if err != nil {
		handlers.RespondCode(w, h.logger, http.StatusInternalServerError,
			"INTERNAL_ERROR", "tag taxonomy unavailable", nil)
		return
	}

	raw, err := h.invoker.Invoke(r.Context(), text, idx)
	if err != nil {
		handlers.RespondCode(w, h.logger, MapHTTPStatus(err),
			"CLASSIFICATION_FAILED", err.Error(), nil)
		return
	}

	result, dropped := Enrich(raw, idx)
	if len(dropped) > 0 {
		h.logger.Info("entries dropped during enrichment", "count", len(dropped))
	}

	if ok, errs := ValidateRules(result); !ok {
		handlers.RespondCode(w, h.logger, http.StatusUnprocessableEntity,
			"VALIDATION_FAILED", strings.Join(errs, "; "), nil)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, SyncResponse{
		Status: "success",
		Document: DocumentInfo{
			Filename: doc.Filename,
			Size:     doc.Size(),
			MIME:     doc.MIME,
		},
		Classification:   result,
		ProcessingTimeMs: time.Since(started).Milliseconds(),
		ModelUsed:        h.invoker.Model(),
		TextLength:       len(text),
	})
}

func extractErrorCode(err error) string {
	switch {
	case errors.Is(err, extract.ErrUnsupportedFormat):
		return "UNSUPPORTED_FORMAT"
	case errors.Is(err, extract.ErrTextTooShort):
		return "TEXT_TOO_SHORT"
	default:
		return "EXTRACTION_FAILED"
	}
}

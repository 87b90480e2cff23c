// Package worker drives dispatched jobs through the four-stage
// classification pipeline: download, text extraction, classification,
// finalize. Business failures land in the job record; only
// infrastructure failures surface to the delivery mechanism.
package worker

import (
	"log/slog"

	"github.com/fathomline/taxa/internal/classify"
	"github.com/fathomline/taxa/internal/extract"
	"github.com/fathomline/taxa/internal/jobs"
	"github.com/fathomline/taxa/internal/tags"
	"github.com/fathomline/taxa/pkg/storage"
)

// Runtime bundles the dependencies that pipeline nodes require.
type Runtime struct {
	Jobs       jobs.System
	Storage    storage.System
	Tags       *tags.Cache
	Extractor  extract.Extractor
	Classifier classify.Invoker
	Logger     *slog.Logger
}

package api

import (
	"github.com/fathomline/taxa/internal/classify"
	"github.com/fathomline/taxa/internal/config"
	"github.com/fathomline/taxa/internal/extract"
	"github.com/fathomline/taxa/internal/jobs"
	"github.com/fathomline/taxa/internal/reconcile"
	"github.com/fathomline/taxa/internal/tags"
	"github.com/fathomline/taxa/internal/worker"
)

// Domain holds all domain systems that comprise the API.
type Domain struct {
	Jobs       jobs.System
	TagStore   tags.Store
	TagCache   *tags.Cache
	Extractor  extract.Extractor
	Classifier *classify.Service
	Worker     *worker.Runtime
	Dispatcher jobs.Dispatcher
	Reconciler *reconcile.Reconciler
}

// NewDomain creates all domain systems from the API runtime.
func NewDomain(cfg *config.Config, runtime *Runtime) *Domain {
	tagStore := tags.NewStore(runtime.Storage, runtime.Logger)
	tagCache := tags.NewCache(
		tagStore,
		cfg.Tags.CacheTTLDuration(),
		runtime.Logger,
		nil,
	)

	extractor := extract.Plaintext{}
	classifier := classify.NewService(runtime.Agent, runtime.Logger)

	jobsSystem := jobs.New(
		runtime.Database.Connection(),
		runtime.Storage,
		runtime.Logger,
		runtime.Pagination,
	)

	workerRuntime := &worker.Runtime{
		Jobs:       jobsSystem,
		Storage:    runtime.Storage,
		Tags:       tagCache,
		Extractor:  extractor,
		Classifier: classifier,
		Logger:     runtime.Logger,
	}

	source := reconcile.NewHTTPSource(
		cfg.Reconcile.SourceURL,
		cfg.Reconcile.SourceToken,
		nil,
		runtime.Logger,
	)
	reconciler := reconcile.NewReconciler(
		source,
		tagStore,
		tagCache,
		cfg.Reconcile.SourceName,
		runtime.Logger,
		nil,
	)

	return &Domain{
		Jobs:       jobsSystem,
		TagStore:   tagStore,
		TagCache:   tagCache,
		Extractor:  extractor,
		Classifier: classifier,
		Worker:     workerRuntime,
		Dispatcher: worker.NewDispatcher(runtime.Queue),
		Reconciler: reconciler,
	}
}

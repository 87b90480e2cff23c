package api

import (
	"net/http"

	"github.com/fathomline/taxa/internal/classify"
	"github.com/fathomline/taxa/internal/config"
	"github.com/fathomline/taxa/internal/reconcile"
	"github.com/fathomline/taxa/internal/worker"
	"github.com/fathomline/taxa/pkg/routes"
)

func registerRoutes(
	mux *http.ServeMux,
	domain *Domain,
	cfg *config.Config,
	runtime *Runtime,
) {
	classifyHandler := classify.NewHandler(
		domain.TagCache,
		domain.Extractor,
		domain.Classifier,
		runtime.Logger,
		cfg.API.SyncMaxSizeBytes(),
	)

	jobsHandler := domain.Jobs.Handler(
		domain.Dispatcher,
		cfg.API.SyncMaxSizeBytes(),
		cfg.API.MaxUploadSizeBytes(),
	)

	workerHandler := worker.NewHandler(domain.Worker)

	tagsHandler := reconcile.NewHandler(
		domain.Reconciler,
		domain.TagCache,
		runtime.Logger,
	)

	routes.Register(
		mux,
		classifyHandler.Routes(),
		jobsHandler.Routes(),
		workerHandler.Routes(),
		tagsHandler.Routes(),
	)
}

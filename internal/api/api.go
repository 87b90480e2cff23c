// Package api assembles the API module with all domain systems and route registration.
package api

import (
	"net/http"

	"github.com/fathomline/taxa/internal/auth"
	"github.com/fathomline/taxa/internal/config"
	"github.com/fathomline/taxa/internal/infrastructure"
	"github.com/fathomline/taxa/pkg/middleware"
	"github.com/fathomline/taxa/pkg/module"
)

// NewModule creates the API module with all domain handlers and middleware.
// Every route behind the module requires a valid API key.
func NewModule(cfg *config.Config, infra *infrastructure.Infrastructure) (*module.Module, *Domain, error) {
	runtime := NewRuntime(cfg, infra)
	domain := NewDomain(cfg, runtime)

	mux := http.NewServeMux()
	registerRoutes(mux, domain, cfg, runtime)

	keyring := auth.NewKeyring(
		auth.NewStaticSource(cfg.Auth.Keys, cfg.Auth.AdminKeys),
		cfg.Auth.KeyCacheTTLDuration(),
		nil,
	)
	limiter := auth.NewMemoryLimiter(cfg.Auth.RateLimitPerMinute, nil)
	guard := auth.NewGuard(keyring, limiter, runtime.Logger)

	m := module.New(cfg.API.BasePath, mux)
	m.Use(guard.Middleware())
	m.Use(middleware.CORS(&cfg.API.CORS))
	m.Use(middleware.Logger(runtime.Infrastructure.Logger))

	return m, domain, nil
}

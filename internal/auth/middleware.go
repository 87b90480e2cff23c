package auth

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/fathomline/taxa/pkg/handlers"
)

// Guard authenticates requests and applies rate limiting as module
// middleware, storing the principal on the request context.
type Guard struct {
	keyring *Keyring
	limiter Limiter
	logger  *slog.Logger
}

// NewGuard creates an authentication guard.
func NewGuard(keyring *Keyring, limiter Limiter, logger *slog.Logger) *Guard {
	return &Guard{
		keyring: keyring,
		limiter: limiter,
		logger:  logger.With("system", "auth"),
	}
}

// Middleware authenticates every request passing through it.
func (g *Guard) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, err := g.keyring.Resolve(r.Context(), r.Header.Get(HeaderAPIKey))
			if err != nil {
				g.respond(w, err)
				return
			}

			if !g.limiter.Allow(principal.KeyHash) {
				g.respond(w, ErrRateLimited)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), principal)))
		})
	}
}

// RequireAdmin wraps a handler that only admin keys may reach. It runs
// after Middleware, so the principal is already on the context.
func RequireAdmin(logger *slog.Logger, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		principal, ok := FromRequest(r)
		if !ok || !principal.Admin {
			handlers.RespondCode(w, logger, http.StatusForbidden,
				"FORBIDDEN", ErrNotAdmin.Error(), nil)
			return
		}
		next(w, r)
	}
}

func (g *Guard) respond(w http.ResponseWriter, err error) {
	status := MapHTTPStatus(err)
	code := errorCode(err)
	handlers.RespondCode(w, g.logger, status, code, err.Error(), nil)
}

func errorCode(err error) string {
	switch {
	case errors.Is(err, ErrRateLimited):
		return "RATE_LIMITED"
	case errors.Is(err, ErrExpiredKey):
		return "KEY_EXPIRED"
	case errors.Is(err, ErrNotAdmin):
		return "FORBIDDEN"
	default:
		return "UNAUTHORIZED"
	}
}

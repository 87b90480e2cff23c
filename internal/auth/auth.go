// Package auth provides API-key authentication, the principal model,
// and per-principal rate limiting. Keys arrive on the X-API-Key header;
// a key's SHA-256 hash doubles as the job ownership key.
package auth

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"time"
)

// HeaderAPIKey is the request header carrying the API key.
const HeaderAPIKey = "X-API-Key"

// Principal identifies an authenticated caller.
type Principal struct {
	// KeyHash is the SHA-256 hex digest of the presented key. Job
	// records are owned by this value.
	KeyHash string
	// Admin grants access to admin-scoped endpoints. Admin keys are
	// valid on standard endpoints too.
	Admin bool
}

// Key is a provisioned API key in its stored form.
type Key struct {
	Hash      string
	Admin     bool
	ExpiresAt *time.Time
}

// Expired reports whether the key has an expiry in the past.
func (k *Key) Expired(now time.Time) bool {
	return k.ExpiresAt != nil && now.After(*k.ExpiresAt)
}

// HashKey returns the SHA-256 hex digest of an API key.
func HashKey(key string) string {
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:])
}

type contextKey struct{}

// WithPrincipal returns a context carrying the principal.
func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, contextKey{}, p)
}

// FromContext extracts the principal set by the authentication middleware.
func FromContext(ctx context.Context) (*Principal, bool) {
	p, ok := ctx.Value(contextKey{}).(*Principal)
	return p, ok
}

// FromRequest extracts the principal from a request's context.
func FromRequest(r *http.Request) (*Principal, bool) {
	return FromContext(r.Context())
}

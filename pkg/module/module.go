// Package module mounts prefixed HTTP surfaces onto a shared router.
// A module owns a middleware chain and an inner router that sees paths
// with the module prefix already stripped.
package module

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/fathomline/taxa/pkg/middleware"
)

// Module is a prefixed HTTP surface with its own middleware chain.
type Module struct {
	prefix string
	router http.Handler
	chain  middleware.Chain
}

// New creates a Module for a single-level prefix such as "/api".
// Panics on an empty, unrooted, or multi-level prefix.
func New(prefix string, router http.Handler) *Module {
	if err := validatePrefix(prefix); err != nil {
		panic(err)
	}
	return &Module{
		prefix: prefix,
		router: router,
	}
}

// Prefix returns the module's path prefix.
func (m *Module) Prefix() string {
	return m.prefix
}

// Use adds middleware to the module's chain.
func (m *Module) Use(mw func(http.Handler) http.Handler) {
	m.chain.Use(mw)
}

// Handler returns the inner router wrapped with the module's chain.
func (m *Module) Handler() http.Handler {
	return m.chain.Wrap(m.router)
}

// Serve dispatches the request to the inner router with the module
// prefix stripped from the path. The incoming request is not mutated.
func (m *Module) Serve(w http.ResponseWriter, req *http.Request) {
	stripped := req.URL.Path[len(m.prefix):]
	if stripped == "" {
		stripped = "/"
	}

	inner := new(http.Request)
	*inner = *req
	inner.URL = new(url.URL)
	*inner.URL = *req.URL
	inner.URL.Path = stripped
	inner.URL.RawPath = ""

	m.Handler().ServeHTTP(w, inner)
}

func validatePrefix(prefix string) error {
	switch {
	case prefix == "":
		return fmt.Errorf("module prefix cannot be empty")
	case !strings.HasPrefix(prefix, "/"):
		return fmt.Errorf("module prefix must start with /: %s", prefix)
	case strings.Count(prefix, "/") != 1:
		return fmt.Errorf("module prefix must be a single-level sub-path: %s", prefix)
	}
	return nil
}

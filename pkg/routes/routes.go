// Package routes declares handler route tables registered onto a
// ServeMux with method-qualified patterns.
package routes

import "net/http"

// Route pairs an HTTP method and path pattern with its handler.
type Route struct {
	Method  string
	Pattern string
	Handler http.HandlerFunc
}

// Group is a handler's route table under a shared path prefix.
type Group struct {
	Prefix string
	Routes []Route
}

// Register installs every route of the given groups on mux using
// "METHOD prefix/pattern" ServeMux patterns.
func Register(mux *http.ServeMux, groups ...Group) {
	for _, group := range groups {
		for _, route := range group.Routes {
			mux.HandleFunc(route.Method+" "+group.Prefix+route.Pattern, route.Handler)
		}
	}
}

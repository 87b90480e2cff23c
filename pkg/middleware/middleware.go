package middleware

import "net/http"

// Chain is an ordered middleware stack. The first middleware added is
// the outermost wrapper.
type Chain struct {
	stack []func(http.Handler) http.Handler
}

// Use appends a middleware to the chain.
func (c *Chain) Use(mw func(http.Handler) http.Handler) {
	c.stack = append(c.stack, mw)
}

// Wrap applies the chain around handler.
func (c *Chain) Wrap(handler http.Handler) http.Handler {
	for i := len(c.stack) - 1; i >= 0; i-- {
		handler = c.stack[i](handler)
	}
	return handler
}

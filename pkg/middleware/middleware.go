// Package middleware provides the HTTP middleware shared by docflow hosts.
package middleware

import "net/http"

// Middleware wraps an http.Handler.
type Middleware func(http.Handler) http.Handler

// Stack is an ordered middleware chain. Middleware added first runs outermost.
type Stack struct {
	chain []Middleware
}

// Use appends mw to the stack.
func (s *Stack) Use(mw Middleware) {
	s.chain = append(s.chain, mw)
}

// Len reports the number of middleware in the stack.
func (s *Stack) Len() int {
	return len(s.chain)
}

// Then wraps handler with every middleware in the stack.
func (s *Stack) Then(handler http.Handler) http.Handler {
	for i := len(s.chain) - 1; i >= 0; i-- {
		handler = s.chain[i](handler)
	}
	return handler
}

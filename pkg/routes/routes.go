// Package routes registers groups of method-qualified handlers on a ServeMux.
package routes

import "net/http"

// Route binds an HTTP method and path to a handler.
type Route struct {
	Method  string
	Path    string
	Handler http.HandlerFunc
}

// Pattern returns the ServeMux pattern for r under prefix.
func (r Route) Pattern(prefix string) string {
	return r.Method + " " + prefix + r.Path
}

// Group is a set of routes sharing a path prefix.
type Group struct {
	Prefix string
	Routes []Route
}

// Register adds every route in groups to mux and returns the registered
// patterns in registration order.
func Register(mux *http.ServeMux, groups ...Group) []string {
	var patterns []string
	for _, g := range groups {
		for _, r := range g.Routes {
			pattern := r.Pattern(g.Prefix)
			mux.HandleFunc(pattern, r.Handler)
			patterns = append(patterns, pattern)
		}
	}
	return patterns
}

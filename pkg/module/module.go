// Package module mounts self-contained HTTP handlers under single-level path
// prefixes. Each module owns its middleware and sees request paths with its
// prefix removed.
package module

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/JaimeStill/docflow/pkg/middleware"
)

// ErrInvalidPrefix is returned for a prefix that is not a single path segment.
var ErrInvalidPrefix = errors.New("invalid module prefix")

// Module serves requests under its prefix through its own middleware stack.
type Module struct {
	prefix string
	router http.Handler
	stack  middleware.Stack
}

// New creates a Module mounted at prefix, such as "/invoke".
func New(prefix string, router http.Handler) (*Module, error) {
	if err := validatePrefix(prefix); err != nil {
		return nil, err
	}
	return &Module{prefix: prefix, router: router}, nil
}

func (m *Module) Prefix() string {
	return m.prefix
}

// Use appends mw to the module's middleware stack.
func (m *Module) Use(mw middleware.Middleware) {
	m.stack.Use(mw)
}

// Handler returns the router wrapped in the module's middleware.
func (m *Module) Handler() http.Handler {
	return m.stack.Then(m.router)
}

// Serve dispatches req to the module with the prefix removed from its path.
func (m *Module) Serve(w http.ResponseWriter, req *http.Request) {
	m.Handler().ServeHTTP(w, m.strip(req))
}

func (m *Module) strip(req *http.Request) *http.Request {
	path := strings.TrimPrefix(req.URL.Path, m.prefix)
	if path == "" {
		path = "/"
	}

	r := req.Clone(req.Context())
	r.URL.Path = path
	r.URL.RawPath = ""
	return r
}

func validatePrefix(prefix string) error {
	switch {
	case prefix == "":
		return fmt.Errorf("%w: empty", ErrInvalidPrefix)
	case !strings.HasPrefix(prefix, "/"):
		return fmt.Errorf("%w: %q must start with /", ErrInvalidPrefix, prefix)
	case len(prefix) == 1 || strings.Count(prefix, "/") != 1:
		return fmt.Errorf("%w: %q must be a single path segment", ErrInvalidPrefix, prefix)
	}
	return nil
}

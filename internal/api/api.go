// Package api assembles the invoke module, which exposes each pipeline unit
// over HTTP for local runs and integration checks.
package api

import (
	"net/http"

	"github.com/JaimeStill/docflow/internal/config"
	"github.com/JaimeStill/docflow/internal/infrastructure"
	"github.com/JaimeStill/docflow/internal/units"
	"github.com/JaimeStill/docflow/pkg/middleware"
	"github.com/JaimeStill/docflow/pkg/module"
)

// NewModule creates the invoke module with unit routes and middleware.
func NewModule(cfg *config.Config, infra *infrastructure.Infrastructure, u *units.Units) (*module.Module, error) {
	runtime := NewRuntime(cfg, infra)

	mux := http.NewServeMux()
	patterns := registerRoutes(mux, newInvokeHandler(u, runtime))

	m, err := module.New(cfg.API.BasePath, mux)
	if err != nil {
		return nil, err
	}
	m.Use(middleware.CORS(&cfg.API.CORS))
	m.Use(middleware.Logger(runtime.Logger))
	m.Use(middleware.MaxBytes(runtime.MaxBodySize))

	runtime.Logger.Debug("routes registered", "prefix", m.Prefix(), "routes", patterns)

	return m, nil
}

package main

import (
	"net/http"

	"github.com/JaimeStill/docflow/internal/api"
	"github.com/JaimeStill/docflow/internal/config"
	"github.com/JaimeStill/docflow/internal/infrastructure"
	"github.com/JaimeStill/docflow/internal/units"
	"github.com/JaimeStill/docflow/pkg/handlers"
	"github.com/JaimeStill/docflow/pkg/module"
)

type Modules struct {
	Invoke *module.Module
}

func NewModules(infra *infrastructure.Infrastructure, cfg *config.Config, u *units.Units) (*Modules, error) {
	invoke, err := api.NewModule(cfg, infra, u)
	if err != nil {
		return nil, err
	}
	return &Modules{Invoke: invoke}, nil
}

func (m *Modules) Mount(router *module.Router) {
	router.Mount(m.Invoke)
}

func buildRouter(infra *infrastructure.Infrastructure) *module.Router {
	router := module.NewRouter()

	router.HandleNative("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		handlers.RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	router.HandleNative("GET /readyz", func(w http.ResponseWriter, r *http.Request) {
		if !infra.Lifecycle.Ready() {
			handlers.RespondJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "not ready"})
			return
		}
		handlers.RespondJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	})

	return router
}

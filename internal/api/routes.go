package api

import (
	"net/http"

	"github.com/JaimeStill/docflow/pkg/routes"
)

func registerRoutes(mux *http.ServeMux, invoke *invokeHandler) []string {
	return routes.Register(mux, invoke.routes())
}

package routes_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/JaimeStill/docflow/pkg/routes"
)

func respond(status int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
	}
}

func TestRegister(t *testing.T) {
	mux := http.NewServeMux()

	patterns := routes.Register(mux,
		routes.Group{Routes: []routes.Route{
			{Method: "GET", Path: "/{$}", Handler: respond(http.StatusOK)},
		}},
		routes.Group{Prefix: "/units", Routes: []routes.Route{
			{Method: "POST", Path: "/extract", Handler: respond(http.StatusAccepted)},
		}},
	)

	assert.Equal(t, []string{"GET /{$}", "POST /units/extract"}, patterns)

	tests := []struct {
		method, path string
		want         int
	}{
		{"GET", "/", http.StatusOK},
		{"POST", "/units/extract", http.StatusAccepted},
		{"GET", "/units/extract", http.StatusMethodNotAllowed},
		{"POST", "/units/classify", http.StatusNotFound},
	}

	for _, tt := range tests {
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, httptest.NewRequest(tt.method, tt.path, nil))
		assert.Equal(t, tt.want, rec.Code, "%s %s", tt.method, tt.path)
	}
}

package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/JaimeStill/docflow/internal/pipeline"
	"github.com/JaimeStill/docflow/internal/units"
	"github.com/JaimeStill/docflow/pkg/handlers"
	"github.com/JaimeStill/docflow/pkg/routes"
)

type invokeHandler struct {
	units  *units.Units
	logger *slog.Logger
}

func newInvokeHandler(u *units.Units, runtime *Runtime) *invokeHandler {
	return &invokeHandler{
		units:  u,
		logger: runtime.Logger.With("handler", "invoke"),
	}
}

func (h *invokeHandler) routes() routes.Group {
	return routes.Group{
		Routes: []routes.Route{
			{Method: "GET", Path: "/{$}", Handler: h.list},
			{Method: "POST", Path: "/" + units.Trigger, Handler: h.trigger},
			{Method: "POST", Path: "/" + units.Extract, Handler: invoke(h.units.Extract, h.logger)},
			{Method: "POST", Path: "/" + units.Classify, Handler: invoke(h.units.Classify, h.logger)},
		},
	}
}

type unitStatus struct {
	Name      string `json:"name"`
	Available bool   `json:"available"`
	Reason    string `json:"reason,omitempty"`
}

func (h *invokeHandler) list(w http.ResponseWriter, r *http.Request) {
	result := make([]unitStatus, 0, len(units.Names()))
	for _, name := range units.Names() {
		status := unitStatus{Name: name, Available: true}
		if _, err := h.units.Handler(name); err != nil {
			status.Available = false
			status.Reason = err.Error()
		}
		result = append(result, status)
	}
	handlers.RespondJSON(w, http.StatusOK, result)
}

func (h *invokeHandler) trigger(w http.ResponseWriter, r *http.Request) {
	if err := h.units.TriggerErr(); err != nil {
		handlers.RespondError(w, h.logger, http.StatusServiceUnavailable, err)
		return
	}
	invoke(h.units.Trigger, h.logger)(w, r)
}

// invoke decodes the request body as the unit's input, runs the unit, and
// responds with its output or its typed error.
func invoke[In, Out any](fn pipeline.Handler[In, Out], logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in In
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			status := http.StatusBadRequest
			var maxErr *http.MaxBytesError
			if errors.As(err, &maxErr) {
				status = http.StatusRequestEntityTooLarge
			}
			handlers.RespondError(
				w, logger, status,
				&pipeline.StructuralInputError{Field: "body", Reason: err.Error()},
			)
			return
		}

		out, err := fn(r.Context(), in)
		if err != nil {
			handlers.RespondError(
				w, logger,
				pipeline.MapHTTPStatus(err), err,
			)
			return
		}

		handlers.RespondJSON(w, http.StatusOK, out)
	}
}

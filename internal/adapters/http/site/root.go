// Package site serves the landing page: links to the API docs and one row
// per known simulation.
package site

import (
	"bytes"
	"context"
	"net/http"

	service "github.com/okian/simboard/internal/app"
	"github.com/okian/simboard/pkg/logger"
)

// Lister reports the simulations shown on the landing page.
type Lister interface {
	Simulations(ctx context.Context) ([]service.SimulationSummary, error)
}

type pageData struct {
	Simulations []service.SimulationSummary
}

// Register attaches the landing page to the exact root path of mux. Other
// unmatched paths stay 404. A nil lister renders no simulations.
func Register(_ context.Context, mux *http.ServeMux, lister Lister) {
	if mux == nil {
		panic("mux is nil")
	}
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		var data pageData
		if lister != nil {
			sims, err := lister.Simulations(r.Context())
			if err != nil {
				logger.Get().Error(r.Context(), "list simulations", logger.Error(err))
				http.Error(w, "internal error", http.StatusInternalServerError)
				return
			}
			data.Simulations = sims
		}

		// Render fully before writing so a template error is still a 500.
		var buf bytes.Buffer
		if err := page.Execute(&buf, data); err != nil {
			logger.Get().Error(r.Context(), "render landing page", logger.Error(err))
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = buf.WriteTo(w)
	})
}

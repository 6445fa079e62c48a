package reportinghttp

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"

	"github.com/odyssey-erp/tesoreria/internal/platform/httpx"
)

// MountRoutes registers the report, health and endpoint listing routes.
func (h *Handler) MountRoutes(r chi.Router) {
	if h == nil {
		return
	}
	r.Get("/health", h.handleHealth)
	r.Get("/test", h.handleIndex)
	r.Group(func(gr chi.Router) {
		if h.ratePerMinute > 0 {
			gr.Use(httprate.Limit(h.ratePerMinute, time.Minute,
				httprate.WithKeyFuncs(httprate.KeyByIP),
				httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
					httpx.Problem(w, http.StatusTooManyRequests, "Too Many Requests", "demasiadas solicitudes, intente más tarde")
				}),
			))
		}
		gr.Get("/generar-reporte", h.handleReport)
	})
}

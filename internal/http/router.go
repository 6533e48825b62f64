package httpapi

import (
	"expvar"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// NewRouter registers HTTP routes and returns the handler with middleware.
func NewRouter(app *App) http.Handler {
	r := chi.NewRouter()
	r.Use(WithRequestID, WithLogging, WithMetrics(app.Metrics))

	r.Get("/", app.pageHandler)
	r.Post("/products/{id}/increment", app.formAdjustHandler(increment))
	r.Post("/products/{id}/decrement", app.formAdjustHandler(decrement))

	r.Route("/api", func(r chi.Router) {
		r.Get("/checkout", app.checkoutJSONHandler)
		r.Post("/products/{id}/increment", app.apiAdjustHandler(increment))
		r.Post("/products/{id}/decrement", app.apiAdjustHandler(decrement))
	})

	r.Get("/healthz", app.healthHandler)
	r.Method(http.MethodGet, "/metrics", app.Metrics.Handler())
	r.Get("/debug/metrics", app.metricsHandler)
	r.Method(http.MethodGet, "/debug/vars", expvar.Handler())
	r.Get("/openapi.yaml", app.openapiHandler)
	r.Get("/docs", app.docsHandler)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		WriteJSONError(w, http.StatusNotFound, "not_found", "")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		WriteJSONError(w, http.StatusMethodNotAllowed, "method_not_allowed", "")
	})
	return r
}

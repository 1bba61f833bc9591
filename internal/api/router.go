package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/PJ2-group2/HabitLink-sub000/internal/api/middleware"
)

// NewRouter builds the HTTP router: trigger endpoints under /api, a
// health probe, and the Prometheus scrape endpoint.
func NewRouter(handler *ResetHandler, gatherer prometheus.Gatherer) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.TraceMiddleware)
	r.Use(chimw.Recoverer)

	r.Route("/api", func(r chi.Router) {
		r.Post("/reset/trigger", handler.TriggerAll)
		r.Post("/reset/teams/{teamID}", handler.TriggerTeam)
		r.Post("/reset/delay", handler.TriggerDelayed)
		r.Post("/tasks/{taskID}/complete", handler.Complete)
	})

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		respondText(w, http.StatusOK, "ok")
	})

	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	return r
}

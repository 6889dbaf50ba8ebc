package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const requestsPerMinute = 60

// NewRouter builds and returns the Chi router with all routes configured.
// Health and metrics are unauthenticated; plan routes require bearer auth.
// Rate limiting is applied globally per IP.
func NewRouter(handlers *Handlers, token string, db, redis pinger, log *slog.Logger) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(log))
	r.Use(httprate.LimitByIP(requestsPerMinute, time.Minute))

	r.Get("/api/v1/health", HealthHandlerFunc(db, redis, log))
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		r.Use(BearerAuth(token))
		r.Post("/api/v1/plans", handlers.CreatePlan)
		r.Get("/api/v1/plans", handlers.ListPlans)
		r.Get("/api/v1/plans/{id}", handlers.GetPlan)
	})

	return r
}

// Ensure chi.Mux implements http.Handler.
var _ http.Handler = (*chi.Mux)(nil)

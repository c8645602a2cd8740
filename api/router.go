// Package api exposes companies and jobs over HTTP using chi.
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/Skryldev/jobly-api/auth"
	"github.com/Skryldev/jobly-api/metrics"
)

// Config tunes the middleware stack.
type Config struct {
	CORSOrigins       []string
	RateLimitRequests int
	RateLimitWindow   time.Duration
	RateLimitDisabled bool
	RequestTimeout    time.Duration
}

// DefaultConfig returns permissive CORS and 100 mutations per minute.
func DefaultConfig() Config {
	return Config{
		CORSOrigins:       []string{"*"},
		RateLimitRequests: 100,
		RateLimitWindow:   time.Minute,
		RequestTimeout:    30 * time.Second,
	}
}

// NewRouter builds the route table. Reads are public; every mutation
// requires an admin token. m may be nil to disable metrics.
func NewRouter(h *Handler, jwt *auth.JWTManager, m *metrics.Metrics, cfg Config) http.Handler {
	r := chi.NewRouter()

	r.Use(RequestIDWithLogging())
	r.Use(chimiddleware.RealIP)
	r.Use(AccessLog)
	r.Use(chimiddleware.Recoverer)
	r.Use(corsMiddleware(cfg.CORSOrigins))
	if m != nil {
		r.Use(m.Middleware)
	}
	if cfg.RequestTimeout > 0 {
		r.Use(chimiddleware.Timeout(cfg.RequestTimeout))
	}
	r.Use(jwt.Authenticate)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeStatus(w, r, http.StatusNotFound, "not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeStatus(w, r, http.StatusMethodNotAllowed, "method not allowed")
	})

	r.Get("/health", h.Health)
	if m != nil {
		r.Method(http.MethodGet, "/metrics", m.Handler())
	}

	var onLimit func(string)
	if m != nil {
		onLimit = m.RecordRateLimitHit
	}
	admin := chi.Chain(rateLimit(cfg, onLimit), auth.RequireAdmin(writeStatus))

	r.Route("/companies", func(r chi.Router) {
		r.Get("/", h.ListCompanies)
		r.Get("/{handle}", h.GetCompany)

		r.With(admin...).Post("/", h.CreateCompany)
		r.With(admin...).Patch("/{handle}", h.UpdateCompany)
		r.With(admin...).Delete("/{handle}", h.DeleteCompany)
	})

	r.Route("/jobs", func(r chi.Router) {
		r.Get("/", h.ListJobs)
		r.Get("/{id}", h.GetJob)

		r.With(admin...).Post("/", h.CreateJob)
		r.With(admin...).Patch("/{id}", h.UpdateJob)
		r.With(admin...).Delete("/{id}", h.DeleteJob)
	})

	return r
}

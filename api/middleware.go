package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"

	"github.com/Skryldev/jobly-api/logging"
)

// RequestIDWithLogging accepts or generates X-Request-ID, echoes it on the
// response and stores it, together with a fresh correlation ID, where
// logging.Ctx will find it. chi's RequestID sees the same value.
func RequestIDWithLogging() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		chiRequestID := chimiddleware.RequestID(next)

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestID := r.Header.Get(chimiddleware.RequestIDHeader)
			if requestID == "" {
				requestID = logging.GenerateRequestID()
				r.Header.Set(chimiddleware.RequestIDHeader, requestID)
			}
			w.Header().Set(chimiddleware.RequestIDHeader, requestID)

			ctx := logging.ContextWithRequestID(r.Context(), requestID)
			ctx = logging.ContextWithCorrelationID(ctx, logging.GenerateCorrelationID())
			chiRequestID.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// AccessLog writes one zerolog line per request.
func AccessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		ev := logging.Ctx(r.Context()).Info()
		if status >= http.StatusInternalServerError {
			ev = logging.Ctx(r.Context()).Error()
		}
		ev.Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", status).
			Int("bytes", ww.BytesWritten()).
			Dur("duration", time.Since(start)).
			Str("remote_ip", r.RemoteAddr).
			Msg("request")
	})
}

func corsMiddleware(origins []string) func(http.Handler) http.Handler {
	return cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization", chimiddleware.RequestIDHeader},
		ExposedHeaders:   []string{chimiddleware.RequestIDHeader},
		AllowCredentials: false,
		MaxAge:           86400,
	})
}

// rateLimit limits mutations per client IP. Rejections go through the JSON
// error envelope and are reported to onLimit when set.
func rateLimit(cfg Config, onLimit func(route string)) func(http.Handler) http.Handler {
	if cfg.RateLimitDisabled || cfg.RateLimitRequests <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	return httprate.Limit(
		cfg.RateLimitRequests,
		cfg.RateLimitWindow,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			if onLimit != nil {
				route := r.URL.Path
				if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
					route = rctx.RoutePattern()
				}
				onLimit(route)
			}
			writeStatus(w, r, http.StatusTooManyRequests, "too many requests")
		}),
	)
}

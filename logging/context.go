package logging

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type contextKey string

const (
	requestIDKey     contextKey = "request_id"
	correlationIDKey contextKey = "correlation_id"
)

// GenerateRequestID returns a fresh UUID.
func GenerateRequestID() string {
	return uuid.New().String()
}

// GenerateCorrelationID returns a short, human-friendly identifier.
func GenerateCorrelationID() string {
	return uuid.New().String()[:8]
}

func ContextWithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

// RequestIDFromContext returns "" when ctx carries no request ID.
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

func ContextWithCorrelationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, correlationIDKey, id)
}

func CorrelationIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(correlationIDKey).(string)
	return id
}

// Ctx returns the global logger with request_id and correlation_id from ctx
// attached.
//
//	logging.Ctx(ctx).Info().Str("handle", h).Msg("company created")
func Ctx(ctx context.Context) *zerolog.Logger {
	l := Logger()
	lc := l.With()
	if id := CorrelationIDFromContext(ctx); id != "" {
		lc = lc.Str("correlation_id", id)
	}
	if id := RequestIDFromContext(ctx); id != "" {
		lc = lc.Str("request_id", id)
	}
	out := lc.Logger()
	return &out
}

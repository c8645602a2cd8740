package db

import (
	"context"
	"log/slog"
	"strings"
	"time"
)

// ─────────────────────────────────────────────────────────────────────────────
// Hook interface
// ─────────────────────────────────────────────────────────────────────────────

// Hook is called before and after every statement.
//
// Implementations MUST be goroutine-safe and SHOULD be non-blocking.
// Panics inside a hook are recovered by the hook chain and logged.
type Hook interface {
	BeforeQuery(ctx context.Context, query string, args []any)

	// AfterQuery receives the wall-clock time spent in the driver call and
	// the already mapped error (nil on success).
	AfterQuery(ctx context.Context, query string, args []any, duration time.Duration, err error)
}

type hookChain struct {
	hooks []Hook
}

func newHookChain(hooks []Hook) hookChain {
	filtered := make([]Hook, 0, len(hooks))
	for _, h := range hooks {
		if h != nil {
			filtered = append(filtered, h)
		}
	}
	return hookChain{hooks: filtered}
}

func (c hookChain) Before(ctx context.Context, query string, args []any) {
	for _, h := range c.hooks {
		recoverHook(ctx, "BeforeQuery", func() { h.BeforeQuery(ctx, query, args) })
	}
}

func (c hookChain) After(ctx context.Context, query string, args []any, d time.Duration, err error) {
	for _, h := range c.hooks {
		recoverHook(ctx, "AfterQuery", func() { h.AfterQuery(ctx, query, args, d, err) })
	}
}

// recoverHook runs one hook callback; a panic is logged and swallowed so a
// faulty hook cannot fail the statement.
func recoverHook(ctx context.Context, stage string, call func()) {
	defer func() {
		if r := recover(); r != nil {
			slog.ErrorContext(ctx, "db: hook panic", "stage", stage, "panic", r)
		}
	}()
	call()
}

// ── Logging hook ─────────────────────────────────────────────────────────────

// LogHookConfig configures the structured logging hook.
type LogHookConfig struct {
	// Logger defaults to slog.Default() if nil.
	Logger *slog.Logger
	// SlowQueryThreshold logs a warning when duration exceeds this value.
	// Zero disables slow-query logging.
	SlowQueryThreshold time.Duration
	// LogArgs includes bound parameters in log entries.
	LogArgs bool
}

// NewLogHook returns a Hook that emits one structured entry per statement:
// debug on success, warn when slow, error on failure. Not-found results are
// logged at debug since they are an expected outcome of lookups.
func NewLogHook(cfg LogHookConfig) Hook {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &logHook{cfg: cfg, logger: logger}
}

type logHook struct {
	cfg    LogHookConfig
	logger *slog.Logger
}

func (h *logHook) BeforeQuery(context.Context, string, []any) {}

func (h *logHook) AfterQuery(ctx context.Context, query string, args []any, d time.Duration, err error) {
	attrs := []any{
		slog.String("statement", StatementKind(query)),
		slog.String("query", trimQuery(query)),
		slog.Duration("duration", d),
	}
	if h.cfg.LogArgs && len(args) > 0 {
		attrs = append(attrs, slog.Any("args", args))
	}

	switch {
	case err != nil && !IsNotFound(err):
		h.logger.ErrorContext(ctx, "db: query error", append(attrs, slog.Any("error", err))...)
	case h.cfg.SlowQueryThreshold > 0 && d > h.cfg.SlowQueryThreshold:
		h.logger.WarnContext(ctx, "db: slow query", attrs...)
	default:
		h.logger.DebugContext(ctx, "db: query", attrs...)
	}
}

func trimQuery(q string) string {
	q = strings.Join(strings.Fields(q), " ")
	if len(q) > 500 {
		return q[:500] + "…"
	}
	return q
}

// StatementKind returns the lower-cased leading keyword of query ("select",
// "insert", ...), or "other" when there is none. Used as a low-cardinality
// label by logging and metrics.
func StatementKind(query string) string {
	fields := strings.Fields(query)
	if len(fields) == 0 {
		return "other"
	}
	switch kw := strings.ToLower(fields[0]); kw {
	case "select", "insert", "update", "delete", "with":
		return kw
	}
	return "other"
}

// ── Metrics hook ─────────────────────────────────────────────────────────────

// MetricsCollector receives one observation per statement.
type MetricsCollector interface {
	RecordQuery(query string, duration time.Duration, success bool)
}

// NewMetricsHook returns a Hook that delegates to a MetricsCollector.
func NewMetricsHook(collector MetricsCollector) Hook {
	return &metricsHook{c: collector}
}

type metricsHook struct{ c MetricsCollector }

func (h *metricsHook) BeforeQuery(context.Context, string, []any) {}

// AfterQuery counts a not-found lookup as a successful statement.
func (h *metricsHook) AfterQuery(_ context.Context, query string, _ []any, d time.Duration, err error) {
	h.c.RecordQuery(query, d, err == nil || IsNotFound(err))
}

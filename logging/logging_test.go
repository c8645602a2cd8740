package logging_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skryldev/jobly-api/logging"
)

func decode(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry), buf.String())
	return entry
}

func withGlobalLevel(t *testing.T, level zerolog.Level) {
	t.Helper()
	prev := zerolog.GlobalLevel()
	zerolog.SetGlobalLevel(level)
	t.Cleanup(func() { zerolog.SetGlobalLevel(prev) })
}

func TestCtx_AddsRequestAndCorrelationIDs(t *testing.T) {
	var buf bytes.Buffer
	prev := logging.Logger()
	logging.SetLogger(logging.NewTestLogger(&buf))
	t.Cleanup(func() { logging.SetLogger(prev) })

	ctx := logging.ContextWithRequestID(context.Background(), "req-1")
	ctx = logging.ContextWithCorrelationID(ctx, "corr-1")
	logging.Ctx(ctx).Info().Msg("hello")

	entry := decode(t, &buf)
	assert.Equal(t, "req-1", entry["request_id"])
	assert.Equal(t, "corr-1", entry["correlation_id"])
	assert.Equal(t, "hello", entry["message"])
}

func TestContextIDs_EmptyWhenAbsent(t *testing.T) {
	ctx := context.Background()
	assert.Empty(t, logging.RequestIDFromContext(ctx))
	assert.Empty(t, logging.CorrelationIDFromContext(ctx))
	assert.Len(t, logging.GenerateRequestID(), 36)
	assert.Len(t, logging.GenerateCorrelationID(), 8)
}

func TestSlogHandler_WritesThroughZerolog(t *testing.T) {
	withGlobalLevel(t, zerolog.DebugLevel)
	var buf bytes.Buffer
	logger := slog.New(logging.NewSlogHandlerWithLogger(logging.NewTestLogger(&buf)))

	ctx := logging.ContextWithRequestID(context.Background(), "req-2")
	logger.With("component", "db").WithGroup("q").WarnContext(ctx, "db: slow query",
		slog.String("statement", "select"),
		slog.Duration("duration", 250*time.Millisecond),
		slog.Any("error", errors.New("boom")),
	)

	entry := decode(t, &buf)
	assert.Equal(t, "warn", entry["level"])
	assert.Equal(t, "db: slow query", entry["message"])
	assert.Equal(t, "req-2", entry["request_id"])
	assert.Equal(t, "db", entry["component"])
	assert.Equal(t, "select", entry["q.statement"])
	assert.Equal(t, "boom", entry["q.error"])
	assert.Contains(t, entry, "q.duration")
}

func TestSlogHandler_Enabled(t *testing.T) {
	withGlobalLevel(t, zerolog.InfoLevel)
	h := logging.NewSlogHandlerWithLogger(zerolog.New(&bytes.Buffer{}))

	assert.False(t, h.Enabled(context.Background(), slog.LevelDebug))
	assert.True(t, h.Enabled(context.Background(), slog.LevelInfo))
	assert.True(t, h.Enabled(context.Background(), slog.LevelError))
}

func TestValidLevel(t *testing.T) {
	for _, l := range []string{"", "debug", "INFO", "warning", "disabled"} {
		assert.True(t, logging.ValidLevel(l), l)
	}
	assert.False(t, logging.ValidLevel("verbose"))
}

func TestInit_ConsoleFormat(t *testing.T) {
	prev := logging.Logger()
	t.Cleanup(func() { logging.SetLogger(prev) })
	withGlobalLevel(t, zerolog.GlobalLevel())

	var buf bytes.Buffer
	logging.Init(logging.Config{Level: "debug", Format: "console", Output: &buf})
	logging.Debug().Str("k", "v").Msg("console line")

	assert.Contains(t, buf.String(), "console line")
	assert.Contains(t, buf.String(), "k=")
}

func TestWithComponent_TagsEntries(t *testing.T) {
	var buf bytes.Buffer
	prev := logging.Logger()
	logging.SetLogger(logging.NewTestLogger(&buf))
	t.Cleanup(func() { logging.SetLogger(prev) })
	withGlobalLevel(t, zerolog.DebugLevel)

	l := slog.New(logging.NewSlogHandlerWithLogger(logging.WithComponent("db")))
	l.Info("query done", "statement", "SELECT")

	entry := decode(t, &buf)
	assert.Equal(t, "db", entry["component"])
	assert.Equal(t, "SELECT", entry["statement"])
	assert.Equal(t, "query done", entry["message"])
}

package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func validSpanContext(t *testing.T) trace.SpanContext {
	t.Helper()
	traceID, err := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	require.NoError(t, err)
	spanID, err := trace.SpanIDFromHex("00f067aa0ba902b7")
	require.NoError(t, err)
	return trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    traceID,
		SpanID:     spanID,
		TraceFlags: trace.FlagsSampled,
	})
}

func TestWithContext(t *testing.T) {
	logger := zap.NewExample()
	ctx := WithContext(context.Background(), logger)

	assert.Same(t, logger, FromContext(ctx))
}

func TestFromContext_Fallbacks(t *testing.T) {
	t.Run("missing logger", func(t *testing.T) {
		assert.NotNil(t, FromContext(context.Background()))
	})

	t.Run("nil context", func(t *testing.T) {
		assert.NotNil(t, FromContext(nil))
	})

	t.Run("wrong type", func(t *testing.T) {
		ctx := context.WithValue(context.Background(), LoggerKey, "not a logger")
		assert.NotNil(t, FromContext(ctx))
	})
}

func TestWithRequestID(t *testing.T) {
	core, recorded := observer.New(zapcore.InfoLevel)

	ctx, enriched := WithRequestID(context.Background(), zap.New(core), "req-123")
	assert.Equal(t, "req-123", GetRequestID(ctx))

	FromContext(ctx).Info("from context")
	enriched.Info("direct")

	entries := recorded.FilterField(zap.String("request_id", "req-123")).All()
	assert.Len(t, entries, 2)
}

func TestGetRequestID_NotFound(t *testing.T) {
	assert.Empty(t, GetRequestID(context.Background()))
}

func TestWithTraceContext(t *testing.T) {
	t.Run("no span leaves logger unchanged", func(t *testing.T) {
		logger := zap.NewNop()
		assert.Same(t, logger, WithTraceContext(context.Background(), logger))
	})

	t.Run("valid span adds ids", func(t *testing.T) {
		core, recorded := observer.New(zapcore.InfoLevel)
		ctx := trace.ContextWithSpanContext(context.Background(), validSpanContext(t))

		WithTraceContext(ctx, zap.New(core)).Info("traced")

		require.Equal(t, 1, recorded.Len())
		fields := recorded.All()[0].ContextMap()
		assert.Equal(t, "4bf92f3577b34da6a3ce929d0e0e4736", fields["trace_id"])
		assert.Equal(t, "00f067aa0ba902b7", fields["span_id"])
	})
}

func TestForOperation(t *testing.T) {
	t.Run("prefers the context logger", func(t *testing.T) {
		ctxCore, ctxRecorded := observer.New(zapcore.DebugLevel)
		fallbackCore, fallbackRecorded := observer.New(zapcore.DebugLevel)

		ctx := WithContext(context.Background(), zap.New(ctxCore))
		ctx = trace.ContextWithSpanContext(ctx, validSpanContext(t))

		ForOperation(ctx, zap.New(fallbackCore), "reconcile_tax_rate").Debug("start")

		assert.Equal(t, 0, fallbackRecorded.Len())
		require.Equal(t, 1, ctxRecorded.Len())
		fields := ctxRecorded.All()[0].ContextMap()
		assert.Equal(t, "reconcile_tax_rate", fields["operation"])
		assert.Equal(t, "4bf92f3577b34da6a3ce929d0e0e4736", fields["trace_id"])
	})

	t.Run("falls back when the context has no logger", func(t *testing.T) {
		core, recorded := observer.New(zapcore.DebugLevel)

		ForOperation(context.Background(), zap.New(core), "resolve_identities").Debug("start")

		require.Equal(t, 1, recorded.Len())
		assert.Equal(t, "resolve_identities", recorded.All()[0].ContextMap()["operation"])
	})

	t.Run("nil fallback is safe", func(t *testing.T) {
		assert.NotPanics(t, func() {
			ForOperation(context.Background(), nil, "noop").Info("dropped")
		})
	})
}

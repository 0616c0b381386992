package telemetry_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.uber.org/zap/zaptest"

	"github.com/JohnRSantamaria/exponential-it-sub000/internal/infrastructure/telemetry"
)

// setupManualReader returns a meter backed by an in-memory reader
func setupManualReader(t *testing.T) (*sdkmetric.ManualReader, *sdkmetric.MeterProvider) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() {
		_ = provider.Shutdown(context.Background())
	})
	return reader, provider
}

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Metrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	out := make(map[string]metricdata.Metrics)
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			out[m.Name] = m
		}
	}
	return out
}

func attrValue(set attribute.Set, key attribute.Key) string {
	v, ok := set.Value(key)
	if !ok {
		return ""
	}
	return v.AsString()
}

func TestNewMeterProvider_Disabled(t *testing.T) {
	logger := zaptest.NewLogger(t)
	ctx := context.Background()

	cfg := telemetry.MetricsConfig{
		Enabled:           false,
		CollectorEndpoint: "localhost:14317",
		ServiceName:       "fiscal-engine-test",
	}

	mp, err := telemetry.NewMeterProvider(ctx, cfg, logger)
	require.NoError(t, err)

	assert.False(t, mp.IsEnabled())
	assert.Equal(t, cfg, mp.GetConfig())
	assert.NotNil(t, mp.Meter("test"))
	assert.NoError(t, mp.ForceFlush(ctx))
	assert.NoError(t, mp.Shutdown(ctx))
}

func TestCounter(t *testing.T) {
	reader, provider := setupManualReader(t)
	ctx := context.Background()

	counter, err := telemetry.NewCounter(provider.Meter("test"), "test_counter", "Test counter", "1")
	require.NoError(t, err)

	counter.Add(ctx, 5, attribute.String("method", "POST"))
	counter.Inc(ctx, attribute.String("method", "POST"))

	metrics := collect(t, reader)
	sum, ok := metrics["test_counter"].Data.(metricdata.Sum[int64])
	require.True(t, ok)
	require.Len(t, sum.DataPoints, 1)
	assert.Equal(t, int64(6), sum.DataPoints[0].Value)
}

func TestHistogram(t *testing.T) {
	reader, provider := setupManualReader(t)
	ctx := context.Background()

	histogram, err := telemetry.NewHistogram(provider.Meter("test"), telemetry.HistogramOpts{
		Name:        "test_duration",
		Description: "Test duration",
		Unit:        "s",
		Boundaries:  telemetry.EngineDurationBuckets,
	})
	require.NoError(t, err)

	histogram.Record(ctx, 0.002)
	histogram.RecordDuration(ctx, 3*time.Millisecond)

	metrics := collect(t, reader)
	hist, ok := metrics["test_duration"].Data.(metricdata.Histogram[float64])
	require.True(t, ok)
	require.Len(t, hist.DataPoints, 1)
	assert.Equal(t, uint64(2), hist.DataPoints[0].Count)
	assert.Equal(t, telemetry.EngineDurationBuckets, hist.DataPoints[0].Bounds)
}

func TestEngineMetrics(t *testing.T) {
	t.Run("nil meter", func(t *testing.T) {
		_, err := telemetry.NewEngineMetrics(nil)
		assert.ErrorIs(t, err, telemetry.ErrMeterNil)
	})

	t.Run("nil receiver is a no-op", func(t *testing.T) {
		var m *telemetry.EngineMetrics
		assert.NotPanics(t, func() {
			m.Record(context.Background(), "reconcile_tax_rate", telemetry.OutcomeSuccess, time.Millisecond)
		})
	})

	t.Run("records outcome and latency", func(t *testing.T) {
		reader, provider := setupManualReader(t)
		ctx := context.Background()

		m, err := telemetry.NewEngineMetrics(provider.Meter("test"))
		require.NoError(t, err)

		m.Record(ctx, "reconcile_tax_rate", telemetry.OutcomeSuccess, time.Millisecond)
		m.Record(ctx, "reconcile_tax_rate", telemetry.OutcomeSuccess, time.Millisecond)
		m.Record(ctx, "resolve_identities", "TAX_ID_NOT_FOUND", time.Millisecond)

		metrics := collect(t, reader)

		sum, ok := metrics[telemetry.MetricReconciliationTotal].Data.(metricdata.Sum[int64])
		require.True(t, ok)
		counts := make(map[string]int64)
		for _, dp := range sum.DataPoints {
			key := attrValue(dp.Attributes, telemetry.AttrOperation) + "/" + attrValue(dp.Attributes, telemetry.AttrOutcome)
			counts[key] = dp.Value
		}
		assert.Equal(t, map[string]int64{
			"reconcile_tax_rate/success":          2,
			"resolve_identities/TAX_ID_NOT_FOUND": 1,
		}, counts)

		hist, ok := metrics[telemetry.MetricReconciliationDuration].Data.(metricdata.Histogram[float64])
		require.True(t, ok)
		assert.Len(t, hist.DataPoints, 2)
	})
}

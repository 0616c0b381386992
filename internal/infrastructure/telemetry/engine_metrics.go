package telemetry

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel/metric"
)

// Metric names exported by the engine
const (
	MetricReconciliationTotal    = "fiscal_reconciliation_total"
	MetricReconciliationDuration = "fiscal_reconciliation_duration_seconds"
)

// OutcomeSuccess labels calls that returned without a business error
const OutcomeSuccess = "success"

// ErrMeterNil is returned when no meter is supplied.
var ErrMeterNil = errors.New("telemetry: meter cannot be nil")

// EngineMetrics counts engine calls per operation and outcome and records
// their latency.
type EngineMetrics struct {
	total    *Counter
	duration *Histogram
}

// NewEngineMetrics registers the engine instruments on the given meter.
func NewEngineMetrics(meter metric.Meter) (*EngineMetrics, error) {
	if meter == nil {
		return nil, ErrMeterNil
	}

	total, err := NewCounter(meter,
		MetricReconciliationTotal,
		"Total number of fiscal engine calls by operation and outcome",
		"{calls}",
	)
	if err != nil {
		return nil, err
	}

	duration, err := NewHistogram(meter, HistogramOpts{
		Name:        MetricReconciliationDuration,
		Description: "Latency of fiscal engine calls",
		Unit:        "s",
		Boundaries:  EngineDurationBuckets,
	})
	if err != nil {
		return nil, err
	}

	return &EngineMetrics{total: total, duration: duration}, nil
}

// Record counts one call and its latency. Outcome is OutcomeSuccess or the
// business error code that ended the call.
func (m *EngineMetrics) Record(ctx context.Context, operation, outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.total.Inc(ctx, AttrOperation.String(operation), AttrOutcome.String(outcome))
	m.duration.RecordDuration(ctx, elapsed, AttrOperation.String(operation))
}

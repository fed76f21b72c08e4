package metrics

import (
	"context"
	"time"
)

// CycleMetrics summarizes one monitoring cycle.
type CycleMetrics struct {
	Timestamp   time.Time
	DurationMS  int64
	Symbols     int
	QuotesOK    int
	PriceAlerts int
	TextsScored int
}

// Recorder stores per-cycle metrics.
type Recorder interface {
	RecordCycle(ctx context.Context, m CycleMetrics) error
}

// NopRecorder discards metrics. Used when ClickHouse is disabled.
type NopRecorder struct{}

// RecordCycle does nothing.
func (NopRecorder) RecordCycle(context.Context, CycleMetrics) error { return nil }

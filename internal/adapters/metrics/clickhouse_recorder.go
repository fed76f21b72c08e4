package metrics

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/finpulse/monitor/pkg/logger"
)

// ClickHouseRecorder implements Recorder on top of ClickHouse.
type ClickHouseRecorder struct {
	db *sqlx.DB
}

// NewClickHouseRecorder creates new ClickHouse metrics recorder
func NewClickHouseRecorder(db *sqlx.DB) *ClickHouseRecorder {
	return &ClickHouseRecorder{db: db}
}

// EnsureSchema creates the metrics table if it does not exist.
func (r *ClickHouseRecorder) EnsureSchema(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS cycle_metrics (
			ts           DateTime,
			duration_ms  Int64,
			symbols      Int32,
			quotes_ok    Int32,
			price_alerts Int32,
			texts_scored Int32
		) ENGINE = MergeTree()
		ORDER BY ts
		TTL ts + INTERVAL 30 DAY
	`

	if _, err := r.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("failed to create cycle_metrics table: %w", err)
	}

	return nil
}

// RecordCycle inserts one cycle row.
func (r *ClickHouseRecorder) RecordCycle(ctx context.Context, m CycleMetrics) error {
	query := `
		INSERT INTO cycle_metrics (ts, duration_ms, symbols, quotes_ok, price_alerts, texts_scored)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	if _, err := r.db.ExecContext(ctx, query,
		m.Timestamp, m.DurationMS, m.Symbols, m.QuotesOK, m.PriceAlerts, m.TextsScored,
	); err != nil {
		return fmt.Errorf("ClickHouse insert failed: %w", err)
	}

	logger.Debug("cycle metrics recorded",
		zap.Int64("duration_ms", m.DurationMS),
		zap.Int("symbols", m.Symbols),
		zap.Int("price_alerts", m.PriceAlerts),
	)

	return nil
}

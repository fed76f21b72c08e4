package alerts

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"github.com/finpulse/monitor/pkg/logger"
	"github.com/finpulse/monitor/pkg/models"
)

// Sink receives alert records for downstream delivery (console, Telegram,
// websocket stream). Implementations must not mutate the record.
type Sink interface {
	Publish(ctx context.Context, alert models.Alert) error
}

// ConsoleSink logs every alert as a single structured entry.
type ConsoleSink struct{}

// NewConsoleSink creates a console sink.
func NewConsoleSink() *ConsoleSink {
	return &ConsoleSink{}
}

// Publish logs the alert as JSON.
func (s *ConsoleSink) Publish(_ context.Context, alert models.Alert) error {
	payload, err := json.Marshal(alert)
	if err != nil {
		return err
	}

	logger.Info("alert emitted",
		zap.String("kind", alert.Kind()),
		zap.ByteString("payload", payload),
	)
	return nil
}

// MultiSink fans an alert out to several sinks. A failing sink is logged
// and skipped so one broken channel never blocks the others.
type MultiSink struct {
	sinks []Sink
}

// NewMultiSink creates a fan-out sink.
func NewMultiSink(sinks ...Sink) *MultiSink {
	return &MultiSink{sinks: sinks}
}

// Publish delivers the alert to every sink.
func (m *MultiSink) Publish(ctx context.Context, alert models.Alert) error {
	for _, s := range m.sinks {
		if err := s.Publish(ctx, alert); err != nil {
			logger.Warn("alert sink failed",
				zap.String("kind", alert.Kind()),
				zap.Error(err),
			)
		}
	}
	return nil
}

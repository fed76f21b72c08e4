package snapshot

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/finpulse/monitor/pkg/logger"
	"github.com/finpulse/monitor/pkg/models"
)

// Repository persists analysis documents to PostgreSQL. One row per symbol
// with the snapshot as JSONB; the whole document is replaced in a single
// transaction so readers never observe a mix of two cycles.
type Repository struct {
	db *sqlx.DB
}

// NewRepository creates new snapshot repository
func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

// SaveDocument replaces the stored document with doc atomically.
func (r *Repository) SaveDocument(ctx context.Context, doc models.AnalysisDocument) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM latest_analysis`); err != nil {
		return fmt.Errorf("failed to clear previous document: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO latest_analysis (symbol, cycle_ts, data, updated_at)
		VALUES ($1, $2, $3, $4)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for symbol, snap := range doc.Symbols {
		data, err := json.Marshal(snap)
		if err != nil {
			return fmt.Errorf("failed to marshal snapshot for %s: %w", symbol, err)
		}

		if _, err := stmt.ExecContext(ctx, symbol, doc.Timestamp, data, time.Now()); err != nil {
			return fmt.Errorf("failed to insert snapshot for %s: %w", symbol, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}

	logger.Debug("analysis document persisted",
		zap.Int("symbols", len(doc.Symbols)),
		zap.Time("cycle_ts", doc.Timestamp),
	)

	return nil
}

// GetDocument loads the most recently persisted document. Returns false
// when nothing has been persisted yet.
func (r *Repository) GetDocument(ctx context.Context) (models.AnalysisDocument, bool, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT symbol, cycle_ts, data
		FROM latest_analysis
		ORDER BY symbol
	`)
	if err != nil {
		return models.AnalysisDocument{}, false, fmt.Errorf("failed to query document: %w", err)
	}
	defer rows.Close()

	doc := models.AnalysisDocument{Symbols: make(map[string]models.SymbolSnapshot)}
	found := false

	for rows.Next() {
		var symbol string
		var cycleTS time.Time
		var data []byte

		if err := rows.Scan(&symbol, &cycleTS, &data); err != nil {
			return models.AnalysisDocument{}, false, fmt.Errorf("failed to scan row: %w", err)
		}

		var snap models.SymbolSnapshot
		if err := json.Unmarshal(data, &snap); err != nil {
			return models.AnalysisDocument{}, false, fmt.Errorf("failed to unmarshal snapshot for %s: %w", symbol, err)
		}

		doc.Symbols[symbol] = snap
		doc.Timestamp = cycleTS
		found = true
	}

	if err := rows.Err(); err != nil {
		return models.AnalysisDocument{}, false, fmt.Errorf("failed to read rows: %w", err)
	}

	return doc, found, nil
}

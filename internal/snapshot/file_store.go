package snapshot

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/finpulse/monitor/pkg/logger"
	"github.com/finpulse/monitor/pkg/models"
)

// FileStore exports the analysis document as a JSON file for external
// consumers. Writes go through a temp file and rename so a reader never
// sees a half-written document.
type FileStore struct {
	path string
}

// NewFileStore creates new file store writing to path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// SaveDocument writes the document atomically.
func (f *FileStore) SaveDocument(_ context.Context, doc models.AnalysisDocument) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal document: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(f.path), ".analysis-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Rename(tmp.Name(), f.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to replace snapshot file: %w", err)
	}

	logger.Debug("analysis document exported",
		zap.String("path", f.path),
		zap.Int("symbols", len(doc.Symbols)),
	)

	return nil
}

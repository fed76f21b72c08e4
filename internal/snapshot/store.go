package snapshot

import (
	"context"

	"github.com/finpulse/monitor/pkg/models"
)

// Store persists the per-cycle "latest analysis" document. Saving replaces
// the previous document wholesale; partial per-symbol updates are not part
// of the contract.
type Store interface {
	SaveDocument(ctx context.Context, doc models.AnalysisDocument) error
}

// MultiStore writes the document to several stores in order. The first
// failure is returned, but every store is still attempted.
type MultiStore struct {
	stores []Store
}

// NewMultiStore creates a fan-out store.
func NewMultiStore(stores ...Store) *MultiStore {
	return &MultiStore{stores: stores}
}

// SaveDocument saves the document to every store.
func (m *MultiStore) SaveDocument(ctx context.Context, doc models.AnalysisDocument) error {
	var firstErr error
	for _, s := range m.stores {
		if err := s.SaveDocument(ctx, doc); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

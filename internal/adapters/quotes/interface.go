package quotes

import (
	"context"

	"github.com/finpulse/monitor/pkg/models"
)

// Provider supplies current price quotes for watched symbols.
type Provider interface {
	// GetQuote returns the latest quote for one symbol
	GetQuote(ctx context.Context, symbol string) (models.Quote, error)

	// GetQuotes returns quotes for multiple symbols; symbols whose fetch
	// failed are simply absent from the result
	GetQuotes(ctx context.Context, symbols []string) (map[string]models.Quote, error)

	// GetName returns provider name
	GetName() string
}

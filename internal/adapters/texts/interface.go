package texts

import "context"

// Source returns the raw texts (headlines or posts) mentioning a symbol.
// Errors are reported explicitly; the orchestrator's documented policy is
// to treat a failed fetch as an empty batch for that symbol.
type Source interface {
	// GetName returns source name
	GetName() string

	// Fetch returns the ordered raw texts for one symbol
	Fetch(ctx context.Context, symbol string) ([]string, error)
}

// Batch is the explicit result of one fetch: either an ordered text list or
// a failure reason, never both silently collapsed.
type Batch struct {
	Texts []string
	Err   error
}

const userAgent = "finpulse-monitor/1.0"

// symbolAliases maps symbols to better search terms. Crypto tickers get
// their common names; everything else is queried verbatim.
var symbolAliases = map[string][]string{
	"BTC-USD": {"bitcoin", "btc"},
	"ETH-USD": {"ethereum", "eth"},
}

func queryTerms(symbol string) []string {
	if aliases, ok := symbolAliases[symbol]; ok {
		return aliases
	}
	return []string{symbol}
}

// dedupe removes duplicates while preserving order.
func dedupe(items []string) []string {
	seen := make(map[string]struct{}, len(items))
	out := make([]string, 0, len(items))
	for _, item := range items {
		if _, ok := seen[item]; ok {
			continue
		}
		seen[item] = struct{}{}
		out = append(out, item)
	}
	return out
}

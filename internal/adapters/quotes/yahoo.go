package quotes

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"

	"github.com/finpulse/monitor/pkg/logger"
	"github.com/finpulse/monitor/pkg/models"
)

const defaultChartURL = "https://query1.finance.yahoo.com/v8/finance/chart"

const userAgent = "finpulse-monitor/1.0"

// YahooProvider fetches daily close quotes from the Yahoo Finance chart API
// (no API key needed). Covers both equities and -USD crypto pairs.
type YahooProvider struct {
	baseURL string
	client  *http.Client
}

// NewYahooProvider creates new Yahoo quote provider.
func NewYahooProvider() *YahooProvider {
	return &YahooProvider{
		baseURL: defaultChartURL,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

func (p *YahooProvider) GetName() string {
	return "yahoo"
}

// GetQuote returns the latest quote for one symbol.
func (p *YahooProvider) GetQuote(ctx context.Context, symbol string) (models.Quote, error) {
	reqURL := fmt.Sprintf("%s/%s?range=5d&interval=1d", p.baseURL, url.PathEscape(symbol))

	req, err := http.NewRequestWithContext(ctx, "GET", reqURL, http.NoBody)
	if err != nil {
		return models.Quote{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := p.client.Do(req)
	if err != nil {
		return models.Quote{}, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return models.Quote{}, fmt.Errorf("HTTP error %d: %s", resp.StatusCode, string(body))
	}

	var result struct {
		Chart struct {
			Result []struct {
				Meta struct {
					Symbol             string  `json:"symbol"`
					RegularMarketPrice float64 `json:"regularMarketPrice"`
					RegularMarketTime  int64   `json:"regularMarketTime"`
				} `json:"meta"`
			} `json:"result"`
			Error *struct {
				Code        string `json:"code"`
				Description string `json:"description"`
			} `json:"error"`
		} `json:"chart"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return models.Quote{}, fmt.Errorf("failed to decode response: %w", err)
	}

	if result.Chart.Error != nil {
		return models.Quote{}, fmt.Errorf("chart API error: %s", result.Chart.Error.Description)
	}
	if len(result.Chart.Result) == 0 {
		return models.Quote{}, fmt.Errorf("no quote data for %s", symbol)
	}

	meta := result.Chart.Result[0].Meta
	if meta.RegularMarketPrice <= 0 {
		return models.Quote{}, fmt.Errorf("no usable price for %s", symbol)
	}

	marketTime := time.Unix(meta.RegularMarketTime, 0).UTC()

	return models.Quote{
		Symbol:      symbol,
		Price:       meta.RegularMarketPrice,
		TradingDate: marketTime.Format("2006-01-02 Mon"),
		IsLive:      marketTime.Format("2006-01-02") == time.Now().UTC().Format("2006-01-02"),
	}, nil
}

// GetQuotes fetches quotes for all symbols. A symbol whose fetch fails is
// logged and omitted; the cycle skips it rather than aborting.
func (p *YahooProvider) GetQuotes(ctx context.Context, symbols []string) (map[string]models.Quote, error) {
	quotes := make(map[string]models.Quote, len(symbols))

	for _, symbol := range symbols {
		quote, err := p.GetQuote(ctx, symbol)
		if err != nil {
			logger.Warn("quote fetch failed",
				zap.String("symbol", symbol),
				zap.Error(err),
			)
			continue
		}
		quotes[symbol] = quote
	}

	return quotes, nil
}

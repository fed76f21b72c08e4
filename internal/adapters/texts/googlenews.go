package texts

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/finpulse/monitor/pkg/logger"
)

const defaultNewsURL = "https://news.google.com/rss/search"

const maxNewsTitles = 30

// GoogleNewsSource fetches news headlines from the Google News RSS feed.
type GoogleNewsSource struct {
	baseURL string
	client  *http.Client
}

// NewGoogleNewsSource creates new Google News source.
func NewGoogleNewsSource() *GoogleNewsSource {
	return &GoogleNewsSource{
		baseURL: defaultNewsURL,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

func (g *GoogleNewsSource) GetName() string {
	return "google-news"
}

// Fetch queries the feed once per alias term, deduplicates titles while
// preserving order, and caps the result at 30 headlines.
func (g *GoogleNewsSource) Fetch(ctx context.Context, symbol string) ([]string, error) {
	titles := make([]string, 0, maxNewsTitles)
	var lastErr error

	for _, term := range queryTerms(symbol) {
		found, err := g.fetchFeed(ctx, term)
		if err != nil {
			logger.Warn("news feed fetch failed",
				zap.String("symbol", symbol),
				zap.String("term", term),
				zap.Error(err),
			)
			lastErr = err
			continue
		}
		titles = append(titles, found...)
	}

	if len(titles) == 0 && lastErr != nil {
		return nil, fmt.Errorf("all news queries failed for %s: %w", symbol, lastErr)
	}

	titles = dedupe(titles)
	if len(titles) > maxNewsTitles {
		titles = titles[:maxNewsTitles]
	}

	return titles, nil
}

func (g *GoogleNewsSource) fetchFeed(ctx context.Context, query string) ([]string, error) {
	reqURL := fmt.Sprintf("%s?q=%s&hl=en-US&gl=US&ceid=US:en", g.baseURL, url.QueryEscape(query))

	req, err := http.NewRequestWithContext(ctx, "GET", reqURL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("HTTP error %d: %s", resp.StatusCode, string(body))
	}

	var feed struct {
		Channel struct {
			Items []struct {
				Title string `xml:"title"`
			} `xml:"item"`
		} `xml:"channel"`
	}

	// The feed occasionally returns empty or malformed XML; that is an
	// error here, and the caller downgrades it to an empty batch.
	if err := xml.NewDecoder(resp.Body).Decode(&feed); err != nil {
		return nil, fmt.Errorf("failed to parse feed: %w", err)
	}

	items := feed.Channel.Items
	if len(items) > 20 {
		items = items[:20]
	}

	titles := make([]string, 0, len(items))
	for _, item := range items {
		title := strings.TrimSpace(item.Title)
		if title != "" {
			titles = append(titles, title)
		}
	}

	return titles, nil
}

package texts

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/finpulse/monitor/pkg/logger"
)

const defaultRedditURL = "https://www.reddit.com"

const maxSocialTexts = 60

var defaultSubreddits = []string{
	"CryptoCurrency", "CryptoMarkets", "Bitcoin", "Ethereum",
	"stocks", "investing", "wallstreetbets", "StockMarket",
}

// RedditSource fetches discussion posts from the public Reddit search API.
type RedditSource struct {
	baseURL    string
	subreddits []string
	client     *http.Client
}

// NewRedditSource creates new Reddit source. With no subreddits the default
// crypto and stock discussion list is used.
func NewRedditSource(subreddits []string) *RedditSource {
	if len(subreddits) == 0 {
		subreddits = defaultSubreddits
	}

	return &RedditSource{
		baseURL:    defaultRedditURL,
		subreddits: subreddits,
		client:     &http.Client{Timeout: 10 * time.Second},
	}
}

func (r *RedditSource) GetName() string {
	return "reddit"
}

// Fetch searches every subreddit for every alias term, concatenating post
// title and body. Individual subreddit failures are logged and skipped;
// the result is deduplicated in order and capped at 60 texts.
func (r *RedditSource) Fetch(ctx context.Context, symbol string) ([]string, error) {
	terms := queryTerms(symbol)
	posts := make([]string, 0, maxSocialTexts)
	var lastErr error

	for _, sub := range r.subreddits {
		for _, term := range terms {
			found, err := r.search(ctx, sub, term)
			if err != nil {
				logger.Debug("reddit search failed",
					zap.String("subreddit", sub),
					zap.String("term", term),
					zap.Error(err),
				)
				lastErr = err
				continue
			}
			posts = append(posts, found...)
		}
	}

	if len(posts) == 0 && lastErr != nil {
		return nil, fmt.Errorf("all reddit searches failed for %s: %w", symbol, lastErr)
	}

	posts = dedupe(posts)
	if len(posts) > maxSocialTexts {
		posts = posts[:maxSocialTexts]
	}

	return posts, nil
}

func (r *RedditSource) search(ctx context.Context, subreddit, query string) ([]string, error) {
	reqURL := fmt.Sprintf("%s/r/%s/search.json?q=%s&restrict_sr=1&sort=new&t=day&limit=20",
		r.baseURL, url.PathEscape(subreddit), url.QueryEscape(query))

	req, err := http.NewRequestWithContext(ctx, "GET", reqURL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("HTTP error %d: %s", resp.StatusCode, string(body))
	}

	var result struct {
		Data struct {
			Children []struct {
				Data struct {
					Title    string `json:"title"`
					Selftext string `json:"selftext"`
				} `json:"data"`
			} `json:"children"`
		} `json:"data"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	posts := make([]string, 0, len(result.Data.Children))
	for _, child := range result.Data.Children {
		text := strings.TrimSpace(child.Data.Title + " " + child.Data.Selftext)
		if text != "" {
			posts = append(posts, text)
		}
	}

	return posts, nil
}

package models

import "time"

// Decision is the trading recommendation derived from aggregated sentiment.
type Decision string

const (
	DecisionBuy  Decision = "BUY"
	DecisionSell Decision = "SELL"
	DecisionHold Decision = "HOLD"
)

// Analysis is the outcome of one sentiment aggregation pass for one symbol.
// Confidence is expressed in percent (0-100); AvgSentiment stays in [-1, 1].
type Analysis struct {
	Decision      Decision           `json:"decision"`
	Confidence    float64            `json:"confidence"`
	NewsCount     int                `json:"news_count"`
	SocialCount   int                `json:"social_count"`
	TotalAnalyzed int                `json:"total_analyzed"`
	Positive      int                `json:"positive"`
	Negative      int                `json:"negative"`
	AvgSentiment  float64            `json:"avg_sentiment"`
	NewsTopics    map[string]float64 `json:"news_topics"`
	SocialTopics  map[string]float64 `json:"social_topics"`
	SampleTitles  []string           `json:"sample_titles"`
}

// SymbolSnapshot is the per-symbol entry of the persisted analysis document.
// ChangeFromBaselinePct is a percent (0.6 = 0.6%), the same unit price alerts
// report.
type SymbolSnapshot struct {
	Decision              Decision           `json:"decision"`
	Confidence            float64            `json:"confidence"`
	Price                 float64            `json:"price"`
	ChangeFromBaselinePct float64            `json:"change_from_baseline_pct"`
	NewsCount             int                `json:"news_count"`
	SocialCount           int                `json:"social_count"`
	Positive              int                `json:"positive"`
	Negative              int                `json:"negative"`
	AvgSentiment          float64            `json:"avg_sentiment"`
	NewsTopics            map[string]float64 `json:"news_topics"`
	SocialTopics          map[string]float64 `json:"social_topics"`
	SampleTitles          []string           `json:"sample_titles"`
	LastUpdated           time.Time          `json:"last_updated"`
}

// AnalysisDocument is the full "latest analysis" snapshot produced at the end
// of every monitoring cycle. The document is the unit of publication: it is
// always replaced wholesale, never patched per symbol.
type AnalysisDocument struct {
	Timestamp time.Time                 `json:"timestamp"`
	Symbols   map[string]SymbolSnapshot `json:"symbols"`
}

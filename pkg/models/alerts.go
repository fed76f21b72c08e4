package models

import "time"

// Alert is any record that can be handed to an alert sink.
type Alert interface {
	// Kind returns the alert type tag ("price" or "sentiment").
	Kind() string
}

// PriceAlert is emitted when cumulative drift from the baseline price crosses
// the configured threshold. Immutable after construction; numeric fields are
// already rounded for presentation and must not feed back into threshold math.
type PriceAlert struct {
	Type        string    `json:"type"`
	Symbol      string    `json:"symbol"`
	Direction   string    `json:"direction"`
	ChangePct   float64   `json:"change_pct"`
	Price       float64   `json:"price"`
	Baseline    float64   `json:"baseline"`
	TradingDate string    `json:"trading_date,omitempty"`
	Timestamp   time.Time `json:"ts"`
}

func (PriceAlert) Kind() string { return "price" }

// SentimentSnapshot carries one cycle's aggregated sentiment for a symbol.
type SentimentSnapshot struct {
	Type         string             `json:"type"`
	Symbol       string             `json:"symbol"`
	Decision     Decision           `json:"decision"`
	Confidence   float64            `json:"confidence"`
	Price        float64            `json:"price,omitempty"`
	ChangePct    float64            `json:"change_pct,omitempty"`
	NewsCount    int                `json:"news_count"`
	SocialCount  int                `json:"social_count"`
	Positive     int                `json:"positive"`
	Negative     int                `json:"negative"`
	AvgSentiment float64            `json:"avg_sentiment"`
	NewsTopics   map[string]float64 `json:"news_topics"`
	SocialTopics map[string]float64 `json:"social_topics"`
	SampleTitles []string           `json:"sample_titles"`
	Timestamp    time.Time          `json:"ts"`
}

func (SentimentSnapshot) Kind() string { return "sentiment" }

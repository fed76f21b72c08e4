package alerts

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/finpulse/monitor/pkg/models"
)

// BuildPriceAlert constructs an immutable price alert record. changePct is
// the raw fractional change; the emitted value is a percentage rounded to
// two decimals. Rounding here is purely cosmetic: threshold comparisons in
// the tracker always work on unrounded values.
func BuildPriceAlert(symbol, direction string, changePct, price, baseline float64, tradingDate string) models.PriceAlert {
	return models.PriceAlert{
		Type:        "price",
		Symbol:      symbol,
		Direction:   direction,
		ChangePct:   round2(changePct * 100),
		Price:       round2(price),
		Baseline:    round2(baseline),
		TradingDate: tradingDate,
		Timestamp:   time.Now().UTC(),
	}
}

// BuildSentimentSnapshot constructs an immutable sentiment record from one
// cycle's analysis. price and changePct may be zero when no quote was
// available for the symbol this cycle.
func BuildSentimentSnapshot(symbol string, analysis *models.Analysis, price, changePct float64) models.SentimentSnapshot {
	return models.SentimentSnapshot{
		Type:         "sentiment",
		Symbol:       symbol,
		Decision:     analysis.Decision,
		Confidence:   analysis.Confidence,
		Price:        round2(price),
		ChangePct:    round2(changePct * 100),
		NewsCount:    analysis.NewsCount,
		SocialCount:  analysis.SocialCount,
		Positive:     analysis.Positive,
		Negative:     analysis.Negative,
		AvgSentiment: analysis.AvgSentiment,
		NewsTopics:   analysis.NewsTopics,
		SocialTopics: analysis.SocialTopics,
		SampleTitles: analysis.SampleTitles,
		Timestamp:    time.Now().UTC(),
	}
}

func round2(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}

package sentiment

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/finpulse/monitor/internal/scoring"
	"github.com/finpulse/monitor/pkg/models"
)

// reliabilitySaturation is the sample count at which the reliability weight
// reaches 1.0; smaller batches get their confidence pulled toward 50%.
const reliabilitySaturation = 50

// sigmoidSteepness scales average sentiment before the logistic mapping.
const sigmoidSteepness = 2.0

// newsVocabulary and socialVocabulary are the fixed marker-word lists used
// for the explainable topic breakdown. The two lists are disjoint; slice
// order is the tie-break order for equally frequent topics.
var newsVocabulary = []string{
	"etf", "approval", "ban", "partnership", "surge", "drop",
	"adoption", "guidance", "earnings", "revenue", "profit",
}

var socialVocabulary = []string{
	"halving", "bullish", "bearish", "regulation", "pump", "dump",
	"inflation", "macro", "moon", "crash", "rally",
}

const topTopics = 5

const maxSampleTitles = 3

// Aggregator turns raw per-text sentiment scores into a confidence-weighted
// trading decision. Scoring itself is delegated to the injected Scorer.
type Aggregator struct {
	scorer scoring.Scorer
	buy    float64
	sell   float64
}

// NewAggregator creates a sentiment aggregator with the given decision
// thresholds. Thresholds must be finite and satisfy 0 < sell < buy < 1.
func NewAggregator(scorer scoring.Scorer, buyThreshold, sellThreshold float64) (*Aggregator, error) {
	if scorer == nil {
		return nil, fmt.Errorf("scorer is required")
	}
	for _, v := range []float64{buyThreshold, sellThreshold} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("decision thresholds must be finite")
		}
	}
	if sellThreshold <= 0 || buyThreshold >= 1 {
		return nil, fmt.Errorf("decision thresholds must lie in (0, 1): buy=%v sell=%v", buyThreshold, sellThreshold)
	}
	if sellThreshold >= buyThreshold {
		return nil, fmt.Errorf("sell threshold %v must be below buy threshold %v", sellThreshold, buyThreshold)
	}

	return &Aggregator{
		scorer: scorer,
		buy:    buyThreshold,
		sell:   sellThreshold,
	}, nil
}

// Analyze scores every text, aggregates the scores into a decision with a
// calibrated confidence, and produces the explainable topic breakdown.
// Returns nil when there is nothing to analyze: callers must keep their
// previous analysis rather than overwrite it with a default.
func (a *Aggregator) Analyze(newsTitles, socialTexts []string) *models.Analysis {
	scores := make([]float64, 0, len(newsTitles)+len(socialTexts))
	for _, t := range newsTitles {
		scores = append(scores, a.scorer.Score(t))
	}
	for _, t := range socialTexts {
		scores = append(scores, a.scorer.Score(t))
	}

	if len(scores) == 0 {
		return nil
	}

	var sum float64
	positive, negative := 0, 0
	for _, s := range scores {
		sum += s
		if s > 0 {
			positive++
		} else if s < 0 {
			negative++
		}
	}
	avg := sum / float64(len(scores))

	confidence := calibratedConfidence(avg, len(scores))
	decision := a.decide(confidence)

	sample := newsTitles
	if len(sample) > maxSampleTitles {
		sample = sample[:maxSampleTitles]
	}

	return &models.Analysis{
		Decision:      decision,
		Confidence:    round1(confidence * 100),
		NewsCount:     len(newsTitles),
		SocialCount:   len(socialTexts),
		TotalAnalyzed: len(scores),
		Positive:      positive,
		Negative:      negative,
		AvgSentiment:  round3(avg),
		NewsTopics:    extractTopics(newsTitles, newsVocabulary),
		SocialTopics:  extractTopics(socialTexts, socialVocabulary),
		SampleTitles:  append([]string(nil), sample...),
	}
}

// calibratedConfidence maps average sentiment into (0,1) and shrinks the
// deviation from the neutral midpoint by a sample-size reliability weight.
// The order matters: reliability dampens only the offset from 0.5.
func calibratedConfidence(avgSentiment float64, sampleCount int) float64 {
	base := sigmoid(sigmoidSteepness * avgSentiment)
	reliability := math.Min(1.0, math.Log(1+float64(sampleCount))/math.Log(reliabilitySaturation+1))
	return 0.5 + (base-0.5)*reliability
}

// decide classifies a final confidence. BUY wins at the buy boundary and
// SELL at the sell boundary; everything between is HOLD.
func (a *Aggregator) decide(confidence float64) models.Decision {
	switch {
	case confidence >= a.buy:
		return models.DecisionBuy
	case confidence <= a.sell:
		return models.DecisionSell
	default:
		return models.DecisionHold
	}
}

// extractTopics counts the texts containing each vocabulary word
// (case-insensitive substring match, at most once per text), keeps the five
// highest counts (ties broken by vocabulary order) and normalizes by the
// total across the kept words.
func extractTopics(texts []string, vocab []string) map[string]float64 {
	counts := make([]int, len(vocab))
	for _, text := range texts {
		lower := strings.ToLower(text)
		for i, word := range vocab {
			if strings.Contains(lower, word) {
				counts[i]++
			}
		}
	}

	order := make([]int, 0, len(vocab))
	for i := range vocab {
		if counts[i] > 0 {
			order = append(order, i)
		}
	}
	sort.SliceStable(order, func(a, b int) bool {
		return counts[order[a]] > counts[order[b]]
	})

	if len(order) > topTopics {
		order = order[:topTopics]
	}

	total := 0
	for _, i := range order {
		total += counts[i]
	}

	topics := make(map[string]float64, len(order))
	for _, i := range order {
		topics[vocab[i]] = round3(float64(counts[i]) / float64(total))
	}
	return topics
}

func sigmoid(x float64) float64 {
	return 1 / (1 + math.Exp(-x))
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}

package scoring

import "strings"

// Scorer produces a sentiment score in [-1, 1] for a single text.
// The monitoring engine only depends on this interface; the default
// keyword implementation below can be swapped for a model-backed scorer.
type Scorer interface {
	Score(text string) float64
}

// KeywordScorer scores text by summing signed keyword weights and
// normalizing by text length.
type KeywordScorer struct {
	weights map[string]float64
}

// NewKeywordScorer creates a scorer with the built-in market vocabulary.
func NewKeywordScorer() *KeywordScorer {
	return &KeywordScorer{weights: buildWeights()}
}

// Score returns the sentiment score for text, clamped to [-1, 1].
// Texts with no recognized keywords score 0.
func (s *KeywordScorer) Score(text string) float64 {
	if text == "" {
		return 0
	}

	words := strings.Fields(strings.ToLower(text))
	if len(words) == 0 {
		return 0
	}

	var score float64
	matched := 0
	for _, word := range words {
		word = strings.Trim(word, ".,!?;:\"'()")
		if w, ok := s.weights[word]; ok {
			score += w
			matched++
		}
	}

	if matched == 0 {
		return 0
	}

	normalized := score / float64(len(words))
	if normalized > 1 {
		return 1
	}
	if normalized < -1 {
		return -1
	}
	return normalized
}

// buildWeights returns the signed keyword weights. Positive weights lean
// bullish, negative lean bearish; magnitude reflects how strong the signal
// usually is in headlines and posts.
func buildWeights() map[string]float64 {
	return map[string]float64{
		// bullish
		"bullish":      1.0,
		"bull":         0.9,
		"rally":        0.9,
		"surge":        0.8,
		"soar":         0.8,
		"breakout":     0.7,
		"moon":         0.7,
		"rocket":       0.7,
		"pump":         0.7,
		"beat":         0.7,
		"upgrade":      0.6,
		"gain":         0.6,
		"profit":       0.6,
		"adoption":     0.6,
		"approval":     0.6,
		"approved":     0.6,
		"etf":          0.6,
		"partnership":  0.5,
		"growth":       0.5,
		"rise":         0.5,
		"up":           0.5,
		"record":       0.5,
		"halving":      0.5,
		"optimistic":   0.5,
		"breakthrough": 0.6,

		// bearish
		"bearish":     -1.0,
		"bear":        -0.9,
		"crash":       -1.0,
		"dump":        -0.9,
		"plunge":      -0.8,
		"panic":       -0.8,
		"fraud":       -1.0,
		"scam":        -1.0,
		"hack":        -1.0,
		"lawsuit":     -0.7,
		"selloff":     -0.7,
		"miss":        -0.7,
		"downgrade":   -0.7,
		"ban":         -0.8,
		"crackdown":   -0.7,
		"loss":        -0.7,
		"drop":        -0.6,
		"fall":        -0.6,
		"decline":     -0.6,
		"fear":        -0.6,
		"correction":  -0.6,
		"bubble":      -0.6,
		"overvalued":  -0.6,
		"down":        -0.5,
		"regulation":  -0.5,
		"pessimistic": -0.5,
		"inflation":   -0.4,
	}
}

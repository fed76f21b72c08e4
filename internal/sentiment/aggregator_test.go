package sentiment

import (
	"math"
	"testing"

	"github.com/finpulse/monitor/pkg/models"
)

// fixedScorer returns the same score for every text.
type fixedScorer struct {
	score float64
}

func (s fixedScorer) Score(string) float64 { return s.score }

func mustAggregator(t *testing.T, score float64) *Aggregator {
	t.Helper()
	agg, err := NewAggregator(fixedScorer{score}, 0.65, 0.35)
	if err != nil {
		t.Fatalf("NewAggregator: %v", err)
	}
	return agg
}

func titles(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = "market update"
	}
	return out
}

func TestNewAggregator(t *testing.T) {
	t.Run("rejects nil scorer", func(t *testing.T) {
		if _, err := NewAggregator(nil, 0.65, 0.35); err == nil {
			t.Fatal("expected error for nil scorer")
		}
	})

	t.Run("rejects sell above buy", func(t *testing.T) {
		if _, err := NewAggregator(fixedScorer{}, 0.35, 0.65); err == nil {
			t.Fatal("expected error when sell >= buy")
		}
	})

	t.Run("rejects equal thresholds", func(t *testing.T) {
		if _, err := NewAggregator(fixedScorer{}, 0.5, 0.5); err == nil {
			t.Fatal("expected error when sell == buy")
		}
	})

	t.Run("rejects non-finite thresholds", func(t *testing.T) {
		if _, err := NewAggregator(fixedScorer{}, math.NaN(), 0.35); err == nil {
			t.Fatal("expected error for NaN threshold")
		}
	})

	t.Run("rejects thresholds outside unit interval", func(t *testing.T) {
		if _, err := NewAggregator(fixedScorer{}, 1.2, 0.35); err == nil {
			t.Fatal("expected error for buy >= 1")
		}
		if _, err := NewAggregator(fixedScorer{}, 0.65, -0.1); err == nil {
			t.Fatal("expected error for sell <= 0")
		}
	})
}

func TestAnalyzeEmptyInput(t *testing.T) {
	agg := mustAggregator(t, 0.8)

	if got := agg.Analyze(nil, nil); got != nil {
		t.Fatalf("expected nil analysis for empty input, got %+v", got)
	}
	if got := agg.Analyze([]string{}, []string{}); got != nil {
		t.Fatalf("expected nil analysis for empty slices, got %+v", got)
	}
}

func TestConfidenceCalibration(t *testing.T) {
	t.Run("neutral sentiment yields 50 percent", func(t *testing.T) {
		if got := calibratedConfidence(0, 10); got != 0.5 {
			t.Fatalf("calibratedConfidence(0, 10) = %v, want 0.5", got)
		}
	})

	t.Run("more samples pull confidence away from midpoint", func(t *testing.T) {
		small := calibratedConfidence(0.8, 2)
		large := calibratedConfidence(0.8, 50)

		if small >= large {
			t.Fatalf("confidence with 2 samples (%v) should be below 50 samples (%v)", small, large)
		}

		base := sigmoid(sigmoidSteepness * 0.8)
		if large > base+1e-9 {
			t.Fatalf("confidence %v exceeds uncalibrated base %v", large, base)
		}
	})

	t.Run("saturates at fifty samples", func(t *testing.T) {
		at50 := calibratedConfidence(0.8, 50)
		at500 := calibratedConfidence(0.8, 500)
		if at500 != at50 {
			t.Fatalf("confidence should be capped at saturation: %v vs %v", at50, at500)
		}
	})

	t.Run("known values", func(t *testing.T) {
		agg := mustAggregator(t, 0.8)

		small := agg.Analyze(titles(2), nil)
		if small == nil || small.Confidence != 59.3 {
			t.Fatalf("2-sample confidence = %+v, want 59.3", small)
		}

		large := agg.Analyze(titles(50), nil)
		if large == nil || large.Confidence != 83.2 {
			t.Fatalf("50-sample confidence = %+v, want 83.2", large)
		}
	})
}

func TestDecisionBoundaries(t *testing.T) {
	agg := mustAggregator(t, 0)

	cases := []struct {
		confidence float64
		want       models.Decision
	}{
		{0.65, models.DecisionBuy},
		{0.80, models.DecisionBuy},
		{0.649, models.DecisionHold},
		{0.50, models.DecisionHold},
		{0.351, models.DecisionHold},
		{0.35, models.DecisionSell},
		{0.10, models.DecisionSell},
	}

	for _, tc := range cases {
		if got := agg.decide(tc.confidence); got != tc.want {
			t.Errorf("decide(%v) = %v, want %v", tc.confidence, got, tc.want)
		}
	}
}

func TestAnalyzeCounts(t *testing.T) {
	agg := mustAggregator(t, 0.5)

	news := []string{"one", "two", "three", "four"}
	social := []string{"a", "b"}

	got := agg.Analyze(news, social)
	if got == nil {
		t.Fatal("expected analysis")
	}

	if got.NewsCount != 4 || got.SocialCount != 2 || got.TotalAnalyzed != 6 {
		t.Errorf("counts = %d/%d/%d, want 4/2/6", got.NewsCount, got.SocialCount, got.TotalAnalyzed)
	}
	if got.Positive != 6 || got.Negative != 0 {
		t.Errorf("positive/negative = %d/%d, want 6/0", got.Positive, got.Negative)
	}
	if got.AvgSentiment != 0.5 {
		t.Errorf("avg sentiment = %v, want 0.5", got.AvgSentiment)
	}
	if len(got.SampleTitles) != 3 {
		t.Errorf("sample titles = %v, want first 3 news titles", got.SampleTitles)
	}
	if got.SampleTitles[0] != "one" || got.SampleTitles[2] != "three" {
		t.Errorf("sample titles = %v, want leading news titles in order", got.SampleTitles)
	}
}

func TestAnalyzeNeutralScores(t *testing.T) {
	agg := mustAggregator(t, 0)

	got := agg.Analyze([]string{"nothing to see"}, nil)
	if got == nil {
		t.Fatal("expected analysis for non-empty input")
	}
	if got.Decision != models.DecisionHold {
		t.Errorf("decision = %v, want HOLD", got.Decision)
	}
	if got.Confidence != 50.0 {
		t.Errorf("confidence = %v, want 50.0", got.Confidence)
	}
	if got.Positive != 0 || got.Negative != 0 {
		t.Errorf("zero scores must count as neither positive nor negative, got %d/%d", got.Positive, got.Negative)
	}
}

func TestExtractTopics(t *testing.T) {
	t.Run("counts once per text and normalizes", func(t *testing.T) {
		texts := []string{"Stock surge reported", "another surge surge", "price drop"}

		got := extractTopics(texts, newsVocabulary)

		if len(got) != 2 {
			t.Fatalf("topics = %v, want exactly surge and drop", got)
		}
		if got["surge"] != 0.667 {
			t.Errorf("surge weight = %v, want 0.667", got["surge"])
		}
		if got["drop"] != 0.333 {
			t.Errorf("drop weight = %v, want 0.333", got["drop"])
		}
	})

	t.Run("case insensitive substring match", func(t *testing.T) {
		got := extractTopics([]string{"ETF Approval imminent"}, newsVocabulary)
		if got["etf"] != 0.5 || got["approval"] != 0.5 {
			t.Errorf("topics = %v, want etf and approval at 0.5 each", got)
		}
	})

	t.Run("keeps top five with ties broken by vocabulary order", func(t *testing.T) {
		texts := []string{"etf", "approval", "ban", "partnership", "surge", "drop"}

		got := extractTopics(texts, newsVocabulary)

		if len(got) != 5 {
			t.Fatalf("topics = %v, want 5 entries", got)
		}
		if _, ok := got["drop"]; ok {
			t.Errorf("drop should lose the tie-break to earlier vocabulary words: %v", got)
		}
		for _, word := range []string{"etf", "approval", "ban", "partnership", "surge"} {
			if got[word] != 0.2 {
				t.Errorf("topic %s = %v, want 0.2", word, got[word])
			}
		}
	})

	t.Run("no matches yields empty map", func(t *testing.T) {
		got := extractTopics([]string{"quiet market day"}, newsVocabulary)
		if len(got) != 0 {
			t.Errorf("topics = %v, want empty", got)
		}
	})
}

func TestVocabulariesDisjoint(t *testing.T) {
	seen := map[string]bool{}
	for _, w := range newsVocabulary {
		seen[w] = true
	}
	for _, w := range socialVocabulary {
		if seen[w] {
			t.Errorf("word %q appears in both vocabularies", w)
		}
	}
}

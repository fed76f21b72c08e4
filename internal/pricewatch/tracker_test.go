package pricewatch

import (
	"math"
	"testing"
	"time"
)

func mustTracker(t *testing.T, threshold float64) *Tracker {
	t.Helper()
	tr, err := NewTracker(threshold)
	if err != nil {
		t.Fatalf("NewTracker: %v", err)
	}
	return tr
}

func TestNewTracker(t *testing.T) {
	for _, threshold := range []float64{0, -0.01, math.NaN(), math.Inf(1)} {
		if _, err := NewTracker(threshold); err == nil {
			t.Errorf("NewTracker(%v) should fail", threshold)
		}
	}

	if _, err := NewTracker(0.005); err != nil {
		t.Fatalf("NewTracker(0.005): %v", err)
	}
}

func TestFirstObservationSeedsBaseline(t *testing.T) {
	tr := mustTracker(t, 0.005)

	obs, err := tr.Observe("AAPL", 100)
	if err != nil {
		t.Fatalf("Observe: %v", err)
	}

	if !obs.First {
		t.Error("first observation should be flagged")
	}
	if obs.ShouldAlert {
		t.Error("first observation must never alert")
	}
	if obs.Baseline != 100 || obs.ChangePct != 0 {
		t.Errorf("baseline/change = %v/%v, want 100/0", obs.Baseline, obs.ChangePct)
	}

	baseline, ok := tr.Baseline("AAPL")
	if !ok || baseline != 100 {
		t.Errorf("Baseline = %v/%v, want 100/true", baseline, ok)
	}
}

func TestAlertOnThresholdCross(t *testing.T) {
	tr := mustTracker(t, 0.005)

	tr.Observe("AAPL", 100)

	obs, err := tr.Observe("AAPL", 100.6)
	if err != nil {
		t.Fatalf("Observe: %v", err)
	}

	if !obs.ShouldAlert {
		t.Fatal("0.6% move over a 0.5% threshold must alert")
	}
	if obs.Direction != "up" {
		t.Errorf("direction = %q, want up", obs.Direction)
	}
	if math.Abs(obs.ChangePct-0.006) > 1e-9 {
		t.Errorf("change = %v, want 0.006", obs.ChangePct)
	}
	if obs.Baseline != 100 {
		t.Errorf("alert must report the pre-reset baseline, got %v", obs.Baseline)
	}

	// Baseline resets to the alert price, not the boundary
	baseline, _ := tr.Baseline("AAPL")
	if baseline != 100.6 {
		t.Errorf("baseline after alert = %v, want 100.6", baseline)
	}
}

func TestCumulativeDriftBelowThreshold(t *testing.T) {
	tr := mustTracker(t, 0.005)

	tr.Observe("NVDA", 100)

	// Each step is 0.2%, cumulative drift crosses 0.5% on the third step
	obs, _ := tr.Observe("NVDA", 100.2)
	if obs.ShouldAlert {
		t.Error("0.2% drift should not alert")
	}

	obs, _ = tr.Observe("NVDA", 100.4)
	if obs.ShouldAlert {
		t.Error("0.4% cumulative drift should not alert")
	}

	obs, _ = tr.Observe("NVDA", 100.6)
	if !obs.ShouldAlert {
		t.Error("0.6% cumulative drift from baseline must alert")
	}
	if obs.Baseline != 100 {
		t.Errorf("baseline = %v, want the original 100 until the alert fires", obs.Baseline)
	}
}

func TestDownwardMove(t *testing.T) {
	tr := mustTracker(t, 0.005)

	tr.Observe("BTC-USD", 50000)

	obs, _ := tr.Observe("BTC-USD", 49700)
	if !obs.ShouldAlert {
		t.Fatal("0.6% drop must alert")
	}
	if obs.Direction != "down" {
		t.Errorf("direction = %q, want down", obs.Direction)
	}
}

func TestBoundaryIsInclusive(t *testing.T) {
	tr := mustTracker(t, 0.005)

	tr.Observe("MSFT", 1000)

	obs, _ := tr.Observe("MSFT", 1005)
	if !obs.ShouldAlert {
		t.Error("change exactly at the threshold must alert")
	}
}

func TestInvalidPrices(t *testing.T) {
	tr := mustTracker(t, 0.005)

	for _, price := range []float64{0, -5, math.NaN(), math.Inf(1)} {
		if _, err := tr.Observe("AAPL", price); err == nil {
			t.Errorf("Observe(%v) should fail", price)
		}
	}

	// Rejected prices must not seed state
	if _, ok := tr.Baseline("AAPL"); ok {
		t.Error("invalid price must not create symbol state")
	}
}

func TestLastAlertTime(t *testing.T) {
	tr := mustTracker(t, 0.005)
	fixed := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)
	tr.now = func() time.Time { return fixed }

	tr.Observe("ETH-USD", 3000)

	if _, ok := tr.LastAlertTime("ETH-USD"); ok {
		t.Error("no alert fired yet")
	}

	tr.Observe("ETH-USD", 3030)

	got, ok := tr.LastAlertTime("ETH-USD")
	if !ok || !got.Equal(fixed) {
		t.Errorf("LastAlertTime = %v/%v, want %v/true", got, ok, fixed)
	}
}

func TestSymbolsTrackedIndependently(t *testing.T) {
	tr := mustTracker(t, 0.005)

	tr.Observe("AAPL", 100)
	tr.Observe("NVDA", 200)

	obs, _ := tr.Observe("AAPL", 101)
	if !obs.ShouldAlert {
		t.Error("AAPL move must alert")
	}

	obs, _ = tr.Observe("NVDA", 200.2)
	if obs.ShouldAlert {
		t.Error("NVDA baseline must be unaffected by AAPL alerts")
	}
}

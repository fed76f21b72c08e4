package pricewatch

import (
	"fmt"
	"math"
	"sync"
	"time"
)

// Observation is the result of feeding one price into the tracker.
// ChangePct is a fraction (0.006 = 0.6%), measured from the baseline in
// effect before this observation.
type Observation struct {
	Symbol      string
	Price       float64
	Baseline    float64
	ChangePct   float64
	ShouldAlert bool
	Direction   string
	First       bool
}

type symbolState struct {
	baseline  float64
	lastAlert time.Time
	alerted   bool
}

// Tracker maintains per-symbol baseline prices and decides when cumulative
// drift from the baseline crosses the alert threshold. The baseline is the
// price at which the last alert fired (or the first observed price), never
// simply the previous cycle's price. State starts empty and lives for the
// process lifetime.
type Tracker struct {
	mu        sync.RWMutex
	threshold float64
	states    map[string]*symbolState
	now       func() time.Time
}

// NewTracker creates a tracker with the given alert threshold, expressed as
// a fraction (0.005 = 0.5%). The threshold must be finite and positive.
func NewTracker(threshold float64) (*Tracker, error) {
	if math.IsNaN(threshold) || math.IsInf(threshold, 0) || threshold <= 0 {
		return nil, fmt.Errorf("price threshold must be a positive finite fraction, got %v", threshold)
	}

	return &Tracker{
		threshold: threshold,
		states:    make(map[string]*symbolState),
		now:       time.Now,
	}, nil
}

// Observe records a price for a symbol and reports cumulative change from
// the baseline. The first observation seeds the baseline and never alerts.
// When an alert fires the baseline is reset to the current price, so the
// same movement cannot re-fire. Up and down moves are treated identically.
func (t *Tracker) Observe(symbol string, price float64) (Observation, error) {
	if math.IsNaN(price) || math.IsInf(price, 0) || price <= 0 {
		return Observation{}, fmt.Errorf("invalid price %v for %s", price, symbol)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	st, ok := t.states[symbol]
	if !ok {
		t.states[symbol] = &symbolState{baseline: price}
		return Observation{
			Symbol:   symbol,
			Price:    price,
			Baseline: price,
			First:    true,
		}, nil
	}

	change := (price - st.baseline) / st.baseline
	obs := Observation{
		Symbol:    symbol,
		Price:     price,
		Baseline:  st.baseline,
		ChangePct: change,
	}

	if math.Abs(change) >= t.threshold {
		obs.ShouldAlert = true
		if change > 0 {
			obs.Direction = "up"
		} else {
			obs.Direction = "down"
		}

		// Reset to the current price, not the threshold boundary:
		// subsequent comparisons start fresh from here.
		st.baseline = price
		st.lastAlert = t.now()
		st.alerted = true
	}

	return obs, nil
}

// Baseline returns the current baseline price for a symbol, if observed.
func (t *Tracker) Baseline(symbol string) (float64, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	st, ok := t.states[symbol]
	if !ok {
		return 0, false
	}
	return st.baseline, true
}

// LastAlertTime returns when the last price alert fired for a symbol.
// The value is tracked for future cooldown support but is not consulted
// for alert suppression.
func (t *Tracker) LastAlertTime(symbol string) (time.Time, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	st, ok := t.states[symbol]
	if !ok || !st.alerted {
		return time.Time{}, false
	}
	return st.lastAlert, true
}

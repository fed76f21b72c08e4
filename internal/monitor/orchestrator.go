package monitor

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/finpulse/monitor/internal/adapters/metrics"
	"github.com/finpulse/monitor/internal/adapters/quotes"
	"github.com/finpulse/monitor/internal/adapters/texts"
	"github.com/finpulse/monitor/internal/alerts"
	"github.com/finpulse/monitor/internal/pricewatch"
	"github.com/finpulse/monitor/internal/sentiment"
	"github.com/finpulse/monitor/internal/snapshot"
	"github.com/finpulse/monitor/pkg/logger"
	"github.com/finpulse/monitor/pkg/models"
)

// DocumentLoader restores the last persisted analysis document at startup.
type DocumentLoader interface {
	GetDocument(ctx context.Context) (models.AnalysisDocument, bool, error)
}

// Orchestrator runs the monitoring cycle: the price phase walks the watch
// list in order and emits threshold alerts inline, then the sentiment phase
// fans out per symbol, and finally the merged document is published
// wholesale. Implements worker.Worker, and the PeriodicWorker driving it
// guarantees cycles never overlap.
type Orchestrator struct {
	watchList  []string
	quotes     quotes.Provider
	news       texts.Source
	social     texts.Source
	aggregator *sentiment.Aggregator
	tracker    *pricewatch.Tracker
	sink       alerts.Sink
	store      snapshot.Store
	recorder   metrics.Recorder

	mu     sync.RWMutex
	latest models.AnalysisDocument
}

// Options bundles the orchestrator dependencies. News, Social, Store and
// Recorder may be nil/absent; the cycle degrades gracefully without them.
type Options struct {
	WatchList  []string
	Quotes     quotes.Provider
	News       texts.Source
	Social     texts.Source
	Aggregator *sentiment.Aggregator
	Tracker    *pricewatch.Tracker
	Sink       alerts.Sink
	Store      snapshot.Store
	Recorder   metrics.Recorder
}

// NewOrchestrator creates new cycle orchestrator
func NewOrchestrator(opts Options) *Orchestrator {
	recorder := opts.Recorder
	if recorder == nil {
		recorder = metrics.NopRecorder{}
	}

	return &Orchestrator{
		watchList:  opts.WatchList,
		quotes:     opts.Quotes,
		news:       opts.News,
		social:     opts.Social,
		aggregator: opts.Aggregator,
		tracker:    opts.Tracker,
		sink:       opts.Sink,
		store:      opts.Store,
		recorder:   recorder,
		latest:     models.AnalysisDocument{Symbols: map[string]models.SymbolSnapshot{}},
	}
}

// Name returns worker name for logging
func (o *Orchestrator) Name() string {
	return "monitor-cycle"
}

// Latest returns the most recent analysis document.
func (o *Orchestrator) Latest() models.AnalysisDocument {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.latest
}

// Restore loads the persisted document so decisions survive a restart.
// Price baselines are intentionally not restored: the tracker re-seeds on
// the first cycle.
func (o *Orchestrator) Restore(ctx context.Context, loader DocumentLoader) error {
	doc, found, err := loader.GetDocument(ctx)
	if err != nil {
		return err
	}
	if !found {
		logger.Info("no persisted analysis document, starting fresh")
		return nil
	}

	o.mu.Lock()
	o.latest = doc
	o.mu.Unlock()

	logger.Info("analysis document restored",
		zap.Int("symbols", len(doc.Symbols)),
		zap.Time("cycle_ts", doc.Timestamp),
	)

	return nil
}

// symbolResult carries one symbol's sentiment phase outcome.
type symbolResult struct {
	analysis *models.Analysis
	news     int
	social   int
}

// priceInfo is what the price phase learned about a symbol this cycle.
type priceInfo struct {
	quote models.Quote
	obs   pricewatch.Observation
	ok    bool
}

// Run executes one full monitoring cycle.
func (o *Orchestrator) Run(ctx context.Context) error {
	start := time.Now()

	prices, priceAlerts := o.pricePhase(ctx)
	results := o.sentimentPhase(ctx)

	doc := o.buildDocument(ctx, prices, results)

	if o.store != nil {
		if err := o.store.SaveDocument(ctx, doc); err != nil {
			logger.Error("failed to persist analysis document", zap.Error(err))
			// In-memory state still advances; persistence catches up next cycle
		}
	}

	o.mu.Lock()
	o.latest = doc
	o.mu.Unlock()

	quotesOK := 0
	textsScored := 0
	for _, p := range prices {
		if p.ok {
			quotesOK++
		}
	}
	for _, r := range results {
		if r.analysis != nil {
			textsScored += r.analysis.TotalAnalyzed
		}
	}

	elapsed := time.Since(start)
	if err := o.recorder.RecordCycle(ctx, metrics.CycleMetrics{
		Timestamp:   start.UTC(),
		DurationMS:  elapsed.Milliseconds(),
		Symbols:     len(o.watchList),
		QuotesOK:    quotesOK,
		PriceAlerts: priceAlerts,
		TextsScored: textsScored,
	}); err != nil {
		logger.Warn("failed to record cycle metrics", zap.Error(err))
	}

	logger.Info("monitoring cycle completed",
		zap.Duration("duration", elapsed),
		zap.Int("symbols", len(o.watchList)),
		zap.Int("quotes_ok", quotesOK),
		zap.Int("price_alerts", priceAlerts),
		zap.Int("texts_scored", textsScored),
	)

	return nil
}

// pricePhase fetches quotes and feeds them through the baseline tracker,
// emitting alerts inline in watch-list order. The whole phase completes
// before any sentiment work starts.
func (o *Orchestrator) pricePhase(ctx context.Context) (map[string]priceInfo, int) {
	prices := make(map[string]priceInfo, len(o.watchList))
	alertCount := 0

	quoteMap, err := o.quotes.GetQuotes(ctx, o.watchList)
	if err != nil {
		logger.Warn("quote fetch failed, skipping price phase",
			zap.String("provider", o.quotes.GetName()),
			zap.Error(err),
		)
		quoteMap = map[string]models.Quote{}
	}

	for _, symbol := range o.watchList {
		quote, ok := quoteMap[symbol]
		if !ok {
			logger.Debug("no quote this cycle", zap.String("symbol", symbol))
			prices[symbol] = priceInfo{}
			continue
		}

		obs, err := o.tracker.Observe(symbol, quote.Price)
		if err != nil {
			logger.Warn("rejected price observation",
				zap.String("symbol", symbol),
				zap.Float64("price", quote.Price),
				zap.Error(err),
			)
			prices[symbol] = priceInfo{}
			continue
		}

		prices[symbol] = priceInfo{quote: quote, obs: obs, ok: true}

		if obs.ShouldAlert {
			alert := alerts.BuildPriceAlert(symbol, obs.Direction, obs.ChangePct,
				obs.Price, obs.Baseline, quote.TradingDate)

			if err := o.sink.Publish(ctx, alert); err != nil {
				logger.Error("failed to publish price alert",
					zap.String("symbol", symbol),
					zap.Error(err),
				)
			}
			alertCount++
		}
	}

	return prices, alertCount
}

// sentimentPhase fans out one goroutine per symbol, each fetching news and
// social texts and aggregating them. A failed fetch is treated as an empty
// batch, not an aborted cycle.
func (o *Orchestrator) sentimentPhase(ctx context.Context) map[string]symbolResult {
	results := make([]symbolResult, len(o.watchList))

	var wg sync.WaitGroup
	for i, symbol := range o.watchList {
		wg.Add(1)
		go func(i int, symbol string) {
			defer wg.Done()
			results[i] = o.analyzeSymbol(ctx, symbol)
		}(i, symbol)
	}
	wg.Wait()

	out := make(map[string]symbolResult, len(o.watchList))
	for i, symbol := range o.watchList {
		out[symbol] = results[i]
	}
	return out
}

// analyzeSymbol fetches the news and social batches concurrently and
// aggregates whatever came back. A batch carrying an error is downgraded to
// empty input here, never an aborted cycle.
func (o *Orchestrator) analyzeSymbol(ctx context.Context, symbol string) symbolResult {
	var newsBatch, socialBatch texts.Batch

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		newsBatch = o.fetchBatch(ctx, o.news, symbol)
	}()
	go func() {
		defer wg.Done()
		socialBatch = o.fetchBatch(ctx, o.social, symbol)
	}()
	wg.Wait()

	if newsBatch.Err != nil {
		logger.Warn("news fetch failed, treating as empty batch",
			zap.String("source", o.news.GetName()),
			zap.String("symbol", symbol),
			zap.Error(newsBatch.Err),
		)
	}
	if socialBatch.Err != nil {
		logger.Warn("social fetch failed, treating as empty batch",
			zap.String("source", o.social.GetName()),
			zap.String("symbol", symbol),
			zap.Error(socialBatch.Err),
		)
	}

	analysis := o.aggregator.Analyze(newsBatch.Texts, socialBatch.Texts)

	return symbolResult{
		analysis: analysis,
		news:     len(newsBatch.Texts),
		social:   len(socialBatch.Texts),
	}
}

// fetchBatch wraps one source fetch. A nil source (disabled) yields an empty
// batch; a failed fetch yields a batch carrying the error and no texts.
func (o *Orchestrator) fetchBatch(ctx context.Context, src texts.Source, symbol string) texts.Batch {
	if src == nil {
		return texts.Batch{}
	}

	items, err := src.Fetch(ctx, symbol)
	if err != nil {
		return texts.Batch{Err: err}
	}

	return texts.Batch{Texts: items}
}

// buildDocument merges price and sentiment results into the next analysis
// document. A symbol with no scored texts keeps its previous snapshot
// untouched; actionable decisions are also emitted to the alert sink.
func (o *Orchestrator) buildDocument(ctx context.Context, prices map[string]priceInfo, results map[string]symbolResult) models.AnalysisDocument {
	now := time.Now().UTC()

	o.mu.RLock()
	prior := o.latest.Symbols
	o.mu.RUnlock()

	doc := models.AnalysisDocument{
		Timestamp: now,
		Symbols:   make(map[string]models.SymbolSnapshot, len(o.watchList)),
	}

	for _, symbol := range o.watchList {
		res := results[symbol]
		price := prices[symbol]

		if res.analysis == nil {
			if prev, ok := prior[symbol]; ok {
				doc.Symbols[symbol] = prev
			}
			continue
		}

		// The tracker reports a fraction; the document and the alert
		// stream both speak percent.
		var priceVal, changeFrac float64
		if price.ok {
			priceVal = price.obs.Price
			changeFrac = price.obs.ChangePct
		} else if prev, ok := prior[symbol]; ok {
			priceVal = prev.Price
			changeFrac = prev.ChangeFromBaselinePct / 100
		}

		snap := models.SymbolSnapshot{
			Decision:              res.analysis.Decision,
			Confidence:            res.analysis.Confidence,
			Price:                 priceVal,
			ChangeFromBaselinePct: changeFrac * 100,
			NewsCount:             res.analysis.NewsCount,
			SocialCount:           res.analysis.SocialCount,
			Positive:              res.analysis.Positive,
			Negative:              res.analysis.Negative,
			AvgSentiment:          res.analysis.AvgSentiment,
			NewsTopics:            res.analysis.NewsTopics,
			SocialTopics:          res.analysis.SocialTopics,
			SampleTitles:          res.analysis.SampleTitles,
			LastUpdated:           now,
		}

		doc.Symbols[symbol] = snap

		if res.analysis.Decision != models.DecisionHold {
			alert := alerts.BuildSentimentSnapshot(symbol, res.analysis,
				priceVal, changeFrac)

			if err := o.sink.Publish(ctx, alert); err != nil {
				logger.Error("failed to publish sentiment alert",
					zap.String("symbol", symbol),
					zap.Error(err),
				)
			}
		}
	}

	return doc
}

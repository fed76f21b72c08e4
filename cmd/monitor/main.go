package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/finpulse/monitor/internal/adapters/config"
	"github.com/finpulse/monitor/internal/adapters/database"
	"github.com/finpulse/monitor/internal/adapters/metrics"
	"github.com/finpulse/monitor/internal/adapters/quotes"
	redisAdapter "github.com/finpulse/monitor/internal/adapters/redis"
	"github.com/finpulse/monitor/internal/adapters/telegram"
	"github.com/finpulse/monitor/internal/adapters/texts"
	"github.com/finpulse/monitor/internal/alerts"
	"github.com/finpulse/monitor/internal/monitor"
	"github.com/finpulse/monitor/internal/pricewatch"
	"github.com/finpulse/monitor/internal/scoring"
	"github.com/finpulse/monitor/internal/sentiment"
	"github.com/finpulse/monitor/internal/server"
	"github.com/finpulse/monitor/internal/snapshot"
	"github.com/finpulse/monitor/pkg/logger"
	"github.com/finpulse/monitor/pkg/worker"
)

func main() {
	// Setup signal handling
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		fmt.Println("\nReceived interrupt signal, shutting down...")
		cancel()
	}()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	// Load configuration and initialize logger
	cfg, err := initConfig()
	if err != nil {
		return err
	}
	defer logger.Sync()

	logger.Info("FinPulse monitor starting...",
		zap.Strings("watch_list", cfg.Monitor.WatchList),
		zap.Duration("poll_interval", cfg.Monitor.PollInterval),
	)

	// Initialize core infrastructure
	db, err := initDatabase(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	snapshotRepo := snapshot.NewRepository(db.DB())

	// Optional cycle-metrics store
	recorder, chDB := initMetrics(ctx, cfg)
	if chDB != nil {
		defer chDB.Close()
	}

	// Optional cycle-runner lock (multi-replica deployments)
	redisClient, cycleLock, err := initCycleLock(ctx, cfg)
	if err != nil {
		return err
	}
	if redisClient != nil {
		defer redisClient.Close()
	}
	if cycleLock != nil {
		defer cycleLock.Release(context.Background())
	}

	// Core engine
	scorer := scoring.NewKeywordScorer()
	aggregator, err := sentiment.NewAggregator(scorer, cfg.Monitor.BuyThreshold, cfg.Monitor.SellThreshold)
	if err != nil {
		return fmt.Errorf("failed to create sentiment aggregator: %w", err)
	}

	tracker, err := pricewatch.NewTracker(cfg.Monitor.PriceThreshold)
	if err != nil {
		return fmt.Errorf("failed to create price tracker: %w", err)
	}

	// Alert sinks: console always, Telegram and websocket when configured
	hub := server.NewHub()
	sink := initSinks(cfg, hub)

	// Snapshot stores: PostgreSQL always, JSON file export when configured
	var store snapshot.Store = snapshotRepo
	if cfg.Snapshot.FilePath != "" {
		store = snapshot.NewMultiStore(snapshotRepo, snapshot.NewFileStore(cfg.Snapshot.FilePath))
		logger.Info("snapshot file export enabled",
			zap.String("path", cfg.Snapshot.FilePath),
		)
	}

	orch := monitor.NewOrchestrator(monitor.Options{
		WatchList:  cfg.Monitor.WatchList,
		Quotes:     quotes.NewYahooProvider(),
		News:       initNewsSource(cfg),
		Social:     initSocialSource(cfg),
		Aggregator: aggregator,
		Tracker:    tracker,
		Sink:       sink,
		Store:      store,
		Recorder:   recorder,
	})

	// Restore last persisted document so the API answers before cycle one
	if err := orch.Restore(ctx, snapshotRepo); err != nil {
		logger.Warn("failed to restore analysis document", zap.Error(err))
	}

	// HTTP query surface
	checks := map[string]server.HealthChecker{"database": db}
	if redisClient != nil {
		checks["redis"] = redisClient
	}

	httpServer := server.NewServer(cfg.Server.Port, orch, hub, checks)
	go func() {
		if err := httpServer.Start(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server error", zap.Error(err))
		}
	}()

	// Start the monitoring loop
	pw := worker.RunBackground(ctx, orch, cfg.Monitor.PollInterval)
	httpServer.SetReady(true)

	logger.Info("monitor ready",
		zap.String("http_port", cfg.Server.Port),
	)

	// Wait for shutdown signal
	<-ctx.Done()

	return performGracefulShutdown(httpServer, pw)
}

// initConfig loads .env (if present) and configuration, then initializes
// the logger.
func initConfig() (*config.Config, error) {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.File); err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	return cfg, nil
}

// initDatabase initializes the PostgreSQL snapshot store and runs migrations
func initDatabase(cfg *config.Config) (*database.DB, error) {
	db, err := database.New(&cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := database.RunMigrations(db.Conn(), "./migrations"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return db, nil
}

// initMetrics initializes the ClickHouse cycle-metrics recorder. Falls back
// to a no-op recorder when ClickHouse is disabled or unreachable.
func initMetrics(ctx context.Context, cfg *config.Config) (metrics.Recorder, *database.DB) {
	if !cfg.ClickHouse.Enabled {
		return metrics.NopRecorder{}, nil
	}

	chDB, err := database.NewClickHouse(cfg.ClickHouse.GetDSN())
	if err != nil {
		logger.Warn("ClickHouse not available, cycle metrics disabled", zap.Error(err))
		return metrics.NopRecorder{}, nil
	}

	recorder := metrics.NewClickHouseRecorder(chDB.DB())
	if err := recorder.EnsureSchema(ctx); err != nil {
		logger.Warn("failed to prepare metrics schema, cycle metrics disabled", zap.Error(err))
		chDB.Close()
		return metrics.NopRecorder{}, nil
	}

	logger.Info("cycle metrics recorder initialized (ClickHouse)",
		zap.String("host", cfg.ClickHouse.Host),
	)

	return recorder, chDB
}

// initCycleLock acquires the distributed cycle-runner lock when Redis is
// enabled. Blocks startup until the lock is won so a standby replica never
// runs cycles.
func initCycleLock(ctx context.Context, cfg *config.Config) (*redisAdapter.Client, *redisAdapter.CycleLock, error) {
	if !cfg.Redis.Enabled {
		return nil, nil, nil
	}

	redisClient, err := redisAdapter.New(&cfg.Redis)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	cycleLock := redisAdapter.NewCycleLock(redisClient.GetLockManager())

	for {
		acquired, err := cycleLock.TryAcquire(ctx)
		if err != nil {
			redisClient.Close()
			return nil, nil, fmt.Errorf("cycle lock error: %w", err)
		}
		if acquired {
			break
		}

		logger.Info("standing by, another replica holds the cycle lock")

		select {
		case <-ctx.Done():
			redisClient.Close()
			return nil, nil, ctx.Err()
		case <-time.After(10 * time.Second):
		}
	}

	return redisClient, cycleLock, nil
}

// initSinks wires the configured alert sinks together.
func initSinks(cfg *config.Config, hub *server.Hub) alerts.Sink {
	sinks := []alerts.Sink{alerts.NewConsoleSink(), hub}

	if cfg.Telegram.BotToken != "" {
		notifier, err := telegram.NewNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID)
		if err != nil {
			logger.Warn("failed to initialize telegram notifier", zap.Error(err))
		} else {
			sinks = append(sinks, notifier)
		}
	}

	return alerts.NewMultiSink(sinks...)
}

func initNewsSource(cfg *config.Config) texts.Source {
	if !cfg.Sources.NewsEnabled {
		logger.Info("news source disabled")
		return nil
	}
	return texts.NewGoogleNewsSource()
}

func initSocialSource(cfg *config.Config) texts.Source {
	if !cfg.Sources.SocialEnabled {
		logger.Info("social source disabled")
		return nil
	}
	return texts.NewRedditSource(cfg.Sources.Subreddits)
}

// performGracefulShutdown stops the worker loop and the HTTP server.
func performGracefulShutdown(httpServer *server.Server, pw *worker.PeriodicWorker) error {
	logger.Info("shutdown signal received, starting graceful shutdown...")

	httpServer.SetReady(false)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 25*time.Second)
	defer shutdownCancel()

	// Let the in-flight cycle finish before tearing anything down
	pw.Stop(20 * time.Second)

	if err := httpServer.Stop(shutdownCtx); err != nil {
		logger.Error("http server stop error", zap.Error(err))
	}

	logger.Sync()
	logger.Info("shutdown completed")

	return nil
}

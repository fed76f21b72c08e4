package config

import (
	"fmt"
	"math"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config represents application configuration
type Config struct {
	Monitor    MonitorConfig    `envconfig:"MONITOR"`
	Sources    SourcesConfig    `envconfig:"SOURCES"`
	Database   DatabaseConfig   `envconfig:"DATABASE"`
	ClickHouse ClickHouseConfig `envconfig:"CLICKHOUSE"`
	Redis      RedisConfig      `envconfig:"REDIS"`
	Telegram   TelegramConfig   `envconfig:"TELEGRAM"`
	Server     ServerConfig     `envconfig:"SERVER"`
	Snapshot   SnapshotConfig   `envconfig:"SNAPSHOT"`
	Logging    LoggingConfig    `envconfig:"LOGGING"`
}

// MonitorConfig holds the watch list and the core decision thresholds.
type MonitorConfig struct {
	WatchList      []string      `envconfig:"WATCH" default:"AAPL,NVDA,MSFT,BTC-USD,ETH-USD"`
	PollInterval   time.Duration `envconfig:"POLL_INTERVAL" default:"15s"`
	PriceThreshold float64       `envconfig:"PRICE_THRESHOLD" default:"0.005"`
	BuyThreshold   float64       `envconfig:"BUY_THRESHOLD" default:"0.65"`
	SellThreshold  float64       `envconfig:"SELL_THRESHOLD" default:"0.35"`
}

// SourcesConfig controls the external text sources.
type SourcesConfig struct {
	NewsEnabled   bool     `envconfig:"NEWS_ENABLED" default:"true"`
	SocialEnabled bool     `envconfig:"SOCIAL_ENABLED" default:"true"`
	Subreddits    []string `envconfig:"SUBREDDITS" default:"CryptoCurrency,CryptoMarkets,Bitcoin,Ethereum,stocks,investing,wallstreetbets,StockMarket"`
}

// DatabaseConfig represents PostgreSQL connection parameters for the
// snapshot store.
type DatabaseConfig struct {
	Host     string `envconfig:"DB_HOST" default:"localhost"`
	Port     int    `envconfig:"DB_PORT" default:"5432"`
	Name     string `envconfig:"DB_NAME" default:"finpulse"`
	User     string `envconfig:"DB_USER" required:"true"`
	Password string `envconfig:"DB_PASSWORD" required:"true"`
	SSLMode  string `envconfig:"DB_SSLMODE" default:"disable"`
}

// ClickHouseConfig represents the optional cycle-metrics store.
type ClickHouseConfig struct {
	Enabled  bool   `envconfig:"CLICKHOUSE_ENABLED" default:"false"`
	Host     string `envconfig:"CLICKHOUSE_HOST" default:"localhost"`
	Port     int    `envconfig:"CLICKHOUSE_PORT" default:"9000"`
	Database string `envconfig:"CLICKHOUSE_DB" default:"finpulse"`
	User     string `envconfig:"CLICKHOUSE_USER" default:"default"`
	Password string `envconfig:"CLICKHOUSE_PASSWORD" required:"false"`
}

// RedisConfig represents the optional cycle-runner lock backend.
type RedisConfig struct {
	Enabled  bool   `envconfig:"REDIS_ENABLED" default:"false"`
	Host     string `envconfig:"REDIS_HOST" default:"localhost"`
	Port     int    `envconfig:"REDIS_PORT" default:"6379"`
	Password string `envconfig:"REDIS_PASSWORD" required:"false"`
	DB       int    `envconfig:"REDIS_DB" default:"0"`
}

// TelegramConfig represents the optional Telegram alert sink.
type TelegramConfig struct {
	BotToken string `envconfig:"TELEGRAM_BOT_TOKEN" required:"false"`
	ChatID   int64  `envconfig:"TELEGRAM_CHAT_ID" required:"false"`
}

// ServerConfig represents the HTTP query surface.
type ServerConfig struct {
	Port string `envconfig:"SERVER_PORT" default:"8080"`
}

// SnapshotConfig controls the optional JSON file export of the latest
// analysis document.
type SnapshotConfig struct {
	FilePath string `envconfig:"SNAPSHOT_FILE" required:"false"`
}

// LoggingConfig represents logging configuration
type LoggingConfig struct {
	Level string `envconfig:"LOG_LEVEL" default:"info"`
	File  string `envconfig:"LOG_FILE" required:"false"`
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	var cfg Config

	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// Validate checks if configuration is valid. Threshold misconfiguration is
// rejected here, at startup, rather than producing undefined decisions.
func (c *Config) Validate() error {
	if len(c.Monitor.WatchList) == 0 {
		return fmt.Errorf("watch list must not be empty")
	}

	for _, v := range []float64{c.Monitor.PriceThreshold, c.Monitor.BuyThreshold, c.Monitor.SellThreshold} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("thresholds must be finite")
		}
	}

	if c.Monitor.PriceThreshold <= 0 || c.Monitor.PriceThreshold >= 1 {
		return fmt.Errorf("price threshold must be a fraction in (0, 1), got %v", c.Monitor.PriceThreshold)
	}

	if c.Monitor.SellThreshold <= 0 || c.Monitor.BuyThreshold >= 1 {
		return fmt.Errorf("decision thresholds must lie in (0, 1)")
	}
	if c.Monitor.SellThreshold >= c.Monitor.BuyThreshold {
		return fmt.Errorf("sell threshold %v must be below buy threshold %v",
			c.Monitor.SellThreshold, c.Monitor.BuyThreshold)
	}

	if c.Monitor.PollInterval < time.Second {
		return fmt.Errorf("poll interval must be at least 1s, got %v", c.Monitor.PollInterval)
	}

	if c.Telegram.BotToken != "" && c.Telegram.ChatID == 0 {
		return fmt.Errorf("telegram chat_id is required when bot token is set")
	}

	return nil
}

// GetDSN returns PostgreSQL connection string
func (c *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode,
	)
}

// GetDSN returns ClickHouse connection string
func (c *ClickHouseConfig) GetDSN() string {
	return fmt.Sprintf(
		"clickhouse://%s:%s@%s:%d/%s",
		c.User, c.Password, c.Host, c.Port, c.Database,
	)
}

package config

import (
	"os"
	"time"

	"github.com/joho/godotenv"
)

// Feed configures the external market-data stream
type Feed struct {
	URL     string
	Symbol  string        // stream symbol, e.g. BTCUSDT
	Backoff time.Duration // fixed reconnect interval
}

// Engine configures the order lifecycle core
type Engine struct {
	SweepInterval time.Duration
}

// Config holds the full runtime configuration
type Config struct {
	Port        string
	Asset       string // order asset symbol, e.g. BTC-USDT
	JournalPath string
	Feed        Feed
	Engine      Engine
}

// Default returns the baseline configuration
func Default() Config {
	return Config{
		Port:        "8080",
		Asset:       "BTC-USDT",
		JournalPath: "journal.db",
		Feed: Feed{
			URL:     "wss://stream.binance.com:9443/ws/btcusdt@trade",
			Symbol:  "BTCUSDT",
			Backoff: 3 * time.Second,
		},
		Engine: Engine{
			SweepInterval: 5 * time.Second,
		},
	}
}

// Load builds the configuration from the environment, starting from the
// defaults. A .env file in the working directory is honoured if present.
func Load() Config {
	_ = godotenv.Load()

	cfg := Default()
	cfg.Port = getenv("PORT", cfg.Port)
	cfg.Asset = getenv("ASSET", cfg.Asset)
	cfg.JournalPath = getenv("JOURNAL_PATH", cfg.JournalPath)
	cfg.Feed.URL = getenv("FEED_URL", cfg.Feed.URL)
	cfg.Feed.Symbol = getenv("FEED_SYMBOL", cfg.Feed.Symbol)
	cfg.Feed.Backoff = getduration("FEED_BACKOFF", cfg.Feed.Backoff)
	cfg.Engine.SweepInterval = getduration("SWEEP_INTERVAL", cfg.Engine.SweepInterval)
	return cfg
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getduration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			return d
		}
	}
	return fallback
}

package config

import (
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

// Config holds all application configuration. Risk cutoffs and cache bounds
// are deliberately env-tunable rather than hard-coded.
type Config struct {
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`
	ServerAddr  string `env:"SERVER_ADDR" envDefault:":8080"`
	AdminAddr   string `env:"ADMIN_ADDR" envDefault:":9091"`
	PostgresURL string `env:"POSTGRES_URL,required"`

	// RedisAddr selects the distributed result cache; empty means the
	// in-process cache.
	RedisAddr string `env:"REDIS_ADDR"`

	ScanCacheTTL      time.Duration `env:"SCAN_CACHE_TTL" envDefault:"5m"`
	ScanCacheCapacity int           `env:"SCAN_CACHE_CAPACITY" envDefault:"64"`
	NotifyDedupWindow time.Duration `env:"NOTIFY_DEDUP_WINDOW" envDefault:"24h"`

	ScanRatePerSecond float64 `env:"SCAN_RATE_PER_SECOND" envDefault:"5"`
	ScanRateBurst     int     `env:"SCAN_RATE_BURST" envDefault:"10"`

	RiskCriticalCases  int     `env:"RISK_CRITICAL_CASES" envDefault:"3"`
	RiskSevereCases    int     `env:"RISK_SEVERE_CASES" envDefault:"5"`
	RiskHighMultiplier float64 `env:"RISK_HIGH_MULTIPLIER" envDefault:"1.5"`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	// Attempt to load .env file for local development.
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

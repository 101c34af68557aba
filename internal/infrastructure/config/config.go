package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	ServerAddress   string        `env:"SERVER_ADDRESS"   envDefault:":8080"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
	LogLevel        string        `env:"LOG_LEVEL"        envDefault:"info"`
	SecureCookie    bool          `env:"SECURE_COOKIE"    envDefault:"false"`

	// Storage: Postgres when DatabaseURL is set, SQLite otherwise.
	SQLitePath    string        `env:"SQLITE_PATH"      envDefault:"quiz.db"`
	DatabaseURL   string        `env:"DATABASE_URL"`
	DBMaxConns    int32         `env:"DB_MAX_CONNS"     envDefault:"10"`
	DBMaxConnLife time.Duration `env:"DB_MAX_CONN_LIFE" envDefault:"30m"`

	// Dataset
	DatasetURL      string        `env:"DATASET_URL"       envDefault:"https://raw.githubusercontent.com/osumatu/terorist-quiz/main/data.json"`
	ImageBaseURL    string        `env:"IMAGE_BASE_URL"    envDefault:"https://www.terorarananlar.pol.tr/"`
	DecoyImageURL   string        `env:"DECOY_IMAGE_URL"   envDefault:"https://thispersondoesnotexist.com/"`
	DecoyLabel      string        `env:"DECOY_LABEL"       envDefault:"Sivil"`
	DecoyCount      int           `env:"DECOY_COUNT"       envDefault:"750"`
	IncludeDecoys   bool          `env:"INCLUDE_DECOYS"    envDefault:"true"`
	DatasetCacheTTL time.Duration `env:"DATASET_CACHE_TTL" envDefault:"0s"`
	FetchTimeout    time.Duration `env:"FETCH_TIMEOUT"     envDefault:"15s"`

	MilestoneEvery int `env:"MILESTONE_EVERY" envDefault:"20"`

	// Tracing is off when the endpoint is empty.
	OTLPEndpoint string `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
}

// Load reads an optional .env file, then the environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	var errs []error
	if c.ServerAddress == "" {
		errs = append(errs, errors.New("SERVER_ADDRESS is required"))
	}
	if c.ShutdownTimeout <= 0 {
		errs = append(errs, errors.New("SHUTDOWN_TIMEOUT must be positive"))
	}
	if c.DatasetURL == "" {
		errs = append(errs, errors.New("DATASET_URL is required"))
	}
	if c.DecoyCount < 0 {
		errs = append(errs, fmt.Errorf("DECOY_COUNT=%d must not be negative", c.DecoyCount))
	}
	if c.DatasetCacheTTL < 0 {
		errs = append(errs, errors.New("DATASET_CACHE_TTL must not be negative"))
	}
	if c.FetchTimeout <= 0 {
		errs = append(errs, errors.New("FETCH_TIMEOUT must be positive"))
	}
	if c.MilestoneEvery <= 0 {
		errs = append(errs, fmt.Errorf("MILESTONE_EVERY=%d must be positive", c.MilestoneEvery))
	}
	if _, err := parseLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

// SlogLevel maps LOG_LEVEL to a slog level. Unknown values fall back to info.
func (c *Config) SlogLevel() slog.Level {
	level, err := parseLevel(c.LogLevel)
	if err != nil {
		return slog.LevelInfo
	}
	return level
}

func parseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("LOG_LEVEL=%q is not one of debug, info, warn, error", s)
	}
}

package config_test

import (
	"log/slog"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/BayramReisbirligi/TeroristQuiz/internal/infrastructure/config"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())
	for _, k := range []string{"SERVER_ADDRESS", "SHUTDOWN_TIMEOUT", "DATABASE_URL", "DECOY_COUNT", "INCLUDE_DECOYS", "MILESTONE_EVERY", "LOG_LEVEL"} {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.ServerAddress != ":8080" {
		t.Errorf("expected :8080, got %q", cfg.ServerAddress)
	}
	if cfg.ShutdownTimeout != 10*time.Second {
		t.Errorf("expected 10s, got %v", cfg.ShutdownTimeout)
	}
	if cfg.DecoyCount != 750 || cfg.DecoyLabel != "Sivil" || !cfg.IncludeDecoys {
		t.Errorf("unexpected decoy defaults %+v", cfg)
	}
	if cfg.MilestoneEvery != 20 {
		t.Errorf("expected milestone every 20, got %d", cfg.MilestoneEvery)
	}
	if cfg.DatabaseURL != "" || cfg.SQLitePath != "quiz.db" {
		t.Errorf("expected SQLite by default, got %q %q", cfg.DatabaseURL, cfg.SQLitePath)
	}
	if cfg.DatasetCacheTTL != 0 {
		t.Errorf("expected no cache by default, got %v", cfg.DatasetCacheTTL)
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("SERVER_ADDRESS", ":9090")
	t.Setenv("DECOY_COUNT", "10")
	t.Setenv("INCLUDE_DECOYS", "false")
	t.Setenv("DATASET_CACHE_TTL", "5m")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.ServerAddress != ":9090" || cfg.DecoyCount != 10 || cfg.IncludeDecoys {
		t.Errorf("overrides not applied: %+v", cfg)
	}
	if cfg.DatasetCacheTTL != 5*time.Minute {
		t.Errorf("expected 5m cache, got %v", cfg.DatasetCacheTTL)
	}
	if cfg.SlogLevel() != slog.LevelDebug {
		t.Errorf("expected debug level, got %v", cfg.SlogLevel())
	}
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
		want string
	}{
		{"bad duration", "SHUTDOWN_TIMEOUT", "soon", "parse env"},
		{"negative decoys", "DECOY_COUNT", "-1", "DECOY_COUNT"},
		{"zero milestone", "MILESTONE_EVERY", "0", "MILESTONE_EVERY"},
		{"unknown level", "LOG_LEVEL", "loud", "LOG_LEVEL"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Chdir(t.TempDir())
			t.Setenv(tt.key, tt.val)

			_, err := config.Load()
			if err == nil {
				t.Fatal("expected an error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("expected %q in %v", tt.want, err)
			}
		})
	}
}

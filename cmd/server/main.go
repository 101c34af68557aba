package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/BayramReisbirligi/TeroristQuiz/internal/api"
	"github.com/BayramReisbirligi/TeroristQuiz/internal/dataset"
	"github.com/BayramReisbirligi/TeroristQuiz/internal/infrastructure/config"
	"github.com/BayramReisbirligi/TeroristQuiz/internal/infrastructure/telemetry"
	"github.com/BayramReisbirligi/TeroristQuiz/internal/quiz"
	"github.com/BayramReisbirligi/TeroristQuiz/internal/store"
	"github.com/BayramReisbirligi/TeroristQuiz/internal/web"

	_ "github.com/BayramReisbirligi/TeroristQuiz/docs" // swagger docs
)

// @title           Terörist Quiz API
// @version         1.0
// @description     Score API of the image trivia quiz.

// @host      localhost:8080
// @BasePath  /

type closableStore interface {
	store.ScoreStore
	Close() error
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
	slog.SetDefault(logger)

	ctx := context.Background()

	shutdownTracing, err := telemetry.Setup(ctx, "terorist-quiz", cfg.OTLPEndpoint)
	if err != nil {
		logger.Error("failed to set up tracing", "error", err)
		os.Exit(1)
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(flushCtx); err != nil {
			logger.Error("failed to flush traces", "error", err)
		}
	}()

	// ── Dependencies ────────────────────────────────────────────────
	scores, err := openStore(ctx, cfg)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer scores.Close()

	fetcher := dataset.NewFetcher(dataset.Config{
		DatasetURL:    cfg.DatasetURL,
		ImageBaseURL:  cfg.ImageBaseURL,
		DecoyImageURL: cfg.DecoyImageURL,
		DecoyLabel:    cfg.DecoyLabel,
		DecoyCount:    cfg.DecoyCount,
		Timeout:       cfg.FetchTimeout,
		CacheTTL:      cfg.DatasetCacheTTL,
	}, logger)

	quizHandler := web.NewHandler(fetcher, scores, logger, web.Options{
		IncludeDecoys:  cfg.IncludeDecoys,
		MilestoneEvery: cfg.MilestoneEvery,
		Pacing:         quiz.DefaultPacing(),
		SecureCookie:   cfg.SecureCookie,
	})
	apiHandler := api.NewHandler(scores, web.PlayerID, logger)

	// ── Routes ──────────────────────────────────────────────────────
	mux := http.NewServeMux()

	quizHandler.Register(mux)
	api.RegisterRoutes(mux, apiHandler)

	// Swagger UI served at /swagger/
	mux.Handle("GET /swagger/", httpSwagger.WrapHandler)

	// ── Middleware chain: Logging → CORS → mux ──────────────────────
	logged := api.Logging(logger)(api.CORS(mux))

	// ── Server ──────────────────────────────────────────────────────
	// No WriteTimeout: websocket connections stay open for the whole game.
	server := &http.Server{
		Addr:              cfg.ServerAddress,
		Handler:           logged,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()

		logger.Info("shutting down server")
		if err := server.Shutdown(ctx); err != nil {
			logger.Error("server forced to shutdown", "error", err)
		}
	}()

	logger.Info("starting server", "address", cfg.ServerAddress)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("server failed to start", "error", err)
		os.Exit(1)
	}
}

// openStore picks Postgres when a database URL is configured, SQLite otherwise.
func openStore(ctx context.Context, cfg *config.Config) (closableStore, error) {
	if cfg.DatabaseURL != "" {
		return store.NewPostgres(ctx, cfg.DatabaseURL, store.PoolConfig{
			MaxConns:        cfg.DBMaxConns,
			MaxConnLifetime: cfg.DBMaxConnLife,
		})
	}
	return store.NewSQLite(cfg.SQLitePath)
}

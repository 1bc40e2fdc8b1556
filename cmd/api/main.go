package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/senticheck/senticheck/config"
	"github.com/senticheck/senticheck/internal/analytics"
	"github.com/senticheck/senticheck/internal/api"
	"github.com/senticheck/senticheck/internal/cache"
	"github.com/senticheck/senticheck/internal/db"
	"github.com/senticheck/senticheck/internal/logging"
	"github.com/senticheck/senticheck/internal/pipeline"
	"github.com/senticheck/senticheck/internal/sentiment"
)

func main() {
	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "dev"
	}
	config.LoadEnv(env)
	logging.InitLogger()

	cfg := config.FromEnv()
	ctx := context.Background()

	pool, err := db.InitDB(ctx)
	if err != nil {
		slog.Error("[Main] Failed to connect to database",
			slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer pool.Close()

	store := db.NewStore(pool)
	if err := store.CreateTables(ctx); err != nil {
		slog.Error("[Main] Failed to create tables",
			slog.String("error", err.Error()))
		os.Exit(1)
	}

	responseCache, err := cache.New(&cfg)
	if err != nil {
		slog.Warn("[Main] Response cache unavailable, continuing without it",
			slog.String("error", err.Error()))
	}
	defer responseCache.Close()

	scorers := sentiment.NewCache(sentiment.DefaultFactory(cfg.ModelDir))
	coordinator := pipeline.NewCoordinator(store, scorers, cfg)
	engine := analytics.NewEngine(pool)

	// Warm the model in the background so the first scoring request does
	// not pay the download cost.
	go func() {
		if _, err := scorers.GetOrCreate(cfg.ModelName); err != nil {
			slog.Warn("[Main] Model warmup failed",
				slog.String("model", cfg.ModelName),
				slog.String("error", err.Error()))
		}
	}()

	server := api.NewServer(coordinator, engine, scorers, responseCache, cfg)
	if err := server.Run(); err != nil {
		slog.Error("[Main] HTTP server exited",
			slog.String("error", err.Error()))
		os.Exit(1)
	}
}

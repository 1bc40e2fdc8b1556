package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/senticheck/senticheck/config"
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
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

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

	runInterval, err := strconv.Atoi(os.Getenv("PIPELINE_RUN_INTERVAL"))
	if err != nil {
		runInterval = 300 // Default to 5 minutes (in seconds)
	}

	scorers := sentiment.NewCache(sentiment.DefaultFactory(cfg.ModelDir))
	coordinator := pipeline.NewCoordinator(store, scorers, cfg)

	go func() {
		stopChan := make(chan os.Signal, 1)
		signal.Notify(stopChan, os.Interrupt, syscall.SIGTERM)
		<-stopChan
		slog.Info("Shutting down pipeline gracefully...")
		cancel()
	}()

	coordinator.RunLoop(ctx, time.Duration(runInterval)*time.Second)
}

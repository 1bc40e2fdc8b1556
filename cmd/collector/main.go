package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/senticheck/senticheck/config"
	"github.com/senticheck/senticheck/internal/clients"
	"github.com/senticheck/senticheck/internal/connector"
	"github.com/senticheck/senticheck/internal/db"
	"github.com/senticheck/senticheck/internal/logging"
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

	keywords := trackedKeywords()
	if len(keywords) == 0 {
		slog.Error("[Main] TRACKED_KEYWORDS is empty, nothing to collect")
		os.Exit(1)
	}

	fetchInterval, err := strconv.Atoi(os.Getenv("FETCH_INTERVAL"))
	if err != nil {
		fetchInterval = 1800 // Default to 30 minutes (in seconds)
	}

	client := clients.GetBlueskyClient(cfg.BlueskyHandle, cfg.BlueskyAppPassword)
	collector := connector.NewBlueskyConnector(client, store)

	stopChan := make(chan os.Signal, 1)
	signal.Notify(stopChan, os.Interrupt, syscall.SIGTERM)

	ticker := time.NewTicker(time.Duration(fetchInterval) * time.Second)
	defer ticker.Stop()

	// Collect once on startup so a fresh deployment has data immediately.
	runCycle(ctx, collector, keywords)

	for {
		select {
		case <-ticker.C:
			runCycle(ctx, collector, keywords)

		case <-stopChan:
			slog.Info("Shutting down collector gracefully...")
			return
		}
	}
}

func runCycle(ctx context.Context, collector *connector.BlueskyConnector, keywords []string) {
	inserted, err := collector.Run(ctx, keywords)
	if err != nil {
		slog.Error("[Main] Collection cycle failed",
			slog.String("error", err.Error()))
		return
	}
	slog.Info("[Main] Collection cycle complete",
		slog.Int("inserted", inserted))
}

func trackedKeywords() []string {
	raw := os.Getenv("TRACKED_KEYWORDS")
	var keywords []string
	for _, k := range strings.Split(raw, ",") {
		if k = strings.TrimSpace(k); k != "" {
			keywords = append(keywords, k)
		}
	}
	return keywords
}

package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/senticheck/senticheck/config"
	"github.com/senticheck/senticheck/internal/cleaner"
	"github.com/senticheck/senticheck/internal/models"
	"github.com/senticheck/senticheck/internal/sentiment"
)

// Store is the slice of the persistence layer the coordinator drives.
type Store interface {
	FetchUnprocessed(ctx context.Context, limit int) ([]models.RawPost, error)
	StoreCleaned(ctx context.Context, rawPostID int64, cleanedText, originalText string,
		meta models.CleaningMetadata, preserveHashtags, preserveMentions bool) (int64, error)
	MarkProcessed(ctx context.Context, rawPostID int64) error
	FetchUnanalyzed(ctx context.Context, limit int) ([]models.CleanedPost, error)
	StoreSentimentBatch(ctx context.Context, records []models.SentimentRecord) (int, error)
}

// ScorerProvider hands out initialized scorers keyed by model name.
type ScorerProvider interface {
	GetOrCreate(modelName string) (*sentiment.Scorer, error)
}

// StageResult summarizes one pipeline stage run.
type StageResult struct {
	RunID     string `json:"run_id"`
	Fetched   int    `json:"fetched"`
	Stored    int    `json:"stored"`
	Filtered  int    `json:"filtered"`
	Failed    int    `json:"failed"`
	DurationS string `json:"duration"`
}

// Coordinator drives posts through cleaning and sentiment scoring in
// batches. Each stage is independently re-runnable: work is claimed by the
// is_processed / is_analyzed flags, never by position.
type Coordinator struct {
	store   Store
	scorers ScorerProvider
	cfg     config.Config
}

func NewCoordinator(store Store, scorers ScorerProvider, cfg config.Config) *Coordinator {
	return &Coordinator{store: store, scorers: scorers, cfg: cfg}
}

// ProcessRawPosts cleans one batch of unprocessed posts. Posts the content
// filter rejects, and posts that clean down to fewer than MinContentWords
// words, are marked processed without a cleaned row so they are not retried
// forever.
func (c *Coordinator) ProcessRawPosts(ctx context.Context) (StageResult, error) {
	runID := uuid.NewString()
	start := time.Now()

	posts, err := c.store.FetchUnprocessed(ctx, c.cfg.BatchSize)
	if err != nil {
		return StageResult{RunID: runID}, fmt.Errorf("failed to fetch unprocessed posts: %w", err)
	}

	result := StageResult{RunID: runID, Fetched: len(posts)}
	if len(posts) == 0 {
		result.DurationS = time.Since(start).String()
		return result, nil
	}

	opts := cleaner.Options{
		PreserveHashtags: c.cfg.PreserveHashtags,
		PreserveMentions: c.cfg.PreserveMentions,
	}

	for _, post := range posts {
		analysis := cleaner.AnalyzeContent(post.Text)
		if analysis.Recommendation == cleaner.RecommendFilter {
			if err := c.store.MarkProcessed(ctx, post.ID); err != nil {
				slog.Error("[Coordinator] Failed to mark filtered post",
					slog.String("run_id", runID),
					slog.Int64("raw_post_id", post.ID),
					slog.String("error", err.Error()))
				result.Failed++
				continue
			}
			result.Filtered++
			continue
		}

		cleanedText, meta := cleaner.CleanText(post.Text, opts)
		if cleanedText == "" || len(strings.Fields(cleanedText)) < c.cfg.MinContentWords {
			if err := c.store.MarkProcessed(ctx, post.ID); err != nil {
				slog.Error("[Coordinator] Failed to mark empty post",
					slog.String("run_id", runID),
					slog.Int64("raw_post_id", post.ID),
					slog.String("error", err.Error()))
				result.Failed++
				continue
			}
			result.Filtered++
			continue
		}

		if _, err := c.store.StoreCleaned(ctx, post.ID, cleanedText, post.Text, meta,
			opts.PreserveHashtags, opts.PreserveMentions); err != nil {
			slog.Error("[Coordinator] Failed to store cleaned post",
				slog.String("run_id", runID),
				slog.Int64("raw_post_id", post.ID),
				slog.String("error", err.Error()))
			result.Failed++
			continue
		}
		result.Stored++
	}

	result.DurationS = time.Since(start).String()
	slog.Info("[Coordinator] Cleaning stage complete",
		slog.String("run_id", runID),
		slog.Int("fetched", result.Fetched),
		slog.Int("stored", result.Stored),
		slog.Int("filtered", result.Filtered),
		slog.Int("failed", result.Failed),
		slog.Duration("duration", time.Since(start)))
	return result, nil
}

// AnalyzeSentiment scores one batch of cleaned posts using the configured
// batch size and model.
func (c *Coordinator) AnalyzeSentiment(ctx context.Context) (StageResult, error) {
	return c.AnalyzeSentimentWith(ctx, c.cfg.BatchSize, c.cfg.ModelName)
}

// AnalyzeSentimentWith scores one batch of cleaned posts and persists the
// results. A post that fails scoring is skipped and stays unanalyzed for
// the next run.
func (c *Coordinator) AnalyzeSentimentWith(ctx context.Context, limit int, modelName string) (StageResult, error) {
	runID := uuid.NewString()
	start := time.Now()

	if limit <= 0 {
		limit = c.cfg.BatchSize
	}
	if modelName == "" {
		modelName = c.cfg.ModelName
	}

	posts, err := c.store.FetchUnanalyzed(ctx, limit)
	if err != nil {
		return StageResult{RunID: runID}, fmt.Errorf("failed to fetch unanalyzed posts: %w", err)
	}

	result := StageResult{RunID: runID, Fetched: len(posts)}
	if len(posts) == 0 {
		result.DurationS = time.Since(start).String()
		return result, nil
	}

	scorer, err := c.scorers.GetOrCreate(modelName)
	if err != nil {
		return result, fmt.Errorf("failed to load model %q: %w", modelName, err)
	}

	records := scorer.AnalyzePostsBatch(posts)
	result.Failed = len(posts) - len(records)

	stored, err := c.store.StoreSentimentBatch(ctx, records)
	if err != nil {
		return result, fmt.Errorf("failed to store sentiment batch: %w", err)
	}
	result.Stored = stored
	if stored != len(records) {
		slog.Warn("[Coordinator] Some sentiment records were not stored",
			slog.String("run_id", runID),
			slog.Int("scored", len(records)),
			slog.Int("stored", stored))
		result.Failed += len(records) - stored
	}

	result.DurationS = time.Since(start).String()
	slog.Info("[Coordinator] Sentiment stage complete",
		slog.String("run_id", runID),
		slog.Int("fetched", result.Fetched),
		slog.Int("scored", len(records)),
		slog.Int("stored", result.Stored),
		slog.Int("failed", result.Failed),
		slog.Duration("duration", time.Since(start)))
	return result, nil
}

// RunOnce runs both stages back to back, cleaning first so freshly cleaned
// posts are scored in the same invocation.
func (c *Coordinator) RunOnce(ctx context.Context) (StageResult, StageResult, error) {
	cleaned, err := c.ProcessRawPosts(ctx)
	if err != nil {
		return cleaned, StageResult{}, err
	}
	analyzed, err := c.AnalyzeSentiment(ctx)
	return cleaned, analyzed, err
}

// RunLoop repeats RunOnce on an interval until the context is cancelled.
func (c *Coordinator) RunLoop(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if _, _, err := c.RunOnce(ctx); err != nil {
			slog.Error("[Coordinator] Pipeline run failed",
				slog.String("error", err.Error()))
		}

		select {
		case <-ctx.Done():
			slog.Info("[Coordinator] Pipeline loop stopping")
			return
		case <-ticker.C:
		}
	}
}

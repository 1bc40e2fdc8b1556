package analytics

import (
	"context"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/senticheck/senticheck/internal/models"
)

// Text-analysis rows are filtered to results worth counting words over and
// capped so the word-cloud path stays bounded.
var (
	TextAnalysisMaxRows       = 15000
	TextAnalysisMinConfidence = 0.5
	TextAnalysisMinLength     = 10
)

// Engine answers aggregate queries over stored sentiment results. Every
// method is a pure read; failures are logged and collapse to zero-valued
// structures so a quiet keyword or a flaky connection renders as "no data",
// never as a dashboard error.
type Engine struct {
	pool *pgxpool.Pool
}

func NewEngine(pool *pgxpool.Pool) *Engine {
	return &Engine{pool: pool}
}

// SentimentDistribution counts results per label for a keyword within the
// trailing window. All three labels are always present.
func (e *Engine) SentimentDistribution(ctx context.Context, keyword string, days int) models.SentimentDistribution {
	var dist models.SentimentDistribution

	rows, err := e.pool.Query(ctx, `
        SELECT sentiment_label, COUNT(*)
        FROM sentiment_results
        WHERE search_keyword = $1
          AND (analyzed_at AT TIME ZONE 'UTC')::date >= (now() AT TIME ZONE 'UTC')::date - $2::int
        GROUP BY sentiment_label`, keyword, days)
	if err != nil {
		slog.Error("[Analytics] Distribution query failed",
			slog.String("keyword", keyword),
			slog.String("error", err.Error()))
		return dist
	}
	defer rows.Close()

	for rows.Next() {
		var label string
		var count int
		if err := rows.Scan(&label, &count); err != nil {
			slog.Warn("[Analytics] Failed to scan distribution row",
				slog.String("error", err.Error()))
			continue
		}
		switch label {
		case models.SentimentPositive:
			dist.Positive = count
		case models.SentimentNegative:
			dist.Negative = count
		case models.SentimentNeutral:
			dist.Neutral = count
		}
	}
	return dist
}

// SentimentOverTime returns per-label counts for every calendar date in the
// window, dense: dates with zero activity are present with zero counts.
func (e *Engine) SentimentOverTime(ctx context.Context, keyword string, days int) []models.DailySentiment {
	sparse := e.dailyLabelCounts(ctx, keyword, days-1)
	return FillDateRange(sparse, time.Now().UTC(), days)
}

// dailyLabelCounts returns per-day label counts for dates within
// fromDaysBack of today, sparse: only dates with activity appear.
func (e *Engine) dailyLabelCounts(ctx context.Context, keyword string, fromDaysBack int) []models.DailySentiment {
	rows, err := e.pool.Query(ctx, `
        SELECT (analyzed_at AT TIME ZONE 'UTC')::date AS day,
               COUNT(*) FILTER (WHERE sentiment_label = 'positive'),
               COUNT(*) FILTER (WHERE sentiment_label = 'negative'),
               COUNT(*) FILTER (WHERE sentiment_label = 'neutral')
        FROM sentiment_results
        WHERE search_keyword = $1
          AND (analyzed_at AT TIME ZONE 'UTC')::date >= (now() AT TIME ZONE 'UTC')::date - $2::int
        GROUP BY day
        ORDER BY day`, keyword, fromDaysBack)
	if err != nil {
		slog.Error("[Analytics] Daily label counts query failed",
			slog.String("keyword", keyword),
			slog.String("error", err.Error()))
		return nil
	}
	defer rows.Close()

	var sparse []models.DailySentiment
	for rows.Next() {
		var day time.Time
		var row models.DailySentiment
		if err := rows.Scan(&day, &row.Positive, &row.Negative, &row.Neutral); err != nil {
			slog.Warn("[Analytics] Failed to scan daily label counts row",
				slog.String("error", err.Error()))
			continue
		}
		row.Date = day.Format(dateLayout)
		sparse = append(sparse, row)
	}
	return sparse
}

// SentimentTrends compares today's per-label counts against yesterday's.
func (e *Engine) SentimentTrends(ctx context.Context, keyword string) models.SentimentTrends {
	today := e.labelCountsOnDay(ctx, keyword, 0)
	yesterday := e.labelCountsOnDay(ctx, keyword, 1)

	return models.SentimentTrends{
		PositiveTrend: Trend(today.Positive, yesterday.Positive),
		NegativeTrend: Trend(today.Negative, yesterday.Negative),
		NeutralTrend:  Trend(today.Neutral, yesterday.Neutral),
	}
}

func (e *Engine) labelCountsOnDay(ctx context.Context, keyword string, daysBack int) models.SentimentDistribution {
	var dist models.SentimentDistribution

	rows, err := e.pool.Query(ctx, `
        SELECT sentiment_label, COUNT(*)
        FROM sentiment_results
        WHERE search_keyword = $1
          AND (analyzed_at AT TIME ZONE 'UTC')::date = (now() AT TIME ZONE 'UTC')::date - $2::int
        GROUP BY sentiment_label`, keyword, daysBack)
	if err != nil {
		slog.Error("[Analytics] Daily label count query failed",
			slog.String("keyword", keyword),
			slog.String("error", err.Error()))
		return dist
	}
	defer rows.Close()

	for rows.Next() {
		var label string
		var count int
		if err := rows.Scan(&label, &count); err != nil {
			continue
		}
		switch label {
		case models.SentimentPositive:
			dist.Positive = count
		case models.SentimentNegative:
			dist.Negative = count
		case models.SentimentNeutral:
			dist.Neutral = count
		}
	}
	return dist
}

// KeywordsWithCounts is the keyword leaderboard by analyzed-post volume,
// ties broken by keyword name so ordering is reproducible.
func (e *Engine) KeywordsWithCounts(ctx context.Context) []models.KeywordCount {
	rows, err := e.pool.Query(ctx, `
        SELECT search_keyword, COUNT(*) AS post_count
        FROM sentiment_results
        WHERE search_keyword IS NOT NULL
        GROUP BY search_keyword
        ORDER BY post_count DESC, search_keyword ASC`)
	if err != nil {
		slog.Error("[Analytics] Keyword counts query failed",
			slog.String("error", err.Error()))
		return []models.KeywordCount{}
	}
	defer rows.Close()

	counts := []models.KeywordCount{}
	for rows.Next() {
		var entry models.KeywordCount
		if err := rows.Scan(&entry.Keyword, &entry.Count); err != nil {
			continue
		}
		counts = append(counts, entry)
	}
	return counts
}

// AverageConfidence is the mean confidence for a keyword in the window,
// expressed as a 0-100 percentage.
func (e *Engine) AverageConfidence(ctx context.Context, keyword string, days int) float64 {
	var avg *float64
	err := e.pool.QueryRow(ctx, `
        SELECT AVG(confidence_score)
        FROM sentiment_results
        WHERE search_keyword = $1
          AND (analyzed_at AT TIME ZONE 'UTC')::date >= (now() AT TIME ZONE 'UTC')::date - $2::int`,
		keyword, days).Scan(&avg)
	if err != nil {
		slog.Error("[Analytics] Average confidence query failed",
			slog.String("keyword", keyword),
			slog.String("error", err.Error()))
		return 0.0
	}
	if avg == nil {
		return 0.0
	}
	return round1(*avg * 100)
}

// Momentum classifies the change in positive-sentiment share between the
// most recent MomentumRecentDays and the preceding part of a
// MomentumWindowDays window.
func (e *Engine) Momentum(ctx context.Context, keyword string) (string, float64) {
	recentPositive := e.windowCount(ctx, keyword, MomentumRecentDays, 0, true)
	recentTotal := e.windowCount(ctx, keyword, MomentumRecentDays, 0, false)
	earlierPositive := e.windowCount(ctx, keyword, MomentumWindowDays, MomentumRecentDays, true)
	earlierTotal := e.windowCount(ctx, keyword, MomentumWindowDays, MomentumRecentDays, false)

	return ClassifyMomentum(Share(recentPositive, recentTotal), Share(earlierPositive, earlierTotal))
}

// windowClause builds the trailing-window predicate on UTC calendar dates:
// date >= today-fromDaysBack and, when toDaysBack > 0, date < today-toDaysBack.
// All windows compare calendar dates, never raw timestamps, so a post
// analyzed at 23:59 and one at 00:01 the same day always land in the same
// window.
func windowClause(fromDaysBack, toDaysBack int, positiveOnly bool) (string, []any) {
	clause := `
          AND (analyzed_at AT TIME ZONE 'UTC')::date >= (now() AT TIME ZONE 'UTC')::date - $2::int`
	args := []any{fromDaysBack}
	if toDaysBack > 0 {
		clause += `
          AND (analyzed_at AT TIME ZONE 'UTC')::date < (now() AT TIME ZONE 'UTC')::date - $3::int`
		args = append(args, toDaysBack)
	}
	if positiveOnly {
		clause += `
          AND sentiment_label = 'positive'`
	}
	return clause, args
}

// windowCount counts results whose UTC calendar date falls in
// [today-fromDaysBack, today-toDaysBack), optionally positive-only.
func (e *Engine) windowCount(ctx context.Context, keyword string, fromDaysBack, toDaysBack int, positiveOnly bool) int {
	clause, args := windowClause(fromDaysBack, toDaysBack, positiveOnly)
	query := `
        SELECT COUNT(*)
        FROM sentiment_results
        WHERE search_keyword = $1` + clause

	var count int
	if err := e.pool.QueryRow(ctx, query, append([]any{keyword}, args...)...).Scan(&count); err != nil {
		slog.Error("[Analytics] Window count query failed",
			slog.String("keyword", keyword),
			slog.String("error", err.Error()))
		return 0
	}
	return count
}

// PeakPerformance finds the calendar date in the peak window with the best
// average positivity, considering only dates with at least PeakMinPosts
// posts. Returns (0, "") when no date qualifies.
func (e *Engine) PeakPerformance(ctx context.Context, keyword string) (float64, string) {
	return PeakDay(e.dailyLabelCounts(ctx, keyword, PeakWindowDays))
}

// KeywordMetrics are the headline numbers for one keyword over a window.
func (e *Engine) KeywordMetrics(ctx context.Context, keyword string, days int) models.KeywordMetrics {
	dist := e.SentimentDistribution(ctx, keyword, days)
	total := dist.Total()

	var postsToday int
	if err := e.pool.QueryRow(ctx, `
        SELECT COUNT(*)
        FROM sentiment_results
        WHERE search_keyword = $1
          AND (analyzed_at AT TIME ZONE 'UTC')::date = (now() AT TIME ZONE 'UTC')::date`,
		keyword).Scan(&postsToday); err != nil {
		slog.Error("[Analytics] Posts-today query failed",
			slog.String("keyword", keyword),
			slog.String("error", err.Error()))
	}

	return models.KeywordMetrics{
		TotalPosts:         total,
		PositivePercentage: round1(Share(dist.Positive, total)),
		NegativePercentage: round1(Share(dist.Negative, total)),
		NeutralPercentage:  round1(Share(dist.Neutral, total)),
		AvgConfidence:      e.AverageConfidence(ctx, keyword, days),
		PostsToday:         postsToday,
	}
}

// KeywordKPIs assembles the derived signals for one keyword. The daily
// average divides by the requested window length.
func (e *Engine) KeywordKPIs(ctx context.Context, keyword string, days int) models.KeywordKPIs {
	thisWeek := e.windowCount(ctx, keyword, 7, 0, false)
	lastWeek := e.windowCount(ctx, keyword, 14, 7, false)

	momentum, momentumChange := e.Momentum(ctx, keyword)
	rank, totalKeywords := RankKeyword(e.KeywordsWithCounts(ctx), keyword)
	peakSentiment, peakDate := e.PeakPerformance(ctx, keyword)

	windowTotal := e.windowCount(ctx, keyword, days, 0, false)
	dailyAverage := 0.0
	if days > 0 {
		dailyAverage = round1(float64(windowTotal) / float64(days))
	}

	return models.KeywordKPIs{
		PostsThisWeek:     thisWeek,
		WeekTrend:         VolumeTrend(thisWeek, lastWeek),
		ConfidenceScore:   e.AverageConfidence(ctx, keyword, days),
		SentimentMomentum: momentum,
		MomentumChange:    momentumChange,
		KeywordRank:       rank,
		TotalKeywords:     totalKeywords,
		DailyAverage:      dailyAverage,
		PeakSentiment:     peakSentiment,
		PeakDate:          peakDate,
	}
}

// TextAnalysis returns cleaned text with simplified sentiment weights for
// word-frequency consumers, restricted to confident results with enough
// text to matter, most recent first.
func (e *Engine) TextAnalysis(ctx context.Context, keyword string, days int) []models.TextAnalysisRow {
	rows, err := e.pool.Query(ctx, `
        SELECT cp.cleaned_text, sr.sentiment_label
        FROM sentiment_results sr
        JOIN cleaned_posts cp ON cp.id = sr.cleaned_post_id
        WHERE sr.search_keyword = $1
          AND sr.analyzed_at >= now() - make_interval(days => $2)
          AND sr.confidence_score > $3
          AND LENGTH(cp.cleaned_text) > $4
        ORDER BY sr.analyzed_at DESC
        LIMIT $5`,
		keyword, days, TextAnalysisMinConfidence, TextAnalysisMinLength, TextAnalysisMaxRows)
	if err != nil {
		slog.Error("[Analytics] Text analysis query failed",
			slog.String("keyword", keyword),
			slog.String("error", err.Error()))
		return []models.TextAnalysisRow{}
	}
	defer rows.Close()

	results := []models.TextAnalysisRow{}
	for rows.Next() {
		var text, label string
		if err := rows.Scan(&text, &label); err != nil {
			continue
		}
		results = append(results, models.TextAnalysisRow{
			CleanedText:    text,
			SentimentScore: SimplifiedScore(label),
		})
	}
	return results
}

// PostsByDate counts analyzed posts per calendar date for a keyword.
func (e *Engine) PostsByDate(ctx context.Context, keyword string, days int) []models.DateCount {
	rows, err := e.pool.Query(ctx, `
        SELECT (analyzed_at AT TIME ZONE 'UTC')::date AS day, COUNT(*)
        FROM sentiment_results
        WHERE search_keyword = $1
          AND (analyzed_at AT TIME ZONE 'UTC')::date >= (now() AT TIME ZONE 'UTC')::date - ($2::int - 1)
        GROUP BY day
        ORDER BY day`, keyword, days)
	if err != nil {
		slog.Error("[Analytics] Posts-by-date query failed",
			slog.String("keyword", keyword),
			slog.String("error", err.Error()))
		return []models.DateCount{}
	}
	defer rows.Close()

	counts := []models.DateCount{}
	for rows.Next() {
		var day time.Time
		var count int
		if err := rows.Scan(&day, &count); err != nil {
			continue
		}
		counts = append(counts, models.DateCount{Date: day.Format(dateLayout), Count: count})
	}
	return counts
}

// DatabaseStats counts rows at every pipeline stage, with sentiment_results
// as the source of truth for analyzed posts.
func (e *Engine) DatabaseStats(ctx context.Context) models.DatabaseStats {
	var stats models.DatabaseStats
	err := e.pool.QueryRow(ctx, `
        SELECT
            (SELECT COUNT(*) FROM raw_posts),
            (SELECT COUNT(*) FROM cleaned_posts),
            (SELECT COUNT(*) FROM sentiment_results),
            (SELECT COUNT(*) FROM raw_posts WHERE is_processed = FALSE),
            (SELECT COUNT(*) FROM cleaned_posts WHERE is_analyzed = FALSE)`,
	).Scan(&stats.RawPosts, &stats.CleanedPosts, &stats.AnalyzedPosts,
		&stats.UnprocessedPosts, &stats.UnanalyzedPosts)
	if err != nil {
		slog.Error("[Analytics] Stats query failed",
			slog.String("error", err.Error()))
	}
	return stats
}

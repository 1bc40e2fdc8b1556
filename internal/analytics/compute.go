package analytics

import (
	"math"
	"time"

	"github.com/senticheck/senticheck/internal/models"
)

// Momentum and peak windows are fixed-width signals, deliberately
// independent of the caller's requested window.
var (
	MomentumRecentDays = 3
	MomentumWindowDays = 7
	PeakWindowDays     = 30
	PeakMinPosts       = 5
)

const (
	MomentumImproving = "improving"
	MomentumDeclining = "declining"
	MomentumStable    = "stable"
)

const dateLayout = "2006-01-02"

// Trend is the percentage change of today's count against yesterday's,
// rounded to one decimal. A zero yesterday yields 0.0 so no infinity or NaN
// ever reaches the presentation layer.
func Trend(today, yesterday int) float64 {
	if yesterday == 0 {
		return 0.0
	}
	return round1(float64(today-yesterday) / float64(yesterday) * 100)
}

// VolumeTrend behaves like Trend except that activity appearing out of
// nowhere reads as +100% rather than flat.
func VolumeTrend(today, yesterday int) float64 {
	if yesterday == 0 {
		if today > 0 {
			return 100.0
		}
		return 0.0
	}
	return round1(float64(today-yesterday) / float64(yesterday) * 100)
}

// FillDateRange expands sparse per-date rows into a dense date axis ending
// at end (UTC calendar date) and spanning days entries. Dates with no
// activity carry explicit zero counts; chart consumers depend on a complete
// axis.
func FillDateRange(rows []models.DailySentiment, end time.Time, days int) []models.DailySentiment {
	if days <= 0 {
		return []models.DailySentiment{}
	}

	byDate := make(map[string]models.DailySentiment, len(rows))
	for _, row := range rows {
		byDate[row.Date] = row
	}

	endDate := end.UTC().Truncate(24 * time.Hour)
	start := endDate.AddDate(0, 0, -(days - 1))

	dense := make([]models.DailySentiment, 0, days)
	for d := start; !d.After(endDate); d = d.AddDate(0, 0, 1) {
		date := d.Format(dateLayout)
		if row, ok := byDate[date]; ok {
			dense = append(dense, row)
		} else {
			dense = append(dense, models.DailySentiment{Date: date})
		}
	}
	return dense
}

// ClassifyMomentum compares positive-share percentages of the recent window
// against the preceding one. Deltas beyond 5 percentage points flip the
// classification away from stable.
func ClassifyMomentum(recentPct, earlierPct float64) (string, float64) {
	change := round1(recentPct - earlierPct)
	switch {
	case change > 5:
		return MomentumImproving, change
	case change < -5:
		return MomentumDeclining, change
	default:
		return MomentumStable, change
	}
}

// Share is part over total as a percentage; an empty window is a 0% share,
// not undefined.
func Share(part, total int) float64 {
	if total == 0 {
		return 0.0
	}
	return float64(part) / float64(total) * 100
}

// RankKeyword finds the 1-based position of keyword in a leaderboard already
// sorted by count descending. Returns (0, total) when the keyword has no
// analyzed posts.
func RankKeyword(counts []models.KeywordCount, keyword string) (rank, total int) {
	total = len(counts)
	for i, entry := range counts {
		if entry.Keyword == keyword {
			return i + 1, total
		}
	}
	return 0, total
}

// PeakDay picks the date with the highest average positivity among days
// that have at least PeakMinPosts posts, ties going to the later date.
// Returns (0, "") when no day qualifies.
func PeakDay(rows []models.DailySentiment) (float64, string) {
	bestScore := 0.0
	bestDate := ""
	for _, row := range rows {
		total := row.Positive + row.Negative + row.Neutral
		if total < PeakMinPosts {
			continue
		}

		sum := float64(row.Positive)*PositivityScore(models.SentimentPositive) +
			float64(row.Neutral)*PositivityScore(models.SentimentNeutral) +
			float64(row.Negative)*PositivityScore(models.SentimentNegative)
		avg := sum / float64(total)

		if bestDate == "" || avg > bestScore || (avg == bestScore && row.Date > bestDate) {
			bestScore = avg
			bestDate = row.Date
		}
	}
	if bestDate == "" {
		return 0.0, ""
	}
	return round1(bestScore * 100), bestDate
}

// PositivityScore weights a label for per-day averaging: positive days pull
// toward 1, negative toward 0.
func PositivityScore(label string) float64 {
	switch label {
	case models.SentimentPositive:
		return 1.0
	case models.SentimentNeutral:
		return 0.5
	default:
		return 0.0
	}
}

// SimplifiedScore is the flattened weight attached to text rows for
// word-frequency consumers.
func SimplifiedScore(label string) float64 {
	switch label {
	case models.SentimentPositive:
		return 0.8
	case models.SentimentNegative:
		return 0.2
	default:
		return 0.5
	}
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

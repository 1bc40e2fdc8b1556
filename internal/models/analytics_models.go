package models

// SentimentDistribution always carries all three labels, zero-valued when a
// label has no rows, so chart consumers never see a missing key.
type SentimentDistribution struct {
	Positive int `json:"positive"`
	Negative int `json:"negative"`
	Neutral  int `json:"neutral"`
}

func (d SentimentDistribution) Total() int {
	return d.Positive + d.Negative + d.Neutral
}

// DailySentiment is one calendar date on the dense time axis. Date is a
// YYYY-MM-DD string in UTC.
type DailySentiment struct {
	Date     string `json:"date"`
	Positive int    `json:"positive"`
	Negative int    `json:"negative"`
	Neutral  int    `json:"neutral"`
}

// SentimentTrends holds per-label percentage change vs the previous day.
type SentimentTrends struct {
	PositiveTrend float64 `json:"positive_trend"`
	NegativeTrend float64 `json:"negative_trend"`
	NeutralTrend  float64 `json:"neutral_trend"`
}

// KeywordCount is one row of the keyword leaderboard.
type KeywordCount struct {
	Keyword string `json:"keyword"`
	Count   int    `json:"post_count"`
}

// KeywordMetrics are the per-keyword headline numbers.
type KeywordMetrics struct {
	TotalPosts         int     `json:"total_posts"`
	PositivePercentage float64 `json:"positive_percentage"`
	NegativePercentage float64 `json:"negative_percentage"`
	NeutralPercentage  float64 `json:"neutral_percentage"`
	AvgConfidence      float64 `json:"avg_confidence"`
	PostsToday         int     `json:"posts_today"`
}

// KeywordKPIs are the derived keyword signals: trailing-window momentum, rank,
// peak day, and volume signals.
type KeywordKPIs struct {
	PostsThisWeek     int     `json:"posts_this_week"`
	WeekTrend         float64 `json:"week_trend"`
	ConfidenceScore   float64 `json:"confidence_score"`
	SentimentMomentum string  `json:"sentiment_momentum"`
	MomentumChange    float64 `json:"momentum_change"`
	KeywordRank       int     `json:"keyword_rank"`
	TotalKeywords     int     `json:"total_keywords"`
	DailyAverage      float64 `json:"daily_average"`
	PeakSentiment     float64 `json:"peak_sentiment"`
	PeakDate          string  `json:"peak_date,omitempty"`
}

// TextAnalysisRow feeds word-frequency / word-cloud consumers: cleaned text
// with a simplified sentiment weight.
type TextAnalysisRow struct {
	CleanedText    string  `json:"cleaned_text"`
	SentimentScore float64 `json:"sentiment_score"`
}

// DateCount is a per-calendar-date post count.
type DateCount struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

// DatabaseStats counts rows at each pipeline stage.
type DatabaseStats struct {
	RawPosts         int `json:"raw_posts"`
	CleanedPosts     int `json:"cleaned_posts"`
	AnalyzedPosts    int `json:"analyzed_posts"`
	UnprocessedPosts int `json:"unprocessed_posts"`
	UnanalyzedPosts  int `json:"unanalyzed_posts"`
}

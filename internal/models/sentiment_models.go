package models

import "time"

const (
	SentimentPositive = "positive"
	SentimentNegative = "negative"
	SentimentNeutral  = "neutral"
)

// SentimentScore is what the scorer produces for one text: the argmax label,
// its confidence, and whatever per-class scores the classifier exposed.
type SentimentScore struct {
	SentimentLabel  string    `json:"sentiment_label"`
	ConfidenceScore float64   `json:"confidence_score"`
	PositiveScore   *float64  `json:"positive_score,omitempty"`
	NegativeScore   *float64  `json:"negative_score,omitempty"`
	NeutralScore    *float64  `json:"neutral_score,omitempty"`
	ModelName       string    `json:"model_name"`
	ModelVersion    string    `json:"model_version,omitempty"`
	AnalyzedAt      time.Time `json:"analyzed_at"`
}

// SentimentRecord pairs a score with the cleaned post it belongs to, ready
// for batch storage. SearchKeyword is denormalized onto the result row so
// aggregate queries skip the join back to raw_posts.
type SentimentRecord struct {
	CleanedPostID int64  `json:"cleaned_post_id"`
	SearchKeyword string `json:"search_keyword,omitempty"`
	SentimentScore
}

// SentimentResult is a stored sentiment row.
type SentimentResult struct {
	ID            int64 `json:"id"`
	CleanedPostID int64 `json:"cleaned_post_id"`
	SentimentScore
	SearchKeyword string `json:"search_keyword"`
}

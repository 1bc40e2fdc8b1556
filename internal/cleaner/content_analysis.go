package cleaner

import (
	"math"
	"regexp"
	"strings"
)

// Recommendation values produced by AnalyzeContent.
const (
	RecommendKeep   = "keep"
	RecommendReview = "review"
	RecommendFilter = "filter"
)

var nonWordPattern = regexp.MustCompile(`[^\p{L}\p{N}_\s]`)

// ContentAnalysis describes how much of a post is real content versus
// hashtag/mention/link noise.
type ContentAnalysis struct {
	HashtagCount   int      `json:"hashtag_count"`
	TotalWords     int      `json:"total_words"`
	ContentWords   int      `json:"content_words"`
	HashtagRatio   float64  `json:"hashtag_ratio"`
	IsHashtagOnly  bool     `json:"is_hashtag_only"`
	IsSpam         bool     `json:"is_spam"`
	ContentLength  int      `json:"content_length"`
	Recommendation string   `json:"recommendation"`
	Hashtags       []string `json:"hashtags,omitempty"`
}

// AnalyzeContent inspects a post before cleaning to decide whether it is
// hashtag-only noise or spam. Posts recommended "filter" never reach the
// cleaned stage.
func AnalyzeContent(text string) ContentAnalysis {
	if text == "" {
		return ContentAnalysis{IsHashtagOnly: true, Recommendation: RecommendFilter}
	}

	hashtags := hashtagPattern.FindAllString(text, -1)
	hashtagCount := len(hashtags)

	// Strip hashtags, mentions, URLs and emoji so only content words remain.
	content := hashtagPattern.ReplaceAllString(text, "")
	content = mentionPattern.ReplaceAllString(content, "")
	content = urlPattern.ReplaceAllString(content, "")
	content = nonWordPattern.ReplaceAllString(content, " ")
	content = whitespacePattern.ReplaceAllString(content, " ")
	content = strings.TrimSpace(content)

	contentWords := 0
	if content != "" {
		contentWords = len(strings.Fields(content))
	}
	totalWords := len(strings.Fields(text))

	hashtagRatio := 1.0
	if totalWords > 0 {
		hashtagRatio = float64(hashtagCount) / float64(totalWords)
	}
	contentLength := len([]rune(content))

	isHashtagOnly := contentWords == 0 ||
		(contentLength < 10 && hashtagCount > 0) ||
		hashtagRatio > 0.8

	isSpam := hashtagCount > 15 ||
		(hashtagCount > 8 && contentWords < 3) ||
		hashtagRatio > 0.7

	recommendation := RecommendKeep
	switch {
	case isHashtagOnly:
		recommendation = RecommendFilter
	case isSpam, hashtagCount > 10:
		recommendation = RecommendReview
	}

	return ContentAnalysis{
		HashtagCount:   hashtagCount,
		TotalWords:     totalWords,
		ContentWords:   contentWords,
		HashtagRatio:   round3(hashtagRatio),
		IsHashtagOnly:  isHashtagOnly,
		IsSpam:         isSpam,
		ContentLength:  contentLength,
		Recommendation: recommendation,
		Hashtags:       hashtags,
	}
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}

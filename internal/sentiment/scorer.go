package sentiment

import (
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/senticheck/senticheck/internal/models"
)

// Scorer wraps a Classifier behind the stable three-way label interface.
// A scorer whose Initialize failed stays non-usable until re-initialized;
// callers check IsInitialized before invoking analysis.
type Scorer struct {
	ModelName string

	newClassifier func() (Classifier, error)
	classifier    Classifier
	initialized   bool
}

func NewScorer(modelName string, factory func() (Classifier, error)) *Scorer {
	return &Scorer{
		ModelName:     modelName,
		newClassifier: factory,
	}
}

// Initialize loads the underlying model artifacts. Returns false instead of
// an error so the surrounding service can start degraded and report
// unhealthy rather than crash.
func (s *Scorer) Initialize() bool {
	slog.Info("[Scorer] Initializing sentiment model",
		slog.String("model", s.ModelName))
	start := time.Now()

	classifier, err := s.newClassifier()
	if err != nil {
		slog.Error("[Scorer] Failed to initialize sentiment model",
			slog.String("model", s.ModelName),
			slog.String("error", err.Error()))
		s.initialized = false
		return false
	}

	s.classifier = classifier
	s.initialized = true
	slog.Info("[Scorer] Sentiment model initialized",
		slog.String("model", s.ModelName),
		slog.Duration("elapsed", time.Since(start)))
	return true
}

func (s *Scorer) IsInitialized() bool {
	return s.initialized
}

// AnalyzeText scores one text. Blank input returns (nil, nil): there is
// nothing to score, which is not an error.
func (s *Scorer) AnalyzeText(text string) (*models.SentimentScore, error) {
	if strings.TrimSpace(text) == "" {
		slog.Warn("[Scorer] Empty text provided for sentiment analysis")
		return nil, nil
	}
	if !s.initialized {
		return nil, fmt.Errorf("scorer for model %s is not initialized", s.ModelName)
	}

	text = s.truncate(text)

	scores, err := s.classifier.Predict(text)
	if err != nil {
		return nil, fmt.Errorf("classifier prediction failed: %w", err)
	}
	if len(scores) == 0 {
		return nil, fmt.Errorf("classifier returned no scores")
	}

	best := scores[0]
	for _, candidate := range scores[1:] {
		if candidate.Score > best.Score {
			best = candidate
		}
	}

	result := &models.SentimentScore{
		SentimentLabel:  NormalizeLabel(best.Label),
		ConfidenceScore: round4(best.Score),
		ModelName:       s.ModelName,
		ModelVersion:    s.classifier.ModelVersion(),
		AnalyzedAt:      time.Now().UTC(),
	}

	for _, class := range scores {
		score := round4(class.Score)
		switch NormalizeLabel(class.Label) {
		case models.SentimentPositive:
			result.PositiveScore = &score
		case models.SentimentNegative:
			result.NegativeScore = &score
		case models.SentimentNeutral:
			result.NeutralScore = &score
		}
	}

	return result, nil
}

// AnalyzePostsBatch scores each post's cleaned text, skipping posts with
// empty text or scoring failures. One bad item degrades throughput, never
// the batch.
func (s *Scorer) AnalyzePostsBatch(posts []models.CleanedPost) []models.SentimentRecord {
	if len(posts) == 0 {
		slog.Warn("[Scorer] No posts provided for sentiment analysis")
		return nil
	}

	start := time.Now()
	records := make([]models.SentimentRecord, 0, len(posts))

	for _, post := range posts {
		score, err := s.AnalyzeText(post.CleanedText)
		if err != nil {
			slog.Error("[Scorer] Failed to analyze post",
				slog.Int64("cleaned_post_id", post.ID),
				slog.String("error", err.Error()))
			continue
		}
		if score == nil {
			slog.Warn("[Scorer] Post has no text to analyze",
				slog.Int64("cleaned_post_id", post.ID))
			continue
		}

		records = append(records, models.SentimentRecord{
			CleanedPostID:  post.ID,
			SentimentScore: *score,
		})
	}

	slog.Info("[Scorer] Batch analysis complete",
		slog.Int("analyzed", len(records)),
		slog.Int("total", len(posts)),
		slog.Duration("elapsed", time.Since(start)))
	return records
}

// truncate cuts over-length input down to the model's maximum sequence
// length. Long posts are scored on their prefix, not rejected.
func (s *Scorer) truncate(text string) string {
	maxLen := s.classifier.MaxSequenceLength()
	if maxLen <= 0 {
		return text
	}

	tokens := strings.Fields(text)
	if len(tokens) <= maxLen {
		return text
	}

	slog.Debug("[Scorer] Truncating over-length text",
		slog.Int("tokens", len(tokens)),
		slog.Int("max", maxLen))
	return strings.Join(tokens[:maxLen], " ")
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}

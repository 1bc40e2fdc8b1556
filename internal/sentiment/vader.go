package sentiment

import (
	"github.com/jonreiter/govader"

	"github.com/senticheck/senticheck/internal/models"
)

// VaderModelName selects the in-process VADER classifier instead of a
// transformer model. Useful where ONNX runtime artifacts are unavailable.
const VaderModelName = "vader"

type vaderClassifier struct {
	analyzer *govader.SentimentIntensityAnalyzer
}

func newVaderClassifier() (Classifier, error) {
	return &vaderClassifier{
		analyzer: govader.NewSentimentIntensityAnalyzer(),
	}, nil
}

func (v *vaderClassifier) Predict(text string) ([]LabelScore, error) {
	scores := v.analyzer.PolarityScores(text)

	return []LabelScore{
		{Label: models.SentimentPositive, Score: scores.Positive},
		{Label: models.SentimentNegative, Score: scores.Negative},
		{Label: models.SentimentNeutral, Score: scores.Neutral},
	}, nil
}

func (v *vaderClassifier) MaxSequenceLength() int { return 0 }

func (v *vaderClassifier) ModelVersion() string { return "govader" }

package sentiment

// LabelScore is one class of a classifier's output distribution. Label is the
// model's raw vocabulary ("LABEL_2", "pos", "positive", ...) before
// normalization.
type LabelScore struct {
	Label string
	Score float64
}

// Classifier is the black-box text classifier the scorer wraps. Predict
// returns the full per-class distribution for one text.
type Classifier interface {
	Predict(text string) ([]LabelScore, error)

	// MaxSequenceLength is the model's input limit in tokens; 0 means the
	// model accepts unbounded input.
	MaxSequenceLength() int

	ModelVersion() string
}

package sentiment

import (
	"log/slog"
	"strings"

	"github.com/senticheck/senticheck/internal/models"
)

// labelTaxonomy maps every label vocabulary the supported classifiers emit
// onto the fixed three-way taxonomy.
var labelTaxonomy = map[string]string{
	"positive": models.SentimentPositive,
	"pos":      models.SentimentPositive,
	"label_2":  models.SentimentPositive,
	"negative": models.SentimentNegative,
	"neg":      models.SentimentNegative,
	"label_0":  models.SentimentNegative,
	"neutral":  models.SentimentNeutral,
	"neu":      models.SentimentNeutral,
	"label_1":  models.SentimentNeutral,
}

// NormalizeLabel maps a raw classifier label onto the fixed taxonomy. An
// unrecognized label is passed through lower-cased with a warning; it is a
// data-quality signal, not a failure.
func NormalizeLabel(label string) string {
	lower := strings.ToLower(label)
	if normalized, ok := labelTaxonomy[lower]; ok {
		return normalized
	}
	slog.Warn("[Scorer] Unknown sentiment label",
		slog.String("label", label))
	return lower
}

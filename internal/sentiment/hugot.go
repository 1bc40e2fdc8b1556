package sentiment

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/knights-analytics/hugot"
	"github.com/knights-analytics/hugot/pipelines"
)

// roberta-style sequence classifiers accept 512 tokens.
const transformerMaxSequenceLength = 512

type hugotClassifier struct {
	modelName string
	session   *hugot.Session
	pipeline  *pipelines.TextClassificationPipeline
}

// newHugotClassifier loads a Hugging Face sequence-classification model
// through the ONNX runtime, downloading the artifacts on first use.
func newHugotClassifier(modelName, modelDir string) (Classifier, error) {
	if err := os.MkdirAll(modelDir, os.ModePerm); err != nil {
		return nil, fmt.Errorf("failed to create model directory: %w", err)
	}

	modelPath := filepath.Join(modelDir, strings.ReplaceAll(modelName, "/", "_"))
	if _, err := os.Stat(modelPath); os.IsNotExist(err) {
		slog.Info("[Scorer] Model not found locally, downloading",
			slog.String("model", modelName))
		downloaded, err := hugot.DownloadModel(modelName, modelDir, hugot.NewDownloadOptions())
		if err != nil {
			return nil, fmt.Errorf("failed to download model %s: %w", modelName, err)
		}
		modelPath = downloaded
	}

	session, err := hugot.NewORTSession()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize ONNX session: %w", err)
	}

	config := hugot.TextClassificationConfig{
		ModelPath: modelPath,
		Name:      "sentimentClassificationPipeline",
		Options: []hugot.TextClassificationOption{
			pipelines.WithMultiLabel(),
		},
	}
	pipeline, err := hugot.NewPipeline(session, config)
	if err != nil {
		session.Destroy()
		return nil, fmt.Errorf("failed to initialize classification pipeline: %w", err)
	}

	return &hugotClassifier{
		modelName: modelName,
		session:   session,
		pipeline:  pipeline,
	}, nil
}

func (h *hugotClassifier) Predict(text string) ([]LabelScore, error) {
	output, err := h.pipeline.RunPipeline([]string{text})
	if err != nil {
		return nil, err
	}
	if len(output.ClassificationOutputs) == 0 || len(output.ClassificationOutputs[0]) == 0 {
		return nil, fmt.Errorf("classification returned no outputs")
	}

	classes := output.ClassificationOutputs[0]
	scores := make([]LabelScore, 0, len(classes))
	for _, class := range classes {
		scores = append(scores, LabelScore{
			Label: class.Label,
			Score: float64(class.Score),
		})
	}
	return scores, nil
}

func (h *hugotClassifier) MaxSequenceLength() int { return transformerMaxSequenceLength }

func (h *hugotClassifier) ModelVersion() string { return "onnx" }

// DefaultFactory wires model names to classifier implementations: "vader"
// gets the in-process VADER analyzer, anything else is treated as a Hugging
// Face model identifier.
func DefaultFactory(modelDir string) ClassifierFactory {
	return func(modelName string) (Classifier, error) {
		if modelName == VaderModelName {
			return newVaderClassifier()
		}
		return newHugotClassifier(modelName, modelDir)
	}
}

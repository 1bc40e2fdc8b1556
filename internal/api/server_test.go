package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/senticheck/senticheck/config"
	"github.com/senticheck/senticheck/internal/models"
	"github.com/senticheck/senticheck/internal/pipeline"
	"github.com/senticheck/senticheck/internal/sentiment"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeStore struct {
	raw     []models.RawPost
	cleaned map[int64]string
}

func (f *fakeStore) FetchUnprocessed(_ context.Context, limit int) ([]models.RawPost, error) {
	var out []models.RawPost
	for _, p := range f.raw {
		if len(out) == limit {
			break
		}
		if !p.IsProcessed {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeStore) StoreCleaned(_ context.Context, rawPostID int64, cleanedText, _ string,
	_ models.CleaningMetadata, _, _ bool,
) (int64, error) {
	if f.cleaned == nil {
		f.cleaned = make(map[int64]string)
	}
	f.cleaned[rawPostID] = cleanedText
	for i := range f.raw {
		if f.raw[i].ID == rawPostID {
			f.raw[i].IsProcessed = true
		}
	}
	return rawPostID, nil
}

func (f *fakeStore) MarkProcessed(_ context.Context, rawPostID int64) error {
	for i := range f.raw {
		if f.raw[i].ID == rawPostID {
			f.raw[i].IsProcessed = true
		}
	}
	return nil
}

func (f *fakeStore) FetchUnanalyzed(context.Context, int) ([]models.CleanedPost, error) {
	return nil, nil
}

func (f *fakeStore) StoreSentimentBatch(_ context.Context, records []models.SentimentRecord) (int, error) {
	return len(records), nil
}

type stubClassifier struct{}

func (stubClassifier) Predict(string) ([]sentiment.LabelScore, error) {
	return []sentiment.LabelScore{
		{Label: "positive", Score: 0.92},
		{Label: "neutral", Score: 0.05},
		{Label: "negative", Score: 0.03},
	}, nil
}

func (stubClassifier) MaxSequenceLength() int { return 0 }
func (stubClassifier) ModelVersion() string   { return "stub" }

func newTestServer(store *fakeStore, factory sentiment.ClassifierFactory) *Server {
	cfg := config.Config{HTTPPort: "8000", BatchSize: 100, ModelName: "stub-model"}
	scorers := sentiment.NewCache(factory)
	coordinator := pipeline.NewCoordinator(store, scorers, cfg)
	return NewServer(coordinator, nil, scorers, nil, cfg)
}

func workingFactory(string) (sentiment.Classifier, error) {
	return stubClassifier{}, nil
}

func TestHealthEndpoint(t *testing.T) {
	srv := newTestServer(&fakeStore{}, workingFactory)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	srv.Handler().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if body["status"] != "healthy" {
		t.Errorf("status field = %v, want healthy", body["status"])
	}
	if body["model_loaded"] != false {
		t.Errorf("model_loaded = %v, want false before first use", body["model_loaded"])
	}
	if body["model_name"] != "stub-model" {
		t.Errorf("model_name = %v", body["model_name"])
	}
}

func TestAnalyzeSingle(t *testing.T) {
	srv := newTestServer(&fakeStore{}, workingFactory)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/analyze/single",
		strings.NewReader(`{"text": "this is wonderful", "id": "t1"}`))
	req.Header.Set("Content-Type", "application/json")
	srv.Handler().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", w.Code, w.Body.String())
	}

	var body analyzeItemResponse
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if body.SentimentLabel != models.SentimentPositive {
		t.Errorf("label = %s, want positive", body.SentimentLabel)
	}
	if body.ConfidenceScore != 0.92 {
		t.Errorf("confidence = %v, want 0.92", body.ConfidenceScore)
	}
	if body.ID != "t1" {
		t.Errorf("id = %s, want t1", body.ID)
	}
}

func TestAnalyzeSingleRejectsMissingText(t *testing.T) {
	srv := newTestServer(&fakeStore{}, workingFactory)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/analyze/single", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	srv.Handler().ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestAnalyzeSingleModelUnavailable(t *testing.T) {
	srv := newTestServer(&fakeStore{}, func(string) (sentiment.Classifier, error) {
		return nil, errors.New("download failed")
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/analyze/single",
		strings.NewReader(`{"text": "anything"}`))
	req.Header.Set("Content-Type", "application/json")
	srv.Handler().ServeHTTP(w, req)

	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", w.Code)
	}
}

func TestAnalyzeBatch(t *testing.T) {
	srv := newTestServer(&fakeStore{}, workingFactory)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/analyze/batch",
		strings.NewReader(`{"texts": [{"text": "great"}, {"text": ""}, {"text": "fine"}]}`))
	req.Header.Set("Content-Type", "application/json")
	srv.Handler().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", w.Code, w.Body.String())
	}

	var body struct {
		Results  []analyzeItemResponse `json:"results"`
		Analyzed int                   `json:"analyzed"`
		Failed   int                   `json:"failed"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if body.Analyzed != 2 || body.Failed != 1 {
		t.Errorf("analyzed = %d, failed = %d, want 2/1", body.Analyzed, body.Failed)
	}
}

func TestProcessRawPostsEndpoint(t *testing.T) {
	store := &fakeStore{raw: []models.RawPost{
		{ID: 1, Text: "A perfectly reasonable post about something"},
	}}
	srv := newTestServer(store, workingFactory)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/pipeline/process_raw_posts", nil)
	srv.Handler().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", w.Code, w.Body.String())
	}

	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if body["processed"] != float64(1) {
		t.Errorf("processed = %v, want 1", body["processed"])
	}
	if store.cleaned[1] == "" {
		t.Error("post was not cleaned and stored")
	}
}

func TestAnalyzeSentimentEndpointEmptyBacklog(t *testing.T) {
	srv := newTestServer(&fakeStore{}, workingFactory)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/pipeline/analyze_sentiment?limit=25", nil)
	srv.Handler().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", w.Code, w.Body.String())
	}

	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if body["analyzed"] != float64(0) {
		t.Errorf("analyzed = %v, want 0", body["analyzed"])
	}
	if body["limit"] != float64(25) {
		t.Errorf("limit = %v, want 25", body["limit"])
	}
}

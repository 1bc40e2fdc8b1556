package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/senticheck/senticheck/internal/models"
)

type analyzeSingleRequest struct {
	Text string `json:"text" binding:"required"`
	ID   string `json:"id"`
}

type analyzeBatchRequest struct {
	Texts []analyzeSingleRequest `json:"texts" binding:"required"`

	ModelName string `json:"model_name"`
}

type analyzeItemResponse struct {
	ID string `json:"id,omitempty"`
	models.SentimentScore
}

// invalidateAnalyticsCaches drops cached analytics responses after a
// pipeline pass lands new rows, so dashboards see them before the TTL runs
// out.
func (s *Server) invalidateAnalyticsCaches(c *gin.Context) {
	for _, endpoint := range []string{"distribution", "over_time", "keyword_metrics", "keywords"} {
		s.cache.InvalidateEndpoint(c.Request.Context(), endpoint)
	}
}

func (s *Server) handleProcessRawPosts(c *gin.Context) {
	result, err := s.coordinator.ProcessRawPosts(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	if result.Stored > 0 {
		s.invalidateAnalyticsCaches(c)
	}

	c.JSON(http.StatusOK, gin.H{
		"processed": result.Stored,
		"filtered":  result.Filtered,
		"failed":    result.Failed,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleAnalyzeSentiment(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))
	modelName := c.DefaultQuery("model_name", s.cfg.ModelName)
	if limit <= 0 {
		limit = s.cfg.BatchSize
	}

	result, err := s.coordinator.AnalyzeSentimentWith(c.Request.Context(), limit, modelName)
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
		return
	}

	if result.Stored > 0 {
		s.invalidateAnalyticsCaches(c)
	}

	c.JSON(http.StatusOK, gin.H{
		"analyzed":  result.Stored,
		"limit":     limit,
		"model":     modelName,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleAnalyzeSingle(c *gin.Context) {
	var req analyzeSingleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	scorer, err := s.scorers.GetOrCreate(s.cfg.ModelName)
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "sentiment model unavailable"})
		return
	}

	score, err := scorer.AnalyzeText(req.Text)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if score == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "text is empty"})
		return
	}

	c.JSON(http.StatusOK, analyzeItemResponse{ID: req.ID, SentimentScore: *score})
}

func (s *Server) handleAnalyzeBatch(c *gin.Context) {
	var req analyzeBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	modelName := req.ModelName
	if modelName == "" {
		modelName = s.cfg.ModelName
	}

	scorer, err := s.scorers.GetOrCreate(modelName)
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "sentiment model unavailable"})
		return
	}

	start := time.Now()
	results := make([]analyzeItemResponse, 0, len(req.Texts))
	failed := 0
	for _, item := range req.Texts {
		score, err := scorer.AnalyzeText(item.Text)
		if err != nil || score == nil {
			failed++
			continue
		}
		results = append(results, analyzeItemResponse{ID: item.ID, SentimentScore: *score})
	}

	c.JSON(http.StatusOK, gin.H{
		"results":     results,
		"analyzed":    len(results),
		"failed":      failed,
		"model":       modelName,
		"duration_ms": time.Since(start).Milliseconds(),
	})
}

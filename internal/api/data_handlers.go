package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/senticheck/senticheck/internal/cache"
	"github.com/senticheck/senticheck/internal/models"
)

const defaultWindowDays = 30

// respondCached serves key from the response cache when possible, otherwise
// computes the payload, caches it, and serves it.
func (s *Server) respondCached(c *gin.Context, key string, compute func() any) {
	ctx := c.Request.Context()

	if payload, ok := s.cache.Get(ctx, key); ok {
		c.Data(http.StatusOK, "application/json; charset=utf-8", payload)
		return
	}

	value := compute()
	payload, err := json.Marshal(value)
	if err != nil {
		c.JSON(http.StatusOK, value)
		return
	}

	s.cache.Set(ctx, key, payload)
	c.Data(http.StatusOK, "application/json; charset=utf-8", payload)
}

func windowDays(c *gin.Context) int {
	days, err := strconv.Atoi(c.Query("days"))
	if err != nil || days <= 0 {
		return defaultWindowDays
	}
	return days
}

func (s *Server) handleDistribution(c *gin.Context) {
	keyword := c.Query("search_keyword")
	days := windowDays(c)

	s.respondCached(c, cache.Key("distribution", keyword, strconv.Itoa(days)), func() any {
		return s.engine.SentimentDistribution(c.Request.Context(), keyword, days)
	})
}

func (s *Server) handleOverTime(c *gin.Context) {
	keyword := c.Query("search_keyword")
	days := windowDays(c)

	s.respondCached(c, cache.Key("over_time", keyword, strconv.Itoa(days)), func() any {
		return s.engine.SentimentOverTime(c.Request.Context(), keyword, days)
	})
}

func (s *Server) handleTrends(c *gin.Context) {
	keyword := c.Query("search_keyword")
	c.JSON(http.StatusOK, s.engine.SentimentTrends(c.Request.Context(), keyword))
}

func (s *Server) handleKeywordMetrics(c *gin.Context) {
	keyword := c.Param("keyword")
	days := windowDays(c)

	s.respondCached(c, cache.Key("keyword_metrics", keyword, strconv.Itoa(days)), func() any {
		return gin.H{
			"keyword": keyword,
			"metrics": s.engine.KeywordMetrics(c.Request.Context(), keyword, days),
			"kpis":    s.engine.KeywordKPIs(c.Request.Context(), keyword, days),
		}
	})
}

func (s *Server) handleKeywords(c *gin.Context) {
	s.respondCached(c, cache.Key("keywords"), func() any {
		return gin.H{"keywords": s.engine.KeywordsWithCounts(c.Request.Context())}
	})
}

func (s *Server) handleStats(c *gin.Context) {
	c.JSON(http.StatusOK, s.engine.DatabaseStats(c.Request.Context()))
}

type textAnalysisRequest struct {
	SearchKeyword string `json:"search_keyword"`
	Days          int    `json:"days"`
}

func (s *Server) handleTextAnalysis(c *gin.Context) {
	var req textAnalysisRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Days <= 0 {
		req.Days = defaultWindowDays
	}

	rows := s.engine.TextAnalysis(c.Request.Context(), req.SearchKeyword, req.Days)
	if rows == nil {
		rows = []models.TextAnalysisRow{}
	}
	c.JSON(http.StatusOK, gin.H{"data": rows, "count": len(rows)})
}

func (s *Server) handlePostsByDate(c *gin.Context) {
	keyword := c.Query("search_keyword")
	days := windowDays(c)
	c.JSON(http.StatusOK, gin.H{
		"data": s.engine.PostsByDate(c.Request.Context(), keyword, days),
	})
}

package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/senticheck/senticheck/config"
	"github.com/senticheck/senticheck/internal/analytics"
	"github.com/senticheck/senticheck/internal/cache"
	"github.com/senticheck/senticheck/internal/pipeline"
	"github.com/senticheck/senticheck/internal/sentiment"
)

// Server exposes the pipeline and its analytics over HTTP. It is consumed
// by the scheduler (pipeline endpoints) and the dashboard (data endpoints).
type Server struct {
	router      *gin.Engine
	coordinator *pipeline.Coordinator
	engine      *analytics.Engine
	scorers     *sentiment.Cache
	cache       *cache.Cache
	cfg         config.Config
	startedAt   time.Time
}

func NewServer(coordinator *pipeline.Coordinator, engine *analytics.Engine,
	scorers *sentiment.Cache, responseCache *cache.Cache, cfg config.Config,
) *Server {
	s := &Server{
		router:      gin.New(),
		coordinator: coordinator,
		engine:      engine,
		scorers:     scorers,
		cache:       responseCache,
		cfg:         cfg,
		startedAt:   time.Now(),
	}

	s.router.Use(gin.Recovery(), requestLogger())
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.router.GET("/health", s.handleHealth)

	pipelineGroup := s.router.Group("/pipeline")
	{
		pipelineGroup.POST("/process_raw_posts", s.handleProcessRawPosts)
		pipelineGroup.POST("/analyze_sentiment", s.handleAnalyzeSentiment)
	}

	analyzeGroup := s.router.Group("/analyze")
	{
		analyzeGroup.POST("/single", s.handleAnalyzeSingle)
		analyzeGroup.POST("/batch", s.handleAnalyzeBatch)
	}

	dataGroup := s.router.Group("/data")
	{
		dataGroup.GET("/sentiment/distribution", s.handleDistribution)
		dataGroup.GET("/sentiment/over_time", s.handleOverTime)
		dataGroup.GET("/sentiment/trends", s.handleTrends)
		dataGroup.GET("/metrics/keyword/:keyword", s.handleKeywordMetrics)
		dataGroup.GET("/keywords", s.handleKeywords)
		dataGroup.GET("/stats", s.handleStats)
		dataGroup.POST("/text_analysis", s.handleTextAnalysis)
		dataGroup.GET("/posts/by_date", s.handlePostsByDate)
	}
}

func (s *Server) Run() error {
	addr := ":" + s.cfg.HTTPPort
	slog.Info("[API] Starting HTTP server",
		slog.String("address", addr))
	return s.router.Run(addr)
}

// Handler exposes the router for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":         "healthy",
		"model_loaded":   s.scorers.IsLoaded(s.cfg.ModelName),
		"model_name":     s.cfg.ModelName,
		"uptime_seconds": int(time.Since(s.startedAt).Seconds()),
		"timestamp":      time.Now().UTC().Format(time.RFC3339),
	})
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		slog.Info("[API] Request handled",
			slog.String("method", c.Request.Method),
			slog.String("path", c.Request.URL.Path),
			slog.Int("status", c.Writer.Status()),
			slog.Duration("duration", time.Since(start)))
	}
}

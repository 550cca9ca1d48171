package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/seo-optimizer/pageaudit/analyzer"
	"github.com/seo-optimizer/pageaudit/metrics"
	"github.com/seo-optimizer/pageaudit/middleware"
	"github.com/seo-optimizer/pageaudit/stats"
	"github.com/seo-optimizer/pageaudit/store"
)

// History is the read side of the analysis store
type History interface {
	Get(ctx context.Context, id string) (*analyzer.Result, error)
	List(ctx context.Context, limit, offset int) ([]store.Summary, error)
	Delete(ctx context.Context, id string) error
}

// Deps are the server's collaborators. Analyzer is required; History,
// Storage, Metrics and RateLimiter are optional.
type Deps struct {
	Analyzer    *analyzer.Analyzer
	History     History
	Traffic     *stats.Traffic
	Storage     *stats.Storage
	Metrics     *metrics.Collector
	RateLimiter *middleware.RateLimiter
	Logger      *zap.Logger
	// Now is used for report timestamps
	Now func() time.Time
}

// Server exposes the analyzer over HTTP
type Server struct {
	deps   Deps
	logger *zap.Logger
	now    func() time.Time
}

// New creates a server
func New(deps Deps) *Server {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.Traffic == nil {
		deps.Traffic = stats.NewTraffic(false)
	}
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	return &Server{deps: deps, logger: deps.Logger, now: now}
}

// Router builds the gin engine with middleware and all routes
func (s *Server) Router() *gin.Engine {
	r := gin.New()

	r.Use(middleware.ErrorHandler(s.logger))
	r.Use(middleware.CORS())

	var observer middleware.HTTPObserver
	if s.deps.Metrics != nil {
		observer = s.deps.Metrics
	}
	r.Use(middleware.StatsMiddleware(s.deps.Traffic, observer, s.logger))

	if s.deps.Metrics != nil {
		r.GET("/metrics", gin.WrapH(s.deps.Metrics.Handler()))
	}

	api := r.Group("/api")
	if s.deps.RateLimiter != nil {
		api.Use(s.deps.RateLimiter.RateLimit())
	}
	{
		api.GET("/health", s.health)
		api.POST("/analyze", s.analyze)
		api.POST("/compare", s.compare)
		api.POST("/report", s.reportFromBody)
		api.GET("/statistics", s.statistics)

		history := api.Group("/analyses")
		history.Use(s.requireHistory)
		history.GET("", s.listAnalyses)
		history.GET("/:id", s.getAnalysis)
		history.DELETE("/:id", s.deleteAnalysis)
		history.GET("/:id/report", s.analysisReport)
	}

	return r
}

func (s *Server) requireHistory(c *gin.Context) {
	if s.deps.History == nil {
		c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{
			"error": "Analysis history is not enabled",
		})
		return
	}
	c.Next()
}

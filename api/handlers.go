package api

import (
	"bytes"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/seo-optimizer/pageaudit/analyzer"
	"github.com/seo-optimizer/pageaudit/middleware"
	"github.com/seo-optimizer/pageaudit/report"
	"github.com/seo-optimizer/pageaudit/stats"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

type analyzeRequest struct {
	URL string `json:"url" binding:"required"`
}

type compareRequest struct {
	URLs []string `json:"urls" binding:"required,len=2"`
}

type statisticsResponse struct {
	stats.Snapshot
	Month *monthSummary `json:"month,omitempty"`
}

type monthSummary struct {
	stats.MonthlyStats
	Average float64 `json:"average_score"`
}

func (s *Server) health(c *gin.Context) {
	s.logger.Debug("Health check", zap.String("ip", c.ClientIP()))
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) analyze(c *gin.Context) {
	var req analyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid URL provided"})
		return
	}
	c.Set(middleware.AnalyzedURLKey, req.URL)

	result, err := s.deps.Analyzer.Analyze(c.Request.Context(), req.URL)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.Set(middleware.AnalyzedURLKey, result.URL)
	c.JSON(http.StatusOK, result)
}

func (s *Server) compare(c *gin.Context) {
	var req compareRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Provide exactly two URLs to compare"})
		return
	}

	cmp, err := s.deps.Analyzer.Compare(c.Request.Context(), req.URLs[0], req.URLs[1])
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, cmp)
}

func (s *Server) statistics(c *gin.Context) {
	resp := statisticsResponse{Snapshot: s.deps.Traffic.Snapshot()}
	if s.deps.Storage != nil {
		month := s.deps.Storage.GetCurrentStats()
		resp.Month = &monthSummary{MonthlyStats: month, Average: month.AverageScore()}
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) listAnalyses(c *gin.Context) {
	limit, err := queryInt(c, "limit", defaultPageSize)
	if err != nil || limit < 1 || limit > maxPageSize {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("limit must be between 1 and %d", maxPageSize)})
		return
	}
	offset, err := queryInt(c, "offset", 0)
	if err != nil || offset < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "offset must not be negative"})
		return
	}

	items, err := s.deps.History.List(c.Request.Context(), limit, offset)
	if err != nil {
		s.logger.Error("Failed to list analyses", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list analyses"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items, "limit": limit, "offset": offset})
}

// analysisID validates the :id parameter; it answers 400 and returns false
// when the id is not a UUID
func analysisID(c *gin.Context) (string, bool) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid analysis id"})
		return "", false
	}
	return id, true
}

func (s *Server) getAnalysis(c *gin.Context) {
	id, ok := analysisID(c)
	if !ok {
		return
	}
	result, err := s.deps.History.Get(c.Request.Context(), id)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (s *Server) deleteAnalysis(c *gin.Context) {
	id, ok := analysisID(c)
	if !ok {
		return
	}
	if err := s.deps.History.Delete(c.Request.Context(), id); err != nil {
		s.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) analysisReport(c *gin.Context) {
	id, ok := analysisID(c)
	if !ok {
		return
	}
	result, err := s.deps.History.Get(c.Request.Context(), id)
	if err != nil {
		s.writeError(c, err)
		return
	}
	s.renderReport(c, result)
}

func (s *Server) reportFromBody(c *gin.Context) {
	var result analyzer.Result
	if err := c.ShouldBindJSON(&result); err != nil || result.URL == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "An analysis result with a url is required"})
		return
	}
	s.renderReport(c, &result)
}

func (s *Server) renderReport(c *gin.Context, result *analyzer.Result) {
	var buf bytes.Buffer
	if err := report.Render(&buf, result, s.deps.Analyzer.Pipeline().Rules(), s.now()); err != nil {
		s.logger.Error("Failed to render report", zap.String("url", result.URL), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate report"})
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, reportFilename(result.URL)))
	c.Data(http.StatusOK, "application/pdf", buf.Bytes())
}

func reportFilename(rawURL string) string {
	host := "page"
	if u, err := url.Parse(rawURL); err == nil && u.Hostname() != "" {
		host = strings.ReplaceAll(u.Hostname(), ".", "-")
	}
	return "seo-report-" + host + ".pdf"
}

func queryInt(c *gin.Context, key string, fallback int) (int, error) {
	raw := c.Query(key)
	if raw == "" {
		return fallback, nil
	}
	return strconv.Atoi(raw)
}

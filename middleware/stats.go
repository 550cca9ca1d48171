package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AnalyzedURLKey is the gin context key handlers use to report which URL a
// request analyzed
const AnalyzedURLKey = "analyzedURL"

// TrafficTracker receives visitor and analysis traffic
type TrafficTracker interface {
	TrackVisitor(ip string)
	TrackAnalysis(target string, loadTime time.Duration, hasError bool)
}

// HTTPObserver receives per-request measurements
type HTTPObserver interface {
	ObserveHTTP(method, path string, status int, elapsed time.Duration)
}

// StatsMiddleware tracks visitors, analysis load times and request metrics,
// and writes one access log line per request. Any argument may be nil.
func StatsMiddleware(traffic TrafficTracker, observer HTTPObserver, logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(c *gin.Context) {
		start := time.Now()
		ip := c.ClientIP()

		if traffic != nil {
			traffic.TrackVisitor(ip)
		}

		c.Next()

		elapsed := time.Since(start)
		status := c.Writer.Status()
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}

		if traffic != nil && c.Request.Method == http.MethodPost && route == "/api/analyze" {
			traffic.TrackAnalysis(c.GetString(AnalyzedURLKey), elapsed, status >= http.StatusBadRequest)
		}
		if observer != nil {
			observer.ObserveHTTP(c.Request.Method, route, status, elapsed)
		}

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", status),
			zap.Duration("latency", elapsed),
			zap.String("ip", ip),
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("errors", c.Errors.String()))
		}
		switch {
		case status >= http.StatusInternalServerError:
			logger.Error("Request failed", fields...)
		case status >= http.StatusBadRequest:
			logger.Warn("Request rejected", fields...)
		default:
			logger.Info("Request served", fields...)
		}
	}
}

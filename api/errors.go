package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/seo-optimizer/pageaudit/analyzer"
	"github.com/seo-optimizer/pageaudit/store"
)

// QuotaExceededCode is the error body clients match on to show a
// "try again later" message
const QuotaExceededCode = "QUOTA_EXCEEDED"

// statusFor maps a domain error to an HTTP status and client message.
// Messages are fixed; error details only go to the logs.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, analyzer.ErrInvalidURL):
		return http.StatusBadRequest, "Invalid URL provided"
	case errors.Is(err, analyzer.ErrQuotaExceeded):
		return http.StatusTooManyRequests, QuotaExceededCode
	case errors.Is(err, analyzer.ErrEmptyContent):
		return http.StatusUnprocessableEntity, "The page has no content to analyze"
	case errors.Is(err, analyzer.ErrFetchFailure):
		return http.StatusBadGateway, "Failed to analyze URL: the page could not be fetched"
	case errors.Is(err, analyzer.ErrParseFailure):
		return http.StatusBadGateway, "Failed to analyze URL: the page could not be parsed"
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound, "Analysis not found"
	}
	return http.StatusInternalServerError, "Failed to analyze URL"
}

func (s *Server) writeError(c *gin.Context, err error) {
	status, message := statusFor(err)
	_ = c.Error(err)
	if status == http.StatusTooManyRequests {
		c.Header("Retry-After", "60")
	}
	c.AbortWithStatusJSON(status, gin.H{"error": message})
}

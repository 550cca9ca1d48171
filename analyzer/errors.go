package analyzer

import "errors"

// Boundary errors. The pure pipeline never returns any of these; they are
// produced by the orchestrator and its collaborators and wrapped with %w.
var (
	ErrInvalidURL         = errors.New("invalid url")
	ErrFetchFailure       = errors.New("failed to fetch page")
	ErrEmptyContent       = errors.New("empty page content")
	ErrQuotaExceeded      = errors.New("upstream quota exceeded")
	ErrParseFailure       = errors.New("failed to parse upstream response")
	ErrPersistenceFailure = errors.New("failed to persist analysis")
)

// Upstream names used in UpstreamError
const (
	UpstreamFetcher  = "fetcher"
	UpstreamKeywords = "keywords"
)

// UpstreamError attributes a failure to the external service that caused it
type UpstreamError struct {
	Upstream string
	Err      error
}

func (e *UpstreamError) Error() string {
	return e.Upstream + ": " + e.Err.Error()
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

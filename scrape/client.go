package scrape

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/seo-optimizer/pageaudit/analyzer"
)

const (
	defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36"
	defaultMaxBody   = 5 << 20
)

// StatusError is returned for non-2xx upstream responses other than 429
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("upstream returned %d: %s", e.StatusCode, e.Body)
}

// Config tunes the shared HTTP behaviour of fetchers
type Config struct {
	Timeout time.Duration
	// Retries is the number of extra attempts after a transport error or 5xx
	Retries     int
	BaseBackoff time.Duration
	// RatePerSecond limits upstream calls; 0 disables limiting
	RatePerSecond float64
	Burst         int
	MaxBodyBytes  int64
	UserAgent     string
	HTTPClient    *http.Client
	Logger        *zap.Logger
}

// client holds the retry, rate limiting and size capping logic shared by
// the proxy and direct fetchers
type client struct {
	http        *http.Client
	limiter     *rate.Limiter
	retries     int
	baseBackoff time.Duration
	maxBody     int64
	userAgent   string
	logger      *zap.Logger
}

func newClient(cfg Config) *client {
	c := &client{
		http:        cfg.HTTPClient,
		retries:     cfg.Retries,
		baseBackoff: cfg.BaseBackoff,
		maxBody:     cfg.MaxBodyBytes,
		userAgent:   cfg.UserAgent,
		logger:      cfg.Logger,
	}
	if c.http == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 15 * time.Second
		}
		transport := &http.Transport{
			Proxy:               http.ProxyFromEnvironment,
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
			TLSHandshakeTimeout: 10 * time.Second,
		}
		c.http = &http.Client{Timeout: timeout, Transport: transport}
	}
	if cfg.RatePerSecond > 0 {
		burst := cfg.Burst
		if burst <= 0 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(cfg.RatePerSecond), burst)
	}
	if c.retries < 0 {
		c.retries = 0
	}
	if c.baseBackoff <= 0 {
		c.baseBackoff = 500 * time.Millisecond
	}
	if c.maxBody <= 0 {
		c.maxBody = defaultMaxBody
	}
	if c.userAgent == "" {
		c.userAgent = defaultUserAgent
	}
	if c.logger == nil {
		c.logger = zap.NewNop()
	}
	return c
}

// get performs a GET with retries. The returned error wraps
// analyzer.ErrQuotaExceeded for 429 responses and analyzer.ErrFetchFailure
// for everything else.
func (c *client) get(ctx context.Context, endpoint string, header http.Header) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt <= c.retries; attempt++ {
		if attempt > 0 {
			backoff := c.baseBackoff << (attempt - 1)
			c.logger.Debug("Retrying upstream fetch",
				zap.Int("attempt", attempt),
				zap.Duration("backoff", backoff),
				zap.Error(lastErr))
			select {
			case <-ctx.Done():
				return nil, fmt.Errorf("%w: %v", analyzer.ErrFetchFailure, ctx.Err())
			case <-time.After(backoff):
			}
		}

		body, err := c.do(ctx, endpoint, header)
		if err == nil {
			return body, nil
		}
		if !retryable(err) || ctx.Err() != nil {
			return nil, err
		}
		lastErr = err
	}
	return nil, lastErr
}

func (c *client) do(ctx context.Context, endpoint string, header http.Header) ([]byte, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("%w: %v", analyzer.ErrFetchFailure, err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", analyzer.ErrFetchFailure, redact(err))
	}
	for k, v := range header {
		req.Header[k] = v
	}
	if req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", analyzer.ErrFetchFailure, redact(err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBody))
	if err != nil {
		return nil, fmt.Errorf("%w: reading body: %w", analyzer.ErrFetchFailure, err)
	}

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, fmt.Errorf("%w: %s", analyzer.ErrQuotaExceeded, endpointHost(req))
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		snippet := string(body)
		if len(snippet) > 200 {
			snippet = snippet[:200]
		}
		return nil, fmt.Errorf("%w: %w", analyzer.ErrFetchFailure,
			&StatusError{StatusCode: resp.StatusCode, Body: snippet})
	}
	return body, nil
}

// secretParams are query parameters that carry upstream credentials
var secretParams = []string{"api_key"}

// redact strips credentials from the URL carried by a *url.Error, which
// net/http embeds verbatim in its message
func redact(err error) error {
	var ue *url.Error
	if errors.As(err, &ue) {
		ue.URL = redactURL(ue.URL)
	}
	return err
}

func redactURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return "[redacted]"
	}
	if u.RawQuery != "" {
		q := u.Query()
		for _, name := range secretParams {
			if q.Has(name) {
				q.Set(name, "REDACTED")
			}
		}
		u.RawQuery = q.Encode()
	}
	return u.Redacted()
}

func endpointHost(req *http.Request) string {
	return req.URL.Host
}

// retryable reports whether another attempt could succeed. Quota errors
// and client errors are final.
func retryable(err error) bool {
	if errors.Is(err, analyzer.ErrQuotaExceeded) {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var se *StatusError
	if errors.As(err, &se) {
		return se.StatusCode >= 500
	}
	return true
}

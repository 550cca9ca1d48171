package scrape

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"go.uber.org/zap"
)

// DefaultScrapingBeeURL is the ScrapingBee API endpoint
const DefaultScrapingBeeURL = "https://app.scrapingbee.com/api/v1"

// ScrapingBee fetches pages through the ScrapingBee scraping proxy without
// JavaScript rendering
type ScrapingBee struct {
	apiKey   string
	endpoint string
	client   *client
}

// NewScrapingBee creates a proxy fetcher. endpoint may be empty for the
// public API.
func NewScrapingBee(apiKey, endpoint string, cfg Config) (*ScrapingBee, error) {
	if apiKey == "" {
		return nil, errors.New("scrapingbee api key is required")
	}
	if endpoint == "" {
		endpoint = DefaultScrapingBeeURL
	}
	return &ScrapingBee{
		apiKey:   apiKey,
		endpoint: strings.TrimRight(endpoint, "/"),
		client:   newClient(cfg),
	}, nil
}

// Fetch implements analyzer.Fetcher
func (s *ScrapingBee) Fetch(ctx context.Context, target string) ([]byte, error) {
	q := url.Values{}
	q.Set("api_key", s.apiKey)
	q.Set("url", target)
	q.Set("render_js", "false")

	header := http.Header{}
	header.Set("Accept", "text/html,application/xhtml+xml,application/xml")

	s.client.logger.Debug("Fetching page through scraping proxy", zap.String("target", target))
	return s.client.get(ctx, s.endpoint+"?"+q.Encode(), header)
}

// Direct fetches pages straight from the origin
type Direct struct {
	client *client
}

// NewDirect creates a fetcher that talks to the target site itself
func NewDirect(cfg Config) *Direct {
	if cfg.UserAgent == "" {
		cfg.UserAgent = "SEOAnalyzer/1.0"
	}
	return &Direct{client: newClient(cfg)}
}

// Fetch implements analyzer.Fetcher
func (d *Direct) Fetch(ctx context.Context, target string) ([]byte, error) {
	header := http.Header{}
	header.Set("Accept", "text/html,application/xhtml+xml,application/xml")

	d.client.logger.Debug("Fetching page", zap.String("target", target))
	return d.client.get(ctx, target, header)
}

package stats

import (
	"net/url"
	"sort"
	"strings"
	"sync"
	"time"
)

// Traffic collects request-level statistics served by the statistics
// endpoint. Popular URLs are only exposed in development mode.
type Traffic struct {
	mutex            sync.RWMutex
	uniqueVisitors   map[string]time.Time // IP -> last visit
	analysisRequests int
	errorCount       int
	popularURLs      map[string]int
	totalLoadTime    time.Duration
	devMode          bool
	now              func() time.Time
}

// NewTraffic creates an empty traffic tracker
func NewTraffic(devMode bool) *Traffic {
	return &Traffic{
		uniqueVisitors: make(map[string]time.Time),
		popularURLs:    make(map[string]int),
		devMode:        devMode,
		now:            time.Now,
	}
}

// TrackVisitor records a visitor by IP
func (t *Traffic) TrackVisitor(ip string) {
	t.mutex.Lock()
	defer t.mutex.Unlock()

	t.uniqueVisitors[ip] = t.now()
}

// TrackAnalysis records one analysis request for target
func (t *Traffic) TrackAnalysis(target string, loadTime time.Duration, hasError bool) {
	t.mutex.Lock()
	defer t.mutex.Unlock()

	t.analysisRequests++
	t.totalLoadTime += loadTime
	if hasError {
		t.errorCount++
	}
	if cleaned := cleanURL(target); cleaned != "" {
		t.popularURLs[cleaned]++
	}
}

// cleanURL reduces a URL to scheme, host and path. Local and API URLs are
// not tracked.
func cleanURL(raw string) string {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Host == "" {
		return ""
	}

	if strings.Contains(u.Host, "localhost") ||
		strings.Contains(u.Host, "127.0.0.1") ||
		strings.Contains(strings.ToLower(u.Path), "/api/") {
		return ""
	}

	cleaned := strings.ToLower(u.Scheme) + "://" + strings.ToLower(u.Host)
	if u.Path != "" && u.Path != "/" {
		cleaned += u.Path
	}
	return strings.TrimSuffix(cleaned, "/")
}

// uniqueVisitors24h must be called with the mutex held
func (t *Traffic) uniqueVisitors24h() int {
	count := 0
	cutoff := t.now().Add(-24 * time.Hour)
	for _, lastVisit := range t.uniqueVisitors {
		if lastVisit.After(cutoff) {
			count++
		}
	}
	return count
}

// PopularURL is a URL and how often it was analyzed
type PopularURL struct {
	URL   string `json:"url"`
	Count int    `json:"count"`
}

// popular must be called with the mutex held
func (t *Traffic) popular(n int) []PopularURL {
	out := make([]PopularURL, 0, len(t.popularURLs))
	for u, c := range t.popularURLs {
		out = append(out, PopularURL{URL: u, Count: c})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].URL < out[j].URL
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}

// Snapshot is the public view of the traffic statistics
type Snapshot struct {
	UniqueVisitors24h int          `json:"uniqueVisitors24h"`
	TotalRequests     int          `json:"totalRequests"`
	ErrorRate         float64      `json:"errorRate"`
	AverageLoadTimeMs float64      `json:"averageLoadTime"`
	PopularURLs       []PopularURL `json:"popularUrls,omitempty"`
}

// Snapshot returns the current statistics
func (t *Traffic) Snapshot() Snapshot {
	t.mutex.RLock()
	defer t.mutex.RUnlock()

	snap := Snapshot{
		UniqueVisitors24h: t.uniqueVisitors24h(),
		TotalRequests:     t.analysisRequests,
	}
	if t.analysisRequests > 0 {
		snap.ErrorRate = float64(t.errorCount) / float64(t.analysisRequests) * 100
		snap.AverageLoadTimeMs = float64(t.totalLoadTime.Milliseconds()) / float64(t.analysisRequests)
	}
	if t.devMode {
		snap.PopularURLs = t.popular(5)
	}
	return snap
}

// PruneVisitors drops visitors not seen for longer than maxAge
func (t *Traffic) PruneVisitors(maxAge time.Duration) int {
	t.mutex.Lock()
	defer t.mutex.Unlock()

	cutoff := t.now().Add(-maxAge)
	removed := 0
	for ip, last := range t.uniqueVisitors {
		if last.Before(cutoff) {
			delete(t.uniqueVisitors, ip)
			removed++
		}
	}
	return removed
}

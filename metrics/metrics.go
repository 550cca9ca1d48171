package metrics

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/seo-optimizer/pageaudit/analyzer"
)

const namespace = "seo"

var _ analyzer.Recorder = &Collector{}

// Collector owns the service's Prometheus registry and collectors
type Collector struct {
	registry        *prometheus.Registry
	httpRequests    *prometheus.CounterVec
	httpDuration    *prometheus.HistogramVec
	analyses        *prometheus.CounterVec
	scores          prometheus.Histogram
	cacheLookups    *prometheus.CounterVec
	persistFailures prometheus.Counter
	quotaExceeded   *prometheus.CounterVec
}

// New creates a collector with its own registry, including Go runtime and
// process collectors
func New() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route and status.",
		}, []string{"method", "path", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"method", "path"}),
		analyses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "analyses_total",
			Help:      "Finished analyses by outcome.",
		}, []string{"outcome"}),
		scores: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "analysis_score",
			Help:      "Distribution of SEO scores.",
			Buckets:   prometheus.LinearBuckets(10, 10, 10),
		}),
		cacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_lookups_total",
			Help:      "Analysis cache lookups by result.",
		}, []string{"result"}),
		persistFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "persistence_failures_total",
			Help:      "Analyses that could not be stored.",
		}),
		quotaExceeded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "upstream_quota_exceeded_total",
			Help:      "Rate limit or quota rejections by upstream service.",
		}, []string{"upstream"}),
	}

	c.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		c.httpRequests,
		c.httpDuration,
		c.analyses,
		c.scores,
		c.cacheLookups,
		c.persistFailures,
		c.quotaExceeded,
	)
	return c
}

// Registry exposes the registry, mainly for tests
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler serves the metrics in the Prometheus exposition format
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{Registry: c.registry})
}

// ObserveHTTP records one served request
func (c *Collector) ObserveHTTP(method, path string, status int, elapsed time.Duration) {
	c.httpRequests.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	c.httpDuration.WithLabelValues(method, path).Observe(elapsed.Seconds())
}

// RecordCacheLookup implements analyzer.Recorder
func (c *Collector) RecordCacheLookup(hit bool) {
	if hit {
		c.cacheLookups.WithLabelValues("hit").Inc()
		return
	}
	c.cacheLookups.WithLabelValues("miss").Inc()
}

// RecordAnalysis implements analyzer.Recorder
func (c *Collector) RecordAnalysis(score int) {
	c.analyses.WithLabelValues("success").Inc()
	c.scores.Observe(float64(score))
}

// RecordFailure implements analyzer.Recorder
func (c *Collector) RecordFailure(err error) {
	c.analyses.WithLabelValues(Outcome(err)).Inc()
	if errors.Is(err, analyzer.ErrQuotaExceeded) {
		upstream := "unknown"
		var ue *analyzer.UpstreamError
		if errors.As(err, &ue) {
			upstream = ue.Upstream
		}
		c.quotaExceeded.WithLabelValues(upstream).Inc()
	}
}

// RecordPersistenceFailure implements analyzer.Recorder
func (c *Collector) RecordPersistenceFailure() {
	c.persistFailures.Inc()
}

// Outcome maps an analysis error to a metric label
func Outcome(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, analyzer.ErrInvalidURL):
		return "invalid_url"
	case errors.Is(err, analyzer.ErrQuotaExceeded):
		return "quota_exceeded"
	case errors.Is(err, analyzer.ErrEmptyContent):
		return "empty_content"
	case errors.Is(err, analyzer.ErrParseFailure):
		return "parse_failure"
	case errors.Is(err, analyzer.ErrFetchFailure):
		return "fetch_failure"
	}
	return "error"
}

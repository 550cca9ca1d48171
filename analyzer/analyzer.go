package analyzer

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

// Fetcher retrieves the raw HTML of a page
type Fetcher interface {
	Fetch(ctx context.Context, target string) ([]byte, error)
}

// KeywordRequest is the page content handed to a keyword provider
type KeywordRequest struct {
	Title       string
	Description string
	Content     string
}

// ProviderKeywords is what a keyword provider returns
type ProviderKeywords struct {
	Niche    string
	Keywords []Keyword
}

// KeywordProvider delegates keyword extraction to an external service
type KeywordProvider interface {
	ExtractKeywords(ctx context.Context, req KeywordRequest) (*ProviderKeywords, error)
}

// ResultCache memoizes finished analyses for a limited time
type ResultCache interface {
	Get(ctx context.Context, key string) (*Result, bool, error)
	Set(ctx context.Context, key string, result *Result, ttl time.Duration) error
}

// Repository persists finished analyses
type Repository interface {
	Save(ctx context.Context, result *Result) error
}

// Recorder receives analysis outcomes for statistics and metrics
type Recorder interface {
	RecordCacheLookup(hit bool)
	RecordAnalysis(score int)
	RecordFailure(err error)
	RecordPersistenceFailure()
}

// Options configures an Analyzer. Only Fetcher is required.
type Options struct {
	Fetcher       Fetcher
	Keywords      KeywordProvider
	Cache         ResultCache
	CacheTTL      time.Duration
	Store         Repository
	Recorders     []Recorder
	Logger        *zap.Logger
	Rules         *ScoringRules
	KeywordConfig KeywordConfig
	// RelatedKeywordLimit is the number of keywords that get related ideas; 0 disables them
	RelatedKeywordLimit int
	Random              *rand.Rand
	Timeout             time.Duration
	Now                 func() time.Time
	NewID               func() string
}

// Analyzer performs SEO analysis on a given URL
type Analyzer struct {
	pipeline     *Pipeline
	fetcher      Fetcher
	keywords     KeywordProvider
	cache        ResultCache
	cacheTTL     time.Duration
	store        Repository
	recorders    []Recorder
	logger       *zap.Logger
	relatedLimit int
	timeout      time.Duration
	now          func() time.Time
	newID        func() string
	group        singleflight.Group

	rndMu sync.Mutex
	rnd   *rand.Rand
}

// New creates a new Analyzer instance
func New(opts Options) (*Analyzer, error) {
	if opts.Fetcher == nil {
		return nil, errors.New("analyzer: fetcher is required")
	}

	rules := DefaultScoringRules()
	if opts.Rules != nil {
		rules = *opts.Rules
	}

	a := &Analyzer{
		pipeline:     NewPipeline(rules, opts.KeywordConfig),
		fetcher:      opts.Fetcher,
		keywords:     opts.Keywords,
		cache:        opts.Cache,
		cacheTTL:     opts.CacheTTL,
		store:        opts.Store,
		recorders:    opts.Recorders,
		logger:       opts.Logger,
		relatedLimit: opts.RelatedKeywordLimit,
		timeout:      opts.Timeout,
		now:          opts.Now,
		newID:        opts.NewID,
		rnd:          opts.Random,
	}

	if a.logger == nil {
		a.logger = zap.NewNop()
	}
	if a.cacheTTL <= 0 {
		a.cacheTTL = time.Hour
	}
	if a.timeout <= 0 {
		a.timeout = 30 * time.Second
	}
	if a.now == nil {
		a.now = time.Now
	}
	if a.newID == nil {
		a.newID = func() string { return uuid.NewString() }
	}
	if a.rnd == nil {
		a.rnd = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	return a, nil
}

// Pipeline exposes the pure analysis steps used by the analyzer
func (a *Analyzer) Pipeline() *Pipeline {
	return a.pipeline
}

// CacheKey returns the key a normalized URL is cached under. The ranking
// strategy is part of the key because it changes the keyword list.
func (a *Analyzer) CacheKey(u *url.URL) string {
	return u.String() + "|" + string(a.pipeline.Extractor().Ranking())
}

// Analyze validates rawURL and returns its analysis, served from the cache
// when a fresh entry exists
func (a *Analyzer) Analyze(ctx context.Context, rawURL string) (*Result, error) {
	target, err := NormalizeURL(rawURL)
	if err != nil {
		a.recordFailure(err)
		return nil, err
	}

	key := a.CacheKey(target)
	if cached, ok := a.cached(ctx, key); ok {
		return cached, nil
	}

	// Identical URLs requested concurrently share one fetch. The shared
	// work must not die with whichever caller happened to start it.
	v, err, _ := a.group.Do(key, func() (interface{}, error) {
		workCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), a.timeout)
		defer cancel()
		return a.AnalyzeWithContext(workCtx, target)
	})
	if err != nil {
		a.recordFailure(err)
		return nil, err
	}
	return v.(*Result), nil
}

func (a *Analyzer) cached(ctx context.Context, key string) (*Result, bool) {
	if a.cache == nil {
		return nil, false
	}
	result, ok, err := a.cache.Get(ctx, key)
	if err != nil {
		a.logger.Warn("Analysis cache lookup failed", zap.String("key", key), zap.Error(err))
		ok = false
	}
	for _, r := range a.recorders {
		r.RecordCacheLookup(ok)
	}
	return result, ok
}

// AnalyzeWithContext runs the full uncached analysis of a normalized URL:
// fetch, parse, keyword extraction, scoring, persistence and cache fill
func (a *Analyzer) AnalyzeWithContext(ctx context.Context, target *url.URL) (*Result, error) {
	start := a.now()
	logger := a.logger.With(zap.String("url", target.String()))

	html, err := a.fetcher.Fetch(ctx, target.String())
	if err != nil {
		logger.Warn("Page fetch failed", zap.Error(err))
		return nil, &UpstreamError{Upstream: UpstreamFetcher, Err: err}
	}
	if strings.TrimSpace(string(html)) == "" {
		return nil, fmt.Errorf("%w: empty response from website", ErrEmptyContent)
	}

	page, err := ParseHTML(html)
	if err != nil {
		return nil, err
	}
	if page.BodyText == "" {
		return nil, fmt.Errorf("%w: no body text to analyze", ErrEmptyContent)
	}

	var result Result
	if a.keywords != nil {
		provided, err := a.keywords.ExtractKeywords(ctx, KeywordRequest{
			Title:       page.Title,
			Description: page.Description,
			Content:     page.BodyText,
		})
		if err != nil {
			logger.Warn("Keyword provider failed", zap.Error(err))
			return nil, &UpstreamError{Upstream: UpstreamKeywords, Err: err}
		}
		limit := a.pipeline.Extractor().cfg.Limit
		result = a.pipeline.RunWithKeywords(page, target, SanitizeKeywords(provided.Keywords, limit))
		result.KeywordSource = SourceProvider
		result.Niche = provided.Niche
	} else {
		result = a.pipeline.Run(page, target)
	}

	result.ID = a.newID()
	result.CreatedAt = a.now().UTC()
	result.RelatedKeywords = a.relatedKeywords(result.Keywords)

	if a.store != nil {
		if err := a.store.Save(ctx, &result); err != nil {
			// storage is best-effort; the caller still gets the analysis
			logger.Error("Failed to persist analysis",
				zap.String("id", result.ID),
				zap.Error(fmt.Errorf("%w: %v", ErrPersistenceFailure, err)))
			for _, r := range a.recorders {
				r.RecordPersistenceFailure()
			}
		}
	}

	if a.cache != nil {
		if err := a.cache.Set(ctx, a.CacheKey(target), &result, a.cacheTTL); err != nil {
			logger.Warn("Failed to cache analysis", zap.Error(err))
		}
	}

	for _, r := range a.recorders {
		r.RecordAnalysis(result.SeoScore.Score)
	}
	logger.Info("Analysis complete",
		zap.String("id", result.ID),
		zap.Int("score", result.SeoScore.Score),
		zap.Int("keywords", len(result.Keywords)),
		zap.Int("links", len(result.Links)),
		zap.Duration("duration", a.now().Sub(start)))

	return &result, nil
}

func (a *Analyzer) relatedKeywords(keywords []Keyword) []RelatedKeywords {
	if a.relatedLimit <= 0 {
		return nil
	}
	a.rndMu.Lock()
	defer a.rndMu.Unlock()
	return RelatedKeywordIdeas(keywords, a.relatedLimit, a.rnd)
}

func (a *Analyzer) recordFailure(err error) {
	for _, r := range a.recorders {
		r.RecordFailure(err)
	}
}

// Comparison holds two analyses side by side with the per-category winner
type Comparison struct {
	First   *Result           `json:"first"`
	Second  *Result           `json:"second"`
	Winners map[string]string `json:"winners"`
}

// Compare analyzes two URLs concurrently and reports, for the overall score
// and each sub-score, which URL did better ("tie" when equal)
func (a *Analyzer) Compare(ctx context.Context, first, second string) (*Comparison, error) {
	var cmp Comparison
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		r, err := a.Analyze(gctx, first)
		if err != nil {
			return fmt.Errorf("analyzing %s: %w", first, err)
		}
		cmp.First = r
		return nil
	})
	g.Go(func() error {
		r, err := a.Analyze(gctx, second)
		if err != nil {
			return fmt.Errorf("analyzing %s: %w", second, err)
		}
		cmp.Second = r
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	f, s := cmp.First.SeoScore, cmp.Second.SeoScore
	cmp.Winners = map[string]string{
		"score":         winner(float64(f.Score), float64(s.Score), cmp.First.URL, cmp.Second.URL),
		"title":         winner(f.Details.Title, s.Details.Title, cmp.First.URL, cmp.Second.URL),
		"description":   winner(f.Details.Description, s.Details.Description, cmp.First.URL, cmp.Second.URL),
		"keywords":      winner(f.Details.Keywords, s.Details.Keywords, cmp.First.URL, cmp.Second.URL),
		"internalLinks": winner(f.Details.InternalLinks, s.Details.InternalLinks, cmp.First.URL, cmp.Second.URL),
		"externalLinks": winner(f.Details.ExternalLinks, s.Details.ExternalLinks, cmp.First.URL, cmp.Second.URL),
	}
	return &cmp, nil
}

func winner(a, b float64, aURL, bURL string) string {
	switch {
	case a > b:
		return aURL
	case b > a:
		return bURL
	}
	return "tie"
}

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/seo-optimizer/pageaudit/analyzer"
	"github.com/seo-optimizer/pageaudit/api"
	"github.com/seo-optimizer/pageaudit/cache"
	"github.com/seo-optimizer/pageaudit/config"
	"github.com/seo-optimizer/pageaudit/keywordai"
	"github.com/seo-optimizer/pageaudit/logging"
	"github.com/seo-optimizer/pageaudit/metrics"
	"github.com/seo-optimizer/pageaudit/middleware"
	"github.com/seo-optimizer/pageaudit/scrape"
	"github.com/seo-optimizer/pageaudit/stats"
	"github.com/seo-optimizer/pageaudit/store"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	envFile := config.LoadEnvFiles()

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	gin.SetMode(cfg.GinMode)

	logger, err := logging.New(cfg.Log)
	if err != nil {
		return err
	}
	defer logger.Sync()

	if envFile == "" {
		logger.Info("No .env file found, using environment variables")
	} else {
		logger.Info("Loaded environment file", zap.String("file", envFile))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fetchCfg := scrape.Config{
		Timeout:       cfg.Fetch.Timeout,
		Retries:       cfg.Fetch.Retries,
		RatePerSecond: cfg.Fetch.RatePerSecond,
		Logger:        logger.Named("scrape"),
	}
	var fetcher analyzer.Fetcher
	if cfg.Fetch.ScrapingBeeAPIKey != "" {
		fetcher, err = scrape.NewScrapingBee(cfg.Fetch.ScrapingBeeAPIKey, cfg.Fetch.ScraperBaseURL, fetchCfg)
		if err != nil {
			return err
		}
		logger.Info("Fetching pages through the scraping proxy")
	} else {
		fetcher = scrape.NewDirect(fetchCfg)
		logger.Warn("SCRAPING_BEE_API_KEY not set, fetching pages directly")
	}

	var provider analyzer.KeywordProvider
	if cfg.OpenAI.APIKey != "" {
		opts := []keywordai.Option{
			keywordai.WithAPIKey(cfg.OpenAI.APIKey),
			keywordai.WithLogger(logger.Named("keywordai")),
		}
		if cfg.OpenAI.BaseURL != "" {
			opts = append(opts, keywordai.WithBaseURL(cfg.OpenAI.BaseURL))
		}
		if cfg.OpenAI.Model != "" {
			opts = append(opts, keywordai.WithModel(cfg.OpenAI.Model))
		}
		provider = keywordai.New(opts...)
		logger.Info("Keyword extraction delegated to provider")
	}

	var resultCache analyzer.ResultCache
	if cfg.Redis.Addr != "" {
		rc, err := cache.NewRedis(ctx, cache.RedisConfig{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		}, logger.Named("cache"))
		if err != nil {
			return err
		}
		defer rc.Close()
		resultCache = rc
	} else {
		mc := cache.NewMemory()
		defer mc.Close()
		resultCache = mc
	}

	var (
		repository analyzer.Repository
		history    api.History
	)
	if cfg.DatabaseURL != "" {
		pool, err := store.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return err
		}
		defer pool.Close()
		repo := store.NewRepository(pool)
		if err := repo.Migrate(ctx); err != nil {
			return err
		}
		repository, history = repo, repo
		logger.Info("Analysis history enabled")
	}

	storage, err := stats.NewStorage(filepath.Clean(cfg.DataDir), logger.Named("stats"))
	if err != nil {
		return err
	}
	defer func() {
		if err := storage.Shutdown(); err != nil {
			logger.Error("Failed to flush statistics", zap.Error(err))
		}
	}()
	collector := metrics.New()

	rules := cfg.Rules
	seoAnalyzer, err := analyzer.New(analyzer.Options{
		Fetcher:             fetcher,
		Keywords:            provider,
		Cache:               resultCache,
		CacheTTL:            cfg.CacheTTL,
		Store:               repository,
		Recorders:           []analyzer.Recorder{storage, collector},
		Logger:              logger.Named("analyzer"),
		Rules:               &rules.Scoring,
		KeywordConfig:       rules.Keywords,
		RelatedKeywordLimit: rules.RelatedKeywords,
		Timeout:             cfg.Fetch.Timeout + 15*time.Second,
	})
	if err != nil {
		return err
	}

	rateLimiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	defer rateLimiter.Close()

	traffic := stats.NewTraffic(cfg.DevMode)
	go maintain(ctx, storage, traffic)

	server := api.New(api.Deps{
		Analyzer:    seoAnalyzer,
		History:     history,
		Traffic:     traffic,
		Storage:     storage,
		Metrics:     collector,
		RateLimiter: rateLimiter,
		Logger:      logger.Named("http"),
	})

	httpServer := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           server.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Server starting", zap.String("addr", "http://localhost:"+cfg.Port))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
	case <-ctx.Done():
	}

	logger.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}

// maintain prunes old visitors and statistics once an hour
func maintain(ctx context.Context, storage *stats.Storage, traffic *stats.Traffic) {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			traffic.PruneVisitors(24 * time.Hour)
			storage.Cleanup(12)
		case <-ctx.Done():
			return
		}
	}
}

package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/seo-optimizer/pageaudit/analyzer"
	"github.com/seo-optimizer/pageaudit/logging"
)

// Config is the resolved service configuration
type Config struct {
	Port    string
	GinMode string
	// DevMode exposes analyzed URLs in the statistics endpoint
	DevMode bool
	DataDir string
	Log     logging.Config

	Fetch  FetchConfig
	OpenAI OpenAIConfig

	DatabaseURL string
	Redis       RedisConfig
	CacheTTL    time.Duration

	RateLimitRPS   float64
	RateLimitBurst int

	Rules Rules
}

// FetchConfig selects and tunes the page fetcher
type FetchConfig struct {
	ScrapingBeeAPIKey string
	ScraperBaseURL    string
	Timeout           time.Duration
	Retries           int
	RatePerSecond     float64
}

// OpenAIConfig enables provider keyword extraction when APIKey is set
type OpenAIConfig struct {
	APIKey  string
	BaseURL string
	Model   string
}

// RedisConfig enables the shared cache when Addr is set
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// LoadEnvFiles loads .env.development, falling back to .env. It returns the
// file that was loaded, or "" when neither exists.
func LoadEnvFiles() string {
	if err := godotenv.Load(".env.development"); err == nil {
		return ".env.development"
	}
	if err := godotenv.Load(); err == nil {
		return ".env"
	}
	return ""
}

// Load reads the configuration from the environment, then applies the rules
// file named by RULES_FILE, if any
func Load() (*Config, error) {
	var errs []error
	cfg := &Config{
		Port:    getEnv("PORT", "8082"),
		GinMode: getEnv("GIN_MODE", "release"),
		DevMode: getEnvBool("DEV_MODE", false, &errs),
		DataDir: getEnv("DATA_DIR", "data"),
		Log: logging.Config{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", logging.FormatConsole),
			File:   getEnv("LOG_FILE", ""),
		},
		Fetch: FetchConfig{
			ScrapingBeeAPIKey: getEnv("SCRAPING_BEE_API_KEY", ""),
			ScraperBaseURL:    getEnv("SCRAPER_BASE_URL", ""),
			Timeout:           getEnvDuration("FETCH_TIMEOUT", 30*time.Second, &errs),
			Retries:           getEnvInt("FETCH_RETRIES", 2, &errs),
			RatePerSecond:     getEnvFloat("FETCH_RATE", 5, &errs),
		},
		OpenAI: OpenAIConfig{
			APIKey:  getEnv("OPENAI_API_KEY", ""),
			BaseURL: getEnv("OPENAI_BASE_URL", ""),
			Model:   getEnv("OPENAI_MODEL", ""),
		},
		DatabaseURL: getEnv("DATABASE_URL", ""),
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0, &errs),
		},
		CacheTTL:       getEnvDuration("CACHE_TTL", time.Hour, &errs),
		RateLimitRPS:   getEnvFloat("RATE_LIMIT_RPS", 2, &errs),
		RateLimitBurst: getEnvInt("RATE_LIMIT_BURST", 5, &errs),
		Rules:          DefaultRules(),
	}

	if _, err := logging.ParseLevel(cfg.Log.Level); err != nil {
		errs = append(errs, err)
	}

	if path := getEnv("RULES_FILE", ""); path != "" {
		rules, err := LoadRules(path)
		if err != nil {
			errs = append(errs, err)
		} else {
			cfg.Rules = rules
		}
	}

	// the environment wins over the rules file
	if raw := getEnv("KEYWORD_RANKING", ""); raw != "" {
		ranking, err := analyzer.ParseRanking(raw)
		if err != nil {
			errs = append(errs, fmt.Errorf("KEYWORD_RANKING: %w", err))
		} else {
			cfg.Rules.Keywords.Ranking = ranking
		}
	}

	if err := errors.Join(errs...); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return strings.TrimSpace(value)
	}
	return fallback
}

func getEnvInt(key string, fallback int, errs *[]error) int {
	value, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(value) == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s: %w", key, err))
		return fallback
	}
	return parsed
}

func getEnvFloat(key string, fallback float64, errs *[]error) float64 {
	value, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(value) == "" {
		return fallback
	}
	parsed, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s: %w", key, err))
		return fallback
	}
	return parsed
}

func getEnvBool(key string, fallback bool, errs *[]error) bool {
	value, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(value) == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(strings.TrimSpace(value))
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s: %w", key, err))
		return fallback
	}
	return parsed
}

// getEnvDuration accepts Go durations ("45s") or a plain number of seconds
func getEnvDuration(key string, fallback time.Duration, errs *[]error) time.Duration {
	value, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(value) == "" {
		return fallback
	}
	value = strings.TrimSpace(value)
	if secs, err := strconv.Atoi(value); err == nil {
		return time.Duration(secs) * time.Second
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s: %w", key, err))
		return fallback
	}
	return parsed
}

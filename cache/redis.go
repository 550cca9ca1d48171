package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/seo-optimizer/pageaudit/analyzer"
)

// KeyPrefix namespaces analysis entries in Redis
const KeyPrefix = "seo:analysis:"

var _ analyzer.ResultCache = &Redis{}

// RedisConfig holds connection settings
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// Redis stores analyses as JSON with a Redis-side TTL, so entries can be
// shared across instances and expire without cleanup
type Redis struct {
	rdb    *redis.Client
	logger *zap.Logger
}

// NewRedis connects to Redis and verifies the connection
func NewRedis(ctx context.Context, cfg RedisConfig, logger *zap.Logger) (*Redis, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	logger.Debug("Redis cache connected", zap.String("addr", cfg.Addr), zap.Int("db", cfg.DB))
	return &Redis{rdb: rdb, logger: logger}, nil
}

// NewRedisFromClient wraps an existing client
func NewRedisFromClient(rdb *redis.Client, logger *zap.Logger) *Redis {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Redis{rdb: rdb, logger: logger}
}

// Get implements analyzer.ResultCache
func (r *Redis) Get(ctx context.Context, key string) (*analyzer.Result, bool, error) {
	data, err := r.rdb.Get(ctx, KeyPrefix+Key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get failed: %w", err)
	}

	var result analyzer.Result
	if err := json.Unmarshal(data, &result); err != nil {
		r.logger.Warn("Dropping undecodable cache entry", zap.String("key", key), zap.Error(err))
		r.rdb.Del(ctx, KeyPrefix+Key(key))
		return nil, false, nil
	}
	return &result, true, nil
}

// Set implements analyzer.ResultCache
func (r *Redis) Set(ctx context.Context, key string, result *analyzer.Result, ttl time.Duration) error {
	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to marshal analysis: %w", err)
	}
	if err := r.rdb.Set(ctx, KeyPrefix+Key(key), data, ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

// Ping checks the connection
func (r *Redis) Ping(ctx context.Context) error {
	return r.rdb.Ping(ctx).Err()
}

// Close closes the underlying client
func (r *Redis) Close() error {
	return r.rdb.Close()
}

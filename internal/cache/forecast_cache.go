package cache

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/andresuchdata/stockcast/backend-go/internal/config"
	"github.com/andresuchdata/stockcast/backend-go/internal/domain"
	"github.com/redis/go-redis/v9"
)

const (
	forecastKeyPrefix     = "forecast:demand"
	forecastScanBatchSize = 100
)

// ForecastCache memoizes per-product forecast results. Forecasts are a
// pure function of the sales snapshot, so a short TTL is the only
// invalidation needed besides explicit flushes after data loads.
type ForecastCache interface {
	Get(ctx context.Context, productID string, horizonDays int) (*domain.ForecastResult, bool, error)
	Set(ctx context.Context, productID string, horizonDays int, result *domain.ForecastResult) error
	InvalidateAll(ctx context.Context) error
}

type redisForecastCache struct {
	client *redis.Client
	ttl    time.Duration
}

type noopForecastCache struct{}

func NewForecastCache(cfg config.CacheConfig) (ForecastCache, error) {
	if !cfg.Enabled {
		return &noopForecastCache{}, nil
	}

	client, ttl, err := newRedisClient(cfg)
	if err != nil {
		return nil, err
	}

	return &redisForecastCache{
		client: client,
		ttl:    ttl,
	}, nil
}

func NewNoopForecastCache() ForecastCache {
	return &noopForecastCache{}
}

func (c *redisForecastCache) Get(ctx context.Context, productID string, horizonDays int) (*domain.ForecastResult, bool, error) {
	key := buildForecastKey(productID, horizonDays)

	payload, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get failed: %w", err)
	}

	var result domain.ForecastResult
	if err := json.Unmarshal(payload, &result); err != nil {
		return nil, false, fmt.Errorf("decode forecast cache: %w", err)
	}

	return &result, true, nil
}

func (c *redisForecastCache) Set(ctx context.Context, productID string, horizonDays int, result *domain.ForecastResult) error {
	key := buildForecastKey(productID, horizonDays)
	payload, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("encode forecast cache: %w", err)
	}

	if err := c.client.Set(ctx, key, payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}

	return nil
}

func (c *redisForecastCache) InvalidateAll(ctx context.Context) error {
	return deleteKeysWithPrefix(ctx, c.client, forecastKeyPrefix, forecastScanBatchSize)
}

func (c *noopForecastCache) Get(ctx context.Context, productID string, horizonDays int) (*domain.ForecastResult, bool, error) {
	return nil, false, nil
}

func (c *noopForecastCache) Set(ctx context.Context, productID string, horizonDays int, result *domain.ForecastResult) error {
	return nil
}

func (c *noopForecastCache) InvalidateAll(ctx context.Context) error {
	return nil
}

func buildForecastKey(productID string, horizonDays int) string {
	sum := sha1.Sum([]byte(fmt.Sprintf("%s|%d", productID, horizonDays)))
	return fmt.Sprintf("%s:%s", forecastKeyPrefix, hex.EncodeToString(sum[:]))
}

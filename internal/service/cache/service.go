package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/kapu/destiny-clan-bot-go/internal/constants"
	"github.com/kapu/destiny-clan-bot-go/internal/domain"
	"github.com/kapu/destiny-clan-bot-go/pkg/errors"
)

const activityKeyPrefix = "clanbot:activity:"

// Store is the JSON key/value cache used by the query services.
type Store interface {
	Get(ctx context.Context, key string, dest any) (bool, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Del(ctx context.Context, key string) error
	Close() error
}

type CacheService struct {
	client *redis.Client
	logger *zap.Logger
}

type CacheConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

func NewCacheService(cfg CacheConfig, logger *zap.Logger) (*CacheService, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password:     cfg.Password,
		DB:           cfg.DB,
		MaxRetries:   3,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
	})

	ctx, cancel := context.WithTimeout(context.Background(), constants.RedisConfig.ReadyTimeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, errors.NewCacheError("failed to connect to Redis", "ping", "", err)
	}

	logger.Info("Redis connected",
		zap.String("addr", fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)),
		zap.Int("db", cfg.DB),
	)

	return NewCacheServiceFromClient(client, logger), nil
}

// NewCacheServiceFromClient wraps an existing client.
func NewCacheServiceFromClient(client *redis.Client, logger *zap.Logger) *CacheService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CacheService{client: client, logger: logger}
}

// Get decodes the value at key into dest. A missing key reports false
// without an error.
func (c *CacheService) Get(ctx context.Context, key string, dest any) (bool, error) {
	value, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		c.logger.Error("Cache get failed", zap.String("key", key), zap.Error(err))
		return false, errors.NewCacheError("get failed", "get", key, err)
	}

	if dest != nil {
		if err := json.Unmarshal(value, dest); err != nil {
			c.logger.Error("Cache unmarshal failed", zap.String("key", key), zap.Error(err))
			return false, errors.NewCacheError("unmarshal failed", "get", key, err)
		}
	}
	return true, nil
}

func (c *CacheService) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	jsonData, err := json.Marshal(value)
	if err != nil {
		return errors.NewCacheError("marshal failed", "set", key, err)
	}

	if err := c.client.Set(ctx, key, jsonData, ttl).Err(); err != nil {
		c.logger.Error("Cache set failed", zap.String("key", key), zap.Error(err))
		return errors.NewCacheError("set failed", "set", key, err)
	}
	return nil
}

func (c *CacheService) Del(ctx context.Context, key string) error {
	if err := c.client.Del(ctx, key).Err(); err != nil {
		c.logger.Error("Cache delete failed", zap.String("key", key), zap.Error(err))
		return errors.NewCacheError("delete failed", "del", key, err)
	}
	return nil
}

func (c *CacheService) Close() error {
	return c.client.Close()
}

// NoopCache is used when Redis is disabled. Every lookup misses.
type NoopCache struct{}

func (NoopCache) Get(context.Context, string, any) (bool, error) { return false, nil }
func (NoopCache) Set(context.Context, string, any, time.Duration) error { return nil }
func (NoopCache) Del(context.Context, string) error { return nil }
func (NoopCache) Close() error { return nil }

// ActivityCache stores per-member activity summaries for a short time so
// repeated online queries do not refetch every profile.
type ActivityCache struct {
	store  Store
	ttl    time.Duration
	logger *zap.Logger
}

func NewActivityCache(store Store, ttl time.Duration, logger *zap.Logger) *ActivityCache {
	if store == nil {
		store = NoopCache{}
	}
	if ttl <= 0 {
		ttl = constants.CacheTTL.ActivitySummary
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ActivityCache{store: store, ttl: ttl, logger: logger}
}

func (a *ActivityCache) Get(ctx context.Context, membershipID string) (domain.ActivitySummary, bool) {
	var summary domain.ActivitySummary
	found, err := a.store.Get(ctx, activityKeyPrefix+membershipID, &summary)
	if err != nil {
		a.logger.Debug("Activity cache read failed",
			zap.String("membership_id", membershipID),
			zap.Error(err),
		)
		return domain.ActivitySummary{}, false
	}
	if !found {
		return domain.ActivitySummary{}, false
	}
	return summary, true
}

func (a *ActivityCache) Put(ctx context.Context, summary domain.ActivitySummary) {
	if summary.Unknown || summary.MembershipID == "" {
		return
	}
	if err := a.store.Set(ctx, activityKeyPrefix+summary.MembershipID, summary, a.ttl); err != nil {
		a.logger.Warn("Activity cache write failed",
			zap.String("membership_id", summary.MembershipID),
			zap.Error(err),
		)
	}
}

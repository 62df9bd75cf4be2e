package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/tmash55/oddsmash-sub001/internal/models"
)

// EventSource lists sporting events for a sport within a window.
type EventSource interface {
	ListEvents(ctx context.Context, sportKey string, from, to time.Time) ([]models.GameData, error)
}

// EventCache caches feed event listings in Redis, keyed by sport and date.
// Cache failures degrade to direct feed calls.
type EventCache struct {
	client *redis.Client
	source EventSource
	ttl    time.Duration
	logger zerolog.Logger
}

// RedisCacheConfig holds Redis cache configuration.
type RedisCacheConfig struct {
	Addr     string // e.g., "localhost:6379"
	Password string
	DB       int
	TTL      time.Duration
}

// NewEventCache creates a Redis-backed cache over the given event source.
func NewEventCache(config RedisCacheConfig, source EventSource, logger zerolog.Logger) *EventCache {
	client := redis.NewClient(&redis.Options{
		Addr:     config.Addr,
		Password: config.Password,
		DB:       config.DB,
	})

	return &EventCache{
		client: client,
		source: source,
		ttl:    config.TTL,
		logger: logger.With().Str("component", "event_cache").Logger(),
	}
}

// ListEvents returns the cached listing for (sportKey, from-date) or falls
// through to the feed and caches the result.
func (c *EventCache) ListEvents(ctx context.Context, sportKey string, from, to time.Time) ([]models.GameData, error) {
	key := fmt.Sprintf("events:%s:%s", sportKey, from.UTC().Format("2006-01-02"))

	data, err := c.client.Get(ctx, key).Bytes()
	if err == nil {
		var games []models.GameData
		if err := json.Unmarshal(data, &games); err == nil {
			c.logger.Debug().Str("key", key).Int("count", len(games)).Msg("event cache hit")
			return games, nil
		}
		c.logger.Warn().Str("key", key).Msg("failed to decode cached events, refetching")
	} else if err != redis.Nil {
		c.logger.Warn().Err(err).Str("key", key).Msg("event cache read failed")
	}

	games, err := c.source.ListEvents(ctx, sportKey, from, to)
	if err != nil {
		return nil, err
	}

	payload, err := json.Marshal(games)
	if err != nil {
		return games, nil
	}
	if err := c.client.Set(ctx, key, payload, c.ttl).Err(); err != nil {
		// Don't fail the request on cache errors.
		c.logger.Warn().Err(err).Str("key", key).Msg("event cache write failed")
	}

	return games, nil
}

// Ping checks the Redis connection.
func (c *EventCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close closes the Redis client.
func (c *EventCache) Close() error {
	return c.client.Close()
}

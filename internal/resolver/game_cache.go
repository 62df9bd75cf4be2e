package resolver

import (
	"context"
	"sync"
	"time"

	"github.com/tmash55/oddsmash-sub001/internal/models"
)

// EventSource lists sporting events for a sport within a window.
type EventSource interface {
	ListEvents(ctx context.Context, sportKey string, from, to time.Time) ([]models.GameData, error)
}

// GameCache memoizes event listings per (sportKey, date) for the lifetime
// of one scan. The first accessor for a key performs the fetch; concurrent
// accessors for the same key await that result instead of issuing their own.
type GameCache struct {
	source  EventSource
	mu      sync.Mutex
	entries map[string]*gameCacheEntry
}

type gameCacheEntry struct {
	ready chan struct{}
	games []models.GameData
	err   error
}

// NewGameCache creates a request-scoped game cache over the event source.
func NewGameCache(source EventSource) *GameCache {
	return &GameCache{
		source:  source,
		entries: make(map[string]*gameCacheEntry),
	}
}

// GamesFor returns the day's events for a sport, fetching at most once per
// (sportKey, date) across all concurrent callers.
func (c *GameCache) GamesFor(ctx context.Context, sportKey string, date time.Time) ([]models.GameData, error) {
	day := date.UTC().Truncate(24 * time.Hour)
	key := sportKey + ":" + day.Format("2006-01-02")

	c.mu.Lock()
	entry, ok := c.entries[key]
	if ok {
		c.mu.Unlock()
		select {
		case <-entry.ready:
			return entry.games, entry.err
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	entry = &gameCacheEntry{ready: make(chan struct{})}
	c.entries[key] = entry
	c.mu.Unlock()

	entry.games, entry.err = c.source.ListEvents(ctx, sportKey, day, day.Add(24*time.Hour))
	close(entry.ready)
	return entry.games, entry.err
}

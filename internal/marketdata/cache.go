package marketdata

import (
	"context"
	"strconv"
	"strings"
	"sync"
	"time"
)

// CachedSource wraps a BarSource with a short TTL cache so the evaluator and
// scanner do not re-fetch the same window when they tick close together.
// The network call for bars is assumed cheap once cached here.
type CachedSource struct {
	src BarSource
	ttl time.Duration

	mu      sync.Mutex
	entries map[string]cacheEntry
}

type cacheEntry struct {
	bars      []Bar
	fetchedAt time.Time
}

func NewCachedSource(src BarSource, ttl time.Duration) *CachedSource {
	if ttl <= 0 {
		ttl = 45 * time.Second
	}
	return &CachedSource{
		src:     src,
		ttl:     ttl,
		entries: map[string]cacheEntry{},
	}
}

func (c *CachedSource) Bars(ctx context.Context, symbol string, interval string, limit int) ([]Bar, error) {
	if c == nil || c.src == nil {
		return nil, nil
	}
	key := cacheKey(symbol, interval, limit)

	c.mu.Lock()
	entry, ok := c.entries[key]
	c.mu.Unlock()
	if ok && time.Since(entry.fetchedAt) < c.ttl {
		return entry.bars, nil
	}

	bars, err := c.src.Bars(ctx, symbol, interval, limit)
	if err != nil {
		// Serve the stale entry if we have one; a failed refresh should not
		// look worse than never having fetched.
		if ok {
			return entry.bars, nil
		}
		return nil, err
	}

	c.mu.Lock()
	c.entries[key] = cacheEntry{bars: bars, fetchedAt: time.Now()}
	c.mu.Unlock()
	return bars, nil
}

// Invalidate drops every cached window for a symbol. The websocket stream
// calls this when a candle closes so the next read refetches.
func (c *CachedSource) Invalidate(symbol string) {
	if c == nil {
		return
	}
	prefix := strings.ToUpper(strings.TrimSpace(symbol)) + "|"
	c.mu.Lock()
	for key := range c.entries {
		if strings.HasPrefix(key, prefix) {
			delete(c.entries, key)
		}
	}
	c.mu.Unlock()
}

func cacheKey(symbol string, interval string, limit int) string {
	return strings.ToUpper(strings.TrimSpace(symbol)) + "|" + interval + "|" + strconv.Itoa(limit)
}

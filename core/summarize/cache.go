package summarize

import (
	"context"
	"fmt"

	"github.com/gaurav-prasanna/pagemark/core"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/rs/zerolog"
)

// DefaultCacheSize is the number of snapshots kept in memory.
const DefaultCacheSize = 128

// CachingSummarizer remembers successful snapshots per page and mode.
type CachingSummarizer struct {
	next  core.Summarizer
	cache *lru.Cache[string, *core.Snapshot]
	log   zerolog.Logger
}

// NewCaching wraps next with an LRU cache of the given size.
func NewCaching(next core.Summarizer, size int, log zerolog.Logger) (*CachingSummarizer, error) {
	if size <= 0 {
		size = DefaultCacheSize
	}
	c, err := lru.New[string, *core.Snapshot](size)
	if err != nil {
		return nil, fmt.Errorf("creating snapshot cache: %w", err)
	}
	return &CachingSummarizer{next: next, cache: c, log: log}, nil
}

func cacheKey(req core.SummaryRequest) string {
	return req.URL + "|" + string(req.Mode)
}

// Summarize returns a cached snapshot or asks the wrapped summarizer.
func (c *CachingSummarizer) Summarize(ctx context.Context, req core.SummaryRequest) (*core.Snapshot, error) {
	key := cacheKey(req)
	if req.URL != "" {
		if snap, ok := c.cache.Get(key); ok {
			c.log.Debug().Str("key", key).Msg("snapshot cache hit")
			return snap, nil
		}
	}
	snap, err := c.next.Summarize(ctx, req)
	if err != nil {
		return nil, err
	}
	if req.URL != "" && snap != nil {
		c.cache.Add(key, snap)
	}
	return snap, nil
}

// Forget drops the cached snapshot for url and mode.
func (c *CachingSummarizer) Forget(url string, mode core.Mode) bool {
	return c.cache.Remove(url + "|" + string(mode))
}

// Len reports the number of cached snapshots.
func (c *CachingSummarizer) Len() int {
	return c.cache.Len()
}

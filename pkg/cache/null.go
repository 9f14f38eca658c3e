package cache

import (
	"context"
	"time"
)

// NullCache stores nothing, so every lookup misses and each run tiles and
// renders from scratch. The CLI uses it for --no-cache and cache.disabled,
// serve for --cache none, and a pipeline Runner built without a cache
// falls back to it.
type NullCache struct{}

// NewNullCache returns the cache used when caching is off.
func NewNullCache() Cache { return NullCache{} }

func (NullCache) Get(context.Context, string) ([]byte, bool, error) { return nil, false, nil }

func (NullCache) Set(context.Context, string, []byte, time.Duration) error { return nil }

func (NullCache) Delete(context.Context, string) error { return nil }

func (NullCache) Close() error { return nil }

var _ Cache = NullCache{}

// Package cache provides content-addressed caching for tiled layouts and
// rendered artifacts.
//
// # Backends
//
//   - [NullCache]: never stores anything (caching disabled)
//   - [MemoryCache]: in-process map with expiry, used by the HTTP server
//   - [FileCache]: one JSON file per entry, used by the CLI
//   - [RedisCache]: shared cache for multiple server instances
//
// # Keys
//
// Keys are derived by a [Keyer] from a content hash plus the options that
// influence the cached value, so a changed container width or palette
// never returns a stale entry:
//
//	keyer := cache.NewDefaultKeyer()
//	key := keyer.LayoutKey(cache.Hash(itemsJSON), cache.LayoutKeyOpts{ContainerWidth: 800})
//
// [ScopedKeyer] prefixes every key so several tenants can share a backend.
package cache

import (
	"context"
	"time"
)

// Cache TTLs. Layouts are deterministic for a given key, so the TTLs only
// bound storage growth.
const (
	TTLLayout   = 7 * 24 * time.Hour
	TTLArtifact = 7 * 24 * time.Hour
)

// Cache stores opaque byte values under string keys.
// Implementations must be safe for concurrent use.
type Cache interface {
	// Get returns the value for key and whether it was found.
	// A miss is not an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A non-positive ttl means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases resources held by the cache.
	Close() error
}

// Keyer derives cache keys.
type Keyer interface {
	// LayoutKey returns the key for a layout computed from the items with
	// the given content hash.
	LayoutKey(itemsHash string, opts LayoutKeyOpts) string

	// ArtifactKey returns the key for a rendered artifact of a layout.
	ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string

	// SessionKey returns the key a session is stored under.
	SessionKey(id string) string
}

// LayoutKeyOpts are the tiling options that change a layout.
type LayoutKeyOpts struct {
	ContainerWidth float64 `json:"container_width"`
	BaseWidth      float64 `json:"base_width"`
	BaseHeight     float64 `json:"base_height"`
	Spacing        float64 `json:"spacing"`
	MaxFailedTimes int     `json:"max_failed_times"`
	CenterSpacing  bool    `json:"center_spacing"`
}

// ArtifactKeyOpts are the render options that change an artifact.
type ArtifactKeyOpts struct {
	Format     string   `json:"format"`
	Labels     bool     `json:"labels"`
	Links      bool     `json:"links"`
	Palette    []string `json:"palette,omitempty"`
	Background string   `json:"background,omitempty"`
}

// DefaultKeyer is the standard Keyer.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the standard Keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// LayoutKey hashes the items hash together with the tiling options.
func (DefaultKeyer) LayoutKey(itemsHash string, opts LayoutKeyOpts) string {
	return hashKey("layout", itemsHash, opts)
}

// ArtifactKey hashes the layout hash together with the render options.
func (DefaultKeyer) ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", layoutHash, opts)
}

// SessionKey returns "session:<id>".
func (DefaultKeyer) SessionKey(id string) string {
	return "session:" + id
}

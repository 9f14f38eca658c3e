package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/tileme/pkg/cache"
	"github.com/matzehuels/tileme/pkg/layout"
	"github.com/matzehuels/tileme/pkg/observability"
	"github.com/matzehuels/tileme/pkg/render"
	"github.com/matzehuels/tileme/pkg/tiler"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and API use this to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger - it doesn't
// store pipeline results. Multiple goroutines can safely use the same
// Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute runs the complete tile → render pipeline with caching.
func (r *Runner) Execute(ctx context.Context, items []layout.ItemSpec, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	result := &Result{}

	// Stage 1: Tile
	tileStart := time.Now()
	l, hash, layoutHit, err := r.tile(ctx, items, opts)
	if err != nil {
		return nil, fmt.Errorf("tile: %w", err)
	}
	result.Layout = l
	result.ItemsHash = hash
	result.Stats.TileTime = time.Since(tileStart)
	result.Stats.Items = len(l.Tiles)
	result.Stats.Degraded = l.Degraded
	result.Stats.Columns = l.TotalCols
	result.Stats.Height = l.Height
	result.CacheInfo.LayoutHit = layoutHit

	r.Logger.Info("tiled items",
		"tiles", len(l.Tiles),
		"columns", l.TotalCols,
		"height", l.Height,
		"degraded", l.Degraded,
		"cached", layoutHit,
		"duration", result.Stats.TileTime)

	// Stage 2: Render
	renderStart := time.Now()
	artifacts, renderHit, err := r.RenderWithCacheInfo(ctx, l, opts)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.RenderHit = renderHit

	r.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"cached", renderHit,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// TileWithCacheInfo tiles items with caching and returns cache hit info.
// Items are normalized first (IDs assigned, spans validated).
func (r *Runner) TileWithCacheInfo(ctx context.Context, items []layout.ItemSpec, opts Options) (layout.Layout, bool, error) {
	l, _, hit, err := r.tile(ctx, items, opts)
	return l, hit, err
}

// Tile is a convenience wrapper that calls TileWithCacheInfo and discards the cache hit info.
func (r *Runner) Tile(ctx context.Context, items []layout.ItemSpec, opts Options) (layout.Layout, error) {
	l, _, err := r.TileWithCacheInfo(ctx, items, opts)
	return l, err
}

func (r *Runner) tile(ctx context.Context, items []layout.ItemSpec, opts Options) (layout.Layout, string, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForTile(); err != nil {
		return layout.Layout{}, "", false, err
	}
	if err := ctx.Err(); err != nil {
		return layout.Layout{}, "", false, err
	}

	items, err := layout.NormalizeItems(items)
	if err != nil {
		return layout.Layout{}, "", false, err
	}
	itemsHash, err := cache.HashJSON(items)
	if err != nil {
		return layout.Layout{}, "", false, err
	}
	cacheKey := r.Keyer.LayoutKey(itemsHash, opts.LayoutKeyOpts())

	// Try cache first (unless refresh requested)
	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			if cached, err := layout.Unmarshal(data); err == nil {
				observability.Cache().OnCacheHit(ctx, "layout")
				return cached, itemsHash, true, nil
			}
			// If deserialization fails, fall through to recompute
		}
	}
	observability.Cache().OnCacheMiss(ctx, "layout")

	l, err := TileItems(ctx, items, opts)
	if err != nil {
		return layout.Layout{}, "", false, err
	}

	if data, err := layout.Marshal(l); err == nil {
		if err := r.Cache.Set(ctx, cacheKey, data, cache.TTLLayout); err != nil {
			r.Logger.Warn("cache layout", "error", err)
		} else {
			observability.Cache().OnCacheSet(ctx, "layout", len(data))
		}
	}
	return l, itemsHash, false, nil
}

// TileItems runs one fresh tiling pass over items without caching.
// Extra observers are notified alongside the pipeline hooks.
func TileItems(ctx context.Context, items []layout.ItemSpec, opts Options, observers ...tiler.Observer) (layout.Layout, error) {
	if err := opts.ValidateForTile(); err != nil {
		return layout.Layout{}, err
	}

	start := time.Now()
	observability.Pipeline().OnTileStart(ctx, len(items), opts.Width)

	obs := tiler.Observers(append([]tiler.Observer{NewObserver(ctx, opts.Logger)}, observers...)...)
	t, err := tiler.New(opts.Width, opts.Config, tiler.WithObserver(obs))
	if err != nil {
		observability.Pipeline().OnTileComplete(ctx, 0, 0, time.Since(start), err)
		return layout.Layout{}, err
	}
	res := t.Tile(layout.Requests(items))
	observability.Pipeline().OnTileComplete(ctx, len(res.Placements), res.Degraded, time.Since(start), nil)

	return layout.FromResult(res, items, opts.Width, opts.Config.Spacing), nil
}

// RenderWithCacheInfo generates artifacts with caching and returns cache hit info.
// Formats missing from the cache are rendered concurrently.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, l layout.Layout, opts Options) (map[string][]byte, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForRender(); err != nil {
		return nil, false, err
	}

	layoutData, err := layout.Marshal(l)
	if err != nil {
		return nil, false, fmt.Errorf("serialize layout for cache key: %w", err)
	}
	layoutHash := cache.Hash(layoutData)

	artifacts := make(map[string][]byte, len(opts.Formats))
	var missing []string
	for _, format := range opts.Formats {
		key := r.Keyer.ArtifactKey(layoutHash, opts.ArtifactKeyOpts(format))
		if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
			observability.Cache().OnCacheHit(ctx, "artifact")
			artifacts[format] = data
			continue
		}
		observability.Cache().OnCacheMiss(ctx, "artifact")
		missing = append(missing, format)
	}
	if len(missing) == 0 {
		return artifacts, true, nil
	}

	start := time.Now()
	observability.Pipeline().OnRenderStart(ctx, missing)

	rendered := make([][]byte, len(missing))
	g, gctx := errgroup.WithContext(ctx)
	for i, format := range missing {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			data, err := render.Render(l, format, opts.Render)
			if err != nil {
				return fmt.Errorf("render %s: %w", format, err)
			}
			rendered[i] = data
			return nil
		})
	}
	err = g.Wait()
	observability.Pipeline().OnRenderComplete(ctx, missing, time.Since(start), err)
	if err != nil {
		return nil, false, err
	}

	for i, format := range missing {
		artifacts[format] = rendered[i]
		key := r.Keyer.ArtifactKey(layoutHash, opts.ArtifactKeyOpts(format))
		if err := r.Cache.Set(ctx, key, rendered[i], cache.TTLArtifact); err != nil {
			r.Logger.Warn("cache artifact", "format", format, "error", err)
			continue
		}
		observability.Cache().OnCacheSet(ctx, "artifact", len(rendered[i]))
	}
	return artifacts, false, nil
}

// Render is a convenience wrapper that calls RenderWithCacheInfo and discards the cache hit info.
func (r *Runner) Render(ctx context.Context, l layout.Layout, opts Options) (map[string][]byte, error) {
	artifacts, _, err := r.RenderWithCacheInfo(ctx, l, opts)
	return artifacts, err
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}

// Package pipeline provides the tile → render pipeline for tileme.
//
// The CLI and the HTTP API both run items through this package so they share
// defaults, validation and caching.
//
// # Architecture
//
// The pipeline consists of two stages:
//
//  1. Tile: pack the items into the container with the skyline tiler
//  2. Render: produce artifacts (SVG, JSON, text) from the layout
//
// Each stage can be run independently or as part of the complete pipeline.
//
// # Usage
//
// Create a Runner and execute the pipeline:
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	opts := pipeline.Options{
//	    Width:   1024,
//	    Formats: []string{"svg", "txt"},
//	}
//	result, err := runner.Execute(ctx, items, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	svg := result.Artifacts["svg"]
//
// Run individual stages:
//
//	l, err := runner.Tile(ctx, items, opts)
//	artifacts, err := runner.Render(ctx, l, opts)
package pipeline

import (
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/tileme/pkg/cache"
	"github.com/matzehuels/tileme/pkg/errors"
	"github.com/matzehuels/tileme/pkg/layout"
	"github.com/matzehuels/tileme/pkg/render"
	"github.com/matzehuels/tileme/pkg/tiler"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and API
// =============================================================================

const (
	// DefaultWidth is the default container width in pixels.
	DefaultWidth = 800.0

	// DefaultFormat is the default output format.
	DefaultFormat = render.FormatSVG
)

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for the pipeline.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Tile options
	Width float64 `json:"width,omitempty"`

	// Config is the tiler configuration. A zero Config means the defaults;
	// otherwise only zero block sizes and retry budget are defaulted, so
	// an explicit zero spacing survives.
	Config tiler.Config `json:"config,omitzero"`

	// Refresh skips the layout cache lookup.
	Refresh bool `json:"refresh,omitempty"`

	// Render options
	Formats []string       `json:"formats,omitempty"`
	Render  render.Options `json:"render,omitzero"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Layout is the tiled layout.
	Layout layout.Layout

	// ItemsHash is the content hash of the normalized items.
	ItemsHash string

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	Items      int
	Degraded   int
	Columns    int
	Height     float64
	TileTime   time.Duration
	RenderTime time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	LayoutHit bool // Whether the layout came from cache
	RenderHit bool // Whether all artifacts came from cache
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := render.ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks all fields and applies defaults for the full pipeline.
// This method is idempotent - calling it multiple times has the same effect as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.ValidateForTile(); err != nil {
		return err
	}
	if err := o.ValidateForRender(); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// SetTileDefaults sets default values for tiling.
func (o *Options) SetTileDefaults() {
	if o.Width == 0 {
		o.Width = DefaultWidth
	}
	if o.Config == (tiler.Config{}) {
		o.Config = tiler.DefaultConfig()
	} else {
		o.Config = o.Config.WithDefaults()
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForTile sets tile defaults and validates the tiling options.
func (o *Options) ValidateForTile() error {
	o.SetTileDefaults()
	if err := errors.ValidateContainerWidth(o.Width); err != nil {
		return err
	}
	return o.Config.Validate()
}

// SetRenderDefaults sets default values for rendering.
func (o *Options) SetRenderDefaults() {
	if len(o.Formats) == 0 {
		o.Formats = []string{DefaultFormat}
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForRender sets render defaults and validates the formats.
func (o *Options) ValidateForRender() error {
	o.SetRenderDefaults()
	return ValidateFormats(o.Formats)
}

// TilerConfig returns the tiler configuration with defaults applied.
func (o *Options) TilerConfig() tiler.Config {
	o.SetTileDefaults()
	return o.Config
}

// LayoutKeyOpts returns cache key options for tiling.
func (o *Options) LayoutKeyOpts() cache.LayoutKeyOpts {
	return cache.LayoutKeyOpts{
		ContainerWidth: o.Width,
		BaseWidth:      o.Config.BaseWidth,
		BaseHeight:     o.Config.BaseHeight,
		Spacing:        o.Config.Spacing,
		MaxFailedTimes: o.Config.MaxFailedTimes,
		CenterSpacing:  o.Config.CenterSpacing,
	}
}

// ArtifactKeyOpts returns cache key options for rendering one format.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	return cache.ArtifactKeyOpts{
		Format:     format,
		Labels:     o.Render.Labels,
		Links:      o.Render.Links,
		Palette:    o.Render.Palette,
		Background: o.Render.Background,
	}
}

package tiler

import (
	"math"

	"github.com/matzehuels/tileme/pkg/errors"
)

// Default configuration values.
const (
	DefaultBaseWidth      = 200.0
	DefaultBaseHeight     = 200.0
	DefaultSpacing        = 1.0
	DefaultMaxFailedTimes = 3
)

// MaxFailedTimesLimit bounds the retry budget. Every failed attempt rescans
// the column ledger, so the budget caps the work spent on one item.
const MaxFailedTimesLimit = 1000

// Config holds the block geometry and retry budget for a layout run.
// It is treated as immutable while a pass runs.
type Config struct {
	// BaseWidth is the nominal block width in pixels. The effective block
	// width is stretched so whole columns fill the container.
	BaseWidth float64 `json:"base_width" toml:"base_width" yaml:"base_width"`

	// BaseHeight is the nominal block height in pixels. The effective block
	// height keeps the BaseWidth:BaseHeight aspect ratio.
	BaseHeight float64 `json:"base_height" toml:"base_height" yaml:"base_height"`

	// Spacing is deducted from every item's width and height.
	Spacing float64 `json:"spacing" toml:"spacing" yaml:"spacing"`

	// MaxFailedTimes is the number of failed attempts after which an item
	// is shrunk to fit and placed.
	MaxFailedTimes int `json:"max_failed_times" toml:"max_failed_times" yaml:"max_failed_times"`

	// CenterSpacing offsets every item by Spacing/2 on both axes so the gap
	// is split evenly around it.
	CenterSpacing bool `json:"center_spacing,omitempty" toml:"center_spacing" yaml:"center_spacing"`
}

// DefaultConfig returns the default configuration: 200x200 blocks, 1px
// spacing, three attempts before a forced fit, no centering offset.
func DefaultConfig() Config {
	return Config{
		BaseWidth:      DefaultBaseWidth,
		BaseHeight:     DefaultBaseHeight,
		Spacing:        DefaultSpacing,
		MaxFailedTimes: DefaultMaxFailedTimes,
	}
}

// Validate reports a configuration error for values that make the packing
// undefined.
func (c Config) Validate() error {
	if err := errors.ValidateBlockSize("base width", c.BaseWidth); err != nil {
		return err
	}
	if err := errors.ValidateBlockSize("base height", c.BaseHeight); err != nil {
		return err
	}
	if math.IsNaN(c.Spacing) || math.IsInf(c.Spacing, 0) || c.Spacing < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "spacing must be a non-negative number, got %v", c.Spacing)
	}
	if c.MaxFailedTimes < 1 {
		return errors.New(errors.ErrCodeInvalidConfig, "max failed times must be at least 1, got %d", c.MaxFailedTimes)
	}
	if c.MaxFailedTimes > MaxFailedTimesLimit {
		return errors.New(errors.ErrCodeInvalidConfig,
			"max failed times must be at most %d, got %d", MaxFailedTimesLimit, c.MaxFailedTimes)
	}
	return nil
}

// WithDefaults returns a copy of c where zero fields are replaced by the
// defaults. Spacing and CenterSpacing are kept as given since zero is a
// meaningful value for both.
func (c Config) WithDefaults() Config {
	if c.BaseWidth == 0 {
		c.BaseWidth = DefaultBaseWidth
	}
	if c.BaseHeight == 0 {
		c.BaseHeight = DefaultBaseHeight
	}
	if c.MaxFailedTimes == 0 {
		c.MaxFailedTimes = DefaultMaxFailedTimes
	}
	return c
}

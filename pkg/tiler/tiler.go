package tiler

import (
	"math"
	"slices"

	"github.com/matzehuels/tileme/pkg/errors"
)

// Request is a caller's request to tile one item.
// Cols and Rows are in block units; values below 1 mean 1.
type Request struct {
	ID   string `json:"id,omitempty"`
	Cols int    `json:"cols,omitempty"`
	Rows int    `json:"rows,omitempty"`
}

// Item is an item tracked by a Tiler, in caller order.
type Item struct {
	ID    string `json:"id,omitempty"`
	Index int    `json:"index"`

	// Cols and Rows are the requested spans, before clamping.
	Cols int `json:"cols"`
	Rows int `json:"rows"`

	// Failed counts failed placement attempts in the current pass.
	Failed int  `json:"failed,omitempty"`
	Placed bool `json:"placed"`

	Placement Placement `json:"placement"`
}

// Placement is where an item ended up.
type Placement struct {
	ID    string `json:"id,omitempty"`
	Index int    `json:"index"`

	// Column is the first block column the item occupies.
	Column int `json:"column"`

	// Cols and Rows are the final spans, after clamping and any forced fit.
	Cols int `json:"cols"`
	Rows int `json:"rows"`

	Left   float64 `json:"left"`
	Top    float64 `json:"top"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`

	// Degraded is set when the item exhausted its attempts and was shrunk.
	Degraded bool `json:"degraded,omitempty"`

	// Seq is the 1-based order in which items were placed.
	Seq int `json:"seq"`
}

// Right returns the right edge of the placement rectangle.
func (p Placement) Right() float64 { return p.Left + p.Width }

// Bottom returns the bottom edge of the placement rectangle.
func (p Placement) Bottom() float64 { return p.Top + p.Height }

// Result summarizes the tiled set after a pass.
type Result struct {
	// Placements holds one placement per item, in caller order.
	Placements []Placement `json:"placements"`

	// RequiredHeight is the container height needed to show every item:
	// the tallest ledger column times the block height.
	RequiredHeight float64 `json:"required_height"`

	TotalCols  int     `json:"total_cols"`
	BaseWidth  float64 `json:"base_width"`
	BaseHeight float64 `json:"base_height"`
	Ledger     []int   `json:"ledger"`

	// Degraded counts items that were force-fit.
	Degraded int `json:"degraded"`

	// Attempts counts placement attempts made by the last pass.
	Attempts int `json:"attempts"`
}

// Tiler owns the column ledger for one tiled set.
type Tiler struct {
	cfg            Config
	containerWidth float64

	totalCols  int
	baseWidth  float64
	baseHeight float64

	ledger []int
	items  []*Item
	seq    int

	lastAttempts int
	observer     Observer
}

// Option configures a Tiler.
type Option func(*Tiler)

// WithObserver sets the observer notified during passes.
func WithObserver(o Observer) Option {
	return func(t *Tiler) {
		if o != nil {
			t.observer = o
		}
	}
}

// New creates a Tiler for a container of the given pixel width.
// It fails with an [errors.ErrCodeInvalidConfig] error when the width or
// the configuration cannot be tiled.
func New(containerWidth float64, cfg Config, opts ...Option) (*Tiler, error) {
	if err := errors.ValidateContainerWidth(containerWidth); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	cols, err := columnsFor(containerWidth, cfg.BaseWidth)
	if err != nil {
		return nil, err
	}

	t := &Tiler{
		cfg:      cfg,
		observer: NoopObserver{},
	}
	for _, opt := range opts {
		opt(t)
	}
	t.setGeometry(containerWidth, cols)
	return t, nil
}

// MaxColumns bounds the column count so a tiny block width cannot make the
// ledger allocation explode.
const MaxColumns = 1 << 16

func columnsFor(containerWidth, baseWidth float64) (int, error) {
	cols := math.Ceil(containerWidth / baseWidth)
	if cols > MaxColumns {
		return 0, errors.New(errors.ErrCodeInvalidConfig,
			"container width %v with base width %v gives %.0f columns (max %d)", containerWidth, baseWidth, cols, MaxColumns)
	}
	return int(cols), nil
}

// setGeometry derives the block size from the container width and column
// count and allocates a zeroed ledger.
func (t *Tiler) setGeometry(containerWidth float64, cols int) {
	t.containerWidth = containerWidth
	t.totalCols = cols
	t.baseWidth = containerWidth / float64(t.totalCols)
	t.baseHeight = t.cfg.BaseHeight * (t.baseWidth / t.cfg.BaseWidth)
	t.ledger = make([]int, t.totalCols)
}

// Config returns the configuration the tiler was created with.
func (t *Tiler) Config() Config { return t.cfg }

// ContainerWidth returns the container width in pixels.
func (t *Tiler) ContainerWidth() float64 { return t.containerWidth }

// TotalCols returns the number of block columns.
func (t *Tiler) TotalCols() int { return t.totalCols }

// BaseWidth returns the effective block width in pixels.
func (t *Tiler) BaseWidth() float64 { return t.baseWidth }

// BaseHeight returns the effective block height in pixels.
func (t *Tiler) BaseHeight() float64 { return t.baseHeight }

// Ledger returns a copy of the column ledger.
func (t *Tiler) Ledger() []int { return slices.Clone(t.ledger) }

// Items returns a copy of the tracked items in caller order.
func (t *Tiler) Items() []Item {
	out := make([]Item, len(t.items))
	for i, it := range t.items {
		out[i] = *it
	}
	return out
}

// Len returns the number of tracked items.
func (t *Tiler) Len() int { return len(t.items) }

// Tile discards the current tiled set and runs a fresh pass over reqs.
func (t *Tiler) Tile(reqs []Request) Result {
	t.items = nil
	t.add(reqs)
	t.Reset()
	return t.run()
}

// Append adds items to the tiled set and resumes tiling. Items already
// placed keep their positions; the new ones stack on the current skyline.
func (t *Tiler) Append(reqs ...Request) Result {
	t.add(reqs)
	return t.run()
}

// Reset zeroes the ledger and marks every tracked item unplaced, clearing
// failure counters and degraded flags.
func (t *Tiler) Reset() {
	clear(t.ledger)
	t.seq = 0
	for _, it := range t.items {
		it.Failed = 0
		it.Placed = false
		it.Placement = Placement{ID: it.ID, Index: it.Index}
	}
}

// Retile resets the tiler and re-tiles every tracked item in caller order.
func (t *Tiler) Retile() Result {
	t.Reset()
	return t.run()
}

// Resize recomputes the geometry for a new container width and re-tiles
// every tracked item. On a configuration error the tiler is unchanged.
func (t *Tiler) Resize(containerWidth float64) (Result, error) {
	if err := errors.ValidateContainerWidth(containerWidth); err != nil {
		return Result{}, err
	}
	cols, err := columnsFor(containerWidth, t.cfg.BaseWidth)
	if err != nil {
		return Result{}, err
	}
	t.setGeometry(containerWidth, cols)
	return t.Retile(), nil
}

// Result reports the current tiled set without running a pass.
func (t *Tiler) Result() Result {
	res := Result{
		Placements: make([]Placement, len(t.items)),
		TotalCols:  t.totalCols,
		BaseWidth:  t.baseWidth,
		BaseHeight: t.baseHeight,
		Ledger:     t.Ledger(),
		Attempts:   t.lastAttempts,
	}
	for i, it := range t.items {
		res.Placements[i] = it.Placement
		if it.Placement.Degraded {
			res.Degraded++
		}
	}
	res.RequiredHeight = float64(slices.Max(t.ledger)) * t.baseHeight
	return res
}

func (t *Tiler) add(reqs []Request) {
	for _, r := range reqs {
		idx := len(t.items)
		t.items = append(t.items, &Item{
			ID:        r.ID,
			Index:     idx,
			Cols:      max(r.Cols, 1),
			Rows:      max(r.Rows, 1),
			Placement: Placement{ID: r.ID, Index: idx},
		})
	}
}

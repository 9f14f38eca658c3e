package layout

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"time"

	"github.com/matzehuels/tileme/pkg/errors"
	"github.com/matzehuels/tileme/pkg/tiler"
)

// Layout is a serialized tiling result.
type Layout struct {
	ID             string    `json:"id,omitempty" bson:"_id,omitempty"`
	ContainerWidth float64   `json:"container_width" bson:"container_width"`
	Height         float64   `json:"height" bson:"height"`
	TotalCols      int       `json:"total_cols" bson:"total_cols"`
	BaseWidth      float64   `json:"base_width" bson:"base_width"`
	BaseHeight     float64   `json:"base_height" bson:"base_height"`
	Spacing        float64   `json:"spacing" bson:"spacing"`
	Tiles          []Tile    `json:"tiles" bson:"tiles"`
	Degraded       int       `json:"degraded,omitempty" bson:"degraded,omitempty"`
	CreatedAt      time.Time `json:"created_at,omitzero" bson:"created_at,omitempty"`
}

// Tile is one placed item.
type Tile struct {
	ID    string `json:"id" bson:"id"`
	Label string `json:"label,omitempty" bson:"label,omitempty"`
	Color string `json:"color,omitempty" bson:"color,omitempty"`
	URL   string `json:"url,omitempty" bson:"url,omitempty"`

	Column int `json:"column" bson:"column"`
	Cols   int `json:"cols" bson:"cols"`
	Rows   int `json:"rows" bson:"rows"`

	// RequestedCols and RequestedRows are the spans asked for; they differ
	// from Cols and Rows when the tile was clamped or force-fit.
	RequestedCols int `json:"requested_cols" bson:"requested_cols"`
	RequestedRows int `json:"requested_rows" bson:"requested_rows"`

	X      float64 `json:"x" bson:"x"`
	Y      float64 `json:"y" bson:"y"`
	Width  float64 `json:"width" bson:"width"`
	Height float64 `json:"height" bson:"height"`

	Degraded bool `json:"degraded,omitempty" bson:"degraded,omitempty"`
	Seq      int  `json:"seq" bson:"seq"`
}

// Right returns the right edge of the tile.
func (t Tile) Right() float64 { return t.X + t.Width }

// Bottom returns the bottom edge of the tile.
func (t Tile) Bottom() float64 { return t.Y + t.Height }

// Overlaps reports whether the interiors of two tiles intersect.
func (t Tile) Overlaps(o Tile) bool {
	return t.X < o.Right() && o.X < t.Right() && t.Y < o.Bottom() && o.Y < t.Bottom()
}

// FromResult builds a layout from a tiler result. items supplies the
// presentation fields and must be in the same order as the requests that
// produced res; missing entries leave those fields empty.
func FromResult(res tiler.Result, items []ItemSpec, containerWidth, spacing float64) Layout {
	l := Layout{
		ContainerWidth: containerWidth,
		Height:         res.RequiredHeight,
		TotalCols:      res.TotalCols,
		BaseWidth:      res.BaseWidth,
		BaseHeight:     res.BaseHeight,
		Spacing:        spacing,
		Tiles:          make([]Tile, len(res.Placements)),
		Degraded:       res.Degraded,
	}
	for i, p := range res.Placements {
		t := Tile{
			ID:            p.ID,
			Column:        p.Column,
			Cols:          p.Cols,
			Rows:          p.Rows,
			RequestedCols: p.Cols,
			RequestedRows: p.Rows,
			X:             p.Left,
			Y:             p.Top,
			Width:         p.Width,
			Height:        p.Height,
			Degraded:      p.Degraded,
			Seq:           p.Seq,
		}
		if i < len(items) {
			it := items[i]
			t.Label, t.Color, t.URL = it.Label, it.Color, it.URL
			t.RequestedCols, t.RequestedRows = max(it.Cols, 1), max(it.Rows, 1)
		}
		l.Tiles[i] = t
	}
	return l
}

// Validate checks that the layout geometry is well formed.
func (l Layout) Validate() error {
	if err := errors.ValidateContainerWidth(l.ContainerWidth); err != nil {
		return err
	}
	if l.TotalCols < 1 {
		return errors.New(errors.ErrCodeInvalidInput, "total_cols must be at least 1, got %d", l.TotalCols)
	}
	if math.IsNaN(l.Height) || l.Height < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "height must be non-negative, got %v", l.Height)
	}
	for i, t := range l.Tiles {
		if t.Cols < 1 || t.Rows < 1 {
			return errors.New(errors.ErrCodeInvalidInput, "tile %d (%s): spans must be at least 1", i, t.ID)
		}
		if t.Column < 0 || t.Column+t.Cols > l.TotalCols {
			return errors.New(errors.ErrCodeInvalidInput,
				"tile %d (%s): columns %d..%d outside 0..%d", i, t.ID, t.Column, t.Column+t.Cols, l.TotalCols)
		}
	}
	return nil
}

// Marshal encodes a layout as indented JSON.
func Marshal(l Layout) ([]byte, error) {
	data, err := json.MarshalIndent(l, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal layout: %w", err)
	}
	return data, nil
}

// Unmarshal decodes and validates a JSON layout.
func Unmarshal(data []byte) (Layout, error) {
	var l Layout
	if err := json.Unmarshal(data, &l); err != nil {
		return Layout{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode layout")
	}
	if err := l.Validate(); err != nil {
		return Layout{}, err
	}
	return l, nil
}

// WriteFile writes a layout as JSON.
func WriteFile(path string, l Layout) error {
	data, err := Marshal(l)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// ReadFile reads and validates a JSON layout.
func ReadFile(path string) (Layout, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Layout{}, errors.Wrap(errors.ErrCodeFileNotFound, err, "layout file %s", path)
		}
		return Layout{}, fmt.Errorf("read %s: %w", path, err)
	}
	return Unmarshal(data)
}

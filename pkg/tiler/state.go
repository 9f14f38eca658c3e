package tiler

import (
	"slices"

	"github.com/matzehuels/tileme/pkg/errors"
)

// State is a serializable snapshot of a Tiler. It lets a tiled set be
// stored between requests and resumed later with [Restore].
type State struct {
	ContainerWidth float64 `json:"container_width"`
	Config         Config  `json:"config"`
	Ledger         []int   `json:"ledger"`
	Items          []Item  `json:"items"`
	Seq            int     `json:"seq"`
}

// State captures the tiler's current ledger and items.
func (t *Tiler) State() State {
	return State{
		ContainerWidth: t.containerWidth,
		Config:         t.cfg,
		Ledger:         t.Ledger(),
		Items:          t.Items(),
		Seq:            t.seq,
	}
}

// Restore rebuilds a Tiler from a snapshot. The snapshot is validated
// against the geometry its container width and config produce; a ledger of
// the wrong length or with negative entries is a configuration error.
func Restore(s State, opts ...Option) (*Tiler, error) {
	t, err := New(s.ContainerWidth, s.Config, opts...)
	if err != nil {
		return nil, err
	}

	if len(s.Ledger) != t.totalCols {
		return nil, errors.New(errors.ErrCodeInvalidConfig,
			"ledger has %d columns, geometry needs %d", len(s.Ledger), t.totalCols)
	}
	for i, h := range s.Ledger {
		if h < 0 {
			return nil, errors.New(errors.ErrCodeInvalidConfig, "ledger column %d is negative (%d)", i, h)
		}
	}
	copy(t.ledger, s.Ledger)

	t.items = make([]*Item, len(s.Items))
	for i := range s.Items {
		it := s.Items[i]
		it.Index = i
		it.Cols = max(it.Cols, 1)
		it.Rows = max(it.Rows, 1)
		if it.Placed && it.Placement.Column+it.Placement.Cols > t.totalCols {
			return nil, errors.New(errors.ErrCodeInvalidConfig,
				"item %d overflows the container (column %d, cols %d)", i, it.Placement.Column, it.Placement.Cols)
		}
		t.items[i] = &it
	}
	t.seq = s.Seq
	return t, nil
}

// Equal reports whether two snapshots describe the same tiled set.
func (s State) Equal(o State) bool {
	return s.ContainerWidth == o.ContainerWidth &&
		s.Config == o.Config &&
		s.Seq == o.Seq &&
		slices.Equal(s.Ledger, o.Ledger) &&
		slices.Equal(s.Items, o.Items)
}

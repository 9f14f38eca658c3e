package tiler

import (
	"fmt"
	"slices"
	"testing"
)

// recorder logs every notification as a short string.
type recorder struct {
	events []string
}

func (r *recorder) OnPassStart(info PassInfo) {
	r.events = append(r.events, fmt.Sprintf("start pending=%d placed=%d", info.Pending, info.Placed))
}
func (r *recorder) OnItemTiling(it Item)   { r.events = append(r.events, "tiling "+it.ID) }
func (r *recorder) OnItemTiled(it Item)    { r.events = append(r.events, "tiled "+it.ID) }
func (r *recorder) OnItemDeferred(it Item) { r.events = append(r.events, "deferred "+it.ID) }
func (r *recorder) OnPassComplete(res Result) {
	r.events = append(r.events, fmt.Sprintf("complete height=%.0f", res.RequiredHeight))
}

func TestObserverEventOrder(t *testing.T) {
	rec := &recorder{}
	tl := mustNew(t, 400, DefaultConfig(), WithObserver(rec))

	tl.Tile([]Request{{ID: "a"}, {ID: "wide", Cols: 2}, {ID: "b"}})

	want := []string{
		"start pending=3 placed=0",
		"tiling a",
		"tiled a",
		"tiling wide",
		"deferred wide",
		"tiling b",
		"tiled b",
		"tiling wide",
		"tiled wide",
		"complete height=400",
	}
	if !slices.Equal(rec.events, want) {
		t.Errorf("events:\n got %q\nwant %q", rec.events, want)
	}

	rec.events = nil
	tl.Append(Request{ID: "c"})
	want = []string{
		"start pending=1 placed=3",
		"tiling c",
		"tiled c",
		"complete height=600",
	}
	if !slices.Equal(rec.events, want) {
		t.Errorf("append events:\n got %q\nwant %q", rec.events, want)
	}
}

func TestObserverSeesPlacement(t *testing.T) {
	var tiled []Item
	obs := ObserverFuncs{ItemTiled: func(it Item) { tiled = append(tiled, it) }}
	tl := mustNew(t, 800, DefaultConfig(), WithObserver(obs))
	tl.Tile(ones("a", "b"))

	if len(tiled) != 2 {
		t.Fatalf("tiled = %d items, want 2", len(tiled))
	}
	if !tiled[1].Placed || tiled[1].Placement.Column != 1 {
		t.Errorf("second notification = %+v, want placed at column 1", tiled[1])
	}
}

func TestObserverFuncsNilFields(t *testing.T) {
	// All nil: must not panic.
	tl := mustNew(t, 800, DefaultConfig(), WithObserver(ObserverFuncs{}))
	tl.Tile(ones("a"))
}

func TestWithObserverNil(t *testing.T) {
	tl := mustNew(t, 800, DefaultConfig(), WithObserver(nil))
	tl.Tile(ones("a"))
}

func TestObserversFanOut(t *testing.T) {
	a, b := &recorder{}, &recorder{}
	tl := mustNew(t, 800, DefaultConfig(), WithObserver(Observers(a, nil, b)))
	tl.Tile(ones("x"))

	if !slices.Equal(a.events, b.events) {
		t.Errorf("observers saw different events: %q vs %q", a.events, b.events)
	}
	if len(a.events) != 4 {
		t.Errorf("events = %d, want 4", len(a.events))
	}
}

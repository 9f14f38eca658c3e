// Package tiler packs rectangular items into a fixed-width container.
//
// # Overview
//
// A [Tiler] divides the container into equal block columns and packs items,
// each requesting a span of columns and rows, using a greedy skyline
// heuristic. The result assigns every item an absolute pixel rectangle such
// that no two items overlap and no item leaves the container horizontally.
//
// # Geometry
//
// Given a container width W and a [Config] with base block width bw and
// height bh:
//
//	totalCols  = ceil(W / bw)
//	baseWidth  = W / totalCols     (blocks stretch to fill the container)
//	baseHeight = bh * baseWidth / bw
//
// # The Skyline
//
// The tiler keeps a column ledger: ledger[i] is the number of rows already
// occupied in column i. For each item it finds the lowest level of the
// skyline and scans left to right for runs of adjacent columns at that
// level. The item goes into the first run wide enough for it (first-fit,
// left-biased, O(totalCols) per attempt).
//
// # Deferral and Forced Fit
//
// When no run is wide enough the item is deferred to the back of the queue,
// giving other items the chance to raise the skyline and open up a wider
// run. After [Config.MaxFailedTimes] failed attempts the item is shrunk to
// the widest run available and placed anyway; it is then reported as
// degraded via [Placement.Degraded]. Every item is therefore placed, and a
// pass never fails once the tiler exists.
//
// # Usage
//
//	t, err := tiler.New(800, tiler.DefaultConfig())
//	if err != nil {
//	    return err // configuration error
//	}
//	res := t.Tile([]tiler.Request{
//	    {ID: "hero", Cols: 2, Rows: 2},
//	    {ID: "a"},
//	    {ID: "b"},
//	})
//	fmt.Println(res.RequiredHeight)
//
// Items added later stack on top of the existing skyline:
//
//	res = t.Append(tiler.Request{ID: "more", Cols: 1, Rows: 1})
//
// When the container changes size, [Tiler.Resize] recomputes the geometry
// and re-tiles every item from scratch.
//
// # Observers
//
// An [Observer] passed with [WithObserver] is notified synchronously at the
// start of a pass, before each attempt, after each placement or deferral,
// and when the pass completes. Observers are notification points only and
// cannot influence placement.
//
// # Concurrency
//
// A Tiler is not safe for concurrent use. Callers that may trigger passes
// from several goroutines (a resize racing an append, for example) must
// serialize them.
package tiler

package tiler

// pass is the working state of one layout pass: the queue of items still
// waiting for a position. The ledger belongs to the Tiler so that appended
// items can resume on top of an earlier pass.
type pass struct {
	t        *Tiler
	queue    []*Item
	attempts int
}

// run tiles every unplaced item and reports the result.
func (t *Tiler) run() Result {
	p := &pass{t: t}
	placed := 0
	for _, it := range t.items {
		if it.Placed {
			placed++
			continue
		}
		p.queue = append(p.queue, it)
	}

	t.observer.OnPassStart(PassInfo{
		TotalCols: t.totalCols,
		Pending:   len(p.queue),
		Placed:    placed,
	})

	for len(p.queue) > 0 {
		it := p.queue[0]
		p.queue = p.queue[1:]
		if !p.attempt(it) {
			p.queue = append(p.queue, it)
		}
	}

	t.lastAttempts = p.attempts
	res := t.Result()
	t.observer.OnPassComplete(res)
	return res
}

// span describes a maximal sequence of adjacent columns at the lowest level.
type span struct {
	start int
	width int
}

// scan looks for the first run at the skyline's lowest level that is at
// least cols wide. It also reports the widest run seen before the scan
// stopped, which is where a forced fit goes.
func (t *Tiler) scan(cols int) (fit, widest span, found bool) {
	lowest := t.ledger[0]
	for _, h := range t.ledger[1:] {
		lowest = min(lowest, h)
	}

	var cur span
	for col, h := range t.ledger {
		if h != lowest {
			cur.width = 0
			continue
		}
		if cur.width == 0 {
			cur.start = col
		}
		cur.width++
		if cur.width > widest.width {
			widest = cur
		}
		if cur.width == cols {
			return cur, widest, true
		}
	}
	return span{}, widest, false
}

// attempt tries to place one item. It returns false when the item was
// deferred and must go back on the queue.
func (p *pass) attempt(it *Item) bool {
	t := p.t
	p.attempts++
	t.observer.OnItemTiling(*it)

	// Rows are clamped against the column count as well; there is no
	// separate row limit.
	cols := min(it.Cols, t.totalCols)
	rows := min(it.Rows, t.totalCols)

	fit, widest, found := t.scan(cols)
	if found {
		t.place(it, fit.start, cols, rows, false)
		return true
	}

	it.Failed++
	if it.Failed < t.cfg.MaxFailedTimes {
		t.observer.OnItemDeferred(*it)
		return false
	}

	// Out of attempts: shrink to the widest run. When the item's aspect
	// ratio is exactly that width, rows shrink by the same factor.
	if cols == widest.width*rows {
		rows = max(rows*widest.width/cols, 1)
	}
	cols = widest.width
	t.place(it, widest.start, cols, rows, true)
	return true
}

// place records the item's rectangle and raises the skyline under it.
func (t *Tiler) place(it *Item, col, cols, rows int, degraded bool) {
	left := float64(col) * t.baseWidth
	top := float64(t.ledger[col]) * t.baseHeight
	if t.cfg.CenterSpacing {
		off := t.cfg.Spacing / 2
		left += off
		top += off
	}

	t.seq++
	it.Placed = true
	it.Placement = Placement{
		ID:       it.ID,
		Index:    it.Index,
		Column:   col,
		Cols:     cols,
		Rows:     rows,
		Left:     left,
		Top:      top,
		Width:    float64(cols)*t.baseWidth - t.cfg.Spacing,
		Height:   float64(rows)*t.baseHeight - t.cfg.Spacing,
		Degraded: degraded,
		Seq:      t.seq,
	}

	for c := col; c < col+cols; c++ {
		t.ledger[c] += rows
	}
	t.observer.OnItemTiled(*it)
}

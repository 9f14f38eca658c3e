package tiler

// PassInfo describes a pass that is about to start.
type PassInfo struct {
	TotalCols int // Block columns in the container
	Pending   int // Items the pass will tile
	Placed    int // Items already placed by earlier passes
}

// Observer is notified synchronously while a pass runs. Items are passed
// by value; changing them has no effect on the layout.
type Observer interface {
	// OnPassStart is called before the first attempt of a pass.
	OnPassStart(info PassInfo)

	// OnItemTiling is called before every placement attempt.
	OnItemTiling(item Item)

	// OnItemTiled is called after an item has been placed.
	OnItemTiled(item Item)

	// OnItemDeferred is called when an item did not fit and went back on
	// the queue.
	OnItemDeferred(item Item)

	// OnPassComplete is called once every item has been placed.
	OnPassComplete(res Result)
}

// NoopObserver ignores all notifications.
type NoopObserver struct{}

func (NoopObserver) OnPassStart(PassInfo)  {}
func (NoopObserver) OnItemTiling(Item)     {}
func (NoopObserver) OnItemTiled(Item)      {}
func (NoopObserver) OnItemDeferred(Item)   {}
func (NoopObserver) OnPassComplete(Result) {}

// ObserverFuncs adapts plain functions to the Observer interface.
// Nil fields are skipped.
type ObserverFuncs struct {
	PassStart    func(PassInfo)
	ItemTiling   func(Item)
	ItemTiled    func(Item)
	ItemDeferred func(Item)
	PassComplete func(Result)
}

func (f ObserverFuncs) OnPassStart(info PassInfo) {
	if f.PassStart != nil {
		f.PassStart(info)
	}
}

func (f ObserverFuncs) OnItemTiling(item Item) {
	if f.ItemTiling != nil {
		f.ItemTiling(item)
	}
}

func (f ObserverFuncs) OnItemTiled(item Item) {
	if f.ItemTiled != nil {
		f.ItemTiled(item)
	}
}

func (f ObserverFuncs) OnItemDeferred(item Item) {
	if f.ItemDeferred != nil {
		f.ItemDeferred(item)
	}
}

func (f ObserverFuncs) OnPassComplete(res Result) {
	if f.PassComplete != nil {
		f.PassComplete(res)
	}
}

// Observers fans notifications out to several observers in order.
func Observers(obs ...Observer) Observer {
	list := make(multiObserver, 0, len(obs))
	for _, o := range obs {
		if o != nil {
			list = append(list, o)
		}
	}
	return list
}

type multiObserver []Observer

func (m multiObserver) OnPassStart(info PassInfo) {
	for _, o := range m {
		o.OnPassStart(info)
	}
}

func (m multiObserver) OnItemTiling(item Item) {
	for _, o := range m {
		o.OnItemTiling(item)
	}
}

func (m multiObserver) OnItemTiled(item Item) {
	for _, o := range m {
		o.OnItemTiled(item)
	}
}

func (m multiObserver) OnItemDeferred(item Item) {
	for _, o := range m {
		o.OnItemDeferred(item)
	}
}

func (m multiObserver) OnPassComplete(res Result) {
	for _, o := range m {
		o.OnPassComplete(res)
	}
}

var (
	_ Observer = NoopObserver{}
	_ Observer = ObserverFuncs{}
	_ Observer = multiObserver(nil)
)

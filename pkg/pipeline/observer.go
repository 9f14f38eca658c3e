package pipeline

import (
	"context"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/tileme/pkg/observability"
	"github.com/matzehuels/tileme/pkg/tiler"
)

// hookObserver forwards tiler notifications to the observability hooks and
// logs deferrals and forced fits at debug level.
type hookObserver struct {
	tiler.NoopObserver
	ctx    context.Context
	logger *log.Logger
}

// NewObserver returns a tiler observer that reports to the registered
// pipeline hooks and to logger.
func NewObserver(ctx context.Context, logger *log.Logger) tiler.Observer {
	if logger == nil {
		logger = log.Default()
	}
	return &hookObserver{ctx: ctx, logger: logger}
}

func (o *hookObserver) OnItemDeferred(it tiler.Item) {
	observability.Pipeline().OnItemDeferred(o.ctx, it.ID, it.Failed)
	o.logger.Debug("deferred item", "id", it.ID, "cols", it.Cols, "rows", it.Rows, "failed", it.Failed)
}

func (o *hookObserver) OnItemTiled(it tiler.Item) {
	if !it.Placement.Degraded {
		return
	}
	p := it.Placement
	observability.Pipeline().OnItemForced(o.ctx, it.ID, p.Cols, p.Rows)
	o.logger.Debug("force-fit item",
		"id", it.ID,
		"requested", [2]int{it.Cols, it.Rows},
		"placed", [2]int{p.Cols, p.Rows},
		"column", p.Column)
}

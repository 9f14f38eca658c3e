package observability

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
)

// LogHooks reports every event as a debug log line. It implements
// PipelineHooks, CacheHooks and HTTPHooks.
type LogHooks struct {
	logger *log.Logger
}

// NewLogHooks returns hooks that write to logger.
func NewLogHooks(logger *log.Logger) *LogHooks {
	if logger == nil {
		logger = log.Default()
	}
	return &LogHooks{logger: logger}
}

func (h *LogHooks) OnTileStart(_ context.Context, items int, containerWidth float64) {
	h.logger.Debug("tile start", "items", items, "width", containerWidth)
}

func (h *LogHooks) OnTileComplete(_ context.Context, placed, degraded int, d time.Duration, err error) {
	if err != nil {
		h.logger.Debug("tile failed", "error", err, "duration", d)
		return
	}
	h.logger.Debug("tile complete", "placed", placed, "degraded", degraded, "duration", d)
}

func (h *LogHooks) OnItemDeferred(_ context.Context, id string, failed int) {
	h.logger.Debug("item deferred", "id", id, "failed", failed)
}

func (h *LogHooks) OnItemForced(_ context.Context, id string, cols, rows int) {
	h.logger.Debug("item force-fit", "id", id, "cols", cols, "rows", rows)
}

func (h *LogHooks) OnRenderStart(_ context.Context, formats []string) {
	h.logger.Debug("render start", "formats", formats)
}

func (h *LogHooks) OnRenderComplete(_ context.Context, formats []string, d time.Duration, err error) {
	h.logger.Debug("render complete", "formats", formats, "duration", d, "error", err)
}

func (h *LogHooks) OnCacheHit(_ context.Context, keyType string) {
	h.logger.Debug("cache hit", "type", keyType)
}

func (h *LogHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.logger.Debug("cache miss", "type", keyType)
}

func (h *LogHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.logger.Debug("cache set", "type", keyType, "bytes", size)
}

func (h *LogHooks) OnRequest(_ context.Context, method, route string) {
	h.logger.Debug("request", "method", method, "route", route)
}

func (h *LogHooks) OnResponse(_ context.Context, method, route string, status int, d time.Duration) {
	h.logger.Info("response", "method", method, "route", route, "status", status, "duration", d)
}

var (
	_ PipelineHooks = (*LogHooks)(nil)
	_ CacheHooks    = (*LogHooks)(nil)
	_ HTTPHooks     = (*LogHooks)(nil)
)

package player

import (
	"sync/atomic"
	"time"

	"suncet-viewer/internal/types"
	"suncet-viewer/internal/viewer"
)

type Metrics struct {
	eventsQueued  atomic.Uint64
	eventsDropped atomic.Uint64
	renders       atomic.Uint64
	renderErrors  atomic.Uint64
	decodeErrors  atomic.Uint64
	shapeErrors   atomic.Uint64
	renderNanos   atomic.Uint64
}

func (m *Metrics) observe(result types.RenderResult, elapsed time.Duration) {
	m.renders.Add(1)
	m.renderNanos.Add(uint64(elapsed.Nanoseconds()))
	if result.Error == nil {
		return
	}
	m.renderErrors.Add(1)
	switch result.Error.Kind {
	case viewer.ErrorKindDecode:
		m.decodeErrors.Add(1)
	case viewer.ErrorKindShapeMismatch:
		m.shapeErrors.Add(1)
	}
}

func (m *Metrics) snapshot() map[string]any {
	return map[string]any{
		"events_queued_total":         m.eventsQueued.Load(),
		"events_dropped_total":        m.eventsDropped.Load(),
		"renders_total":               m.renders.Load(),
		"render_errors_total":         m.renderErrors.Load(),
		"decode_errors_total":         m.decodeErrors.Load(),
		"shape_mismatch_errors_total": m.shapeErrors.Load(),
		"render_nanos_total":          m.renderNanos.Load(),
	}
}

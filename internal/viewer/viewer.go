package viewer

import (
	"suncet-viewer/internal/catalog"
	"suncet-viewer/internal/decode"
	"suncet-viewer/internal/processing"
	"suncet-viewer/internal/types"
)

const (
	MinFrameRate     = 1
	MaxFrameRate     = 30
	DefaultFrameRate = 15

	ErrorKindDecode        = "decode"
	ErrorKindShapeMismatch = "shape_mismatch"
)

// Context carries everything a render needs. It is built once at startup and
// passed through Apply; only Tick and Controls change afterwards.
type Context struct {
	Catalog  *catalog.Catalog
	Decoder  decode.Decoder
	Tick     int
	Controls types.Controls
}

func NewContext(cat *catalog.Catalog, dec decode.Decoder, frameRate int) Context {
	return Context{
		Catalog: cat,
		Decoder: dec,
		Controls: types.Controls{
			FrameRate: ClampFrameRate(frameRate),
			State:     types.Playing,
		},
	}
}

func ClampFrameRate(fps int) int {
	if fps < MinFrameRate {
		return MinFrameRate
	}
	if fps > MaxFrameRate {
		return MaxFrameRate
	}
	return fps
}

// Apply folds one event into ctx and renders the resulting frame.
func Apply(event types.Event, ctx Context) (Context, types.RenderResult) {
	next := Transition(event, ctx)
	return next, Render(next)
}

// Transition updates tick and controls without touching storage.
func Transition(event types.Event, ctx Context) Context {
	switch event.Kind {
	case types.EventTimerTick:
		if ctx.Controls.State == types.Playing {
			ctx.Tick++
		}
	case types.EventStepForward:
		ctx.Tick++
	case types.EventStepBackward:
		ctx.Tick--
		if ctx.Tick < 0 {
			ctx.Tick = ctx.Catalog.Len() - 1
		}
	case types.EventDifferenceToggled:
		ctx.Controls.Difference = event.Enabled
	case types.EventPlay:
		ctx.Controls.State = types.Playing
	case types.EventPause:
		ctx.Controls.State = types.Paused
	case types.EventSetFrameRate:
		ctx.Controls.FrameRate = ClampFrameRate(event.FPS)
	case types.EventSetTimeRange:
		ctx.Controls.StartTime = event.StartTime
		ctx.Controls.EndTime = event.EndTime
	}
	return ctx
}

// Render resolves the current tick, decodes it and applies the difference
// transform. Failures come back as an error state, never a panic.
func Render(ctx Context) types.RenderResult {
	index := ctx.Catalog.Index(ctx.Tick)
	path := ctx.Catalog.Path(index)
	result := types.RenderResult{
		Type:       "render",
		Tick:       ctx.Tick,
		Index:      index,
		Total:      ctx.Catalog.Len(),
		Path:       path,
		Difference: ctx.Controls.Difference,
		Controls:   ctx.Controls,
	}

	current, err := ctx.Decoder.Load(path)
	if err != nil {
		result.Error = renderError(ErrorKindDecode, path, err)
		return result
	}

	var previous *types.Frame
	if ctx.Controls.Difference && index > 0 {
		prev, err := ctx.Decoder.Load(ctx.Catalog.Path(index - 1))
		if err == nil {
			previous = &prev
		}
	}

	shown, err := processing.MaybeDifference(current, previous, ctx.Controls.Difference)
	if err != nil {
		result.Error = renderError(ErrorKindShapeMismatch, path, err)
		return result
	}
	result.Difference = previous != nil

	grid := processing.Collapse(shown)
	stats := processing.Summarize(grid)
	figure := Figure(grid)
	result.Figure = &figure
	result.Stats = &stats
	result.Grid = &grid
	return result
}

// Figure builds a grayscale heatmap description with both axes hidden.
func Figure(grid types.Grid) types.Figure {
	return types.Figure{
		Data: []types.Trace{{
			Z:          grid.Rows(),
			Type:       "heatmap",
			Colorscale: "Gray",
		}},
		Layout: types.Layout{
			XAxis: types.Axis{Visible: false},
			YAxis: types.Axis{Visible: false},
		},
	}
}

func renderError(kind string, path string, err error) *types.RenderError {
	return &types.RenderError{
		Kind:    kind,
		Message: err.Error(),
		Path:    path,
	}
}

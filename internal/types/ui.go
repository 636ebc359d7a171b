package types

type EventKind string

const (
	EventTimerTick         EventKind = "timer_tick"
	EventStepForward       EventKind = "step_forward"
	EventStepBackward      EventKind = "step_backward"
	EventDifferenceToggled EventKind = "difference"
	EventPlay              EventKind = "play"
	EventPause             EventKind = "pause"
	EventSetFrameRate      EventKind = "frame_rate"
	EventSetTimeRange      EventKind = "time_range"
	EventRefresh           EventKind = "refresh"
)

// Event is the single input type fed to the viewer. Only the fields that
// belong to Kind are meaningful.
type Event struct {
	Kind      EventKind `json:"type" cbor:"type"`
	Enabled   bool      `json:"enabled,omitempty" cbor:"enabled,omitempty"`
	FPS       int       `json:"fps,omitempty" cbor:"fps,omitempty"`
	StartTime string    `json:"start_time,omitempty" cbor:"start_time,omitempty"`
	EndTime   string    `json:"end_time,omitempty" cbor:"end_time,omitempty"`
	Source    string    `json:"source,omitempty" cbor:"source,omitempty"`
}

func (k EventKind) Valid() bool {
	switch k {
	case EventTimerTick, EventStepForward, EventStepBackward, EventDifferenceToggled,
		EventPlay, EventPause, EventSetFrameRate, EventSetTimeRange, EventRefresh:
		return true
	}
	return false
}

type PlayState string

const (
	Playing PlayState = "playing"
	Paused  PlayState = "paused"
)

// Controls is the snapshot of UI control values the renderer reads.
type Controls struct {
	StartTime  string    `json:"start_time"`
	EndTime    string    `json:"end_time"`
	FrameRate  int       `json:"frame_rate"`
	Difference bool      `json:"difference"`
	State      PlayState `json:"state"`
}

type Trace struct {
	Z          [][]float32 `json:"z"`
	Type       string      `json:"type"`
	Colorscale string      `json:"colorscale"`
}

type Axis struct {
	Visible bool `json:"visible"`
}

type Layout struct {
	XAxis Axis `json:"xaxis"`
	YAxis Axis `json:"yaxis"`
}

// Figure is the chart description handed to the browser.
type Figure struct {
	Data   []Trace `json:"data"`
	Layout Layout  `json:"layout"`
}

type RenderError struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
	Path    string `json:"path,omitempty"`
}

type FrameStats struct {
	Min  float64 `json:"min"`
	Max  float64 `json:"max"`
	Mean float64 `json:"mean"`
}

// RenderResult is the outcome of one handler invocation. Exactly one of
// Figure and Error is set.
type RenderResult struct {
	Type       string       `json:"type"`
	Tick       int          `json:"tick"`
	Index      int          `json:"index"`
	Total      int          `json:"total"`
	Path       string       `json:"path"`
	Difference bool         `json:"difference"`
	Controls   Controls     `json:"controls"`
	Figure     *Figure      `json:"figure,omitempty"`
	Stats      *FrameStats  `json:"stats,omitempty"`
	Error      *RenderError `json:"error,omitempty"`
	Grid       *Grid        `json:"-"`
}

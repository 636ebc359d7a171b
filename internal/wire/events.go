package wire

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"

	"suncet-viewer/internal/types"
)

func EncodeEvent(event types.Event) ([]byte, error) {
	return cbor.Marshal(event)
}

// DecodeEvent accepts a CBOR map shaped like
// { "type": "step_forward", "enabled": true, "fps": 10, ... }.
func DecodeEvent(payload []byte) (types.Event, error) {
	var event types.Event
	if err := cbor.Unmarshal(payload, &event); err != nil {
		return types.Event{}, err
	}
	if !event.Kind.Valid() {
		return types.Event{}, fmt.Errorf("unknown event type %q", event.Kind)
	}
	return event, nil
}

// RenderMessage is the CBOR form of a render result pushed to binary clients.
type RenderMessage struct {
	Type       string             `cbor:"type"`
	Tick       int                `cbor:"tick"`
	Index      int                `cbor:"index"`
	Total      int                `cbor:"total"`
	Path       string             `cbor:"path"`
	Difference bool               `cbor:"difference"`
	Z          *cbor.Tag          `cbor:"z,omitempty"`
	Error      *types.RenderError `cbor:"error,omitempty"`
}

func EncodeRender(result types.RenderResult) ([]byte, error) {
	msg := RenderMessage{
		Type:       result.Type,
		Tick:       result.Tick,
		Index:      result.Index,
		Total:      result.Total,
		Path:       result.Path,
		Difference: result.Difference,
		Error:      result.Error,
	}
	if result.Grid != nil {
		z := gridTag(*result.Grid)
		msg.Z = &z
	}
	return cbor.Marshal(msg)
}

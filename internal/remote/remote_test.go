package remote

import (
	"context"
	"testing"
	"time"

	"github.com/fxamacker/cbor/v2"
	"github.com/pebbe/zmq4"

	"suncet-viewer/internal/types"
)

func TestDecodeMessageStep(t *testing.T) {
	payload, err := cbor.Marshal(map[string]any{"type": "step_backward"})
	if err != nil {
		t.Fatalf("marshal error: %v", err)
	}

	event, ok := decodeMessage(payload, 1)
	if !ok {
		t.Fatalf("decodeMessage returned ok=false")
	}
	if event.Kind != types.EventStepBackward {
		t.Fatalf("unexpected kind: %q", event.Kind)
	}
	if event.Source != "remote" {
		t.Fatalf("unexpected source: %q", event.Source)
	}
}

func TestDecodeMessageDifference(t *testing.T) {
	payload, err := cbor.Marshal(map[string]any{"type": "difference", "enabled": true})
	if err != nil {
		t.Fatalf("marshal error: %v", err)
	}
	event, ok := decodeMessage(payload, 1)
	if !ok || !event.Enabled {
		t.Fatalf("unexpected event: %#v ok=%v", event, ok)
	}
}

func TestDecodeMessageRejects(t *testing.T) {
	before := DecodeFailures()
	if _, ok := decodeMessage([]byte{0xff, 0x00}, 1); ok {
		t.Fatalf("expected garbage to be rejected")
	}
	if DecodeFailures() != before+1 {
		t.Fatalf("decode failure not counted")
	}

	tick, _ := cbor.Marshal(map[string]any{"type": "timer_tick"})
	if _, ok := decodeMessage(tick, 1); ok {
		t.Fatalf("expected remote timer ticks to be ignored")
	}
}

func TestListenForwardsEvents(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	const endpoint = "inproc://suncet-remote-listen"
	events, err := Listen(ctx, endpoint, 1)
	if err != nil {
		t.Fatalf("Listen error: %v", err)
	}

	push, err := zmq4.NewSocket(zmq4.PUSH)
	if err != nil {
		t.Fatalf("socket: %v", err)
	}
	defer push.Close()
	if err := push.Connect(endpoint); err != nil {
		t.Fatalf("connect: %v", err)
	}

	before := DecodeFailures()
	if _, err := push.SendBytes([]byte{0xff, 0x00}, 0); err != nil {
		t.Fatalf("send garbage: %v", err)
	}
	payload, _ := cbor.Marshal(map[string]any{"type": "pause"})
	if _, err := push.SendBytes(payload, 0); err != nil {
		t.Fatalf("send: %v", err)
	}

	select {
	case event := <-events:
		if event.Kind != types.EventPause || event.Source != "remote" {
			t.Fatalf("unexpected event: %#v", event)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for remote event")
	}
	if DecodeFailures() != before+1 {
		t.Fatalf("expected one decode failure, got %d", DecodeFailures()-before)
	}

	cancel()
	select {
	case _, ok := <-events:
		if ok {
			t.Fatalf("expected channel to close after cancel")
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("listener did not stop after cancel")
	}
}

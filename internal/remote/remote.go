package remote

import (
	"context"
	"log"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/pebbe/zmq4"

	"suncet-viewer/internal/logging"
	"suncet-viewer/internal/types"
	"suncet-viewer/internal/wire"
)

const (
	recvTimeout = 250 * time.Millisecond
	recvBackoff = 100 * time.Millisecond
)

var decodeFailures atomic.Uint64

// Listen binds a PULL socket on endpoint and returns the control events
// scripts push to it, e.g. { "type": "step_forward" } encoded as CBOR.
// The channel is closed when ctx is done.
func Listen(ctx context.Context, endpoint string, logEvery int) (<-chan types.Event, error) {
	if logEvery < 1 {
		logEvery = 1
	}
	socket, err := zmq4.NewSocket(zmq4.PULL)
	if err != nil {
		return nil, err
	}
	if err := socket.SetRcvtimeo(recvTimeout); err != nil {
		_ = socket.Close()
		return nil, err
	}
	if err := socket.Bind(endpoint); err != nil {
		_ = socket.Close()
		return nil, err
	}

	out := make(chan types.Event, 16)
	go func() {
		defer close(out)
		defer socket.Close()

		for {
			select {
			case <-ctx.Done():
				return
			default:
			}

			msg, err := socket.RecvBytes(0)
			if err != nil {
				switch zmq4.AsErrno(err) {
				case zmq4.Errno(syscall.EAGAIN):
					continue
				case zmq4.ETERM:
					log.Printf("remote control stopped: %v", err)
					return
				}
				logEveryN(logEvery, "remote recv error: %v", err)
				select {
				case <-ctx.Done():
					return
				case <-time.After(recvBackoff):
				}
				continue
			}

			event, ok := decodeMessage(msg, logEvery)
			if !ok {
				continue
			}

			select {
			case <-ctx.Done():
				return
			case out <- event:
			}
		}
	}()

	return out, nil
}

func decodeMessage(msg []byte, logEvery int) (types.Event, bool) {
	event, err := wire.DecodeEvent(msg)
	if err != nil {
		decodeFailures.Add(1)
		logEveryN(logEvery, "remote decode error: %v", err)
		return types.Event{}, false
	}
	if event.Kind == types.EventTimerTick {
		logEveryN(logEvery, "remote ignoring timer_tick; ticks come from the player")
		return types.Event{}, false
	}
	event.Source = "remote"
	return event, true
}

// DecodeFailures counts remote messages that were not valid CBOR events.
func DecodeFailures() uint64 {
	return decodeFailures.Load()
}

var logCounter atomic.Uint64

func logEveryN(n int, format string, args ...any) {
	logging.EveryN(logCounter.Add(1), uint64(n), format, args...)
}

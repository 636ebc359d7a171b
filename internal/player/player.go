package player

import (
	"context"
	"log"
	"sync"
	"time"

	"suncet-viewer/internal/logging"
	"suncet-viewer/internal/types"
	"suncet-viewer/internal/viewer"
)

// A frame that fails on every tick is logged a few times, then every
// renderLogEvery failures.
const renderLogEvery = 100

// Subscriber receives every render result, in order, on the loop goroutine.
type Subscriber func(event types.Event, result types.RenderResult)

// Player owns the viewer context and serializes every event through one loop,
// so each render finishes before the next event is looked at.
type Player struct {
	events      chan types.Event
	subscribers []Subscriber
	metrics     Metrics

	mu     sync.RWMutex
	vctx   viewer.Context
	latest types.RenderResult
	has    bool
}

func New(vctx viewer.Context, subscribers ...Subscriber) *Player {
	return &Player{
		events:      make(chan types.Event, 64),
		subscribers: subscribers,
		vctx:        vctx,
	}
}

// Submit queues an event for the loop. It reports false when the queue is full.
func (p *Player) Submit(event types.Event) bool {
	select {
	case p.events <- event:
		p.metrics.eventsQueued.Add(1)
		return true
	default:
		p.metrics.eventsDropped.Add(1)
		return false
	}
}

func Interval(fps int) time.Duration {
	return time.Second / time.Duration(viewer.ClampFrameRate(fps))
}

// Run renders the initial frame and then processes events and timer ticks
// until ctx is cancelled.
func (p *Player) Run(ctx context.Context) error {
	p.handle(types.Event{Kind: types.EventRefresh})

	fps := p.Controls().FrameRate
	ticker := time.NewTicker(Interval(fps))
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event := <-p.events:
			p.handle(event)
			if rate := p.Controls().FrameRate; rate != fps {
				fps = rate
				ticker.Reset(Interval(fps))
				log.Printf("frame rate set to %d fps", fps)
			}
		case <-ticker.C:
			if p.Controls().State != types.Playing {
				continue
			}
			p.handle(types.Event{Kind: types.EventTimerTick})
		}
	}
}

func (p *Player) handle(event types.Event) {
	p.mu.RLock()
	vctx := p.vctx
	p.mu.RUnlock()

	start := time.Now()
	next, result := viewer.Apply(event, vctx)
	p.metrics.observe(result, time.Since(start))

	p.mu.Lock()
	p.vctx = next
	p.latest = result
	p.has = true
	p.mu.Unlock()

	if result.Error != nil {
		logging.EveryN(p.metrics.renderErrors.Load(), renderLogEvery, "render %s failed (%s): %s", result.Path, result.Error.Kind, result.Error.Message)
	}
	for _, sub := range p.subscribers {
		sub(event, result)
	}
}

func (p *Player) Latest() (types.RenderResult, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.latest, p.has
}

func (p *Player) Controls() types.Controls {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.vctx.Controls
}

func (p *Player) Tick() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.vctx.Tick
}

func (p *Player) Metrics() map[string]any {
	return p.metrics.snapshot()
}

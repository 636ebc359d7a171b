package player

import (
	"context"
	"sync"
	"testing"
	"time"

	"suncet-viewer/internal/catalog"
	"suncet-viewer/internal/types"
	"suncet-viewer/internal/viewer"
)

type constDecoder struct{}

func (constDecoder) Load(path string) (types.Frame, error) {
	f := types.NewFrame(1, 1, 1)
	f.Path = path
	return f, nil
}

type recorder struct {
	mu      sync.Mutex
	events  []types.Event
	results []types.RenderResult
}

func (r *recorder) record(event types.Event, result types.RenderResult) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	r.results = append(r.results, result)
}

func (r *recorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.results)
}

func newPlayer(t *testing.T, state types.PlayState, fps int) (*Player, *recorder) {
	t.Helper()
	cat, err := catalog.FromPaths([]string{"f0.jp2", "f1.jp2", "f2.jp2"})
	if err != nil {
		t.Fatalf("FromPaths error: %v", err)
	}
	vctx := viewer.NewContext(cat, constDecoder{}, fps)
	vctx.Controls.State = state
	rec := &recorder{}
	return New(vctx, rec.record), rec
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("condition not met before deadline")
}

func TestStepForwardWhilePaused(t *testing.T) {
	p, rec := newPlayer(t, types.Paused, viewer.MaxFrameRate)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go p.Run(ctx)

	p.Submit(types.Event{Kind: types.EventStepForward})
	p.Submit(types.Event{Kind: types.EventStepForward})
	waitFor(t, func() bool { return rec.count() >= 3 })

	latest, ok := p.Latest()
	if !ok || latest.Path != "f2.jp2" || latest.Tick != 2 {
		t.Fatalf("unexpected latest render: %#v", latest)
	}

	time.Sleep(150 * time.Millisecond)
	if p.Tick() != 2 {
		t.Fatalf("paused player advanced to tick %d", p.Tick())
	}
	if rec.count() != 3 {
		t.Fatalf("paused player rendered on timer: %d renders", rec.count())
	}
}

func TestPlayingAdvances(t *testing.T) {
	p, rec := newPlayer(t, types.Playing, viewer.MaxFrameRate)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go p.Run(ctx)

	waitFor(t, func() bool { return p.Tick() >= 3 })

	p.Submit(types.Event{Kind: types.EventPause})
	waitFor(t, func() bool { return p.Controls().State == types.Paused })
	paused := p.Tick()
	time.Sleep(150 * time.Millisecond)
	if p.Tick() != paused {
		t.Fatalf("tick moved after pause: %d -> %d", paused, p.Tick())
	}

	rec.mu.Lock()
	first := rec.events[0]
	rec.mu.Unlock()
	if first.Kind != types.EventRefresh {
		t.Fatalf("expected initial refresh, got %s", first.Kind)
	}
}

func TestFrameRateChangeKeepsTick(t *testing.T) {
	p, _ := newPlayer(t, types.Paused, 5)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go p.Run(ctx)

	p.Submit(types.Event{Kind: types.EventStepForward})
	p.Submit(types.Event{Kind: types.EventSetFrameRate, FPS: 0})
	waitFor(t, func() bool { return p.Controls().FrameRate == viewer.MinFrameRate })
	if p.Tick() != 1 {
		t.Fatalf("unexpected tick after rate change: %d", p.Tick())
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	p, _ := newPlayer(t, types.Paused, 10)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- p.Run(ctx) }()
	cancel()
	select {
	case err := <-done:
		if err != context.Canceled {
			t.Fatalf("unexpected error: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("Run did not stop")
	}
}

func TestInterval(t *testing.T) {
	if Interval(10) != 100*time.Millisecond {
		t.Fatalf("unexpected interval: %v", Interval(10))
	}
	if Interval(1000) != time.Second/30 {
		t.Fatalf("interval not clamped: %v", Interval(1000))
	}
}

func TestSubmitDropsWhenFull(t *testing.T) {
	p, _ := newPlayer(t, types.Paused, 10)
	for i := 0; i < cap(p.events); i++ {
		if !p.Submit(types.Event{Kind: types.EventRefresh}) {
			t.Fatalf("submit %d rejected", i)
		}
	}
	if p.Submit(types.Event{Kind: types.EventRefresh}) {
		t.Fatalf("expected full queue to reject")
	}
	if p.Metrics()["events_dropped_total"] != uint64(1) {
		t.Fatalf("unexpected metrics: %v", p.Metrics())
	}
}

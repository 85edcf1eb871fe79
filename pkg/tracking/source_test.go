package tracking

import (
	"errors"
	"math"
	"testing"
	"time"
)

var t0 = time.Date(2025, 6, 1, 18, 0, 0, 0, time.UTC)

func TestResolve_PointerWhenNoFeed(t *testing.T) {
	src := NewSource(DefaultConfig(), nil)

	r := src.Resolve(t0, Pointer{X: 480, Y: 270}, 1920, 1080, 0)

	if r.Input != InputPointer {
		t.Errorf("Expected pointer input, got %s", r.Input)
	}
	if r.X != 0.25 || r.Y != 0.25 {
		t.Errorf("Expected (0.25,0.25), got (%v,%v)", r.X, r.Y)
	}
	if r.Z != 1.0 {
		t.Errorf("Expected z=1 for pointer input, got %v", r.Z)
	}
	if !errors.Is(r.Err, ErrNoSignal) {
		t.Errorf("Expected ErrNoSignal, got %v", r.Err)
	}
}

func TestResolve_PointerClamped(t *testing.T) {
	src := NewSource(DefaultConfig(), nil)

	r := src.Resolve(t0, Pointer{X: -50, Y: 5000}, 1920, 1080, 0)
	if r.X != 0 || r.Y != 1 {
		t.Errorf("Expected clamped (0,1), got (%v,%v)", r.X, r.Y)
	}

	r = src.Resolve(t0, Pointer{X: 10, Y: 10}, 0, 0, 0)
	if r.X != 0 || r.Y != 0 {
		t.Errorf("Expected zero viewport to give (0,0), got (%v,%v)", r.X, r.Y)
	}
}

func TestResolve_LiveFeedWins(t *testing.T) {
	feed := NewFeed()
	feed.Push(Sample{X: 0.7, Y: 0.4, Z: 0.3, Tracking: true, At: t0})
	src := NewSource(DefaultConfig(), feed)

	r := src.Resolve(t0.Add(100*time.Millisecond), Pointer{X: 0, Y: 0}, 100, 100, 0)

	if r.Input != InputFeed {
		t.Errorf("Expected feed input, got %s", r.Input)
	}
	if r.X != 0.7 || r.Y != 0.4 || r.Z != 0.3 {
		t.Errorf("Expected feed sample passed through, got (%v,%v,%v)", r.X, r.Y, r.Z)
	}
	if r.Status != SignalLive || r.Err != nil {
		t.Errorf("Expected live status without error, got %v/%v", r.Status, r.Err)
	}
}

func TestResolve_StaleFeedFallsBackSilently(t *testing.T) {
	cfg := DefaultConfig()
	feed := NewFeed()
	feed.Push(Sample{X: 0.9, Y: 0.9, Z: 0.5, Tracking: true, At: t0})
	src := NewSource(cfg, feed)

	r := src.Resolve(t0.Add(cfg.StaleAfter+time.Millisecond), Pointer{X: 50, Y: 50}, 100, 100, 0)

	if r.Input != InputPointer {
		t.Errorf("Expected pointer fallback, got %s", r.Input)
	}
	if r.Status != SignalStale {
		t.Errorf("Expected stale status, got %v", r.Status)
	}
	if !errors.Is(r.Err, ErrSignalTimeout) {
		t.Errorf("Expected ErrSignalTimeout, got %v", r.Err)
	}
}

func TestResolve_IdleOscillation(t *testing.T) {
	cfg := DefaultConfig()
	cfg.IdleEnabled = true
	feed := NewFeed()
	feed.Push(Sample{X: 0.1, Y: 0.1, Z: 0, Tracking: false, At: t0})
	src := NewSource(cfg, feed)

	frame := 200
	r := src.Resolve(t0, Pointer{}, 100, 100, frame)

	want := 0.5 + 0.08*math.Sin(float64(frame)/(math.Pi*50))
	if r.Input != InputIdle {
		t.Errorf("Expected idle input, got %s", r.Input)
	}
	if math.Abs(r.X-want) > 1e-9 {
		t.Errorf("Expected idle x %v, got %v", want, r.X)
	}
	if r.Y != 0.5 || r.Z != 1 {
		t.Errorf("Expected idle y=0.5 z=1, got %v/%v", r.Y, r.Z)
	}
}

func TestResolve_IdleNeedsLiveSignal(t *testing.T) {
	cfg := DefaultConfig()
	cfg.IdleEnabled = true
	src := NewSource(cfg, NewFeed())

	r := src.Resolve(t0, Pointer{X: 10, Y: 10}, 100, 100, 300)
	if r.Input != InputPointer {
		t.Errorf("Expected pointer when signal absent, got %s", r.Input)
	}
}

func TestFeed_DropsOutOfOrder(t *testing.T) {
	feed := NewFeed()
	feed.Push(Sample{X: 0.5, At: t0.Add(time.Second)})
	feed.Push(Sample{X: 0.1, At: t0})

	s, status := feed.Latest(t0.Add(time.Second), time.Second)
	if s.X != 0.5 {
		t.Errorf("Expected newer sample kept, got x=%v", s.X)
	}
	if status != SignalLive {
		t.Errorf("Expected live, got %v", status)
	}
	received, dropped := feed.Stats()
	if received != 1 || dropped != 1 {
		t.Errorf("Expected 1 received 1 dropped, got %d/%d", received, dropped)
	}
}

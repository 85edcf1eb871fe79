package counter

import (
	"testing"
	"time"

	"github.com/teslashibe/reactive-signs/pkg/timer"
)

var epoch = time.Date(2025, 6, 1, 18, 0, 0, 0, time.UTC)

func TestSequencer_FullCycle(t *testing.T) {
	loop := timer.New(epoch)
	s := NewSequencer(loop, "surface-0", DefaultTickInterval)
	s.Start()

	if s.Value() != 9 || s.Mode() != Auto {
		t.Fatalf("Expected 9/auto initially, got %d/%s", s.Value(), s.Mode())
	}

	want := []int{8, 7, 6, 5, 4, 3, 2, 1, 0, 9}
	for i, w := range want {
		loop.Advance(epoch.Add(time.Duration(i+1) * DefaultTickInterval))
		if s.Value() != w {
			t.Errorf("tick %d: expected %d, got %d", i+1, w, s.Value())
		}
	}
	if s.Ticks() != 10 {
		t.Errorf("Expected 10 ticks, got %d", s.Ticks())
	}
}

func TestSequencer_ManualStopsTicks(t *testing.T) {
	loop := timer.New(epoch)
	s := NewSequencer(loop, "surface-1", DefaultTickInterval)
	s.Start()

	loop.Advance(epoch.Add(2 * time.Second))
	if s.Value() != 8 {
		t.Fatalf("Expected 8 after one tick, got %d", s.Value())
	}

	s.Step(Advance)
	if s.Value() != 7 || s.Mode() != Manual {
		t.Errorf("Expected 7/manual after step, got %d/%s", s.Value(), s.Mode())
	}
	if loop.Pending("surface-1") != 0 {
		t.Errorf("Expected tick timer cleared, got %d pending", loop.Pending("surface-1"))
	}

	loop.Advance(epoch.Add(20 * time.Second))
	if s.Value() != 7 {
		t.Errorf("Expected no automatic change in manual mode, got %d", s.Value())
	}

	s.Start()
	loop.Advance(epoch.Add(40 * time.Second))
	if s.Value() != 7 {
		t.Errorf("Expected Start to be ignored in manual mode, got %d", s.Value())
	}
}

func TestSequencer_StepWrap(t *testing.T) {
	loop := timer.New(epoch)
	s := NewSequencer(loop, "surface-2", DefaultTickInterval)

	s.Step(Rewind)
	if s.Value() != 0 {
		t.Errorf("Expected 9 rewind to wrap to 0, got %d", s.Value())
	}
	s.Step(Advance)
	if s.Value() != 9 {
		t.Errorf("Expected 0 advance to wrap to 9, got %d", s.Value())
	}
}

func TestSequencer_StartTwiceSingleTimer(t *testing.T) {
	loop := timer.New(epoch)
	s := NewSequencer(loop, "surface-3", DefaultTickInterval)
	s.Start()
	s.Start()

	if loop.Pending("surface-3") != 1 {
		t.Errorf("Expected exactly one tick timer, got %d", loop.Pending("surface-3"))
	}
	s.Stop()
	if loop.Pending("surface-3") != 0 {
		t.Errorf("Expected no timer after Stop, got %d", loop.Pending("surface-3"))
	}
}

func TestCountdown(t *testing.T) {
	c := NewCountdown(DefaultCountdownLimit, 3)
	if c.String() != "000" {
		t.Errorf("Expected 000, got %s", c.String())
	}

	for i := 0; i < 7; i++ {
		c.Tick()
	}
	if c.String() != "007" {
		t.Errorf("Expected 007, got %s", c.String())
	}
	if d, ok := c.Digit(2); !ok || d != 7 {
		t.Errorf("Expected digit 2 to be 7, got %d/%v", d, ok)
	}
	if d, ok := c.Digit(0); !ok || d != 0 {
		t.Errorf("Expected digit 0 to be 0, got %d/%v", d, ok)
	}
	if _, ok := c.Digit(3); ok {
		t.Error("Expected no digit past the width")
	}

	for i := 0; i < 500; i++ {
		c.Tick()
	}
	if c.Value() != 150 {
		t.Errorf("Expected saturation at 150, got %d", c.Value())
	}
	if c.String() != "150" {
		t.Errorf("Expected 150, got %s", c.String())
	}
}

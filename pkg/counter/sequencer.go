// Package counter provides the numeral sequences the posters render: the
// per-surface 9→0 countdown digit and the installation-wide 0..150 count.
package counter

import (
	"time"

	"github.com/teslashibe/reactive-signs/pkg/timer"
)

// Default timing.
const (
	DefaultTickInterval = 2 * time.Second
	InitialValue        = 9
	MaxValue            = 9
)

// Mode is the sequencer state
type Mode int

const (
	// Auto advances on a timer.
	Auto Mode = iota
	// Manual only changes on explicit steps; the timer is gone for good.
	Manual
)

func (m Mode) String() string {
	if m == Manual {
		return "manual"
	}
	return "auto"
}

// Direction of a manual step
type Direction int

const (
	// Advance moves the numeral the same way the timer does (9→8→…→0→9).
	Advance Direction = iota
	// Rewind moves against the timer (0→1→…→9→0).
	Rewind
)

// Sequencer holds one surface's numeral. It starts at 9 in Auto mode and
// decrements every tick with 0 wrapping to 9.
type Sequencer struct {
	loop     *timer.Loop
	owner    string
	interval time.Duration

	value int
	mode  Mode
	tick  timer.ID
	ticks int
}

// NewSequencer creates a sequencer whose timer is attributed to owner on
// loop. Call Start to begin ticking.
func NewSequencer(loop *timer.Loop, owner string, interval time.Duration) *Sequencer {
	if interval <= 0 {
		interval = DefaultTickInterval
	}
	return &Sequencer{
		loop:     loop,
		owner:    owner,
		interval: interval,
		value:    InitialValue,
		mode:     Auto,
	}
}

// Start begins automatic ticking. It does nothing in Manual mode or when
// already started.
func (s *Sequencer) Start() {
	if s.mode != Auto || s.tick != 0 {
		return
	}
	s.tick = s.loop.Every(s.owner, s.interval, s.onTick)
}

func (s *Sequencer) onTick() {
	s.value = decrement(s.value)
	s.ticks++
}

// Step switches to Manual (cancelling the timer irrevocably) and applies
// one step in the requested direction.
func (s *Sequencer) Step(dir Direction) {
	s.cancel()
	s.mode = Manual
	if dir == Rewind {
		s.value = increment(s.value)
	} else {
		s.value = decrement(s.value)
	}
}

// Stop cancels the timer without changing the mode.
func (s *Sequencer) Stop() {
	s.cancel()
}

func (s *Sequencer) cancel() {
	if s.tick != 0 {
		s.loop.Cancel(s.tick)
		s.tick = 0
	}
}

// Value returns the current numeral
func (s *Sequencer) Value() int {
	return s.value
}

// Mode returns Auto or Manual
func (s *Sequencer) Mode() Mode {
	return s.mode
}

// Ticks returns how many automatic ticks have been applied
func (s *Sequencer) Ticks() int {
	return s.ticks
}

func decrement(v int) int {
	if v > 0 {
		return v - 1
	}
	return MaxValue
}

func increment(v int) int {
	if v < MaxValue {
		return v + 1
	}
	return 0
}

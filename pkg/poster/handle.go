package poster

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/teslashibe/reactive-signs/internal/log"
	"github.com/teslashibe/reactive-signs/pkg/counter"
	"github.com/teslashibe/reactive-signs/pkg/timer"
)

// FadeInFrames is how many frames the startup fade-in overlay lasts.
const FadeInFrames = 255

// HandleConfig tunes a handle
type HandleConfig struct {
	// TickInterval is the counter sequencer cadence.
	TickInterval time.Duration
}

// DefaultHandleConfig returns the standard handle settings
func DefaultHandleConfig() HandleConfig {
	return HandleConfig{TickInterval: counter.DefaultTickInterval}
}

// Handle hosts one module instance on one surface. It owns the surface's
// counter and every timer the module schedules; all of them are
// attributed to ID on the loop.
//
// Handles are driven from the loop goroutine only.
type Handle struct {
	ID      string
	Poster  string
	Index   int
	Surface int

	module Module
	loop   *timer.Loop
	seq    *counter.Sequencer
	logger *slog.Logger

	override    int
	hasOverride bool

	fadeFrames int
	ready      bool
	failed     bool
	failure    error
	disposed   bool
}

// NewHandle wraps module m for surface on loop. The module is not
// initialized until Init.
func NewHandle(loop *timer.Loop, def string, index, surface int, m Module, cfg HandleConfig) *Handle {
	id := uuid.NewString()
	return &Handle{
		ID:      id,
		Poster:  def,
		Index:   index,
		Surface: surface,
		module:  m,
		loop:    loop,
		seq:     counter.NewSequencer(loop, id, cfg.TickInterval),
		logger:  log.Component("poster").With("poster", def, "surface", surface, "handle", id[:8]),
	}
}

// Init initializes the module with v and starts the counter. A failure
// or panic is returned as a ModuleLoadError and the handle stays unready.
func (h *Handle) Init(ctx context.Context, v View) (err error) {
	v = h.decorate(v)
	defer func() {
		if r := recover(); r != nil {
			err = &ModuleLoadError{Poster: h.Poster, Index: h.Index, Surface: h.Surface, Err: recovered(r)}
		}
	}()
	env := Env{View: v, Timers: scopedTimers{loop: h.loop, owner: h.ID}}
	if err := h.module.Init(ctx, env); err != nil {
		return &ModuleLoadError{Poster: h.Poster, Index: h.Index, Surface: h.Surface, Err: err}
	}
	h.ready = true
	h.seq.Start()
	return nil
}

// Update forwards one frame to the module. Frames before Init completes
// are suppressed. A panic marks the handle failed; it then renders
// nothing until disposed.
func (h *Handle) Update(v View, frames int) {
	if h.fadeFrames < FadeInFrames {
		h.fadeFrames += max(frames, 1)
	}
	if !h.ready || h.failed || h.disposed {
		return
	}
	v = h.decorate(v)
	h.guard("update", func() { h.module.Update(v, frames) })
}

// Resize forwards a viewport change to the module
func (h *Handle) Resize(v View) {
	if !h.ready || h.failed || h.disposed {
		return
	}
	v = h.decorate(v)
	h.guard("resize", func() { h.module.Resize(v) })
}

// Guard runs fn with the module's panic protection. Renderers use it
// around module draw calls.
func (h *Handle) Guard(op string, fn func()) {
	if !h.ready || h.failed || h.disposed {
		return
	}
	h.guard(op, fn)
}

func (h *Handle) guard(op string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			h.failed = true
			h.failure = recovered(r)
			h.logger.Warn("module failed", "op", op, "error", h.failure)
		}
	}()
	fn()
}

func (h *Handle) decorate(v View) View {
	v.Counter = h.Counter()
	v.Exhibition = h.hasOverride
	return v
}

// Dispose stops the counter, disposes the module and clears every timer
// still attributed to the handle. Safe to call more than once.
func (h *Handle) Dispose() (err error) {
	if h.disposed {
		return nil
	}
	h.disposed = true
	h.seq.Stop()

	defer func() {
		if r := recover(); r != nil {
			err = &ResourceTeardownError{Handle: h.ID, Poster: h.Poster, Surface: h.Surface, Err: recovered(r)}
		}
		if n := h.loop.CancelOwner(h.ID); n > 0 {
			h.logger.Debug("cleared module timers", "count", n)
		}
	}()
	if derr := h.module.Dispose(); derr != nil {
		return &ResourceTeardownError{Handle: h.ID, Poster: h.Poster, Surface: h.Surface, Err: derr}
	}
	return nil
}

// Step applies a manual counter step. Ignored while an override is set.
func (h *Handle) Step(dir counter.Direction) {
	if h.hasOverride {
		return
	}
	h.seq.Step(dir)
}

// SetOverride forces the numeral the surface shows, or clears it.
func (h *Handle) SetOverride(n int, ok bool) {
	h.override = n
	h.hasOverride = ok
}

// Counter returns the numeral the module renders
func (h *Handle) Counter() int {
	if h.hasOverride {
		return h.override
	}
	return h.seq.Value()
}

// CounterMode returns the sequencer mode
func (h *Handle) CounterMode() counter.Mode {
	return h.seq.Mode()
}

// FadeIn returns the startup overlay opacity, 1 at first frame and 0
// after FadeInFrames.
func (h *Handle) FadeIn() float64 {
	if h.fadeFrames >= FadeInFrames {
		return 0
	}
	return 1 - float64(h.fadeFrames)/FadeInFrames
}

// Module returns the hosted module
func (h *Handle) Module() Module {
	return h.module
}

// Ready reports whether Init succeeded
func (h *Handle) Ready() bool {
	return h.ready
}

// Failed reports whether the module panicked, and why
func (h *Handle) Failed() (bool, error) {
	return h.failed, h.failure
}

// Disposed reports whether Dispose ran
func (h *Handle) Disposed() bool {
	return h.disposed
}

package exhibition

import (
	"time"

	"github.com/teslashibe/reactive-signs/pkg/counter"
	"github.com/teslashibe/reactive-signs/pkg/input"
	"github.com/teslashibe/reactive-signs/pkg/tracking"
)

// FrameInput is everything the display gathered for one frame
type FrameInput struct {
	Now time.Time

	// ViewportW and ViewportH are the poster area in pixels.
	ViewportW, ViewportH float64

	// Pointer is relative to the poster area.
	Pointer tracking.Pointer

	// Events are keys that went down this frame.
	Events []input.Event

	// Fullscreen is the window mode this frame.
	Fullscreen bool

	FPS float64
}

// Frame runs one frame step: timers and posted work, input, position,
// shared state, projection, then resize and update of every handle.
// Every surface sees views built from the same snapshot.
func (a *App) Frame(in FrameInput) {
	a.loop.Advance(in.Now)
	a.fps = in.FPS

	a.SetFullscreen(in.Fullscreen)
	for _, act := range a.mapper.MapAll(in.Events) {
		a.apply(act)
	}

	resized := a.state.SetViewport(in.ViewportW, in.ViewportH)

	w, h := a.state.Viewport()
	a.reading = a.source.Resolve(in.Now, in.Pointer, w, h, a.frame)
	a.state.SetSignal(a.reading.Depth, a.reading.Tracking)
	a.state.Update(a.reading.X, a.reading.Y, a.reading.Z)

	a.project()

	if a.scheduler != nil {
		handles := a.scheduler.Handles()
		if resized {
			a.debugLog("viewport resized", "w", w, "h", h)
			for _, hd := range handles {
				if hd.Surface < len(a.views) {
					hd.Resize(a.views[hd.Surface])
				}
			}
		}
		for _, hd := range handles {
			if hd.Surface < len(a.views) {
				hd.Update(a.views[hd.Surface], 1)
			}
		}
	}

	a.frame++
	a.publish()
}

// apply handles one operator action
func (a *App) apply(act input.Action) {
	if !input.Allowed(act, a.exhibition) {
		a.debugLog("action ignored in exhibition mode", "action", act.Kind.String())
		return
	}

	switch act.Kind {
	case input.SelectPoster:
		if err := a.scheduler.Transition(act.Poster); err != nil {
			a.logger.Warn("poster selection failed", "error", err)
		}
	case input.CounterAdvance:
		a.scheduler.StepCounters(counter.Advance)
	case input.CounterRewind:
		a.scheduler.StepCounters(counter.Rewind)
	case input.ToggleDebug:
		a.debugOn = !a.debugOn
	case input.StartRecording:
		if err := a.recorder.Start(); err != nil {
			a.logger.Warn("recorder start failed", "error", err)
		}
	case input.StopRecording:
		if err := a.recorder.Stop(); err != nil {
			a.logger.Warn("recorder stop failed", "error", err)
		}
	case input.RequestFullscreen, input.LeaveFullscreen:
		if a.fullscreen != nil {
			a.fullscreen(act.Kind == input.RequestFullscreen)
		}
	}
}

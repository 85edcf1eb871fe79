// Package poster defines the contract every visualization module
// satisfies and the per-surface handle that hosts one module instance.
package poster

import (
	"context"
	"time"

	"github.com/teslashibe/reactive-signs/pkg/geometry"
	"github.com/teslashibe/reactive-signs/pkg/timer"
)

// View is the read-only frame input a module receives: the surface
// projection of the shared view state plus the numeral to render.
type View struct {
	geometry.View

	// Counter is the numeral (0-9) this surface shows.
	Counter int
	// Exhibition is true when the numeral comes from an external override.
	Exhibition bool
}

// Timers schedules callbacks on the frame loop. Every timer a module
// creates through it is cleared when its handle is disposed.
type Timers interface {
	Every(interval time.Duration, fn func()) timer.ID
	After(delay time.Duration, fn func()) timer.ID
	Cancel(id timer.ID) bool
}

// Env is what a module gets at initialization.
type Env struct {
	View   View
	Timers Timers
}

// Module is one visualization instance bound to a single surface.
//
// Init runs once on the frame loop before the first Update; an error
// fails the whole poster load. Update runs once per frame and must treat
// the view as read-only. Resize runs when the viewport pixel size changes.
// Dispose releases everything the instance holds.
type Module interface {
	Init(ctx context.Context, env Env) error
	Update(view View, frames int)
	Resize(view View)
	Dispose() error
}

// Factory creates the module instance for one surface.
type Factory func(surface int) Module

// Definition describes a selectable poster. Load prepares resources
// shared by every surface instance and may block; it always runs off
// the frame loop.
type Definition struct {
	Name string
	Load func(ctx context.Context) (Factory, error)
}

// Static returns a Definition whose Load has nothing to prepare.
func Static(name string, f Factory) Definition {
	return Definition{
		Name: name,
		Load: func(context.Context) (Factory, error) { return f, nil },
	}
}

type scopedTimers struct {
	loop  *timer.Loop
	owner string
}

func (s scopedTimers) Every(interval time.Duration, fn func()) timer.ID {
	return s.loop.Every(s.owner, interval, fn)
}

func (s scopedTimers) After(delay time.Duration, fn func()) timer.ID {
	return s.loop.After(s.owner, delay, fn)
}

func (s scopedTimers) Cancel(id timer.ID) bool {
	return s.loop.Cancel(id)
}

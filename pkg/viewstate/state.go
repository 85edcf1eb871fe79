// Package viewstate holds the shared viewer position and viewport layout
// that every active poster instance reads each frame.
//
// A State is created once by the App and passed by reference to whoever
// writes it (the position source) and whoever snapshots it (the frame
// step). Modules only ever see per-surface projections of a Snapshot.
package viewstate

import (
	"math"

	"github.com/teslashibe/reactive-signs/pkg/geometry"
)

// DefaultSmoothing is the weight kept from the previous position each update.
const DefaultSmoothing = 0.9

// State is the single source of truth for where the viewer is.
// It is not safe for concurrent use; it lives on the loop goroutine.
type State struct {
	factor float64

	raw    geometry.Vec3
	normal geometry.Vec3

	viewportW float64
	viewportH float64
	surfaces  []geometry.Surface

	depth    *geometry.Depth
	tracking bool
}

// New creates a State with the given smoothing factor and a fixed number
// of surfaces. Factors outside [0,1) fall back to DefaultSmoothing.
func New(factor float64, surfaces int) *State {
	if !(factor >= 0 && factor < 1) {
		factor = DefaultSmoothing
	}
	if surfaces < 1 {
		surfaces = 1
	}
	return &State{
		factor:   factor,
		surfaces: make([]geometry.Surface, surfaces),
	}
}

// Update folds a new input sample into the smoothed position. x and y are
// clamped to [0,1] first; z is passed through unclamped.
func (s *State) Update(x, y, z float64) {
	x = geometry.Clamp01(x)
	y = geometry.Clamp01(y)
	if math.IsNaN(z) {
		z = s.normal.Z
	}

	f := s.factor
	s.normal.X = s.normal.X*f + x*(1-f)
	s.normal.Y = s.normal.Y*f + y*(1-f)
	s.normal.Z = s.normal.Z*f + z*(1-f)

	// Guard against rounding drift past the bounds.
	s.normal.X = geometry.Clamp01(s.normal.X)
	s.normal.Y = geometry.Clamp01(s.normal.Y)

	s.raw = geometry.Vec3{
		X: s.normal.X * s.viewportW,
		Y: s.normal.Y * s.viewportH,
		Z: s.normal.Z,
	}
}

// SetSignal records the depth frame and viewer flag of the current input.
func (s *State) SetSignal(depth *geometry.Depth, tracking bool) {
	s.depth = depth
	s.tracking = tracking
}

// SetViewport records a new viewport size and recomputes the surface
// layout in place. It reports whether the size changed.
func (s *State) SetViewport(w, h float64) bool {
	if w < 0 {
		w = 0
	}
	if h < 0 {
		h = 0
	}
	changed := w != s.viewportW || h != s.viewportH
	s.viewportW, s.viewportH = w, h
	geometry.Layout(s.surfaces, w, h)
	s.raw.X = s.normal.X * w
	s.raw.Y = s.normal.Y * h
	return changed
}

// Normalized returns the smoothed normalized position.
func (s *State) Normalized() geometry.Vec3 {
	return s.normal
}

// Raw returns the smoothed position in viewport pixels.
func (s *State) Raw() geometry.Vec3 {
	return s.raw
}

// Viewport returns the viewport size in pixels.
func (s *State) Viewport() (w, h float64) {
	return s.viewportW, s.viewportH
}

// SurfaceCount returns the fixed number of surfaces.
func (s *State) SurfaceCount() int {
	return len(s.surfaces)
}

// Snapshot returns a frame-consistent copy. Later updates never change a
// snapshot already handed out.
func (s *State) Snapshot() geometry.Snapshot {
	surfaces := make([]geometry.Surface, len(s.surfaces))
	copy(surfaces, s.surfaces)
	return geometry.Snapshot{
		Position:  s.raw,
		Normal:    s.normal,
		ViewportW: s.viewportW,
		ViewportH: s.viewportH,
		Surfaces:  surfaces,
		Depth:     s.depth,
		Tracking:  s.tracking,
	}
}

// Package geometry maps the installation viewport onto its display
// surfaces and remaps the global viewer position into each surface's own
// coordinate space.
package geometry

import (
	"fmt"
	"math"
)

// DefaultOffset is the fraction each surface's window is shifted by.
const DefaultOffset = 0.2

// Vec3 is a position. X and Y are spatial, Z carries depth or confidence.
type Vec3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Surface is one display segment in viewport pixel space.
type Surface struct {
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	Width   float64 `json:"w"`
	Height  float64 `json:"h"`
	CenterX float64 `json:"cntX"`
	CenterY float64 `json:"cntY"`
}

// Depth is a raw depth frame forwarded from the tracking feed.
type Depth struct {
	Width  int    `json:"w"`
	Height int    `json:"h"`
	Data   []byte `json:"-"`
}

// ConfigurationError reports layout settings that produce degenerate
// geometry. The resolver still returns clamped values alongside it.
type ConfigurationError struct {
	Field  string
	Value  float64
	Reason string
}

// Error implements the error interface.
func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("geometry: invalid %s %v: %s", e.Field, e.Value, e.Reason)
}

// Validate checks a surface count and offset fraction. Every window must
// have positive width (offset in [0, 0.5)) and the windows together must
// fit the global axis, 2*offset*(N-1) < 1; otherwise the last surfaces
// stop short of their local 1.
func Validate(surfaces int, offset float64) error {
	if surfaces < 1 {
		return &ConfigurationError{Field: "surfaces", Value: float64(surfaces), Reason: "at least one surface required"}
	}
	if math.IsNaN(offset) || offset < 0 || offset >= 0.5 {
		return &ConfigurationError{Field: "offset", Value: offset, Reason: "must be in [0, 0.5)"}
	}
	if span := 2 * offset * float64(surfaces-1); span >= 1 {
		_, end := Window(surfaces-1, offset)
		return &ConfigurationError{
			Field:  "offset",
			Value:  offset,
			Reason: fmt.Sprintf("%d surfaces need 2*offset*(N-1) < 1, got %.3f (surface %d ends at %.3f)", surfaces, span, surfaces-1, end),
		}
	}
	return nil
}

// Window returns the slice of the global normalized x axis that surface i
// sweeps across.
func Window(i int, offset float64) (start, end float64) {
	start = float64(i) * offset
	end = 1 - 2*offset + float64(i)*offset
	return start, end
}

// Remap converts the global normalized x into surface i's local [0,1]
// coordinate. A degenerate window yields 0 and a ConfigurationError.
func Remap(x float64, i int, offset float64) (float64, error) {
	start, end := Window(i, offset)
	if !(end > start) {
		return 0, &ConfigurationError{
			Field:  "offset",
			Value:  offset,
			Reason: fmt.Sprintf("surface %d window [%.3f, %.3f] is empty", i, start, end),
		}
	}
	if math.IsNaN(x) {
		x = start
	}
	clamped := Clamp(x, start, end)
	return (clamped - start) / (end - start), nil
}

// Clamp limits v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Clamp01 limits v to [0, 1]; NaN becomes 0.
func Clamp01(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return Clamp(v, 0, 1)
}

// Fit returns the largest area inside a window that keeps the aspect of
// n pages of pageW x pageH laid side by side, plus its offset inside the
// window (letterboxing).
func Fit(windowW, windowH, pageW, pageH float64, n int) (x, y, w, h float64) {
	if n < 1 {
		n = 1
	}
	if windowW <= 0 || windowH <= 0 || pageW <= 0 || pageH <= 0 {
		return 0, 0, math.Max(windowW, 0), math.Max(windowH, 0)
	}
	aspect := float64(n) * pageW / pageH
	if windowW/windowH > aspect {
		h = windowH
		w = math.Floor(windowH * aspect)
	} else {
		w = windowW
		h = math.Floor(windowW / aspect)
	}
	return math.Floor((windowW - w) / 2), math.Floor((windowH - h) / 2), w, h
}

// Split divides a viewport of w x h pixels into n equal columns.
func Split(w, h float64, n int) []Surface {
	if n < 1 {
		return nil
	}
	out := make([]Surface, n)
	Layout(out, w, h)
	return out
}

// Layout recomputes surfaces in place for a new viewport size. The slice
// length and order never change.
func Layout(surfaces []Surface, w, h float64) {
	n := len(surfaces)
	if n == 0 {
		return
	}
	sw := math.Floor(w / float64(n))
	for i := range surfaces {
		s := &surfaces[i]
		s.Width = sw
		s.Height = h
		s.X = sw * float64(i)
		s.Y = 0
		s.CenterX = s.X + sw/2
		s.CenterY = h / 2
	}
}

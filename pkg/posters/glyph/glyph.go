// Package glyph lays out seven-segment numerals as rectangles so the
// posters can draw digits without font assets.
package glyph

// Rect is an axis-aligned box
type Rect struct {
	X, Y, W, H float64
}

// Contains reports whether (x, y) lies inside r
func (r Rect) Contains(x, y float64) bool {
	return x >= r.X && x < r.X+r.W && y >= r.Y && y < r.Y+r.H
}

// Segment order: top, upper right, lower right, bottom, lower left,
// upper left, middle.
const (
	Top = iota
	UpperRight
	LowerRight
	Bottom
	LowerLeft
	UpperLeft
	Middle
	segmentCount
)

var digits = [10][segmentCount]bool{
	{true, true, true, true, true, true, false},
	{false, true, true, false, false, false, false},
	{true, true, false, true, true, false, true},
	{true, true, true, true, false, false, true},
	{false, true, true, false, false, true, true},
	{true, false, true, true, false, true, true},
	{true, false, true, true, true, true, true},
	{true, true, true, false, false, false, false},
	{true, true, true, true, true, true, true},
	{true, true, true, true, false, true, true},
}

// Lit reports whether segment s is on for digit d. Out of range digits
// light nothing.
func Lit(d, s int) bool {
	if d < 0 || d > 9 || s < 0 || s >= segmentCount {
		return false
	}
	return digits[d][s]
}

// Segments returns the lit segments of digit d inside box, with stroke
// thickness t.
func Segments(d int, box Rect, t float64) []Rect {
	all := Layout(box, t)
	out := make([]Rect, 0, segmentCount)
	for s, r := range all {
		if Lit(d, s) {
			out = append(out, r)
		}
	}
	return out
}

// Layout returns all seven segment boxes inside box
func Layout(box Rect, t float64) [segmentCount]Rect {
	if t <= 0 || t*3 > box.H || t*2 > box.W {
		t = min(box.W/2, box.H/3) * 0.5
	}
	half := (box.H - t) / 2
	return [segmentCount]Rect{
		Top:        {box.X, box.Y, box.W, t},
		UpperRight: {box.X + box.W - t, box.Y, t, half + t},
		LowerRight: {box.X + box.W - t, box.Y + half, t, half + t},
		Bottom:     {box.X, box.Y + box.H - t, box.W, t},
		LowerLeft:  {box.X, box.Y + half, t, half + t},
		UpperLeft:  {box.X, box.Y, t, half + t},
		Middle:     {box.X, box.Y + half, box.W, t},
	}
}

// Covered reports whether (x, y) falls on a lit segment of digit d
func Covered(d int, box Rect, t, x, y float64) bool {
	for _, r := range Segments(d, box, t) {
		if r.Contains(x, y) {
			return true
		}
	}
	return false
}

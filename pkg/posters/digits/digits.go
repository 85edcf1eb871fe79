// Package digits draws the surface numeral as seven springy segments
// that shear with the viewer.
package digits

import (
	"context"
	"image/color"
	"math"

	"github.com/charmbracelet/harmonica"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/teslashibe/reactive-signs/pkg/poster"
	"github.com/teslashibe/reactive-signs/pkg/posters/glyph"
)

// Name is the registry name
const Name = "digits"

// Definition returns the poster definition
func Definition() poster.Definition {
	return poster.Static(Name, func(int) poster.Module { return &Digits{} })
}

// Digits implements poster.Module and display.Drawer
type Digits struct {
	spring harmonica.Spring
	shear  float64
	vel    float64
	lit    [7]float64
	litVel [7]float64

	box   glyph.Rect
	thick float64
}

// Init sets up the springs and layout
func (d *Digits) Init(_ context.Context, env poster.Env) error {
	d.spring = harmonica.NewSpring(harmonica.FPS(60), 6.0, 0.4)
	d.Resize(env.View)
	return nil
}

// Update eases segment brightness toward the digit and the shear toward the viewer
func (d *Digits) Update(v poster.View, _ int) {
	d.shear, d.vel = d.spring.Update(d.shear, d.vel, (v.Normal.X-0.5)*0.6)
	for s := range d.lit {
		target := 0.0
		if glyph.Lit(v.Counter, s) {
			target = 1
		}
		d.lit[s], d.litVel[s] = d.spring.Update(d.lit[s], d.litVel[s], target)
	}
}

// Resize fits the numeral box to the surface
func (d *Digits) Resize(v poster.View) {
	h := v.Height * 0.6
	w := math.Min(h*0.55, v.Width*0.8)
	d.box = glyph.Rect{X: (v.Width - w) / 2, Y: (v.Height - h) / 2, W: w, H: h}
	d.thick = w * 0.18
}

// Dispose has nothing to release
func (d *Digits) Dispose() error {
	return nil
}

// Draw renders the segments
func (d *Digits) Draw(dst *ebiten.Image, _ poster.View) {
	cy := d.box.Y + d.box.H/2
	for s, r := range glyph.Layout(d.box, d.thick) {
		a := geomClamp(d.lit[s])
		if a <= 0.01 {
			continue
		}
		dx := (r.Y + r.H/2 - cy) * d.shear
		c := color.RGBA{R: uint8(250 * a), G: uint8(90 * a), B: uint8(40 * a), A: uint8(255 * a)}
		vector.DrawFilledRect(dst, float32(r.X+dx), float32(r.Y), float32(r.W), float32(r.H), c, false)
	}
}

func geomClamp(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

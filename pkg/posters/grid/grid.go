// Package grid tiles the surface and lights the cells under the numeral,
// brightest near the viewer.
package grid

import (
	"context"
	"image/color"
	"math"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/teslashibe/reactive-signs/pkg/geometry"
	"github.com/teslashibe/reactive-signs/pkg/poster"
	"github.com/teslashibe/reactive-signs/pkg/posters/glyph"
	"github.com/teslashibe/reactive-signs/pkg/timer"
)

// Name is the registry name
const Name = "grid"

// Shimmer is how often the cell pattern shifts
const Shimmer = 120 * time.Millisecond

const (
	cols = 12
	rows = 21
)

// Definition returns the poster definition. Load builds the palette
// every surface shares.
func Definition() poster.Definition {
	return poster.Definition{
		Name: Name,
		Load: func(ctx context.Context) (poster.Factory, error) {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			pal := palette(16)
			return func(int) poster.Module { return &Grid{palette: pal} }, nil
		},
	}
}

func palette(n int) []color.RGBA {
	out := make([]color.RGBA, n)
	for i := range out {
		t := float64(i) / float64(n-1)
		out[i] = color.RGBA{R: uint8(30 + 200*t), G: uint8(40 + 180*t*t), B: uint8(90 + 120*(1-t)), A: 255}
	}
	return out
}

// Grid implements poster.Module and display.Drawer
type Grid struct {
	palette []color.RGBA
	timers  poster.Timers
	shimmer timer.ID

	cellW, cellH float64
	box          glyph.Rect
	offset       int
	heat         []float64
}

// Init lays out cells and starts the shimmer timer
func (g *Grid) Init(_ context.Context, env poster.Env) error {
	g.timers = env.Timers
	g.heat = make([]float64, cols*rows)
	g.Resize(env.View)
	g.shimmer = env.Timers.Every(Shimmer, func() { g.offset = (g.offset + 1) % len(g.palette) })
	return nil
}

// Update decays heat and adds it around the viewer column
func (g *Grid) Update(v poster.View, _ int) {
	vc := v.Normal.X * cols
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			i := r*cols + c
			near := math.Max(0, 1-math.Abs(float64(c)+0.5-vc)/3)
			g.heat[i] = geometry.Clamp01(g.heat[i]*0.92 + near*0.1)
		}
	}
}

// Resize recomputes cell size and numeral box
func (g *Grid) Resize(v poster.View) {
	g.cellW = v.Width / cols
	g.cellH = v.Height / rows
	g.box = glyph.Rect{X: g.cellW * 2, Y: g.cellH * 3, W: g.cellW * 8, H: g.cellH * 15}
}

// Dispose stops the shimmer
func (g *Grid) Dispose() error {
	if g.shimmer != 0 {
		g.timers.Cancel(g.shimmer)
		g.shimmer = 0
	}
	g.heat = nil
	return nil
}

// Draw renders the cells
func (g *Grid) Draw(dst *ebiten.Image, v poster.View) {
	thick := g.box.W * 0.25
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			x := (float64(c) + 0.5) * g.cellW
			y := (float64(r) + 0.5) * g.cellH
			if !glyph.Covered(v.Counter, g.box, thick, x, y) {
				continue
			}
			i := r*cols + c
			p := g.palette[(c+r+g.offset)%len(g.palette)]
			k := 0.35 + 0.65*g.heat[i]
			col := color.RGBA{R: uint8(float64(p.R) * k), G: uint8(float64(p.G) * k), B: uint8(float64(p.B) * k), A: 255}
			pad := math.Min(g.cellW, g.cellH) * 0.08
			vector.DrawFilledRect(dst, float32(float64(c)*g.cellW+pad), float32(float64(r)*g.cellH+pad),
				float32(g.cellW-2*pad), float32(g.cellH-2*pad), col, false)
		}
	}
}

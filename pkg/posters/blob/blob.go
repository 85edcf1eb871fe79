// Package blob is a soft body that leans toward the viewer and carries
// the surface numeral.
package blob

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
const Name = "blob"

const points = 48

// Definition returns the poster definition
func Definition() poster.Definition {
	return poster.Static(Name, func(surface int) poster.Module { return &Blob{surface: surface} })
}

// Blob implements poster.Module and display.Drawer
type Blob struct {
	surface int

	spring harmonica.Spring
	cx, vx float64
	radius []float64
	vel    []float64

	phase  float64
	unit   float64
	width  float64
	height float64
	ink    color.RGBA
}

// Init builds the outline
func (b *Blob) Init(_ context.Context, env poster.Env) error {
	b.spring = harmonica.NewSpring(harmonica.FPS(60), 4.0, 0.6)
	b.radius = make([]float64, points)
	b.vel = make([]float64, points)
	b.ink = color.RGBA{R: 240, G: 240, B: 235, A: 255}
	b.Resize(env.View)
	b.cx = b.width / 2
	return nil
}

// Update springs the body toward the viewer
func (b *Blob) Update(v poster.View, frames int) {
	b.phase += 0.02 * float64(frames)
	target := v.Normal.X * b.width

	b.cx, b.vx = b.spring.Update(b.cx, b.vx, target)

	base := 28 * b.unit
	lean := (v.Normal.X - 0.5) * 2
	for i := range b.radius {
		a := float64(i) / points * 2 * math.Pi
		wobble := math.Sin(a*3+b.phase)*4*b.unit + math.Cos(a*5-b.phase*0.7)*2*b.unit
		stretch := 1 + 0.25*lean*math.Cos(a)
		goal := (base + wobble) * stretch * (0.8 + 0.2*v.Normal.Z)
		b.radius[i], b.vel[i] = b.spring.Update(b.radius[i], b.vel[i], goal)
	}
}

// Resize recomputes unit scale
func (b *Blob) Resize(v poster.View) {
	b.width, b.height = v.Width, v.Height
	b.unit = math.Min(v.VW, v.VH)
}

// Dispose releases the outline
func (b *Blob) Dispose() error {
	b.radius, b.vel = nil, nil
	return nil
}

// Draw renders the body and numeral
func (b *Blob) Draw(dst *ebiten.Image, v poster.View) {
	if len(b.radius) == 0 {
		return
	}
	cy := b.height / 2

	var path vector.Path
	for i, r := range b.radius {
		a := float64(i) / points * 2 * math.Pi
		x := float32(b.cx + math.Cos(a)*r)
		y := float32(cy + math.Sin(a)*r)
		if i == 0 {
			path.MoveTo(x, y)
		} else {
			path.LineTo(x, y)
		}
	}
	path.Close()

	vs, is := path.AppendVerticesAndIndicesForFilling(nil, nil)
	for i := range vs {
		vs[i].SrcX, vs[i].SrcY = 1, 1
		vs[i].ColorR = float32(b.ink.R) / 255
		vs[i].ColorG = float32(b.ink.G) / 255
		vs[i].ColorB = float32(b.ink.B) / 255
		vs[i].ColorA = 1
	}
	dst.DrawTriangles(vs, is, whitePixel(), &ebiten.DrawTrianglesOptions{FillRule: ebiten.FillRuleNonZero, AntiAlias: true})

	h := 24 * b.unit
	box := glyph.Rect{X: b.cx - h*0.3, Y: cy - h/2, W: h * 0.6, H: h}
	for _, r := range glyph.Segments(v.Counter, box, h*0.1) {
		vector.DrawFilledRect(dst, float32(r.X), float32(r.Y), float32(r.W), float32(r.H), color.RGBA{A: 255}, false)
	}
}

var white *ebiten.Image

func whitePixel() *ebiten.Image {
	if white == nil {
		base := ebiten.NewImage(3, 3)
		base.Fill(color.White)
		white = base.SubImage(base.Bounds().Inset(1)).(*ebiten.Image)
	}
	return white
}

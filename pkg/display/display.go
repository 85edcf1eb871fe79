// Package display runs the exhibition inside an ebiten window. It feeds
// window input into the App once per frame and composites every
// surface's module output side by side in the poster area.
package display

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"strings"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/teslashibe/reactive-signs/pkg/exhibition"
	"github.com/teslashibe/reactive-signs/pkg/geometry"
	"github.com/teslashibe/reactive-signs/pkg/input"
	"github.com/teslashibe/reactive-signs/pkg/poster"
)

// Drawer is implemented by modules that render into an ebiten image.
// dst is the surface's own canvas, sized to the surface.
type Drawer interface {
	Draw(dst *ebiten.Image, v poster.View)
}

// Config holds window settings
type Config struct {
	Title      string
	WindowW    int
	WindowH    int
	PageW      float64
	PageH      float64
	Surfaces   int
	Fullscreen bool
	Background color.RGBA
}

// DefaultConfig returns a window three portrait pages wide at half size
func DefaultConfig() Config {
	return Config{
		Title:      "reactive signs",
		WindowW:    1620,
		WindowH:    960,
		PageW:      exhibition.DefaultPageWidth,
		PageH:      exhibition.DefaultPageHeight,
		Surfaces:   exhibition.DefaultSurfaces,
		Background: color.RGBA{A: 255},
	}
}

// Status is extra state shown in the overlay
type Status func() string

var keyNames = map[ebiten.Key]string{
	ebiten.KeyDigit1:    "1",
	ebiten.KeyDigit2:    "2",
	ebiten.KeyDigit3:    "3",
	ebiten.KeyDigit4:    "4",
	ebiten.KeyDigit5:    "5",
	ebiten.KeyDigit6:    "6",
	ebiten.KeyDigit7:    "7",
	ebiten.KeyDigit8:    "8",
	ebiten.KeyDigit9:    "9",
	ebiten.KeyArrowUp:   input.KeyArrowUp,
	ebiten.KeyArrowDown: input.KeyArrowDown,
	ebiten.KeyEscape:    input.KeyEscape,
	ebiten.KeyP:         input.KeyP,
	ebiten.KeyR:         input.KeyR,
	ebiten.KeyS:         input.KeyS,
}

// Game implements ebiten.Game
type Game struct {
	app    *exhibition.App
	config Config
	extra  []Status

	windowW, windowH int
	area             image.Rectangle

	canvases []*ebiten.Image
	keys     []ebiten.Key

	done <-chan struct{}
}

// New creates the game for app
func New(app *exhibition.App, cfg Config, extra ...Status) *Game {
	g := &Game{
		app:     app,
		config:  cfg,
		extra:   extra,
		windowW: cfg.WindowW,
		windowH: cfg.WindowH,
	}
	app.OnFullscreenRequest(func(on bool) { ebiten.SetFullscreen(on) })
	return g
}

// Run opens the window and blocks until it closes or ctx ends
func Run(ctx context.Context, g *Game) error {
	g.done = ctx.Done()
	ebiten.SetWindowSize(g.config.WindowW, g.config.WindowH)
	ebiten.SetWindowTitle(g.config.Title)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetFullscreen(g.config.Fullscreen)
	return ebiten.RunGame(g)
}

// Update steps the App one frame
func (g *Game) Update() error {
	select {
	case <-g.done:
		return ebiten.Termination
	default:
	}
	g.area = posterArea(g.windowW, g.windowH, g.config)

	cx, cy := ebiten.CursorPosition()
	in := exhibition.FrameInput{
		Now:        time.Now(),
		ViewportW:  float64(g.area.Dx()),
		ViewportH:  float64(g.area.Dy()),
		Fullscreen: ebiten.IsFullscreen(),
		FPS:        ebiten.ActualFPS(),
		Events:     g.events(),
	}
	in.Pointer.X = float64(cx - g.area.Min.X)
	in.Pointer.Y = float64(cy - g.area.Min.Y)

	g.app.Frame(in)
	return nil
}

func (g *Game) events() []input.Event {
	shift := ebiten.IsKeyPressed(ebiten.KeyShift)
	g.keys = inpututil.AppendJustPressedKeys(g.keys[:0])

	var out []input.Event
	for _, k := range g.keys {
		if name, ok := keyNames[k]; ok {
			out = append(out, input.Event{Key: name, Shift: shift})
		}
	}
	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		out = append(out, input.Event{Key: input.KeyClick})
	}
	return out
}

// Draw composites every surface and the overlay
func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(g.config.Background)
	if g.area.Empty() {
		return
	}

	views := g.app.Views()
	handles := g.app.Handles()
	opacity := g.app.Opacity()
	g.ensureCanvases(views)

	for i, v := range views {
		canvas := g.canvases[i]
		if canvas == nil {
			continue
		}
		canvas.Fill(g.config.Background)

		var h *poster.Handle
		if i < len(handles) {
			h = handles[i]
		}
		if h != nil {
			if d, ok := h.Module().(Drawer); ok {
				view := v
				view.Counter = h.Counter()
				h.Guard("draw", func() { d.Draw(canvas, view) })
				if failed, _ := h.Failed(); failed {
					canvas.Fill(g.config.Background)
				}
			}
			if fade := h.FadeIn(); fade > 0 {
				b := canvas.Bounds()
				vector.DrawFilledRect(canvas, 0, 0, float32(b.Dx()), float32(b.Dy()), color.RGBA{A: uint8(fade * 255)}, false)
			}
		}

		var sx, sy float64
		if i < len(v.Surfaces) {
			sx, sy = v.Surfaces[i].X, v.Surfaces[i].Y
		}
		op := &ebiten.DrawImageOptions{}
		op.GeoM.Translate(float64(g.area.Min.X)+sx, float64(g.area.Min.Y)+sy)
		op.ColorScale.ScaleAlpha(float32(opacity))
		screen.DrawImage(canvas, op)
	}

	if g.app.DebugVisible() {
		g.drawOverlay(screen)
	}
}

// ensureCanvases keeps one offscreen image per surface at surface size
func (g *Game) ensureCanvases(views []poster.View) {
	if len(g.canvases) != len(views) {
		for _, c := range g.canvases {
			if c != nil {
				c.Deallocate()
			}
		}
		g.canvases = make([]*ebiten.Image, len(views))
	}
	for i, v := range views {
		w, h := int(v.Width), int(v.Height)
		c := g.canvases[i]
		if c != nil && c.Bounds().Dx() == w && c.Bounds().Dy() == h {
			continue
		}
		if c != nil {
			c.Deallocate()
			g.canvases[i] = nil
		}
		if w > 0 && h > 0 {
			g.canvases[i] = ebiten.NewImage(w, h)
		}
	}
}

func (g *Game) drawOverlay(screen *ebiten.Image) {
	st := g.app.Status()
	lines := []string{
		fmt.Sprintf("fps %.1f  frame %d", st.FPS, st.Frame),
		fmt.Sprintf("signal %s  input %s  tracking %v", st.Signal, st.Input, st.Tracking),
		fmt.Sprintf("pos %.3f %.3f %.3f", st.Position.X, st.Position.Y, st.Position.Z),
		fmt.Sprintf("poster %d %s  opacity %.2f", st.Scheduler.Active, st.Scheduler.ActiveName, st.Scheduler.Opacity),
		fmt.Sprintf("countdown %s  counters %v %v", st.Scheduler.Countdown, st.Scheduler.Counters, st.Scheduler.Modes),
	}
	if st.Recording {
		lines = append(lines, "recording")
	}
	if st.Scheduler.LastError != "" {
		lines = append(lines, "error "+st.Scheduler.LastError)
	}
	for _, fn := range g.extra {
		lines = append(lines, fn())
	}

	x := g.area.Min.X + 12
	y := g.area.Min.Y + 12
	vector.DrawFilledRect(screen, float32(x-6), float32(y-6), 420, float32(len(lines)*16+12), color.RGBA{A: 160}, false)
	ebitenutil.DebugPrintAt(screen, strings.Join(lines, "\n"), x, y)

	// viewer marker across the whole poster area
	px := float32(g.area.Min.X) + float32(st.Position.X)*float32(g.area.Dx())
	py := float32(g.area.Min.Y) + float32(st.Position.Y)*float32(g.area.Dy())
	vector.StrokeCircle(screen, px, py, 12, 2, color.RGBA{R: 255, G: 64, B: 64, A: 255}, true)
}

// Layout tracks the real window size so the poster area follows resizes
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	g.windowW, g.windowH = outsideWidth, outsideHeight
	return outsideWidth, outsideHeight
}

func posterArea(w, h int, cfg Config) image.Rectangle {
	x, y, aw, ah := geometry.Fit(float64(w), float64(h), cfg.PageW, cfg.PageH, cfg.Surfaces)
	return image.Rect(int(x), int(y), int(x+aw), int(y+ah))
}

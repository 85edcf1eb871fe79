package exhibition

import (
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/teslashibe/reactive-signs/pkg/counter"
	"github.com/teslashibe/reactive-signs/pkg/geometry"
	"github.com/teslashibe/reactive-signs/pkg/input"
	"github.com/teslashibe/reactive-signs/pkg/poster"
	"github.com/teslashibe/reactive-signs/pkg/scheduler"
	"github.com/teslashibe/reactive-signs/pkg/tracking"
)

var epoch = time.Date(2025, 6, 1, 18, 0, 0, 0, time.UTC)

type recordingModule struct {
	last    poster.View
	updates int
	resizes int
}

func (m *recordingModule) Init(context.Context, poster.Env) error { return nil }
func (m *recordingModule) Update(v poster.View, _ int)            { m.last = v; m.updates++ }
func (m *recordingModule) Resize(poster.View)                     { m.resizes++ }
func (m *recordingModule) Dispose() error                         { return nil }

type testPosters struct {
	modules map[string][]*recordingModule
}

func (tp *testPosters) def(name string) poster.Definition {
	return poster.Static(name, func(int) poster.Module {
		m := &recordingModule{}
		tp.modules[name] = append(tp.modules[name], m)
		return m
	})
}

func newTestApp(t *testing.T, cfg Config) (*App, *testPosters) {
	t.Helper()
	tp := &testPosters{modules: make(map[string][]*recordingModule)}
	reg := poster.NewRegistry(tp.def("a"), tp.def("b"))
	a, err := New(cfg, reg, WithClock(epoch))
	if err != nil {
		t.Fatalf("unexpected New error %v", err)
	}
	if err := a.Init(context.Background()); err != nil {
		t.Fatalf("unexpected Init error %v", err)
	}
	return a, tp
}

func frameAt(now time.Time, pointerX float64) FrameInput {
	return FrameInput{
		Now:       now,
		ViewportW: 3000,
		ViewportH: 1000,
		Pointer:   tracking.Pointer{X: pointerX, Y: 500},
	}
}

// waitFor steps frames at now until cond holds; loads finish off the loop.
func waitFor(t *testing.T, a *App, in FrameInput, cond func() bool) {
	t.Helper()
	for i := 0; i < 400; i++ {
		a.Frame(in)
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not reached")
}

func TestConfig_DefaultsValid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Expected defaults to validate, got %v", err)
	}
	if cfg.Surfaces != 3 || cfg.Offset != 0.2 || cfg.RotationInterval != 240*time.Second {
		t.Errorf("Unexpected defaults %+v", cfg)
	}
	if cfg.FixedNumeral != NoNumeralOverride {
		t.Errorf("Expected no numeral override, got %d", cfg.FixedNumeral)
	}
}

func TestConfig_ValidateErrors(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Surfaces = 0
	if err := cfg.Validate(); !errors.Is(err, ErrNoSurfaces) {
		t.Errorf("Expected ErrNoSurfaces, got %v", err)
	}

	cfg = DefaultConfig()
	cfg.Offset = 0.6
	if err := cfg.Validate(); err != nil {
		t.Errorf("Expected degenerate offset to pass validation, got %v", err)
	}

	cfg = DefaultConfig()
	cfg.FixedNumeral = 12
	var cfgErr *ConfigError
	if err := cfg.Validate(); !errors.As(err, &cfgErr) || cfgErr.Field != "fixed_numeral" {
		t.Errorf("Expected fixed_numeral ConfigError, got %v", err)
	}
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "exhibition.yaml")
	data := []byte(`
surfaces: 4
offset: 0.1
rotation_interval: 90s
posters: [b, a]
tracking:
  url: ws://detector:8025
  idle: true
mqtt:
  broker: tcp://broker:1883
`)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	if cfg.Surfaces != 4 || cfg.Offset != 0.1 {
		t.Errorf("Expected 4 surfaces at 0.1, got %d at %v", cfg.Surfaces, cfg.Offset)
	}
	if cfg.RotationInterval != 90*time.Second {
		t.Errorf("Expected 90s rotation, got %v", cfg.RotationInterval)
	}
	if cfg.FadeStep != 10*time.Millisecond {
		t.Errorf("Expected default fade step kept, got %v", cfg.FadeStep)
	}
	if !cfg.Tracking.IdleEnabled || cfg.Tracking.URL != "ws://detector:8025" {
		t.Errorf("Unexpected tracking config %+v", cfg.Tracking)
	}
	if len(cfg.Posters) != 2 || cfg.Posters[0] != "b" {
		t.Errorf("Expected posters [b a], got %v", cfg.Posters)
	}

	if _, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("Expected error for missing file")
	}
}

func TestLoadEnvConfig(t *testing.T) {
	t.Setenv("TRACKING_URL", "ws://env:8025")
	t.Setenv("DASHBOARD_PORT", "8181")
	cfg := DefaultConfig()
	cfg.MQTT.Broker = "tcp://flag:1883"
	t.Setenv("MQTT_BROKER", "tcp://env:1883")

	cfg.LoadEnvConfig()
	if cfg.Tracking.URL != "ws://env:8025" || cfg.Dashboard.Port != "8181" {
		t.Errorf("Expected env values applied, got %+v %+v", cfg.Tracking, cfg.Dashboard)
	}
	if cfg.MQTT.Broker != "tcp://flag:1883" {
		t.Errorf("Expected explicit broker kept, got %s", cfg.MQTT.Broker)
	}
}

func TestNew_PosterSelection(t *testing.T) {
	tp := &testPosters{modules: make(map[string][]*recordingModule)}
	reg := poster.NewRegistry(tp.def("a"), tp.def("b"))

	cfg := DefaultConfig()
	cfg.Posters = []string{"b", "zzz"}
	var cfgErr *ConfigError
	if _, err := New(cfg, reg); !errors.As(err, &cfgErr) {
		t.Errorf("Expected ConfigError for unknown poster, got %v", err)
	}

	if _, err := New(DefaultConfig(), poster.NewRegistry()); !errors.Is(err, ErrNoPosters) {
		t.Errorf("Expected ErrNoPosters, got %v", err)
	}

	cfg.Posters = []string{"b"}
	a, err := New(cfg, reg)
	if err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	if names := a.Registry().Names(); len(names) != 1 || names[0] != "b" {
		t.Errorf("Expected registry [b], got %v", names)
	}
}

func TestFrame_SameSnapshotPerSurface(t *testing.T) {
	a, tp := newTestApp(t, DefaultConfig())
	in := frameAt(epoch, 1500)
	waitFor(t, a, in, func() bool { return len(a.Handles()) == 3 })

	for i := 0; i < 300; i++ {
		a.Frame(in)
	}

	want := []float64{0.833, 0.5, 0.167}
	mods := tp.modules["a"]
	if len(mods) != 3 {
		t.Fatalf("Expected 3 modules, got %d", len(mods))
	}
	for i, m := range mods {
		if math.Abs(m.last.Normal.X-want[i]) > 1e-3 {
			t.Errorf("surface %d: expected local x %.3f, got %.4f", i, want[i], m.last.Normal.X)
		}
		if m.last.Normal.Y != mods[0].last.Normal.Y {
			t.Errorf("surface %d: expected shared y", i)
		}
		if m.last.Width != 1000 || m.last.Height != 1000 {
			t.Errorf("surface %d: expected 1000x1000, got %vx%v", i, m.last.Width, m.last.Height)
		}
		if m.last.Counter != counter.InitialValue {
			t.Errorf("surface %d: expected counter 9, got %d", i, m.last.Counter)
		}
	}
}

func TestNew_DegenerateOffsetClamps(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Offset = 0.5
	a, tp := newTestApp(t, cfg)

	in := frameAt(epoch, 2200)
	waitFor(t, a, in, func() bool { return len(a.Handles()) == 3 })
	for i := 0; i < 10; i++ {
		a.Frame(in)
	}

	mods := tp.modules["a"]
	if len(mods) != 3 {
		t.Fatalf("Expected 3 modules, got %d", len(mods))
	}
	for i, m := range mods {
		if m.updates == 0 {
			t.Errorf("surface %d: expected updates", i)
		}
		if m.last.Normal.X != 0 || m.last.Position.X != 0 {
			t.Errorf("surface %d: expected local x 0, got %v", i, m.last.Normal.X)
		}
	}

	var geoErr *geometry.ConfigurationError
	if err := geometry.Validate(cfg.Surfaces, cfg.Offset); !errors.As(err, &geoErr) {
		t.Fatalf("Expected ConfigurationError, got %v", err)
	}
	if len(a.geomErrs) != 1 {
		t.Errorf("Expected the misconfiguration noted once, got %v", a.geomErrs)
	}
}

func TestFrame_ResizeOnViewportChange(t *testing.T) {
	a, tp := newTestApp(t, DefaultConfig())
	in := frameAt(epoch, 0)
	waitFor(t, a, in, func() bool { return len(a.Handles()) == 3 })
	a.Frame(in)

	before := tp.modules["a"][0].resizes
	in.ViewportW = 2400
	a.Frame(in)
	a.Frame(in)

	if got := tp.modules["a"][0].resizes - before; got != 1 {
		t.Errorf("Expected one resize, got %d", got)
	}
	if w := tp.modules["a"][0].last.Width; w != 800 {
		t.Errorf("Expected surface width 800, got %v", w)
	}
}

func TestFrame_FullscreenLocksControls(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Debug = true
	a, _ := newTestApp(t, cfg)
	in := frameAt(epoch, 0)
	waitFor(t, a, in, func() bool { return len(a.Handles()) == 3 })

	if !a.DebugVisible() {
		t.Error("Expected debug overlay in windowed debug mode")
	}

	in.Fullscreen = true
	in.Events = []input.Event{{Key: input.KeyArrowUp}, {Key: input.KeyP, Shift: true}}
	a.Frame(in)
	if !a.Exhibition() || a.DebugVisible() {
		t.Errorf("Expected exhibition on and overlay hidden, got %v/%v", a.Exhibition(), a.DebugVisible())
	}
	if a.Handles()[0].CounterMode() != counter.Auto {
		t.Error("Expected counter keys ignored in exhibition mode")
	}

	in.Fullscreen = false
	in.Events = []input.Event{{Key: input.KeyArrowUp}}
	a.Frame(in)
	if a.Exhibition() || !a.DebugVisible() {
		t.Errorf("Expected exhibition off and overlay shown, got %v/%v", a.Exhibition(), a.DebugVisible())
	}
	h := a.Handles()[0]
	if h.CounterMode() != counter.Manual || h.Counter() != 8 {
		t.Errorf("Expected manual 8, got %v %d", h.CounterMode(), h.Counter())
	}
}

func TestFrame_KeysAndRecorder(t *testing.T) {
	a, _ := newTestApp(t, DefaultConfig())
	in := frameAt(epoch, 0)
	waitFor(t, a, in, func() bool { return len(a.Handles()) == 3 })

	var requested []bool
	a.OnFullscreenRequest(func(on bool) { requested = append(requested, on) })

	in.Events = []input.Event{
		{Key: input.KeyP, Shift: true},
		{Key: input.KeyR, Shift: true},
		{Key: input.KeyClick},
	}
	a.Frame(in)

	if !a.DebugVisible() {
		t.Error("Expected Shift+P to show the overlay")
	}
	if !a.Status().Recording {
		t.Error("Expected recording after Shift+R")
	}
	if len(requested) != 1 || !requested[0] {
		t.Errorf("Expected one fullscreen request, got %v", requested)
	}

	in.Events = []input.Event{{Key: input.KeyS, Shift: true}, {Key: input.KeyEscape}}
	a.Frame(in)
	if a.Status().Recording {
		t.Error("Expected recording stopped after Shift+S")
	}
	if len(requested) != 2 || requested[1] {
		t.Errorf("Expected leave request, got %v", requested)
	}
}

func TestRequestPoster(t *testing.T) {
	a, _ := newTestApp(t, DefaultConfig())
	in := frameAt(epoch, 0)
	waitFor(t, a, in, func() bool { return len(a.Handles()) == 3 })

	if err := a.RequestPoster(5); !errors.Is(err, scheduler.ErrInvalidPoster) {
		t.Errorf("Expected ErrInvalidPoster, got %v", err)
	}

	var changes []int
	a.OnPosterChange(func(st scheduler.Status) { changes = append(changes, st.Active) })
	if err := a.RequestPoster(1); err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	a.Frame(in)
	if !a.Status().Scheduler.Transitioning {
		t.Error("Expected transition running")
	}

	in.Now = epoch.Add(time.Second)
	waitFor(t, a, in, func() bool { return a.Scheduler().Active() == 1 })

	in.Now = epoch.Add(3 * time.Second)
	a.Frame(in)
	if a.Opacity() != 1 {
		t.Errorf("Expected opacity back to 1, got %v", a.Opacity())
	}
	if len(changes) == 0 || changes[len(changes)-1] != 1 {
		t.Errorf("Expected change to poster 1, got %v", changes)
	}
}

func TestShutdown_ReleasesTimers(t *testing.T) {
	a, _ := newTestApp(t, DefaultConfig())
	in := frameAt(epoch, 0)
	waitFor(t, a, in, func() bool { return len(a.Handles()) == 3 })

	a.Shutdown()
	if n := a.Loop().Total(); n != 0 {
		t.Errorf("Expected no timers after shutdown, got %d", n)
	}
}

package exhibition

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/teslashibe/reactive-signs/internal/log"
	"github.com/teslashibe/reactive-signs/pkg/counter"
	"github.com/teslashibe/reactive-signs/pkg/debug"
	"github.com/teslashibe/reactive-signs/pkg/geometry"
	"github.com/teslashibe/reactive-signs/pkg/input"
	"github.com/teslashibe/reactive-signs/pkg/poster"
	"github.com/teslashibe/reactive-signs/pkg/scheduler"
	"github.com/teslashibe/reactive-signs/pkg/timer"
	"github.com/teslashibe/reactive-signs/pkg/tracking"
	"github.com/teslashibe/reactive-signs/pkg/viewstate"
)

// App is the installation orchestrator. Everything except the methods
// documented as goroutine-safe runs on the frame goroutine.
type App struct {
	config   Config
	registry *poster.Registry
	logger   *slog.Logger

	loop      *timer.Loop
	state     *viewstate.State
	feed      *tracking.Feed
	source    *tracking.Source
	scheduler *scheduler.Scheduler
	mapper    *input.Mapper
	recorder  Recorder

	// fullscreen asks the display to change window mode
	fullscreen func(on bool)

	views      []poster.View
	frame      int
	exhibition bool
	debugOn    bool
	reading    tracking.Reading
	fps        float64
	geomErrs   map[string]bool
	started    bool

	statusMu sync.RWMutex
	status   Status
}

// Option configures an App
type Option func(*App)

// WithRecorder replaces the logging recorder
func WithRecorder(r Recorder) Option {
	return func(a *App) { a.recorder = r }
}

// WithFeed attaches the external tracking feed
func WithFeed(f *tracking.Feed) Option {
	return func(a *App) { a.feed = f }
}

// WithClock starts the loop clock at start instead of time.Now
func WithClock(start time.Time) Option {
	return func(a *App) { a.loop = timer.New(start) }
}

// New creates the App. Posters named in the config are taken from
// registry in that order.
func New(cfg Config, registry *poster.Registry, opts ...Option) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if len(cfg.Posters) > 0 {
		sub, missing := registry.Subset(cfg.Posters)
		if len(missing) > 0 {
			return nil, &ConfigError{Field: "posters", Message: fmt.Sprintf("unknown posters: %v", missing)}
		}
		registry = sub
	}
	if registry.Len() == 0 {
		return nil, ErrNoPosters
	}
	if cfg.InitialPoster >= registry.Len() || cfg.FallbackPoster >= registry.Len() {
		return nil, &ConfigError{Field: "posters", Message: fmt.Sprintf("initial/fallback poster out of range (have %d)", registry.Len())}
	}

	a := &App{
		config:   cfg,
		registry: registry,
		logger:   log.Component("exhibition"),
		state:    viewstate.New(cfg.Smoothing, cfg.Surfaces),
		mapper:   input.NewMapper(registry.Len()),
		debugOn:  cfg.Debug,
		geomErrs: make(map[string]bool),
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.loop == nil {
		a.loop = timer.New(time.Now())
	}
	if a.recorder == nil {
		a.recorder = NewLogRecorder()
	}
	a.source = tracking.NewSource(cfg.TrackingSourceConfig(), a.feed)
	if err := geometry.Validate(cfg.Surfaces, cfg.Offset); err != nil {
		a.noteGeometry(err)
	}

	return a, nil
}

// Init lays out the surfaces at page size, loads the initial poster and
// starts rotation and the countdown.
func (a *App) Init(ctx context.Context) error {
	if a.state.SurfaceCount() < 1 {
		return fmt.Errorf("%w: layout has no surfaces", ErrNoSurfaces)
	}
	a.state.SetViewport(a.config.PageWidth*float64(a.config.Surfaces), a.config.PageHeight)
	a.project()

	a.scheduler = scheduler.New(ctx, a.loop, a.registry, a.currentViews, a.config.SchedulerConfig())
	if err := a.scheduler.SelectPoster(a.config.InitialPoster); err != nil {
		return fmt.Errorf("initial poster: %w", err)
	}
	a.scheduler.Start()
	a.started = true

	a.logger.Info("exhibition initialized",
		"surfaces", a.config.Surfaces,
		"offset", a.config.Offset,
		"posters", a.registry.Names(),
		"tracking", a.feed != nil,
	)
	a.publish()
	return nil
}

// Shutdown stops timers, disposes every poster and stops recording.
func (a *App) Shutdown() {
	if a.scheduler != nil {
		a.scheduler.Shutdown()
	}
	if a.recorder.Recording() {
		if err := a.recorder.Stop(); err != nil {
			a.logger.Warn("recorder stop failed", "error", err)
		}
	}
	a.logger.Info("exhibition stopped", "frames", a.frame)
}

// OnFullscreenRequest sets the hook used to ask the display for a
// window mode change.
func (a *App) OnFullscreenRequest(fn func(on bool)) {
	a.fullscreen = fn
}

// OnPosterChange registers a callback for active poster changes. It
// runs on the frame goroutine. Call after Init.
func (a *App) OnPosterChange(fn func(scheduler.Status)) {
	a.scheduler.OnChange(fn)
}

// SetFullscreen applies the mode the window is actually in. Entering
// fullscreen turns exhibition mode on and hides the debug overlay;
// leaving does the reverse.
func (a *App) SetFullscreen(on bool) {
	if on == a.exhibition {
		return
	}
	a.exhibition = on
	a.debugOn = !on
	if a.scheduler != nil {
		a.scheduler.SetExhibition(on)
	}
	a.logger.Info("exhibition mode changed", "exhibition", on)
}

func (a *App) currentViews() []poster.View {
	out := make([]poster.View, len(a.views))
	copy(out, a.views)
	return out
}

// project recomputes per-surface views from the current state
func (a *App) project() {
	views, err := geometry.ProjectAll(a.state.Snapshot(), a.config.Offset)
	if err != nil {
		a.noteGeometry(err)
	}
	if len(a.views) != len(views) {
		a.views = make([]poster.View, len(views))
	}
	for i, v := range views {
		a.views[i] = poster.View{View: v}
	}
}

// noteGeometry logs each distinct misconfiguration once
func (a *App) noteGeometry(err error) {
	key := err.Error()
	var cfgErr *geometry.ConfigurationError
	if errors.As(err, &cfgErr) {
		key = fmt.Sprintf("%s=%v", cfgErr.Field, cfgErr.Value)
	}
	if a.geomErrs[key] {
		return
	}
	a.geomErrs[key] = true
	a.logger.Warn("degenerate surface geometry, clamping", "error", err)
}

// RequestPoster asks for a transition to poster i. Safe for concurrent use.
func (a *App) RequestPoster(i int) error {
	if i < 0 || i >= a.registry.Len() {
		return fmt.Errorf("%w: %d (have %d)", scheduler.ErrInvalidPoster, i, a.registry.Len())
	}
	a.loop.Post(func() {
		if err := a.scheduler.Transition(i); err != nil {
			a.logger.Warn("remote poster request failed", "error", err)
		}
	})
	return nil
}

// RequestCounterStep asks for a manual counter step. Safe for concurrent
// use; ignored in exhibition mode like the keys are.
func (a *App) RequestCounterStep(dir counter.Direction) {
	a.loop.Post(func() {
		kind := input.CounterAdvance
		if dir == counter.Rewind {
			kind = input.CounterRewind
		}
		a.apply(input.Action{Kind: kind})
	})
}

// Registry returns the posters the App selects from
func (a *App) Registry() *poster.Registry {
	return a.registry
}

// Scheduler returns the poster scheduler
func (a *App) Scheduler() *scheduler.Scheduler {
	return a.scheduler
}

// Loop returns the frame loop
func (a *App) Loop() *timer.Loop {
	return a.loop
}

// Handles returns the handles to render, in surface order
func (a *App) Handles() []*poster.Handle {
	if a.scheduler == nil {
		return nil
	}
	return a.scheduler.Handles()
}

// Opacity returns the transition opacity
func (a *App) Opacity() float64 {
	if a.scheduler == nil {
		return 1
	}
	return a.scheduler.Opacity()
}

// DebugVisible reports whether the overlay should be drawn
func (a *App) DebugVisible() bool {
	return a.debugOn && !a.exhibition
}

// Exhibition reports whether exhibition mode is on
func (a *App) Exhibition() bool {
	return a.exhibition
}

// Views returns the views of the last frame
func (a *App) Views() []poster.View {
	return a.currentViews()
}

// Reading returns the position input of the last frame
func (a *App) Reading() tracking.Reading {
	return a.reading
}

func (a *App) debugLog(msg string, args ...any) {
	if a.debugOn {
		debug.Log(msg, args...)
	}
}

// Posters returns the selectable poster names in key order. The registry
// is fixed after New, so this is safe for concurrent use.
func (a *App) Posters() []string {
	return a.registry.Names()
}

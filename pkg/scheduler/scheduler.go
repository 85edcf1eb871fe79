// Package scheduler decides which poster is on the surfaces. It loads
// posters off the frame loop, swaps handles only once a load succeeds,
// falls back to a known poster on failure, rotates on a timer and fades
// between posters.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/teslashibe/reactive-signs/internal/log"
	"github.com/teslashibe/reactive-signs/pkg/counter"
	"github.com/teslashibe/reactive-signs/pkg/poster"
	"github.com/teslashibe/reactive-signs/pkg/timer"
)

// Timer owners on the loop.
const (
	OwnerRotation  = "scheduler/rotation"
	OwnerCountdown = "scheduler/countdown"
	OwnerFade      = "scheduler/fade"
)

// ViewFunc returns the current per-surface views. Its length is the
// surface count.
type ViewFunc func() []poster.View

type fadeDir int

const (
	fadeNone fadeDir = iota
	fadeOut
	fadeIn
)

// Scheduler owns the active handles. Every method must be called on the
// loop goroutine; Load functions are the only code it runs elsewhere.
type Scheduler struct {
	ctx      context.Context
	loop     *timer.Loop
	registry *poster.Registry
	views    ViewFunc
	config   Config
	logger   *slog.Logger

	// run starts a load off the loop
	run func(fn func())

	handles    []*poster.Handle
	active     int
	pending    int
	generation uint64
	lastErr    error

	steps     int
	level     int
	fade      fadeDir
	target    int
	awaitFade bool

	countdown  *counter.Countdown
	exhibition bool

	listeners []func(Status)
}

// New creates a scheduler. Nothing is loaded until SelectPoster.
func New(ctx context.Context, loop *timer.Loop, registry *poster.Registry, views ViewFunc, cfg Config) *Scheduler {
	steps := cfg.fadeSteps()
	return &Scheduler{
		ctx:       ctx,
		loop:      loop,
		registry:  registry,
		views:     views,
		config:    cfg,
		logger:    log.Component("scheduler"),
		run:       func(fn func()) { go fn() },
		active:    -1,
		pending:   -1,
		target:    -1,
		steps:     steps,
		level:     steps,
		countdown: counter.NewCountdown(cfg.CountdownLimit, 0),
	}
}

// OnChange registers a callback run after the active poster changes or
// a transition starts.
func (s *Scheduler) OnChange(fn func(Status)) {
	s.listeners = append(s.listeners, fn)
}

func (s *Scheduler) notify() {
	if len(s.listeners) == 0 {
		return
	}
	st := s.Status()
	for _, fn := range s.listeners {
		fn(st)
	}
}

func (s *Scheduler) check(i int) error {
	if i < 0 || i >= s.registry.Len() {
		return fmt.Errorf("%w: %d (have %d)", ErrInvalidPoster, i, s.registry.Len())
	}
	return nil
}

// SelectPoster starts loading poster i. The current handles keep
// rendering until the load settles. Only the most recent selection can
// install; results of earlier ones are discarded.
func (s *Scheduler) SelectPoster(i int) error {
	if err := s.check(i); err != nil {
		return err
	}
	s.load(i, false)
	return nil
}

func (s *Scheduler) load(i int, fallback bool) {
	s.generation++
	gen := s.generation
	s.pending = i
	def, _ := s.registry.Get(i)
	ctx := s.ctx

	s.logger.Debug("loading poster", "poster", def.Name, "index", i, "generation", gen, "fallback", fallback)

	s.run(func() {
		factory, err := safeLoad(ctx, def)
		s.loop.Post(func() {
			s.settle(gen, i, def.Name, factory, err, fallback)
		})
	})
}

func safeLoad(ctx context.Context, def poster.Definition) (f poster.Factory, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", poster.ErrPanic, r)
		}
	}()
	f, err = def.Load(ctx)
	if err == nil && f == nil {
		err = poster.ErrNoFactory
	}
	return f, err
}

func (s *Scheduler) settle(gen uint64, i int, name string, factory poster.Factory, err error, fallback bool) {
	if gen != s.generation {
		s.logger.Debug("discarding stale poster load", "poster", name, "generation", gen, "current", s.generation)
		return
	}

	var handles []*poster.Handle
	if err != nil {
		err = &poster.ModuleLoadError{Poster: name, Index: i, Surface: -1, Err: err}
	} else {
		handles, err = s.instantiate(i, name, factory)
	}

	if err != nil {
		s.lastErr = err
		if !fallback && i != s.config.FallbackIndex && s.check(s.config.FallbackIndex) == nil {
			s.logger.Warn("poster load failed, falling back", "poster", name, "fallback", s.config.FallbackIndex, "error", err)
			s.load(s.config.FallbackIndex, true)
			return
		}
		s.logger.Error("poster load failed, keeping current poster", "poster", name, "active", s.active, "error", err)
		s.pending = -1
		s.settled()
		return
	}

	old := s.handles
	s.handles = handles
	s.active = i
	s.pending = -1
	s.lastErr = nil
	s.teardown(old)
	s.applyOverrides()

	s.logger.Info("poster active", "poster", name, "index", i, "surfaces", len(handles))
	s.settled()
	s.notify()
}

func (s *Scheduler) instantiate(i int, name string, factory poster.Factory) ([]*poster.Handle, error) {
	views := s.views()
	handles := make([]*poster.Handle, 0, len(views))
	for surface, v := range views {
		m, err := create(factory, surface)
		if err != nil {
			s.teardown(handles)
			return nil, &poster.ModuleLoadError{Poster: name, Index: i, Surface: surface, Err: err}
		}
		h := poster.NewHandle(s.loop, name, i, surface, m, s.config.Handle)
		if err := h.Init(s.ctx, v); err != nil {
			_ = h.Dispose()
			s.teardown(handles)
			return nil, err
		}
		handles = append(handles, h)
	}
	return handles, nil
}

func create(factory poster.Factory, surface int) (m poster.Module, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", poster.ErrPanic, r)
		}
	}()
	m = factory(surface)
	if m == nil {
		return nil, poster.ErrNilModule
	}
	return m, nil
}

// teardown disposes handles best effort
func (s *Scheduler) teardown(handles []*poster.Handle) {
	for _, h := range handles {
		if err := h.Dispose(); err != nil {
			s.logger.Warn("poster teardown failed", "error", err)
		}
	}
}

// settled resumes a transition waiting on the load
func (s *Scheduler) settled() {
	if s.awaitFade {
		s.awaitFade = false
		s.startFade(fadeIn)
	}
}

// Transition fades the surfaces out, selects poster i and fades back in
// once the load settles. A transition already running is cancelled and
// the new one fades out from the current opacity.
func (s *Scheduler) Transition(i int) error {
	if err := s.check(i); err != nil {
		return err
	}
	s.target = i
	s.awaitFade = false
	s.startFade(fadeOut)
	s.notify()
	return nil
}

func (s *Scheduler) startFade(dir fadeDir) {
	s.loop.CancelOwner(OwnerFade)
	s.fade = dir
	s.loop.Every(OwnerFade, s.config.FadeStep, s.fadeTick)
}

func (s *Scheduler) fadeTick() {
	switch s.fade {
	case fadeOut:
		if s.level > 0 {
			s.level--
		}
		if s.level == 0 {
			s.loop.CancelOwner(OwnerFade)
			s.fade = fadeNone
			target := s.target
			s.target = -1
			s.awaitFade = true
			s.load(target, false)
		}
	case fadeIn:
		if s.level < s.steps {
			s.level++
		}
		if s.level == s.steps {
			s.loop.CancelOwner(OwnerFade)
			s.fade = fadeNone
		}
	default:
		s.loop.CancelOwner(OwnerFade)
	}
}

// Next returns the poster rotation moves to
func (s *Scheduler) Next() int {
	n := s.registry.Len()
	if n == 0 {
		return -1
	}
	if s.active < 0 {
		return 0
	}
	return (s.active + 1) % n
}

// Start schedules rotation and the countdown. Timers from an earlier
// Start are cleared first.
func (s *Scheduler) Start() {
	s.loop.CancelOwner(OwnerRotation)
	s.loop.CancelOwner(OwnerCountdown)

	if s.config.RotationInterval > 0 && s.registry.Len() > 1 {
		s.loop.Every(OwnerRotation, s.config.RotationInterval, func() {
			if err := s.Transition(s.Next()); err != nil {
				s.logger.Warn("rotation skipped", "error", err)
			}
		})
	}
	if s.config.CountdownInterval > 0 {
		s.loop.Every(OwnerCountdown, s.config.CountdownInterval, s.countdownTick)
	}
}

func (s *Scheduler) countdownTick() {
	s.countdown.Tick()
	s.applyOverrides()
}

// Stop clears every timer the scheduler owns. Handles stay installed.
func (s *Scheduler) Stop() {
	s.loop.CancelOwner(OwnerRotation)
	s.loop.CancelOwner(OwnerCountdown)
	s.loop.CancelOwner(OwnerFade)
	s.fade = fadeNone
	s.awaitFade = false
	s.level = s.steps
}

// Shutdown stops the scheduler, discards in-flight loads and disposes
// the active handles.
func (s *Scheduler) Shutdown() {
	s.Stop()
	s.generation++
	s.pending = -1
	s.teardown(s.handles)
	s.handles = nil
	s.active = -1
}

// SetExhibition switches the numeral overrides for exhibition mode
func (s *Scheduler) SetExhibition(on bool) {
	s.exhibition = on
	s.applyOverrides()
}

func (s *Scheduler) applyOverrides() {
	for i, h := range s.handles {
		switch {
		case s.config.FixedNumeral >= 0:
			h.SetOverride(s.config.FixedNumeral%10, true)
		case s.exhibition && s.config.ExhibitionDigits:
			d, ok := s.countdown.Digit(i)
			h.SetOverride(d, ok)
		default:
			h.SetOverride(0, false)
		}
	}
}

// StepCounters applies a manual counter step on every surface
func (s *Scheduler) StepCounters(dir counter.Direction) {
	for _, h := range s.handles {
		h.Step(dir)
	}
}

// Handles returns the active handles in surface order
func (s *Scheduler) Handles() []*poster.Handle {
	return s.handles
}

// Active returns the active poster index, or -1 before the first load
func (s *Scheduler) Active() int {
	return s.active
}

// Pending returns the index being loaded, or -1
func (s *Scheduler) Pending() int {
	return s.pending
}

// Opacity returns the transition opacity applied to every surface
func (s *Scheduler) Opacity() float64 {
	return float64(s.level) / float64(s.steps)
}

// Countdown returns the installation count
func (s *Scheduler) Countdown() *counter.Countdown {
	return s.countdown
}

// Registry returns the poster registry
func (s *Scheduler) Registry() *poster.Registry {
	return s.registry
}

package tracking

import (
	"log/slog"
	"math"
	"time"

	"github.com/teslashibe/reactive-signs/internal/log"
	"github.com/teslashibe/reactive-signs/pkg/debug"
	"github.com/teslashibe/reactive-signs/pkg/geometry"
)

// Input names where a reading came from
type Input string

const (
	InputFeed    Input = "feed"
	InputPointer Input = "pointer"
	InputIdle    Input = "idle"
)

// Pointer is the local pointer position in viewport pixels
type Pointer struct {
	X, Y float64
}

// Reading is the authoritative input for one frame
type Reading struct {
	X, Y, Z  float64
	Tracking bool
	Depth    *geometry.Depth
	Input    Input
	Status   Status
	Err      error // ErrSignalTimeout or ErrNoSignal when the feed was not used
}

// Source decides which input drives the shared view state
type Source struct {
	config Config
	feed   *Feed
	logger *slog.Logger

	lastStatus Status
}

// NewSource creates a source. A nil feed means pointer input only.
func NewSource(config Config, feed *Feed) *Source {
	return &Source{
		config:     config,
		feed:       feed,
		logger:     log.Component("tracking"),
		lastStatus: SignalAbsent,
	}
}

// Resolve picks the input for this frame. Priority: a live feed sample,
// then the pointer normalized against the viewport. When idle animation
// is enabled and the live feed sees nobody, x sweeps around the center.
func (s *Source) Resolve(now time.Time, p Pointer, viewportW, viewportH float64, frame int) Reading {
	var (
		sample Sample
		status = SignalAbsent
	)
	if s.feed != nil {
		sample, status = s.feed.Latest(now, s.config.StaleAfter)
	}
	s.noteStatus(status)

	var r Reading
	if status == SignalLive {
		r = Reading{
			X:        sample.X,
			Y:        sample.Y,
			Z:        sample.Z,
			Tracking: sample.Tracking,
			Depth:    sample.Depth,
			Input:    InputFeed,
		}
	} else {
		r = Reading{
			X:     normalize(p.X, viewportW),
			Y:     normalize(p.Y, viewportH),
			Z:     1.0,
			Input: InputPointer,
		}
		if status == SignalStale {
			r.Err = ErrSignalTimeout
		} else {
			r.Err = ErrNoSignal
		}
	}
	r.Status = status

	if s.config.IdleEnabled && status == SignalLive && !sample.Tracking {
		r.X = s.IdleX(frame)
		r.Y = 0.5
		r.Z = 1.0
		r.Input = InputIdle
	}
	return r
}

// IdleX returns the idle sweep position for a frame number
func (s *Source) IdleX(frame int) float64 {
	period := s.config.IdlePeriod
	if period <= 0 {
		period = math.Pi * 50
	}
	return s.config.IdleCenter + s.config.IdleAmplitude*math.Sin(float64(frame)/period)
}

func (s *Source) noteStatus(status Status) {
	if status == s.lastStatus {
		return
	}
	debug.TrackLog("tracking signal changed", "from", s.lastStatus.String(), "to", status.String())
	s.logger.Debug("tracking signal changed", "from", s.lastStatus.String(), "to", status.String())
	s.lastStatus = status
}

func normalize(v, size float64) float64 {
	if size <= 0 {
		return 0
	}
	return geometry.Clamp01(v / size)
}

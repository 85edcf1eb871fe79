// Package tracking resolves, once per frame, the viewer position that
// drives every poster: from the external pose feed when it is live,
// otherwise from the local pointer.
package tracking

import (
	"sync"
	"time"

	"github.com/teslashibe/reactive-signs/pkg/geometry"
)

// Sample is one reading of the external tracking feed. X and Y arrive
// already normalized; Z carries depth.
type Sample struct {
	X, Y, Z  float64
	Tracking bool // Sensor currently sees a viewer
	Depth    *geometry.Depth
	At       time.Time
}

// Status describes the freshness of the external signal
type Status int

const (
	SignalAbsent Status = iota // Nothing received yet
	SignalStale                // Last sample older than StaleAfter
	SignalLive                 // Recent sample available
)

func (s Status) String() string {
	switch s {
	case SignalLive:
		return "live"
	case SignalStale:
		return "stale"
	default:
		return "absent"
	}
}

// Feed holds the latest external sample. The feed client writes it from
// its own goroutine; the frame loop reads it.
type Feed struct {
	mu       sync.RWMutex
	last     Sample
	has      bool
	received uint64
	dropped  uint64
}

// NewFeed creates an empty feed
func NewFeed() *Feed {
	return &Feed{}
}

// Push records a new sample. Samples older than the current one are
// dropped so reordered packets never move the viewer backwards in time.
func (f *Feed) Push(s Sample) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.has && s.At.Before(f.last.At) {
		f.dropped++
		return
	}
	f.last = s
	f.has = true
	f.received++
}

// Latest returns the newest sample and its freshness at now
func (f *Feed) Latest(now time.Time, staleAfter time.Duration) (Sample, Status) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if !f.has {
		return Sample{}, SignalAbsent
	}
	if now.Sub(f.last.At) > staleAfter {
		return f.last, SignalStale
	}
	return f.last, SignalLive
}

// Stats returns how many samples were accepted and dropped
func (f *Feed) Stats() (received, dropped uint64) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.received, f.dropped
}

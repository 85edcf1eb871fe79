package scheduler

import (
	"time"

	"github.com/teslashibe/reactive-signs/pkg/counter"
	"github.com/teslashibe/reactive-signs/pkg/poster"
)

// Config holds scheduler timing and fallback settings
type Config struct {
	// RotationInterval is how long a poster stays up. Zero disables rotation.
	RotationInterval time.Duration

	// FadeDuration is the length of each half of a transition.
	FadeDuration time.Duration
	// FadeStep is the interval between opacity steps.
	FadeStep time.Duration

	// CountdownInterval and CountdownLimit drive the installation count.
	CountdownInterval time.Duration
	CountdownLimit    int

	// FallbackIndex is the poster loaded when a selection fails.
	FallbackIndex int

	// ExhibitionDigits makes each surface show its digit of the count
	// while exhibition mode is on.
	ExhibitionDigits bool

	// FixedNumeral, when >= 0, pins every surface to that numeral.
	FixedNumeral int

	Handle poster.HandleConfig
}

// DefaultConfig returns the installation defaults
func DefaultConfig() Config {
	return Config{
		RotationInterval:  240 * time.Second,
		FadeDuration:      time.Second,
		FadeStep:          10 * time.Millisecond,
		CountdownInterval: counter.DefaultCountdownInterval,
		CountdownLimit:    counter.DefaultCountdownLimit,
		FallbackIndex:     0,
		FixedNumeral:      -1,
		Handle:            poster.DefaultHandleConfig(),
	}
}

func (c Config) fadeSteps() int {
	if c.FadeStep <= 0 || c.FadeDuration <= 0 {
		return 1
	}
	n := int(c.FadeDuration / c.FadeStep)
	if n < 1 {
		n = 1
	}
	return n
}

package counter

import (
	"fmt"
	"time"
)

// Countdown defaults.
const (
	DefaultCountdownInterval = time.Second
	DefaultCountdownLimit    = 150
)

// Countdown is the installation-wide count shown across surfaces as one
// zero-padded number, one digit per surface. It counts up once per tick
// and saturates at its limit. It is separate from the per-surface
// Sequencer and does not own a timer; the scheduler ticks it.
type Countdown struct {
	value int
	limit int
	width int
}

// NewCountdown creates a countdown saturating at limit and rendered with
// width digits.
func NewCountdown(limit, width int) *Countdown {
	if limit <= 0 {
		limit = DefaultCountdownLimit
	}
	if width < 1 {
		width = len(fmt.Sprint(limit))
	}
	return &Countdown{limit: limit, width: width}
}

// Tick advances the count by one, saturating at the limit.
func (c *Countdown) Tick() int {
	if c.value < c.limit {
		c.value++
	}
	return c.value
}

// Reset sets the count back to zero.
func (c *Countdown) Reset() {
	c.value = 0
}

// Value returns the current count
func (c *Countdown) Value() int {
	return c.value
}

// String returns the zero-padded count, e.g. "007".
func (c *Countdown) String() string {
	return fmt.Sprintf("%0*d", c.width, c.value)
}

// Digit returns the numeral surface i shows: the i-th digit of the padded
// count. Surfaces past the last digit get false.
func (c *Countdown) Digit(i int) (int, bool) {
	s := c.String()
	if i < 0 || i >= len(s) {
		return 0, false
	}
	return int(s[i] - '0'), true
}

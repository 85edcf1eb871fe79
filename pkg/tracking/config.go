package tracking

import (
	"math"
	"time"
)

// Config holds the tunable parameters for resolving the viewer position
type Config struct {
	// Signal freshness
	StaleAfter time.Duration // Feed samples older than this fall back to pointer input

	// Idle animation (no viewer in front of the sensor)
	IdleEnabled   bool    // Sweep x slowly when the sensor sees nobody
	IdleCenter    float64 // Center of the sweep in normalized units
	IdleAmplitude float64 // Half-width of the sweep in normalized units
	IdlePeriod    float64 // Frames per radian of the sweep

	// Feed connection
	ReadTimeout  time.Duration // Drop the connection after this long without a packet
	ReconnectMin time.Duration // First reconnect delay
	ReconnectMax time.Duration // Reconnect delay cap
}

// DefaultConfig returns the configuration used at the exhibition
func DefaultConfig() Config {
	return Config{
		StaleAfter: 2 * time.Second, // Detector keepalive is 1s

		IdleEnabled:   false,
		IdleCenter:    0.5,
		IdleAmplitude: 0.08,
		IdlePeriod:    math.Pi * 50, // ~2.6 min per cycle at 60fps

		ReadTimeout:  10 * time.Second,
		ReconnectMin: 500 * time.Millisecond,
		ReconnectMax: 10 * time.Second,
	}
}

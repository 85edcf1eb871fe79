// Package exhibition wires the installation together: shared view
// state, position source, poster scheduler and input, stepped once per
// frame by the display.
package exhibition

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	envcfg "github.com/teslashibe/reactive-signs/internal/config"
	"github.com/teslashibe/reactive-signs/pkg/counter"
	"github.com/teslashibe/reactive-signs/pkg/geometry"
	"github.com/teslashibe/reactive-signs/pkg/poster"
	"github.com/teslashibe/reactive-signs/pkg/scheduler"
	"github.com/teslashibe/reactive-signs/pkg/tracking"
	"github.com/teslashibe/reactive-signs/pkg/viewstate"
)

// Default configuration values.
const (
	DefaultSurfaces    = 3
	DefaultPageWidth   = 1080
	DefaultPageHeight  = 1920
	DefaultMQTTPrefix  = "reactive-signs"
	NoNumeralOverride  = -1
	DefaultStatusEvery = 5 * time.Second
)

// ErrNoSurfaces is returned when the installation has nothing to draw on.
var ErrNoSurfaces = errors.New("exhibition: no display surfaces")

// ErrNoPosters is returned when the registry is empty after filtering.
var ErrNoPosters = errors.New("exhibition: no posters registered")

// Config holds all configuration for the installation.
// Flag parsing is done in cmd/exhibition/main.go; this struct is data only.
type Config struct {
	// Debug enables verbose logging and starts with the overlay visible.
	Debug bool `yaml:"debug"`

	// Layout
	Surfaces   int     `yaml:"surfaces"`
	Offset     float64 `yaml:"offset"`
	Smoothing  float64 `yaml:"smoothing"`
	PageWidth  float64 `yaml:"page_width"`
	PageHeight float64 `yaml:"page_height"`

	// Posters lists poster names in key order. Empty means every
	// registered poster.
	Posters        []string `yaml:"posters"`
	InitialPoster  int      `yaml:"initial_poster"`
	FallbackPoster int      `yaml:"fallback_poster"`

	// Timing
	RotationInterval time.Duration `yaml:"rotation_interval"`
	CounterTick      time.Duration `yaml:"counter_tick"`
	CountdownTick    time.Duration `yaml:"countdown_tick"`
	CountdownLimit   int           `yaml:"countdown_limit"`
	FadeDuration     time.Duration `yaml:"fade_duration"`
	FadeStep         time.Duration `yaml:"fade_step"`

	// Numerals
	ExhibitionDigits bool `yaml:"exhibition_digits"`
	FixedNumeral     int  `yaml:"fixed_numeral"`

	Tracking  TrackingConfig  `yaml:"tracking"`
	Dashboard DashboardConfig `yaml:"dashboard"`
	MQTT      MQTTConfig      `yaml:"mqtt"`
}

// TrackingConfig contains the external position feed settings
type TrackingConfig struct {
	URL         string        `yaml:"url"` // empty = pointer only
	StaleAfter  time.Duration `yaml:"stale_after"`
	IdleEnabled bool          `yaml:"idle"`
}

// DashboardConfig contains the web dashboard settings
type DashboardConfig struct {
	Port string `yaml:"port"` // empty = disabled
}

// MQTTConfig contains the event publisher settings
type MQTTConfig struct {
	Broker         string        `yaml:"broker"` // empty = disabled
	TopicPrefix    string        `yaml:"topic_prefix"`
	StatusInterval time.Duration `yaml:"status_interval"`
}

// DefaultConfig returns the configuration used at the exhibition.
func DefaultConfig() Config {
	return Config{
		Surfaces:   DefaultSurfaces,
		Offset:     geometry.DefaultOffset,
		Smoothing:  viewstate.DefaultSmoothing,
		PageWidth:  DefaultPageWidth,
		PageHeight: DefaultPageHeight,

		InitialPoster:  0,
		FallbackPoster: 0,

		RotationInterval: 240 * time.Second,
		CounterTick:      counter.DefaultTickInterval,
		CountdownTick:    counter.DefaultCountdownInterval,
		CountdownLimit:   counter.DefaultCountdownLimit,
		FadeDuration:     time.Second,
		FadeStep:         10 * time.Millisecond,

		FixedNumeral: NoNumeralOverride,

		Tracking: TrackingConfig{
			StaleAfter: tracking.DefaultConfig().StaleAfter,
		},
		MQTT: MQTTConfig{
			TopicPrefix:    DefaultMQTTPrefix,
			StatusInterval: DefaultStatusEvery,
		},
	}
}

// LoadConfig reads a YAML file over the defaults and validates the result.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// LoadEnvConfig fills connection settings the file and flags left empty.
func (c *Config) LoadEnvConfig() {
	if c.Tracking.URL == "" {
		c.Tracking.URL = envcfg.TrackingURL()
	}
	if c.Dashboard.Port == "" {
		c.Dashboard.Port = envcfg.DashboardPort()
	}
	if c.MQTT.Broker == "" {
		c.MQTT.Broker = envcfg.MQTTBroker()
	}
}

// Validate checks the layout and timing settings. A degenerate offset is
// not an error here: the App clamps the affected surfaces and logs it.
// See geometry.Validate.
func (c *Config) Validate() error {
	if c.Surfaces < 1 {
		return fmt.Errorf("%w: surfaces = %d", ErrNoSurfaces, c.Surfaces)
	}
	if !(c.Smoothing >= 0 && c.Smoothing < 1) {
		return &ConfigError{Field: "smoothing", Message: "smoothing must be in [0, 1)"}
	}
	if c.PageWidth <= 0 || c.PageHeight <= 0 {
		return &ConfigError{Field: "page", Message: "page_width and page_height must be > 0"}
	}
	if c.FadeStep <= 0 || c.FadeDuration < c.FadeStep {
		return &ConfigError{Field: "fade", Message: "fade_step must be > 0 and not longer than fade_duration"}
	}
	if c.RotationInterval < 0 || c.CounterTick <= 0 || c.CountdownTick < 0 {
		return &ConfigError{Field: "timing", Message: "rotation_interval and countdown_tick must be >= 0, counter_tick > 0"}
	}
	if c.FixedNumeral < NoNumeralOverride || c.FixedNumeral > counter.MaxValue {
		return &ConfigError{Field: "fixed_numeral", Message: "fixed_numeral must be -1 (none) or 0-9"}
	}
	if c.InitialPoster < 0 || c.FallbackPoster < 0 {
		return &ConfigError{Field: "posters", Message: "initial_poster and fallback_poster must be >= 0"}
	}
	return nil
}

// ConfigError represents a configuration validation error.
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return e.Message
}

// SchedulerConfig derives the scheduler settings
func (c Config) SchedulerConfig() scheduler.Config {
	sc := scheduler.DefaultConfig()
	sc.RotationInterval = c.RotationInterval
	sc.FadeDuration = c.FadeDuration
	sc.FadeStep = c.FadeStep
	sc.CountdownInterval = c.CountdownTick
	sc.CountdownLimit = c.CountdownLimit
	sc.FallbackIndex = c.FallbackPoster
	sc.ExhibitionDigits = c.ExhibitionDigits
	sc.FixedNumeral = c.FixedNumeral
	sc.Handle = poster.HandleConfig{TickInterval: c.CounterTick}
	return sc
}

// TrackingSourceConfig derives the position source settings
func (c Config) TrackingSourceConfig() tracking.Config {
	tc := tracking.DefaultConfig()
	if c.Tracking.StaleAfter > 0 {
		tc.StaleAfter = c.Tracking.StaleAfter
	}
	tc.IdleEnabled = c.Tracking.IdleEnabled
	return tc
}

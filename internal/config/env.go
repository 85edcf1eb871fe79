// Package config provides environment helpers for the exhibition commands.
// Flags always win; these helpers only fill what the command line left empty.
package config

import (
	"os"
	"strconv"
	"time"
)

// Environment variable names.
const (
	EnvConfigFile    = "EXHIBITION_CONFIG"
	EnvTrackingURL   = "TRACKING_URL"
	EnvDashboardPort = "DASHBOARD_PORT"
	EnvMQTTBroker    = "MQTT_BROKER"
	EnvLogLevel      = "LOG_LEVEL"
)

// DefaultTrackingURL is where the pose detector serves OSC over websocket.
const DefaultTrackingURL = "ws://localhost:8025"

// String returns the value of key, or def when unset or empty.
func String(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// Int returns key parsed as an integer, or def when unset or malformed.
func Int(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

// Duration returns key parsed with time.ParseDuration, or def.
func Duration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}

// Bool returns key parsed with strconv.ParseBool, or def.
func Bool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

// ConfigFile returns the YAML config path from EXHIBITION_CONFIG.
func ConfigFile() string {
	return os.Getenv(EnvConfigFile)
}

// TrackingURL returns the tracking feed URL from TRACKING_URL.
// An empty result means pointer input only.
func TrackingURL() string {
	return os.Getenv(EnvTrackingURL)
}

// DashboardPort returns the dashboard port from DASHBOARD_PORT.
func DashboardPort() string {
	return os.Getenv(EnvDashboardPort)
}

// MQTTBroker returns the broker address (host:port) from MQTT_BROKER.
func MQTTBroker() string {
	return os.Getenv(EnvMQTTBroker)
}

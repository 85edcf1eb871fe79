package exhibition

import (
	"log/slog"

	"github.com/teslashibe/reactive-signs/internal/log"
)

// Recorder captures the canvas. Capture itself lives outside the runtime.
type Recorder interface {
	Start() error
	Stop() error
	Recording() bool
}

// LogRecorder only records intent in the log
type LogRecorder struct {
	logger *slog.Logger
	on     bool
}

// NewLogRecorder creates the default recorder
func NewLogRecorder() *LogRecorder {
	return &LogRecorder{logger: log.Component("recorder")}
}

// Start marks recording as started
func (r *LogRecorder) Start() error {
	if !r.on {
		r.on = true
		r.logger.Info("recording started")
	}
	return nil
}

// Stop marks recording as stopped
func (r *LogRecorder) Stop() error {
	if r.on {
		r.on = false
		r.logger.Info("recording stopped")
	}
	return nil
}

// Recording reports whether Start was called without Stop
func (r *LogRecorder) Recording() bool {
	return r.on
}

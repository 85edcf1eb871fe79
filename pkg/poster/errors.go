package poster

import (
	"errors"
	"fmt"
)

// Sentinel errors for common error conditions.
var (
	// ErrNoFactory is returned when a definition loads without a factory.
	ErrNoFactory = errors.New("poster: load returned no factory")

	// ErrNilModule is returned when a factory returns nil for a surface.
	ErrNilModule = errors.New("poster: factory returned nil module")

	// ErrPanic wraps a recovered panic from module code.
	ErrPanic = errors.New("poster: module panicked")
)

// ModuleLoadError reports a poster that failed to load or initialize.
type ModuleLoadError struct {
	// Poster is the definition name.
	Poster string

	// Index is the registry index.
	Index int

	// Surface is the failing surface, or -1 when Load itself failed.
	Surface int

	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *ModuleLoadError) Error() string {
	if e.Surface >= 0 {
		return fmt.Sprintf("poster [%s #%d]: surface %d init failed: %v", e.Poster, e.Index, e.Surface, e.Err)
	}
	return fmt.Sprintf("poster [%s #%d]: load failed: %v", e.Poster, e.Index, e.Err)
}

// Unwrap returns the underlying error.
func (e *ModuleLoadError) Unwrap() error {
	return e.Err
}

// ResourceTeardownError reports a module whose Dispose failed. Teardown
// is best effort; the handle's timers are cleared regardless.
type ResourceTeardownError struct {
	Handle  string
	Poster  string
	Surface int
	Err     error
}

// Error implements the error interface.
func (e *ResourceTeardownError) Error() string {
	return fmt.Sprintf("poster [%s]: surface %d handle %s dispose failed: %v", e.Poster, e.Surface, e.Handle, e.Err)
}

// Unwrap returns the underlying error.
func (e *ResourceTeardownError) Unwrap() error {
	return e.Err
}

// recovered converts a panic value into an error wrapping ErrPanic.
func recovered(v any) error {
	if err, ok := v.(error); ok {
		return fmt.Errorf("%w: %w", ErrPanic, err)
	}
	return fmt.Errorf("%w: %v", ErrPanic, v)
}

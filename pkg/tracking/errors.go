package tracking

import "errors"

var (
	// ErrSignalTimeout is reported when the external feed went quiet.
	// The source falls back to pointer input; it is never fatal.
	ErrSignalTimeout = errors.New("tracking: signal timeout")

	// ErrNoSignal is reported when no feed sample has ever arrived.
	ErrNoSignal = errors.New("tracking: no signal")

	// ErrMalformedPacket is returned when an OSC packet has the wrong shape.
	ErrMalformedPacket = errors.New("tracking: malformed packet")

	// ErrUnknownAddress is returned for OSC addresses the feed does not use.
	ErrUnknownAddress = errors.New("tracking: unknown OSC address")
)

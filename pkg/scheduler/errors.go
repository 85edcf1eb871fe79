package scheduler

import "errors"

// ErrInvalidPoster is returned when a selection names no registered poster.
var ErrInvalidPoster = errors.New("scheduler: invalid poster index")

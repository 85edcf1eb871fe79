// Package timer provides the cooperative event loop every exhibition
// component schedules its work on.
//
// The loop owns no goroutine. The frame callback calls Advance once per
// frame with the current time; Advance runs callbacks posted from other
// goroutines and then every timer whose deadline has passed, in deadline
// order. Tests drive the same loop with a synthetic clock.
//
// Every timer is attributed to an owner so a component can clear all of
// its timers at once and tests can assert nothing leaked.
package timer

import (
	"sync"
	"time"
)

// ID identifies a scheduled timer.
type ID uint64

type entry struct {
	id       ID
	owner    string
	deadline time.Time
	interval time.Duration // zero for one-shot timers
	fn       func()
}

// Loop is a single-threaded timer queue. Every, After, Cancel and Advance
// must be called from the loop goroutine; Post is safe from anywhere.
type Loop struct {
	now    time.Time
	nextID ID
	timers map[ID]*entry

	created  map[string]int
	released map[string]int

	postMu sync.Mutex
	posted []func()
}

// New creates a loop whose clock starts at start.
func New(start time.Time) *Loop {
	return &Loop{
		now:      start,
		timers:   make(map[ID]*entry),
		created:  make(map[string]int),
		released: make(map[string]int),
	}
}

// Now returns the loop time as of the last Advance.
func (l *Loop) Now() time.Time {
	return l.now
}

// Every schedules fn to run every interval, first at now+interval.
// The timer keeps a stable cadence: each firing is rescheduled from its
// own deadline, not from the time Advance happened to run.
func (l *Loop) Every(owner string, interval time.Duration, fn func()) ID {
	if interval <= 0 {
		interval = time.Millisecond
	}
	return l.add(owner, interval, interval, fn)
}

// After schedules fn to run once after delay.
func (l *Loop) After(owner string, delay time.Duration, fn func()) ID {
	if delay < 0 {
		delay = 0
	}
	return l.add(owner, delay, 0, fn)
}

func (l *Loop) add(owner string, delay, interval time.Duration, fn func()) ID {
	l.nextID++
	e := &entry{
		id:       l.nextID,
		owner:    owner,
		deadline: l.now.Add(delay),
		interval: interval,
		fn:       fn,
	}
	l.timers[e.id] = e
	l.created[owner]++
	return e.id
}

// Cancel removes a timer. It reports whether the timer was still pending.
func (l *Loop) Cancel(id ID) bool {
	e, ok := l.timers[id]
	if !ok {
		return false
	}
	l.release(e)
	return true
}

// CancelOwner removes every timer attributed to owner and returns how
// many were pending.
func (l *Loop) CancelOwner(owner string) int {
	n := 0
	for _, e := range l.timers {
		if e.owner == owner {
			l.release(e)
			n++
		}
	}
	return n
}

func (l *Loop) release(e *entry) {
	delete(l.timers, e.id)
	l.released[e.owner]++
}

// Pending returns the number of live timers attributed to owner.
func (l *Loop) Pending(owner string) int {
	n := 0
	for _, e := range l.timers {
		if e.owner == owner {
			n++
		}
	}
	return n
}

// Total returns the number of live timers across all owners.
func (l *Loop) Total() int {
	return len(l.timers)
}

// Stats returns how many timers owner ever created and how many were
// released (cancelled or completed one-shots).
func (l *Loop) Stats(owner string) (created, released int) {
	return l.created[owner], l.released[owner]
}

// Post queues fn to run on the loop goroutine at the next Advance.
// Safe for concurrent use; this is how goroutines hand results back.
func (l *Loop) Post(fn func()) {
	l.postMu.Lock()
	l.posted = append(l.posted, fn)
	l.postMu.Unlock()
}

// Advance moves the clock to now, runs posted callbacks, then fires due
// timers in deadline order. While a timer callback runs, Now reports
// that timer's deadline, so timers it schedules keep exact offsets even
// when a late frame fires several at once. Callbacks may schedule or
// cancel timers; one created during Advance with a deadline not after now
// also fires. Advancing backwards only runs posted callbacks.
func (l *Loop) Advance(now time.Time) {
	target := l.now
	if now.After(target) {
		target = now
	}
	l.drainPosted()

	for {
		e := l.nextDue(target)
		if e == nil {
			break
		}
		if e.deadline.After(l.now) {
			l.now = e.deadline
		}
		if e.interval > 0 {
			e.deadline = e.deadline.Add(e.interval)
		} else {
			l.release(e)
		}
		e.fn()
		l.drainPosted()
	}

	l.now = target
	l.drainPosted()
}

func (l *Loop) drainPosted() {
	for {
		l.postMu.Lock()
		batch := l.posted
		l.posted = nil
		l.postMu.Unlock()
		if len(batch) == 0 {
			return
		}
		for _, fn := range batch {
			fn()
		}
	}
}

// nextDue returns the earliest timer with deadline <= until. Ties go to
// the timer created first so same-deadline timers fire in creation order.
func (l *Loop) nextDue(until time.Time) *entry {
	var best *entry
	for _, e := range l.timers {
		if e.deadline.After(until) {
			continue
		}
		if best == nil || e.deadline.Before(best.deadline) ||
			(e.deadline.Equal(best.deadline) && e.id < best.id) {
			best = e
		}
	}
	return best
}

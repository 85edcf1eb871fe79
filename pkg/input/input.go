// Package input turns device key presses into installation actions.
// It knows nothing about the window toolkit; the display layer reports
// edge-triggered key names and this package decides what they mean.
package input

import "fmt"

// Key names reported by the display layer.
const (
	KeyArrowUp   = "ArrowUp"
	KeyArrowDown = "ArrowDown"
	KeyEscape    = "Escape"
	KeyP         = "P"
	KeyR         = "R"
	KeyS         = "S"
	KeyClick     = "Click"
)

// Kind identifies an action
type Kind int

const (
	None Kind = iota
	SelectPoster
	CounterAdvance
	CounterRewind
	ToggleDebug
	StartRecording
	StopRecording
	RequestFullscreen
	LeaveFullscreen
)

var kindNames = map[Kind]string{
	None:              "none",
	SelectPoster:      "select_poster",
	CounterAdvance:    "counter_advance",
	CounterRewind:     "counter_rewind",
	ToggleDebug:       "toggle_debug",
	StartRecording:    "start_recording",
	StopRecording:     "stop_recording",
	RequestFullscreen: "request_fullscreen",
	LeaveFullscreen:   "leave_fullscreen",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Action is one thing the operator asked for
type Action struct {
	Kind Kind
	// Poster is the registry index for SelectPoster.
	Poster int
}

// Event is a key that went down this frame
type Event struct {
	Key   string
	Shift bool
}

// Mapper maps events to actions for a registry of a given size
type Mapper struct {
	posters int
}

// NewMapper creates a mapper. Digit keys 1..posters select posters;
// at most nine are reachable.
func NewMapper(posters int) *Mapper {
	return &Mapper{posters: min(posters, 9)}
}

// Map returns the action for ev, if any
func (m *Mapper) Map(ev Event) (Action, bool) {
	if len(ev.Key) == 1 && ev.Key[0] >= '1' && ev.Key[0] <= '9' && !ev.Shift {
		n := int(ev.Key[0] - '1')
		if n < m.posters {
			return Action{Kind: SelectPoster, Poster: n}, true
		}
		return Action{}, false
	}

	switch ev.Key {
	case KeyArrowUp:
		return Action{Kind: CounterAdvance}, true
	case KeyArrowDown:
		return Action{Kind: CounterRewind}, true
	case KeyEscape:
		return Action{Kind: LeaveFullscreen}, true
	case KeyClick:
		return Action{Kind: RequestFullscreen}, true
	}

	if ev.Shift {
		switch ev.Key {
		case KeyP:
			return Action{Kind: ToggleDebug}, true
		case KeyR:
			return Action{Kind: StartRecording}, true
		case KeyS:
			return Action{Kind: StopRecording}, true
		}
	}
	return Action{}, false
}

// MapAll maps a frame's events in order, dropping unmapped ones
func (m *Mapper) MapAll(events []Event) []Action {
	var out []Action
	for _, ev := range events {
		if a, ok := m.Map(ev); ok {
			out = append(out, a)
		}
	}
	return out
}

// Allowed reports whether a is honoured in the given mode. Exhibition
// mode locks the counter, debug and recording controls.
func Allowed(a Action, exhibition bool) bool {
	if !exhibition {
		return a.Kind != None
	}
	switch a.Kind {
	case SelectPoster, RequestFullscreen, LeaveFullscreen:
		return true
	}
	return false
}

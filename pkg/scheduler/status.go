package scheduler

// Status is a point-in-time copy of scheduler state
type Status struct {
	Active        int      `json:"active"`
	ActiveName    string   `json:"activeName,omitempty"`
	Pending       int      `json:"pending"`
	Generation    uint64   `json:"generation"`
	Opacity       float64  `json:"opacity"`
	Transitioning bool     `json:"transitioning"`
	Countdown     string   `json:"countdown"`
	Counters      []int    `json:"counters"`
	Modes         []string `json:"modes"`
	Posters       []string `json:"posters"`
	LastError     string   `json:"lastError,omitempty"`
}

// Status returns a snapshot of the scheduler
func (s *Scheduler) Status() Status {
	st := Status{
		Active:        s.active,
		Pending:       s.pending,
		Generation:    s.generation,
		Opacity:       s.Opacity(),
		Transitioning: s.fade != fadeNone || s.awaitFade,
		Countdown:     s.countdown.String(),
		Counters:      make([]int, len(s.handles)),
		Modes:         make([]string, len(s.handles)),
		Posters:       s.registry.Names(),
	}
	if def, ok := s.registry.Get(s.active); ok {
		st.ActiveName = def.Name
	}
	for i, h := range s.handles {
		st.Counters[i] = h.Counter()
		st.Modes[i] = h.CounterMode().String()
	}
	if s.lastErr != nil {
		st.LastError = s.lastErr.Error()
	}
	return st
}

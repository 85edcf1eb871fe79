package exhibition

import (
	"github.com/teslashibe/reactive-signs/pkg/geometry"
	"github.com/teslashibe/reactive-signs/pkg/scheduler"
)

// Status is what the dashboard shows about the installation
type Status struct {
	Frame      int                `json:"frame"`
	FPS        float64            `json:"fps"`
	Signal     string             `json:"signal"`
	Input      string             `json:"input"`
	Tracking   bool               `json:"tracking"`
	Position   geometry.Vec3      `json:"position"`
	Viewport   [2]float64         `json:"viewport"`
	Surfaces   []geometry.Surface `json:"surfaces"`
	Exhibition bool               `json:"exhibition"`
	Debug      bool               `json:"debug"`
	Recording  bool               `json:"recording"`
	Scheduler  scheduler.Status   `json:"scheduler"`
}

// publish stores the status copy other goroutines read
func (a *App) publish() {
	snap := a.state.Snapshot()
	st := Status{
		Frame:      a.frame,
		FPS:        a.fps,
		Signal:     a.reading.Status.String(),
		Input:      string(a.reading.Input),
		Tracking:   a.reading.Tracking,
		Position:   snap.Normal,
		Viewport:   [2]float64{snap.ViewportW, snap.ViewportH},
		Surfaces:   snap.Surfaces,
		Exhibition: a.exhibition,
		Debug:      a.DebugVisible(),
		Recording:  a.recorder.Recording(),
	}
	if a.scheduler != nil {
		st.Scheduler = a.scheduler.Status()
	}

	a.statusMu.Lock()
	a.status = st
	a.statusMu.Unlock()
}

// Status returns the status as of the last frame. Safe for concurrent use.
func (a *App) Status() Status {
	a.statusMu.RLock()
	defer a.statusMu.RUnlock()
	return a.status
}

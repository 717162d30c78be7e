package session

// Status is a point-in-time view of the engine.
type Status struct {
	SessionID    string `json:"session"`
	SessionRowID uint   `json:"sessionRowId"`
	Scenario     string `json:"scenario"`
	Active       bool   `json:"active"`
	Frame        int    `json:"frame"`
	Teams        int    `json:"teams"`
	Feet         int    `json:"feet"`
	Buildings    int    `json:"buildings"`
	Credits      int    `json:"credits"`
}

// Status snapshots the engine. It is safe to call from any goroutine.
func (e *Engine) Status() Status {
	e.mu.Lock()
	defer e.mu.Unlock()

	st := Status{
		SessionID:    e.sessionID,
		SessionRowID: e.deps.Context.SessionRowID(),
		Scenario:     e.scenario,
		Active:       e.active,
	}
	if e.w == nil {
		return st
	}
	st.Frame = e.w.Frame
	st.Teams = e.teams.Count()
	st.Feet = len(e.w.Feet())
	st.Buildings = e.w.Buildings.Count()
	if e.w.PlayerPtr != nil {
		st.Credits = e.w.PlayerPtr.Credits
	}
	return st
}

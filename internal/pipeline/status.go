package pipeline

import (
	"sync"
	"time"
)

// Run states reported by Status.
const (
	StateIdle     = "idle"
	StateRunning  = "running"
	StateComplete = "complete"
	StateFailed   = "failed"
)

// Status is a point-in-time view of the batch.
type Status struct {
	State      string    `json:"state"`
	PairsTotal int       `json:"pairs_total"`
	PairsDone  int       `json:"pairs_done"`
	PairsEmpty int       `json:"pairs_empty"`
	Rows       int       `json:"rows"`
	RunID      string    `json:"run_id,omitempty"`
	ExportedAt time.Time `json:"exported_at,omitzero"`
	Error      string    `json:"error,omitempty"`
}

type statusTracker struct {
	mu sync.Mutex
	s  Status
}

func (t *statusTracker) start(pairs int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.s = Status{State: StateRunning, PairsTotal: pairs}
}

func (t *statusTracker) pairDone(empty bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.s.PairsDone++
	if empty {
		t.s.PairsEmpty++
	}
}

func (t *statusTracker) finish(runID string, exportedAt time.Time, rows int, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.s.RunID = runID
	t.s.ExportedAt = exportedAt
	t.s.Rows = rows
	if err != nil {
		t.s.State = StateFailed
		t.s.Error = err.Error()
		return
	}
	t.s.State = StateComplete
}

func (t *statusTracker) snapshot() Status {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.s.State == "" {
		return Status{State: StateIdle}
	}
	return t.s
}

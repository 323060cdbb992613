package restserver

import (
	"sync"
	"time"
)

// RunStatus summarizes the most recent export run
type RunStatus struct {
	RunID    string    `json:"run_id"`
	Started  time.Time `json:"started"`
	Duration string    `json:"duration"`
	OK       bool      `json:"ok"`
	Error    string    `json:"error,omitempty"`
	Stations int       `json:"stations"`
	Files    []string  `json:"files"`
}

// Snapshot is what the server publishes after each run
type Snapshot struct {
	Status    RunStatus
	Documents map[string]any
}

// State holds the latest snapshot. Runs publish into it; handlers read it.
type State struct {
	mu   sync.RWMutex
	snap *Snapshot
}

// NewState returns an empty state
func NewState() *State {
	return &State{}
}

// Publish replaces the current snapshot. Documents from a failed run are
// only published if the run produced any, so a failure keeps serving the
// previous run's data.
func (s *State) Publish(snap Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(snap.Documents) == 0 && s.snap != nil {
		snap.Documents = s.snap.Documents
	}
	s.snap = &snap
}

// Load returns the current snapshot, if any run has been published
func (s *State) Load() (Snapshot, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.snap == nil {
		return Snapshot{}, false
	}
	return *s.snap, true
}

package dispatch

import "sync"

// Mode selects which source answers calls: the live backend or the
// in-process simulation engine.
type Mode int

const (
	// Live routes calls to the remote backend.
	Live Mode = iota
	// Simulated routes calls to the in-memory simulation engine.
	Simulated
)

func (m Mode) String() string {
	switch m {
	case Live:
		return "live"
	case Simulated:
		return "simulated"
	default:
		return "unknown"
	}
}

// ModeState is the process-wide live/simulated selector. All reads and
// writes go through this one object so that a fallback triggered by one
// call is visible to every subsequent call.
type ModeState struct {
	mu   sync.Mutex
	mode Mode
}

// NewModeState creates a ModeState starting in the given mode.
func NewModeState(initial Mode) *ModeState {
	return &ModeState{mode: initial}
}

// Get returns the current mode.
func (s *ModeState) Get() Mode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mode
}

// Set overrides the current mode. An explicit Set is authoritative: the
// dispatcher never reverts it on its own.
func (s *ModeState) Set(m Mode) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mode = m
}

// FallBack flips Live to Simulated and reports whether this call performed
// the flip. Concurrent failures race here; only one caller sees true, which
// keeps the advisory a one-time event.
func (s *ModeState) FallBack() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.mode != Live {
		return false
	}
	s.mode = Simulated
	return true
}

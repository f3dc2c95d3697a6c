package status

import (
	"fmt"
	"slices"
	"sync"

	"github.com/schoolwatch/vtrack/internal/bus"
)

// State is the phase of a search session.
type State string

const (
	Idle       State = "IDLE"
	Suggesting State = "SUGGESTING"
	Searching  State = "SEARCHING"
	Results    State = "RESULTS"
	Error      State = "ERROR"
)

// validTransitions lists the allowed moves. Idle is reachable from every
// state because toggling the search type resets the session.
var validTransitions = map[State][]State{
	Idle:       {Suggesting, Searching},
	Suggesting: {Idle, Suggesting, Searching},
	Searching:  {Results, Error, Idle},
	Results:    {Suggesting, Searching, Idle},
	Error:      {Suggesting, Searching, Idle},
}

// Machine tracks and enforces search session state transitions.
type Machine struct {
	mu      sync.RWMutex
	current State
	bus     *bus.Bus
}

// NewMachine creates a new state machine starting in Idle.
func NewMachine(b *bus.Bus) *Machine {
	return &Machine{
		current: Idle,
		bus:     b,
	}
}

// Current returns the current state.
func (m *Machine) Current() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

// CanTransition reports whether to is reachable from the current state.
func (m *Machine) CanTransition(to State) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Contains(validTransitions[m.current], to)
}

// Transition attempts to move to a new state. Returns error if transition is invalid.
func (m *Machine) Transition(to State) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !slices.Contains(validTransitions[m.current], to) {
		return fmt.Errorf("invalid transition from %s to %s", m.current, to)
	}
	from := m.current
	m.current = to
	if m.bus != nil && from != to {
		m.bus.Publish(bus.Event{
			Kind:    bus.StateChanged,
			Payload: Change{From: from, To: to},
		})
	}
	return nil
}

// Reset forces the machine back to Idle.
func (m *Machine) Reset() {
	m.mu.RLock()
	cur := m.current
	m.mu.RUnlock()
	if cur != Idle {
		_ = m.Transition(Idle)
	}
}

// Change is the payload for state change events.
type Change struct {
	From State
	To   State
}

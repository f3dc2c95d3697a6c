package status

import (
	"testing"

	"github.com/schoolwatch/vtrack/internal/bus"
)

func TestInitialState(t *testing.T) {
	m := NewMachine(nil)
	if m.Current() != Idle {
		t.Errorf("initial state = %s, want IDLE", m.Current())
	}
}

func TestValidTransitions(t *testing.T) {
	tests := []struct {
		from State
		to   State
	}{
		{Idle, Suggesting},
		{Idle, Searching},
		{Suggesting, Idle},
		{Suggesting, Suggesting},
		{Suggesting, Searching},
		{Searching, Results},
		{Searching, Error},
		{Searching, Idle},
		{Results, Suggesting},
		{Results, Searching},
		{Error, Suggesting},
		{Error, Searching},
		{Results, Idle},
		{Error, Idle},
	}
	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			m := NewMachine(nil)
			walkTo(t, m, tt.from)
			if err := m.Transition(tt.to); err != nil {
				t.Errorf("Transition(%s -> %s) error = %v", tt.from, tt.to, err)
			}
			if m.Current() != tt.to {
				t.Errorf("state = %s, want %s", m.Current(), tt.to)
			}
		})
	}
}

func TestInvalidTransitions(t *testing.T) {
	tests := []struct {
		from State
		to   State
	}{
		{Idle, Results},
		{Idle, Error},
		{Suggesting, Results},
		{Searching, Suggesting},
		{Results, Error},
	}
	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			m := NewMachine(nil)
			walkTo(t, m, tt.from)
			if m.CanTransition(tt.to) {
				t.Errorf("CanTransition(%s -> %s) = true", tt.from, tt.to)
			}
			if err := m.Transition(tt.to); err == nil {
				t.Errorf("Transition(%s -> %s) should fail", tt.from, tt.to)
			}
			if m.Current() != tt.from {
				t.Errorf("state = %s, want unchanged %s", m.Current(), tt.from)
			}
		})
	}
}

func TestTransitionEmitsEvent(t *testing.T) {
	b := bus.New()
	ch, unsub := b.Subscribe("search.", 10)
	defer unsub()

	m := NewMachine(b)
	if err := m.Transition(Suggesting); err != nil {
		t.Fatal(err)
	}

	evt := <-ch
	if evt.Kind != bus.StateChanged {
		t.Errorf("event kind = %q, want %s", evt.Kind, bus.StateChanged)
	}
	change, ok := evt.Payload.(Change)
	if !ok {
		t.Fatalf("payload type = %T, want Change", evt.Payload)
	}
	if change.From != Idle || change.To != Suggesting {
		t.Errorf("change = %v -> %v, want IDLE -> SUGGESTING", change.From, change.To)
	}
}

func TestSelfTransitionIsSilent(t *testing.T) {
	b := bus.New()
	m := NewMachine(b)
	_ = m.Transition(Suggesting)

	ch, unsub := b.Subscribe("search.", 10)
	defer unsub()
	if err := m.Transition(Suggesting); err != nil {
		t.Fatal(err)
	}
	select {
	case evt := <-ch:
		t.Errorf("unexpected event for self transition: %v", evt)
	default:
	}
}

// TestTypeAheadThenSelect walks the common path of a guard typing a name,
// picking a suggestion and getting results back.
func TestTypeAheadThenSelect(t *testing.T) {
	m := NewMachine(nil)
	for _, s := range []State{Suggesting, Searching, Results, Suggesting, Searching, Error} {
		if err := m.Transition(s); err != nil {
			t.Fatalf("Transition to %s: %v (current: %s)", s, err, m.Current())
		}
	}
	if m.Current() != Error {
		t.Errorf("final state = %s, want ERROR", m.Current())
	}
}

func TestResetFromAnyState(t *testing.T) {
	for _, s := range []State{Idle, Suggesting, Searching, Results, Error} {
		t.Run(string(s), func(t *testing.T) {
			m := NewMachine(nil)
			walkTo(t, m, s)
			m.Reset()
			if m.Current() != Idle {
				t.Errorf("state after Reset = %s, want IDLE", m.Current())
			}
		})
	}
}

// walkTo is a helper that transitions the machine to a target state.
func walkTo(t *testing.T, m *Machine, target State) {
	t.Helper()
	paths := map[State][]State{
		Idle:       {},
		Suggesting: {Suggesting},
		Searching:  {Suggesting, Searching},
		Results:    {Suggesting, Searching, Results},
		Error:      {Searching, Error},
	}
	for _, s := range paths[target] {
		if err := m.Transition(s); err != nil {
			t.Fatalf("walkTo(%s): %v", target, err)
		}
	}
}

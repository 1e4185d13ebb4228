// Package inputmode implements the seat's interaction state machine as an
// explicit enum with an allowed-transition table, per the design note
// calling for this instead of scattered booleans.
package inputmode

import "fmt"

// Mode is one of the seat's mutually exclusive interaction states.
type Mode int

const (
	Passthrough Mode = iota
	Menu
	Cycle
	Move
	Resize
	Dnd
)

func (m Mode) String() string {
	switch m {
	case Passthrough:
		return "passthrough"
	case Menu:
		return "menu"
	case Cycle:
		return "cycle"
	case Move:
		return "move"
	case Resize:
		return "resize"
	case Dnd:
		return "dnd"
	default:
		return "unknown"
	}
}

// allowed maps each mode to the set of modes it may transition to
// directly. Every mode may always return to Passthrough (abort/complete).
var allowed = map[Mode]map[Mode]bool{
	Passthrough: {Menu: true, Cycle: true, Move: true, Resize: true, Dnd: true},
	Menu:        {Passthrough: true},
	Cycle:       {Passthrough: true},
	Move:        {Passthrough: true, Resize: true},
	Resize:      {Passthrough: true, Move: true},
	Dnd:         {Passthrough: true},
}

// Machine holds the current mode and enforces the transition table.
type Machine struct {
	mode Mode
}

// New creates a state machine starting in Passthrough.
func New() *Machine { return &Machine{mode: Passthrough} }

// Current returns the current mode.
func (m *Machine) Current() Mode { return m.mode }

// Transition moves to next if the transition is allowed, returning an
// error otherwise. Transitioning to the current mode is always a no-op
// success.
func (m *Machine) Transition(next Mode) error {
	if next == m.mode {
		return nil
	}
	if allowed[m.mode][next] {
		m.mode = next
		return nil
	}
	return fmt.Errorf("inputmode: invalid transition %s -> %s", m.mode, next)
}

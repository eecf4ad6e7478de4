package autosave

import "time"

// Phase is where a session is in its save cycle.
type Phase int

const (
	PhaseIdle Phase = iota
	PhasePendingDebounce
	PhaseSaving
	PhaseSaved
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhasePendingDebounce:
		return "pending"
	case PhaseSaving:
		return "saving"
	case PhaseSaved:
		return "saved"
	}
	return "unknown"
}

// Mode records whether the working list still equals what Load provided or
// has been touched by a user edit.
type Mode int

const (
	ModeLoaded Mode = iota
	ModeEditing
)

func (m Mode) String() string {
	if m == ModeEditing {
		return "editing"
	}
	return "loaded"
}

// Status is a snapshot of a session's sync state.
type Status struct {
	ParentID  string
	Phase     Phase
	Mode      Mode
	Dirty     bool
	LastSaved time.Time
	// LastErr is the most recent save failure; cleared by the next success
	// or by Load.
	LastErr error
}

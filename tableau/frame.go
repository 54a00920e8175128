// Package tableau implements the one-pass tableau search: the frame
// arena (C4), the priority-ordered rule engine (C5), and the DFS search
// driver (C6), including REP/LOOP detection, backtracking and the
// optional SAT-assisted branch.
//
// Grounded throughout on original_source/src/solver.cpp's Solver class;
// the frame-arena-over-pointer design is per spec.md §9's own design
// note, and the explicit-stack/value-copied-frame discipline is grounded
// on crillab-gophersat's solver/solver.go trail/decision-level handling.
package tableau

import (
	"github.com/crillab/gophertl/bitset"
	"github.com/crillab/gophertl/closure"
	"github.com/crillab/gophertl/satbridge"
)

// FrameID is a handle into a Driver's frame arena. Unlike Frame.Depth
// (the tableau depth), a FrameID is unique to the frame it names and
// stays valid for the arena's entire lifetime, even after the frame is
// popped off the active search stack — this is what lets Frame.Chain
// reference an ancestor safely (spec.md §9(a)).
type FrameID int

// NoFrame is the sentinel Chain value for the very first frame, which
// has no previous STEP frame.
const NoFrame FrameID = -1

// Type is a frame's role in the search (spec.md §3).
type Type int

const (
	Unknown Type = iota
	Choice
	Step
	Sat
)

func (t Type) String() string {
	switch t {
	case Choice:
		return "CHOICE"
	case Step:
		return "STEP"
	case Sat:
		return "SAT"
	default:
		return "UNKNOWN"
	}
}

// EventualityState is the tri-state a single outstanding promise can be
// in (spec.md §3, §9's note that this must be a tagged variant, not
// three booleans).
type EventualityState int

const (
	NotRequested EventualityState = iota
	NotSatisfied
	Satisfied
)

// Eventuality tracks one entry of the closure's E set for one frame.
// SatisfiedAt is only meaningful when State == Satisfied, and holds a
// tableau *depth* (not a FrameID), since LOOP compares it against an
// ancestor STEP frame's Depth (spec.md §4.3.1, §4.5).
type Eventuality struct {
	State       EventualityState
	SatisfiedAt int
}

// Frame is one tableau node: a labeling of one time instant plus search
// bookkeeping (spec.md §3, C4). It is value-copied on every CHOICE/SAT
// fork and every STEP advance; the only thing two frames ever share is
// their read-only view of the closure and of an ancestor via Chain.
type Frame struct {
	ID        FrameID
	Depth     int
	Formulas  bitset.Bitset
	ToProcess bitset.Bitset
	Eventualities []Eventuality

	Type   Type
	Chosen closure.FormulaID
	Chain  FrameID

	SAT *satbridge.Session
}

// clone returns a value copy of f suitable for a CHOICE/SAT/STEP child:
// independent bitsets and eventuality slice, same Depth/Chain/closure
// view, fresh Type/SAT (set by the caller as appropriate) and Chosen
// reset to NoFormula (0 is a valid FormulaID, so the zero value would
// otherwise be indistinguishable from "chose closure entry 0").
func (f *Frame) clone() Frame {
	ev := make([]Eventuality, len(f.Eventualities))
	copy(ev, f.Eventualities)
	return Frame{
		Depth:         f.Depth,
		Formulas:      f.Formulas.Clone(),
		ToProcess:     f.ToProcess.Clone(),
		Eventualities: ev,
		Chain:         f.Chain,
		Chosen:        closure.NoFormula,
	}
}

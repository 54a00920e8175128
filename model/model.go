// Package model implements the model extractor (C8): turning a
// satisfied tableau's frame stack into a lasso-shaped trace.
package model

import (
	"strings"

	"github.com/crillab/gophertl/bitset"
	"github.com/crillab/gophertl/closure"
	"github.com/crillab/gophertl/tableau"
)

// Literal is one atomic proposition, possibly negated, true at a state.
type Literal struct {
	Name    string
	Negated bool
}

func (l Literal) String() string {
	if l.Negated {
		return "¬" + l.Name
	}
	return l.Name
}

// State is the set of literals true at one time instant.
type State []Literal

func (s State) String() string {
	parts := make([]string, len(s))
	for i, l := range s {
		parts[i] = l.String()
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

// Lasso is a finite prefix followed by a loop, representing the infinite
// ultimately-periodic trace s_0 ... s_{LoopState-1} (s_LoopState ...
// s_{k-1})^omega (spec.md §4.6, §8's "Lasso model" glossary entry).
type Lasso struct {
	States    []State
	LoopState int
}

// Extract walks d's frame stack (valid once d.Solve has returned Sat) and
// builds the lasso it witnesses.
//
// Grounded on original_source/src/solver.cpp's Solver::model(): skip
// CHOICE/SAT frames, collect one literal set per remaining frame, drop
// the trailing duplicate of the loop target, and special-case the
// formula that simplified to True outright.
func Extract(d *tableau.Driver) *Lasso {
	cl := d.Closure()
	if cl.TrivialTrue {
		return &Lasso{States: []State{{{Name: "⊤"}}}, LoopState: 0}
	}

	var states []State
	for _, f := range d.StackFrames() {
		if f.Type == tableau.Choice || f.Type == tableau.Sat {
			continue
		}
		states = append(states, literalSet(cl, f.Formulas))
	}
	if len(states) > 0 {
		states = states[:len(states)-1]
	}

	return &Lasso{States: states, LoopState: d.LoopState}
}

// literalSet builds the state spec.md §4.6 describes: Atom(name) for
// every asserted atom, ¬Atom(name) for every asserted negation whose
// child is an atom. Every other formula kind is ignored.
func literalSet(cl *closure.Closure, formulas bitset.Bitset) State {
	var s State
	for i := formulas.FindFirst(); i != bitset.NoSentinel; i = formulas.FindNext(i) {
		switch {
		case cl.Atom.Test(i):
			s = append(s, Literal{Name: cl.AtomName[i]})
		case cl.Negation.Test(i) && cl.Atom.Test(cl.LHS[i]):
			s = append(s, Literal{Name: cl.AtomName[cl.LHS[i]], Negated: true})
		}
	}
	return s
}

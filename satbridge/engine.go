// Package satbridge implements the optional SAT-assisted branching of
// C7: it encodes a frame's pending disjunctions (plus the atoms/next
// formulas already asserted) as a small CNF instance, hands it to an
// embedded SAT engine, and extracts a satisfying assignment the tableau
// driver can fold into a child frame. It is never required for
// correctness or completeness (spec.md §4.7, §9).
//
// Grounded on original_source/src/solver.cpp's SAT branch (clause
// collection via its collect() closure, the per-slot _clauses table, and
// the blocking-clause-based enumeration in both the main solve loop and
// _rollback_to_latest_choice), translated from Minisat calls to
// github.com/crillab/gophersat/solver's public API.
package satbridge

import (
	"github.com/crillab/gophersat/solver"
)

// Value is the three-valued result of asking an Engine for a literal's
// binding, matching spec.md §4.7's model_value(Lit) -> {True,False,Undef}.
type Value int

const (
	Undef Value = iota
	True
	False
)

// Engine is the interface an embedded SAT solver must provide (spec.md
// §4.7): new_var, add_clause, solve, model_value. Literals use the
// DIMACS sign convention: a positive int is variable v asserted true, a
// negative int is variable |v| asserted false.
type Engine interface {
	NewVar() int
	AddClause(lits []int)
	Solve() bool
	ModelValue(lit int) Value
}

// Factory constructs a fresh Engine; satbridge.Bridge calls it once per
// SAT frame, matching spec.md's "uniquely owned by their SAT frame and
// dropped on pop" lifecycle.
type Factory func() Engine

// GophersatFactory builds an Engine backed by github.com/crillab/
// gophersat/solver. Variables are buffered until the first Solve call,
// since gophersat's Solver is constructed from a complete Problem rather
// than grown incrementally; clauses added after that first Solve are
// appended live via Solver.AppendClause, which is how enumeration-on-
// demand (re-Solve after a blocking clause) works.
func GophersatFactory() Engine { return &gophersatEngine{} }

type gophersatEngine struct {
	nbVars  int
	clauses [][]int
	slv     *solver.Solver
}

func (e *gophersatEngine) NewVar() int {
	e.nbVars++
	return e.nbVars
}

func (e *gophersatEngine) AddClause(lits []int) {
	if e.slv == nil {
		cp := make([]int, len(lits))
		copy(cp, lits)
		e.clauses = append(e.clauses, cp)
		return
	}
	sl := make([]solver.Lit, len(lits))
	for i, l := range lits {
		sl[i] = solver.IntToLit(l)
	}
	e.slv.AppendClause(solver.NewClause(sl))
}

func (e *gophersatEngine) Solve() bool {
	if e.slv == nil {
		pb := solver.ParseSlice(e.clauses)
		if pb.NbVars < e.nbVars {
			pb.NbVars = e.nbVars
		}
		e.slv = solver.New(pb)
	}
	return e.slv.Solve() == solver.Sat
}

func (e *gophersatEngine) ModelValue(lit int) Value {
	if e.slv == nil {
		return Undef
	}
	v, neg := lit, false
	if v < 0 {
		v, neg = -v, true
	}
	idx := v - 1
	m := e.slv.Model()
	if idx < 0 || idx >= len(m) {
		return Undef
	}
	b := m[idx]
	if neg {
		b = !b
	}
	if b {
		return True
	}
	return False
}

package satbridge

import (
	"sort"

	"github.com/crillab/gophertl/bitset"
	"github.com/crillab/gophertl/closure"
)

// Bridge opens SAT sessions for a given closure, one per SAT frame the
// tableau driver decides to create.
type Bridge struct {
	factory Factory
}

// New returns a Bridge backed by the embedded gophersat solver.
func New() *Bridge { return &Bridge{factory: GophersatFactory} }

// NewWithFactory returns a Bridge backed by an arbitrary Engine factory,
// for testing the driver against a stub engine.
func NewWithFactory(f Factory) *Bridge { return &Bridge{factory: f} }

// Session is one SAT-assisted branch: an Engine loaded with the clauses
// for a single frame's asserted atoms/next-formulas/disjunctions, ready
// to be solved and, on backtracking into the same frame, re-solved
// against a growing set of blocking clauses (spec.md §4.7, §6's SAT
// rollback case).
type Session struct {
	c        *closure.Closure
	engine   Engine
	literals []closure.FormulaID // deduplicated, ascending — variables actually referenced by a loaded clause
	disjSeen []closure.FormulaID // disjunction slots loaded, to be cleared from to_process
}

// Open builds the CNF instance for formulas (spec.md §4.7's encoding: one
// variable per closure index; atoms, next-formulas, negations-of-atoms
// and disjunctions present in formulas each contribute a clause) and
// solves it. The returned bool is the first Solve() result: whether this
// frame's asserted formulas and pending disjunctions admit a consistent
// propositional assignment at all.
//
// Grounded on original_source/src/solver.cpp's SAT setup: the
// `_bitset.atom | _bitset.next | (_bitset.atom<<1 & _bitset.negation) |
// _bitset.disjunction` load mask (here, atom | next | negation |
// disjunction — equivalent, since Simplify guarantees every Negation
// node wraps an atom) and its per-slot `_clauses` table, walked via
// collect() for disjunction leaves.
func (br *Bridge) Open(c *closure.Closure, formulas bitset.Bitset) (*Session, bool) {
	engine := br.factory()
	for i := 0; i < c.N(); i++ {
		engine.NewVar()
	}

	mask := c.Atom.Clone()
	mask.Or(c.Next)
	mask.Or(c.Negation)
	mask.Or(c.Disjunction)
	mask.And(formulas)

	seen := make(map[closure.FormulaID]struct{})
	var disjSeen []closure.FormulaID
	for i := mask.FindFirst(); i != bitset.NoSentinel; i = mask.FindNext(i) {
		clause := clauseForSlot(c, i)
		if len(clause) == 0 {
			continue
		}
		engine.AddClause(clause)
		for _, lit := range clause {
			v := lit
			if v < 0 {
				v = -v
			}
			seen[v-1] = struct{}{}
		}
		if c.Disjunction.Test(i) {
			disjSeen = append(disjSeen, i)
		}
	}

	literals := make([]closure.FormulaID, 0, len(seen))
	for id := range seen {
		literals = append(literals, id)
	}
	sort.Ints(literals)

	sat := engine.Solve()
	return &Session{c: c, engine: engine, literals: literals, disjSeen: disjSeen}, sat
}

// ClearProcessed clears to_process for every disjunction this session
// loaded, matching the original's "disjunctions handled by the SAT
// branch need no further expansion" bookkeeping.
func (s *Session) ClearProcessed(toProcess *bitset.Bitset) {
	for _, i := range s.disjSeen {
		toProcess.Clear(i)
	}
}

// ExtractInto sets, in target, the formula implied by the current model
// for every variable this session's clauses reference, and adds a
// blocking clause so a later Resolve call is forced to find a different
// assignment.
//
// Grounded on original_source/src/solver.cpp's assignment-extraction
// loop (the branch immediately following solver.solve() returning l_True,
// duplicated verbatim in _rollback_to_latest_choice): a variable assigned
// true asserts its own formula; a variable assigned false asserts the
// formula one slot later, which by the canonical order's adjacency
// invariant is exactly the negation (direct or deferred-by-one-Next) of
// the variable's own formula.
func (s *Session) ExtractInto(target *bitset.Bitset) {
	block := make([]int, 0, len(s.literals))
	for _, id := range s.literals {
		if s.engine.ModelValue(id+1) == True {
			target.Set(id)
			block = append(block, -(id + 1))
			continue
		}
		block = append(block, id+1)
		next := id + 1
		if next >= s.c.N() {
			continue
		}
		negatesID := s.c.Negation.Test(next) && s.c.LHS[next] == id
		defersID := s.c.Next.Test(next) && s.c.LHS[next] == id && s.c.Negation.Test(id)
		if negatesID || defersID {
			target.Set(next)
		}
	}
	s.engine.AddClause(block)
}

// Resolve re-solves after ExtractInto's blocking clause, used when
// backtracking pops back into a SAT frame looking for another model
// (spec.md §6's SAT rollback case).
func (s *Session) Resolve() bool { return s.engine.Solve() }

// clauseForSlot returns the DIMACS clause slot i contributes when loaded,
// or nil if i's kind never contributes one directly (conjunction, always,
// eventually, until and not-until are handled by tableau rules instead).
func clauseForSlot(c *closure.Closure, i closure.FormulaID) []int {
	switch {
	case c.Atom.Test(i), c.Negation.Test(i), c.Next.Test(i):
		return []int{literalFor(c, i)}
	case c.Disjunction.Test(i):
		return flattenDisjunction(c, i)
	default:
		return nil
	}
}

// flattenDisjunction walks a (possibly nested) Or tree rooted at i and
// returns the flat clause of leaf literals, mirroring collect()'s
// recursive descent through Disjunction children in the original.
func flattenDisjunction(c *closure.Closure, i closure.FormulaID) []int {
	var lits []int
	var walk func(idx closure.FormulaID)
	walk = func(idx closure.FormulaID) {
		if c.Disjunction.Test(idx) {
			walk(c.LHS[idx])
			walk(c.RHS[idx])
			return
		}
		lits = append(lits, literalFor(c, idx))
	}
	walk(c.LHS[i])
	walk(c.RHS[i])
	return lits
}

// literalFor returns the DIMACS literal representing slot idx: a bare
// negation ¬x becomes the negative literal of x's own variable; a
// Next-wrapped negation ○¬x becomes the negative literal of the ¬x slot's
// variable, which no bare negation uses since those map onto x's.
// Everything else uses its own slot as the variable, positively.
func literalFor(c *closure.Closure, idx closure.FormulaID) int {
	if c.Negation.Test(idx) {
		return -(c.LHS[idx] + 1)
	}
	if c.Next.Test(idx) {
		sub := c.LHS[idx]
		if c.Negation.Test(sub) {
			return -(sub + 1)
		}
	}
	return idx + 1
}

// Package closure implements the closure builder (C2) and bitset index
// (C3): it enumerates every subformula of a (simplified) LTL formula,
// assigns each a dense FormulaID, and precomputes the per-operator-kind
// bitsets, child indices and eventuality lookup tables the tableau rule
// engine applies in constant time.
//
// Grounded on original_source/src/solver.cpp's Solver::_initialize():
// sort+unique by the canonical order, dense index assignment, lhs/rhs
// resolution, and the eventuality LUT construction loop are translated
// close to line-for-line, substituting a position map for the original's
// repeated binary searches (both are O(1)-amortized/O(log n) respectively
// for build-time lookups; the map is the more idiomatic Go choice and the
// dense FormulaID array it produces is exactly what the runtime rules
// need for their own O(1) lookups).
package closure

import (
	"sort"

	"github.com/pkg/errors"

	"github.com/crillab/gophertl/bitset"
	"github.com/crillab/gophertl/formula"
)

// FormulaID is a dense index into a Closure's Formulas slice.
type FormulaID = int

// NoFormula is the sentinel meaning "no such child" (spec.md's FormulaID::MAX).
const NoFormula FormulaID = -1

// Closure is the result of building the closure of a simplified formula.
type Closure struct {
	Formulas []*formula.Formula // sorted by formula.Less, deduplicated
	Start    FormulaID          // index of the (simplified) root formula

	// TrivialTrue/TrivialFalse short-circuit the case where the whole
	// formula reduces to the True/False constant: the closure is a
	// single element and no tableau search is needed (spec.md §4.3,
	// §4.6).
	TrivialTrue  bool
	TrivialFalse bool

	Atom        bitset.Bitset
	Negation    bitset.Bitset
	Next        bitset.Bitset
	Always      bitset.Bitset
	Eventually  bitset.Bitset
	Conjunction bitset.Bitset
	Disjunction bitset.Bitset
	Until       bitset.Bitset
	NotUntil    bitset.Bitset

	LHS []FormulaID
	RHS []FormulaID

	AtomName map[FormulaID]string

	// FwLUT maps a FormulaID to its position in the eventuality list,
	// or NoFormula if it never appears as a promise.
	FwLUT []int
	// BwLUT maps an eventuality position back to its FormulaID.
	BwLUT []FormulaID
}

// N returns the number of formulas in the closure.
func (c *Closure) N() int { return len(c.Formulas) }

// NumEventualities returns |E| (spec.md §3).
func (c *Closure) NumEventualities() int { return len(c.BwLUT) }

// Build constructs the closure of a simplified formula. f must already
// have gone through formula.Simplify: Implies/Iff are rejected.
func Build(f *formula.Formula) (*Closure, error) {
	if containsEliminatedOperator(f) {
		return nil, errors.New("closure: formula contains Implies/Iff; run formula.Simplify first")
	}

	if f == formula.True {
		return &Closure{Formulas: []*formula.Formula{f}, TrivialTrue: true}, nil
	}
	if f == formula.False {
		return &Closure{Formulas: []*formula.Formula{f}, TrivialFalse: true}, nil
	}

	set := make(map[*formula.Formula]struct{})
	collect(f, set)

	list := make([]*formula.Formula, 0, len(set))
	for g := range set {
		list = append(list, g)
	}
	sort.Slice(list, func(i, j int) bool { return formula.Less(list[i], list[j]) })

	pos := make(map[*formula.Formula]int, len(list))
	for i, g := range list {
		pos[g] = i
	}

	n := len(list)
	c := &Closure{
		Formulas:    list,
		Atom:        bitset.New(n),
		Negation:    bitset.New(n),
		Next:        bitset.New(n),
		Always:      bitset.New(n),
		Eventually:  bitset.New(n),
		Conjunction: bitset.New(n),
		Disjunction: bitset.New(n),
		Until:       bitset.New(n),
		NotUntil:    bitset.New(n),
		LHS:         make([]FormulaID, n),
		RHS:         make([]FormulaID, n),
		AtomName:    make(map[FormulaID]string),
		FwLUT:       make([]int, n),
	}
	for i := range c.LHS {
		c.LHS[i] = NoFormula
		c.RHS[i] = NoFormula
		c.FwLUT[i] = NoFormula
	}

	for i, g := range list {
		if g == f {
			c.Start = i
		}
		classify(c, pos, i, g)
	}

	c.buildEventualityLUTs(pos)
	return c, nil
}

// collect walks g, inserting every subformula into set, including the
// synthesized Next(Always(x))/Next(Eventually(x))/Next(a U b)/Next(¬(a U
// b)) entries and the simplified (¬a, ¬b) children of any Not(Until(a,b)).
//
// The last two are not named by spec.md §3 (which only calls out
// Always/Eventually), but the until and not-until rules' alternate
// branches (rules.go) each need a deferred "the until/not-until commitment
// still holds" formula to assert, exactly as always/eventually do —
// original_source/src/solver.cpp's rollback path unconditionally expects
// one at index(aUb)+1 or +2, keyed off whichever formula sits at the
// chosen until/not-until slot. For an until slot the +2 case covers a
// coexisting negation of that same formula, which the canonical order's
// Not-before-Next tie-break places at +1 instead, per original_source's
// compareFunc. For a not-until slot ¬(a U b) the +2 case always applies:
// a U b is in the closure too, and its own synthesized Next(a U b) sorts
// at +1.
func collect(g *formula.Formula, set map[*formula.Formula]struct{}) {
	if _, ok := set[g]; ok {
		return
	}
	set[g] = struct{}{}

	switch g.Kind {
	case formula.KindTrue, formula.KindFalse, formula.KindAtom:
		return
	case formula.KindNot:
		collect(g.Sub, set)
		if g.Sub.Kind == formula.KindUntil {
			na := formula.Simplify(formula.Not(g.Sub.Left))
			nb := formula.Simplify(formula.Not(g.Sub.Right))
			collect(na, set)
			collect(nb, set)
			set[formula.Next(g)] = struct{}{}
		}
	case formula.KindNext:
		collect(g.Sub, set)
	case formula.KindAlways:
		collect(g.Sub, set)
		set[formula.Next(g)] = struct{}{}
	case formula.KindEventually:
		collect(g.Sub, set)
		set[formula.Next(g)] = struct{}{}
	case formula.KindAnd, formula.KindOr:
		collect(g.Left, set)
		collect(g.Right, set)
	case formula.KindUntil:
		collect(g.Left, set)
		collect(g.Right, set)
		set[formula.Next(g)] = struct{}{}
	default:
		panic("closure: formula contains a non-normalized operator")
	}
}

func containsEliminatedOperator(g *formula.Formula) bool {
	switch g.Kind {
	case formula.KindImplies, formula.KindIff:
		return true
	case formula.KindNot, formula.KindNext, formula.KindAlways, formula.KindEventually:
		return containsEliminatedOperator(g.Sub)
	case formula.KindAnd, formula.KindOr, formula.KindUntil:
		return containsEliminatedOperator(g.Left) || containsEliminatedOperator(g.Right)
	default:
		return false
	}
}

func classify(c *Closure, pos map[*formula.Formula]int, i int, g *formula.Formula) {
	switch g.Kind {
	case formula.KindAtom:
		c.Atom.Set(i)
		c.AtomName[i] = g.Name
	case formula.KindNot:
		if g.Sub.Kind == formula.KindUntil {
			c.NotUntil.Set(i)
			na := formula.Simplify(formula.Not(g.Sub.Left))
			nb := formula.Simplify(formula.Not(g.Sub.Right))
			c.LHS[i] = pos[na]
			c.RHS[i] = pos[nb]
			break
		}
		c.Negation.Set(i)
		c.LHS[i] = pos[g.Sub]
	case formula.KindNext:
		c.Next.Set(i)
		c.LHS[i] = pos[g.Sub]
	case formula.KindAlways:
		c.Always.Set(i)
		c.LHS[i] = pos[g.Sub]
	case formula.KindEventually:
		c.Eventually.Set(i)
		c.LHS[i] = pos[g.Sub]
	case formula.KindAnd:
		c.Conjunction.Set(i)
		c.LHS[i] = pos[g.Left]
		c.RHS[i] = pos[g.Right]
	case formula.KindOr:
		c.Disjunction.Set(i)
		c.LHS[i] = pos[g.Left]
		c.RHS[i] = pos[g.Right]
	case formula.KindUntil:
		c.Until.Set(i)
		c.LHS[i] = pos[g.Left]
		c.RHS[i] = pos[g.Right]
	default:
		panic("closure: formula contains a non-normalized operator")
	}
}

// buildEventualityLUTs builds the E set (spec.md §3): for each
// Eventually(x), x; for each Until(a,b), b; for each Not(Until(a,b)),
// both a and b. Deduplicated and ordered by canonical order.
func (c *Closure) buildEventualityLUTs(pos map[*formula.Formula]int) {
	seen := make(map[*formula.Formula]struct{})
	var promises []*formula.Formula
	add := func(g *formula.Formula) {
		if _, ok := seen[g]; ok {
			return
		}
		seen[g] = struct{}{}
		promises = append(promises, g)
	}
	for i, g := range c.Formulas {
		switch {
		case c.Eventually.Test(i):
			add(c.Formulas[c.LHS[i]])
		case c.Until.Test(i):
			add(c.Formulas[c.RHS[i]])
		case c.NotUntil.Test(i):
			add(c.Formulas[c.LHS[i]])
			add(c.Formulas[c.RHS[i]])
		default:
			_ = g
		}
	}
	sort.Slice(promises, func(i, j int) bool { return formula.Less(promises[i], promises[j]) })

	c.BwLUT = make([]FormulaID, len(promises))
	for k, g := range promises {
		id := pos[g]
		c.FwLUT[id] = k
		c.BwLUT[k] = id
	}
}

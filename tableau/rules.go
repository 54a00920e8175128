package tableau

import (
	"github.com/crillab/gophertl/bitset"
	"github.com/crillab/gophertl/closure"
)

// contradictory reports whether f asserts both x and Not(x) for some x
// (rule 0), exploiting the index(Not(x)) == index(x)+1 adjacency
// invariant via a single ShiftRight1 instead of a per-pair scan.
//
// Grounded on original_source/src/solver.cpp's _check_contradiction_rule.
func (d *Driver) contradictory(f *Frame) bool {
	tmp := f.Formulas.Clone()
	tmp.And(d.cl.Negation)
	tmp.ShiftRight1()
	tmp.And(f.Formulas)
	return tmp.Any()
}

// applyConjunction consumes every pending Conjunction entry in one sweep
// (rule 1), asserting both children and clearing to_process.
func (d *Driver) applyConjunction(f *Frame) bool {
	tmp := f.Formulas.Clone()
	tmp.And(d.cl.Conjunction)
	tmp.And(f.ToProcess)
	if tmp.None() {
		return false
	}
	for i := tmp.FindFirst(); i != bitset.NoSentinel; i = tmp.FindNext(i) {
		f.Formulas.Set(d.cl.LHS[i])
		f.Formulas.Set(d.cl.RHS[i])
		f.ToProcess.Clear(i)
	}
	return true
}

// applyAlways consumes every pending Always entry in one sweep (rule 2),
// asserting the child plus the pre-synthesized Next(Always(x)) at i+1.
func (d *Driver) applyAlways(f *Frame) bool {
	tmp := f.Formulas.Clone()
	tmp.And(d.cl.Always)
	tmp.And(f.ToProcess)
	if tmp.None() {
		return false
	}
	for i := tmp.FindFirst(); i != bitset.NoSentinel; i = tmp.FindNext(i) {
		f.Formulas.Set(d.cl.LHS[i])
		f.Formulas.Set(i + 1)
		f.ToProcess.Clear(i)
	}
	return true
}

// applyFixpoint repeatedly applies the two non-branching rules until
// neither adds anything new.
func (d *Driver) applyFixpoint(f *Frame) {
	for {
		changed := d.applyConjunction(f)
		if d.applyAlways(f) {
			changed = true
		}
		if !changed {
			return
		}
	}
}

// pending returns the lowest index i with kind[i] ∧ formulas[i] ∧
// to_process[i], or (NoFormula, false) if none — the common shape shared
// by all four branching rules' "pick one" step.
func pending(f *Frame, kind bitset.Bitset) (closure.FormulaID, bool) {
	tmp := f.Formulas.Clone()
	tmp.And(kind)
	tmp.And(f.ToProcess)
	i := tmp.FindFirst()
	if i == bitset.NoSentinel {
		return closure.NoFormula, false
	}
	return i, true
}

// markEventualityRequested transitions a promise's tracker out of
// NotRequested the first time some branch commits to it (spec.md §4.5).
func (d *Driver) markEventualityRequested(f *Frame, formulaID closure.FormulaID) {
	k := d.cl.FwLUT[formulaID]
	if k == closure.NoFormula {
		return
	}
	if f.Eventualities[k].State == NotRequested {
		f.Eventualities[k].State = NotSatisfied
	}
}

// commitChoice turns the parent frame (still on the stack at parentID)
// into a CHOICE on the given index, then pushes the primary child built
// by assert.
func (d *Driver) commitChoice(parentID FrameID, parent *Frame, chosen closure.FormulaID, assert func(*Frame)) {
	parent.Type = Choice
	parent.Chosen = chosen
	parent.ToProcess.Clear(chosen)
	d.setFrame(parentID, *parent)

	child := parent.clone()
	assert(&child)
	d.push(child)
	d.Stats.FramesCreated++
}

// tryDisjunction is rule 3: on disjunction[i] = (a ∨ b), the primary
// branch asserts a (lhs[i]).
func (d *Driver) tryDisjunction(parentID FrameID, parent *Frame) bool {
	i, ok := pending(parent, d.cl.Disjunction)
	if !ok {
		return false
	}
	d.commitChoice(parentID, parent, i, func(ch *Frame) {
		ch.Formulas.Set(d.cl.LHS[i])
	})
	return true
}

// tryEventually is rule 4: the primary branch asserts the promise now.
func (d *Driver) tryEventually(parentID FrameID, parent *Frame) bool {
	i, ok := pending(parent, d.cl.Eventually)
	if !ok {
		return false
	}
	d.markEventualityRequested(parent, d.cl.LHS[i])
	d.commitChoice(parentID, parent, i, func(ch *Frame) {
		ch.Formulas.Set(d.cl.LHS[i])
	})
	return true
}

// tryUntil is rule 5: on until[i] = (a U b), the primary branch asserts
// b (the promise is fulfilled now).
func (d *Driver) tryUntil(parentID FrameID, parent *Frame) bool {
	i, ok := pending(parent, d.cl.Until)
	if !ok {
		return false
	}
	d.markEventualityRequested(parent, d.cl.RHS[i])
	d.commitChoice(parentID, parent, i, func(ch *Frame) {
		ch.Formulas.Set(d.cl.RHS[i])
	})
	return true
}

// tryNotUntil is rule 6: on not_until[i] = ¬(a U b), the primary branch
// asserts ¬a and ¬b together (both fail right now).
func (d *Driver) tryNotUntil(parentID FrameID, parent *Frame) bool {
	i, ok := pending(parent, d.cl.NotUntil)
	if !ok {
		return false
	}
	d.markEventualityRequested(parent, d.cl.LHS[i])
	d.markEventualityRequested(parent, d.cl.RHS[i])
	d.commitChoice(parentID, parent, i, func(ch *Frame) {
		ch.Formulas.Set(d.cl.LHS[i])
		ch.Formulas.Set(d.cl.RHS[i])
	})
	return true
}

// shouldUseSAT reports whether the SAT branch should be engaged instead
// of the plain disjunction rule: SAT is configured on and at least one
// disjunction is still pending in this frame.
func (d *Driver) shouldUseSAT(f *Frame) bool {
	if !d.cfg.UseSAT {
		return false
	}
	tmp := f.Formulas.Clone()
	tmp.And(f.ToProcess)
	tmp.And(d.cl.Disjunction)
	return tmp.Any()
}

// alternateAssertion returns the assertion a rollback into a consumed
// CHOICE frame on `chosen` must make into the alternate branch, per
// spec.md §4.2 rules 3-6 (as extended by closure's Until/NotUntil Next
// synthesis — see the doc comment of closure's collect function).
//
// Grounded on original_source/src/solver.cpp's
// _rollback_to_latest_choice, including its assert-verified
// chosen+1-else-chosen+2 lookup for the deferred until/not-until slot.
func (d *Driver) alternateAssertion(chosen closure.FormulaID) func(*Frame) {
	c := d.cl
	switch {
	case c.Disjunction.Test(chosen):
		return func(ch *Frame) { ch.Formulas.Set(c.RHS[chosen]) }
	case c.Eventually.Test(chosen):
		return func(ch *Frame) { ch.Formulas.Set(chosen + 1) }
	case c.Until.Test(chosen):
		return func(ch *Frame) {
			ch.Formulas.Set(c.LHS[chosen])
			ch.Formulas.Set(deferredSlot(c, chosen))
		}
	case c.NotUntil.Test(chosen):
		return func(ch *Frame) {
			ch.Formulas.Set(c.RHS[chosen])
			ch.Formulas.Set(deferredSlot(c, chosen))
		}
	default:
		panic("tableau: consumed CHOICE frame names an unrecognized rule kind")
	}
}

// deferredSlot locates the synthesized Next(...) entry closure.Build
// placed after an until/not-until slot: index+1 when that slot holds a
// Next of the chosen formula, otherwise +2. For an until slot, +1 is
// taken only when a coexisting negation of the same formula won the
// canonical order's Not-before-Next tie-break; for a not-until slot, +1
// always holds the Next of its own until, so the entry sits at +2.
func deferredSlot(c *closure.Closure, chosen closure.FormulaID) closure.FormulaID {
	if chosen+1 < c.N() && c.Next.Test(chosen+1) && c.LHS[chosen+1] == chosen {
		return chosen + 1
	}
	return chosen + 2
}

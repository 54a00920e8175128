package tableau

import (
	"math/rand"

	"github.com/crillab/gophertl/bitset"
	"github.com/crillab/gophertl/closure"
	"github.com/crillab/gophertl/config"
	"github.com/crillab/gophertl/satbridge"
)

// Result is the tableau's verdict (spec.md §4.3, §7).
type Result int

const (
	Unsat Result = iota
	Sat
	Undefined
)

func (r Result) String() string {
	switch r {
	case Sat:
		return "SAT"
	case Unsat:
		return "UNSAT"
	default:
		return "UNDEFINED"
	}
}

// Stats accumulates counters a caller can surface for diagnostics
// (spec.md's "practical implementation should also bound total frames"
// note in §5 motivates tracking FramesCreated even though this driver
// does not itself enforce such a bound).
type Stats struct {
	FramesCreated     int
	FramesBacktracked int
	SATInvocations    int
	MaxDepthReached   int
}

// Driver runs the one-pass tableau search over a Closure (C6).
//
// Grounded on original_source/src/solver.cpp's Solver class: an
// explicit frame stack driven by a single solution()-shaped loop, with
// the frame arena substituting for the original's intrusive
// parent-pointer chain (spec.md §9(a)).
type Driver struct {
	cl     *closure.Closure
	cfg    *config.Config
	rng    *rand.Rand
	bridge *satbridge.Bridge

	arena []Frame
	stack []FrameID

	Stats Stats

	// LoopState is the depth of the STEP frame the model extractor
	// should loop back to, valid only after Solve returns Sat
	// (spec.md §4.3.1, §4.6).
	LoopState int

	// hitDepthBound records whether any branch backtracked solely
	// because it hit MaxDepth without a verdict. If the search still
	// exhausts every branch, this makes the overall result Undefined
	// instead of Unsat — a conservative, sound approximation of "every
	// branch hit the bound" (spec.md §7's Undefined result): a mix of
	// depth-bound dead ends and genuine contradictions is reported
	// Undefined rather than a possibly-wrong Unsat.
	hitDepthBound bool
}

// NewDriver builds a Driver ready to search cl under cfg. rng drives
// the occasional/partial lookback heuristics (spec.md §4.3.3, §9); pass
// rand.New(rand.NewSource(seed)) for reproducible runs (spec.md §8's
// round-trip property).
func NewDriver(cl *closure.Closure, cfg *config.Config, rng *rand.Rand) *Driver {
	d := &Driver{cl: cl, cfg: cfg, rng: rng}
	if cfg.UseSAT {
		d.bridge = satbridge.New()
	}
	if cl.TrivialTrue || cl.TrivialFalse {
		return d
	}

	initial := Frame{
		Depth:         0,
		Formulas:      bitset.New(cl.N()),
		ToProcess:     bitset.Full(cl.N()),
		Eventualities: make([]Eventuality, cl.NumEventualities()),
		Chain:         NoFrame,
		Chosen:        closure.NoFormula,
	}
	initial.Formulas.Set(cl.Start)
	d.push(initial)
	return d
}

// Solve runs the search to completion (spec.md §4.3).
func (d *Driver) Solve() Result {
	if d.cl.TrivialTrue {
		return Sat
	}
	if d.cl.TrivialFalse {
		return Unsat
	}
	return d.resume()
}

// Next rolls back the model Solve (or a prior Next) just reported and
// resumes the search for another one — enumeration-on-demand, exactly as
// if the previously reported verdict had been UNSAT (spec.md §5's
// PAUSED/resume state machine; mirrors gophersat's Solver.Enumerate).
// Call only once Solve has returned Sat; returns Unsat once the search
// space is exhausted.
func (d *Driver) Next() Result {
	if !d.backtrack() {
		return Unsat
	}
	return d.resume()
}

func (d *Driver) resume() Result {
	for len(d.stack) > 0 {
		if res, halt := d.step(); halt {
			return res
		}
	}
	if d.hitDepthBound {
		return Undefined
	}
	return Unsat
}

// step processes exactly one iteration of the search: either it
// concludes (returns halt=true with the final Result) or it leaves the
// stack ready for the next call (push, pop, or in-place mutation).
func (d *Driver) step() (Result, bool) {
	id := d.top()
	f := d.frame(id)

	if f.Formulas.None() {
		if f.Chain != NoFrame {
			d.LoopState = d.frame(f.Chain).Depth
		}
		return Sat, true
	}
	if d.contradictory(&f) {
		d.backtrack()
		return 0, false
	}

	d.applyFixpoint(&f)
	d.setFrame(id, f)
	if d.contradictory(&f) {
		d.backtrack()
		return 0, false
	}

	if !d.shouldUseSAT(&f) && d.tryDisjunction(id, &f) {
		return 0, false
	}
	if d.tryEventually(id, &f) {
		return 0, false
	}
	if d.tryUntil(id, &f) {
		return 0, false
	}
	if d.tryNotUntil(id, &f) {
		return 0, false
	}
	if d.shouldUseSAT(&f) {
		d.applySAT(id, &f)
		return 0, false
	}

	return d.finalize(id, &f)
}

// finalize runs once no rule fires: update eventualities, check
// LOOP/REP, then either emit SAT, backtrack (REP or depth bound), or
// STEP (spec.md §4.3, §4.3.1–§4.3.3).
func (d *Driver) finalize(id FrameID, f *Frame) (Result, bool) {
	d.updateEventualities(f)
	d.setFrame(id, *f)

	switch outcome, loopFrame := d.checkLoop(f); outcome {
	case loopSat:
		d.LoopState = d.frame(loopFrame).Depth
		return Sat, true
	case loopRep:
		d.backtrack()
		return 0, false
	}

	if f.Depth >= d.cfg.MaxDepth {
		d.hitDepthBound = true
		d.backtrack()
		return 0, false
	}

	d.applyStep(id, f)
	return 0, false
}

// updateEventualities is run at every frame's fixpoint, before the
// LOOP/REP check (spec.md §4.5): any promise currently held is (re)
// marked Satisfied at this frame's depth.
func (d *Driver) updateEventualities(f *Frame) {
	for k, id := range d.cl.BwLUT {
		if f.Formulas.Test(id) {
			f.Eventualities[k] = Eventuality{State: Satisfied, SatisfiedAt: f.Depth}
		}
	}
}

// applySAT engages the SAT bridge on the pending disjunctions of f
// (spec.md §4.7). On UNSAT it backtracks; on SAT it pushes a child
// frame carrying the extracted assignment.
func (d *Driver) applySAT(id FrameID, f *Frame) {
	d.Stats.SATInvocations++
	pendingFormulas := f.Formulas.Clone()
	pendingFormulas.And(f.ToProcess)
	session, sat := d.bridge.Open(d.cl, pendingFormulas)
	if !sat {
		d.backtrack()
		return
	}

	f.Type = Sat
	f.SAT = session
	session.ClearProcessed(&f.ToProcess)
	d.setFrame(id, *f)

	child := f.clone()
	session.ExtractInto(&child.Formulas)
	d.push(child)
	d.Stats.FramesCreated++
}

// applyStep is rule 7: build the next time instant from every
// Next(x)-asserted formula of f, then push it.
func (d *Driver) applyStep(id FrameID, f *Frame) {
	child := Frame{
		Depth:         f.Depth + 1,
		Formulas:      bitset.New(d.cl.N()),
		ToProcess:     bitset.Full(d.cl.N()),
		Eventualities: append([]Eventuality(nil), f.Eventualities...),
		Chain:         id,
		Chosen:        closure.NoFormula,
	}
	for i := f.Formulas.FindFirst(); i != bitset.NoSentinel; i = f.Formulas.FindNext(i) {
		if d.cl.Next.Test(i) {
			child.Formulas.Set(d.cl.LHS[i])
		}
	}

	f.Type = Step
	d.setFrame(id, *f)
	d.push(child)
	d.Stats.FramesCreated++
	if child.Depth > d.Stats.MaxDepthReached {
		d.Stats.MaxDepthReached = child.Depth
	}
}

// backtrack unwinds the stack until it finds a CHOICE frame with an
// unconsumed alternate branch or a SAT frame with another model,
// pushing that alternative; it pops everything else. Returns false if
// the stack empties (spec.md §4.4).
func (d *Driver) backtrack() bool {
	for len(d.stack) > 0 {
		id := d.top()
		f := d.frame(id)

		if f.Type == Choice && f.Chosen != closure.NoFormula {
			child := f.clone()
			d.alternateAssertion(f.Chosen)(&child)
			f.Chosen = closure.NoFormula
			d.setFrame(id, f)
			d.push(child)
			d.Stats.FramesCreated++
			d.Stats.FramesBacktracked++
			return true
		}

		if f.Type == Sat {
			d.Stats.SATInvocations++
			if f.SAT.Resolve() {
				child := f.clone()
				f.SAT.ExtractInto(&child.Formulas)
				d.push(child)
				d.Stats.FramesCreated++
				d.Stats.FramesBacktracked++
				return true
			}
		}

		d.pop()
		d.Stats.FramesBacktracked++
	}
	return false
}

func (d *Driver) push(f Frame) FrameID {
	id := FrameID(len(d.arena))
	f.ID = id
	d.arena = append(d.arena, f)
	d.stack = append(d.stack, id)
	return id
}

func (d *Driver) pop() { d.stack = d.stack[:len(d.stack)-1] }

func (d *Driver) top() FrameID { return d.stack[len(d.stack)-1] }

func (d *Driver) frame(id FrameID) Frame { return d.arena[id] }

func (d *Driver) setFrame(id FrameID, f Frame) { d.arena[id] = f }

// Closure returns the closure this Driver searches, for use by the model
// extractor.
func (d *Driver) Closure() *closure.Closure { return d.cl }

// StackFrames returns a snapshot of the active search stack, bottom
// (root) to top (most recent), for use by the model extractor once
// Solve has returned Sat (spec.md §4.6).
func (d *Driver) StackFrames() []Frame {
	frames := make([]Frame, len(d.stack))
	for i, id := range d.stack {
		frames[i] = d.frame(id)
	}
	return frames
}

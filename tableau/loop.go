package tableau

// loopOutcome is the verdict of one LOOP/REP walk (spec.md §4.3.1,
// §4.3.2).
type loopOutcome int

const (
	loopNone loopOutcome = iota
	loopSat
	loopRep
)

// checkLoop walks f.Chain (newest ancestor first) looking for a STEP
// frame whose formulas f's formulas are a subset of; if every requested
// eventuality is satisfied since that ancestor, the search concludes
// SAT. Otherwise, if two distinct ancestors have formulas identical to
// f's without eventuality progress, the branch is a dead end (REP).
//
// Grounded on original_source/src/solver.cpp's LOOP-rule walk in
// solution(), including the occasional-lookback probability roll and
// the (here, actually implemented rather than left commented out)
// partial-lookback min_frame truncation — see SPEC_FULL.md §4's
// resolution of spec.md §9's open questions.
func (d *Driver) checkLoop(f *Frame) (loopOutcome, FrameID) {
	// Intn(100) < p gives exactly a p% chance of running, with p=0 and
	// p=100 landing on the exact never/always boundaries a caller passing
	// those values expects.
	if d.rng.Intn(100) >= d.cfg.BacktrackProbability {
		return loopNone, NoFrame
	}
	minDepth := d.sampleMinDepth(f.Depth)

	var repFirst, repSecond FrameID = NoFrame, NoFrame
	for c := f.Chain; c != NoFrame; {
		cf := d.frame(c)
		if cf.Depth >= minDepth && f.Formulas.Subset(cf.Formulas) {
			if d.eventualitiesSatisfiedSince(f, cf.Depth) {
				return loopSat, c
			}
			if f.Formulas.Equal(cf.Formulas) {
				if repFirst == NoFrame {
					repFirst = c
				} else if repSecond == NoFrame {
					repSecond = c
				}
			}
		}
		c = cf.Chain
	}
	if repFirst != NoFrame && repSecond != NoFrame {
		return loopRep, NoFrame
	}
	return loopNone, NoFrame
}

// sampleMinDepth implements the partial-lookback heuristic: a fresh
// percentage is drawn from [BacktrackMin, BacktrackMax] on every walk,
// and ancestors shallower than that percentage of the current depth are
// skipped. BacktrackMin == BacktrackMax == 0 disables it (min_frame is
// always 0, so every ancestor is eligible).
func (d *Driver) sampleMinDepth(depth int) int {
	lo, hi := d.cfg.BacktrackMin, d.cfg.BacktrackMax
	if lo == 0 && hi == 0 {
		return 0
	}
	pct := lo
	if hi > lo {
		pct += d.rng.Intn(hi - lo + 1)
	}
	return pct * depth / 100
}

// eventualitiesSatisfiedSince reports whether every eventuality f has
// requested is Satisfied at a depth no earlier than sinceDepth
// (spec.md §4.3.1: "e.satisfied ∧ e.id ≥ C.id"). A NotRequested
// eventuality is ignored — it was never promised on this branch.
func (d *Driver) eventualitiesSatisfiedSince(f *Frame, sinceDepth int) bool {
	for _, e := range f.Eventualities {
		if e.State == NotRequested {
			continue
		}
		if !(e.State == Satisfied && e.SatisfiedAt >= sinceDepth) {
			return false
		}
	}
	return true
}

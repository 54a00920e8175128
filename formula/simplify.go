package formula

// Simplify normalizes f to the operator set the closure builder expects:
// {True, False, Atom, Not, Next, Always, Eventually, And, Or, Until}.
// Implies and Iff are eliminated, double negation is collapsed, and Not
// is pushed inward through And/Or/Next/Always/Eventually — but not
// through Until, since "not-until" is its own primitive operator in the
// closure (spec.md §3, §4.1). Grounded on bf.not.nnf()'s structural
// recursion (crillab-gophersat/bf/bf.go), generalized to LTL's temporal
// operators and the U-boundary rule from original_source's treatment of
// Not(Until(a,b)) as a primitive.
func Simplify(f *Formula) *Formula {
	return foldConstants(simplify(eliminate(f)))
}

// eliminate rewrites Implies/Iff in terms of Not/And/Or, recursively.
func eliminate(f *Formula) *Formula {
	switch f.Kind {
	case KindTrue, KindFalse, KindAtom:
		return f
	case KindNot:
		return Not(eliminate(f.Sub))
	case KindNext:
		return Next(eliminate(f.Sub))
	case KindAlways:
		return Always(eliminate(f.Sub))
	case KindEventually:
		return Eventually(eliminate(f.Sub))
	case KindAnd:
		return And(eliminate(f.Left), eliminate(f.Right))
	case KindOr:
		return Or(eliminate(f.Left), eliminate(f.Right))
	case KindUntil:
		return Until(eliminate(f.Left), eliminate(f.Right))
	case KindImplies:
		l, r := eliminate(f.Left), eliminate(f.Right)
		return Or(Not(l), r)
	case KindIff:
		l, r := eliminate(f.Left), eliminate(f.Right)
		return And(Or(Not(l), r), Or(l, Not(r)))
	default:
		panic("formula: invalid kind")
	}
}

// simplify pushes Not inward (negation normal form), stopping at Until.
func simplify(f *Formula) *Formula {
	switch f.Kind {
	case KindTrue, KindFalse, KindAtom:
		return f
	case KindNot:
		return pushNot(f.Sub)
	case KindNext:
		return Next(simplify(f.Sub))
	case KindAlways:
		return Always(simplify(f.Sub))
	case KindEventually:
		return Eventually(simplify(f.Sub))
	case KindAnd:
		return And(simplify(f.Left), simplify(f.Right))
	case KindOr:
		return Or(simplify(f.Left), simplify(f.Right))
	case KindUntil:
		return Until(simplify(f.Left), simplify(f.Right))
	default:
		panic("formula: invalid kind after elimination")
	}
}

// pushNot returns the simplified form of Not(f), pushing the negation
// across And/Or/Next/Always/Eventually (De Morgan; □/◇ are duals) and
// collapsing Not(Not(x)). It leaves Not(Until(a,b)) as a primitive
// "not-until" node, and likewise leaves a bare atom negated.
func pushNot(f *Formula) *Formula {
	switch f.Kind {
	case KindTrue:
		return False
	case KindFalse:
		return True
	case KindAtom:
		return Not(f)
	case KindNot:
		return simplify(f.Sub)
	case KindNext:
		return Next(pushNot(f.Sub))
	case KindAlways:
		return Eventually(pushNot(f.Sub))
	case KindEventually:
		return Always(pushNot(f.Sub))
	case KindAnd:
		return Or(pushNot(f.Left), pushNot(f.Right))
	case KindOr:
		return And(pushNot(f.Left), pushNot(f.Right))
	case KindUntil:
		return Not(simplify(f))
	default:
		panic("formula: invalid kind after elimination")
	}
}

// foldConstants absorbs True/False produced by a user formula that
// spells them out explicitly (e.g. "p & true"), so they never need to
// appear as a proper subformula deeper in the closure than the root —
// the closure builder's special case for a trivially True/False root
// (spec.md §4.6) assumes exactly that. Grounded on bf.and.nnf()/
// bf.or.nnf()'s identical absorption of True/False operands.
func foldConstants(f *Formula) *Formula {
	switch f.Kind {
	case KindTrue, KindFalse, KindAtom:
		return f
	case KindNot:
		sub := foldConstants(f.Sub)
		switch sub {
		case True:
			return False
		case False:
			return True
		default:
			if sub.Kind != KindAtom && sub.Kind != KindUntil {
				// folding an Until below can leave a negation that
				// still needs pushing inward
				return Simplify(Not(sub))
			}
			return Not(sub)
		}
	case KindNext:
		return foldUnaryTemporal(Next, foldConstants(f.Sub))
	case KindAlways:
		return foldUnaryTemporal(Always, foldConstants(f.Sub))
	case KindEventually:
		return foldUnaryTemporal(Eventually, foldConstants(f.Sub))
	case KindAnd:
		l, r := foldConstants(f.Left), foldConstants(f.Right)
		switch {
		case l == False || r == False:
			return False
		case l == True:
			return r
		case r == True:
			return l
		default:
			return And(l, r)
		}
	case KindOr:
		l, r := foldConstants(f.Left), foldConstants(f.Right)
		switch {
		case l == True || r == True:
			return True
		case l == False:
			return r
		case r == False:
			return l
		default:
			return Or(l, r)
		}
	case KindUntil:
		l, r := foldConstants(f.Left), foldConstants(f.Right)
		switch {
		case r == True || r == False || l == False:
			// a U true = true, a U false = false, false U b = b
			return r
		case l == True:
			return Eventually(r)
		default:
			return Until(l, r)
		}
	default:
		panic("formula: invalid kind after elimination")
	}
}

// foldUnaryTemporal absorbs True/False under X/G/F: on an infinite
// trace, the constant's truth value does not depend on which instant it
// is evaluated at.
func foldUnaryTemporal(op func(*Formula) *Formula, sub *Formula) *Formula {
	if sub == True || sub == False {
		return sub
	}
	return op(sub)
}

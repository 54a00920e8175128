// Package formula implements the LTL formula AST (closure component C1),
// its canonical total order, a recursive-descent parser and a simplifier
// that normalizes a parsed formula to the minimal operator set the
// tableau's closure builder expects.
package formula

import (
	"fmt"
	"sync"
)

// Kind identifies a Formula's operator. Order matters: it is the
// tie-breaker of last resort in the canonical total order (Less).
type Kind int

const (
	KindTrue Kind = iota
	KindFalse
	KindAtom
	KindNot
	KindNext
	KindAlways
	KindEventually
	KindAnd
	KindOr
	KindUntil
	// KindImplies and KindIff only ever appear transiently, before
	// Simplify eliminates them. The closure builder rejects them.
	KindImplies
	KindIff
)

// A Formula is an immutable LTL formula node. Formulas are hash-consed:
// two structurally identical formulas are always the same *Formula, so
// pointer equality doubles as structural equality.
type Formula struct {
	Kind  Kind
	Name  string   // set iff Kind == KindAtom
	Sub   *Formula // set iff Kind in {Not, Next, Always, Eventually}
	Left  *Formula // set iff Kind in {And, Or, Until, Implies, Iff}
	Right *Formula
}

var (
	consMu    sync.Mutex
	consTable = make(map[string]*Formula)
)

func intern(key string, f *Formula) *Formula {
	consMu.Lock()
	defer consMu.Unlock()
	if existing, ok := consTable[key]; ok {
		return existing
	}
	consTable[key] = f
	return f
}

// True is the tautology constant.
var True = intern("T", &Formula{Kind: KindTrue})

// False is the contradiction constant.
var False = intern("F", &Formula{Kind: KindFalse})

// Atom returns the named propositional variable.
func Atom(name string) *Formula {
	return intern("a:"+name, &Formula{Kind: KindAtom, Name: name})
}

// Not returns the negation of f.
func Not(f *Formula) *Formula {
	return intern(key1("!", f), &Formula{Kind: KindNot, Sub: f})
}

// Next returns the "next" (○) of f.
func Next(f *Formula) *Formula {
	return intern(key1("X", f), &Formula{Kind: KindNext, Sub: f})
}

// Always returns the "always" (□) of f.
func Always(f *Formula) *Formula {
	return intern(key1("G", f), &Formula{Kind: KindAlways, Sub: f})
}

// Eventually returns the "eventually" (◇) of f.
func Eventually(f *Formula) *Formula {
	return intern(key1("F", f), &Formula{Kind: KindEventually, Sub: f})
}

// And returns the conjunction of a and b.
func And(a, b *Formula) *Formula {
	return intern(key2("&", a, b), &Formula{Kind: KindAnd, Left: a, Right: b})
}

// Or returns the disjunction of a and b.
func Or(a, b *Formula) *Formula {
	return intern(key2("|", a, b), &Formula{Kind: KindOr, Left: a, Right: b})
}

// Until returns a U b.
func Until(a, b *Formula) *Formula {
	return intern(key2("U", a, b), &Formula{Kind: KindUntil, Left: a, Right: b})
}

// Implies returns a -> b. Eliminated by Simplify.
func Implies(a, b *Formula) *Formula {
	return intern(key2("->", a, b), &Formula{Kind: KindImplies, Left: a, Right: b})
}

// Iff returns a <-> b. Eliminated by Simplify.
func Iff(a, b *Formula) *Formula {
	return intern(key2("<->", a, b), &Formula{Kind: KindIff, Left: a, Right: b})
}

func key1(op string, f *Formula) string {
	return fmt.Sprintf("%s(%p)", op, f)
}

func key2(op string, a, b *Formula) string {
	return fmt.Sprintf("%s(%p,%p)", op, a, b)
}

// String renders f using the ASCII operators Parse accepts, suitable for
// round-tripping through Parse.
func (f *Formula) String() string {
	switch f.Kind {
	case KindTrue:
		return "true"
	case KindFalse:
		return "false"
	case KindAtom:
		return f.Name
	case KindNot:
		return "!" + f.Sub.String()
	case KindNext:
		return "X(" + f.Sub.String() + ")"
	case KindAlways:
		return "G(" + f.Sub.String() + ")"
	case KindEventually:
		return "F(" + f.Sub.String() + ")"
	case KindAnd:
		return "(" + f.Left.String() + " & " + f.Right.String() + ")"
	case KindOr:
		return "(" + f.Left.String() + " | " + f.Right.String() + ")"
	case KindUntil:
		return "(" + f.Left.String() + " U " + f.Right.String() + ")"
	case KindImplies:
		return "(" + f.Left.String() + " -> " + f.Right.String() + ")"
	case KindIff:
		return "(" + f.Left.String() + " <-> " + f.Right.String() + ")"
	default:
		panic("formula: invalid kind")
	}
}

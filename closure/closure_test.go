package closure

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crillab/gophertl/formula"
)

func build(t *testing.T, src string) *Closure {
	t.Helper()
	f, err := formula.ParseString(src)
	require.NoError(t, err)
	f = formula.Simplify(f)
	c, err := Build(f)
	require.NoError(t, err)
	return c
}

func TestTrivialTrueFalse(t *testing.T) {
	ct := build(t, "true")
	assert.True(t, ct.TrivialTrue)
	assert.Equal(t, 1, ct.N())

	cf := build(t, "false")
	assert.True(t, cf.TrivialFalse)
}

func TestNegationIndexIsChildIndexPlusOne(t *testing.T) {
	c := build(t, "p & !p")
	for i := 0; i < c.N(); i++ {
		if c.Negation.Test(i) {
			assert.Equal(t, c.LHS[i]+1, i, "Not(x) must sit at index(x)+1")
		}
	}
}

func TestSynthesizedNextAlwaysIndexIsParentPlusOne(t *testing.T) {
	c := build(t, "G p")
	found := false
	for i := 0; i < c.N(); i++ {
		if c.Always.Test(i) {
			found = true
			assert.True(t, c.Next.Test(i+1), "entry after Always(x) must be Next(...)")
			assert.Equal(t, i, c.LHS[i+1], "Next(Always(x)).Sub must be Always(x) itself")
		}
	}
	assert.True(t, found)
}

func TestSynthesizedNextEventuallyIndexIsParentPlusOne(t *testing.T) {
	c := build(t, "F p")
	found := false
	for i := 0; i < c.N(); i++ {
		if c.Eventually.Test(i) {
			found = true
			assert.True(t, c.Next.Test(i+1))
			assert.Equal(t, i, c.LHS[i+1])
		}
	}
	assert.True(t, found)
}

func TestSynthesizedNextUntilSitsImmediatelyAfter(t *testing.T) {
	c := build(t, "p U q")
	untilID := -1
	for i := 0; i < c.N(); i++ {
		if c.Until.Test(i) {
			untilID = i
		}
	}
	require.NotEqual(t, -1, untilID)
	assert.True(t, c.Next.Test(untilID+1))
	assert.Equal(t, untilID, c.LHS[untilID+1])
}

func TestSynthesizedNextUntilBumpedByCoexistingNotUntil(t *testing.T) {
	c := build(t, "(p U q) & !(p U q)")
	untilID := -1
	for i := 0; i < c.N(); i++ {
		if c.Until.Test(i) {
			untilID = i
		}
	}
	require.NotEqual(t, -1, untilID)
	// Not(p U q) wins the Not-before-Next tie-break and occupies
	// untilID+1; the synthesized Next(p U q) is bumped to untilID+2.
	assert.True(t, c.NotUntil.Test(untilID+1))
	assert.True(t, c.Next.Test(untilID+2))
	assert.Equal(t, untilID, c.LHS[untilID+2])
}

func TestSynthesizedNextNotUntilSitsImmediatelyAfter(t *testing.T) {
	c := build(t, "!(p U q)")
	notUntilID := -1
	for i := 0; i < c.N(); i++ {
		if c.NotUntil.Test(i) {
			notUntilID = i
		}
	}
	require.NotEqual(t, -1, notUntilID)
	assert.True(t, c.Next.Test(notUntilID+1))
	assert.Equal(t, notUntilID, c.LHS[notUntilID+1])
}

func TestNotUntilHasBothNegatedChildren(t *testing.T) {
	c := build(t, "!(p U q)")
	found := false
	for i := 0; i < c.N(); i++ {
		if c.NotUntil.Test(i) {
			found = true
			assert.True(t, c.Negation.Test(c.LHS[i]) || c.Formulas[c.LHS[i]] == formula.False)
			assert.True(t, c.Negation.Test(c.RHS[i]) || c.Formulas[c.RHS[i]] == formula.False)
		}
	}
	assert.True(t, found)
}

func TestEventualityLUTRoundTrips(t *testing.T) {
	c := build(t, "F p & (q U r)")
	for k := 0; k < c.NumEventualities(); k++ {
		id := c.BwLUT[k]
		assert.Equal(t, k, c.FwLUT[id])
	}
}

func TestUntilEventualityIsRHS(t *testing.T) {
	c := build(t, "p U q")
	qID := -1
	for i, f := range c.Formulas {
		if f.Kind == formula.KindAtom && f.Name == "q" {
			qID = i
		}
	}
	require.NotEqual(t, -1, qID)
	assert.NotEqual(t, NoFormula, c.FwLUT[qID])
}

func TestCanonicalOrderIsGloballySorted(t *testing.T) {
	c := build(t, "G(p -> F q) & (p U q) & !(r U q)")
	for i := 1; i < c.N(); i++ {
		assert.True(t, formula.Less(c.Formulas[i-1], c.Formulas[i]))
	}
}

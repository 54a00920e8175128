package bitset

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetTestClear(t *testing.T) {
	b := New(130)
	require.False(t, b.Test(5))
	b.Set(5)
	b.Set(64)
	b.Set(129)
	assert.True(t, b.Test(5))
	assert.True(t, b.Test(64))
	assert.True(t, b.Test(129))
	assert.False(t, b.Test(6))
	b.Clear(5)
	assert.False(t, b.Test(5))
}

func TestAnyNone(t *testing.T) {
	b := New(10)
	assert.True(t, b.None())
	b.Set(3)
	assert.True(t, b.Any())
}

func TestAndOrAndNot(t *testing.T) {
	a := New(8)
	b := New(8)
	a.Set(1)
	a.Set(2)
	b.Set(2)
	b.Set(3)

	u := a.Clone()
	u.Or(b)
	assert.True(t, u.Test(1))
	assert.True(t, u.Test(2))
	assert.True(t, u.Test(3))

	i := a.Clone()
	i.And(b)
	assert.False(t, i.Test(1))
	assert.True(t, i.Test(2))
	assert.False(t, i.Test(3))

	d := a.Clone()
	d.AndNot(b)
	assert.True(t, d.Test(1))
	assert.False(t, d.Test(2))
}

func TestShiftRight1ExploitsNegationOffset(t *testing.T) {
	// Mirrors Rule 0: index(Not(x)) == index(x)+1, so shifting the
	// negation bitset right by one aligns bit i with x's own bit i.
	b := New(70)
	b.Set(5) // pretend index 5 is Not(x) where x is at index 4
	b.Set(68)
	b.ShiftRight1()
	assert.True(t, b.Test(4))
	assert.True(t, b.Test(67))
	assert.False(t, b.Test(5))
}

func TestShiftLeft1MasksTail(t *testing.T) {
	b := New(65)
	b.Set(64)
	b.ShiftLeft1()
	assert.False(t, b.Test(65 % 65)) // out of range bit must not reappear
	assert.False(t, b.Any())
}

func TestSubsetEqual(t *testing.T) {
	a := New(8)
	b := New(8)
	a.Set(1)
	b.Set(1)
	b.Set(2)
	assert.True(t, a.Subset(b))
	assert.False(t, b.Subset(a))
	assert.False(t, a.Equal(b))
	a.Set(2)
	assert.True(t, a.Equal(b))
}

func TestFindFirstFindNext(t *testing.T) {
	b := New(200)
	b.Set(3)
	b.Set(64)
	b.Set(130)
	assert.Equal(t, 3, b.FindFirst())
	assert.Equal(t, 64, b.FindNext(3))
	assert.Equal(t, 130, b.FindNext(64))
	assert.Equal(t, NoSentinel, b.FindNext(130))

	empty := New(10)
	assert.Equal(t, NoSentinel, empty.FindFirst())
}

func TestFindNextAtWordBoundary(t *testing.T) {
	b := New(128)
	b.Set(63)
	b.Set(64)
	assert.Equal(t, 63, b.FindFirst())
	assert.Equal(t, 64, b.FindNext(63))
}

package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClampsPercentagesIntoRange(t *testing.T) {
	c, err := New(32, false, 150, -10, 200)
	require.NoError(t, err)
	assert.Equal(t, 100, c.BacktrackProbability)
	assert.Equal(t, 0, c.BacktrackMin)
	assert.Equal(t, 100, c.BacktrackMax)
}

func TestNewSwapsInvertedMinMax(t *testing.T) {
	c, err := New(32, false, 100, 80, 20)
	require.NoError(t, err)
	assert.Equal(t, 20, c.BacktrackMin)
	assert.Equal(t, 80, c.BacktrackMax)
}

func TestNewRejectsNonPositiveMaxDepthByFlooring(t *testing.T) {
	c, err := New(0, false, 100, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, c.MaxDepth)
}

func TestDefaultMatchesResolvedOpenQuestions(t *testing.T) {
	d := Default()
	assert.Equal(t, 32, d.MaxDepth)
	assert.False(t, d.UseSAT)
	assert.Equal(t, 100, d.BacktrackProbability)
	assert.Equal(t, 0, d.BacktrackMin)
	assert.Equal(t, 0, d.BacktrackMax)
}

package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	cmd := NewRootCommand()
	var out, errBuf bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errBuf)
	cmd.SetArgs(args)
	err = cmd.Execute()
	return out.String(), errBuf.String(), err
}

func TestSatFormulaPrintsLassoAndSucceeds(t *testing.T) {
	out, _, err := execute(t, "p")
	require.NoError(t, err)
	assert.Contains(t, out, "p")
	assert.Contains(t, out, "loop back to state 0")
}

func TestUnsatFormulaReturnsUnsatError(t *testing.T) {
	out, _, err := execute(t, "p & !p")
	require.Error(t, err)
	assert.IsType(t, &UnsatError{}, err)
	assert.Contains(t, out, "UNSAT")
}

func TestUndefinedWhenDepthBoundExhausted(t *testing.T) {
	// With the LOOP/REP heuristic switched off entirely (probability 0),
	// "G p" never gets a verdict: it never contradicts, never branches,
	// and nothing ever notices the STEP frames repeat, so the search
	// climbs STEP frames until it hits max-depth and every branch (there
	// is only the one) reports exhaustion.
	out, _, err := execute(t, "--max-depth", "2", "--backtrack-probability", "0", "G p")
	require.Error(t, err)
	assert.IsType(t, &UndefinedError{}, err)
	assert.Contains(t, out, "UNDEFINED")
}

func TestMalformedFormulaIsAUsageError(t *testing.T) {
	_, _, err := execute(t, "p &")
	require.Error(t, err)
	assert.IsType(t, &UsageError{}, err)
}

func TestCountReportsAtLeastOneModelForASatisfiableFormula(t *testing.T) {
	out, _, err := execute(t, "--count", "p")
	require.NoError(t, err)
	assert.NotEqual(t, "0", strings.TrimSpace(out))
}

func TestVerboseEmitsStatsToStderr(t *testing.T) {
	_, errOut, err := execute(t, "--verbose", "p")
	require.NoError(t, err)
	assert.Contains(t, errOut, "search finished")
}

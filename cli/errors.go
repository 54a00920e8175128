package cli

// UsageError wraps a parse or configuration failure (spec.md §7's
// ParseError/ConfigError), reported on exit code 2.
type UsageError struct {
	Cause error
}

func (e *UsageError) Error() string { return e.Cause.Error() }
func (e *UsageError) Unwrap() error { return e.Cause }

// UnsatError signals the solver concluded UNSAT; it carries no message
// of its own since "UNSAT" is already printed to stdout by the time
// Execute sees it.
type UnsatError struct{}

func (e *UnsatError) Error() string { return "unsatisfiable" }

// UndefinedError signals the solver exhausted the depth bound on every
// branch without a verdict (spec.md §7's Undefined result).
type UndefinedError struct{}

func (e *UndefinedError) Error() string { return "undefined: depth bound exhausted" }

// Package config holds the tableau driver's tunable parameters: the
// depth bound, whether the SAT bridge is engaged, and the knobs of the
// occasional-lookback and partial-lookback heuristics. Grounded on
// original_source/src/solver.cpp's constructor, which silently clamps
// these same percentages into range rather than rejecting the caller's
// input.
package config

import "github.com/pkg/errors"

// Config is the tableau driver's configuration (spec.md §6, §9's
// resolved defaults).
type Config struct {
	MaxDepth              int
	UseSAT                bool
	BacktrackProbability  int // 0..100: chance the LOOP/REP check runs at all
	BacktrackMin          int // 0..100: lower bound of the partial-lookback window
	BacktrackMax          int // 0..100: upper bound of the partial-lookback window
}

// Default returns the configuration SPEC_FULL.md §4 settled on:
// depth 32, SAT bridge off, occasional lookback always-on, partial
// lookback disabled (the full chain is always eligible).
func Default() *Config {
	return &Config{
		MaxDepth:             32,
		UseSAT:               false,
		BacktrackProbability: 100,
		BacktrackMin:         0,
		BacktrackMax:         0,
	}
}

// ConfigError reports a configuration value this package could not make
// sense of even after clamping. Clamping presently resolves every
// combination of inputs, so New never actually returns one; the type is
// kept so a future stricter validation rule (e.g. rejecting a negative
// max-depth outright) has somewhere to report through without changing
// New's signature.
type ConfigError struct {
	Field string
	Cause error
}

func (e *ConfigError) Error() string {
	return errors.Wrapf(e.Cause, "config: invalid %s", e.Field).Error()
}

func (e *ConfigError) Unwrap() error { return e.Cause }

// New builds a Config, clamping each percentage to [0,100] and swapping
// backtrackMin/backtrackMax if they arrive inverted so min <= max always
// holds afterward.
func New(maxDepth int, useSAT bool, backtrackProbability, backtrackMin, backtrackMax int) (*Config, error) {
	if maxDepth < 1 {
		maxDepth = 1
	}
	p := clampPercent(backtrackProbability)
	min := clampPercent(backtrackMin)
	max := clampPercent(backtrackMax)
	if min > max {
		min, max = max, min
	}
	return &Config{
		MaxDepth:             maxDepth,
		UseSAT:               useSAT,
		BacktrackProbability: p,
		BacktrackMin:         min,
		BacktrackMax:         max,
	}, nil
}

func clampPercent(p int) int {
	switch {
	case p < 0:
		return 0
	case p > 100:
		return 100
	default:
		return p
	}
}

// Package cli wires the formula/closure/tableau/model pipeline to a
// cobra command, the ambient-stack replacement for gophersat's flat
// flag/fmt.Printf main.go now that the surface has grown to seven flags
// plus a --count enumeration mode (SPEC_FULL.md §6, §10).
package cli

import (
	"fmt"
	"io"
	"math/rand"
	"os"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/crillab/gophertl/closure"
	"github.com/crillab/gophertl/config"
	"github.com/crillab/gophertl/formula"
	"github.com/crillab/gophertl/model"
	"github.com/crillab/gophertl/tableau"
)

func newRand(seed int64) *rand.Rand { return rand.New(rand.NewSource(seed)) }

// Exit codes (spec.md §6, extended by SPEC_FULL.md §6 with a dedicated
// UNDEFINED code).
const (
	ExitSat       = 0
	ExitUnsat     = 1
	ExitUsage     = 2
	ExitUndefined = 3
)

// Options mirrors the flag set, exported so callers embedding this
// package (rather than the CLI binary) can drive it directly.
type Options struct {
	MaxDepth              int
	UseSAT                bool
	BacktrackProbability  int
	BacktrackMin          int
	BacktrackMax          int
	Verbose               bool
	Count                 bool
	Seed                  int64
}

// NewRootCommand builds the gophertl root command.
//
// Grounded on gophersat's root main.go (open-or-parse-a-formula, solve,
// report, optional verbose stats) restructured around cobra/pflag and
// logrus per SPEC_FULL.md §10's domain-stack table.
func NewRootCommand() *cobra.Command {
	opts := &Options{}
	cmd := &cobra.Command{
		Use:   "gophertl [flags] <formula>",
		Short: "Decide satisfiability of an LTL formula and print a witnessing lasso",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.OutOrStdout(), cmd.ErrOrStderr(), args[0], opts)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := cmd.Flags()
	flags.IntVar(&opts.MaxDepth, "max-depth", 32, "maximum tableau depth before reporting UNDEFINED")
	flags.BoolVar(&opts.UseSAT, "use-sat", false, "batch disjunctive choices through the embedded SAT solver")
	flags.IntVar(&opts.BacktrackProbability, "backtrack-probability", 100, "0..100 chance of running the LOOP/REP check at a given frame")
	flags.IntVar(&opts.BacktrackMin, "backtrack-min", 0, "0..100 lower bound of the partial-lookback window")
	flags.IntVar(&opts.BacktrackMax, "backtrack-max", 0, "0..100 upper bound of the partial-lookback window")
	flags.BoolVar(&opts.Verbose, "verbose", false, "structured logrus output on stderr")
	flags.BoolVar(&opts.Count, "count", false, "count distinct lassos instead of printing the first one")
	flags.Int64Var(&opts.Seed, "seed", 1, "RNG seed for the LOOP/REP heuristics")

	return cmd
}

func run(stdout, stderr io.Writer, src string, opts *Options) error {
	log := newLogger(stderr, opts.Verbose)

	f, err := formula.ParseString(src)
	if err != nil {
		return &UsageError{Cause: errors.Wrap(err, "parse formula")}
	}
	f = formula.Simplify(f)

	cl, err := closure.Build(f)
	if err != nil {
		return &UsageError{Cause: errors.Wrap(err, "build closure")}
	}
	log.WithField("closure_size", cl.N()).Debug("closure built")

	cfg, err := config.New(opts.MaxDepth, opts.UseSAT, opts.BacktrackProbability, opts.BacktrackMin, opts.BacktrackMax)
	if err != nil {
		return &UsageError{Cause: errors.Wrap(err, "build config")}
	}

	if opts.Count {
		return runCount(stdout, log, cl, cfg, opts.Seed)
	}
	return runSolve(stdout, log, cl, cfg, opts.Seed)
}

func runSolve(stdout io.Writer, log *logrus.Logger, cl *closure.Closure, cfg *config.Config, seed int64) error {
	d := tableau.NewDriver(cl, cfg, newRand(seed))
	res := d.Solve()
	logStats(log, d, res)

	switch res {
	case tableau.Sat:
		lasso := model.Extract(d)
		printLasso(stdout, lasso)
		return nil
	case tableau.Unsat:
		fmt.Fprintln(stdout, "UNSAT")
		return &UnsatError{}
	default:
		fmt.Fprintln(stdout, "UNDEFINED")
		return &UndefinedError{}
	}
}

// runCount drives tableau.Driver.Next to enumerate every distinct lasso
// up to a sanity cap, rather than reporting only the first (SPEC_FULL.md
// §8's "Model enumeration" supplemented feature).
func runCount(stdout io.Writer, log *logrus.Logger, cl *closure.Closure, cfg *config.Config, seed int64) error {
	const limit = 10000

	d := tableau.NewDriver(cl, cfg, newRand(seed))
	n := 0
	for res := d.Solve(); res == tableau.Sat; res = d.Next() {
		n++
		if n >= limit {
			log.WithField("limit", limit).Warn("model count capped")
			break
		}
	}
	logStats(log, d, tableau.Unsat)
	fmt.Fprintln(stdout, n)
	return nil
}

func printLasso(w io.Writer, lasso *model.Lasso) {
	for i, s := range lasso.States {
		marker := "  "
		if i == lasso.LoopState {
			marker = "->"
		}
		fmt.Fprintf(w, "%s %d: %s\n", marker, i, s)
	}
	fmt.Fprintf(w, "loop back to state %d\n", lasso.LoopState)
}

func logStats(log *logrus.Logger, d *tableau.Driver, res tableau.Result) {
	log.WithFields(logrus.Fields{
		"result":             res.String(),
		"frames_created":     d.Stats.FramesCreated,
		"frames_backtracked": d.Stats.FramesBacktracked,
		"sat_invocations":    d.Stats.SATInvocations,
		"max_depth_reached":  d.Stats.MaxDepthReached,
	}).Debug("search finished")
}

func newLogger(w io.Writer, verbose bool) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(w)
	if verbose {
		log.SetLevel(logrus.DebugLevel)
	} else {
		log.SetLevel(logrus.WarnLevel)
	}
	return log
}

// Execute runs the root command against os.Args and returns the process
// exit code the caller should pass to os.Exit.
func Execute() int {
	cmd := NewRootCommand()
	err := cmd.Execute()
	switch e := err.(type) {
	case nil:
		return ExitSat
	case *UsageError:
		fmt.Fprintln(os.Stderr, e)
		return ExitUsage
	case *UnsatError:
		return ExitUnsat
	case *UndefinedError:
		return ExitUndefined
	default:
		fmt.Fprintln(os.Stderr, err)
		return ExitUsage
	}
}

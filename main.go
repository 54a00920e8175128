// Command gophertl decides satisfiability of a propositional LTL formula
// and, when satisfiable, prints a finite lasso-shaped witness.
package main

import (
	"os"

	"github.com/crillab/gophertl/cli"
)

func main() {
	os.Exit(cli.Execute())
}

// Package cli defines the tsh command-line surface: flag parsing, usage
// text, and the top-level Run entrypoint, modeled on the teacher's own
// jobworker CLI package shape (package-level flag vars, a help printer
// built with strings.Builder, a Run() int entrypoint).
package cli

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/gnosis23/tsh/internal/shell"
)

var (
	helpFlag     = flag.Bool("h", false, "print usage and exit")
	verboseFlag  = flag.Bool("v", false, "enable verbose job-creation diagnostics")
	noPromptFlag = flag.Bool("p", false, "suppress the prompt (for automated grading)")
)

const (
	ecSuccess = 0
	// ecUsage is returned when -h was given or stderr could not be
	// duplicated onto stdout. A flag parsing error never reaches it:
	// flag.Parse exits the process with status 2 itself.
	ecUsage = 1
)

// Run is the entrypoint of the tsh executable: it parses flags,
// duplicates stderr onto stdout as spec.md section 6 requires, and
// drives the shell's read-eval loop over stdin until EOF.
func Run() int {
	flag.Parse()

	if *helpFlag {
		return help()
	}

	if err := dup2StderrOntoStdout(); err != nil {
		fmt.Fprintf(os.Stderr, "tsh: %v\n", err)
		return ecUsage
	}

	sh := shell.New(os.Stdout, *verboseFlag, !*noPromptFlag)
	defer sh.Close()

	return sh.Run(os.Stdin)
}

// help prints a one-screen usage message and returns the exit code for
// -h (spec.md section 6: "-h prints a one-screen usage and exits with
// code 1").
func help() int {
	var b strings.Builder
	b.WriteString(`tsh is a tiny interactive shell with job control.

Usage:
  tsh [-h] [-v] [-p]

Flags:
  -h    print this message and exit
  -v    enable verbose job-creation diagnostics
  -p    suppress the prompt (for automated grading)
`)
	fmt.Fprint(os.Stdout, b.String())
	return ecUsage
}

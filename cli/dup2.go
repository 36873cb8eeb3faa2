package cli

import (
	"golang.org/x/sys/unix"

	ierrors "github.com/gnosis23/tsh/internal/errors"
)

// dup2StderrOntoStdout makes fd 2 a duplicate of fd 1, so every diagnostic
// the shell or its children write to stderr appears on the same stream
// as stdout, per spec.md section 6 ("Standard error is duplicated onto
// standard output at startup, so every diagnostic appears on the output
// pipe"). This runs once at startup in the shell process itself, not
// per spawned child — children inherit the now-merged descriptor table.
func dup2StderrOntoStdout() error {
	if err := unix.Dup2(unix.Stdout, unix.Stderr); err != nil {
		return ierrors.Wrap(err)
	}
	return nil
}

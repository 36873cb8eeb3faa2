package procexec

import (
	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

// SignalGroup delivers sig to every process in the group led by pgid, by
// sending to the negative PID. This is the direct Go rendering of
// kill(-pgid, sig): the original's INT/TSTP handlers and the bg/fg
// builtins all target a job's whole process group this way so that a
// pipeline's later stages receive the signal too, not just its leader.
func SignalGroup(pgid int, sig unix.Signal) error {
	if pgid < 1 {
		return nil
	}
	if err := unix.Kill(-pgid, int(sig)); err != nil {
		return errors.WithStack(err)
	}
	return nil
}

// ReapResult describes one child state transition observed by Reap.
type ReapResult struct {
	PID int
	// Exited is true if the child ran to completion (normally or via an
	// uncaught fatal signal other than stop); Stopped is true if it was
	// suspended by a terminal-stop signal instead.
	Exited, Stopped bool
	// Signal is the terminating or stopping signal number, valid only
	// when the corresponding status from the kernel reports one; it is
	// 0 for a plain successful exit.
	Signal int
}

// Reap performs one non-blocking, stop-surfacing wait for any child,
// equivalent to the original's `waitpid(-1, &status, WNOHANG|WUNTRACED)`
// loop inside the CHLD handler. It returns (ReapResult{}, false, nil)
// when no child has anything to report right now; internal/sigctl calls
// Reap in a loop until it sees that, matching the original's "loop until
// no more reapable children remain."
func Reap() (ReapResult, bool, error) {
	var status unix.WaitStatus
	pid, err := unix.Wait4(-1, &status, unix.WNOHANG|unix.WUNTRACED, nil)
	if err != nil {
		if err == unix.ECHILD {
			return ReapResult{}, false, nil
		}
		return ReapResult{}, false, errors.WithStack(err)
	}
	if pid <= 0 {
		return ReapResult{}, false, nil
	}

	res := ReapResult{PID: pid}
	switch {
	case status.Stopped():
		res.Stopped = true
		res.Signal = int(status.StopSignal())
	case status.Signaled():
		res.Exited = true
		res.Signal = int(status.Signal())
	default:
		res.Exited = true
	}
	return res, true, nil
}

package procexec

import (
	"fmt"
	"os"
	"os/exec"
	"syscall"

	"github.com/pkg/errors"
)

// Pipeline is a realized group of OS processes sharing one process
// group, in left-to-right spec order (the leader is always index 0).
type Pipeline struct {
	// Pgid is the process group ID shared by every process in the
	// pipeline, equal to the leader's PID.
	Pgid int
	// Procs are the started processes, left-to-right.
	Procs []*os.Process
}

// Run starts every ProcSpec in specs as its own OS process, in order,
// placing the first process as the leader of a new process group and
// every subsequent one into that same group. This is the Go-idiomatic
// substitute for the original's "fork, child calls setpgid(0,0) or
// setpgid(0,leaderpid), then exec": os.StartProcess both forks and
// execs in one syscall-level operation, so process-group placement is
// passed up front via SysProcAttr rather than performed by code running
// after a fork.
//
// closeFiles is called once every process has been started, regardless
// of outcome, releasing the parent's copies of any pipe/redirect fds
// Plan opened.
func Run(specs []*ProcSpec, closeFiles func()) (*Pipeline, error) {
	defer closeFiles()

	pl := &Pipeline{}
	for _, spec := range specs {
		// A redirect-only line or a dangling pipe stage parses to an Exec
		// with no argv; the original's runcmd treats that as success with
		// nothing to run, so no process is started for it here either.
		if len(spec.Argv) == 0 {
			continue
		}

		path, err := exec.LookPath(spec.Argv[0])
		if err != nil {
			killAll(pl)
			return nil, fmt.Errorf("command %s not found", spec.Argv[0])
		}

		attr := &os.ProcAttr{
			Files: []*os.File{spec.Stdin, spec.Stdout, spec.Stderr},
			Sys:   &syscall.SysProcAttr{Setpgid: true},
		}
		if len(pl.Procs) > 0 {
			attr.Sys.Pgid = pl.Pgid
		}

		proc, err := os.StartProcess(path, spec.Argv, attr)
		if err != nil {
			killAll(pl)
			return nil, errors.WithStack(err)
		}

		if len(pl.Procs) == 0 {
			pl.Pgid = proc.Pid
		}
		pl.Procs = append(pl.Procs, proc)
	}

	return pl, nil
}

// killAll sends SIGKILL to every process already started in a pipeline
// that failed partway through, so a broken pipe stage cannot outlive
// the shell's attempt to run its siblings.
func killAll(pl *Pipeline) {
	for _, proc := range pl.Procs {
		_ = proc.Kill()
	}
}

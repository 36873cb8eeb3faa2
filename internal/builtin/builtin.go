// Package builtin implements the shell's built-in commands: quit, jobs,
// bg, fg, pwd, cd, and environ. None of them fork; each runs directly on
// the REPL goroutine and reports whether it recognized the given name,
// so internal/shell can fall back to the external-command path when it
// doesn't.
package builtin

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"golang.org/x/sys/unix"

	"github.com/gnosis23/tsh/internal/jobctl"
	"github.com/gnosis23/tsh/internal/jobwait"
	"github.com/gnosis23/tsh/internal/procexec"
	"github.com/gnosis23/tsh/internal/validator"
)

// environTruncateAt is the original's threshold past which an environ
// entry is truncated and suffixed "...".
const environTruncateAt = 50

// Dispatcher holds the state built-ins need: the job table, the
// notifier woken on every job-table change (so a resumed fg job can be
// waited on the same way an externally spawned one is), and the stream
// built-in output is written to.
type Dispatcher struct {
	Out    io.Writer
	Jobs   *jobctl.Table
	Notify *jobwait.Notifier
	// Quit is called by the quit built-in instead of os.Exit directly,
	// so tests can observe the request without terminating the test
	// binary.
	Quit func()
}

// Names lists every recognized built-in, for internal/shell's dispatch
// check.
var Names = map[string]bool{
	"quit":    true,
	"jobs":    true,
	"bg":      true,
	"fg":      true,
	"pwd":     true,
	"cd":      true,
	"environ": true,
}

// Dispatch runs the built-in named argv[0] with the remaining argv as
// its arguments. ok is false if argv[0] is not a built-in at all.
func (d *Dispatcher) Dispatch(argv []string) (ok bool) {
	if len(argv) == 0 || !Names[argv[0]] {
		return false
	}

	switch argv[0] {
	case "quit":
		d.quit()
	case "jobs":
		d.jobs()
	case "bg":
		d.bgfg(argv, jobctl.BG)
	case "fg":
		d.bgfg(argv, jobctl.FG)
	case "pwd":
		d.pwd()
	case "cd":
		d.cd(argv)
	case "environ":
		d.environ()
	}
	return true
}

func (d *Dispatcher) quit() {
	if d.Quit != nil {
		d.Quit()
		return
	}
	os.Exit(0)
}

func (d *Dispatcher) jobs() {
	for _, line := range d.Jobs.List() {
		fmt.Fprintln(d.Out, line)
	}
}

// bgfg resolves argv[1] as either "%<jid>" or a decimal PID, moves the
// matching job to state, sends it the continue signal, and — for fg —
// waits for it to leave the foreground, mirroring do_bgfg in the
// original.
func (d *Dispatcher) bgfg(argv []string, state jobctl.State) {
	name := argv[0]
	if len(argv) < 2 {
		fmt.Fprintf(d.Out, "%s command requires PID or %%jobid argument\n", name)
		return
	}

	spec := argv[1]
	var job jobctl.Job
	var ok bool

	switch {
	case strings.HasPrefix(spec, "%"):
		jid, err := strconv.Atoi(spec[1:])
		if err != nil {
			fmt.Fprintf(d.Out, "%s: argument must be a PID or %%jobid\n", name)
			return
		}
		job, ok = d.Jobs.GetByJID(jid)
		if !ok {
			fmt.Fprintf(d.Out, "%%%d: No such job\n", jid)
			return
		}
	default:
		pid, err := strconv.Atoi(spec)
		if err != nil {
			fmt.Fprintf(d.Out, "%s: argument must be a PID or %%jobid\n", name)
			return
		}
		job, ok = d.Jobs.GetByPID(pid)
		if !ok {
			fmt.Fprintf(d.Out, "(%d): No such process\n", pid)
			return
		}
	}

	d.Jobs.SetState(job.PID, state)
	_ = procexec.SignalGroup(job.PID, unix.SIGCONT)
	d.Notify.Broadcast()

	if state == jobctl.BG {
		fmt.Fprintf(d.Out, "[%d] (%d) %s\n", job.JID, job.PID, job.Cmdline)
		return
	}

	d.waitForeground(job.PID)
}

// waitForeground blocks until job.PID is no longer the table's FG PID,
// matching the evaluator's own FG wait (internal/shell uses the same
// Notifier-driven wait for externally spawned foreground jobs).
func (d *Dispatcher) waitForeground(pid int) {
	for d.Jobs.FGPID() == pid {
		_ = d.Notify.Wait(context.Background())
	}
}

func (d *Dispatcher) pwd() {
	dir, err := os.Getwd()
	if err != nil {
		fmt.Fprintf(d.Out, "pwd: %v\n", err)
		return
	}
	fmt.Fprintln(d.Out, dir)
}

func (d *Dispatcher) cd(argv []string) {
	v := validator.New()
	v.Assert(len(argv) >= 2, "cd requires a path argument")
	v.Assert(len(argv) < 2 || argv[1] != "", "cd path must not be empty")
	if err := v.Err(); err != nil {
		fmt.Fprintf(d.Out, "cd: %v\n", err)
		return
	}

	if err := os.Chdir(argv[1]); err != nil {
		fmt.Fprintf(d.Out, "cd: %v\n", err)
		return
	}
	dir, err := os.Getwd()
	if err != nil {
		fmt.Fprintf(d.Out, "cd: %v\n", err)
		return
	}
	os.Setenv("PWD", dir)
	fmt.Fprintln(d.Out, dir)
}

func (d *Dispatcher) environ() {
	for _, entry := range os.Environ() {
		if len(entry) > environTruncateAt {
			entry = entry[:environTruncateAt] + "..."
		}
		fmt.Fprintln(d.Out, entry)
	}
}

// Package sigctl drives the job table's state transitions from CHLD,
// INT, TSTP and QUIT. The original installs sigaction handlers that run
// asynchronously on the main thread and are restricted to async-signal-
// safe operations; Go does not expose installable signal handlers to
// user code at all; the idiomatic substitute (used throughout the
// standard library's own os/signal examples) is signal.Notify into a
// channel drained by a dedicated goroutine. That goroutine is not truly
// asynchronous the way a libc handler is — it is scheduled like any
// other goroutine — so it does not need the async-signal-safety
// discipline the original's handlers do; it may allocate, lock, and
// call ordinary library I/O. This is a deliberate Open Question
// resolution, recorded in DESIGN.md, not an oversight: the mutual
// exclusion the original achieves by blocking {CHLD,INT,TSTP} around
// every job-table mutation is instead achieved by jobctl.Table's own
// mutex, since signal delivery and the REPL goroutine now run
// concurrently rather than one preempting the other synchronously.
package sigctl

import (
	"fmt"
	"io"
	"os"
	"os/signal"

	"golang.org/x/sys/unix"

	"github.com/gnosis23/tsh/internal/jobctl"
	"github.com/gnosis23/tsh/internal/jobwait"
	"github.com/gnosis23/tsh/internal/procexec"
)

// Controller owns the signal-handling goroutine. Start installs
// signal.Notify for SIGCHLD, SIGINT, SIGTSTP and SIGQUIT and begins
// servicing them; Stop reverts signal.Notify and waits for the
// goroutine to exit.
type Controller struct {
	out    io.Writer
	jobs   *jobctl.Table
	notify *jobwait.Notifier

	sigs chan os.Signal
	done chan struct{}
}

// New creates a Controller that writes its diagnostics to out (the
// shell writes its own stdout here, matching spec.md's requirement that
// signal diagnostics appear on the same stream as everything else) and
// mutates jobs, waking notify after every job-table change so a
// foreground wait blocked in notify.Wait returns promptly.
func New(out io.Writer, jobs *jobctl.Table, notify *jobwait.Notifier) *Controller {
	return &Controller{out: out, jobs: jobs, notify: notify}
}

// Start begins servicing signals in a background goroutine. It must be
// called at most once per Controller.
func (c *Controller) Start() {
	c.sigs = make(chan os.Signal, 16)
	c.done = make(chan struct{})
	signal.Notify(c.sigs, unix.SIGCHLD, unix.SIGINT, unix.SIGTSTP, unix.SIGQUIT)

	go c.loop()
}

// Stop stops signal delivery and waits for the handling goroutine to
// return.
func (c *Controller) Stop() {
	signal.Stop(c.sigs)
	close(c.sigs)
	<-c.done
}

func (c *Controller) loop() {
	defer close(c.done)
	for sig := range c.sigs {
		switch sig {
		case unix.SIGCHLD:
			c.handleChld()
		case unix.SIGINT:
			c.handleInt()
		case unix.SIGTSTP:
			c.handleTstp()
		case unix.SIGQUIT:
			c.handleQuit()
		}
	}
}

// handleChld drains every reapable child, exactly matching the
// original's "loop until no more reapable children remain."
func (c *Controller) handleChld() {
	changed := false
	for {
		res, ok, err := procexec.Reap()
		if err != nil || !ok {
			break
		}
		changed = true

		job, found := c.jobs.GetByPID(res.PID)
		switch {
		case res.Stopped:
			if found {
				c.jobs.SetState(res.PID, jobctl.ST)
				fmt.Fprintf(c.out, "Job [%d] (%d) stopped by signal %d\n", job.JID, res.PID, res.Signal)
			}
		case res.Exited && res.Signal != 0:
			if found {
				fmt.Fprintf(c.out, "Job [%d] (%d) terminated by signal %d\n", job.JID, res.PID, res.Signal)
			}
			c.jobs.Delete(res.PID)
		default:
			c.jobs.Delete(res.PID)
		}
	}
	if changed {
		c.notify.Broadcast()
	}
}

// handleInt delivers the interrupt signal to the foreground job's
// process group, if any, and removes it from the table immediately;
// the eventual CHLD for the same PID is a no-op delete.
func (c *Controller) handleInt() {
	pid := c.jobs.FGPID()
	if pid == 0 {
		return
	}
	job, _ := c.jobs.GetByPID(pid)
	_ = procexec.SignalGroup(pid, unix.SIGINT)
	fmt.Fprintf(c.out, "Job [%d] (%d) terminated by signal %d\n", job.JID, pid, unix.SIGINT)
	c.jobs.Delete(pid)
	c.notify.Broadcast()
}

// handleTstp suspends the foreground job's process group and marks it
// Stopped.
func (c *Controller) handleTstp() {
	pid := c.jobs.FGPID()
	if pid == 0 {
		return
	}
	job, _ := c.jobs.GetByPID(pid)
	_ = procexec.SignalGroup(pid, unix.SIGTSTP)
	c.jobs.SetState(pid, jobctl.ST)
	fmt.Fprintf(c.out, "Job [%d] (%d) stopped by signal %d\n", job.JID, pid, unix.SIGTSTP)
	c.notify.Broadcast()
}

// handleQuit terminates the shell unconditionally, matching tsh.c's
// SIGQUIT handler.
func (c *Controller) handleQuit() {
	fmt.Fprint(c.out, "Terminating after receipt of SIGQUIT signal\n")
	os.Exit(1)
}

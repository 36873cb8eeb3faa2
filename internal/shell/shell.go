// Package shell implements the read-eval-print loop that ties the rest
// of tsh together: it tokenizes each line, decides builtin vs. alias vs.
// external command, installs a job before the external command's first
// process can possibly be reaped, and either waits for it in the
// foreground or reports it running in the background.
//
// The original forks before every external command, arranging for the
// parent to call addjob immediately after fork returns in the parent,
// strictly before unblocking {CHLD,INT,TSTP}. Go's os.StartProcess is
// itself the fork+exec; there is no window between "the child exists"
// and "the parent's code resumes" for the parent to race against its
// own signal-handling goroutine the way sigaction-based code must. The
// job table is still added to before any signal referencing the new PID
// can plausibly have fired (the process has only just been started by
// this very goroutine), and jobctl.Table's mutex — not a signal mask —
// is what keeps a concurrent CHLD delivery from observing a half-
// written row.
package shell

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/gnosis23/tsh/internal/alias"
	"github.com/gnosis23/tsh/internal/builtin"
	"github.com/gnosis23/tsh/internal/cmdtree"
	"github.com/gnosis23/tsh/internal/jobctl"
	"github.com/gnosis23/tsh/internal/jobwait"
	"github.com/gnosis23/tsh/internal/log"
	"github.com/gnosis23/tsh/internal/procexec"
	"github.com/gnosis23/tsh/internal/sigctl"
	"github.com/gnosis23/tsh/internal/token"
)

// Prompt is the fixed prompt string; it must never change (spec.md section 6).
const Prompt = "tsh> "

// Shell holds every piece of state the REPL needs across lines.
type Shell struct {
	Out      io.Writer
	Jobs     *jobctl.Table
	Notify   *jobwait.Notifier
	Builtins *builtin.Dispatcher
	Sig      *sigctl.Controller
	Logger   *log.Logger
	// Verbose gates job-creation diagnostics (the -v flag); it does not
	// affect any of the literal protocol strings in spec.md section 6.
	Verbose bool
	// ShowPrompt gates printing Prompt before each read (the -p flag
	// suppresses it for automated grading).
	ShowPrompt bool
}

// New builds a Shell with a fresh job table and notifier, wired to out,
// and starts its signal-handling goroutine (internal/sigctl) so CHLD/
// INT/TSTP/QUIT delivery reaches the job table and wakes any foreground
// wait. Close stops that goroutine.
func New(out io.Writer, verbose, showPrompt bool) *Shell {
	jobs := jobctl.New()
	notify := jobwait.NewNotifier()
	sig := sigctl.New(out, jobs, notify)
	sig.Start()

	return &Shell{
		Out:    out,
		Jobs:   jobs,
		Notify: notify,
		Builtins: &builtin.Dispatcher{
			Out:    out,
			Jobs:   jobs,
			Notify: notify,
		},
		Sig:        sig,
		Logger:     log.New(out, "tsh: "),
		Verbose:    verbose,
		ShowPrompt: showPrompt,
	}
}

// Close stops the shell's signal-handling goroutine. Callers that run a
// Shell for the lifetime of the process don't need to call this; it
// exists for tests and for embedding a Shell in a longer-lived program.
func (s *Shell) Close() {
	s.Sig.Stop()
}

// Run drives the read-eval loop until in reaches EOF, returning the
// shell's exit code (0 on EOF, matching spec.md section 6).
func (s *Shell) Run(in io.Reader) int {
	reader := bufio.NewReader(in)
	for {
		if s.ShowPrompt {
			fmt.Fprint(s.Out, Prompt)
		}

		line, err := reader.ReadString('\n')
		if len(line) > 0 {
			s.Eval(line)
		}
		if err != nil {
			return 0
		}
	}
}

// Eval handles exactly one input line.
func (s *Shell) Eval(line string) {
	words, err := token.Tokenize(line)
	if err != nil {
		fmt.Fprintf(s.Out, "%v\n", err)
		return
	}
	if len(words) == 0 {
		return
	}

	background := false
	if words[len(words)-1] == "&" {
		background = true
		words = words[:len(words)-1]
	}
	if len(words) == 0 {
		// "&" alone is not a command (spec.md section 8).
		return
	}

	if s.Builtins.Dispatch(words) {
		return
	}

	if path, ok := alias.Resolve(words[0]); ok {
		words = append([]string{path}, words[1:]...)
	}

	s.runExternal(words, background, strings.TrimRight(line, "\n"))
}

// runExternal parses words into a command tree, plans and starts its
// pipeline, installs the resulting job, and either waits for it in the
// foreground or reports it as a background job.
func (s *Shell) runExternal(words []string, background bool, cmdline string) {
	tree, err := cmdtree.Parse(words)
	if err != nil {
		fmt.Fprintf(s.Out, "%v\n", err)
		return
	}

	specs, closeFiles, err := procexec.Plan(tree, nil, nil, nil)
	if err != nil {
		fmt.Fprintf(s.Out, "%v\n", err)
		return
	}
	fillInherited(specs)

	pipeline, err := procexec.Run(specs, closeFiles)
	if err != nil {
		fmt.Fprintf(s.Out, "%v\n", err)
		return
	}
	if len(pipeline.Procs) == 0 {
		// Every stage had an empty argv (e.g. a redirect-only line):
		// nothing was started, so there is no job to add.
		return
	}

	state := jobctl.FG
	if background {
		state = jobctl.BG
	}
	jid, err := s.Jobs.Add(pipeline.Pgid, state, cmdline)
	if err != nil {
		fmt.Fprintln(s.Out, "Tried to create too many jobs")
		return
	}
	if s.Verbose {
		s.Logger.Infof("added job %d pid %d cmdline %q", jid, pipeline.Pgid, cmdline)
	}

	if background {
		fmt.Fprintf(s.Out, "[%d] (%d) %s\n", jid, pipeline.Pgid, cmdline)
		return
	}

	s.waitForeground(pipeline.Pgid)
}

// waitForeground blocks until pid is no longer the job table's
// foreground PID. Rather than the original's one-second poll of
// fgpid(), it blocks on jobwait.Notifier, which internal/sigctl wakes
// on every job-table change — spec.md section 4.F explicitly permits
// this substitution ("a stricter implementation may use a suspend-with-
// mask primitive").
func (s *Shell) waitForeground(pid int) {
	for s.Jobs.FGPID() == pid {
		_ = s.Notify.Wait(context.Background())
	}
}

// fillInherited replaces any nil stdio file in specs with the shell's
// own standard streams, matching the original's "children inherit the
// terminal's stdin/stdout/stderr except where a Redir/Pipe node
// overrides them."
func fillInherited(specs []*procexec.ProcSpec) {
	for _, spec := range specs {
		if spec.Stdin == nil {
			spec.Stdin = os.Stdin
		}
		if spec.Stdout == nil {
			spec.Stdout = os.Stdout
		}
		if spec.Stderr == nil {
			spec.Stderr = os.Stderr
		}
	}
}

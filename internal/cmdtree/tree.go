// Package cmdtree models the shell's command tree — the {Exec, Redir,
// Pipe} variants described in tsh's data model — and the recursive-
// descent builder that turns a token vector into one. A Node is owned
// exclusively by its parent; the root is owned by whoever called Parse.
package cmdtree

import "strings"

// Dir identifies which standard stream a Redir node replaces.
type Dir int

const (
	// In redirects the command's standard input (fd 0) from a file.
	In Dir = iota
	// Out redirects the command's standard output (fd 1) to a file.
	Out
)

func (d Dir) String() string {
	if d == In {
		return "<"
	}
	return ">"
}

// Fd returns the file descriptor number the redirection replaces: 0 for
// In, 1 for Out.
func (d Dir) Fd() int {
	if d == In {
		return 0
	}
	return 1
}

// Node is one of Exec, Redir, or Pipe. It has no methods of its own;
// callers type-switch on the concrete variant, which is the idiomatic
// Go rendering of the tagged-union "capability to be realized in a
// child process" described by the original implementation's struct-
// with-type-tag.
type Node interface {
	node()
}

// Exec is an external command invocation: argv[0] is resolved via a
// PATH search at execution time. Argv may be empty: a parsed
// redirect-only line ("< in > out") produces an Exec with zero
// arguments, which procexec.Run treats as success with no process
// started (matching the original's runcmd behavior for an empty argv).
type Exec struct {
	Argv []string
}

func (*Exec) node() {}

// Redir wraps a subordinate command, replacing its file descriptor
// Dir.Fd() with one freshly opened against File. The parser layers a
// textually later "< f"/"> f" as the outer Redir; realizing the tree
// resolves outermost first and then recurses inward, so the innermost
// Redir of a given direction — textually the first one written — is
// the one still open when the wrapped command actually runs. See
// internal/procexec.Plan's openRedir comment for the full trace.
type Redir struct {
	Cmd  Node
	File string
	Dir  Dir
}

func (*Redir) node() {}

// Pipe connects two subordinate commands: Left's standard output feeds
// Right's standard input. Pipe is right-associative: "a | b | c" parses
// as Pipe(a, Pipe(b, c)).
type Pipe struct {
	Left, Right Node
}

func (*Pipe) node() {}

// Dump serializes a Node into a small parenthesized notation, e.g.
// "( ( a ) < in ) | ( ( b ) > out )" for a pipe of two redirected execs.
// It exists to make the parser's output independently checkable in tests
// without reaching into the Node variants by hand.
func Dump(n Node) string {
	var b strings.Builder
	dump(&b, n)
	return b.String()
}

func dump(b *strings.Builder, n Node) {
	switch c := n.(type) {
	case nil:
		return
	case *Exec:
		b.WriteString("( ")
		b.WriteString(strings.Join(c.Argv, " "))
		b.WriteString(" )")
	case *Redir:
		b.WriteString("( ")
		dump(b, c.Cmd)
		b.WriteString(" ")
		b.WriteString(c.Dir.String())
		b.WriteString(" ")
		b.WriteString(c.File)
		b.WriteString(" )")
	case *Pipe:
		dump(b, c.Left)
		b.WriteString(" | ")
		dump(b, c.Right)
	}
}

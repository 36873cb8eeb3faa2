package procexec

import (
	"fmt"
	"os"

	"github.com/gnosis23/tsh/internal/cmdtree"
	ierrors "github.com/gnosis23/tsh/internal/errors"
)

// ProcSpec is one leaf Exec of a command tree, resolved to the concrete
// file descriptors it should run with. A Pipe node plans to two or more
// ProcSpecs; a Redir node plans to one, with its Stdin/Stdout replaced.
type ProcSpec struct {
	Argv                  []string
	Stdin, Stdout, Stderr *os.File
}

// Plan walks a cmdtree.Node and resolves it to the ordered list of
// processes that realize it, each wired to concrete files for its
// standard streams. This is the Go-idiomatic rendering of "realize the
// tree in a forked child": since Go cannot safely continue running Go
// code in the child half of a raw fork (the runtime's goroutine
// scheduler and GC assume a single, un-forked address space), the tree
// is instead resolved to a flat pipeline of processes entirely in the
// parent, and internal/procexec.Run starts them with os.StartProcess,
// setting a shared process group as each one launches. This is the
// standard approach used by Go-native shell implementations (and
// mirrors how the teacher's own job.New builds up an *exec.Cmd ahead of
// Start rather than forking by hand).
//
// Plan returns the specs in left-to-right order: for a pipeline
// "a | b | c" the result is [a, b, c], which is also the order
// Run starts them in — necessary so the first process becomes the
// process-group leader before the rest join its group.
//
// The returned closeFiles must be called once every process in the
// pipeline has been started (not before — the kernel duplicates each
// fd into the child at start time, so the parent's copy must outlive
// that, but no longer; holding a pipe's write end open past that point
// would prevent the reader from ever seeing EOF).
func Plan(root cmdtree.Node, stdin, stdout, stderr *os.File) (specs []*ProcSpec, closeFiles func(), err error) {
	var opened []*os.File
	closeFiles = func() {
		for _, f := range opened {
			f.Close()
		}
	}

	var walk func(n cmdtree.Node, in, out *os.File) error
	walk = func(n cmdtree.Node, in, out *os.File) error {
		switch c := n.(type) {
		case nil:
			return fmt.Errorf("cmdtree: nil node")

		case *cmdtree.Exec:
			specs = append(specs, &ProcSpec{Argv: c.Argv, Stdin: in, Stdout: out, Stderr: stderr})
			return nil

		case *cmdtree.Redir:
			f, err := openRedir(c)
			if err != nil {
				return ierrors.Wrap(err)
			}
			opened = append(opened, f)

			if c.Dir == cmdtree.In {
				in = f
			} else {
				out = f
			}
			return walk(c.Cmd, in, out)

		case *cmdtree.Pipe:
			r, w, err := os.Pipe()
			if err != nil {
				return ierrors.Wrap(err)
			}
			opened = append(opened, r, w)

			if err := walk(c.Left, in, w); err != nil {
				return err
			}
			return walk(c.Right, r, out)

		default:
			return fmt.Errorf("cmdtree: unknown node type %T", n)
		}
	}

	if err := walk(root, stdin, stdout); err != nil {
		closeFiles()
		return nil, func() {}, err
	}
	return specs, closeFiles, nil
}

// openRedir opens the file named by a Redir node with the mode flags
// from the original implementation: read-only for input, and
// write-only + create + truncate (mode 0644) for output.
//
// Plan resolves a Redir layering outside-in, matching the original's
// close-then-open-then-recurse order: the outermost Redir (the one
// built last by the parser, i.e. the rightmost "< f"/"> f" of a given
// direction in the source line) is resolved first, and each nested
// Redir of the same direction resolved afterward overwrites it. The
// Redir closest to the Exec leaf — textually the leftmost of that
// direction — is therefore the one still open when the command runs.
// This is exactly the original runcmd's behavior, not a simplification
// of it.
func openRedir(r *cmdtree.Redir) (*os.File, error) {
	if r.File == "" {
		return nil, fmt.Errorf("redirect: empty file path")
	}
	if r.Dir == cmdtree.In {
		return os.OpenFile(r.File, os.O_RDONLY, 0)
	}
	return os.OpenFile(r.File, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
}

package cmdtree

import (
	"fmt"

	ierrors "github.com/gnosis23/tsh/internal/errors"
	"github.com/gnosis23/tsh/internal/token"
)

// ErrSyntax indicates the token vector could not be parsed into a
// command tree: a bare delimiter in argument position or a malformed
// redirection. Leftover tokens after the root production are reported
// by Parse as a separate "leftover" error that does not wrap ErrSyntax.
var ErrSyntax = fmt.Errorf("syntax error")

// Parse runs the three-production recursive-descent grammar from the
// tiny-shell spec over tokens:
//
//	line  := pipe
//	pipe  := exec ('|' pipe)?
//	exec  := redirs (word redirs)*
//	redirs:= ('<' word | '>' word)*
//
// The caller is expected to have already stripped a trailing "&"
// background marker; background is not a tree-level concept (see
// internal/shell, which strips it before calling Parse). Like the
// original parseexec, Parse still tolerates a bare "&" appearing in
// word position anywhere else in the line — it is simply collected into
// argv as a literal argument, never rejected as a stray delimiter. Any
// other delimiter token appearing where a word is expected is a syntax
// error.
func Parse(tokens []string) (Node, error) {
	p := &parser{tokens: tokens}
	n, err := p.parsePipe()
	if err != nil {
		return nil, err
	}
	if p.pos < len(p.tokens) {
		return nil, fmt.Errorf("leftover %s...", p.tokens[p.pos])
	}
	return n, nil
}

type parser struct {
	tokens []string
	pos    int
}

func (p *parser) peek() (string, bool) {
	if p.pos >= len(p.tokens) {
		return "", false
	}
	return p.tokens[p.pos], true
}

func (p *parser) parsePipe() (Node, error) {
	left, err := p.parseExec()
	if err != nil {
		return nil, ierrors.Wrap(err)
	}
	if tok, ok := p.peek(); ok && tok == "|" {
		p.pos++
		right, err := p.parsePipe()
		if err != nil {
			return nil, ierrors.Wrap(err)
		}
		return &Pipe{Left: left, Right: right}, nil
	}
	return left, nil
}

func (p *parser) parseExec() (Node, error) {
	var n Node = &Exec{}

	n, err := p.parseRedirs(n)
	if err != nil {
		return nil, err
	}

	var argv []string
	for {
		tok, ok := p.peek()
		if !ok || tok == "|" {
			break
		}
		if token.Delim(tok[0]) && tok != "&" {
			return nil, fmt.Errorf("%w: unexpected %q", ErrSyntax, tok)
		}
		argv = append(argv, tok)
		p.pos++

		n, err = p.parseRedirs(n)
		if err != nil {
			return nil, err
		}
	}

	setArgv(n, argv)
	return n, nil
}

// setArgv assigns argv to the Exec node at the bottom of the Redir
// layering built up by parseRedirs. Redirections may appear before,
// between, or after the words of an exec, so the Exec node is not
// necessarily the root returned by parseExec.
func setArgv(n Node, argv []string) {
	switch c := n.(type) {
	case *Exec:
		c.Argv = argv
	case *Redir:
		setArgv(c.Cmd, argv)
	}
}

func (p *parser) parseRedirs(n Node) (Node, error) {
	for {
		tok, ok := p.peek()
		if !ok || (tok != "<" && tok != ">") {
			return n, nil
		}
		p.pos++

		file, ok := p.peek()
		if !ok || token.Delim(file[0]) {
			return nil, fmt.Errorf("%w: missing redirection target after %q", ErrSyntax, tok)
		}
		p.pos++

		dir := In
		if tok == ">" {
			dir = Out
		}
		n = &Redir{Cmd: n, File: file, Dir: dir}
	}
}

// Package token splits a raw command line into the tokens consumed by
// internal/cmdtree. It mirrors the hand-rolled tokenizer in the original
// tiny-shell's parser.c: no quoting, no escapes, and the four delimiter
// characters ('<', '>', '|', '&') are always their own token even when
// glued to an adjacent word.
package token

import (
	"fmt"
	"strings"
)

// Delim reports whether r is one of the shell's single-character operator
// tokens.
func Delim(r byte) bool {
	return r == '<' || r == '>' || r == '|' || r == '&'
}

func blank(r byte) bool {
	switch r {
	case ' ', '\t', '\r', '\n', '\v':
		return true
	default:
		return false
	}
}

const (
	// MaxLine bounds the length of a line accepted from the terminal,
	// matching the original's MAXLINE.
	MaxLine = 1024
	// MaxArgs bounds the number of tokens a line may produce, matching the
	// original's MAXARGS.
	MaxArgs = 128
)

// ErrLineTooLong indicates the input line exceeded MaxLine bytes.
var ErrLineTooLong = fmt.Errorf("line exceeds %d bytes", MaxLine)

// ErrTooManyTokens indicates a line produced more than MaxArgs tokens.
var ErrTooManyTokens = fmt.Errorf("line exceeds %d tokens", MaxArgs)

// Tokenize splits line into an ordered slice of tokens. Whitespace
// separates tokens and is discarded. A delimiter character starts and
// ends its own one-character token regardless of what precedes or
// follows it; a word runs until the next delimiter or whitespace. Empty
// or all-whitespace input yields a nil, zero-length slice.
func Tokenize(line string) ([]string, error) {
	if len(line) > MaxLine {
		return nil, ErrLineTooLong
	}

	var tokens []string
	var word strings.Builder

	flush := func() {
		if word.Len() > 0 {
			tokens = append(tokens, word.String())
			word.Reset()
		}
	}

	for i := 0; i < len(line); i++ {
		c := line[i]
		switch {
		case blank(c):
			flush()
		case Delim(c):
			flush()
			tokens = append(tokens, string(c))
		default:
			word.WriteByte(c)
		}
	}
	flush()

	if len(tokens) > MaxArgs {
		return nil, ErrTooManyTokens
	}
	return tokens, nil
}

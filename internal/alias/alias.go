// Package alias holds the shell's small, fixed alias table: two names
// that the evaluator rewrites to a real program path after the builtin
// check and before starting an external command, exactly as the
// original's eval loop special-cases "clr" and "dir" ahead of forking.
package alias

// Table maps an alias name to the program path it expands to.
var Table = map[string]string{
	"clr": "/usr/bin/clear",
	"dir": "/bin/ls",
}

// Resolve returns the program path name expands to, and whether name is
// a known alias.
func Resolve(name string) (string, bool) {
	path, ok := Table[name]
	return path, ok
}

// Command tsh is a tiny interactive shell with job control.
package main

import (
	"os"

	"github.com/gnosis23/tsh/cli"
)

func main() {
	os.Exit(cli.Run())
}

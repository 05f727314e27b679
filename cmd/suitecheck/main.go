// Command suitecheck drives control-suite tasks through seeded episodes and
// checks them for conformance and determinism.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/roach88/suitecheck/internal/cli"
)

func main() {
	err := cli.NewRootCommand().Execute()
	if err != nil {
		var exitErr *cli.ExitError
		if !errors.As(err, &exitErr) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
	}
	os.Exit(cli.GetExitCode(err))
}

// Command ritual is the command-line interface to the ritual activity
// tracker.
package main

import (
	"fmt"
	"os"

	"github.com/ritualhq/ritual/internal/cli"
)

func main() {
	cmd := cli.NewRootCommand()
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(cli.GetExitCode(err))
	}
}

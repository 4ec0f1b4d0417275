// Command tcstore runs trade store scenarios, generates example trades and
// reads the audit journal.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/tcstore/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(cli.GetExitCode(err))
	}
}

// Command deko runs the order display and its tooling.
package main

import (
	"fmt"
	"os"

	"github.com/scvi-aria/deko/internal/cli"
)

func main() {
	cmd := cli.NewRootCommand()
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(cli.GetExitCode(err))
	}
}

// Command cmdres resolves input lines against prioritised command sets.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/cmdres/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(cli.GetExitCode(err))
	}
}

// Command mockrel validates schema declarations, resolves fixture tables
// into nested objects, runs fixture scenarios and exports fixture snapshots.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/myurch/mock-rel/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		var exitErr *cli.ExitError
		if errors.As(err, &exitErr) {
			// The command already reported it.
			os.Exit(exitErr.Code)
		}
		// Flag, argument and format errors.
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(cli.ExitCommandError)
	}
}

// Command mocsync drives models through a software core, records their
// frames and replays the recordings.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/mocsync/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(cli.GetExitCode(err))
	}
}

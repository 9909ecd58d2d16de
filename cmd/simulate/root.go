// Command simulate runs the longitudinal flight-dynamics simulator kernel
// described in SPEC_FULL.md against a scenario and controller-action
// configuration.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Run the longitudinal flight-dynamics simulator",
		Long:  "simulate drives the tick-barrier simulation kernel through a named scenario, writing tick data and logs under an output directory.",
	}

	cmd.AddCommand(newRunCommand())
	cmd.AddCommand(newListScenariosCommand())
	return cmd
}

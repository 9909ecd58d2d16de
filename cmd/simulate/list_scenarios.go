package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var knownScenarios = []struct {
	name        string
	description string
}{
	{"taxi", "throttle from a standstill, brake past 500m, settle to a manual stop"},
	{"abort_takeoff", "taxi's table plus an abort-at-speed latch and a post-abort cruise hold"},
}

func newListScenariosCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list-scenarios",
		Short: "List the built-in scenarios",
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, s := range knownScenarios {
				fmt.Printf("%-16s %s\n", s.name, s.description)
			}
			return nil
		},
	}
}

package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"flightsim/internal/app"
	"flightsim/internal/control"
)

// runOptions holds the flags for `simulate run`.
type runOptions struct {
	actionsConfig  string
	scenarioConfig string
	aircraftConfig string
	outputDir      string
	dt             float64
	nonLinear      bool
	color          bool
	interactive    bool
}

func newRunCommand() *cobra.Command {
	opts := &runOptions{}

	cmd := &cobra.Command{
		Use:           "run <scenario>",
		Short:         "Run a scenario (taxi | abort_takeoff) to completion",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScenario(cmd.Context(), args[0], opts)
		},
	}

	cmd.Flags().StringVar(&opts.actionsConfig, "actions-config", "", "path to controller_actions_config.txt (optional, the built-in table is used otherwise)")
	cmd.Flags().StringVar(&opts.scenarioConfig, "config", "", "path to the scenario *_config.txt (optional, defaults are used otherwise)")
	cmd.Flags().StringVar(&opts.aircraftConfig, "aircraft-config", "", "path to an aircraft constants file (optional, AC1 defaults otherwise)")
	cmd.Flags().StringVar(&opts.outputDir, "output-dir", "output", "directory for data.csv and the two log files")
	cmd.Flags().Float64Var(&opts.dt, "dt", 0.01, "fixed simulation time step, in seconds")
	cmd.Flags().BoolVar(&opts.nonLinear, "nonlinear", false, "use the non-linear force model instead of the linear one")
	cmd.Flags().BoolVar(&opts.color, "color", true, "colorize console severity output")
	cmd.Flags().BoolVar(&opts.interactive, "interactive", false, "listen for SIGINT/SIGTERM as a terminate signal instead of running headless")

	return cmd
}

func runScenario(ctx context.Context, scenarioName string, opts *runOptions) error {
	a, err := app.New(app.Config{
		Scenario:           scenarioName,
		ActionsConfigPath:  opts.actionsConfig,
		ScenarioConfigPath: opts.scenarioConfig,
		AircraftConfigPath: opts.aircraftConfig,
		OutputDir:          opts.outputDir,
		DT:                 opts.dt,
		NonLinear:          opts.nonLinear,
		UseColor:           opts.color,
	})
	if err != nil {
		return err
	}

	fmt.Printf("run trace_id=%s scenario=%s\n", a.TraceID(), scenarioName)

	if opts.interactive {
		a.WithControlSource(control.NewOSSignals())
	}
	return a.Run(ctx)
}

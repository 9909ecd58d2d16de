package scenario

import (
	"context"

	"flightsim/internal/clock"
	"flightsim/internal/state"
	"flightsim/internal/telemetry"
)

const (
	maxSimulationTime = 180.0
	maxPosition       = 1500.0
)

// Watchdog is the auto-termination trigger of spec.md §5/§6: it stops the
// clock the first tick simulated time exceeds 180s or position exceeds
// 1500m, independent of whether the scenario's own final_stop event ever
// fires.
type Watchdog struct {
	state *state.State
	clock *clock.Clock

	logger telemetry.Logger
}

// NewWatchdog constructs a Watchdog.
func NewWatchdog(s *state.State, c *clock.Clock, logger telemetry.Logger) *Watchdog {
	return &Watchdog{state: s, clock: c, logger: logger}
}

func (w *Watchdog) Run(ctx context.Context) {
	clock.RunWorker(ctx, w.clock, w.logger, "watchdog", w.step)
}

func (w *Watchdog) step(uint64) {
	if w.state.SimulationTime() > maxSimulationTime || w.state.Position() > maxPosition {
		if w.logger != nil {
			w.logger.Printf("watchdog: auto-terminating at t=%.2f position=%.2f",
				w.state.SimulationTime(), w.state.Position())
		}
		w.state.SetSimulationRunning(false)
		w.clock.Stop()
	}
}

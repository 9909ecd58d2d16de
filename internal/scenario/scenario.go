// Package scenario supplies the declarative event tables and seed hooks of
// spec.md §4.8: each scenario is a table of edge-triggered EventDefinitions
// plus an InitFunc that seeds SharedState before any worker starts.
package scenario

import (
	"flightsim/internal/config"
	"flightsim/internal/eventbus"
	"flightsim/internal/state"
)

// Scenario bundles the pieces a scenario main needs to wire up a run.
type Scenario struct {
	Name   string
	Events []eventbus.Definition
	Init   state.InitFunc
}

// finalStopPredicate is shared by every scenario: the run ends once velocity
// has settled below the zero-velocity threshold and every controller-enable
// flag is off. Returning the vehicle to manual authority is final_stop's own
// SWITCH_TO_MANUAL_MODE action, not a precondition for firing it — a scenario
// that grants itself auto authority via SWITCH_TO_AUTO_MODE (spec.md §8.3)
// never sees Manual again until final_stop hands it back, so gating the fire
// on Manual here would make the event unreachable.
func finalStopPredicate(threshold float64) eventbus.Predicate {
	return func(s *state.State) bool {
		if s.Velocity() > threshold {
			return false
		}
		return !s.Flag(state.FlagThrottleControlEnabled) && !s.Flag(state.FlagBrakeControlEnabled) &&
			!s.Flag(state.FlagCruiseControlEnabled) && !s.Flag(state.FlagPitchControlEnabled)
	}
}

// SeedFrom builds an InitFunc from a parsed scenario config, writing the
// target and abort speeds (the abort speed also as abort_speed_threshold)
// and starting the run in Manual mode. The zero-velocity threshold is not
// written to SharedState; Taxi captures it in the final_stop predicate.
func SeedFrom(sc config.ScenarioConfig) state.InitFunc {
	return func(s *state.State) error {
		s.SetTargetSpeed(sc.TargetSpeed)
		s.SetAbortSpeed(sc.AbortSpeed)
		s.SetAbortSpeedThreshold(sc.AbortSpeed)
		s.SetFlightMode(state.ModeManual)
		return nil
	}
}

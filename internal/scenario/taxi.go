package scenario

import (
	"flightsim/internal/config"
	"flightsim/internal/eventbus"
	"flightsim/internal/state"
)

// Taxi is the provided scenario of spec.md §4.8/§8.3: ramp throttle after a
// one-second delay, switch to braking once past 500 m, and stop once the
// vehicle has settled with every controller off, handing authority back to
// Manual.
func Taxi(sc config.ScenarioConfig) Scenario {
	threshold := sc.ZeroVelocityThreshold

	return Scenario{
		Name: "taxi",
		Init: SeedFrom(sc),
		Events: []eventbus.Definition{
			{
				Name:        "start_throttle",
				Description: "grant auto authority and begin ramping throttle one second into the run",
				Predicate:   func(s *state.State) bool { return s.SimulationTime() >= 1.0 },
				Actions:     []eventbus.Action{"SWITCH_TO_AUTO_MODE", "START_THROTTLE_INCREASE"},
			},
			{
				Name:        "start_brake",
				Description: "switch from accelerating to braking past 500m",
				Predicate:   func(s *state.State) bool { return s.Position() >= 500 },
				Actions: []eventbus.Action{
					"STOP_THROTTLE_INCREASE",
					"START_THROTTLE_DECREASE",
					"START_BRAKE",
				},
			},
			{
				Name:        "final_stop",
				Description: "settle: velocity below threshold, controllers off; hand authority back to manual",
				Predicate:   finalStopPredicate(threshold),
				Actions:     []eventbus.Action{"STOP_ALL_CONTROLLERS", "SWITCH_TO_MANUAL_MODE"},
			},
		},
	}
}

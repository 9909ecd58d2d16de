package scenario

import (
	"flightsim/internal/config"
	"flightsim/internal/eventbus"
	"flightsim/internal/state"
)

// AbortTakeoff extends Taxi's table with an abort-at-speed event and a
// cruise-after-abort event keyed on position and the abort latch, per
// spec.md §4.8/§8.4.
func AbortTakeoff(sc config.ScenarioConfig) Scenario {
	base := Taxi(sc)
	base.Name = "abort_takeoff"

	abortSpeed := sc.AbortSpeed
	cruisePosition := 500.0

	base.Events = append(base.Events,
		eventbus.Definition{
			Name:        "abort_takeoff",
			Description: "abort once velocity reaches the configured abort speed",
			Predicate:   func(s *state.State) bool { return s.Velocity() >= abortSpeed },
			Actions: []eventbus.Action{
				"STOP_THROTTLE_INCREASE",
				"START_THROTTLE_DECREASE",
				"START_BRAKE",
			},
		},
		eventbus.Definition{
			Name:        "cruise_after_abort",
			Description: "once past the abort point and the abort has latched, hold cruise speed",
			Predicate: func(s *state.State) bool {
				return s.AbortLatched() && s.Position() >= cruisePosition
			},
			Actions: []eventbus.Action{"START_CRUISE"},
		},
	)
	return base
}

// SubscribeAbortLatch marks SharedState's abort latch the first time
// abort_takeoff fires, so cruise_after_abort's predicate can key off it
// without the bus exposing latch state directly to predicates.
func SubscribeAbortLatch(bus *eventbus.Bus, s *state.State) {
	bus.Subscribe("abort_takeoff", func(string, any) {
		s.SetAbortLatched(true)
	})
}

package scenario

import (
	"flightsim/internal/eventbus"
	"flightsim/internal/state"
)

// SubscribeTermination wires the scenario's final_stop (or any terminal)
// event to flip simulation_running false, decoupling the pure edge-triggered
// predicate from its one side effect.
func SubscribeTermination(bus *eventbus.Bus, s *state.State, eventName string) {
	bus.Subscribe(eventName, func(string, any) {
		s.SetSimulationRunning(false)
	})
}

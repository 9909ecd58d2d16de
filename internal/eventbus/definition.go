package eventbus

import "flightsim/internal/state"

// Predicate is a pure, edge-triggered condition over SharedState. Predicates
// must be monotone-safe: once true and latched, they are never evaluated
// again for that run.
type Predicate func(*state.State) bool

// Action names a scenario-level controller action tag, mirroring the
// ControllerAction enumeration of spec.md §6.
type Action string

// Definition is an EventDefinition (spec.md §3): a named, edge-triggered
// predicate and the ordered list of actions it fires exactly once.
type Definition struct {
	Name        string
	Description string
	Predicate   Predicate
	Actions     []Action
}

package eventbus

import (
	"context"
	"sync"

	"flightsim/internal/clock"
	"flightsim/internal/state"
	"flightsim/internal/telemetry"
)

// Monitor is the clock-synchronized worker of spec.md §4.4: each tick it
// evaluates every not-yet-latched EventDefinition's predicate against the
// current SharedState and, on a true result, atomically latches the
// definition and publishes its name with an empty payload. Edge-trigger
// semantics guarantee a definition fires at most once per scenario run.
type Monitor struct {
	bus   *Bus
	state *state.State
	clock *clock.Clock

	mu    sync.Mutex
	defs  []Definition
	latch map[string]bool

	logger telemetry.Logger
}

// NewMonitor constructs a Monitor. SetDefinitions must be called before Run
// observes any events.
func NewMonitor(bus *Bus, s *state.State, c *clock.Clock, logger telemetry.Logger) *Monitor {
	return &Monitor{
		bus:    bus,
		state:  s,
		clock:  c,
		latch:  make(map[string]bool),
		logger: logger,
	}
}

// SetDefinitions installs the scenario's event table, replacing any
// previous table and resetting latches.
func (m *Monitor) SetDefinitions(defs []Definition) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.defs = append([]Definition(nil), defs...)
	m.latch = make(map[string]bool, len(defs))
}

// Run registers the monitor with the clock and evaluates predicates once per
// tick until ctx is cancelled or the clock stops.
func (m *Monitor) Run(ctx context.Context) {
	clock.RunWorker(ctx, m.clock, m.logger, "event-monitor", m.step)
}

func (m *Monitor) step(uint64) {
	m.mu.Lock()
	defs := m.defs
	m.mu.Unlock()

	for _, def := range defs {
		if m.isLatched(def.Name) {
			continue
		}
		if def.Predicate == nil || !def.Predicate(m.state) {
			continue
		}
		if m.latchOnce(def.Name) {
			m.bus.MarkTriggered(def.Name)
			m.bus.Publish(def.Name, nil)
		}
	}
}

func (m *Monitor) isLatched(name string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.latch[name]
}

// latchOnce returns true only for the caller that transitions the latch
// from false to true, making the fire-once guarantee atomic even though the
// bus itself may also observe double-latching per spec.md §5's note that
// the monitor's latch is authoritative but callbacks must be idempotent.
func (m *Monitor) latchOnce(name string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.latch[name] {
		return false
	}
	m.latch[name] = true
	return true
}

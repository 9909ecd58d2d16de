package queue

import (
	"context"

	"flightsim/internal/clock"
	"flightsim/internal/state"
	"flightsim/internal/telemetry"
)

// Recorder observes every committed tick. It is the extension point spec.md
// §4.3 reserves for "secondary derived-state processing" and per-tick state
// logging; internal/app's logRecorder implements it and forwards each tick to
// the CSV/text log sinks in logging/sinks.
type Recorder interface {
	RecordTick(tick uint64, snap state.Snapshot)
}

// RecorderFunc adapts a function into a Recorder.
type RecorderFunc func(tick uint64, snap state.Snapshot)

func (f RecorderFunc) RecordTick(tick uint64, snap state.Snapshot) {
	if f != nil {
		f(tick, snap)
	}
}

// Manager is the state-manager worker of spec.md §4.3: each tick it drains
// every pending StateUpdateMessage, applies each to the corresponding
// SharedState field, commits one coherent snapshot, then optionally
// forwards the result to a Recorder before signaling completion.
type Manager struct {
	queue    *Queue
	state    *state.State
	clock    *clock.Clock
	recorder Recorder
	logger   telemetry.Logger
}

// NewManager wires a Manager. recorder may be nil.
func NewManager(q *Queue, s *state.State, c *clock.Clock, recorder Recorder, logger telemetry.Logger) *Manager {
	return &Manager{queue: q, state: s, clock: c, recorder: recorder, logger: logger}
}

// Run registers the manager with the clock and drains the queue once per
// tick until ctx is cancelled or the clock stops.
func (m *Manager) Run(ctx context.Context) {
	clock.RunWorker(ctx, m.clock, m.logger, "state-manager", m.step)
}

func (m *Manager) step(tick uint64) {
	messages := m.queue.Drain()
	next := m.state.Snapshot()
	for _, msg := range messages {
		switch msg.Kind {
		case KindPosition:
			next.Position = msg.Value
		case KindVelocity:
			next.Velocity = msg.Value
		case KindAcceleration:
			next.Acceleration = msg.Value
		case KindThrottle:
			next.Throttle = msg.Value
		case KindBrake:
			next.Brake = msg.Value
		}
	}
	next.SimulationTime = m.clock.CurrentTime()
	m.state.CommitSnapshot(next)

	if m.recorder != nil {
		m.recorder.RecordTick(tick, m.state.Snapshot())
	}
}

package dynamics

import (
	"context"

	"flightsim/internal/clock"
	"flightsim/internal/config"
	"flightsim/internal/queue"
	"flightsim/internal/state"
	"flightsim/internal/telemetry"
)

// Integrator is the dynamics-integrator worker of spec.md §4.7: it reads the
// current velocity, position and controls straight off SharedState, calls
// the force model, and advances kinematics by semi-implicit Euler.
//
// Thrust, drag and brake_force are committed directly (they are derived,
// read-mostly diagnostics, not authoritative kinematic state); velocity,
// position and acceleration go through the state-update queue like every
// other producer, so the state manager remains the single writer of the
// versioned snapshot.
type Integrator struct {
	state  *state.State
	clock  *clock.Clock
	queue  *queue.Queue
	model  ForceModel
	config config.AircraftConfig
	logger telemetry.Logger
}

// New constructs an Integrator. A nil model defaults to LinearModel.
func New(s *state.State, c *clock.Clock, q *queue.Queue, model ForceModel, cfg config.AircraftConfig, logger telemetry.Logger) *Integrator {
	if model == nil {
		model = LinearModel{}
	}
	return &Integrator{state: s, clock: c, queue: q, model: model, config: cfg, logger: logger}
}

// Run registers with the clock and integrates once per tick until ctx is
// cancelled or the clock stops.
func (in *Integrator) Run(ctx context.Context) {
	clock.RunWorker(ctx, in.clock, in.logger, "dynamics_integrator", in.step)
}

func (in *Integrator) step(uint64) {
	dt := in.clock.TimeStep()
	if dt <= 0 {
		return
	}

	v := in.state.Velocity()
	x := in.state.Position()
	throttle := in.state.Throttle()
	brake := in.state.Brake()

	forces := in.model.Compute(v, throttle, brake, in.config)

	in.state.SetThrust(forces.Thrust)
	in.state.SetDragForce(forces.Drag)
	in.state.SetBrakeForce(forces.BrakeForce)

	a := forces.NetForce / in.config.Mass
	newV := v + a*dt
	if newV < 0 {
		newV = 0
	}
	newX := x + v*dt // pre-step v, per spec.md §4.7's semi-implicit Euler.

	in.queue.Push(queue.Message{Kind: queue.KindAcceleration, Value: a})
	in.queue.Push(queue.Message{Kind: queue.KindVelocity, Value: newV})
	in.queue.Push(queue.Message{Kind: queue.KindPosition, Value: newX})
}

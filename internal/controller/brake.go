package controller

import (
	"context"

	"flightsim/internal/clock"
	"flightsim/internal/queue"
	"flightsim/internal/state"
	"flightsim/internal/telemetry"
)

// Brake ramps the brake input up at a fixed rate while enabled, writing
// directly to SharedState per spec.md §4.6 (`brake <- min(brake + 0.2*dt, 1)`
// is a "direct write", unlike the throttle controllers which enqueue).
type Brake struct {
	base
	rate float64
}

// NewBrake constructs the brake controller. rate defaults to 0.2 (per
// second) when non-positive.
func NewBrake(s *state.State, c *clock.Clock, q *queue.Queue, logger telemetry.Logger, rate float64) *Brake {
	if rate <= 0 {
		rate = 0.2
	}
	return &Brake{
		base: base{name: NameBrake, flag: state.FlagBrakeControlEnabled, state: s, clock: c, queue: q, logger: logger},
		rate: rate,
	}
}

func (b *Brake) Run(ctx context.Context) {
	clock.RunWorker(ctx, b.clock, b.logger, string(NameBrake), b.step)
}

func (b *Brake) step(uint64) {
	if !b.active() {
		return
	}
	dt := b.clock.TimeStep()
	next := b.state.Brake() + b.rate*dt
	if next > 1 {
		next = 1
	}
	b.state.SetBrake(next)
	b.setCurrent(next)
}

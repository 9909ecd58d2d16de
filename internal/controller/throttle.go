package controller

import (
	"context"

	"flightsim/internal/clock"
	"flightsim/internal/queue"
	"flightsim/internal/state"
	"flightsim/internal/telemetry"
)

// ThrottleInc ramps throttle up at a fixed rate while enabled, per
// spec.md §4.6: `throttle <- saturate(throttle + 0.1*dt, 0, 1)`.
type ThrottleInc struct {
	base
	rate float64
}

// NewThrottleInc constructs the throttle_inc controller. rate defaults to
// 0.1 (per second) when non-positive.
func NewThrottleInc(s *state.State, c *clock.Clock, q *queue.Queue, logger telemetry.Logger, rate float64) *ThrottleInc {
	if rate <= 0 {
		rate = 0.1
	}
	return &ThrottleInc{
		base: base{name: NameThrottleInc, flag: state.FlagThrottleControlEnabled, state: s, clock: c, queue: q, logger: logger},
		rate: rate,
	}
}

func (t *ThrottleInc) Run(ctx context.Context) {
	clock.RunWorker(ctx, t.clock, t.logger, string(NameThrottleInc), t.step)
}

func (t *ThrottleInc) step(uint64) {
	if !t.active() {
		return
	}
	dt := t.clock.TimeStep()
	current := t.state.Throttle()
	next := saturate(current+t.rate*dt, 0, 1)
	if next == current {
		return
	}
	t.setCurrent(next)
	t.queue.Push(queue.Message{Kind: queue.KindThrottle, Value: next})
}

// ThrottleDec ramps throttle down at a fixed rate while enabled, per
// spec.md §4.6: `throttle <- max(throttle - 0.2*dt, 0)`.
type ThrottleDec struct {
	base
	rate float64
}

// NewThrottleDec constructs the throttle_dec controller. rate defaults to
// 0.2 (per second) when non-positive.
func NewThrottleDec(s *state.State, c *clock.Clock, q *queue.Queue, logger telemetry.Logger, rate float64) *ThrottleDec {
	if rate <= 0 {
		rate = 0.2
	}
	return &ThrottleDec{
		base: base{name: NameThrottleDec, flag: state.FlagThrottleControlEnabled, state: s, clock: c, queue: q, logger: logger},
		rate: rate,
	}
}

func (t *ThrottleDec) Run(ctx context.Context) {
	clock.RunWorker(ctx, t.clock, t.logger, string(NameThrottleDec), t.step)
}

func (t *ThrottleDec) step(uint64) {
	if !t.active() {
		return
	}
	dt := t.clock.TimeStep()
	current := t.state.Throttle()
	next := current - t.rate*dt
	if next < 0 {
		next = 0
	}
	if next == current {
		return
	}
	t.setCurrent(next)
	t.queue.Push(queue.Message{Kind: queue.KindThrottle, Value: next})
}

package controller

import (
	"context"

	"flightsim/internal/clock"
	"flightsim/internal/queue"
	"flightsim/internal/state"
	"flightsim/internal/telemetry"
)

// defaultCruiseGain is the proportional gain K of the cruise_runway law.
// spec.md §4.6 leaves K unspecified beyond "simple P law"; 0.5 brings
// throttle to saturation for errors of 2 m/s or more, which matches the
// aggressive convergence implied by the Taxi scenario's braking event.
const defaultCruiseGain = 0.5

// Cruise implements the cruise_runway P-controller of spec.md §4.6:
// error = target_v - v; positive error drives throttle, negative error
// drives brake, and the two channels are mutually exclusive each tick.
type Cruise struct {
	base
	gain float64
}

// NewCruise constructs the cruise_runway controller. gain defaults to
// defaultCruiseGain when non-positive.
func NewCruise(s *state.State, c *clock.Clock, q *queue.Queue, logger telemetry.Logger, gain float64) *Cruise {
	if gain <= 0 {
		gain = defaultCruiseGain
	}
	return &Cruise{
		base: base{name: NameCruiseRunway, flag: state.FlagCruiseControlEnabled, state: s, clock: c, queue: q, logger: logger},
		gain: gain,
	}
}

func (c *Cruise) Run(ctx context.Context) {
	clock.RunWorker(ctx, c.clock, c.logger, string(NameCruiseRunway), c.step)
}

func (c *Cruise) step(uint64) {
	if !c.active() {
		return
	}
	target := c.state.TargetSpeed()
	v := c.state.Velocity()
	err := target - v

	var throttle, brake float64
	if err > 0 {
		throttle = saturate(c.gain*err, 0, 1)
		brake = 0
	} else {
		throttle = 0
		brake = saturate(c.gain*-err, 0, 1)
	}

	c.setCurrent(throttle)
	c.queue.Push(queue.Message{Kind: queue.KindThrottle, Value: throttle})
	c.state.SetBrake(brake)
}

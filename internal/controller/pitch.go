package controller

import (
	"context"
	"sync"

	"flightsim/internal/clock"
	"flightsim/internal/queue"
	"flightsim/internal/state"
	"flightsim/internal/telemetry"
)

const integralClamp = 10

// PitchHold is the pitch_hold PID of spec.md §4.6. Per the Open Questions
// resolution in SPEC_FULL.md, it reads dt from the clock on every tick
// rather than hard-coding 0.01, so set_time_step changes take effect.
type PitchHold struct {
	base

	gainMu sync.Mutex
	kp, ki, kd float64
	target     float64
	integral   float64
	prevError  float64
	havePrev   bool
}

// NewPitchHold constructs the pitch_hold controller with default gains.
func NewPitchHold(s *state.State, c *clock.Clock, q *queue.Queue, logger telemetry.Logger) *PitchHold {
	return &PitchHold{
		base: base{name: NamePitchHold, flag: state.FlagPitchControlEnabled, state: s, clock: c, queue: q, logger: logger},
		kp:   1.0,
		ki:   0.1,
		kd:   0.05,
	}
}

// SetPID updates the PID gains.
func (p *PitchHold) SetPID(kp, ki, kd float64) {
	p.gainMu.Lock()
	defer p.gainMu.Unlock()
	p.kp, p.ki, p.kd = kp, ki, kd
}

// ResetIntegral zeroes the accumulated integral term.
func (p *PitchHold) ResetIntegral() {
	p.gainMu.Lock()
	defer p.gainMu.Unlock()
	p.integral = 0
}

// SetTarget updates the target pitch angle, applied by SET_PITCH_ANGLE
// actions via the controller manager.
func (p *PitchHold) SetTarget(target float64) {
	p.gainMu.Lock()
	defer p.gainMu.Unlock()
	p.target = target
}

func (p *PitchHold) Run(ctx context.Context) {
	clock.RunWorker(ctx, p.clock, p.logger, string(NamePitchHold), p.step)
}

func (p *PitchHold) step(uint64) {
	if !p.active() {
		return
	}
	dt := p.clock.TimeStep()
	if dt <= 0 {
		return
	}

	p.gainMu.Lock()
	target := p.target
	errVal := target - p.state.PitchAngle()

	p.integral += p.ki * errVal * dt
	if p.integral > integralClamp {
		p.integral = integralClamp
	} else if p.integral < -integralClamp {
		p.integral = -integralClamp
	}

	var derivative float64
	if p.havePrev {
		derivative = p.kd * (errVal - p.prevError) / dt
	}
	p.prevError = errVal
	p.havePrev = true

	output := saturate(p.kp*errVal+p.integral+derivative, -1, 1)
	p.gainMu.Unlock()

	p.setCurrent(output)
	p.state.SetPitchControlOutput(output)
}

// Package dynamics implements the dynamics integrator of spec.md §4.7: a
// clock-registered worker that calls a pluggable force model each tick and
// advances velocity and position by semi-implicit Euler. It is grounded on
// the teacher's internal/sim command-buffer producers, generalized from
// discrete gameplay events to a continuous per-tick physics update.
package dynamics

import (
	"math"

	"flightsim/internal/config"
)

// Forces is the {thrust, drag, brake_force, static_friction, net_force}
// tuple a ForceModel computes for one tick.
type Forces struct {
	Thrust         float64
	Drag           float64
	BrakeForce     float64
	StaticFriction float64
	NetForce       float64
}

// ForceModel computes the forces acting on the vehicle from its current
// velocity and control inputs.
type ForceModel interface {
	Compute(v, throttle, brake float64, cfg config.AircraftConfig) Forces
}

// LinearModel is the required linear force model of spec.md §4.7:
// thrust scales linearly with throttle, drag is quadratic in speed, and
// below a near-zero speed threshold the model switches to a static-friction
// regime that can zero out small net forces entirely.
type LinearModel struct{}

// lowSpeedThreshold is the |v| below which the static-friction regime
// applies, per spec.md §4.7 and the boundary example in §9.
const lowSpeedThreshold = 0.01

func (LinearModel) Compute(v, throttle, brake float64, cfg config.AircraftConfig) Forces {
	f := Forces{Thrust: throttle * cfg.MaxThrust}
	f.Drag = 0.5 * cfg.Rho * cfg.Area * cfg.Cd * v * absFloat(v)

	if absFloat(v) < lowSpeedThreshold {
		f.BrakeForce = 0
		f.StaticFriction = cfg.MuStatic * cfg.Mass * cfg.Gravity
		net := f.Thrust - f.Drag - f.BrakeForce
		if absFloat(net) < f.StaticFriction {
			net = 0
		} else if net > 0 {
			net -= f.StaticFriction
		} else {
			net += f.StaticFriction
		}
		f.NetForce = net
		return f
	}

	f.StaticFriction = 0
	speedFactor := clamp(absFloat(v)/50, 0.3, 1)
	f.BrakeForce = brake * cfg.MaxBrake * speedFactor
	f.NetForce = f.Thrust - f.Drag - f.BrakeForce
	return f
}

// NonLinearModel adds a small sinusoidal perturbation to drag, representing
// unsteady aerodynamic effects the linear model omits. It is optional per
// spec.md §4.7 and selected only when the run's Config.NonLinear is set
// (the --nonlinear flag).
type NonLinearModel struct {
	// Amplitude and Frequency shape the perturbation as
	// Amplitude * MaxThrust * sin(Frequency * v). Both default to a mild
	// wobble when zero.
	Amplitude float64
	Frequency float64
}

func (m NonLinearModel) Compute(v, throttle, brake float64, cfg config.AircraftConfig) Forces {
	amp := m.Amplitude
	if amp == 0 {
		amp = 0.02
	}
	freq := m.Frequency
	if freq == 0 {
		freq = 0.5
	}

	f := LinearModel{}.Compute(v, throttle, brake, cfg)
	f.Drag += amp * cfg.MaxThrust * math.Sin(freq*v)
	if absFloat(v) >= lowSpeedThreshold {
		f.NetForce = f.Thrust - f.Drag - f.BrakeForce
	}
	return f
}

func absFloat(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

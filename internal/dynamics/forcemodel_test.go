package dynamics

import (
	"testing"

	"flightsim/internal/config"
)

func ac1() config.AircraftConfig {
	return config.DefaultAircraftConfig()
}

func TestLinearModelStaticReleaseNetsToZero(t *testing.T) {
	f := LinearModel{}.Compute(0, 0, 0, ac1())
	if f.NetForce != 0 {
		t.Fatalf("expected static release to net to zero force, got %v", f.NetForce)
	}
	if f.StaticFriction <= 0 {
		t.Fatalf("expected a positive static friction latch at v=0")
	}
}

func TestLinearModelThrottleOnlyAcceleratesAboveFriction(t *testing.T) {
	cfg := ac1()
	f := LinearModel{}.Compute(0, 1.0, 0, cfg)
	// thrust=500000, static_friction = 0.02*80000*9.81 = 15696; net should
	// be thrust minus the friction latch, not zero.
	if f.NetForce <= 0 {
		t.Fatalf("expected positive net force once thrust exceeds static friction, got %v", f.NetForce)
	}
	expected := cfg.MaxThrust - f.StaticFriction
	if diff := f.NetForce - expected; diff > 1e-6 || diff < -1e-6 {
		t.Fatalf("expected net force %v, got %v", expected, f.NetForce)
	}
}

func TestLinearModelDragOpposesMotion(t *testing.T) {
	cfg := ac1()
	f := LinearModel{}.Compute(50, 0, 0, cfg)
	if f.Drag <= 0 {
		t.Fatalf("expected positive drag opposing forward motion, got %v", f.Drag)
	}
	if f.NetForce >= 0 {
		t.Fatalf("expected drag alone to produce a decelerating net force, got %v", f.NetForce)
	}
}

func TestLinearModelBrakeUsesSpeedFactor(t *testing.T) {
	cfg := ac1()
	slow := LinearModel{}.Compute(5, 0, 1.0, cfg)
	fast := LinearModel{}.Compute(50, 0, 1.0, cfg)
	if slow.BrakeForce >= fast.BrakeForce {
		t.Fatalf("expected brake force to grow with speed via speed_factor: slow=%v fast=%v", slow.BrakeForce, fast.BrakeForce)
	}
	if fast.BrakeForce != cfg.MaxBrake {
		t.Fatalf("expected speed_factor to saturate at 1 for v>=50, got brake_force=%v", fast.BrakeForce)
	}
}

func TestLinearModelStaticFrictionZeroesSmallNetForce(t *testing.T) {
	cfg := ac1()
	// A tiny throttle nudge below the static friction latch should net to
	// exactly zero, per the boundary example in spec.md §9.
	f := LinearModel{}.Compute(0, 0.001, 0, cfg)
	if f.NetForce != 0 {
		t.Fatalf("expected sub-threshold thrust to net to zero, got %v", f.NetForce)
	}
}

func TestNonLinearModelPerturbsDragAroundLinear(t *testing.T) {
	cfg := ac1()
	linear := LinearModel{}.Compute(20, 0.5, 0, cfg)
	nonlinear := NonLinearModel{}.Compute(20, 0.5, 0, cfg)
	if linear.Drag == nonlinear.Drag {
		t.Fatalf("expected the non-linear model to perturb drag away from the linear baseline")
	}
}

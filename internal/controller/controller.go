// Package controller implements the five per-tick control laws of
// spec.md §4.6 and the controller manager of §4.5. Each controller is a
// clock-registered worker whose per-tick body executes only when its
// SharedState enable flag is true; the manager owns all five plus the
// lifecycle/authority wiring driven by the scenario's action table.
package controller

import (
	"context"
	"sync"
	"sync/atomic"

	"flightsim/internal/clock"
	"flightsim/internal/queue"
	"flightsim/internal/state"
	"flightsim/internal/telemetry"
)

// Name enumerates the fixed roster of controllers spec.md §4.5 requires.
type Name string

const (
	NameThrottleInc  Name = "throttle_inc"
	NameThrottleDec  Name = "throttle_dec"
	NameBrake        Name = "brake"
	NameCruiseRunway Name = "cruise_runway"
	NamePitchHold    Name = "pitch_hold"
)

// Controller is a ControllerHandle (spec.md §3): a named worker with
// start/stop/is_enabled/current_value operations plumbed through
// SharedState and the state-update queue.
type Controller interface {
	Name() Name
	Start()
	Stop()
	IsEnabled() bool
	CurrentValue() float64
	// Run registers with the clock and executes the control law once per
	// tick, gated on having been authorized and enabled, until ctx is
	// cancelled or the clock stops.
	Run(ctx context.Context)
}

// base implements the enable-flag plumbing shared by every controller so
// concrete types only need to provide their per-tick law.
//
// Two independent gates guard every per-tick body, mirroring the original's
// controller_manager/*_controller split (spec.md §8.5): `started` reflects
// whether an authority-gated Start() actually launched this controller,
// while the SharedState enable flag (`state.ControllerFlag`) can be set
// directly by action-config state_settings without granting authority. A
// controller only produces output when both are true, so a denied start
// (auto_brake=false, say) leaves the worker inert even if state_settings
// separately set brake_control_enabled=true.
type base struct {
	name   Name
	flag   state.ControllerFlag
	state  *state.State
	clock  *clock.Clock
	queue  *queue.Queue
	logger telemetry.Logger

	started atomic.Bool

	mu      sync.Mutex
	current float64
}

func (b *base) Name() Name { return b.name }

// Start is the authority-gated entry point: the controller manager only
// calls it once startController's authority check (spec.md §4.5) has
// passed. It both marks the controller started and sets its enable flag.
func (b *base) Start() {
	b.started.Store(true)
	b.state.SetFlag(b.flag, true)
}

// Stop clears both gates, matching the original's stop() tearing down the
// worker rather than merely flipping a flag it still reacts to.
func (b *base) Stop() {
	b.started.Store(false)
	b.state.SetFlag(b.flag, false)
}

func (b *base) IsEnabled() bool { return b.state.Flag(b.flag) }

// active reports whether the per-tick body should run: started by an
// authorized Start() AND still enabled. Every controller's step must gate
// on this instead of IsEnabled alone.
func (b *base) active() bool { return b.started.Load() && b.IsEnabled() }

func (b *base) CurrentValue() float64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.current
}

func (b *base) setCurrent(v float64) {
	b.mu.Lock()
	b.current = v
	b.mu.Unlock()
}

func saturate(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

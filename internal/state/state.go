// Package state owns SharedState: the process-wide record of vehicle and
// simulation scalars written concurrently by many workers and read back
// through atomic loads or a versioned, mutex-guarded snapshot.
package state

import (
	"errors"
	"math"
	"sync"
	"sync/atomic"
)

// FlightMode selects which party (pilot, auto system, or both) owns the
// throttle and brake channels.
type FlightMode int

const (
	ModeManual FlightMode = iota
	ModeAuto
	ModeSemiAuto
)

func (m FlightMode) String() string {
	switch m {
	case ModeManual:
		return "MANUAL"
	case ModeAuto:
		return "AUTO"
	case ModeSemiAuto:
		return "SEMI_AUTO"
	default:
		return "UNKNOWN"
	}
}

// InitFunc seeds a freshly constructed State. A non-nil error aborts
// construction: SharedState construction is the one Fatal error class that
// may abort a scenario before any worker starts.
type InitFunc func(*State) error

// ErrInitFailed wraps a failure returned by a caller-supplied InitFunc.
var ErrInitFailed = errors.New("state: initialization hook failed")

// Snapshot is a coherent, versioned copy of the kinematics/controls/forces/
// attitude/time subset of SharedState. Lifecycle flags, enable flags, mode,
// and authority bits are intentionally excluded: they are observed directly
// via their own flagMu-guarded accessors and are not part of the coherence
// guarantee snapshot() makes.
type Snapshot struct {
	Version int64

	Position     float64
	Velocity     float64
	Acceleration float64

	Throttle float64
	Brake    float64

	Thrust     float64
	DragForce  float64
	BrakeForce float64

	PitchAngle        float64
	PitchRate         float64
	PitchControlOut   float64
	SimulationTime    float64
}

// State is the concurrency-safe scalar store described in spec.md §3/§4.2.
//
// Kinematics, controls, forces, attitude, and simulation_time are stored as
// atomic float bits so that any worker may write them without blocking; the
// versioned Snapshot is additionally guarded by mu so CommitSnapshot can
// publish a coherent copy and bump state_version atomically with respect to
// other snapshot readers/writers.
type State struct {
	mu      sync.Mutex
	version atomic.Int64

	position     atomicFloat
	velocity     atomicFloat
	acceleration atomicFloat

	throttle atomicFloat
	brake    atomicFloat

	thrust     atomicFloat
	dragForce  atomicFloat
	brakeForce atomicFloat

	pitchAngle      atomicFloat
	pitchRate       atomicFloat
	pitchControlOut atomicFloat

	simulationTime atomicFloat

	flagMu             sync.RWMutex
	simulationRunning  bool
	simulationStarted  bool
	userConfirmed      bool
	systemReady        bool
	finalStopEnabled   bool
	throttleEnabled    bool
	brakeEnabled       bool
	cruiseEnabled      bool
	pitchEnabled       bool
	targetSpeed        float64
	abortSpeed         float64
	abortSpeedThresh   float64
	mode               FlightMode
	pilotThrottle      bool
	pilotBrake         bool
	autoThrottle       bool
	autoBrake          bool
	abortLatched       bool
}

// New constructs a State, running the optional init hook while holding no
// locks other than what the hook itself acquires. System readiness is set
// only after the hook succeeds.
func New(init InitFunc) (*State, error) {
	s := &State{}
	if init != nil {
		if err := init(s); err != nil {
			return nil, errors.Join(ErrInitFailed, err)
		}
	}
	s.flagMu.Lock()
	s.systemReady = true
	s.flagMu.Unlock()
	return s, nil
}

// --- kinematics / controls / forces / attitude -----------------------------

func (s *State) Position() float64     { return s.position.load() }
func (s *State) Velocity() float64     { return s.velocity.load() }
func (s *State) Acceleration() float64 { return s.acceleration.load() }

func (s *State) SetPosition(v float64)     { s.position.store(v) }
func (s *State) SetAcceleration(v float64) { s.acceleration.store(v) }

// SetVelocity clamps velocity to zero, per the invariant that velocity never
// goes negative once the integrator's stop clamp is in effect.
func (s *State) SetVelocity(v float64) {
	if v < 0 {
		v = 0
	}
	s.velocity.store(v)
}

func (s *State) Throttle() float64 { return s.throttle.load() }
func (s *State) Brake() float64    { return s.brake.load() }

// SetThrottle saturates the control input to [0,1].
func (s *State) SetThrottle(v float64) { s.throttle.store(saturate(v, 0, 1)) }

// SetBrake saturates the control input to [0,1].
func (s *State) SetBrake(v float64) { s.brake.store(saturate(v, 0, 1)) }

func (s *State) Thrust() float64     { return s.thrust.load() }
func (s *State) DragForce() float64  { return s.dragForce.load() }
func (s *State) BrakeForce() float64 { return s.brakeForce.load() }

func (s *State) SetThrust(v float64)     { s.thrust.store(v) }
func (s *State) SetDragForce(v float64)  { s.dragForce.store(v) }
func (s *State) SetBrakeForce(v float64) { s.brakeForce.store(v) }

func (s *State) PitchAngle() float64      { return s.pitchAngle.load() }
func (s *State) PitchRate() float64       { return s.pitchRate.load() }
func (s *State) PitchControlOutput() float64 { return s.pitchControlOut.load() }

func (s *State) SetPitchAngle(v float64)        { s.pitchAngle.store(v) }
func (s *State) SetPitchRate(v float64)         { s.pitchRate.store(v) }
func (s *State) SetPitchControlOutput(v float64) { s.pitchControlOut.store(v) }

func (s *State) SimulationTime() float64     { return s.simulationTime.load() }
func (s *State) SetSimulationTime(v float64) { s.simulationTime.store(v) }

// --- versioning / snapshot ---------------------------------------------

// Version reports the current state_version.
func (s *State) Version() int64 { return s.version.Load() }

// Snapshot returns a coherent copy of the declared subset of fields. It
// holds mu while it reads the version and every field, so the copy never
// interleaves with a concurrent CommitSnapshot; the lock covers only a
// handful of atomic loads.
func (s *State) Snapshot() Snapshot {
	s.mu.Lock()
	version := s.version.Load()
	snap := Snapshot{
		Version:         version,
		Position:        s.position.load(),
		Velocity:        s.velocity.load(),
		Acceleration:    s.acceleration.load(),
		Throttle:        s.throttle.load(),
		Brake:           s.brake.load(),
		Thrust:          s.thrust.load(),
		DragForce:       s.dragForce.load(),
		BrakeForce:      s.brakeForce.load(),
		PitchAngle:      s.pitchAngle.load(),
		PitchRate:       s.pitchRate.load(),
		PitchControlOut: s.pitchControlOut.load(),
		SimulationTime:  s.simulationTime.load(),
	}
	s.mu.Unlock()
	return snap
}

// CommitSnapshot replaces the snapshot fields with new values and increments
// state_version by exactly one. Callers pass a Snapshot built from the
// individually-atomic setters above, or (for the state manager) values
// drained from the state-update queue.
func (s *State) CommitSnapshot(next Snapshot) {
	s.mu.Lock()
	s.position.store(next.Position)
	s.velocity.store(math.Max(next.Velocity, 0))
	s.acceleration.store(next.Acceleration)
	s.throttle.store(saturate(next.Throttle, 0, 1))
	s.brake.store(saturate(next.Brake, 0, 1))
	s.thrust.store(next.Thrust)
	s.dragForce.store(next.DragForce)
	s.brakeForce.store(next.BrakeForce)
	s.pitchAngle.store(next.PitchAngle)
	s.pitchRate.store(next.PitchRate)
	s.pitchControlOut.store(next.PitchControlOut)
	s.simulationTime.store(next.SimulationTime)
	s.version.Add(1)
	s.mu.Unlock()
}

// --- lifecycle flags -----------------------------------------------------

func (s *State) SimulationRunning() bool {
	s.flagMu.RLock()
	defer s.flagMu.RUnlock()
	return s.simulationRunning
}

func (s *State) SetSimulationRunning(v bool) {
	s.flagMu.Lock()
	s.simulationRunning = v
	s.flagMu.Unlock()
}

func (s *State) SimulationStarted() bool {
	s.flagMu.RLock()
	defer s.flagMu.RUnlock()
	return s.simulationStarted
}

func (s *State) SetSimulationStarted(v bool) {
	s.flagMu.Lock()
	s.simulationStarted = v
	s.flagMu.Unlock()
}

func (s *State) UserConfirmed() bool {
	s.flagMu.RLock()
	defer s.flagMu.RUnlock()
	return s.userConfirmed
}

func (s *State) SetUserConfirmed(v bool) {
	s.flagMu.Lock()
	s.userConfirmed = v
	s.flagMu.Unlock()
}

func (s *State) SystemReady() bool {
	s.flagMu.RLock()
	defer s.flagMu.RUnlock()
	return s.systemReady
}

func (s *State) FinalStopEnabled() bool {
	s.flagMu.RLock()
	defer s.flagMu.RUnlock()
	return s.finalStopEnabled
}

func (s *State) SetFinalStopEnabled(v bool) {
	s.flagMu.Lock()
	s.finalStopEnabled = v
	s.flagMu.Unlock()
}

// --- controller-enable flags ----------------------------------------------

// ControllerFlag names one of the four controller-enable bits.
type ControllerFlag string

const (
	FlagThrottleControlEnabled ControllerFlag = "throttle_control_enabled"
	FlagBrakeControlEnabled    ControllerFlag = "brake_control_enabled"
	FlagCruiseControlEnabled   ControllerFlag = "cruise_control_enabled"
	FlagPitchControlEnabled    ControllerFlag = "pitch_control_enabled"
)

// SetFlag sets a named controller-enable flag. Callers parse the action
// config's "true"/"false" wire value first (config.BoolSetting).
func (s *State) SetFlag(flag ControllerFlag, value bool) {
	s.flagMu.Lock()
	defer s.flagMu.Unlock()
	switch flag {
	case FlagThrottleControlEnabled:
		s.throttleEnabled = value
	case FlagBrakeControlEnabled:
		s.brakeEnabled = value
	case FlagCruiseControlEnabled:
		s.cruiseEnabled = value
	case FlagPitchControlEnabled:
		s.pitchEnabled = value
	}
}

func (s *State) Flag(flag ControllerFlag) bool {
	s.flagMu.RLock()
	defer s.flagMu.RUnlock()
	switch flag {
	case FlagThrottleControlEnabled:
		return s.throttleEnabled
	case FlagBrakeControlEnabled:
		return s.brakeEnabled
	case FlagCruiseControlEnabled:
		return s.cruiseEnabled
	case FlagPitchControlEnabled:
		return s.pitchEnabled
	default:
		return false
	}
}

// --- targets ---------------------------------------------------------------

func (s *State) TargetSpeed() float64 {
	s.flagMu.RLock()
	defer s.flagMu.RUnlock()
	return s.targetSpeed
}

func (s *State) SetTargetSpeed(v float64) {
	s.flagMu.Lock()
	s.targetSpeed = v
	s.flagMu.Unlock()
}

func (s *State) AbortSpeed() float64 {
	s.flagMu.RLock()
	defer s.flagMu.RUnlock()
	return s.abortSpeed
}

func (s *State) SetAbortSpeed(v float64) {
	s.flagMu.Lock()
	s.abortSpeed = v
	s.flagMu.Unlock()
}

func (s *State) AbortSpeedThreshold() float64 {
	s.flagMu.RLock()
	defer s.flagMu.RUnlock()
	return s.abortSpeedThresh
}

func (s *State) SetAbortSpeedThreshold(v float64) {
	s.flagMu.Lock()
	s.abortSpeedThresh = v
	s.flagMu.Unlock()
}

// --- mode / authority --------------------------------------------------

// FlightMode reports the current flight mode.
func (s *State) FlightMode() FlightMode {
	s.flagMu.RLock()
	defer s.flagMu.RUnlock()
	return s.mode
}

// SetFlightMode atomically updates the mode and the four authority bits as a
// group, per spec.md §3's invariant.
func (s *State) SetFlightMode(mode FlightMode) {
	s.flagMu.Lock()
	defer s.flagMu.Unlock()
	s.mode = mode
	switch mode {
	case ModeManual:
		s.pilotThrottle, s.pilotBrake = true, true
		s.autoThrottle, s.autoBrake = false, false
	case ModeAuto:
		s.pilotThrottle, s.pilotBrake = false, false
		s.autoThrottle, s.autoBrake = true, true
	case ModeSemiAuto:
		s.pilotThrottle, s.pilotBrake = true, true
		s.autoThrottle, s.autoBrake = true, true
	}
}

// Authority reports the four authority bits (pilotThrottle, pilotBrake,
// autoThrottle, autoBrake).
func (s *State) Authority() (pilotThrottle, pilotBrake, autoThrottle, autoBrake bool) {
	s.flagMu.RLock()
	defer s.flagMu.RUnlock()
	return s.pilotThrottle, s.pilotBrake, s.autoThrottle, s.autoBrake
}

// AutoHasThrottleControl reports whether the auto system currently owns the
// throttle channel, gating START_* actions for throttle_inc/throttle_dec/
// cruise_runway per spec.md §4.5.
func (s *State) AutoHasThrottleControl() bool {
	s.flagMu.RLock()
	defer s.flagMu.RUnlock()
	return s.autoThrottle
}

// AutoHasBrakeControl reports whether the auto system currently owns the
// brake channel, gating START_BRAKE.
func (s *State) AutoHasBrakeControl() bool {
	s.flagMu.RLock()
	defer s.flagMu.RUnlock()
	return s.autoBrake
}

// HasControlConflict reports whether pilot and auto both claim the same
// channel (throttle or brake).
func (s *State) HasControlConflict() bool {
	s.flagMu.RLock()
	defer s.flagMu.RUnlock()
	return (s.pilotThrottle && s.autoThrottle) || (s.pilotBrake && s.autoBrake)
}

// AbortLatched reports whether an abort-takeoff style event has fired for
// this run. Scenario glue outside this package sets it from an event-bus
// callback; predicates read it to key later events off the abort.
func (s *State) AbortLatched() bool {
	s.flagMu.RLock()
	defer s.flagMu.RUnlock()
	return s.abortLatched
}

// SetAbortLatched sets the abort latch. It is idempotent to set true more
// than once.
func (s *State) SetAbortLatched(v bool) {
	s.flagMu.Lock()
	s.abortLatched = v
	s.flagMu.Unlock()
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

// atomicFloat is a float64 stored behind atomic.Uint64 bit patterns, giving
// acquire/release-ordered loads and stores without a mutex.
type atomicFloat struct {
	bits atomic.Uint64
}

func (a *atomicFloat) load() float64 {
	return math.Float64frombits(a.bits.Load())
}

func (a *atomicFloat) store(v float64) {
	a.bits.Store(math.Float64bits(v))
}

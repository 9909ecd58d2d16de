package scenario

import (
	"context"
	"testing"
	"time"

	"flightsim/internal/clock"
	"flightsim/internal/config"
	"flightsim/internal/controller"
	"flightsim/internal/dynamics"
	"flightsim/internal/eventbus"
	"flightsim/internal/queue"
	"flightsim/internal/state"
)

func TestTaxiStartThrottleFiresAfterOneSecond(t *testing.T) {
	sc := config.DefaultScenarioConfig()
	scn := Taxi(sc)
	s, err := state.New(scn.Init)
	if err != nil {
		t.Fatalf("state.New: %v", err)
	}

	predicate := findEvent(t, scn, "start_throttle").Predicate

	s.SetSimulationTime(0.5)
	if predicate(s) {
		t.Fatalf("expected start_throttle not to fire before t=1.0")
	}
	s.SetSimulationTime(1.0)
	if !predicate(s) {
		t.Fatalf("expected start_throttle to fire at t=1.0")
	}
}

// TestTaxiFinalStopFiresOnceSettledRegardlessOfMode pins the fix for the
// unreachable-final_stop gap: since final_stop's own SWITCH_TO_MANUAL_MODE
// action is what returns the run to Manual, the predicate must fire while
// still in Auto (granted by start_throttle) rather than requiring Manual
// already hold.
func TestTaxiFinalStopFiresOnceSettledRegardlessOfMode(t *testing.T) {
	sc := config.DefaultScenarioConfig()
	scn := Taxi(sc)
	s, err := state.New(scn.Init)
	if err != nil {
		t.Fatalf("state.New: %v", err)
	}
	predicate := findEvent(t, scn, "final_stop").Predicate

	s.SetFlightMode(state.ModeAuto)
	s.SetVelocity(0.05)
	s.SetFlag(state.FlagBrakeControlEnabled, true)
	if predicate(s) {
		t.Fatalf("expected final_stop to require all controllers off")
	}

	s.SetFlag(state.FlagBrakeControlEnabled, false)
	if !predicate(s) {
		t.Fatalf("expected final_stop to fire once settled, even while still in Auto")
	}
}

func TestAbortTakeoffLatchGatesCruise(t *testing.T) {
	sc := config.DefaultScenarioConfig()
	sc.AbortSpeed = 40
	scn := AbortTakeoff(sc)
	s, err := state.New(scn.Init)
	if err != nil {
		t.Fatalf("state.New: %v", err)
	}

	abortPred := findEvent(t, scn, "abort_takeoff").Predicate
	cruisePred := findEvent(t, scn, "cruise_after_abort").Predicate

	s.SetVelocity(39)
	if abortPred(s) {
		t.Fatalf("expected abort not to fire below abort speed")
	}
	s.SetVelocity(40)
	if !abortPred(s) {
		t.Fatalf("expected abort to fire at abort speed")
	}

	s.SetPosition(600)
	if cruisePred(s) {
		t.Fatalf("expected cruise_after_abort to require the abort latch")
	}
	s.SetAbortLatched(true)
	if !cruisePred(s) {
		t.Fatalf("expected cruise_after_abort to fire once latched and past position")
	}
}

func TestWatchdogStopsOnPositionThreshold(t *testing.T) {
	s, err := state.New(nil)
	if err != nil {
		t.Fatalf("state.New: %v", err)
	}
	c := clock.New(0.01)
	wd := NewWatchdog(s, c, nil)
	s.SetSimulationRunning(true)
	s.SetPosition(1600)

	wd.step(1)

	if s.SimulationRunning() {
		t.Fatalf("expected watchdog to stop the run past the position threshold")
	}
}

func TestWatchdogStopsOnTimeThreshold(t *testing.T) {
	s, err := state.New(nil)
	if err != nil {
		t.Fatalf("state.New: %v", err)
	}
	c := clock.New(0.01)
	wd := NewWatchdog(s, c, nil)
	s.SetSimulationRunning(true)
	s.SetSimulationTime(200)

	wd.step(1)

	if s.SimulationRunning() {
		t.Fatalf("expected watchdog to stop the run past the time threshold")
	}
}

// TestTaxiEndToEndCompletesViaFinalStop wires the taxi scenario's own event
// table into the real multi-worker loop (clock, controller manager, dynamics
// integrator, state manager, event bus) and runs it to completion: the
// scenario grants itself auto authority in start_throttle, ramps throttle,
// crosses 500m into braking, and settles into final_stop, which hands
// authority back to Manual and stops the vehicle rather than relying on the
// watchdog's position/time ceiling.
func TestTaxiEndToEndCompletesViaFinalStop(t *testing.T) {
	sc := config.DefaultScenarioConfig()
	scn := Taxi(sc)

	s, err := state.New(scn.Init) // SeedFrom leaves flight_mode at Manual
	if err != nil {
		t.Fatalf("state.New: %v", err)
	}
	c := clock.New(0.01)
	q := queue.New(nil)
	bus := eventbus.New()
	defer bus.Close()

	monitor := eventbus.NewMonitor(bus, s, c, nil)
	monitor.SetDefinitions(scn.Events)

	controllers := map[controller.Name]controller.Controller{
		controller.NameThrottleInc:  controller.NewThrottleInc(s, c, q, nil, 0),
		controller.NameThrottleDec:  controller.NewThrottleDec(s, c, q, nil, 0),
		controller.NameBrake:        controller.NewBrake(s, c, q, nil, 0),
		controller.NameCruiseRunway: controller.NewCruise(s, c, q, nil, 0),
		controller.NamePitchHold:    controller.NewPitchHold(s, c, q, nil),
	}
	manager := controller.NewManager(s, controllers, nil, nil)
	manager.SetActionConfig(config.DefaultActionConfigTable())
	manager.SetEventDefinitions(scn.Events)
	manager.SetupEventHandlers(bus)
	SubscribeTermination(bus, s, "final_stop")

	stateMgr := queue.NewManager(q, s, c, nil, nil)
	integrator := dynamics.New(s, c, q, dynamics.LinearModel{}, config.DefaultAircraftConfig(), nil)
	wd := NewWatchdog(s, c, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s.SetSimulationRunning(true)
	go c.Start()
	go monitor.Run(ctx)
	go stateMgr.Run(ctx)
	go integrator.Run(ctx)
	go wd.Run(ctx)
	manager.Start(ctx)

	deadline := time.Now().Add(5 * time.Second)
	for s.SimulationRunning() && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}

	c.Stop()
	cancel()
	manager.Join()

	if s.SimulationRunning() {
		t.Fatalf("expected the run to stop via final_stop before the deadline")
	}
	if got := s.FlightMode(); got != state.ModeManual {
		t.Fatalf("expected final_stop to restore manual authority, got mode=%v", got)
	}
	if s.Flag(state.FlagThrottleControlEnabled) || s.Flag(state.FlagBrakeControlEnabled) {
		t.Fatalf("expected final_stop to switch off every controller")
	}
	if pos := s.Position(); pos < 500 {
		t.Fatalf("expected the run to cross the 500m start_brake threshold, got position=%v", pos)
	}
}

func findEvent(t *testing.T, scn Scenario, name string) eventbus.Definition {
	t.Helper()
	for _, def := range scn.Events {
		if def.Name == name {
			return def
		}
	}
	t.Fatalf("event %q not found in scenario %q", name, scn.Name)
	return eventbus.Definition{}
}

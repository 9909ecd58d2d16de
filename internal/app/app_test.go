package app

import (
	"bufio"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"flightsim/internal/clock"
	"flightsim/internal/config"
	"flightsim/internal/controller"
	"flightsim/internal/queue"
	"flightsim/internal/state"
)

type appTestHarness struct {
	state *state.State
	clock *clock.Clock
	queue *queue.Queue
}

func newAppTestHarness(t *testing.T) appTestHarness {
	t.Helper()
	st, err := state.New(nil)
	if err != nil {
		t.Fatalf("state.New: %v", err)
	}
	return appTestHarness{
		state: st,
		clock: clock.New(0.01),
		queue: queue.New(nil),
	}
}

func TestSelectScenarioKnownNames(t *testing.T) {
	sc := config.DefaultScenarioConfig()

	if _, err := selectScenario("taxi", sc); err != nil {
		t.Fatalf("taxi: unexpected error: %v", err)
	}
	if _, err := selectScenario("", sc); err != nil {
		t.Fatalf("empty name (default taxi): unexpected error: %v", err)
	}
	if _, err := selectScenario("abort_takeoff", sc); err != nil {
		t.Fatalf("abort_takeoff: unexpected error: %v", err)
	}
}

func TestSelectScenarioUnknownNameErrors(t *testing.T) {
	sc := config.DefaultScenarioConfig()
	if _, err := selectScenario("no_such_scenario", sc); err == nil {
		t.Fatal("expected an error for an unknown scenario name")
	}
}

func TestBuildControllersHasAllFiveNames(t *testing.T) {
	h := newAppTestHarness(t)
	sc := config.DefaultScenarioConfig()

	controllers := buildControllers(h.state, h.clock, h.queue, nil, sc)

	want := []controller.Name{
		controller.NameThrottleInc,
		controller.NameThrottleDec,
		controller.NameBrake,
		controller.NameCruiseRunway,
		controller.NamePitchHold,
	}
	for _, name := range want {
		if _, ok := controllers[name]; !ok {
			t.Errorf("buildControllers: missing controller %q", name)
		}
	}
	if len(controllers) != len(want) {
		t.Errorf("buildControllers: got %d controllers, want %d", len(controllers), len(want))
	}
}

// TestNewWiresARunnableApp exercises New() end to end against a temp output
// directory and a minimal actions config, without ever calling Run().
func TestNewWiresARunnableApp(t *testing.T) {
	dir := t.TempDir()
	actionsPath := filepath.Join(dir, "controller_actions_config.txt")
	actionsBody := "START_THROTTLE_INC = throttle_inc\n" +
		"STOP_ALL = STOP_ALL\n"
	if err := os.WriteFile(actionsPath, []byte(actionsBody), 0o644); err != nil {
		t.Fatalf("writing actions config: %v", err)
	}

	a, err := New(Config{
		Scenario:          "taxi",
		ActionsConfigPath: actionsPath,
		OutputDir:         filepath.Join(dir, "out"),
		DT:                0.01,
		UseColor:          false,
	})
	if err != nil {
		t.Fatalf("New: unexpected error: %v", err)
	}
	if a.TraceID() == "" {
		t.Error("New: expected a non-empty trace ID")
	}
	if _, err := os.Stat(filepath.Join(dir, "out", "data.csv")); err != nil {
		t.Errorf("New: expected data.csv to be created: %v", err)
	}
	_ = a.router.Close(context.Background())
	for _, f := range a.outFiles {
		_ = f.Close()
	}
}

// TestNewFallsBackToDefaultActionsConfig pins spec.md §7's Configuration
// error kind: an unset ActionsConfigPath is not an error, it wires the
// built-in table so a scenario is runnable out of the box.
func TestNewFallsBackToDefaultActionsConfig(t *testing.T) {
	a, err := New(Config{Scenario: "taxi", OutputDir: t.TempDir()})
	if err != nil {
		t.Fatalf("New: unexpected error with no actions config path: %v", err)
	}
	_ = a.router.Close(context.Background())
	for _, f := range a.outFiles {
		_ = f.Close()
	}
}

func newTaxiApp(t *testing.T) *App {
	t.Helper()
	dir := t.TempDir()

	// No ActionsConfigPath: New falls back to config.DefaultActionConfigTable,
	// which wires the full ControllerAction enumeration the taxi scenario's
	// own event table needs (including the mode switches).
	a, err := New(Config{
		Scenario:  "taxi",
		OutputDir: filepath.Join(dir, "out"),
		DT:        0.01,
	})
	if err != nil {
		t.Fatalf("New: unexpected error: %v", err)
	}
	return a
}

func csvRowCount(t *testing.T, a *App) int {
	t.Helper()
	f, err := os.Open(filepath.Join(a.cfg.OutputDir, "data.csv"))
	if err != nil {
		t.Fatalf("opening data.csv: %v", err)
	}
	defer f.Close()

	lines := 0
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		if strings.TrimSpace(scanner.Text()) != "" {
			lines++
		}
	}
	return lines
}

// TestRunTaxiScenarioCompletesEndToEnd drives the real multi-worker loop
// (clock, controller manager, dynamics integrator, event bus, state manager)
// through the taxi scenario's event table end to end, per spec.md's worked
// example: start_throttle grants itself auto authority and ramps throttle,
// crossing 500m fires start_brake and the brake channel engages, and the run
// settles into final_stop, which hands authority back to Manual and stops
// the run without needing the watchdog's position/time ceiling.
func TestRunTaxiScenarioCompletesEndToEnd(t *testing.T) {
	a := newTaxiApp(t)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := a.Run(ctx); err != nil {
		t.Fatalf("Run: unexpected error: %v", err)
	}

	if pos := a.state.Position(); pos < 500 {
		t.Fatalf("expected the run to cross the 500m start_brake threshold, got position=%v", pos)
	}
	if a.state.Flag(state.FlagThrottleControlEnabled) || a.state.Flag(state.FlagBrakeControlEnabled) {
		t.Fatalf("expected final_stop to have switched every controller back off")
	}
	if mode := a.state.FlightMode(); mode != state.ModeManual {
		t.Fatalf("expected final_stop to restore manual authority, got mode=%v", mode)
	}

	if rows := csvRowCount(t, a); rows < 2 {
		t.Fatalf("expected data.csv to contain a header plus recorded rows, got %d lines", rows)
	}
}

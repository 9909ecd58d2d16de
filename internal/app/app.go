// Package app wires the simulation kernel of spec.md §2 into one runnable
// process: shared state, clock, state-update queue and its manager, event
// bus and monitor, the five controllers and their manager, the dynamics
// integrator, the wall-clock watchdog, and the logging pipeline that turns
// committed ticks into output/data.csv and the two text logs.
package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"flightsim/internal/clock"
	"flightsim/internal/config"
	"flightsim/internal/control"
	"flightsim/internal/controller"
	"flightsim/internal/dynamics"
	"flightsim/internal/eventbus"
	"flightsim/internal/queue"
	"flightsim/internal/scenario"
	"flightsim/internal/state"
	"flightsim/internal/telemetry"
	"flightsim/logging"
	"flightsim/logging/sinks"
)

// Config assembles everything a run needs from the command line.
type Config struct {
	Scenario           string // "taxi" or "abort_takeoff"
	ActionsConfigPath  string
	ScenarioConfigPath string
	AircraftConfigPath string
	OutputDir          string
	DT                 float64
	NonLinear          bool
	UseColor           bool
}

// App is one wired, runnable scenario.
type App struct {
	cfg Config

	router     *logging.Router
	traceID    string
	logger     telemetry.Logger
	metrics    telemetry.Metrics
	state      *state.State
	clock      *clock.Clock
	queue      *queue.Queue
	bus        *eventbus.Bus
	monitor    *eventbus.Monitor
	manager    *controller.Manager
	stateMgr   *queue.Manager
	integrator *dynamics.Integrator
	watchdog   *scenario.Watchdog
	control    control.Source
	outFiles   []*os.File
}

// New parses configuration, opens the output pipeline, and wires every
// component. It performs no blocking simulation work.
func New(cfg Config) (*App, error) {
	if cfg.DT <= 0 {
		cfg.DT = 0.01
	}
	if cfg.OutputDir == "" {
		cfg.OutputDir = "output"
	}

	traceID := uuid.NewString()

	router, logger, metrics, outFiles, err := buildLogging(cfg, traceID)
	if err != nil {
		return nil, err
	}

	actionTable := loadActionConfig(cfg.ActionsConfigPath, logger)
	scenarioCfg := loadScenarioConfig(cfg.ScenarioConfigPath, logger)
	aircraftCfg := loadAircraftConfig(cfg.AircraftConfigPath, logger)

	scn, err := selectScenario(cfg.Scenario, scenarioCfg)
	if err != nil {
		return nil, err
	}

	st, err := state.New(scn.Init)
	if err != nil {
		return nil, fmt.Errorf("app: %w", err)
	}

	c := clock.New(cfg.DT)
	q := queue.New(metrics)
	bus := eventbus.New(eventbus.WithLogger(logger), eventbus.WithMetrics(metrics))

	monitor := eventbus.NewMonitor(bus, st, c, logger)
	monitor.SetDefinitions(scn.Events)

	controllers := buildControllers(st, c, q, logger, scenarioCfg)
	manager := controller.NewManager(st, controllers, logger, metrics)
	manager.SetActionConfig(actionTable)
	manager.SetEventDefinitions(scn.Events)
	manager.SetupEventHandlers(bus)

	scenario.SubscribeTermination(bus, st, "final_stop")
	if cfg.Scenario == "abort_takeoff" {
		scenario.SubscribeAbortLatch(bus, st)
	}

	var model dynamics.ForceModel = dynamics.LinearModel{}
	if cfg.NonLinear {
		model = dynamics.NonLinearModel{}
	}
	integrator := dynamics.New(st, c, q, model, aircraftCfg, logger)

	recorder := newLogRecorder(router, traceID)
	stateMgr := queue.NewManager(q, st, c, recorder, logger)

	watchdog := scenario.NewWatchdog(st, c, logger)

	return &App{
		cfg:        cfg,
		router:     router,
		traceID:    traceID,
		logger:     logger,
		metrics:    metrics,
		state:      st,
		clock:      c,
		queue:      q,
		bus:        bus,
		monitor:    monitor,
		manager:    manager,
		stateMgr:   stateMgr,
		integrator: integrator,
		watchdog:   watchdog,
		control:    control.NoOp{},
		outFiles:   outFiles,
	}, nil
}

// WithControlSource overrides the default no-op control-signal source, e.g.
// with control.NewOSSignals() for an interactive run.
func (a *App) WithControlSource(src control.Source) *App {
	if src != nil {
		a.control = src
	}
	return a
}

// TraceID returns the run's correlation ID, attached to every emitted log
// event. Output file names do not include it.
func (a *App) TraceID() string { return a.traceID }

// Run starts every worker, blocks until the scenario's own termination event
// or the watchdog stops the run (or ctx is cancelled), and shuts everything
// down cooperatively.
func (a *App) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	a.state.SetSimulationStarted(true)
	a.state.SetSimulationRunning(true)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error { a.clock.Start(); return nil })
	g.Go(func() error { a.monitor.Run(gctx); return nil })
	g.Go(func() error { a.stateMgr.Run(gctx); return nil })
	g.Go(func() error { a.integrator.Run(gctx); return nil })
	g.Go(func() error { a.watchdog.Run(gctx); return nil })

	a.manager.Start(gctx)

	go a.watchControlSignals(cancel)

	a.waitUntilStopped(gctx)

	a.clock.Stop()
	cancel()
	a.manager.Join()
	_ = g.Wait()

	a.control.Close()
	a.bus.Close()
	err := a.router.Close(context.Background())
	for _, f := range a.outFiles {
		_ = f.Close()
	}
	return err
}

func (a *App) watchControlSignals(cancel context.CancelFunc) {
	for sig := range a.control.Signals() {
		switch sig {
		case control.SignalTerminate:
			a.state.SetSimulationRunning(false)
			return
		case control.SignalPauseResumeToggle:
			if a.clock.Paused() {
				a.clock.Resume()
			} else {
				a.clock.Pause()
			}
		}
	}
}

func (a *App) waitUntilStopped(ctx context.Context) {
	ticker := time.NewTicker(5 * time.Millisecond)
	defer ticker.Stop()
	for {
		if !a.state.SimulationRunning() {
			return
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func selectScenario(name string, sc config.ScenarioConfig) (scenario.Scenario, error) {
	switch name {
	case "", "taxi":
		return scenario.Taxi(sc), nil
	case "abort_takeoff":
		return scenario.AbortTakeoff(sc), nil
	default:
		return scenario.Scenario{}, fmt.Errorf("app: unknown scenario %q", name)
	}
}

func buildControllers(s *state.State, c *clock.Clock, q *queue.Queue, logger telemetry.Logger, sc config.ScenarioConfig) map[controller.Name]controller.Controller {
	return map[controller.Name]controller.Controller{
		controller.NameThrottleInc:  controller.NewThrottleInc(s, c, q, logger, sc.ThrottleIncreaseRate),
		controller.NameThrottleDec:  controller.NewThrottleDec(s, c, q, logger, sc.ThrottleDecreaseRate),
		controller.NameBrake:        controller.NewBrake(s, c, q, logger, sc.BrakeRate),
		controller.NameCruiseRunway: controller.NewCruise(s, c, q, logger, 0),
		controller.NamePitchHold:    controller.NewPitchHold(s, c, q, logger),
	}
}

func buildLogging(cfg Config, traceID string) (*logging.Router, telemetry.Logger, telemetry.Metrics, []*os.File, error) {
	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		return nil, nil, nil, nil, fmt.Errorf("app: creating output dir: %w", err)
	}

	csvFile, err := os.Create(filepath.Join(cfg.OutputDir, "data.csv"))
	if err != nil {
		return nil, nil, nil, nil, fmt.Errorf("app: opening data.csv: %w", err)
	}
	briefFile, err := os.Create(filepath.Join(cfg.OutputDir, "log_brief.txt"))
	if err != nil {
		return nil, nil, nil, nil, fmt.Errorf("app: opening log_brief.txt: %w", err)
	}
	detailFile, err := os.Create(filepath.Join(cfg.OutputDir, "log_detail.txt"))
	if err != nil {
		return nil, nil, nil, nil, fmt.Errorf("app: opening log_detail.txt: %w", err)
	}
	outFiles := []*os.File{csvFile, briefFile, detailFile}

	logCfg := logging.DefaultConfig()
	logCfg.Console.UseColor = cfg.UseColor
	logCfg.Fields = map[string]any{"trace_id": traceID}

	router, err := logging.NewRouter(nil, logCfg, []logging.NamedSink{
		{Name: "console", Sink: sinks.NewConsoleSink(os.Stdout, logCfg.Console)},
		{Name: "csv", Sink: sinks.NewCSV(csvFile, nil)},
		{Name: "log_brief_console", Sink: sinks.NewText(io.MultiWriter(briefFile, os.Stdout), false)},
		{Name: "log_detail", Sink: sinks.NewText(detailFile, true)},
	})
	if err != nil {
		return nil, nil, nil, nil, fmt.Errorf("app: constructing logging router: %w", err)
	}

	metrics := &logging.Metrics{}
	logger := newRouterLogger(router, traceID)
	return router, logger, telemetry.WrapMetrics(metrics), outFiles, nil
}

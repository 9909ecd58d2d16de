package controller

import (
	"context"
	"strings"
	"sync"

	"flightsim/internal/config"
	"flightsim/internal/eventbus"
	"flightsim/internal/state"
	"flightsim/internal/telemetry"
)

// Manager is the controller manager of spec.md §4.5: it owns the fixed
// roster of controllers, translates event names into lifecycle operations
// via the scenario's action table, and gates auto-controller starts on
// flight-mode authority.
type Manager struct {
	state   *state.State
	logger  telemetry.Logger
	metrics telemetry.Metrics

	controllers map[Name]Controller
	actions     config.ActionConfigTable
	defs        []eventbus.Definition

	mu      sync.Mutex
	handled map[string]bool

	wg sync.WaitGroup
}

// NewManager constructs a Manager owning the given roster, keyed by Name.
func NewManager(s *state.State, controllers map[Name]Controller, logger telemetry.Logger, metrics telemetry.Metrics) *Manager {
	return &Manager{
		state:       s,
		logger:      logger,
		metrics:     metrics,
		controllers: controllers,
		handled:     make(map[string]bool),
	}
}

// SetActionConfig installs the parsed controller_actions_config.txt table.
func (m *Manager) SetActionConfig(table config.ActionConfigTable) {
	m.actions = table
}

// SetEventDefinitions stores the scenario's event table (spec.md §4.5).
func (m *Manager) SetEventDefinitions(defs []eventbus.Definition) {
	m.defs = defs
}

// SetupEventHandlers subscribes one callback per event name in the
// scenario's table. On first invocation a callback marks the event handled
// and executes its ordered action list; later invocations (the bus may
// double-deliver if the monitor double-latches) are no-ops.
func (m *Manager) SetupEventHandlers(bus *eventbus.Bus) {
	for _, def := range m.defs {
		def := def
		bus.Subscribe(def.Name, func(name string, _ any) {
			if !m.markHandledOnce(name) {
				return
			}
			m.executeActions(def.Actions)
		})
	}
}

func (m *Manager) markHandledOnce(name string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.handled[name] {
		return false
	}
	m.handled[name] = true
	return true
}

func (m *Manager) executeActions(actions []eventbus.Action) {
	for _, action := range actions {
		m.executeAction(action)
	}
}

func (m *Manager) executeAction(action eventbus.Action) {
	entry, ok := m.actions[string(action)]
	if !ok {
		m.warnf("controller manager: no action config entry for %q", action)
		return
	}

	switch entry.Type {
	case config.ActionTypeStopAll:
		m.stopAll()
	case config.ActionTypeMode:
		m.applyMode(entry)
	case config.ActionTypeController:
		m.applyControllerAction(string(action), entry)
	}
}

func (m *Manager) applyMode(entry config.ActionConfig) {
	raw, ok := entry.StateSettings["flight_mode"]
	if !ok {
		m.warnf("controller manager: MODE action %q missing flight_mode setting", entry.ActionName)
		return
	}
	mode, ok := parseMode(raw)
	if !ok {
		m.warnf("controller manager: MODE action %q has invalid flight_mode %q", entry.ActionName, raw)
		return
	}
	m.state.SetFlightMode(mode)
}

func parseMode(raw string) (state.FlightMode, bool) {
	switch raw {
	case "AUTO":
		return state.ModeAuto, true
	case "MANUAL":
		return state.ModeManual, true
	case "SEMI_AUTO":
		return state.ModeSemiAuto, true
	default:
		return state.ModeManual, false
	}
}

func (m *Manager) applyControllerAction(actionName string, entry config.ActionConfig) {
	ctrl, ok := m.controllers[Name(entry.ControllerName)]
	if !ok {
		m.warnf("controller manager: unknown controller %q for action %q", entry.ControllerName, actionName)
		return
	}

	// Apply state_settings before starting or stopping, per spec.md §4.5.
	m.applyStateSettings(ctrl, entry.StateSettings)

	switch {
	case strings.HasPrefix(actionName, "START_"):
		m.startController(ctrl)
	case strings.HasPrefix(actionName, "STOP_"):
		ctrl.Stop()
	default:
		m.warnf("controller manager: action %q neither starts nor stops a controller", actionName)
	}
}

func (m *Manager) applyStateSettings(ctrl Controller, settings map[string]string) {
	for key, raw := range settings {
		switch key {
		case string(state.FlagThrottleControlEnabled),
			string(state.FlagBrakeControlEnabled),
			string(state.FlagCruiseControlEnabled),
			string(state.FlagPitchControlEnabled):
			value, err := config.BoolSetting(raw)
			if err != nil {
				m.warnf("controller manager: %v", err)
				continue
			}
			m.state.SetFlag(state.ControllerFlag(key), value)
		case "pitch_angle_target":
			if pitch, ok := ctrl.(*PitchHold); ok {
				if v, err := config.ParseFloat(raw); err == nil {
					pitch.SetTarget(v)
				} else {
					m.warnf("controller manager: invalid pitch_angle_target %q: %v", raw, err)
				}
			}
		default:
			m.warnf("controller manager: unrecognized state setting key %q, ignoring", key)
		}
	}
}

// startController enforces the authority gate of spec.md §4.5: throttle_inc,
// throttle_dec, and cruise_runway require auto throttle authority; brake
// requires auto brake authority. Denied starts are logged and are a no-op.
func (m *Manager) startController(ctrl Controller) {
	switch ctrl.Name() {
	case NameThrottleInc, NameThrottleDec, NameCruiseRunway:
		if !m.state.AutoHasThrottleControl() {
			m.denyStart(ctrl.Name())
			return
		}
	case NameBrake:
		if !m.state.AutoHasBrakeControl() {
			m.denyStart(ctrl.Name())
			return
		}
	}
	ctrl.Start()
}

func (m *Manager) denyStart(name Name) {
	m.warnf("controller manager: authority denied starting %q", name)
	if m.metrics != nil {
		m.metrics.Add("controller_authority_denied_total", 1)
	}
}

func (m *Manager) stopAll() {
	for _, ctrl := range m.controllers {
		ctrl.Stop()
	}
}

func (m *Manager) warnf(format string, args ...any) {
	if m.logger != nil {
		m.logger.Printf(format, args...)
	}
}

// Start launches every controller's Run loop under ctx.
func (m *Manager) Start(ctx context.Context) {
	for _, ctrl := range m.controllers {
		ctrl := ctrl
		m.wg.Add(1)
		go func() {
			defer m.wg.Done()
			ctrl.Run(ctx)
		}()
	}
}

// Join blocks until every controller's Run loop has returned.
func (m *Manager) Join() {
	m.wg.Wait()
}

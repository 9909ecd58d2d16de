// Package config parses the two line-oriented text file formats of
// spec.md §6: the controller-actions config and the scenario config, plus
// an aircraft-constants file in the scenario config's `KEY = double`
// grammar. All share the same lexical rules (blank/`#` lines ignored),
// matching the field-tagged-struct approach the teacher's
// logging.Config uses for its own defaults, generalized to file parsing
// since spec.md mandates a bespoke text format rather than YAML/JSON.
package config

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"flightsim/internal/telemetry"
)

// ActionType classifies an ActionConfig entry.
type ActionType int

const (
	ActionTypeController ActionType = iota
	ActionTypeStopAll
	ActionTypeMode
)

// ActionConfig is one parsed entry of controller_actions_config.txt,
// mapping an action name to a controller and a set of state settings.
type ActionConfig struct {
	ActionName     string
	ControllerName string
	StateSettings  map[string]string
	Type           ActionType
}

// ActionConfigTable is the full parsed file, keyed by action name.
type ActionConfigTable map[string]ActionConfig

// defaultActionConfigSource wires every tag of spec.md §6's ControllerAction
// enumeration to its controller, so a scenario ships runnable out of the
// box without a hand-authored controller_actions_config.txt.
const defaultActionConfigSource = `
START_THROTTLE_INCREASE = throttle_inc, throttle_control_enabled=true
STOP_THROTTLE_INCREASE = throttle_inc, throttle_control_enabled=false
START_THROTTLE_DECREASE = throttle_dec, throttle_control_enabled=true
STOP_THROTTLE_DECREASE = throttle_dec, throttle_control_enabled=false
START_BRAKE = brake, brake_control_enabled=true
STOP_BRAKE = brake, brake_control_enabled=false
START_CRUISE = cruise_runway, cruise_control_enabled=true
STOP_CRUISE = cruise_runway, cruise_control_enabled=false
START_PITCH_CONTROL = pitch_hold, pitch_control_enabled=true
STOP_PITCH_CONTROL = pitch_hold, pitch_control_enabled=false
SET_PITCH_ANGLE = pitch_hold, pitch_angle_target=0
STOP_ALL_CONTROLLERS = STOP_ALL,
SWITCH_TO_AUTO_MODE = MODE, flight_mode=AUTO
SWITCH_TO_MANUAL_MODE = MODE, flight_mode=MANUAL
SWITCH_TO_SEMI_AUTO_MODE = MODE, flight_mode=SEMI_AUTO
`

// DefaultActionConfigTable returns the built-in controller_actions_config.txt
// used whenever a run doesn't supply its own, per spec.md §7's Configuration
// error kind (missing config warns and keeps defaults, never aborts a run).
func DefaultActionConfigTable() ActionConfigTable {
	return ParseActionConfig(strings.NewReader(defaultActionConfigSource), nil)
}

// ParseActionConfig parses the controller_actions_config.txt format:
//
//	ACTION_NAME = controller_name, key=value[;key=value]*
//
// "STOP_ALL" implies ActionTypeStopAll; "MODE" implies ActionTypeMode (the
// single setting flight_mode=AUTO|MANUAL|SEMI_AUTO); anything else implies
// ActionTypeController. Malformed lines are warned via logger and skipped;
// parsing itself never fails, per spec.md §7's Configuration error kind.
func ParseActionConfig(r io.Reader, logger telemetry.Logger) ActionConfigTable {
	table := make(ActionConfigTable)
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		name, rhs, ok := splitOnce(line, "=")
		if !ok {
			warnf(logger, "action config line %d: missing '=': %q", lineNo, line)
			continue
		}
		name = strings.TrimSpace(name)
		controller, settingsRaw, _ := splitOnce(rhs, ",")
		controller = strings.TrimSpace(controller)
		if controller == "" {
			warnf(logger, "action config line %d: missing controller name: %q", lineNo, line)
			continue
		}

		entry := ActionConfig{
			ActionName:     name,
			ControllerName: controller,
			StateSettings:  parseSettings(settingsRaw),
		}
		switch controller {
		case "STOP_ALL":
			entry.Type = ActionTypeStopAll
		case "MODE":
			entry.Type = ActionTypeMode
		default:
			entry.Type = ActionTypeController
		}
		table[name] = entry
	}
	return table
}

func parseSettings(raw string) map[string]string {
	settings := make(map[string]string)
	for _, pair := range strings.Split(raw, ";") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		k, v, ok := splitOnce(pair, "=")
		if !ok {
			continue
		}
		settings[strings.TrimSpace(k)] = strings.TrimSpace(v)
	}
	return settings
}

// BoolSetting parses a recognized state key's "true"/"false" wire value.
func BoolSetting(value string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "true":
		return true, nil
	case "false":
		return false, nil
	default:
		return false, fmt.Errorf("config: invalid boolean %q", value)
	}
}

func splitOnce(s, sep string) (before, after string, ok bool) {
	idx := strings.Index(s, sep)
	if idx < 0 {
		return s, "", false
	}
	return s[:idx], s[idx+len(sep):], true
}

func warnf(logger telemetry.Logger, format string, args ...any) {
	if logger == nil {
		return
	}
	logger.Printf("config: "+format, args...)
}

// FormatEntry re-serializes an ActionConfig entry to the wire format, used
// to round-trip test parse/serialize equivalence (spec.md §8).
func (e ActionConfig) FormatEntry() string {
	var b strings.Builder
	b.WriteString(e.ActionName)
	b.WriteString(" = ")
	b.WriteString(e.ControllerName)
	if len(e.StateSettings) > 0 {
		b.WriteString(", ")
		first := true
		for _, k := range sortedKeys(e.StateSettings) {
			if !first {
				b.WriteString(";")
			}
			first = false
			b.WriteString(k)
			b.WriteString("=")
			b.WriteString(e.StateSettings[k])
		}
	}
	return b.String()
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	for i := 1; i < len(keys); i++ {
		for j := i; j > 0 && keys[j-1] > keys[j]; j-- {
			keys[j-1], keys[j] = keys[j], keys[j-1]
		}
	}
	return keys
}

// ParseFloat is a small helper shared with scenario config parsing.
func ParseFloat(s string) (float64, error) {
	return strconv.ParseFloat(strings.TrimSpace(s), 64)
}

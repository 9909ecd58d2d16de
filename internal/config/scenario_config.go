package config

import (
	"bufio"
	"io"
	"strings"

	"flightsim/internal/telemetry"
)

// ScenarioConfig holds the double-valued keys recognized from a
// `*_config.txt` file per spec.md §6. Unknown keys are warned and ignored,
// never fatal.
type ScenarioConfig struct {
	TargetSpeed           float64
	AbortSpeed            float64
	BrakeRate             float64
	ThrottleIncreaseRate  float64
	ThrottleDecreaseRate  float64
	SimulationTimeStep    float64
	CruiseSpeed           float64
	ZeroVelocityThreshold float64

	// Raw carries every parsed key/value, including ones DefaultScenario-
	// Config does not name, so scenario glue can read additional knobs
	// (e.g. aircraft config overrides) without widening this struct.
	Raw map[string]float64
}

// DefaultScenarioConfig returns the values used throughout spec.md §8's
// worked examples.
func DefaultScenarioConfig() ScenarioConfig {
	return ScenarioConfig{
		TargetSpeed:           60,
		AbortSpeed:            40,
		BrakeRate:             0.2,
		ThrottleIncreaseRate:  0.1,
		ThrottleDecreaseRate:  0.2,
		SimulationTimeStep:    0.01,
		CruiseSpeed:           60,
		ZeroVelocityThreshold: 0.1,
		Raw:                   map[string]float64{},
	}
}

var scenarioFieldSetters = map[string]func(*ScenarioConfig, float64){
	"target_speed":            func(c *ScenarioConfig, v float64) { c.TargetSpeed = v },
	"abort_speed":              func(c *ScenarioConfig, v float64) { c.AbortSpeed = v },
	"brake_rate":               func(c *ScenarioConfig, v float64) { c.BrakeRate = v },
	"throttle_increase_rate":   func(c *ScenarioConfig, v float64) { c.ThrottleIncreaseRate = v },
	"throttle_decrease_rate":   func(c *ScenarioConfig, v float64) { c.ThrottleDecreaseRate = v },
	"simulation_time_step":     func(c *ScenarioConfig, v float64) { c.SimulationTimeStep = v },
	"cruise_speed":             func(c *ScenarioConfig, v float64) { c.CruiseSpeed = v },
	"zero_velocity_threshold":  func(c *ScenarioConfig, v float64) { c.ZeroVelocityThreshold = v },
}

// ParseScenarioConfig parses `KEY = double` lines into cfg, starting from
// DefaultScenarioConfig()'s values for any key not present in r.
func ParseScenarioConfig(r io.Reader, logger telemetry.Logger) ScenarioConfig {
	cfg := DefaultScenarioConfig()
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, raw, ok := splitOnce(line, "=")
		if !ok {
			warnf(logger, "scenario config line %d: missing '=': %q", lineNo, line)
			continue
		}
		key = strings.TrimSpace(key)
		value, err := ParseFloat(raw)
		if err != nil {
			warnf(logger, "scenario config line %d: invalid float for %q: %v", lineNo, key, err)
			continue
		}
		cfg.Raw[key] = value
		if setter, known := scenarioFieldSetters[key]; known {
			setter(&cfg, value)
		} else {
			warnf(logger, "scenario config line %d: unrecognized key %q, ignoring", lineNo, key)
		}
	}
	return cfg
}

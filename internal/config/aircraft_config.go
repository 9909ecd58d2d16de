package config

import (
	"bufio"
	"io"
	"strings"

	"flightsim/internal/telemetry"
)

// AircraftConfig holds the force-model constants of spec.md §4.7: vehicle
// mass, actuator limits, and the aerodynamic/friction coefficients the
// linear force model uses. Rho, Area, and Gravity are environment constants
// that spec.md pins rather than leaving configurable, but are still exposed
// here so an aircraft config file can override them.
type AircraftConfig struct {
	Mass      float64
	MaxThrust float64
	MaxBrake  float64
	Cd        float64
	MuStatic  float64
	Rho       float64
	Area      float64
	Gravity   float64

	Raw map[string]float64
}

// DefaultAircraftConfig returns the AC1 constants used throughout spec.md
// §8's worked examples.
func DefaultAircraftConfig() AircraftConfig {
	return AircraftConfig{
		Mass:      80000,
		MaxThrust: 500000,
		MaxBrake:  400000,
		Cd:        0.02,
		MuStatic:  0.02,
		Rho:       1.225,
		Area:      50,
		Gravity:   9.81,
		Raw:       map[string]float64{},
	}
}

var aircraftFieldSetters = map[string]func(*AircraftConfig, float64){
	"mass":       func(c *AircraftConfig, v float64) { c.Mass = v },
	"max_thrust": func(c *AircraftConfig, v float64) { c.MaxThrust = v },
	"max_brake":  func(c *AircraftConfig, v float64) { c.MaxBrake = v },
	"cd":         func(c *AircraftConfig, v float64) { c.Cd = v },
	"mu_s":       func(c *AircraftConfig, v float64) { c.MuStatic = v },
	"rho":        func(c *AircraftConfig, v float64) { c.Rho = v },
	"area":       func(c *AircraftConfig, v float64) { c.Area = v },
	"gravity":    func(c *AircraftConfig, v float64) { c.Gravity = v },
}

// ParseAircraftConfig parses `KEY = double` lines into cfg, starting from
// DefaultAircraftConfig()'s AC1 values for any key not present in r.
func ParseAircraftConfig(r io.Reader, logger telemetry.Logger) AircraftConfig {
	cfg := DefaultAircraftConfig()
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
			warnf(logger, "aircraft config line %d: missing '=': %q", lineNo, line)
			continue
		}
		key = strings.TrimSpace(key)
		value, err := ParseFloat(raw)
		if err != nil {
			warnf(logger, "aircraft config line %d: invalid float for %q: %v", lineNo, key, err)
			continue
		}
		cfg.Raw[key] = value
		if setter, known := aircraftFieldSetters[key]; known {
			setter(&cfg, value)
		} else {
			warnf(logger, "aircraft config line %d: unrecognized key %q, ignoring", lineNo, key)
		}
	}
	return cfg
}

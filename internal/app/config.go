package app

import (
	"os"

	"flightsim/internal/config"
	"flightsim/internal/telemetry"
)

// loadActionConfig reads path if non-empty, otherwise returns the built-in
// action table wiring the full ControllerAction enumeration (spec.md §6); a
// missing or empty path is not an error, per spec.md §7's Configuration
// error kind (missing config warns and keeps defaults, it never aborts a
// run) — the same rule loadScenarioConfig/loadAircraftConfig apply.
func loadActionConfig(path string, logger telemetry.Logger) config.ActionConfigTable {
	if path == "" {
		return config.DefaultActionConfigTable()
	}
	f, err := os.Open(path)
	if err != nil {
		if logger != nil {
			logger.Printf("app: actions config %q not found, using defaults: %v", path, err)
		}
		return config.DefaultActionConfigTable()
	}
	defer f.Close()
	return config.ParseActionConfig(f, logger)
}

// loadScenarioConfig reads path if non-empty, otherwise returns the built-in
// defaults; a missing or empty path is not an error, per spec.md §7's
// Configuration error kind (missing config warns and keeps defaults, it
// never aborts a run).
func loadScenarioConfig(path string, logger telemetry.Logger) config.ScenarioConfig {
	if path == "" {
		return config.DefaultScenarioConfig()
	}
	f, err := os.Open(path)
	if err != nil {
		if logger != nil {
			logger.Printf("app: scenario config %q not found, using defaults: %v", path, err)
		}
		return config.DefaultScenarioConfig()
	}
	defer f.Close()
	return config.ParseScenarioConfig(f, logger)
}

// loadAircraftConfig reads path if non-empty, otherwise returns the AC1
// defaults used throughout spec.md's worked examples.
func loadAircraftConfig(path string, logger telemetry.Logger) config.AircraftConfig {
	if path == "" {
		return config.DefaultAircraftConfig()
	}
	f, err := os.Open(path)
	if err != nil {
		if logger != nil {
			logger.Printf("app: aircraft config %q not found, using AC1 defaults: %v", path, err)
		}
		return config.DefaultAircraftConfig()
	}
	defer f.Close()
	return config.ParseAircraftConfig(f, logger)
}

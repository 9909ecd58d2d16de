package config

import (
	"strings"
	"testing"
)

func TestParseActionConfigRecognizesTypes(t *testing.T) {
	src := `
# comment
START_THROTTLE_INCREASE = throttle_inc, throttle_control_enabled=true
STOP_ALL_CONTROLLERS = STOP_ALL,
SWITCH_TO_AUTO_MODE = MODE, flight_mode=AUTO
`
	table := ParseActionConfig(strings.NewReader(src), nil)

	entry, ok := table["START_THROTTLE_INCREASE"]
	if !ok || entry.Type != ActionTypeController || entry.ControllerName != "throttle_inc" {
		t.Fatalf("unexpected controller entry: %+v ok=%v", entry, ok)
	}
	if entry.StateSettings["throttle_control_enabled"] != "true" {
		t.Fatalf("state settings not parsed: %+v", entry.StateSettings)
	}

	stopAll, ok := table["STOP_ALL_CONTROLLERS"]
	if !ok || stopAll.Type != ActionTypeStopAll {
		t.Fatalf("expected STOP_ALL entry, got %+v", stopAll)
	}

	mode, ok := table["SWITCH_TO_AUTO_MODE"]
	if !ok || mode.Type != ActionTypeMode || mode.StateSettings["flight_mode"] != "AUTO" {
		t.Fatalf("expected MODE entry, got %+v", mode)
	}
}

func TestParseActionConfigSkipsMalformedLines(t *testing.T) {
	src := "not a valid line\nSTART_BRAKE = brake, brake_control_enabled=true\n"
	table := ParseActionConfig(strings.NewReader(src), nil)
	if len(table) != 1 {
		t.Fatalf("expected exactly one valid entry, got %d", len(table))
	}
}

func TestRoundTripFormatEntry(t *testing.T) {
	entry := ActionConfig{
		ActionName:     "START_BRAKE",
		ControllerName: "brake",
		StateSettings:  map[string]string{"brake_control_enabled": "true"},
		Type:           ActionTypeController,
	}
	serialized := entry.FormatEntry()
	table := ParseActionConfig(strings.NewReader(serialized), nil)
	reparsed := table["START_BRAKE"]
	if reparsed.ControllerName != entry.ControllerName {
		t.Fatalf("round trip mismatch: %+v vs %+v", reparsed, entry)
	}
	if reparsed.StateSettings["brake_control_enabled"] != "true" {
		t.Fatalf("round trip lost state settings: %+v", reparsed.StateSettings)
	}
}

func TestParseScenarioConfigOverridesDefaults(t *testing.T) {
	src := "target_speed = 75.5\nunknown_key = 1\nabort_speed = 40\n"
	cfg := ParseScenarioConfig(strings.NewReader(src), nil)
	if cfg.TargetSpeed != 75.5 {
		t.Fatalf("target_speed not applied: %v", cfg.TargetSpeed)
	}
	if cfg.AbortSpeed != 40 {
		t.Fatalf("abort_speed not applied: %v", cfg.AbortSpeed)
	}
	if cfg.BrakeRate != DefaultScenarioConfig().BrakeRate {
		t.Fatalf("unset key should keep default: %v", cfg.BrakeRate)
	}
	if _, ok := cfg.Raw["unknown_key"]; !ok {
		t.Fatalf("unknown key should still be captured in Raw")
	}
}

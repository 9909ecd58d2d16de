package app

import (
	"context"

	"flightsim/internal/state"
	"flightsim/logging"
	"flightsim/logging/sinks"
)

// logRecorder adapts a committed tick into the logging pipeline: one "tick"
// event per commit, carrying a sinks.DataRow payload that the CSV sink
// writes as a row and the detailed text sink renders as JSON.
type logRecorder struct {
	router  *logging.Router
	traceID string
}

func newLogRecorder(router *logging.Router, traceID string) *logRecorder {
	return &logRecorder{router: router, traceID: traceID}
}

func (r *logRecorder) RecordTick(tick uint64, snap state.Snapshot) {
	if r.router == nil {
		return
	}
	row := sinks.DataRow{
		Time:       snap.SimulationTime,
		Position:   snap.Position,
		Velocity:   snap.Velocity,
		Acc:        snap.Acceleration,
		Throttle:   snap.Throttle,
		Brake:      snap.Brake,
		Thrust:     snap.Thrust,
		Drag:       snap.DragForce,
		BrakeForce: snap.BrakeForce,
	}
	r.router.Publish(context.Background(), logging.Event{
		Type:     "tick",
		Tick:     tick,
		Severity: logging.SeverityInfo,
		Category: logging.CategorySimulation,
		Actor:    logging.EntityRef{Kind: logging.EntityKindVehicle, ID: "vehicle"},
		Payload:  row,
		TraceID:  r.traceID,
	})
}

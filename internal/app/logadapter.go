package app

import (
	"context"
	"fmt"

	"flightsim/logging"
)

// routerLogger adapts the router into telemetry.Logger so every worker's
// warn-level Printf calls flow through the same sinks as tick data, tagged
// with the run's trace ID.
type routerLogger struct {
	router  *logging.Router
	traceID string
}

func newRouterLogger(router *logging.Router, traceID string) *routerLogger {
	return &routerLogger{router: router, traceID: traceID}
}

func (l *routerLogger) Printf(format string, args ...any) {
	if l == nil || l.router == nil {
		return
	}
	l.router.Publish(context.Background(), logging.Event{
		Type:     "worker_warning",
		Severity: logging.SeverityWarn,
		Category: logging.CategorySystem,
		Actor:    logging.EntityRef{Kind: logging.EntityKindSystem, ID: "worker"},
		Payload:  fmt.Sprintf(format, args...),
		TraceID:  l.traceID,
	})
}

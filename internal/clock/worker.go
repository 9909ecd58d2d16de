package clock

import (
	"context"

	"flightsim/internal/telemetry"
)

// StepFunc performs one worker's per-tick body. tick is the step count the
// worker is executing.
type StepFunc func(tick uint64)

// RunWorker implements the barrier contract of spec.md §4.1/§5 for any
// clock-registered worker: register, then on each iteration wait for the
// next step, run fn at most once, and notify completion exactly once —
// regardless of whether fn panics, so a panicking worker still unregisters
// (scoped release) instead of deadlocking the barrier. It returns when ctx
// is cancelled or the clock stops.
func RunWorker(ctx context.Context, c *Clock, logger telemetry.Logger, name string, fn StepFunc) {
	c.RegisterWorker()
	defer c.UnregisterWorker()

	var lastStep uint64
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		step := c.WaitForNextStep(lastStep)
		if !c.Running() {
			return
		}
		lastStep = step

		runStepRecovered(logger, name, fn, step)
		c.NotifyStepCompleted()
	}
}

// runStepRecovered isolates a single worker tick so a panic in one
// controller or the integrator cannot wedge the shared barrier; the caller
// still calls NotifyStepCompleted afterward.
func runStepRecovered(logger telemetry.Logger, name string, fn StepFunc, tick uint64) {
	defer func() {
		if r := recover(); r != nil && logger != nil {
			logger.Printf("worker %s panicked at tick %d: %v", name, tick, r)
		}
	}()
	fn(tick)
}

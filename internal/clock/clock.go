// Package clock implements the tick-barrier: the singleton-scoped time
// authority that every simulation worker registers with and blocks against,
// per spec.md §4.1. It is grounded on the mutex+condvar dispatch handshake
// the teacher's logging.Router uses between its dispatch loop and sink
// workers, generalized to a full start/end barrier with two wait-sets.
package clock

import (
	"sync"
)

const defaultTimeStep = 0.01

// Clock is the tick-barrier time authority. It advances simulated time only
// after every registered worker has reported step completion.
type Clock struct {
	mu sync.Mutex

	stepStart *sync.Cond
	stepEnd   *sync.Cond

	dt      float64
	current float64
	step    uint64

	running bool
	stopped bool
	paused  bool

	registered uint64
	completed  uint64
}

// New constructs a Clock with the given time step. A non-positive dt falls
// back to the spec default of 0.01s.
func New(dt float64) *Clock {
	if dt <= 0 {
		dt = defaultTimeStep
	}
	c := &Clock{dt: dt}
	c.stepStart = sync.NewCond(&c.mu)
	c.stepEnd = sync.NewCond(&c.mu)
	return c
}

// RegisterWorker increments the registered-worker count. Callers must pair
// every RegisterWorker with an UnregisterWorker around their loop, including
// on the panic-recovery path, so a crashed worker never wedges the barrier.
func (c *Clock) RegisterWorker() {
	c.mu.Lock()
	c.registered++
	c.mu.Unlock()
	c.stepEnd.Broadcast()
}

// UnregisterWorker decrements the registered-worker count and wakes the
// step_end wait-set, since a barrier waiting on N workers may now be
// satisfied by N-1.
func (c *Clock) UnregisterWorker() {
	c.mu.Lock()
	if c.registered > 0 {
		c.registered--
	}
	c.mu.Unlock()
	c.stepEnd.Broadcast()
}

// TimeStep returns dt.
func (c *Clock) TimeStep() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.dt
}

// SetTimeStep updates dt for subsequent ticks.
func (c *Clock) SetTimeStep(dt float64) {
	if dt <= 0 {
		return
	}
	c.mu.Lock()
	c.dt = dt
	c.mu.Unlock()
}

// CurrentTime returns the clock's current simulated time.
func (c *Clock) CurrentTime() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// StepCount returns the number of ticks published so far.
func (c *Clock) StepCount() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.step
}

// Running reports whether the clock is still advancing ticks.
func (c *Clock) Running() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.running
}

// Start primes the barrier: it publishes step 1 once to wake any worker
// already waiting, then loops advancing time whenever every registered
// worker has signaled completion. Start blocks until Stop is called (or the
// caller runs it in its own goroutine, which is the expected usage). A Start
// after Stop returns at once.
func (c *Clock) Start() {
	c.mu.Lock()
	if c.running || c.stopped {
		c.mu.Unlock()
		return
	}
	c.running = true
	c.step = 1
	c.stepStart.Broadcast()
	c.mu.Unlock()

	for {
		c.mu.Lock()
		for c.running && (c.registered == 0 || c.completed < c.registered) {
			c.stepEnd.Wait()
		}
		if !c.running {
			c.mu.Unlock()
			return
		}
		c.completed = 0

		for c.paused && c.running {
			c.stepStart.Wait()
		}
		if !c.running {
			c.mu.Unlock()
			return
		}

		c.current += c.dt
		c.step++
		c.stepStart.Broadcast()
		c.mu.Unlock()
	}
}

// Stop flips running to false and wakes every waiter on both wait-sets so
// they can observe the flag and exit cooperatively. There is no force-kill.
func (c *Clock) Stop() {
	c.mu.Lock()
	c.running = false
	c.stopped = true
	c.mu.Unlock()
	c.stepStart.Broadcast()
	c.stepEnd.Broadcast()
}

// Pause prevents the barrier from advancing past the current step, without
// releasing waiters early.
func (c *Clock) Pause() {
	c.mu.Lock()
	c.paused = true
	c.mu.Unlock()
}

// Resume allows the barrier to advance again; the next tick advances by
// exactly one dt.
func (c *Clock) Resume() {
	c.mu.Lock()
	c.paused = false
	c.mu.Unlock()
	c.stepStart.Broadcast()
}

// Paused reports whether the clock is currently paused.
func (c *Clock) Paused() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.paused
}

// WaitForNextStep blocks until step_count exceeds lastStep or the clock has
// stopped; a call made before Start waits for Start to publish step 1. It
// returns the new step count (which may be unchanged from lastStep if the
// clock stopped, and the caller must check Running()).
func (c *Clock) WaitForNextStep(lastStep uint64) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	for !c.stopped && c.step <= lastStep {
		c.stepStart.Wait()
	}
	return c.step
}

// NotifyStepCompleted increments completed_workers and wakes the barrier.
// Every registered worker must call this exactly once per tick regardless
// of whether it performed useful work; omitting the call deadlocks the tick.
func (c *Clock) NotifyStepCompleted() {
	c.mu.Lock()
	c.completed++
	c.mu.Unlock()
	c.stepEnd.Broadcast()
}

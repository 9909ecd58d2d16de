// Package queue implements the state-update queue and its draining state
// manager worker (spec.md §4.3): a multi-producer/single-consumer queue of
// StateUpdateMessage that is non-blocking for producers. It is grounded on
// the teacher's internal/sim.CommandBuffer ring buffer, generalized from a
// fixed-capacity ring to an unbounded mutex-guarded slice since the state-
// update queue has no documented capacity limit (unlike the event bus).
package queue

import (
	"sync"

	"flightsim/internal/telemetry"
)

// Kind tags a StateUpdateMessage with the SharedState field it targets.
type Kind string

const (
	KindPosition     Kind = "position"
	KindVelocity     Kind = "velocity"
	KindAcceleration Kind = "acceleration"
	KindThrottle     Kind = "throttle"
	KindBrake        Kind = "brake"
)

// Message is a StateUpdateMessage: a tagged scalar produced by a controller
// or the dynamics integrator and consumed by the state manager.
type Message struct {
	Kind  Kind
	Value float64
}

const occupancyMetricKey = "queue_occupancy"

// Queue is the mutex-guarded state-update queue. Push never blocks;
// TryPop/Drain are used by the single consumer (the state manager).
type Queue struct {
	mu      sync.Mutex
	pending []Message
	metrics telemetry.Metrics
}

// New constructs an empty Queue. metrics may be nil.
func New(metrics telemetry.Metrics) *Queue {
	return &Queue{metrics: metrics}
}

// Push enqueues a message. It never blocks producers.
func (q *Queue) Push(msg Message) {
	q.mu.Lock()
	q.pending = append(q.pending, msg)
	occupancy := len(q.pending)
	q.mu.Unlock()
	if q.metrics != nil {
		q.metrics.Store(occupancyMetricKey, uint64(occupancy))
	}
}

// TryPop removes and returns the oldest pending message, if any.
func (q *Queue) TryPop() (Message, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.pending) == 0 {
		return Message{}, false
	}
	msg := q.pending[0]
	q.pending = q.pending[1:]
	return msg, true
}

// Drain removes and returns every pending message in FIFO order.
func (q *Queue) Drain() []Message {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.pending) == 0 {
		return nil
	}
	out := q.pending
	q.pending = nil
	if q.metrics != nil {
		q.metrics.Store(occupancyMetricKey, 0)
	}
	return out
}

// Len reports the number of pending messages.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}

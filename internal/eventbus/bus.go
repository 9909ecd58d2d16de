// Package eventbus implements the event bus and monitor of spec.md §4.4: a
// bounded FIFO drained by a small worker pool running subscriber callbacks
// sequentially per item, with drop-newest overflow and per-event
// statistics. It is grounded directly on the teacher's logging.Router,
// which uses the identical bounded-channel-plus-worker-pool shape for its
// own sink fan-out.
package eventbus

import (
	"sync"

	"flightsim/internal/telemetry"
)

const (
	defaultCapacity = 1000
	defaultWorkers  = 4
)

// Callback handles a published event. Panics are recovered by the bus and
// logged; a callback may safely re-publish, since the bus mutex is released
// before callbacks run.
type Callback func(name string, payload any)

// Stats captures per-event counters.
type Stats struct {
	Total     uint64
	Processed uint64
	Dropped   uint64
	Timeout   uint64
}

type item struct {
	name    string
	payload any
}

// Bus is the event bus of spec.md §4.4.
type Bus struct {
	mu          sync.Mutex
	subscribers map[string][]Callback
	triggered   map[string]bool
	stats       map[string]*Stats

	queue chan item

	dropped uint64

	workers int
	wg      sync.WaitGroup
	closeMu sync.Mutex
	closed  bool
	logger  telemetry.Logger
	metrics telemetry.Metrics
}

// Option configures a Bus.
type Option func(*Bus)

// WithCapacity overrides the default FIFO capacity of 1000.
func WithCapacity(n int) Option {
	return func(b *Bus) {
		if n > 0 {
			b.queue = make(chan item, n)
		}
	}
}

// WithWorkers overrides the default worker-pool size of 4. Zero starts no
// workers, so published events stay queued; negative values are ignored.
func WithWorkers(n int) Option {
	return func(b *Bus) {
		if n >= 0 {
			b.workers = n
		}
	}
}

// WithLogger attaches a Logger used to report callback faults and drops.
func WithLogger(logger telemetry.Logger) Option {
	return func(b *Bus) { b.logger = logger }
}

// WithMetrics attaches a Metrics sink for the dropped-event counter.
func WithMetrics(metrics telemetry.Metrics) Option {
	return func(b *Bus) { b.metrics = metrics }
}

// New constructs a Bus and starts its worker pool.
func New(opts ...Option) *Bus {
	b := &Bus{
		subscribers: make(map[string][]Callback),
		triggered:   make(map[string]bool),
		stats:       make(map[string]*Stats),
		queue:       make(chan item, defaultCapacity),
		workers:     defaultWorkers,
	}
	for _, opt := range opts {
		opt(b)
	}
	b.start()
	return b
}

func (b *Bus) start() {
	for i := 0; i < b.workers; i++ {
		b.wg.Add(1)
		go b.runWorker()
	}
}

func (b *Bus) runWorker() {
	defer b.wg.Done()
	for it := range b.queue {
		b.dispatch(it)
	}
}

func (b *Bus) dispatch(it item) {
	b.mu.Lock()
	callbacks := append([]Callback(nil), b.subscribers[it.name]...)
	st := b.statLocked(it.name)
	b.mu.Unlock()

	for _, cb := range callbacks {
		b.invoke(cb, it, st)
	}
}

func (b *Bus) invoke(cb Callback, it item, st *Stats) {
	defer func() {
		if r := recover(); r != nil {
			if b.logger != nil {
				b.logger.Printf("eventbus: callback for %q panicked: %v", it.name, r)
			}
		}
	}()
	cb(it.name, it.payload)
	b.mu.Lock()
	st.Processed++
	b.mu.Unlock()
}

func (b *Bus) statLocked(name string) *Stats {
	st, ok := b.stats[name]
	if !ok {
		st = &Stats{}
		b.stats[name] = st
	}
	return st
}

// Subscribe registers a callback for the named event. Multiple callbacks
// may subscribe to the same name; they run in subscription order on each
// worker that drains a matching item.
func (b *Bus) Subscribe(name string, cb Callback) {
	if cb == nil {
		return
	}
	b.mu.Lock()
	b.subscribers[name] = append(b.subscribers[name], cb)
	b.mu.Unlock()
}

// Publish enqueues name/payload for asynchronous dispatch. On overflow the
// event is dropped (drop-newest) and the dropped-event counter increments.
func (b *Bus) Publish(name string, payload any) {
	b.mu.Lock()
	st := b.statLocked(name)
	st.Total++
	b.mu.Unlock()

	select {
	case b.queue <- item{name: name, payload: payload}:
	default:
		b.mu.Lock()
		st.Dropped++
		b.dropped++
		b.mu.Unlock()
		if b.metrics != nil {
			b.metrics.Add("eventbus_dropped_total", 1)
		}
		if b.logger != nil {
			b.logger.Printf("eventbus: queue full, dropping event %q", name)
		}
	}
}

// IsEventTriggered reports whether the named event has been marked
// triggered (latched) by a monitor.
func (b *Bus) IsEventTriggered(name string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.triggered[name]
}

// MarkTriggered latches the named event. It is idempotent: calling it a
// second time is a no-op observable through IsEventTriggered but does not
// re-run subscriber logic (the controller manager's own latch, set on first
// callback invocation, is what prevents action re-execution).
func (b *Bus) MarkTriggered(name string) {
	b.mu.Lock()
	b.triggered[name] = true
	b.mu.Unlock()
}

// Clear resets all subscriptions, latches, and statistics.
func (b *Bus) Clear() {
	b.mu.Lock()
	b.subscribers = make(map[string][]Callback)
	b.triggered = make(map[string]bool)
	b.stats = make(map[string]*Stats)
	b.mu.Unlock()
}

// StatsFor returns a copy of the named event's statistics.
func (b *Bus) StatsFor(name string) Stats {
	b.mu.Lock()
	defer b.mu.Unlock()
	if st, ok := b.stats[name]; ok {
		return *st
	}
	return Stats{}
}

// DroppedEvents reports the total number of events dropped across all
// names, per spec.md §4.4's `dropped_events` counter.
func (b *Bus) DroppedEvents() uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.dropped
}

// Close stops accepting new dispatch and waits for in-flight callbacks to
// finish draining the queue.
func (b *Bus) Close() {
	b.closeMu.Lock()
	defer b.closeMu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	close(b.queue)
	b.wg.Wait()
}

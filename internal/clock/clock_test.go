package clock

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestStartAdvancesOnlyAfterBarrier(t *testing.T) {
	c := New(0.01)
	go c.Start()
	defer c.Stop()

	c.RegisterWorker()

	step := c.WaitForNextStep(0)
	if step != 1 {
		t.Fatalf("expected first published step to be 1, got %d", step)
	}
	if got := c.CurrentTime(); got != 0 {
		t.Fatalf("time should not advance before completion, got %v", got)
	}

	c.NotifyStepCompleted()

	next := c.WaitForNextStep(step)
	if next != 2 {
		t.Fatalf("expected step 2, got %d", next)
	}
	if got := c.CurrentTime(); got < 0.0099 || got > 0.0101 {
		t.Fatalf("time should have advanced by exactly one dt, got %v", got)
	}
}

func TestNoWorkersStillPublishesStepOne(t *testing.T) {
	c := New(0.01)
	go c.Start()
	defer c.Stop()

	// No workers registered yet; step 1 must still be published once.
	deadline := time.After(time.Second)
	for {
		if c.StepCount() == 1 {
			break
		}
		select {
		case <-deadline:
			t.Fatalf("step 1 was never published with zero registered workers")
		default:
			time.Sleep(time.Millisecond)
		}
	}
}

func TestPauseHoldsTickThenResumesByExactlyOneDt(t *testing.T) {
	c := New(0.01)
	go c.Start()
	defer c.Stop()

	c.RegisterWorker()
	c.WaitForNextStep(0)
	c.Pause()
	c.NotifyStepCompleted()

	time.Sleep(20 * time.Millisecond)
	if got := c.CurrentTime(); got != 0 {
		t.Fatalf("paused clock should not advance, got %v", got)
	}

	before := c.CurrentTime()
	c.Resume()

	deadline := time.After(time.Second)
	for c.StepCount() < 2 {
		select {
		case <-deadline:
			t.Fatalf("clock never advanced after resume")
		default:
			time.Sleep(time.Millisecond)
		}
	}
	after := c.CurrentTime()
	if delta := after - before; delta < 0.0099 || delta > 0.0101 {
		t.Fatalf("expected exactly one dt after resume, got delta=%v", delta)
	}
}

func TestStopReleasesAllWaiters(t *testing.T) {
	c := New(0.01)
	go c.Start()

	c.RegisterWorker()
	c.WaitForNextStep(0)

	var wg sync.WaitGroup
	released := atomic.Bool{}
	wg.Add(1)
	go func() {
		defer wg.Done()
		c.WaitForNextStep(9999999)
		released.Store(true)
	}()

	time.Sleep(10 * time.Millisecond)
	c.Stop()
	wg.Wait()

	if !released.Load() {
		t.Fatalf("Stop did not release a waiter blocked on WaitForNextStep")
	}
}

func TestRunWorkerCompletesTicksAndUnregisters(t *testing.T) {
	c := New(0.01)
	go c.Start()

	var ticks atomic.Int64
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		defer close(done)
		RunWorker(ctx, c, nil, "test-worker", func(tick uint64) {
			ticks.Add(1)
		})
	}()

	deadline := time.After(time.Second)
	for ticks.Load() < 3 {
		select {
		case <-deadline:
			t.Fatalf("worker did not complete enough ticks")
		default:
			time.Sleep(time.Millisecond)
		}
	}

	cancel()
	c.Stop()
	<-done
}

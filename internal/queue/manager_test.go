package queue

import (
	"context"
	"testing"
	"time"

	"flightsim/internal/clock"
	"flightsim/internal/state"
)

func TestManagerAppliesMessagesAndBumpsVersion(t *testing.T) {
	c := clock.New(0.01)
	go c.Start()
	defer c.Stop()

	s, _ := state.New(nil)
	q := New(nil)

	var recorded state.Snapshot
	recorder := RecorderFunc(func(tick uint64, snap state.Snapshot) {
		recorded = snap
	})
	m := NewManager(q, s, c, recorder, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go m.Run(ctx)

	q.Push(Message{Kind: KindVelocity, Value: 12.5})
	q.Push(Message{Kind: KindPosition, Value: 3})

	before := s.Version()

	deadline := time.After(time.Second)
	for s.Velocity() != 12.5 {
		select {
		case <-deadline:
			t.Fatalf("velocity was never applied")
		default:
			time.Sleep(time.Millisecond)
		}
	}

	if s.Position() != 3 {
		t.Fatalf("position was not applied, got %v", s.Position())
	}
	if s.Version() <= before {
		t.Fatalf("version did not increase")
	}
	if recorded.Velocity != 12.5 {
		t.Fatalf("recorder did not observe committed snapshot: %+v", recorded)
	}
}

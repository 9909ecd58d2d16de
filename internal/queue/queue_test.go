package queue

import "testing"

func TestPushAndDrainPreservesFIFOOrder(t *testing.T) {
	q := New(nil)
	q.Push(Message{Kind: KindPosition, Value: 1})
	q.Push(Message{Kind: KindVelocity, Value: 2})

	drained := q.Drain()
	if len(drained) != 2 || drained[0].Value != 1 || drained[1].Value != 2 {
		t.Fatalf("unexpected drain order: %+v", drained)
	}
	if q.Len() != 0 {
		t.Fatalf("queue should be empty after drain")
	}
}

func TestTryPopEmptyQueue(t *testing.T) {
	q := New(nil)
	if _, ok := q.TryPop(); ok {
		t.Fatalf("expected TryPop on empty queue to report false")
	}
}

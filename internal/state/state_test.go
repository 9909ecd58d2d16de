package state

import "testing"

func TestSaturatesControls(t *testing.T) {
	s, err := New(nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	s.SetThrottle(1.5)
	s.SetBrake(-0.2)
	if got := s.Throttle(); got != 1 {
		t.Fatalf("throttle not saturated: %v", got)
	}
	if got := s.Brake(); got != 0 {
		t.Fatalf("brake not saturated: %v", got)
	}
}

func TestVelocityClampsToZero(t *testing.T) {
	s, _ := New(nil)
	s.SetVelocity(-3)
	if got := s.Velocity(); got != 0 {
		t.Fatalf("velocity not clamped: %v", got)
	}
}

func TestCommitSnapshotIncrementsVersion(t *testing.T) {
	s, _ := New(nil)
	before := s.Version()
	s.CommitSnapshot(s.Snapshot())
	if got := s.Version(); got != before+1 {
		t.Fatalf("version did not increase by exactly one: before=%d after=%d", before, got)
	}
}

func TestSetFlightModeUpdatesAuthorityAsGroup(t *testing.T) {
	s, _ := New(nil)

	s.SetFlightMode(ModeAuto)
	pt, pb, at, ab := s.Authority()
	if pt || pb || !at || !ab {
		t.Fatalf("auto mode authority wrong: %v %v %v %v", pt, pb, at, ab)
	}

	s.SetFlightMode(ModeManual)
	pt, pb, at, ab = s.Authority()
	if !pt || !pb || at || ab {
		t.Fatalf("manual mode authority wrong: %v %v %v %v", pt, pb, at, ab)
	}

	s.SetFlightMode(ModeSemiAuto)
	pt, pb, at, ab = s.Authority()
	if !pt || !pb || !at || !ab {
		t.Fatalf("semi-auto mode authority wrong: %v %v %v %v", pt, pb, at, ab)
	}
}

func TestHasControlConflict(t *testing.T) {
	s, _ := New(nil)
	s.SetFlightMode(ModeSemiAuto)
	if !s.HasControlConflict() {
		t.Fatalf("semi-auto should report a control conflict")
	}
	s.SetFlightMode(ModeManual)
	if s.HasControlConflict() {
		t.Fatalf("manual mode should not report a control conflict")
	}
}

func TestInitHookFailureAbortsConstruction(t *testing.T) {
	sentinel := errInitTest{}
	_, err := New(func(*State) error { return sentinel })
	if err == nil {
		t.Fatalf("expected construction to fail")
	}
}

type errInitTest struct{}

func (errInitTest) Error() string { return "init failed" }

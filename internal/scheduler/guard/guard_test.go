package guard

import (
	"testing"
	"time"
)

func TestTryBeginBlocksWhileRunning(t *testing.T) {
	g := New()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	if !g.TryBegin(now, 10*time.Minute) {
		t.Fatal("expected first TryBegin to succeed")
	}
	if g.TryBegin(now.Add(time.Hour), 10*time.Minute) {
		t.Fatal("expected TryBegin to fail while a sweep is running")
	}
	g.End()

	if g.LastRun() != now {
		t.Fatalf("expected last run %v, got %v", now, g.LastRun())
	}
}

func TestTryBeginEnforcesMinInterval(t *testing.T) {
	g := New()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	if !g.TryBegin(now, 10*time.Minute) {
		t.Fatal("expected first TryBegin to succeed")
	}
	g.End()

	if g.TryBegin(now.Add(5*time.Minute), 10*time.Minute) {
		t.Fatal("expected TryBegin to fail inside the minimum interval")
	}
	if !g.TryBegin(now.Add(10*time.Minute), 10*time.Minute) {
		t.Fatal("expected TryBegin to succeed once the interval elapsed")
	}
	g.End()
}

func TestFreshGuardIgnoresInterval(t *testing.T) {
	g := New()
	if !g.TryBegin(time.Now(), time.Hour) {
		t.Fatal("expected a fresh guard to allow the first sweep")
	}
	g.End()
}

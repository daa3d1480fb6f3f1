package throttle

import (
	"context"
	"testing"
	"time"
)

// TestAllow verifies that the gate enforces the cooldown window.
func TestAllow(t *testing.T) {
	gate := NewGate(100 * time.Millisecond)

	if !gate.Allow() {
		t.Fatal("first attempt should pass")
	}
	if gate.Allow() {
		t.Fatal("second attempt inside the cooldown should be gated")
	}

	time.Sleep(110 * time.Millisecond)

	if !gate.Allow() {
		t.Fatal("attempt after cooldown should pass")
	}
}

// TestAllowForceDrainsBucket verifies that a forced run still starts a
// cooldown window for subsequent non-forced attempts.
func TestAllowForceDrainsBucket(t *testing.T) {
	gate := NewGate(100 * time.Millisecond)

	gate.AllowForce()

	if gate.Allow() {
		t.Fatal("attempt right after a forced run should be gated")
	}
}

// TestZeroCooldownIsUnlimited verifies the unlimited special case.
func TestZeroCooldownIsUnlimited(t *testing.T) {
	gate := NewGate(0)

	for i := 0; i < 100; i++ {
		if !gate.Allow() {
			t.Fatalf("attempt %d should pass with no cooldown configured", i)
		}
	}
	if gate.Cooldown() != 0 {
		t.Fatalf("expected zero cooldown, got %v", gate.Cooldown())
	}
}

// TestWait verifies that Wait blocks until the cooldown elapses.
func TestWait(t *testing.T) {
	gate := NewGate(100 * time.Millisecond)

	if !gate.Allow() {
		t.Fatal("first attempt should pass")
	}

	start := time.Now()
	if err := gate.Wait(context.Background()); err != nil {
		t.Fatalf("Wait() returned error: %v", err)
	}
	if elapsed := time.Since(start); elapsed < 50*time.Millisecond {
		t.Fatalf("Wait() returned too early: %v", elapsed)
	}
}

// TestWaitRespectsContext verifies that a cancelled context aborts the wait.
func TestWaitRespectsContext(t *testing.T) {
	gate := NewGate(time.Hour)
	gate.Allow()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	if err := gate.Wait(ctx); err == nil {
		t.Fatal("Wait() should fail when the context expires first")
	}
}

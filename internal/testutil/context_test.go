package testutil

import (
	"testing"
	"time"
)

// TestContextBoundedByTimeout verifies the context carries a deadline no
// later than the requested timeout.
func TestContextBoundedByTimeout(t *testing.T) {
	start := time.Now()
	ctx := Context(t, time.Second)
	deadline, ok := ctx.Deadline()
	if !ok {
		t.Fatalf("expected a deadline")
	}
	if deadline.After(start.Add(time.Second + 100*time.Millisecond)) {
		t.Fatalf("deadline %v exceeds timeout", deadline.Sub(start))
	}
}

// TestContextCancelledOnCleanup verifies the context ends with the test that
// created it.
func TestContextCancelledOnCleanup(t *testing.T) {
	var done <-chan struct{}
	t.Run("inner", func(t *testing.T) {
		done = Context(t, 0).Done()
	})
	select {
	case <-done:
	default:
		t.Fatalf("expected context cancelled after subtest cleanup")
	}
}

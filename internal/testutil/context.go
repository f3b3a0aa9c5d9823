package testutil

import (
	"context"
	"testing"
	"time"
)

// DefaultTimeout bounds tests that talk to fake endpoints or DuckDB.
const DefaultTimeout = 5 * time.Second

// deadliner is implemented by *testing.T but not by testing.TB.
type deadliner interface {
	Deadline() (time.Time, bool)
}

// Context returns a context cancelled when the test ends or timeout passes,
// whichever is first. A non-positive timeout means DefaultTimeout.
func Context(t testing.TB, timeout time.Duration) context.Context {
	t.Helper()
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if d, ok := t.(deadliner); ok {
		if deadline, set := d.Deadline(); set {
			if remaining := time.Until(deadline) - time.Second; remaining > 0 && remaining < timeout {
				timeout = remaining
			}
		}
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	t.Cleanup(cancel)
	return ctx
}

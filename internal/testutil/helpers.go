package testutil

import (
	"testing"
	"time"
)

// Ptr returns a pointer to v, for optional struct fields in test literals.
func Ptr[T any](v T) *T { return &v }

// WaitFor polls fn every 10ms until it returns true or timeout elapses.
func WaitFor(t *testing.T, timeout time.Duration, fn func() bool) bool {
	t.Helper()
	ticker := time.NewTicker(10 * time.Millisecond)
	defer ticker.Stop()
	deadline := time.NewTimer(timeout)
	defer deadline.Stop()
	for {
		if fn() {
			return true
		}
		select {
		case <-ticker.C:
		case <-deadline.C:
			return fn()
		}
	}
}

package app_test

import (
	"testing"
	"time"
)

// waitState reads updates until pred holds for one of them.
func waitState[S any](t *testing.T, ch <-chan S, pred func(S) bool) S {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case st, ok := <-ch:
			if !ok {
				t.Fatalf("state stream closed")
			}
			if pred(st) {
				return st
			}
		case <-deadline:
			t.Fatalf("timed out waiting for state")
		}
	}
}

// eventually polls cond for up to two seconds.
func eventually(t *testing.T, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("condition not met: %s", msg)
}

package core

import (
	"context"
	"testing"
	"time"

	"go.uber.org/goleak"
)

func TestStartReaper_StopsOnCancel(t *testing.T) {
	defer goleak.VerifyNone(t)

	s, _, _ := newTestService(t)
	s.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	openLTL(t, s)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.StartReaper(ctx, 5*time.Millisecond)
		close(done)
	}()

	deadline := time.After(2 * time.Second)
	for s.SessionCount() > 0 {
		select {
		case <-deadline:
			t.Fatal("reaper did not drop the idle session")
		case <-time.After(5 * time.Millisecond):
		}
	}

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("reaper did not stop after cancel")
	}
}

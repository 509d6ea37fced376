package frame

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestZeroIntervalFlushesEveryRequest(t *testing.T) {
	var n int32
	c := New(0, func() { atomic.AddInt32(&n, 1) })

	for i := 0; i < 5; i++ {
		c.Request()
	}
	if got := atomic.LoadInt32(&n); got != 5 {
		t.Fatalf("flushed %d times, want 5", got)
	}
}

func TestBurstCoalescesToLeadingAndTrailingFlush(t *testing.T) {
	var n int32
	c := New(30*time.Millisecond, func() { atomic.AddInt32(&n, 1) })

	for i := 0; i < 20; i++ {
		c.Request()
	}

	// Leading flush only, so far.
	if got := atomic.LoadInt32(&n); got != 1 {
		t.Fatalf("flushed %d times during burst, want 1", got)
	}

	// The trailing flush arrives within one tick.
	deadline := time.Now().Add(500 * time.Millisecond)
	for atomic.LoadInt32(&n) < 2 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if got := atomic.LoadInt32(&n); got != 2 {
		t.Fatalf("flushed %d times after burst, want 2", got)
	}
}

func TestFlushCommitsPendingImmediately(t *testing.T) {
	var n int32
	c := New(time.Hour, func() { atomic.AddInt32(&n, 1) })

	c.Request() // leading flush
	c.Request() // pending
	c.Flush()

	if got := atomic.LoadInt32(&n); got != 2 {
		t.Fatalf("flushed %d times, want 2", got)
	}

	// Nothing pending: Flush is a no-op.
	c.Flush()
	if got := atomic.LoadInt32(&n); got != 2 {
		t.Fatalf("flushed %d times after idle Flush, want 2", got)
	}
}

func TestStopDiscardsPending(t *testing.T) {
	var n int32
	c := New(time.Hour, func() { atomic.AddInt32(&n, 1) })

	c.Request()
	c.Request()
	c.Stop()

	if got := atomic.LoadInt32(&n); got != 1 {
		t.Fatalf("flushed %d times, want 1 (pending discarded)", got)
	}
}

package scheduler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddTicker_Fires(t *testing.T) {
	s := New()
	defer s.Stop()

	var count int32
	s.AddTicker("tick", 20*time.Millisecond, func(context.Context) {
		atomic.AddInt32(&count, 1)
	})

	time.Sleep(120 * time.Millisecond)
	assert.GreaterOrEqual(t, atomic.LoadInt32(&count), int32(3))
}

func TestAddTicker_NeverOverlaps(t *testing.T) {
	s := New()
	defer s.Stop()

	var running, maxRunning, runs int32
	s.AddTicker("slow", 5*time.Millisecond, func(context.Context) {
		n := atomic.AddInt32(&running, 1)
		for {
			m := atomic.LoadInt32(&maxRunning)
			if n <= m || atomic.CompareAndSwapInt32(&maxRunning, m, n) {
				break
			}
		}
		time.Sleep(30 * time.Millisecond)
		atomic.AddInt32(&running, -1)
		atomic.AddInt32(&runs, 1)
	})

	time.Sleep(150 * time.Millisecond)
	assert.Equal(t, int32(1), atomic.LoadInt32(&maxRunning))
	assert.GreaterOrEqual(t, atomic.LoadInt32(&runs), int32(2))
}

func TestAddTicker_Replaces(t *testing.T) {
	s := New()
	defer s.Stop()

	var count1, count2 int32
	s.AddTicker("task", 20*time.Millisecond, func(context.Context) { atomic.AddInt32(&count1, 1) })
	time.Sleep(30 * time.Millisecond)
	s.AddTicker("task", 20*time.Millisecond, func(context.Context) { atomic.AddInt32(&count2, 1) })
	time.Sleep(80 * time.Millisecond)

	snap1 := atomic.LoadInt32(&count1)
	time.Sleep(40 * time.Millisecond)
	assert.Equal(t, snap1, atomic.LoadInt32(&count1), "old ticker must stop after replacement")
	assert.Positive(t, atomic.LoadInt32(&count2))
}

func TestAddDelay_FiresOnce(t *testing.T) {
	s := New()
	defer s.Stop()

	var count int32
	s.AddDelay("once", 30*time.Millisecond, func(context.Context) {
		atomic.AddInt32(&count, 1)
	})

	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, int32(1), atomic.LoadInt32(&count))
}

func TestStop_CancelsRunningTask(t *testing.T) {
	s := New()

	started := make(chan struct{})
	cancelled := make(chan struct{})
	s.AddTicker("long", 10*time.Millisecond, func(ctx context.Context) {
		select {
		case started <- struct{}{}:
		default:
			return
		}
		<-ctx.Done()
		close(cancelled)
	})

	select {
	case <-started:
	case <-time.After(time.Second):
		t.Fatal("task never started")
	}
	s.Stop()
	s.Stop()

	select {
	case <-cancelled:
	case <-time.After(time.Second):
		t.Fatal("task context was not cancelled")
	}
}

func TestAddDelay_FinishedTimerKeepsReplacement(t *testing.T) {
	s := New()
	defer s.Stop()

	fired := make(chan struct{})
	release := make(chan struct{})
	s.AddDelay("sweep", time.Millisecond, func(context.Context) {
		close(fired)
		<-release
	})
	<-fired

	var second int32
	s.AddDelay("sweep", time.Hour, func(context.Context) { atomic.AddInt32(&second, 1) })
	close(release)

	require.Eventually(t, func() bool {
		s.mu.Lock()
		defer s.mu.Unlock()
		_, ok := s.timers["sweep"]
		return ok
	}, 100*time.Millisecond, 5*time.Millisecond)
	time.Sleep(20 * time.Millisecond)

	s.mu.Lock()
	_, ok := s.timers["sweep"]
	s.mu.Unlock()
	assert.True(t, ok, "the first timer must not unregister its replacement")
	assert.Zero(t, atomic.LoadInt32(&second))
}

func TestAddDelay_Replaces(t *testing.T) {
	s := New()
	defer s.Stop()

	var first, second int32
	s.AddDelay("once", 30*time.Millisecond, func(context.Context) { atomic.AddInt32(&first, 1) })
	s.AddDelay("once", 30*time.Millisecond, func(context.Context) { atomic.AddInt32(&second, 1) })

	time.Sleep(100 * time.Millisecond)
	assert.Zero(t, atomic.LoadInt32(&first))
	assert.Equal(t, int32(1), atomic.LoadInt32(&second))
}

func TestTicker_PanicRecovery(t *testing.T) {
	s := New()
	defer s.Stop()

	var runs int32
	s.AddTicker("panic", 20*time.Millisecond, func(context.Context) {
		atomic.AddInt32(&runs, 1)
		panic("oops")
	})

	time.Sleep(90 * time.Millisecond)
	assert.GreaterOrEqual(t, atomic.LoadInt32(&runs), int32(2), "ticker keeps running after a panic")
}

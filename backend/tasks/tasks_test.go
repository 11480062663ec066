package tasks

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFrameLoop_RunsUntilCancelled(t *testing.T) {
	var frames atomic.Int64
	loop := StartFrameLoop(context.Background(), time.Millisecond, func(int) { frames.Add(1) })

	require.Eventually(t, func() bool { return frames.Load() >= 3 }, time.Second, time.Millisecond)
	loop.Cancel()

	stopped := frames.Load()
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, stopped, frames.Load())

	// second cancel is a no-op
	loop.Cancel()
}

func TestFrameLoop_EndsWithContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	loop := StartFrameLoop(ctx, time.Millisecond, func(int) {})
	cancel()

	select {
	case <-loop.Done():
	case <-time.After(time.Second):
		t.Fatal("loop did not exit after context cancel")
	}
}

func TestFrameLoop_FrameCounter(t *testing.T) {
	seen := make(chan int, 8)
	loop := StartFrameLoop(context.Background(), time.Millisecond, func(frame int) {
		select {
		case seen <- frame:
		default:
		}
	})
	defer loop.Cancel()

	assert.Equal(t, 0, <-seen)
	assert.Equal(t, 1, <-seen)
}

func TestScheduler_EveryAndCancel(t *testing.T) {
	s := NewScheduler()
	defer s.Stop()

	h := s.Every(time.Second, func() {})
	assert.Equal(t, 1, s.Len())

	h.Cancel()
	h.Cancel()
	assert.Equal(t, 0, s.Len())
}

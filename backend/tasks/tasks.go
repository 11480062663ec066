// Package tasks runs repeating work that its owner must be able to cancel:
// second-granularity interval jobs on a shared cron scheduler and
// per-frame loops on their own goroutine.
package tasks

import (
	"context"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// Handle cancels a scheduled task. Cancel is idempotent.
type Handle interface {
	Cancel()
}

// Scheduler owns a cron runner for interval jobs.
// 功能: 秒级周期任务，取消即从 cron 中移除。
type Scheduler struct {
	cron *cron.Cron
	once sync.Once
}

// NewScheduler starts an empty scheduler.
func NewScheduler() *Scheduler {
	c := cron.New(cron.WithChain(cron.Recover(cron.DefaultLogger)))
	c.Start()
	return &Scheduler{cron: c}
}

// Every runs fn each interval until the returned handle is cancelled.
// cron rounds interval down to whole seconds, with a one second minimum.
func (s *Scheduler) Every(interval time.Duration, fn func()) Handle {
	id := s.cron.Schedule(cron.Every(interval), cron.FuncJob(fn))
	return &entry{cron: s.cron, id: id}
}

// Len reports how many jobs are currently scheduled.
func (s *Scheduler) Len() int {
	return len(s.cron.Entries())
}

// Stop halts the scheduler and waits for running jobs.
func (s *Scheduler) Stop() {
	s.once.Do(func() {
		<-s.cron.Stop().Done()
	})
}

type entry struct {
	cron *cron.Cron
	id   cron.EntryID
	once sync.Once
}

func (e *entry) Cancel() {
	e.once.Do(func() { e.cron.Remove(e.id) })
}

// DefaultFrameInterval is roughly one display refresh.
const DefaultFrameInterval = time.Second / 60

// FrameLoop calls a frame callback on a fixed tick until cancelled.
type FrameLoop struct {
	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once
}

// StartFrameLoop begins calling fn every interval. The frame counter starts
// at zero. The loop also ends when ctx is done.
func StartFrameLoop(ctx context.Context, interval time.Duration, fn func(frame int)) *FrameLoop {
	if interval <= 0 {
		interval = DefaultFrameInterval
	}
	ctx, cancel := context.WithCancel(ctx)
	l := &FrameLoop{cancel: cancel, done: make(chan struct{})}

	go func() {
		defer close(l.done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for frame := 0; ; frame++ {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				fn(frame)
			}
		}
	}()
	return l
}

// Cancel stops the loop and waits until no frame callback is running.
// It must not be called from inside the frame callback.
func (l *FrameLoop) Cancel() {
	l.once.Do(l.cancel)
	<-l.done
}

// Done is closed once the loop goroutine has exited.
func (l *FrameLoop) Done() <-chan struct{} {
	return l.done
}

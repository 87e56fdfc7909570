package event

import (
	"context"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
)

type (
	// TaskKey identifies a scheduled task by the message that spawned it.
	TaskKey struct {
		ChatID    int64
		MessageID int
	}

	// Task is an owned handle to a pending deferred operation. The owner
	// may cancel it before it fires; a fired or cancelled task is inert.
	Task struct {
		key       TaskKey
		timer     *time.Timer
		scheduler *Scheduler

		mu        sync.Mutex
		cancelled bool
		fired     bool
	}

	// Scheduler runs deferred tasks on recovered goroutines. Tasks always
	// attempt to run to completion once fired; failures inside the task
	// body are the body's own problem and are discarded.
	Scheduler struct {
		mu      sync.Mutex
		tasks   map[TaskKey]*Task
		wg      sync.WaitGroup
		cancel  context.CancelFunc
		runCtx  context.Context
		started bool
	}
)

func NewScheduler() *Scheduler {
	return &Scheduler{
		tasks: make(map[TaskKey]*Task),
	}
}

func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return nil
	}
	s.runCtx, s.cancel = context.WithCancel(context.WithoutCancel(ctx))
	s.started = true
	return nil
}

func (s *Scheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return nil
	}
	s.started = false
	for key, task := range s.tasks {
		task.Cancel()
		delete(s.tasks, key)
	}
	cancel := s.cancel
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		s.wg.Wait()
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-done:
		return nil
	}
}

// Schedule registers fn to run once after delay. The returned handle is
// owned by the caller; scheduling twice for the same key replaces the
// pending task.
func (s *Scheduler) Schedule(key TaskKey, delay time.Duration, fn func(ctx context.Context)) *Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.started {
		log.WithField("key", key).Debug("scheduler is stopped, dropping task")
		return &Task{key: key, cancelled: true}
	}

	if previous, ok := s.tasks[key]; ok {
		previous.Cancel()
	}

	task := &Task{key: key, scheduler: s}
	s.tasks[key] = task
	s.wg.Add(1)
	task.timer = time.AfterFunc(delay, func() {
		defer s.wg.Done()
		if !task.markFired() {
			return
		}
		s.forget(key)
		defer func() {
			if r := recover(); r != nil {
				log.WithField("key", key).Errorf("deferred task panics with message: %s", r)
			}
		}()
		fn(s.runCtx)
	})
	return task
}

func (s *Scheduler) forget(key TaskKey) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tasks, key)
}

// Cancel stops the task if it has not fired yet.
func (t *Task) Cancel() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.cancelled || t.fired {
		return
	}
	t.cancelled = true
	if t.timer != nil && t.timer.Stop() && t.scheduler != nil {
		t.scheduler.wg.Done()
	}
}

// Cancelled reports whether the task was cancelled before firing.
func (t *Task) Cancelled() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.cancelled
}

func (t *Task) markFired() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.cancelled {
		return false
	}
	t.fired = true
	return true
}

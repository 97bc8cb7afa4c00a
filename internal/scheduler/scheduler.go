// Package scheduler provides a cooperative per-frame callback queue and a
// viewport that publishes size changes. Together they stand in for the
// display-refresh and resize facilities a host environment offers.
package scheduler

import (
	"context"
	"sync"
	"time"
)

// Handle identifies a queued frame callback. The zero Handle is never issued.
type Handle uint64

// Scheduler queues frame callbacks and fires them on Pump. Callbacks run on
// the goroutine calling Pump, one at a time in request order.
type Scheduler struct {
	mu     sync.Mutex
	next   Handle
	order  []Handle
	queued map[Handle]func()
	tasks  []func()
}

func New() *Scheduler {
	return &Scheduler{queued: make(map[Handle]func())}
}

// RequestFrame queues fn for the next pump.
func (s *Scheduler) RequestFrame(fn func()) Handle {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.next++
	h := s.next
	s.queued[h] = fn
	s.order = append(s.order, h)
	return h
}

// Cancel drops a queued callback. Cancelling a fired or unknown handle is a
// no-op.
func (s *Scheduler) Cancel(h Handle) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.queued, h)
}

// Post queues a task to run at the start of the next pump, before any frame
// callback. It is safe to call from any goroutine.
func (s *Scheduler) Post(fn func()) {
	s.mu.Lock()
	s.tasks = append(s.tasks, fn)
	s.mu.Unlock()
}

func (s *Scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.queued)
}

// Pump runs posted tasks then every frame callback queued before the call.
// Callbacks requested while pumping wait for the next pump. It returns the
// number of frame callbacks fired.
func (s *Scheduler) Pump() int {
	s.mu.Lock()
	tasks := s.tasks
	s.tasks = nil
	s.mu.Unlock()
	for _, t := range tasks {
		t()
	}

	s.mu.Lock()
	batch := s.order
	s.order = nil
	s.mu.Unlock()

	fired := 0
	for _, h := range batch {
		s.mu.Lock()
		fn, ok := s.queued[h]
		delete(s.queued, h)
		s.mu.Unlock()
		if !ok {
			continue
		}
		fn()
		fired++
	}
	return fired
}

// Run pumps at fps until ctx is done. afterPump, when set, is called after
// every pump with the number of callbacks fired; a non-nil error stops the
// loop and is returned.
func (s *Scheduler) Run(ctx context.Context, fps int, afterPump func(fired int) error) error {
	if fps <= 0 {
		fps = 60
	}
	ticker := time.NewTicker(time.Second / time.Duration(fps))
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			fired := s.Pump()
			if afterPump != nil {
				if err := afterPump(fired); err != nil {
					return err
				}
			}
		}
	}
}

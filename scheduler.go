// Copyright 2025 The Streambed Authors
// SPDX-License-Identifier: Apache-2.0

package rx

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/samber/lo"
)

// Scheduler is a strategy for where and when a unit of work runs. Operators
// are scheduler-agnostic by default and run on whatever goroutine calls
// them; a Scheduler enters the picture through ObserveOn, SubscribeOn, the
// scheduled generators (StartOn, FromSliceOn) and direct use.
//
// Schedule never blocks the caller (except on Immediate, which runs the work
// in place, and on a TaskPool whose queue of 1024 pending units is full): the
// work unit is handed off and a Disposable is returned so a
// unit that has not started yet can be cancelled. Cancellation of running
// work is cooperative.
type Scheduler interface {
	// Schedule runs work once, according to the Scheduler's strategy.
	Schedule(work func()) Disposable

	// ScheduleRecursive runs work, handing it a self func that reschedules
	// the same step when called. Recursion happens through the Scheduler
	// rather than a Go loop, so cancellation is observed between steps.
	ScheduleRecursive(work func(self func())) Disposable
}

var (
	_ Scheduler = immediateScheduler{}
	_ Scheduler = newThreadScheduler{}
	_ Scheduler = (*TaskPoolScheduler)(nil)
	_ Scheduler = (*TrampolineScheduler)(nil)
)

func runRecovered(work func()) {
	lo.TryCatchWithErrorValue(
		func() error {
			work()
			return nil
		},
		func(r any) {
			OnUnhandledError(context.Background(), recoveredToError(r))
		},
	)
}

/************************
 *  Immediate scheduler *
 ************************/

type immediateScheduler struct{}

// Immediate returns a Scheduler that runs work synchronously on the calling
// goroutine, before Schedule returns. ScheduleRecursive runs each step nested
// inside the previous step's self call, so the Go stack grows with every step,
// and it returns the handle only after work stops calling self: the work
// itself cannot cancel the recursion through that handle.
func Immediate() Scheduler {
	return immediateScheduler{}
}

func (immediateScheduler) Schedule(work func()) Disposable {
	handle := NewDisposable(nil)
	work()

	return handle
}

func (immediateScheduler) ScheduleRecursive(work func(self func())) Disposable {
	handle := NewDisposable(nil)

	var step func()
	step = func() {
		if handle.IsDisposed() {
			return
		}

		work(step)
	}

	step()

	return handle
}

/************************
 *  New-thread scheduler *
 ************************/

type newThreadScheduler struct{}

// NewThread returns a Scheduler that spawns a dedicated goroutine per work
// unit: no queueing, no reuse, and therefore no ordering between units.
func NewThread() Scheduler {
	return newThreadScheduler{}
}

func (newThreadScheduler) Schedule(work func()) Disposable {
	handle := NewDisposable(nil)

	go runRecovered(func() {
		if !handle.IsDisposed() {
			work()
		}
	})

	return handle
}

func (newThreadScheduler) ScheduleRecursive(work func(self func())) Disposable {
	handle := NewDisposable(nil)

	var step func()
	step = func() {
		go runRecovered(func() {
			if !handle.IsDisposed() {
				work(step)
			}
		})
	}

	step()

	return handle
}

/************************
 *  Task-pool scheduler *
 ************************/

// TaskPoolScheduler dispatches work units onto a fixed pool of worker
// goroutines fed by one shared FIFO queue. With a single worker the pool
// preserves submission order; with more, units run concurrently.
type TaskPoolScheduler struct {
	tasks chan func()
}

// TaskPool returns a Scheduler backed by size worker goroutines. The workers
// run until Stop is called.
func TaskPool(size int) *TaskPoolScheduler {
	if size < 1 {
		panic(ErrBadPoolSize)
	}

	s := &TaskPoolScheduler{tasks: make(chan func(), 1024)}

	for i := 0; i < size; i++ {
		go s.worker()
	}

	return s
}

func (s *TaskPoolScheduler) worker() {
	for task := range s.tasks {
		runRecovered(task)
	}
}

// Stop closes the queue: workers finish the work already submitted, then
// exit. Scheduling onto a stopped pool panics, so a pool must only be
// stopped once nothing submits to it anymore.
func (s *TaskPoolScheduler) Stop() {
	close(s.tasks)
}

func (s *TaskPoolScheduler) Schedule(work func()) Disposable {
	handle := NewDisposable(nil)

	s.tasks <- func() {
		if !handle.IsDisposed() {
			work()
		}
	}

	return handle
}

func (s *TaskPoolScheduler) ScheduleRecursive(work func(self func())) Disposable {
	handle := NewDisposable(nil)

	var step func()
	step = func() {
		if handle.IsDisposed() {
			return
		}

		work(func() { s.tasks <- step })
	}

	s.tasks <- step

	return handle
}

/*************************
 *  Trampoline scheduler *
 *************************/

// TrampolineScheduler is a cooperative, current-thread scheduler: work is
// appended to a FIFO queue and runs only when Work is called, one unit at a
// time, on the calling goroutine. It is the basis for deterministic tests:
// schedule, then drain the queue with Work.
type TrampolineScheduler struct {
	mu      sync.Mutex
	queue   []func()
	running int32
}

// Trampoline returns an empty TrampolineScheduler. Scheduling from any
// goroutine is safe; the queue drains only where Work is called.
func Trampoline() *TrampolineScheduler {
	return &TrampolineScheduler{}
}

func (s *TrampolineScheduler) enqueue(task func()) {
	s.mu.Lock()
	s.queue = append(s.queue, task)
	s.mu.Unlock()
}

func (s *TrampolineScheduler) Schedule(work func()) Disposable {
	handle := NewDisposable(nil)

	s.enqueue(func() {
		if !handle.IsDisposed() {
			work()
		}
	})

	return handle
}

func (s *TrampolineScheduler) ScheduleRecursive(work func(self func())) Disposable {
	handle := NewDisposable(nil)

	var step func()
	step = func() {
		if handle.IsDisposed() {
			return
		}

		work(func() { s.enqueue(step) })
	}

	s.enqueue(step)

	return handle
}

// Work drains the queue in FIFO order on the calling goroutine, including
// anything the drained units themselves enqueue, and returns the number of
// units run. A reentrant call from inside a running unit is a no-op; the
// outer call keeps draining.
func (s *TrampolineScheduler) Work() int {
	if !atomic.CompareAndSwapInt32(&s.running, 0, 1) {
		return 0
	}
	defer atomic.StoreInt32(&s.running, 0)

	ran := 0

	for {
		s.mu.Lock()
		if len(s.queue) == 0 {
			s.mu.Unlock()
			break
		}

		task := s.queue[0]
		s.queue = s.queue[1:]
		s.mu.Unlock()

		task()
		ran++
	}

	return ran
}

// Pending reports how many work units are queued.
func (s *TrampolineScheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.queue)
}

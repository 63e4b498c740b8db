// Copyright 2025 The Streambed Authors
// SPDX-License-Identifier: Apache-2.0

package rx

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/samber/lo"
)

const (
	stateActive int32 = iota
	stateTerminated
)

// subscriber is the protocol gate placed between an operator (or source) and
// the Observer handed to Subscribe. It provides the guarantees the grammar
// demands, so neither side has to:
//
//   - delivery is serialized: concurrent producers take turns on the gate
//     mutex, a well-behaved downstream never sees overlapping calls;
//   - terminal events are exclusive and final: after one Error or Complete,
//     every further event is dropped (reported to OnDroppedEvent);
//   - a panic in the downstream Next callback becomes a downstream Error,
//     and the upstream is unsubscribed;
//   - disposal runs the attached teardowns exactly once, in reverse
//     attachment order, and may be triggered from any goroutine, including
//     reentrantly from inside Next.
type subscriber[T any] struct {
	ctx         context.Context
	gate        sync.Mutex
	state       int32
	destination Observer[T]
	cleanup     *CompositeDisposable
	disposed    int32
}

func newSubscriber[T any](ctx context.Context, destination Observer[T]) *subscriber[T] {
	return &subscriber[T]{
		ctx:         ctx,
		destination: destination,
		cleanup:     NewCompositeDisposable(),
	}
}

func (s *subscriber[T]) Next(value T) {
	if !s.active() {
		OnDroppedEvent(s.ctx, KindNext)
		return
	}

	var recovered any

	panicked := false

	s.gate.Lock()
	if s.active() {
		lo.TryCatchWithErrorValue(
			func() error {
				s.destination.Next(value)
				return nil
			},
			func(r any) {
				panicked = true
				recovered = r
			},
		)
	} else {
		OnDroppedEvent(s.ctx, KindNext)
	}
	s.gate.Unlock()

	if panicked {
		s.Error(recoveredToError(recovered))
	}
}

func (s *subscriber[T]) Error(err error) {
	if atomic.LoadInt32(&s.disposed) == 1 || !atomic.CompareAndSwapInt32(&s.state, stateActive, stateTerminated) {
		OnDroppedEvent(s.ctx, KindError)
		return
	}

	s.gate.Lock()
	lo.TryCatchWithErrorValue(
		func() error {
			s.destination.Error(err)
			return nil
		},
		func(r any) {
			// The grammar is already locked; all that is left is reporting.
			OnUnhandledError(s.ctx, recoveredToError(r))
		},
	)
	s.gate.Unlock()

	s.Dispose()
}

func (s *subscriber[T]) Complete() {
	if atomic.LoadInt32(&s.disposed) == 1 || !atomic.CompareAndSwapInt32(&s.state, stateActive, stateTerminated) {
		OnDroppedEvent(s.ctx, KindComplete)
		return
	}

	s.gate.Lock()
	lo.TryCatchWithErrorValue(
		func() error {
			s.destination.Complete()
			return nil
		},
		func(r any) {
			OnUnhandledError(s.ctx, recoveredToError(r))
		},
	)
	s.gate.Unlock()

	s.Dispose()
}

func (s *subscriber[T]) active() bool {
	return atomic.LoadInt32(&s.state) == stateActive && atomic.LoadInt32(&s.disposed) == 0
}

// add attaches an upstream handle to tear down when this subscription ends.
// Attaching to an ended subscription disposes the handle immediately.
func (s *subscriber[T]) add(d Disposable) {
	s.cleanup.Add(d)
}

func (s *subscriber[T]) addTeardown(teardown Teardown) {
	if teardown != nil {
		s.cleanup.AddTeardown(teardown)
	}
}

// Dispose does not take the gate: it must be callable from inside a Next
// delivery without self-deadlock. An in-flight event may still be delivered
// once while disposal is racing it; everything after is dropped.
func (s *subscriber[T]) Dispose() {
	if !atomic.CompareAndSwapInt32(&s.disposed, 0, 1) {
		return
	}

	s.cleanup.Dispose()
}

func (s *subscriber[T]) IsDisposed() bool {
	return atomic.LoadInt32(&s.disposed) == 1
}

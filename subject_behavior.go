// Copyright 2025 The Streambed Authors
// SPDX-License-Identifier: Apache-2.0

package rx

import (
	"context"
	"sync"
)

// NewBehaviorSubject returns a Subject that remembers the latest value: a
// new subscriber immediately receives the most recent value (the initial one
// if nothing has been pushed yet), then the live stream.
func NewBehaviorSubject[T any](initial T) Subject[T] {
	return &behaviorSubject[T]{
		latest: initial,
		slots:  map[int]Observer[T]{},
	}
}

type behaviorSubject[T any] struct {
	mu       sync.Mutex
	latest   T
	slots    map[int]Observer[T]
	nextSlot int
	terminal *Notification[T]
}

func (s *behaviorSubject[T]) Subscribe(ctx context.Context, destination Observer[T]) Disposable {
	sink := newSubscriber(ctx, destination)

	s.mu.Lock()
	if s.terminal != nil {
		terminal := *s.terminal
		s.mu.Unlock()
		terminal.Send(sink)

		return sink
	}

	latest := s.latest
	slot := s.nextSlot
	s.nextSlot++
	s.slots[slot] = sink
	s.mu.Unlock()

	sink.addTeardown(func() {
		s.mu.Lock()
		delete(s.slots, slot)
		s.mu.Unlock()
	})

	sink.Next(latest)

	return sink
}

func (s *behaviorSubject[T]) Next(value T) {
	s.mu.Lock()
	if s.terminal != nil {
		s.mu.Unlock()
		OnDroppedEvent(context.Background(), KindNext)

		return
	}

	s.latest = value

	observers := make([]Observer[T], 0, len(s.slots))
	for _, o := range s.slots {
		observers = append(observers, o)
	}
	s.mu.Unlock()

	for _, o := range observers {
		o.Next(value)
	}
}

func (s *behaviorSubject[T]) Error(err error) {
	s.terminate(ErrorNotification[T](err))
}

func (s *behaviorSubject[T]) Complete() {
	s.terminate(CompleteNotification[T]())
}

func (s *behaviorSubject[T]) terminate(terminal Notification[T]) {
	s.mu.Lock()
	if s.terminal != nil {
		s.mu.Unlock()
		OnDroppedEvent(context.Background(), terminal.Kind)

		return
	}

	s.terminal = &terminal

	observers := make([]Observer[T], 0, len(s.slots))
	for _, o := range s.slots {
		observers = append(observers, o)
	}
	s.slots = map[int]Observer[T]{}
	s.mu.Unlock()

	for _, o := range observers {
		terminal.Send(o)
	}
}

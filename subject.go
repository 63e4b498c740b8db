// Copyright 2025 The Streambed Authors
// SPDX-License-Identifier: Apache-2.0

package rx

import (
	"context"
	"sync"
)

// Subject is a multicast hub: an Observer for its inputs and an Observable
// for its outputs. Events pushed into it are fanned out to every current
// subscriber. After a terminal event the Subject is sealed: further inputs
// are dropped, and later subscribers immediately receive the same terminal
// event.
type Subject[T any] interface {
	Observer[T]
	Observable[T]
}

// NewSubject returns a plain multicast Subject with no replay: a subscriber
// only sees values pushed after it subscribed.
func NewSubject[T any]() Subject[T] {
	return &publishSubject[T]{slots: map[int]Observer[T]{}}
}

type publishSubject[T any] struct {
	mu       sync.Mutex
	slots    map[int]Observer[T]
	nextSlot int
	terminal *Notification[T]
}

func (s *publishSubject[T]) Subscribe(ctx context.Context, destination Observer[T]) Disposable {
	sink := newSubscriber(ctx, destination)

	s.mu.Lock()
	if s.terminal != nil {
		terminal := *s.terminal
		s.mu.Unlock()
		terminal.Send(sink)

		return sink
	}

	slot := s.nextSlot
	s.nextSlot++
	s.slots[slot] = sink
	s.mu.Unlock()

	sink.addTeardown(func() {
		s.mu.Lock()
		delete(s.slots, slot)
		s.mu.Unlock()
	})

	return sink
}

// snapshot returns the current subscribers. Dispatch iterates the snapshot
// outside the lock: subscribers added during a broadcast join from the next
// event on, removed ones are silenced by their own gate.
func (s *publishSubject[T]) snapshot() []Observer[T] {
	observers := make([]Observer[T], 0, len(s.slots))
	for _, o := range s.slots {
		observers = append(observers, o)
	}

	return observers
}

func (s *publishSubject[T]) Next(value T) {
	s.mu.Lock()
	if s.terminal != nil {
		s.mu.Unlock()
		OnDroppedEvent(context.Background(), KindNext)

		return
	}
	observers := s.snapshot()
	s.mu.Unlock()

	for _, o := range observers {
		o.Next(value)
	}
}

func (s *publishSubject[T]) Error(err error) {
	s.terminate(ErrorNotification[T](err))
}

func (s *publishSubject[T]) Complete() {
	s.terminate(CompleteNotification[T]())
}

func (s *publishSubject[T]) terminate(terminal Notification[T]) {
	s.mu.Lock()
	if s.terminal != nil {
		s.mu.Unlock()
		OnDroppedEvent(context.Background(), terminal.Kind)

		return
	}

	s.terminal = &terminal
	observers := s.snapshot()
	s.slots = map[int]Observer[T]{}
	s.mu.Unlock()

	for _, o := range observers {
		terminal.Send(o)
	}
}

// Copyright 2025 The Streambed Authors
// SPDX-License-Identifier: Apache-2.0

package rx

import (
	"context"
	"sync"
	"time"
)

// NewReplaySubject returns a Subject recording the last bufferSize values.
// A new subscriber first receives the recorded values, in order, then the
// live stream. bufferSize <= 0 means unbounded.
func NewReplaySubject[T any](bufferSize int) Subject[T] {
	return &replaySubject[T]{
		maxSize: bufferSize,
		slots:   map[int]Observer[T]{},
	}
}

// NewReplaySubjectWithWindow returns a ReplaySubject bounded by both a
// buffer size and a time window: a recorded value is replayed only while it
// is younger than window. Age is measured on the monotonic clock carried by
// time.Time, so wall-clock adjustments do not affect eligibility.
// bufferSize <= 0 means no size bound; window <= 0 means no age bound.
func NewReplaySubjectWithWindow[T any](bufferSize int, window time.Duration) Subject[T] {
	return &replaySubject[T]{
		maxSize: bufferSize,
		window:  window,
		slots:   map[int]Observer[T]{},
	}
}

type replayEntry[T any] struct {
	seq   int64
	at    time.Time
	value T
}

type replaySubject[T any] struct {
	mu       sync.Mutex
	maxSize  int
	window   time.Duration
	seq      int64
	entries  []replayEntry[T]
	slots    map[int]Observer[T]
	nextSlot int
	terminal *Notification[T]
}

func (s *replaySubject[T]) evict() {
	if s.maxSize > 0 && len(s.entries) > s.maxSize {
		s.entries = s.entries[len(s.entries)-s.maxSize:]
	}

	if s.window > 0 {
		cut := 0
		for cut < len(s.entries) && time.Since(s.entries[cut].at) > s.window {
			cut++
		}

		s.entries = s.entries[cut:]
	}
}

// Subscribe drains the recorded backlog in rounds: values appended while a
// round is being replayed (outside the lock) are picked up by the next
// round, so the subscriber is registered live only once it has caught up.
// No value is skipped and none is delivered twice.
func (s *replaySubject[T]) Subscribe(ctx context.Context, destination Observer[T]) Disposable {
	sink := newSubscriber(ctx, destination)

	caughtUp := int64(0)

	for {
		s.mu.Lock()
		s.evict()

		var backlog []replayEntry[T]

		for _, e := range s.entries {
			if e.seq >= caughtUp {
				backlog = append(backlog, e)
			}
		}

		if len(backlog) == 0 {
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

		caughtUp = backlog[len(backlog)-1].seq + 1
		s.mu.Unlock()

		for _, e := range backlog {
			sink.Next(e.value)
		}
	}
}

func (s *replaySubject[T]) Next(value T) {
	s.mu.Lock()
	if s.terminal != nil {
		s.mu.Unlock()
		OnDroppedEvent(context.Background(), KindNext)

		return
	}

	s.entries = append(s.entries, replayEntry[T]{seq: s.seq, at: time.Now(), value: value})
	s.seq++
	s.evict()

	observers := make([]Observer[T], 0, len(s.slots))
	for _, o := range s.slots {
		observers = append(observers, o)
	}
	s.mu.Unlock()

	for _, o := range observers {
		o.Next(value)
	}
}

func (s *replaySubject[T]) Error(err error) {
	s.terminate(ErrorNotification[T](err))
}

func (s *replaySubject[T]) Complete() {
	s.terminate(CompleteNotification[T]())
}

func (s *replaySubject[T]) terminate(terminal Notification[T]) {
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

// Copyright 2025 The Streambed Authors
// SPDX-License-Identifier: Apache-2.0

package rx

import (
	"context"
	"sync"
)

// Map transforms every value with project; terminals pass through.
func Map[T, R any](project func(value T) R) func(Observable[T]) Observable[R] {
	return func(source Observable[T]) Observable[R] {
		return NewObservable(func(ctx context.Context, sink Observer[R]) Teardown {
			sub := source.Subscribe(ctx, NewObserver(
				func(value T) {
					sink.Next(project(value))
				},
				sink.Error,
				sink.Complete,
			))

			return sub.Dispose
		})
	}
}

// Scan emits the running fold of the sequence: for each value, the
// accumulator is applied to the previous fold result (starting from seed)
// and the new result is emitted.
func Scan[T, R any](accumulate func(acc R, value T) R, seed R) func(Observable[T]) Observable[R] {
	return func(source Observable[T]) Observable[R] {
		return NewObservable(func(ctx context.Context, sink Observer[R]) Teardown {
			acc := seed

			sub := source.Subscribe(ctx, NewObserver(
				func(value T) {
					acc = accumulate(acc, value)
					sink.Next(acc)
				},
				sink.Error,
				sink.Complete,
			))

			return sub.Dispose
		})
	}
}

// GroupedObservable is one key's substream emitted by GroupBy.
type GroupedObservable[K comparable, T any] interface {
	Observable[T]

	Key() K
}

type groupedObservable[K comparable, T any] struct {
	key     K
	subject Subject[T]
}

func (g *groupedObservable[K, T]) Key() K {
	return g.key
}

func (g *groupedObservable[K, T]) Subscribe(ctx context.Context, destination Observer[T]) Disposable {
	return g.subject.Subscribe(ctx, destination)
}

// GroupBy splits the source by key: the first value of each distinct key
// emits a new GroupedObservable (in first-seen order), and every later value
// with the same key flows into that group. The groups share the parent's
// lifecycle: they complete when it completes, error when it errors, and are
// sealed when the parent subscription is disposed.
func GroupBy[K comparable, T any](key func(value T) K) func(Observable[T]) Observable[GroupedObservable[K, T]] {
	return func(source Observable[T]) Observable[GroupedObservable[K, T]] {
		return NewObservable(func(ctx context.Context, sink Observer[GroupedObservable[K, T]]) Teardown {
			// The group map is guarded because the parent teardown can race a
			// final in-flight delivery. The lock is never held across a call
			// into a group or the sink.
			var mu sync.Mutex

			groups := map[K]Subject[T]{}

			snapshot := func() []Subject[T] {
				mu.Lock()
				defer mu.Unlock()

				all := make([]Subject[T], 0, len(groups))
				for _, group := range groups {
					all = append(all, group)
				}

				return all
			}

			sub := source.Subscribe(ctx, NewObserver(
				func(value T) {
					k := key(value)

					mu.Lock()
					group, known := groups[k]

					if !known {
						group = NewSubject[T]()
						groups[k] = group
					}
					mu.Unlock()

					if !known {
						sink.Next(&groupedObservable[K, T]{key: k, subject: group})
					}

					group.Next(value)
				},
				func(err error) {
					for _, group := range snapshot() {
						group.Error(err)
					}

					sink.Error(err)
				},
				func() {
					for _, group := range snapshot() {
						group.Complete()
					}

					sink.Complete()
				},
			))

			return func() {
				sub.Dispose()

				for _, group := range snapshot() {
					group.Complete()
				}
			}
		})
	}
}

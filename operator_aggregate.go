// Copyright 2025 The Streambed Authors
// SPDX-License-Identifier: Apache-2.0

package rx

import (
	"context"
	"sync"

	"github.com/streambed/rx/internal/constraints"
)

// Reduce folds the whole sequence and emits the single result when the
// source completes. An empty source emits the seed.
func Reduce[T, R any](accumulate func(acc R, value T) R, seed R) func(Observable[T]) Observable[R] {
	return func(source Observable[T]) Observable[R] {
		return NewObservable(func(ctx context.Context, sink Observer[R]) Teardown {
			acc := seed

			sub := source.Subscribe(ctx, NewObserver(
				func(value T) {
					acc = accumulate(acc, value)
				},
				sink.Error,
				func() {
					sink.Next(acc)
					sink.Complete()
				},
			))

			return sub.Dispose
		})
	}
}

// Length counts the values and emits the count at completion.
func Length[T any]() func(Observable[T]) Observable[int64] {
	return func(source Observable[T]) Observable[int64] {
		return NewObservable(func(ctx context.Context, sink Observer[int64]) Teardown {
			count := int64(0)

			sub := source.Subscribe(ctx, NewObserver(
				func(value T) {
					count++
				},
				sink.Error,
				func() {
					sink.Next(count)
					sink.Complete()
				},
			))

			return sub.Dispose
		})
	}
}

// Min emits the smallest value at completion. An empty source terminates
// with ErrEmpty.
func Min[T constraints.Ordered]() func(Observable[T]) Observable[T] {
	return extremum(func(candidate, best T) bool { return candidate < best })
}

// Max emits the largest value at completion. An empty source terminates
// with ErrEmpty.
func Max[T constraints.Ordered]() func(Observable[T]) Observable[T] {
	return extremum(func(candidate, best T) bool { return candidate > best })
}

func extremum[T constraints.Ordered](better func(candidate, best T) bool) func(Observable[T]) Observable[T] {
	return func(source Observable[T]) Observable[T] {
		return NewObservable(func(ctx context.Context, sink Observer[T]) Teardown {
			var best T

			hasValue := false

			sub := source.Subscribe(ctx, NewObserver(
				func(value T) {
					if !hasValue || better(value, best) {
						best = value
						hasValue = true
					}
				},
				sink.Error,
				func() {
					if !hasValue {
						sink.Error(ErrEmpty)
						return
					}

					sink.Next(best)
					sink.Complete()
				},
			))

			return sub.Dispose
		})
	}
}

// All emits true at completion if every value satisfied the predicate, and
// short-circuits to false on the first value that does not, unsubscribing
// the source. An empty source is vacuously true.
func All[T any](predicate func(value T) bool) func(Observable[T]) Observable[bool] {
	return func(source Observable[T]) Observable[bool] {
		return NewObservable(func(ctx context.Context, sink Observer[bool]) Teardown {
			upstream := NewSerialDisposable()

			upstream.Set(source.Subscribe(ctx, NewObserver(
				func(value T) {
					if !predicate(value) {
						sink.Next(false)
						sink.Complete()
						upstream.Dispose()
					}
				},
				sink.Error,
				func() {
					sink.Next(true)
					sink.Complete()
				},
			)))

			return upstream.Dispose
		})
	}
}

// Any short-circuits to true on the first value satisfying the predicate,
// unsubscribing the source, and emits false when the source completes
// without one.
func Any[T any](predicate func(value T) bool) func(Observable[T]) Observable[bool] {
	return func(source Observable[T]) Observable[bool] {
		return NewObservable(func(ctx context.Context, sink Observer[bool]) Teardown {
			upstream := NewSerialDisposable()

			upstream.Set(source.Subscribe(ctx, NewObserver(
				func(value T) {
					if predicate(value) {
						sink.Next(true)
						sink.Complete()
						upstream.Dispose()
					}
				},
				sink.Error,
				func() {
					sink.Next(false)
					sink.Complete()
				},
			)))

			return upstream.Dispose
		})
	}
}

// Contains is Any specialized to equality with a single target value.
func Contains[T comparable](target T) func(Observable[T]) Observable[bool] {
	return Any(func(value T) bool {
		return value == target
	})
}

// SequenceEqual compares the source pairwise against other. It emits false
// as soon as a pair differs or one side provably outlives the other, and
// true once both complete with every pair matched. The verdict is followed
// by completion, and both subscriptions are disposed.
func SequenceEqual[T comparable](other Observable[T]) func(Observable[T]) Observable[bool] {
	return func(source Observable[T]) Observable[bool] {
		return NewObservable(func(ctx context.Context, sink Observer[bool]) Teardown {
			subscriptions := NewCompositeDisposable()

			// Shared pairwise state for both sides, symmetric in mine/theirs.
			// The mutex only guards the queues and flags; the verdict is
			// delivered outside it.
			var mu sync.Mutex

			queues := [2][]T{}
			completed := [2]bool{}
			decided := false

			verdict := func(equal bool) {
				sink.Next(equal)
				sink.Complete()
				subscriptions.Dispose()
			}

			onValue := func(mine int, value T) {
				theirs := 1 - mine

				mu.Lock()
				if decided {
					mu.Unlock()
					return
				}

				if len(queues[theirs]) > 0 {
					counterpart := queues[theirs][0]
					queues[theirs] = queues[theirs][1:]

					if counterpart != value {
						decided = true
						mu.Unlock()
						verdict(false)

						return
					}

					mu.Unlock()

					return
				}

				if completed[theirs] {
					// The other side already ended: this side is longer.
					decided = true
					mu.Unlock()
					verdict(false)

					return
				}

				queues[mine] = append(queues[mine], value)
				mu.Unlock()
			}

			onComplete := func(mine int) {
				theirs := 1 - mine

				mu.Lock()
				if decided {
					mu.Unlock()
					return
				}

				completed[mine] = true

				switch {
				case len(queues[mine]) == 0 && completed[theirs] && len(queues[theirs]) == 0:
					decided = true
					mu.Unlock()
					verdict(true)
				case completed[theirs] && (len(queues[mine]) > 0 || len(queues[theirs]) > 0):
					// Both ended but one has unmatched leftovers.
					decided = true
					mu.Unlock()
					verdict(false)
				case len(queues[theirs]) > 0:
					// The other side is already ahead; this side ended short.
					decided = true
					mu.Unlock()
					verdict(false)
				default:
					mu.Unlock()
				}
			}

			sides := [2]Observable[T]{source, other}
			for i, side := range sides {
				i := i

				subscriptions.Add(side.Subscribe(ctx, NewObserver(
					func(value T) { onValue(i, value) },
					sink.Error,
					func() { onComplete(i) },
				)))
			}

			return subscriptions.Dispose
		})
	}
}

// DefaultIfEmpty emits fallback before completing if the source completed
// without a single value.
func DefaultIfEmpty[T any](fallback T) func(Observable[T]) Observable[T] {
	return func(source Observable[T]) Observable[T] {
		return NewObservable(func(ctx context.Context, sink Observer[T]) Teardown {
			empty := true

			sub := source.Subscribe(ctx, NewObserver(
				func(value T) {
					empty = false

					sink.Next(value)
				},
				sink.Error,
				func() {
					if empty {
						sink.Next(fallback)
					}

					sink.Complete()
				},
			))

			return sub.Dispose
		})
	}
}

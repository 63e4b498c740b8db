// Copyright 2025 The Streambed Authors
// SPDX-License-Identifier: Apache-2.0

package rx

import (
	"context"
)

// Operators in this file keep per-subscription state (counters, buffers,
// seen-sets) without locking: the upstream protocol gate serializes every
// delivery into the callbacks below, so the state is never touched
// concurrently. A panic in a user predicate is caught by the same gate and
// becomes a downstream Error.

// Filter forwards only the values the predicate accepts.
func Filter[T any](predicate func(value T) bool) func(Observable[T]) Observable[T] {
	return func(source Observable[T]) Observable[T] {
		return NewObservable(func(ctx context.Context, sink Observer[T]) Teardown {
			sub := source.Subscribe(ctx, NewObserver(
				func(value T) {
					if predicate(value) {
						sink.Next(value)
					}
				},
				sink.Error,
				sink.Complete,
			))

			return sub.Dispose
		})
	}
}

// Take forwards the first count values, then completes and unsubscribes the
// source. If the source terminates earlier, that terminal is forwarded.
func Take[T any](count int64) func(Observable[T]) Observable[T] {
	if count < 0 {
		panic(ErrNegativeCount)
	}

	return func(source Observable[T]) Observable[T] {
		return NewObservable(func(ctx context.Context, sink Observer[T]) Teardown {
			if count == 0 {
				sink.Complete()
				return nil
			}

			upstream := NewSerialDisposable()
			remaining := count

			upstream.Set(source.Subscribe(ctx, NewObserver(
				func(value T) {
					sink.Next(value)

					remaining--
					if remaining == 0 {
						sink.Complete()
						upstream.Dispose()
					}
				},
				sink.Error,
				sink.Complete,
			)))

			return upstream.Dispose
		})
	}
}

// Skip drops the first count values and forwards the rest.
func Skip[T any](count int64) func(Observable[T]) Observable[T] {
	if count < 0 {
		panic(ErrNegativeCount)
	}

	return func(source Observable[T]) Observable[T] {
		return NewObservable(func(ctx context.Context, sink Observer[T]) Teardown {
			remaining := count

			sub := source.Subscribe(ctx, NewObserver(
				func(value T) {
					if remaining > 0 {
						remaining--
						return
					}

					sink.Next(value)
				},
				sink.Error,
				sink.Complete,
			))

			return sub.Dispose
		})
	}
}

// TakeWhile forwards values while the predicate holds, then completes on the
// first rejected value, which is not emitted.
func TakeWhile[T any](predicate func(value T) bool) func(Observable[T]) Observable[T] {
	return func(source Observable[T]) Observable[T] {
		return NewObservable(func(ctx context.Context, sink Observer[T]) Teardown {
			upstream := NewSerialDisposable()

			upstream.Set(source.Subscribe(ctx, NewObserver(
				func(value T) {
					if !predicate(value) {
						sink.Complete()
						upstream.Dispose()

						return
					}

					sink.Next(value)
				},
				sink.Error,
				sink.Complete,
			)))

			return upstream.Dispose
		})
	}
}

// SkipWhile drops values while the predicate holds; from the first rejected
// value on, everything is forwarded.
func SkipWhile[T any](predicate func(value T) bool) func(Observable[T]) Observable[T] {
	return func(source Observable[T]) Observable[T] {
		return NewObservable(func(ctx context.Context, sink Observer[T]) Teardown {
			skipping := true

			sub := source.Subscribe(ctx, NewObserver(
				func(value T) {
					if skipping && predicate(value) {
						return
					}

					skipping = false

					sink.Next(value)
				},
				sink.Error,
				sink.Complete,
			))

			return sub.Dispose
		})
	}
}

// TakeLast buffers the trailing count values in a ring and flushes them, in
// arrival order, when the source completes.
func TakeLast[T any](count int64) func(Observable[T]) Observable[T] {
	if count < 0 {
		panic(ErrNegativeCount)
	}

	return func(source Observable[T]) Observable[T] {
		return NewObservable(func(ctx context.Context, sink Observer[T]) Teardown {
			tail := make([]T, 0, count)

			sub := source.Subscribe(ctx, NewObserver(
				func(value T) {
					if count == 0 {
						return
					}

					if int64(len(tail)) == count {
						tail = tail[1:]
					}

					tail = append(tail, value)
				},
				sink.Error,
				func() {
					for _, value := range tail {
						sink.Next(value)
					}

					sink.Complete()
				},
			))

			return sub.Dispose
		})
	}
}

// SkipLast withholds the trailing count values: each value is emitted only
// once count newer ones have arrived, so the final count never appear.
func SkipLast[T any](count int64) func(Observable[T]) Observable[T] {
	if count < 0 {
		panic(ErrNegativeCount)
	}

	return func(source Observable[T]) Observable[T] {
		return NewObservable(func(ctx context.Context, sink Observer[T]) Teardown {
			held := make([]T, 0, count)

			sub := source.Subscribe(ctx, NewObserver(
				func(value T) {
					if count == 0 {
						sink.Next(value)
						return
					}

					if int64(len(held)) == count {
						sink.Next(held[0])
						held = held[1:]
					}

					held = append(held, value)
				},
				sink.Error,
				sink.Complete,
			))

			return sub.Dispose
		})
	}
}

// Distinct forwards a value only the first time it is seen.
func Distinct[T comparable]() func(Observable[T]) Observable[T] {
	return func(source Observable[T]) Observable[T] {
		return NewObservable(func(ctx context.Context, sink Observer[T]) Teardown {
			seen := map[T]struct{}{}

			sub := source.Subscribe(ctx, NewObserver(
				func(value T) {
					if _, ok := seen[value]; ok {
						return
					}

					seen[value] = struct{}{}

					sink.Next(value)
				},
				sink.Error,
				sink.Complete,
			))

			return sub.Dispose
		})
	}
}

// DistinctUntilChanged forwards a value only when it differs from the
// immediately preceding one.
func DistinctUntilChanged[T comparable]() func(Observable[T]) Observable[T] {
	return func(source Observable[T]) Observable[T] {
		return NewObservable(func(ctx context.Context, sink Observer[T]) Teardown {
			var previous T

			first := true

			sub := source.Subscribe(ctx, NewObserver(
				func(value T) {
					if !first && value == previous {
						return
					}

					first = false
					previous = value

					sink.Next(value)
				},
				sink.Error,
				sink.Complete,
			))

			return sub.Dispose
		})
	}
}

// IgnoreElements drops every value and forwards only the terminal event.
func IgnoreElements[T any]() func(Observable[T]) Observable[T] {
	return func(source Observable[T]) Observable[T] {
		return NewObservable(func(ctx context.Context, sink Observer[T]) Teardown {
			sub := source.Subscribe(ctx, NewObserver[T](
				nil,
				sink.Error,
				sink.Complete,
			))

			return sub.Dispose
		})
	}
}

// First emits the first value and completes, unsubscribing the source. An
// empty source terminates with ErrEmpty.
func First[T any]() func(Observable[T]) Observable[T] {
	return func(source Observable[T]) Observable[T] {
		return NewObservable(func(ctx context.Context, sink Observer[T]) Teardown {
			upstream := NewSerialDisposable()

			upstream.Set(source.Subscribe(ctx, NewObserver(
				func(value T) {
					sink.Next(value)
					sink.Complete()
					upstream.Dispose()
				},
				sink.Error,
				func() {
					sink.Error(ErrEmpty)
				},
			)))

			return upstream.Dispose
		})
	}
}

// Last emits the final value when the source completes. An empty source
// terminates with ErrEmpty.
func Last[T any]() func(Observable[T]) Observable[T] {
	return func(source Observable[T]) Observable[T] {
		return NewObservable(func(ctx context.Context, sink Observer[T]) Teardown {
			var latest T

			hasValue := false

			sub := source.Subscribe(ctx, NewObserver(
				func(value T) {
					latest = value
					hasValue = true
				},
				sink.Error,
				func() {
					if !hasValue {
						sink.Error(ErrEmpty)
						return
					}

					sink.Next(latest)
					sink.Complete()
				},
			))

			return sub.Dispose
		})
	}
}

// ElementAt emits only the value at the given zero-based index, then
// completes and unsubscribes the source. A source completing before the
// index is reached terminates with ErrOutOfRange.
func ElementAt[T any](index int64) func(Observable[T]) Observable[T] {
	if index < 0 {
		panic(ErrNegativeCount)
	}

	return func(source Observable[T]) Observable[T] {
		return NewObservable(func(ctx context.Context, sink Observer[T]) Teardown {
			upstream := NewSerialDisposable()
			cursor := int64(0)

			upstream.Set(source.Subscribe(ctx, NewObserver(
				func(value T) {
					if cursor == index {
						sink.Next(value)
						sink.Complete()
						upstream.Dispose()
					}

					cursor++
				},
				sink.Error,
				func() {
					sink.Error(ErrOutOfRange)
				},
			)))

			return upstream.Dispose
		})
	}
}

// OfType forwards only the values whose runtime type is U, silently dropping
// the rest.
func OfType[T, U any]() func(Observable[T]) Observable[U] {
	return func(source Observable[T]) Observable[U] {
		return NewObservable(func(ctx context.Context, sink Observer[U]) Teardown {
			sub := source.Subscribe(ctx, NewObserver(
				func(value T) {
					if typed, ok := any(value).(U); ok {
						sink.Next(typed)
					}
				},
				sink.Error,
				sink.Complete,
			))

			return sub.Dispose
		})
	}
}

// Copyright 2025 The Streambed Authors
// SPDX-License-Identifier: Apache-2.0

package rx

import (
	"context"
	"time"
)

// Just emits the given values in order, then completes.
func Just[T any](values ...T) Observable[T] {
	return NewObservable(func(ctx context.Context, sink Observer[T]) Teardown {
		for _, value := range values {
			sink.Next(value)
		}

		sink.Complete()

		return nil
	})
}

// FromSlice emits every element of the slice in order, then completes.
func FromSlice[T any](values []T) Observable[T] {
	return Just(values...)
}

// Empty completes immediately, emitting nothing.
func Empty[T any]() Observable[T] {
	return NewObservable(func(ctx context.Context, sink Observer[T]) Teardown {
		sink.Complete()
		return nil
	})
}

// Never emits nothing and never terminates. Disposal is the only way out.
func Never[T any]() Observable[T] {
	return NewObservable(func(ctx context.Context, sink Observer[T]) Teardown {
		return nil
	})
}

// Throw terminates immediately with err.
func Throw[T any](err error) Observable[T] {
	return NewObservable(func(ctx context.Context, sink Observer[T]) Teardown {
		sink.Error(err)
		return nil
	})
}

// Range emits count consecutive integers starting at start, then completes.
func Range(start, count int64) Observable[int64] {
	return RangeStep(start, count, 1)
}

// RangeStep emits count integers starting at start, advancing by step
// between emissions. step must be at least 1 and count must not be negative.
func RangeStep(start, count, step int64) Observable[int64] {
	if count < 0 {
		panic(ErrNegativeCount)
	}

	if step < 1 {
		panic(ErrNonPositiveStep)
	}

	return NewObservable(func(ctx context.Context, sink Observer[int64]) Teardown {
		cursor := start

		for i := int64(0); i < count; i++ {
			sink.Next(cursor)
			cursor += step
		}

		sink.Complete()

		return nil
	})
}

// Unfold grows a sequence from a seed state: while condition holds for the
// current state, project(state) is emitted and the state advances to
// iterate(state). The seed itself is tested before the first emission, so a
// rejected seed yields an empty sequence.
func Unfold[S any, T any](seed S, condition func(state S) bool, iterate func(state S) S, project func(state S) T) Observable[T] {
	return NewObservable(func(ctx context.Context, sink Observer[T]) Teardown {
		state := seed

		for condition(state) {
			sink.Next(project(state))
			state = iterate(state)
		}

		sink.Complete()

		return nil
	})
}

// Defer calls factory anew for every subscription and subscribes to its
// result, so per-subscription state lives in the factory. A panic in the
// factory is delivered to the subscriber as an Error.
func Defer[T any](factory func() Observable[T]) Observable[T] {
	return NewObservable(func(ctx context.Context, sink Observer[T]) Teardown {
		sub := factory().Subscribe(ctx, sink)
		return sub.Dispose
	})
}

// Start computes a single value on the subscribing goroutine, emits it and
// completes.
func Start[T any](compute func() T) Observable[T] {
	return NewObservable(func(ctx context.Context, sink Observer[T]) Teardown {
		sink.Next(compute())
		sink.Complete()

		return nil
	})
}

// StartOn computes a single value as one work unit on the given Scheduler.
// Disposing before the unit runs suppresses the emission.
func StartOn[T any](scheduler Scheduler, compute func() T) Observable[T] {
	return NewObservable(func(ctx context.Context, sink Observer[T]) Teardown {
		work := scheduler.Schedule(func() {
			sink.Next(compute())
			sink.Complete()
		})

		return work.Dispose
	})
}

// FromSliceOn emits the elements of a slice on the given Scheduler, one
// element per work unit, so disposal between elements stops the iteration
// promptly.
func FromSliceOn[T any](scheduler Scheduler, values []T) Observable[T] {
	return NewObservable(func(ctx context.Context, sink Observer[T]) Teardown {
		index := 0

		work := scheduler.ScheduleRecursive(func(self func()) {
			if index >= len(values) {
				sink.Complete()
				return
			}

			sink.Next(values[index])
			index++

			self()
		})

		return work.Dispose
	})
}

// Future runs compute on its own goroutine; the eventual value is emitted
// followed by completion, or the eventual error terminates the sequence.
func Future[T any](compute func() (T, error)) Observable[T] {
	return NewObservable(func(ctx context.Context, sink Observer[T]) Teardown {
		go func() {
			value, err := compute()
			if err != nil {
				sink.Error(err)
				return
			}

			sink.Next(value)
			sink.Complete()
		}()

		return nil
	})
}

// Timer waits delay, emits the elapsed time once, and completes.
func Timer(delay time.Duration) Observable[time.Duration] {
	return NewObservable(func(ctx context.Context, sink Observer[time.Duration]) Teardown {
		stop := make(chan struct{})
		started := time.Now()

		go func() {
			timer := time.NewTimer(delay)
			defer timer.Stop()

			select {
			case <-timer.C:
				sink.Next(time.Since(started))
				sink.Complete()
			case <-ctx.Done():
			case <-stop:
			}
		}()

		return func() { close(stop) }
	})
}

// Interval emits 0, 1, 2, ... forever, one emission per period, the first
// after one full period. Cancellation is observed at every wakeup.
func Interval(period time.Duration) Observable[int64] {
	return IntervalAfter(period, period)
}

// IntervalAfter is Interval with a distinct initial delay: the first value
// fires after initial, later ones every period.
func IntervalAfter(initial, period time.Duration) Observable[int64] {
	return NewObservable(func(ctx context.Context, sink Observer[int64]) Teardown {
		stop := make(chan struct{})

		go func() {
			timer := time.NewTimer(initial)
			defer timer.Stop()

			for i := int64(0); ; i++ {
				select {
				case <-timer.C:
					sink.Next(i)
					timer.Reset(period)
				case <-ctx.Done():
					return
				case <-stop:
					return
				}
			}
		}()

		return func() { close(stop) }
	})
}

// Repeat emits value count times, then completes.
func Repeat[T any](value T, count int64) Observable[T] {
	if count < 0 {
		panic(ErrNegativeCount)
	}

	return NewObservable(func(ctx context.Context, sink Observer[T]) Teardown {
		for i := int64(0); i < count; i++ {
			sink.Next(value)
		}

		sink.Complete()

		return nil
	})
}

// RepeatSlice replays the whole slice count times, then completes.
func RepeatSlice[T any](values []T, count int64) Observable[T] {
	if count < 0 {
		panic(ErrNegativeCount)
	}

	return NewObservable(func(ctx context.Context, sink Observer[T]) Teardown {
		for i := int64(0); i < count; i++ {
			for _, value := range values {
				sink.Next(value)
			}
		}

		sink.Complete()

		return nil
	})
}

// FromChannel adapts a receive channel: every received value is emitted, and
// closing the channel completes the sequence.
func FromChannel[T any](ch <-chan T) Observable[T] {
	return NewObservable(func(ctx context.Context, sink Observer[T]) Teardown {
		stop := make(chan struct{})

		go func() {
			for {
				select {
				case value, ok := <-ch:
					if !ok {
						sink.Complete()
						return
					}

					sink.Next(value)
				case <-ctx.Done():
					return
				case <-stop:
					return
				}
			}
		}()

		return func() { close(stop) }
	})
}

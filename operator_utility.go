// Copyright 2025 The Streambed Authors
// SPDX-License-Identifier: Apache-2.0

package rx

import (
	"context"
)

// Tap observes the stream without altering it: the callbacks (any of which
// may be nil) run before the event is forwarded. A panic in a callback
// terminates the stream like any other user-code failure.
func Tap[T any](onNext func(value T), onError func(err error), onComplete func()) func(Observable[T]) Observable[T] {
	return func(source Observable[T]) Observable[T] {
		return NewObservable(func(ctx context.Context, sink Observer[T]) Teardown {
			sub := source.Subscribe(ctx, NewObserver(
				func(value T) {
					if onNext != nil {
						onNext(value)
					}

					sink.Next(value)
				},
				func(err error) {
					if onError != nil {
						onError(err)
					}

					sink.Error(err)
				},
				func() {
					if onComplete != nil {
						onComplete()
					}

					sink.Complete()
				},
			))

			return sub.Dispose
		})
	}
}

// Materialize reifies every event as a Notification value: a stream of n
// values becomes a stream of n Next notifications followed by one Error or
// Complete notification, then completion.
func Materialize[T any]() func(Observable[T]) Observable[Notification[T]] {
	return func(source Observable[T]) Observable[Notification[T]] {
		return NewObservable(func(ctx context.Context, sink Observer[Notification[T]]) Teardown {
			sub := source.Subscribe(ctx, NewObserver(
				func(value T) {
					sink.Next(NextNotification(value))
				},
				func(err error) {
					sink.Next(ErrorNotification[T](err))
					sink.Complete()
				},
				func() {
					sink.Next(CompleteNotification[T]())
					sink.Complete()
				},
			))

			return sub.Dispose
		})
	}
}

// Dematerialize undoes Materialize, replaying reified notifications as live
// events. The stream ends at the first terminal notification; notifications
// after it are dropped by the grammar.
func Dematerialize[T any]() func(Observable[Notification[T]]) Observable[T] {
	return func(source Observable[Notification[T]]) Observable[T] {
		return NewObservable(func(ctx context.Context, sink Observer[T]) Teardown {
			sub := source.Subscribe(ctx, NewObserver(
				func(n Notification[T]) {
					n.Send(sink)
				},
				sink.Error,
				sink.Complete,
			))

			return sub.Dispose
		})
	}
}

// ObserveOn moves delivery onto the Scheduler: every event is handed over as
// its own work unit, so the receiving side's ordering is whatever ordering
// the Scheduler's queue provides — FIFO for Trampoline and TaskPool(1),
// unordered for NewThread.
func ObserveOn[T any](scheduler Scheduler) func(Observable[T]) Observable[T] {
	return func(source Observable[T]) Observable[T] {
		return NewObservable(func(ctx context.Context, sink Observer[T]) Teardown {
			// Work units already queued when the subscription is disposed
			// still run, but their deliveries land on a closed gate and are
			// dropped, so no per-unit bookkeeping is needed.
			sub := source.Subscribe(ctx, NewObserver(
				func(value T) {
					scheduler.Schedule(func() { sink.Next(value) })
				},
				func(err error) {
					scheduler.Schedule(func() { sink.Error(err) })
				},
				func() {
					scheduler.Schedule(sink.Complete)
				},
			))

			return sub.Dispose
		})
	}
}

// SubscribeOn moves the subscription itself — source setup included — onto
// the Scheduler, so Subscribe returns without running the source's
// subscribe logic on the calling goroutine.
func SubscribeOn[T any](scheduler Scheduler) func(Observable[T]) Observable[T] {
	return func(source Observable[T]) Observable[T] {
		return NewObservable(func(ctx context.Context, sink Observer[T]) Teardown {
			upstream := NewSerialDisposable()

			unit := scheduler.Schedule(func() {
				upstream.Set(source.Subscribe(ctx, sink))
			})

			return func() {
				unit.Dispose()
				upstream.Dispose()
			}
		})
	}
}

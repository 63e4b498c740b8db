// Copyright 2025 The Streambed Authors
// SPDX-License-Identifier: Apache-2.0

package rx

import (
	"context"
	"sync"
)

// Catch intercepts an error and continues with the Observable built from it
// by handler. Values and completion pass through untouched.
func Catch[T any](handler func(err error) Observable[T]) func(Observable[T]) Observable[T] {
	return func(source Observable[T]) Observable[T] {
		return NewObservable(func(ctx context.Context, sink Observer[T]) Teardown {
			upstream := NewSerialDisposable()

			upstream.Set(source.Subscribe(ctx, NewObserver(
				sink.Next,
				func(err error) {
					upstream.Set(handler(err).Subscribe(ctx, sink))
				},
				sink.Complete,
			)))

			return upstream.Dispose
		})
	}
}

// CatchIf is Catch restricted to errors the matcher accepts; rejected errors
// propagate downstream untouched.
func CatchIf[T any](matcher func(err error) bool, handler func(err error) Observable[T]) func(Observable[T]) Observable[T] {
	return Catch(func(err error) Observable[T] {
		if matcher(err) {
			return handler(err)
		}

		return Throw[T](err)
	})
}

// OnErrorContinueWith switches to fallback when the source errors. The
// fallback does not see the error; completion passes through untouched.
func OnErrorContinueWith[T any](fallback Observable[T]) func(Observable[T]) Observable[T] {
	return Catch(func(error) Observable[T] {
		return fallback
	})
}

// ContinueWith switches to the given continuations, in order, whenever the
// current stage terminates — by completion or error alike; the reason is
// swallowed. Only the final continuation's terminal reaches downstream.
func ContinueWith[T any](continuations ...Observable[T]) func(Observable[T]) Observable[T] {
	return func(source Observable[T]) Observable[T] {
		if len(continuations) == 0 {
			return source
		}

		stages := append([]Observable[T]{source}, continuations...)

		return NewObservable(func(ctx context.Context, sink Observer[T]) Teardown {
			upstream := NewSerialDisposable()

			var run func(stage int)

			run = func(stage int) {
				if stage == len(stages)-1 {
					// Final stage: its terminal is the pipeline's terminal.
					upstream.Set(stages[stage].Subscribe(ctx, sink))
					return
				}

				advance := func() { run(stage + 1) }

				upstream.Set(stages[stage].Subscribe(ctx, NewObserver(
					sink.Next,
					func(error) { advance() },
					advance,
				)))
			}

			run(0)

			return upstream.Dispose
		})
	}
}

// Retry resubscribes to the source when it errors, up to maxRetries
// additional attempts after the initial failure; once exhausted, the last
// error is forwarded. Retry(0) forwards the first error unchanged; a
// negative maxRetries retries without bound.
func Retry[T any](maxRetries int64) func(Observable[T]) Observable[T] {
	return func(source Observable[T]) Observable[T] {
		return NewObservable(func(ctx context.Context, sink Observer[T]) Teardown {
			upstream := NewSerialDisposable()

			var attempt func(remaining int64)

			// A source that fails synchronously, inside Subscribe, would
			// recurse one stack frame per retry; the subscribing flag turns
			// that case into an iteration of the enclosing loop instead.
			attempt = func(remaining int64) {
				for {
					var mu sync.Mutex

					subscribing := true
					retryNow := false
					next := remaining

					onError := func(err error) {
						if next == 0 {
							sink.Error(err)
							return
						}

						budget := next
						if budget > 0 {
							budget--
						}

						mu.Lock()
						if subscribing {
							retryNow = true
							next = budget
							mu.Unlock()

							return
						}
						mu.Unlock()

						attempt(budget)
					}

					upstream.Set(source.Subscribe(ctx, NewObserver(
						sink.Next,
						onError,
						sink.Complete,
					)))

					mu.Lock()
					subscribing = false
					again := retryNow
					remaining = next
					mu.Unlock()

					if !again || upstream.IsDisposed() {
						return
					}
				}
			}

			attempt(maxRetries)

			return upstream.Dispose
		})
	}
}

// Copyright 2025 The Streambed Authors
// SPDX-License-Identifier: Apache-2.0

package rx

import (
	"context"
	"sync"
	"time"
)

// Time operators measure with time.Timer/time.Ticker, whose waits ride the
// runtime's monotonic clock: wall-clock adjustments do not distort windows.
// Delivery still goes through the subscription's protocol gate, so a timer
// callback racing a terminal event or disposal is silenced, not doubled.

// Debounce delays every value by duration, cancelling it if a newer value
// arrives first, so only the last value of each burst is emitted. Completion
// flushes a still-pending value; an error discards it.
func Debounce[T any](duration time.Duration) func(Observable[T]) Observable[T] {
	return func(source Observable[T]) Observable[T] {
		return NewObservable(func(ctx context.Context, sink Observer[T]) Teardown {
			var mu sync.Mutex

			var pending T

			var timer *time.Timer

			hasPending := false

			takePending := func() (T, bool) {
				mu.Lock()
				defer mu.Unlock()

				value, flush := pending, hasPending
				hasPending = false

				return value, flush
			}

			sub := source.Subscribe(ctx, NewObserver(
				func(value T) {
					mu.Lock()
					pending = value
					hasPending = true

					if timer != nil {
						timer.Stop()
					}

					timer = time.AfterFunc(duration, func() {
						if value, flush := takePending(); flush {
							sink.Next(value)
						}
					})
					mu.Unlock()
				},
				func(err error) {
					takePending()
					sink.Error(err)
				},
				func() {
					if value, flush := takePending(); flush {
						sink.Next(value)
					}

					sink.Complete()
				},
			))

			return func() {
				sub.Dispose()

				mu.Lock()
				if timer != nil {
					timer.Stop()
				}
				mu.Unlock()
			}
		})
	}
}

// Sample emits, every period, the freshest value received since the last
// emission; periods with nothing new emit nothing. Completion flushes a
// still-unsampled value.
func Sample[T any](period time.Duration) func(Observable[T]) Observable[T] {
	return func(source Observable[T]) Observable[T] {
		return NewObservable(func(ctx context.Context, sink Observer[T]) Teardown {
			var mu sync.Mutex

			var latest T

			fresh := false
			stop := make(chan struct{})

			var once sync.Once

			halt := func() { once.Do(func() { close(stop) }) }

			takeFresh := func() (T, bool) {
				mu.Lock()
				defer mu.Unlock()

				value, ok := latest, fresh
				fresh = false

				return value, ok
			}

			go func() {
				ticker := time.NewTicker(period)
				defer ticker.Stop()

				for {
					select {
					case <-ticker.C:
						if value, ok := takeFresh(); ok {
							sink.Next(value)
						}
					case <-ctx.Done():
						return
					case <-stop:
						return
					}
				}
			}()

			sub := source.Subscribe(ctx, NewObserver(
				func(value T) {
					mu.Lock()
					latest = value
					fresh = true
					mu.Unlock()
				},
				func(err error) {
					halt()
					sink.Error(err)
				},
				func() {
					halt()

					if value, ok := takeFresh(); ok {
						sink.Next(value)
					}

					sink.Complete()
				},
			))

			return func() {
				sub.Dispose()
				halt()
			}
		})
	}
}

// Buffer collects values and flushes them as one slice when either the time
// window elapses or the buffer reaches maxCount values, whichever comes
// first. Window flushes with nothing collected are skipped. Completion
// flushes the remainder. maxCount <= 0 disables the count bound.
func Buffer[T any](window time.Duration, maxCount int) func(Observable[T]) Observable[[]T] {
	if window <= 0 {
		panic(ErrBadWindow)
	}

	return func(source Observable[T]) Observable[[]T] {
		return NewObservable(func(ctx context.Context, sink Observer[[]T]) Teardown {
			var mu sync.Mutex

			buffer := []T{}
			stop := make(chan struct{})

			var once sync.Once

			halt := func() { once.Do(func() { close(stop) }) }

			takeAll := func() []T {
				mu.Lock()
				defer mu.Unlock()

				out := buffer
				buffer = []T{}

				return out
			}

			go func() {
				ticker := time.NewTicker(window)
				defer ticker.Stop()

				for {
					select {
					case <-ticker.C:
						if out := takeAll(); len(out) > 0 {
							sink.Next(out)
						}
					case <-ctx.Done():
						return
					case <-stop:
						return
					}
				}
			}()

			sub := source.Subscribe(ctx, NewObserver(
				func(value T) {
					var full []T

					mu.Lock()
					buffer = append(buffer, value)

					if maxCount > 0 && len(buffer) >= maxCount {
						full = buffer
						buffer = []T{}
					}
					mu.Unlock()

					if full != nil {
						sink.Next(full)
					}
				},
				func(err error) {
					halt()
					sink.Error(err)
				},
				func() {
					halt()

					if out := takeAll(); len(out) > 0 {
						sink.Next(out)
					}

					sink.Complete()
				},
			))

			return func() {
				sub.Dispose()
				halt()
			}
		})
	}
}

// Window is Buffer without the batching delay: it emits a stream of streams,
// opening a fresh inner Subject every window and completing the previous
// one. The first inner is emitted immediately on subscribe.
func Window[T any](window time.Duration) func(Observable[T]) Observable[Observable[T]] {
	if window <= 0 {
		panic(ErrBadWindow)
	}

	return func(source Observable[T]) Observable[Observable[T]] {
		return NewObservable(func(ctx context.Context, sink Observer[Observable[T]]) Teardown {
			var mu sync.Mutex

			current := NewSubject[T]()
			stop := make(chan struct{})

			var once sync.Once

			halt := func() { once.Do(func() { close(stop) }) }

			sink.Next(current)

			go func() {
				ticker := time.NewTicker(window)
				defer ticker.Stop()

				for {
					select {
					case <-ticker.C:
						next := NewSubject[T]()

						mu.Lock()
						previous := current
						current = next
						mu.Unlock()

						previous.Complete()
						sink.Next(next)
					case <-ctx.Done():
						return
					case <-stop:
						return
					}
				}
			}()

			live := func() Subject[T] {
				mu.Lock()
				defer mu.Unlock()

				return current
			}

			sub := source.Subscribe(ctx, NewObserver(
				func(value T) {
					live().Next(value)
				},
				func(err error) {
					halt()
					live().Error(err)
					sink.Error(err)
				},
				func() {
					halt()
					live().Complete()
					sink.Complete()
				},
			))

			return func() {
				sub.Dispose()
				halt()
				live().Complete()
			}
		})
	}
}

// Delay shifts every emission by a fixed duration. Terminal errors are NOT
// delayed; completion waits for the last delayed value.
func Delay[T any](duration time.Duration) func(Observable[T]) Observable[T] {
	return DelayFunc(func(T) time.Duration {
		return duration
	})
}

// DelayFunc shifts every emission by a per-value duration. Values whose
// delays overlap may overtake each other: ordering is only preserved when
// the duration function is constant.
func DelayFunc[T any](duration func(value T) time.Duration) func(Observable[T]) Observable[T] {
	return func(source Observable[T]) Observable[T] {
		return NewObservable(func(ctx context.Context, sink Observer[T]) Teardown {
			var mu sync.Mutex

			inFlight := 0
			sourceDone := false
			timers := NewCompositeDisposable()

			sub := source.Subscribe(ctx, NewObserver(
				func(value T) {
					mu.Lock()
					inFlight++
					mu.Unlock()

					timer := time.AfterFunc(duration(value), func() {
						sink.Next(value)

						mu.Lock()
						inFlight--
						finished := sourceDone && inFlight == 0
						mu.Unlock()

						if finished {
							sink.Complete()
						}
					})

					timers.AddTeardown(func() { timer.Stop() })
				},
				sink.Error,
				func() {
					mu.Lock()
					sourceDone = true
					finished := inFlight == 0
					mu.Unlock()

					if finished {
						sink.Complete()
					}
				},
			))

			return func() {
				sub.Dispose()
				timers.Dispose()
			}
		})
	}
}

// Timeout terminates with a TimeoutError if the source stays silent for
// duration: the deadline is armed at subscribe and re-armed by every value.
// The terminal error disposes the upstream subscription.
func Timeout[T any](duration time.Duration) func(Observable[T]) Observable[T] {
	return func(source Observable[T]) Observable[T] {
		return NewObservable(func(ctx context.Context, sink Observer[T]) Teardown {
			deadline := time.AfterFunc(duration, func() {
				sink.Error(&TimeoutError{After: duration})
			})

			sub := source.Subscribe(ctx, NewObserver(
				func(value T) {
					deadline.Reset(duration)
					sink.Next(value)
				},
				func(err error) {
					deadline.Stop()
					sink.Error(err)
				},
				func() {
					deadline.Stop()
					sink.Complete()
				},
			))

			return func() {
				sub.Dispose()
				deadline.Stop()
			}
		})
	}
}

// Timestamped is a value annotated with its emission time.
type Timestamped[T any] struct {
	Value T
	At    time.Time
}

// Timestamp wraps every value with the time it passed through.
func Timestamp[T any]() func(Observable[T]) Observable[Timestamped[T]] {
	return Map(func(value T) Timestamped[T] {
		return Timestamped[T]{Value: value, At: time.Now()}
	})
}

// Elapsed is a value annotated with the time since the previous emission
// (or since subscription, for the first value).
type Elapsed[T any] struct {
	Value T
	Since time.Duration
}

// TimeInterval wraps every value with the delta from the prior emission.
func TimeInterval[T any]() func(Observable[T]) Observable[Elapsed[T]] {
	return func(source Observable[T]) Observable[Elapsed[T]] {
		return NewObservable(func(ctx context.Context, sink Observer[Elapsed[T]]) Teardown {
			previous := time.Now()

			sub := source.Subscribe(ctx, NewObserver(
				func(value T) {
					now := time.Now()
					sink.Next(Elapsed[T]{Value: value, Since: now.Sub(previous)})
					previous = now
				},
				sink.Error,
				sink.Complete,
			))

			return sub.Dispose
		})
	}
}

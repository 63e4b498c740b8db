// Copyright 2025 The Streambed Authors
// SPDX-License-Identifier: Apache-2.0

package rx

import (
	"context"
	"sync"

	"github.com/samber/lo"
)

// MergeAll flattens a stream of streams: every inner Observable is
// subscribed as it arrives and their values share one output, in arrival
// order. The output completes when the outer stream has completed AND every
// inner seen so far has completed. Any error, outer or inner, is fatal.
func MergeAll[T any]() func(Observable[Observable[T]]) Observable[T] {
	return func(sources Observable[Observable[T]]) Observable[T] {
		return NewObservable(func(ctx context.Context, sink Observer[T]) Teardown {
			subscriptions := NewCompositeDisposable()

			var mu sync.Mutex

			// The outer subscription counts as one live stream, so the
			// all-done condition is a single zero test.
			live := 1

			oneDone := func() {
				mu.Lock()
				live--
				finished := live == 0
				mu.Unlock()

				if finished {
					sink.Complete()
				}
			}

			subscriptions.Add(sources.Subscribe(ctx, NewObserver(
				func(inner Observable[T]) {
					mu.Lock()
					live++
					mu.Unlock()

					subscriptions.Add(inner.Subscribe(ctx, NewObserver(
						sink.Next,
						sink.Error,
						oneDone,
					)))
				},
				sink.Error,
				oneDone,
			)))

			return subscriptions.Dispose
		})
	}
}

// Merge interleaves the given sources into one stream, completing when all
// of them have completed.
func Merge[T any](sources ...Observable[T]) Observable[T] {
	return Pipe1(Just(sources...), MergeAll[T]())
}

// FlatMap projects every value to an inner Observable and merges the
// results: Map then MergeAll.
func FlatMap[T, R any](project func(value T) Observable[R]) func(Observable[T]) Observable[R] {
	return func(source Observable[T]) Observable[R] {
		return Pipe2(source, Map(project), MergeAll[R]())
	}
}

// ConcatAll flattens a stream of streams strictly in order: an inner
// Observable is subscribed only once every earlier inner has completed;
// until then it waits, unsubscribed, in a queue.
//
// Completion is a single rule evaluated under one lock — complete downstream
// iff the outer has completed, no inner is running, and the queue is empty —
// checked at both points where it can become true (inner completed, outer
// completed), so the outer/inner completion race has no special cases.
func ConcatAll[T any]() func(Observable[Observable[T]]) Observable[T] {
	return func(sources Observable[Observable[T]]) Observable[T] {
		return NewObservable(func(ctx context.Context, sink Observer[T]) Teardown {
			var mu sync.Mutex

			queue := []Observable[T]{}
			outerDone := false
			innerLive := false

			current := NewSerialDisposable()
			subscriptions := NewCompositeDisposable()
			subscriptions.Add(current)

			var drain func()
			drain = func() {
				mu.Lock()
				if innerLive || len(queue) == 0 {
					finished := outerDone && !innerLive && len(queue) == 0
					mu.Unlock()

					if finished {
						sink.Complete()
					}

					return
				}

				next := queue[0]
				queue = queue[1:]
				innerLive = true
				mu.Unlock()

				current.Set(next.Subscribe(ctx, NewObserver(
					sink.Next,
					sink.Error,
					func() {
						mu.Lock()
						innerLive = false
						mu.Unlock()

						drain()
					},
				)))
			}

			subscriptions.Add(sources.Subscribe(ctx, NewObserver(
				func(inner Observable[T]) {
					mu.Lock()
					queue = append(queue, inner)
					mu.Unlock()

					drain()
				},
				sink.Error,
				func() {
					mu.Lock()
					outerDone = true
					mu.Unlock()

					drain()
				},
			)))

			return subscriptions.Dispose
		})
	}
}

// Concat subscribes to each source in turn, moving to the next only after
// the previous completed.
func Concat[T any](sources ...Observable[T]) Observable[T] {
	return Pipe1(Just(sources...), ConcatAll[T]())
}

// Zip2 pairs the two sources index by index through per-source FIFO queues:
// the n-th pair is emitted once both sides have produced their n-th value.
// It completes as soon as one side has completed with its queue drained (no
// further pair can form), emitting min(len(a), len(b)) pairs.
func Zip2[A, B any](obsA Observable[A], obsB Observable[B]) Observable[lo.Tuple2[A, B]] {
	return NewObservable(func(ctx context.Context, sink Observer[lo.Tuple2[A, B]]) Teardown {
		subscriptions := NewCompositeDisposable()

		var mu sync.Mutex

		var queueA []A

		var queueB []B

		var doneA, doneB bool

		// Single-drainer: the lock orders the pops, one goroutine at a time
		// performs the emissions, so pairs leave in index order while the
		// emission itself happens outside the lock.
		draining := false

		drain := func() {
			mu.Lock()
			if draining {
				mu.Unlock()
				return
			}

			draining = true

			for {
				if len(queueA) > 0 && len(queueB) > 0 {
					a, b := queueA[0], queueB[0]
					queueA = queueA[1:]
					queueB = queueB[1:]
					mu.Unlock()

					sink.Next(lo.T2(a, b))

					mu.Lock()

					continue
				}

				finished := (doneA && len(queueA) == 0) || (doneB && len(queueB) == 0)
				draining = false
				mu.Unlock()

				if finished {
					sink.Complete()
					subscriptions.Dispose()
				}

				return
			}
		}

		subscriptions.Add(obsA.Subscribe(ctx, NewObserver(
			func(value A) {
				mu.Lock()
				queueA = append(queueA, value)
				mu.Unlock()

				drain()
			},
			sink.Error,
			func() {
				mu.Lock()
				doneA = true
				mu.Unlock()

				drain()
			},
		)))

		subscriptions.Add(obsB.Subscribe(ctx, NewObserver(
			func(value B) {
				mu.Lock()
				queueB = append(queueB, value)
				mu.Unlock()

				drain()
			},
			sink.Error,
			func() {
				mu.Lock()
				doneB = true
				mu.Unlock()

				drain()
			},
		)))

		return subscriptions.Dispose
	})
}

// Zip3 is Zip2 over three sources.
func Zip3[A, B, C any](obsA Observable[A], obsB Observable[B], obsC Observable[C]) Observable[lo.Tuple3[A, B, C]] {
	paired := Zip2(Zip2(obsA, obsB), obsC)

	return Pipe1(paired, Map(func(t lo.Tuple2[lo.Tuple2[A, B], C]) lo.Tuple3[A, B, C] {
		return lo.T3(t.A.A, t.A.B, t.B)
	}))
}

// CombineLatest2 emits the pair of freshest values from both sources on
// every emission of either, once each side has produced at least one value.
// It completes when both sources have completed; any error is fatal.
func CombineLatest2[A, B any](obsA Observable[A], obsB Observable[B]) Observable[lo.Tuple2[A, B]] {
	return NewObservable(func(ctx context.Context, sink Observer[lo.Tuple2[A, B]]) Teardown {
		subscriptions := NewCompositeDisposable()

		var mu sync.Mutex

		var latestA A

		var latestB B

		var hasA, hasB bool

		remaining := 2

		oneDone := func() {
			mu.Lock()
			remaining--
			finished := remaining == 0
			mu.Unlock()

			if finished {
				sink.Complete()
			}
		}

		subscriptions.Add(obsA.Subscribe(ctx, NewObserver(
			func(value A) {
				mu.Lock()
				latestA = value
				hasA = true
				ready := hasB
				pair := lo.T2(latestA, latestB)
				mu.Unlock()

				if ready {
					sink.Next(pair)
				}
			},
			sink.Error,
			oneDone,
		)))

		subscriptions.Add(obsB.Subscribe(ctx, NewObserver(
			func(value B) {
				mu.Lock()
				latestB = value
				hasB = true
				ready := hasA
				pair := lo.T2(latestA, latestB)
				mu.Unlock()

				if ready {
					sink.Next(pair)
				}
			},
			sink.Error,
			oneDone,
		)))

		return subscriptions.Dispose
	})
}

// CombineLatest3 is CombineLatest2 over three sources.
func CombineLatest3[A, B, C any](obsA Observable[A], obsB Observable[B], obsC Observable[C]) Observable[lo.Tuple3[A, B, C]] {
	paired := CombineLatest2(CombineLatest2(obsA, obsB), obsC)

	return Pipe1(paired, Map(func(t lo.Tuple2[lo.Tuple2[A, B], C]) lo.Tuple3[A, B, C] {
		return lo.T3(t.A.A, t.A.B, t.B)
	}))
}

// SwitchAll flattens a stream of streams by always following the newest:
// each arriving inner Observable replaces — and unsubscribes — the previous
// one. The output completes when the outer has completed and the last inner
// has completed.
func SwitchAll[T any]() func(Observable[Observable[T]]) Observable[T] {
	return func(sources Observable[Observable[T]]) Observable[T] {
		return NewObservable(func(ctx context.Context, sink Observer[T]) Teardown {
			subscriptions := NewCompositeDisposable()
			current := NewSerialDisposable()
			subscriptions.Add(current)

			var mu sync.Mutex

			// generation stamps each inner so a terminal event from an
			// already-replaced inner cannot flip the live flags.
			generation := 0
			innerLive := false
			outerDone := false

			subscriptions.Add(sources.Subscribe(ctx, NewObserver(
				func(inner Observable[T]) {
					mu.Lock()
					generation++
					mine := generation
					innerLive = true
					mu.Unlock()

					current.Set(inner.Subscribe(ctx, NewObserver(
						sink.Next,
						sink.Error,
						func() {
							mu.Lock()
							if generation != mine {
								mu.Unlock()
								return
							}

							innerLive = false
							finished := outerDone
							mu.Unlock()

							if finished {
								sink.Complete()
							}
						},
					)))
				},
				sink.Error,
				func() {
					mu.Lock()
					outerDone = true
					finished := !innerLive
					mu.Unlock()

					if finished {
						sink.Complete()
					}
				},
			)))

			return subscriptions.Dispose
		})
	}
}

// SwitchMap projects every value to an inner Observable and follows only the
// newest: Map then SwitchAll.
func SwitchMap[T, R any](project func(value T) Observable[R]) func(Observable[T]) Observable[R] {
	return func(source Observable[T]) Observable[R] {
		return Pipe2(source, Map(project), SwitchAll[R]())
	}
}

// Amb subscribes to every source and races them: the first to produce any
// event — value or terminal — wins, the others are disposed, and from then
// on the output is exactly the winner's stream.
func Amb[T any](sources ...Observable[T]) Observable[T] {
	if len(sources) == 0 {
		return Empty[T]()
	}

	return NewObservable(func(ctx context.Context, sink Observer[T]) Teardown {
		var mu sync.Mutex

		winner := -1
		entries := make([]Disposable, len(sources))

		// claim resolves the race for contestant i. The losers' handles are
		// collected under the lock but disposed outside it.
		claim := func(i int) bool {
			var losers []Disposable

			mu.Lock()
			if winner == -1 {
				winner = i

				for j, entry := range entries {
					if j != i && entry != nil {
						losers = append(losers, entry)
					}
				}
			}

			won := winner == i
			mu.Unlock()

			for _, loser := range losers {
				loser.Dispose()
			}

			return won
		}

		for i, source := range sources {
			i := i

			mu.Lock()
			decided := winner != -1
			mu.Unlock()

			if decided {
				break
			}

			sub := source.Subscribe(ctx, NewObserver(
				func(value T) {
					if claim(i) {
						sink.Next(value)
					}
				},
				func(err error) {
					if claim(i) {
						sink.Error(err)
					}
				},
				func() {
					if claim(i) {
						sink.Complete()
					}
				},
			))

			mu.Lock()
			if winner == -1 || winner == i {
				entries[i] = sub
				mu.Unlock()
			} else {
				mu.Unlock()
				sub.Dispose()
			}
		}

		return func() {
			mu.Lock()
			all := make([]Disposable, 0, len(entries))

			for _, entry := range entries {
				if entry != nil {
					all = append(all, entry)
				}
			}
			mu.Unlock()

			for _, entry := range all {
				entry.Dispose()
			}
		}
	})
}

// StartWith prepends the given values before the source's own.
func StartWith[T any](values ...T) func(Observable[T]) Observable[T] {
	return func(source Observable[T]) Observable[T] {
		return NewObservable(func(ctx context.Context, sink Observer[T]) Teardown {
			for _, value := range values {
				sink.Next(value)
			}

			sub := source.Subscribe(ctx, NewObserver(
				sink.Next,
				sink.Error,
				sink.Complete,
			))

			return sub.Dispose
		})
	}
}

// EndWith appends the given values after the source completes; an error
// suppresses them.
func EndWith[T any](values ...T) func(Observable[T]) Observable[T] {
	return func(source Observable[T]) Observable[T] {
		return NewObservable(func(ctx context.Context, sink Observer[T]) Teardown {
			sub := source.Subscribe(ctx, NewObserver(
				sink.Next,
				sink.Error,
				func() {
					for _, value := range values {
						sink.Next(value)
					}

					sink.Complete()
				},
			))

			return sub.Dispose
		})
	}
}

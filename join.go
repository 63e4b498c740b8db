// Copyright 2025 The Streambed Authors
// SPDX-License-Identifier: Apache-2.0

package rx

import (
	"context"
	"sync"
)

// The join pattern synchronizes N sources into single results: And builds a
// Pattern of sources, Then binds it to a reducer yielding a Plan, and When
// activates one or more Plans. Arity is capped at 4, matching the fixed-
// arity Zip2/Zip3 and CombineLatest2/CombineLatest3 constructors.

// Pattern2 is a join pattern over two Observables, built with And2. It has
// no behavior of its own until bound to a reducer with Then2.
type Pattern2[A, B any] struct {
	a Observable[A]
	b Observable[B]
}

// And2 starts a join pattern over two Observables: a and b are matched
// pairwise, one queued element from each, in arrival order.
func And2[A, B any](a Observable[A], b Observable[B]) Pattern2[A, B] {
	return Pattern2[A, B]{a: a, b: b}
}

// Pattern3 is a join pattern over three Observables, built with And3.
type Pattern3[A, B, C any] struct {
	a Observable[A]
	b Observable[B]
	c Observable[C]
}

// And3 starts a join pattern over three Observables.
func And3[A, B, C any](a Observable[A], b Observable[B], c Observable[C]) Pattern3[A, B, C] {
	return Pattern3[A, B, C]{a: a, b: b, c: c}
}

// Pattern4 is a join pattern over four Observables, built with And4.
type Pattern4[A, B, C, D any] struct {
	a Observable[A]
	b Observable[B]
	c Observable[C]
	d Observable[D]
}

// And4 starts a join pattern over four Observables.
func And4[A, B, C, D any](a Observable[A], b Observable[B], c Observable[C], d Observable[D]) Pattern4[A, B, C, D] {
	return Pattern4[A, B, C, D]{a: a, b: b, c: c, d: d}
}

// Plan is a Pattern bound to a reducer. It does nothing on its own; it is
// activated by passing it, possibly alongside sibling Plans, to When.
type Plan[R any] struct {
	sources []Observable[any]
	reduce  func(values []any) R
}

// Then2 binds a two-source Pattern to a reducer.
func Then2[A, B, R any](p Pattern2[A, B], reduce func(a A, b B) R) Plan[R] {
	return Plan[R]{
		sources: []Observable[any]{eraseType(p.a), eraseType(p.b)},
		reduce: func(values []any) R {
			return reduce(values[0].(A), values[1].(B)) //nolint:forcetypeassert
		},
	}
}

// Then3 binds a three-source Pattern to a reducer.
func Then3[A, B, C, R any](p Pattern3[A, B, C], reduce func(a A, b B, c C) R) Plan[R] {
	return Plan[R]{
		sources: []Observable[any]{eraseType(p.a), eraseType(p.b), eraseType(p.c)},
		reduce: func(values []any) R {
			return reduce(values[0].(A), values[1].(B), values[2].(C)) //nolint:forcetypeassert
		},
	}
}

// Then4 binds a four-source Pattern to a reducer.
func Then4[A, B, C, D, R any](p Pattern4[A, B, C, D], reduce func(a A, b B, c C, d D) R) Plan[R] {
	return Plan[R]{
		sources: []Observable[any]{eraseType(p.a), eraseType(p.b), eraseType(p.c), eraseType(p.d)},
		reduce: func(values []any) R {
			return reduce(values[0].(A), values[1].(B), values[2].(C), values[3].(D)) //nolint:forcetypeassert
		},
	}
}

func eraseType[T any](source Observable[T]) Observable[any] {
	return Pipe1(source, Map(func(value T) any { return value }))
}

// When activates one or more Plans concurrently. Each Plan keeps a FIFO
// queue per source; whenever every queue of a Plan is non-empty, one element
// is dequeued from each and the reducer's result is emitted. Plans never
// share queues, even when built from the same Observable: each Plan
// subscribes its own observers to its sources.
//
// A Plan retires when one of its sources completes with its queue empty (no
// further match is possible). The output completes once every Plan has
// retired; any source error is fatal and tears everything down.
func When[R any](plans ...Plan[R]) Observable[R] {
	return NewObservable(func(ctx context.Context, sink Observer[R]) Teardown {
		if len(plans) == 0 {
			sink.Complete()
			return nil
		}

		var mu sync.Mutex

		retired := make([]bool, len(plans))
		remaining := len(plans)

		subscriptions := NewCompositeDisposable()

		retire := func(plan int) {
			mu.Lock()
			if !retired[plan] {
				retired[plan] = true
				remaining--
			}

			finished := remaining == 0
			mu.Unlock()

			if finished {
				sink.Complete()
			}
		}

		for i, plan := range plans {
			i := i

			subscriptions.AddTeardown(runPlan(ctx, plan, &mu, sink, func() {
				retire(i)
			}))
		}

		return subscriptions.Dispose
	})
}

// runPlan subscribes to every source of one Plan. The mutex is shared with
// sibling Plans so dispatch across Plans never races on the common sink; it
// is released around every downstream call.
func runPlan[R any](ctx context.Context, plan Plan[R], mu *sync.Mutex, sink Observer[R], onRetire func()) Teardown {
	n := len(plan.sources)
	queues := make([][]any, n)
	completed := make([]bool, n)
	dead := false

	tryMatch := func() {
		mu.Lock()

		if dead {
			mu.Unlock()
			return
		}

		for {
			matchable := true

			for i := range queues {
				if len(queues[i]) == 0 {
					matchable = false
					break
				}
			}

			if !matchable {
				break
			}

			values := make([]any, n)

			for i := range queues {
				values[i] = queues[i][0]
				queues[i] = queues[i][1:]
			}

			mu.Unlock()
			sink.Next(plan.reduce(values))
			mu.Lock()
		}

		for i := range queues {
			if completed[i] && len(queues[i]) == 0 {
				dead = true
				break
			}
		}

		retiredNow := dead

		mu.Unlock()

		if retiredNow {
			onRetire()
		}
	}

	subscriptions := NewCompositeDisposable()

	for i, source := range plan.sources {
		idx := i

		subscriptions.Add(source.Subscribe(ctx, NewObserver(
			func(value any) {
				mu.Lock()
				queues[idx] = append(queues[idx], value)
				mu.Unlock()

				tryMatch()
			},
			sink.Error,
			func() {
				mu.Lock()
				completed[idx] = true
				mu.Unlock()

				tryMatch()
			},
		)))
	}

	return subscriptions.Dispose
}

// Copyright 2025 The Streambed Authors
// SPDX-License-Identifier: Apache-2.0

// Package rxhll estimates stream cardinality with a HyperLogLog sketch: an
// approximate sibling to the exact Distinct/Length operators, for
// high-cardinality streams where an exact seen-set is too expensive.
package rxhll

import (
	"context"

	"github.com/axiomhq/hyperloglog"
	"github.com/streambed/rx"
)

// CountDistinctApprox inserts key(value) for every value into a HyperLogLog
// sketch and emits the cardinality estimate when the source completes.
func CountDistinctApprox[T any](key func(value T) []byte) func(rx.Observable[T]) rx.Observable[uint64] {
	return func(source rx.Observable[T]) rx.Observable[uint64] {
		return rx.NewObservable(func(ctx context.Context, sink rx.Observer[uint64]) rx.Teardown {
			sketch := hyperloglog.New16()

			sub := source.Subscribe(ctx, rx.NewObserver(
				func(value T) {
					sketch.Insert(key(value))
				},
				sink.Error,
				func() {
					sink.Next(sketch.Estimate())
					sink.Complete()
				},
			))

			return sub.Dispose
		})
	}
}

// Copyright 2025 The Streambed Authors
// SPDX-License-Identifier: Apache-2.0

package rx

import (
	"context"
	"sync"

	"github.com/samber/lo"
)

// Collect subscribes, blocks until the source terminates, and returns every
// value collected along the way. An error terminal is returned alongside the
// values seen before it; cancelling ctx aborts the wait, disposes the
// subscription and returns ctx.Err().
func Collect[T any](ctx context.Context, source Observable[T]) ([]T, error) {
	values := []T{}

	var terminal error

	done := make(chan struct{})

	sub := source.Subscribe(ctx, NewObserver(
		func(value T) {
			values = append(values, value)
		},
		func(err error) {
			terminal = err
			close(done)
		},
		func() {
			close(done)
		},
	))

	select {
	case <-done:
	case <-ctx.Done():
		sub.Dispose()
		return values, ctx.Err()
	}

	sub.Dispose()

	return values, terminal
}

// ToFuture subscribes and returns a one-shot channel that resolves when the
// source terminates: to the latched last value on completion, to the error
// on failure, and to ErrEmpty if the source completed without a value.
func ToFuture[T any](ctx context.Context, source Observable[T]) <-chan lo.Tuple2[T, error] {
	future := make(chan lo.Tuple2[T, error], 1)

	var last T

	hasValue := false

	source.Subscribe(ctx, NewObserver(
		func(value T) {
			last = value
			hasValue = true
		},
		func(err error) {
			var zero T
			future <- lo.T2(zero, err)
		},
		func() {
			if !hasValue {
				var zero T
				future <- lo.T2[T, error](zero, ErrEmpty)

				return
			}

			future <- lo.T2[T, error](last, nil)
		},
	))

	return future
}

// Wait blocks until the source terminates and returns its last value. It is
// shorthand for receiving from ToFuture, with ctx cancellation aborting the
// wait.
func Wait[T any](ctx context.Context, source Observable[T]) (T, error) {
	select {
	case result := <-ToFuture(ctx, source):
		return result.A, result.B
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Iterator is the blocking pull-side view over an Observable returned by
// ToIterator.
type Iterator[T any] struct {
	ch   chan T
	sub  Disposable
	done chan struct{}
	stop sync.Once

	mu  sync.Mutex
	err error
}

// ToIterator bridges an Observable to a blocking, pull-based Iterator. The
// producer is throttled: it blocks until the consumer pulls the pending
// value with Next or abandons the iterator with Dispose. The subscription is
// made on its own goroutine, so synchronous sources cannot deadlock against
// the not-yet-pulling consumer.
func ToIterator[T any](ctx context.Context, source Observable[T]) *Iterator[T] {
	it := &Iterator[T]{
		ch:   make(chan T),
		done: make(chan struct{}),
	}

	attached := NewSerialDisposable()
	it.sub = attached

	go func() {
		// The gate serializes Next against the terminal, so the channel is
		// never closed while a send is in flight.
		attached.Set(source.Subscribe(ctx, NewObserver(
			func(value T) {
				select {
				case it.ch <- value:
				case <-it.done:
				}
			},
			func(err error) {
				it.mu.Lock()
				it.err = err
				it.mu.Unlock()

				close(it.ch)
			},
			func() {
				close(it.ch)
			},
		)))
	}()

	return it
}

// Next blocks until the source emits a value, returned with true, or
// terminates, returning the zero value and false. After a false return, Err
// reports the terminal error, if any.
func (it *Iterator[T]) Next() (T, bool) {
	var zero T

	select {
	case value, ok := <-it.ch:
		if !ok {
			return zero, false
		}

		return value, true
	case <-it.done:
		return zero, false
	}
}

// Err returns the error the source terminated with, or nil if it completed
// normally or is still live.
func (it *Iterator[T]) Err() error {
	it.mu.Lock()
	defer it.mu.Unlock()

	return it.err
}

// Dispose cancels the underlying subscription and releases any blocked Next
// caller.
func (it *Iterator[T]) Dispose() {
	it.stop.Do(func() {
		close(it.done)
	})

	it.sub.Dispose()
}

// Copyright 2025 The Streambed Authors
// SPDX-License-Identifier: Apache-2.0

package rx

import (
	"context"
	"fmt"
)

// Observer consumes the events of an observable sequence. Implementations
// handed to Subscribe do not need to be thread-safe or idempotent: every
// subscription wraps its Observer in a gate that serializes delivery and
// enforces the Next* (Complete|Error)? grammar.
type Observer[T any] interface {
	Next(value T)
	Error(err error)
	Complete()
}

type callbackObserver[T any] struct {
	onNext     func(value T)
	onError    func(err error)
	onComplete func()
}

// NewObserver builds an Observer from up to three callbacks. Any of them may
// be nil: a nil onNext ignores values, a nil onComplete ignores completion,
// and a nil onError hands the error to the package-level OnUnhandledError
// hook. Production subscribers should pass an explicit onError.
func NewObserver[T any](onNext func(value T), onError func(err error), onComplete func()) Observer[T] {
	return &callbackObserver[T]{
		onNext:     onNext,
		onError:    onError,
		onComplete: onComplete,
	}
}

// OnNext is shorthand for an Observer that only cares about values.
func OnNext[T any](onNext func(value T)) Observer[T] {
	return NewObserver(onNext, nil, nil)
}

func (o *callbackObserver[T]) Next(value T) {
	if o.onNext != nil {
		o.onNext(value)
	}
}

func (o *callbackObserver[T]) Error(err error) {
	if o.onError != nil {
		o.onError(err)
		return
	}

	OnUnhandledError(context.Background(), err)
}

func (o *callbackObserver[T]) Complete() {
	if o.onComplete != nil {
		o.onComplete()
	}
}

// PrintObserver writes every event to standard output. It exists for
// examples and quick debugging.
func PrintObserver[T any]() Observer[T] {
	return NewObserver(
		func(value T) {
			fmt.Printf("Next: %v\n", value)
		},
		func(err error) {
			fmt.Printf("Error: %s\n", err.Error())
		},
		func() {
			fmt.Println("Completed")
		},
	)
}

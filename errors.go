// Copyright 2025 The Streambed Authors
// SPDX-License-Identifier: Apache-2.0

package rx

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrEmpty is the terminal error of First, Last and Wait over a
	// sequence that completed without emitting anything.
	ErrEmpty = errors.New("rx: empty sequence")

	// ErrOutOfRange is the terminal error of ElementAt when the source
	// completes before reaching the requested index.
	ErrOutOfRange = errors.New("rx: element index out of range")

	// ErrDisposed is returned by operations on a handle that has already
	// been disposed, such as RefCountDisposable.AddReference.
	ErrDisposed = errors.New("rx: already disposed")

	// ErrTimeout is the sentinel wrapped by the terminal error of Timeout.
	ErrTimeout = errors.New("rx: timeout")

	// Constructor argument panics. Misusing an operator is a programming
	// error, not a stream error, so these are raised eagerly at pipeline
	// build time rather than delivered to an Observer.
	ErrNegativeCount   = errors.New("rx: count must not be negative")
	ErrNonPositiveStep = errors.New("rx: step must be at least 1")
	ErrBadPoolSize     = errors.New("rx: pool size must be at least 1")
	ErrBadWindow       = errors.New("rx: window must be positive")
)

// TimeoutError is the terminal error delivered by Timeout. It unwraps to
// ErrTimeout so callers can match it with errors.Is.
type TimeoutError struct {
	After time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("rx: timeout after %s", e.After)
}

func (e *TimeoutError) Unwrap() error {
	return ErrTimeout
}

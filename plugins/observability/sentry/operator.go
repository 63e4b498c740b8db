// Copyright 2025 The Streambed Authors
// SPDX-License-Identifier: Apache-2.0

// Package rxsentry reports a stream's terminal errors to Sentry without
// altering the stream.
package rxsentry

import (
	"github.com/getsentry/sentry-go"
	"github.com/streambed/rx"
)

// CaptureErrors forwards every terminal error to the hub before propagating
// it downstream. Values and completion pass through untouched.
func CaptureErrors[T any](hub *sentry.Hub) func(rx.Observable[T]) rx.Observable[T] {
	return rx.Tap[T](
		nil,
		func(err error) {
			hub.CaptureException(err)
		},
		nil,
	)
}

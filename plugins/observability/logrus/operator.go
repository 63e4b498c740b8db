// Copyright 2025 The Streambed Authors
// SPDX-License-Identifier: Apache-2.0

// Package rxlogrus observes a stream through a logrus logger without
// altering it.
package rxlogrus

import (
	"github.com/sirupsen/logrus"
	"github.com/streambed/rx"
)

// Log records every event of the stream on logger at Debug level (values,
// completion) or Error level (errors), tagged with msg.
func Log[T any](logger *logrus.Logger, msg string) func(rx.Observable[T]) rx.Observable[T] {
	return rx.Tap[T](
		func(value T) {
			logger.WithField("event", "next").WithField("value", value).Debug(msg)
		},
		func(err error) {
			logger.WithField("event", "error").WithError(err).Error(msg)
		},
		func() {
			logger.WithField("event", "complete").Debug(msg)
		},
	)
}

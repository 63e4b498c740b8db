// Copyright 2025 The Streambed Authors
// SPDX-License-Identifier: Apache-2.0

// Package rxzap observes a stream through a zap logger without altering it.
package rxzap

import (
	"github.com/streambed/rx"
	"go.uber.org/zap"
)

// Log records every event of the stream on logger at Debug level (values,
// completion) or Error level (errors), tagged with msg.
func Log[T any](logger *zap.Logger, msg string) func(rx.Observable[T]) rx.Observable[T] {
	return rx.Tap[T](
		func(value T) {
			logger.Debug(msg, zap.String("event", "next"), zap.Any("value", value))
		},
		func(err error) {
			logger.Error(msg, zap.String("event", "error"), zap.Error(err))
		},
		func() {
			logger.Debug(msg, zap.String("event", "complete"))
		},
	)
}

// Copyright 2025 The Streambed Authors
// SPDX-License-Identifier: Apache-2.0

// Package rxslog observes a stream through log/slog without altering it.
package rxslog

import (
	"log/slog"

	"github.com/streambed/rx"
)

// Log records every event of the stream on logger at Debug level (values,
// completion) or Error level (errors), tagged with msg.
func Log[T any](logger *slog.Logger, msg string) func(rx.Observable[T]) rx.Observable[T] {
	return rx.Tap[T](
		func(value T) {
			logger.Debug(msg, slog.String("event", "next"), slog.Any("value", value))
		},
		func(err error) {
			logger.Error(msg, slog.String("event", "error"), slog.Any("error", err))
		},
		func() {
			logger.Debug(msg, slog.String("event", "complete"))
		},
	)
}

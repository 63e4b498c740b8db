// Copyright 2025 The Streambed Authors
// SPDX-License-Identifier: Apache-2.0

// Package rxzerolog observes a stream through a zerolog logger without
// altering it.
package rxzerolog

import (
	"github.com/rs/zerolog"
	"github.com/streambed/rx"
)

// Log records every event of the stream on logger at Debug level (values,
// completion) or Error level (errors), tagged with msg.
func Log[T any](logger zerolog.Logger, msg string) func(rx.Observable[T]) rx.Observable[T] {
	return rx.Tap[T](
		func(value T) {
			logger.Debug().Str("event", "next").Interface("value", value).Msg(msg)
		},
		func(err error) {
			logger.Error().Str("event", "error").Err(err).Msg(msg)
		},
		func() {
			logger.Debug().Str("event", "complete").Msg(msg)
		},
	)
}

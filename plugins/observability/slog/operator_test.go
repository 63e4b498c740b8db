// Copyright 2025 The Streambed Authors
// SPDX-License-Identifier: Apache-2.0

package rxslog

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/streambed/rx"
	"github.com/stretchr/testify/assert"
)

func TestLogRecordsEvents(t *testing.T) {
	is := assert.New(t)

	var buf bytes.Buffer

	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	values, err := rx.Collect(context.Background(), rx.Pipe1(
		rx.Just(1, 2),
		Log[int](logger, "pipeline"),
	))
	is.Equal([]int{1, 2}, values)
	is.NoError(err)

	out := buf.String()
	is.Contains(out, "event=next")
	is.Contains(out, "event=complete")
	is.Contains(out, "pipeline")
}

func TestLogRecordsError(t *testing.T) {
	is := assert.New(t)

	var buf bytes.Buffer

	logger := slog.New(slog.NewTextHandler(&buf, nil))

	_, err := rx.Collect(context.Background(), rx.Pipe1(
		rx.Throw[int](assert.AnError),
		Log[int](logger, "pipeline"),
	))
	is.Error(err)
	is.Contains(buf.String(), "event=error")
}

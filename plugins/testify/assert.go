// Copyright 2025 The Streambed Authors
// SPDX-License-Identifier: Apache-2.0

// Package rxtestify packages assertion helpers for testing Observable
// pipelines, the public-facing counterpart to the library's own test suite.
package rxtestify

import (
	"context"
	"testing"

	"github.com/streambed/rx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// AssertEmissions collects the source and asserts it completed with exactly
// the expected values.
func AssertEmissions[T any](t *testing.T, source rx.Observable[T], expected []T) bool {
	t.Helper()

	values, err := rx.Collect(context.Background(), source)

	return assert.NoError(t, err) && assert.Equal(t, expected, values)
}

// AssertError collects the source and asserts it terminated with expected.
func AssertError[T any](t *testing.T, source rx.Observable[T], expected error) bool {
	t.Helper()

	_, err := rx.Collect(context.Background(), source)

	return assert.ErrorIs(t, err, expected)
}

// RequireComplete collects the source and fails the test immediately if it
// terminated with an error.
func RequireComplete[T any](t *testing.T, source rx.Observable[T]) []T {
	t.Helper()

	values, err := rx.Collect(context.Background(), source)
	require.NoError(t, err)

	return values
}

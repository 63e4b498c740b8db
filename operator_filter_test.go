// Copyright 2025 The Streambed Authors
// SPDX-License-Identifier: Apache-2.0

package rx

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOperatorFilter(t *testing.T) {
	t.Parallel()
	is := assert.New(t)

	even := func(v int) bool { return v%2 == 0 }

	values, err := collect(Pipe1(Just(1, 2, 3, 4, 5), Filter(even)))
	is.Equal([]int{2, 4}, values)
	is.NoError(err)

	values, err = collect(Pipe1(Throw[int](assert.AnError), Filter(even)))
	is.Equal([]int{}, values)
	is.EqualError(err, assert.AnError.Error())
}

func TestOperatorTake(t *testing.T) {
	t.Parallel()
	is := assert.New(t)

	values, err := collect(Pipe1(Just(1, 2, 3, 4), Take[int](2)))
	is.Equal([]int{1, 2}, values)
	is.NoError(err)

	// Shorter source completes on its own terms.
	values, err = collect(Pipe1(Just(1), Take[int](5)))
	is.Equal([]int{1}, values)
	is.NoError(err)

	values, err = collect(Pipe1(Just(1, 2), Take[int](0)))
	is.Equal([]int{}, values)
	is.NoError(err)

	is.PanicsWithError(ErrNegativeCount.Error(), func() { Take[int](-1) })
}

func TestOperatorTakeUnsubscribesUpstream(t *testing.T) {
	t.Parallel()
	is := assert.New(t)

	torn := false

	source := NewObservable(func(ctx context.Context, sink Observer[int]) Teardown {
		sink.Next(1)
		sink.Next(2)
		sink.Next(3)

		return func() { torn = true }
	})

	values, err := collect(Pipe1(source, Take[int](2)))
	is.Equal([]int{1, 2}, values)
	is.NoError(err)
	is.True(torn)
}

func TestOperatorSkip(t *testing.T) {
	t.Parallel()
	is := assert.New(t)

	values, err := collect(Pipe1(Just(1, 2, 3, 4), Skip[int](2)))
	is.Equal([]int{3, 4}, values)
	is.NoError(err)

	values, err = collect(Pipe1(Just(1, 2), Skip[int](5)))
	is.Equal([]int{}, values)
	is.NoError(err)
}

func TestOperatorTakeWhileSkipWhile(t *testing.T) {
	t.Parallel()
	is := assert.New(t)

	small := func(v int) bool { return v < 3 }

	values, err := collect(Pipe1(Just(1, 2, 3, 1, 2), TakeWhile(small)))
	is.Equal([]int{1, 2}, values)
	is.NoError(err)

	values, err = collect(Pipe1(Just(1, 2, 3, 1, 2), SkipWhile(small)))
	is.Equal([]int{3, 1, 2}, values)
	is.NoError(err)
}

func TestOperatorTakeLast(t *testing.T) {
	t.Parallel()
	is := assert.New(t)

	values, err := collect(Pipe1(Just(1, 2, 3, 4, 5), TakeLast[int](2)))
	is.Equal([]int{4, 5}, values)
	is.NoError(err)

	values, err = collect(Pipe1(Just(1), TakeLast[int](3)))
	is.Equal([]int{1}, values)
	is.NoError(err)
}

func TestOperatorSkipLast(t *testing.T) {
	t.Parallel()
	is := assert.New(t)

	values, err := collect(Pipe1(Just(1, 2, 3, 4, 5), SkipLast[int](2)))
	is.Equal([]int{1, 2, 3}, values)
	is.NoError(err)

	values, err = collect(Pipe1(Just(1, 2), SkipLast[int](5)))
	is.Equal([]int{}, values)
	is.NoError(err)
}

func TestOperatorDistinct(t *testing.T) {
	t.Parallel()
	is := assert.New(t)

	values, err := collect(Pipe1(Just(1, 2, 1, 3, 2, 1), Distinct[int]()))
	is.Equal([]int{1, 2, 3}, values)
	is.NoError(err)
}

func TestOperatorDistinctUntilChanged(t *testing.T) {
	t.Parallel()
	is := assert.New(t)

	values, err := collect(Pipe1(Just(1, 1, 2, 2, 2, 1, 3, 3), DistinctUntilChanged[int]()))
	is.Equal([]int{1, 2, 1, 3}, values)
	is.NoError(err)
}

func TestOperatorIgnoreElements(t *testing.T) {
	t.Parallel()
	is := assert.New(t)

	values, err := collect(Pipe1(Just(1, 2, 3), IgnoreElements[int]()))
	is.Equal([]int{}, values)
	is.NoError(err)

	values, err = collect(Pipe1(Concat(Just(1), Throw[int](assert.AnError)), IgnoreElements[int]()))
	is.Equal([]int{}, values)
	is.EqualError(err, assert.AnError.Error())
}

func TestOperatorFirst(t *testing.T) {
	t.Parallel()
	is := assert.New(t)

	values, err := collect(Pipe1(Just(1, 2, 3), First[int]()))
	is.Equal([]int{1}, values)
	is.NoError(err)

	values, err = collect(Pipe1(Empty[int](), First[int]()))
	is.Equal([]int{}, values)
	is.ErrorIs(err, ErrEmpty)
}

func TestOperatorLast(t *testing.T) {
	t.Parallel()
	is := assert.New(t)

	values, err := collect(Pipe1(Just(1, 2, 3), Last[int]()))
	is.Equal([]int{3}, values)
	is.NoError(err)

	values, err = collect(Pipe1(Empty[int](), Last[int]()))
	is.Equal([]int{}, values)
	is.ErrorIs(err, ErrEmpty)
}

func TestOperatorElementAt(t *testing.T) {
	t.Parallel()
	is := assert.New(t)

	values, err := collect(Pipe1(Just(10, 11, 12), ElementAt[int](1)))
	is.Equal([]int{11}, values)
	is.NoError(err)

	values, err = collect(Pipe1(Just(10, 11, 12), ElementAt[int](7)))
	is.Equal([]int{}, values)
	is.ErrorIs(err, ErrOutOfRange)
}

func TestOperatorOfType(t *testing.T) {
	t.Parallel()
	is := assert.New(t)

	values, err := collect(Pipe1(Just[any](1, "two", 3, 4.0, 5), OfType[any, int]()))
	is.Equal([]int{1, 3, 5}, values)
	is.NoError(err)

	strings, err := collect(Pipe1(Just[any](1, 2), OfType[any, string]()))
	is.Equal([]string{}, strings)
	is.NoError(err)
}

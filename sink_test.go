// Copyright 2025 The Streambed Authors
// SPDX-License-Identifier: Apache-2.0

package rx

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSinkCollect(t *testing.T) {
	t.Parallel()
	is := assert.New(t)

	values, err := Collect(context.Background(), Just(1, 2, 3))
	is.Equal([]int{1, 2, 3}, values)
	is.NoError(err)

	values, err = Collect(context.Background(), Empty[int]())
	is.Equal([]int{}, values)
	is.NoError(err)

	// Values before the error are kept.
	values, err = Collect(context.Background(), Concat(Just(1), Throw[int](assert.AnError)))
	is.Equal([]int{1}, values)
	is.EqualError(err, assert.AnError.Error())
}

func TestSinkCollectContextCancel(t *testing.T) {
	t.Parallel()
	testWithTimeout(t, time.Second)
	is := assert.New(t)

	ctx, cancel := context.WithCancel(context.Background())

	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	_, err := Collect(ctx, Never[int]())
	is.ErrorIs(err, context.Canceled)
}

func TestSinkWait(t *testing.T) {
	t.Parallel()
	is := assert.New(t)

	value, err := Wait(context.Background(), Just(1, 2, 3))
	is.Equal(3, value)
	is.NoError(err)

	_, err = Wait(context.Background(), Empty[int]())
	is.ErrorIs(err, ErrEmpty)

	_, err = Wait(context.Background(), Throw[int](assert.AnError))
	is.EqualError(err, assert.AnError.Error())
}

func TestSinkToFuture(t *testing.T) {
	t.Parallel()
	testWithTimeout(t, time.Second)
	is := assert.New(t)

	result := <-ToFuture(context.Background(), Just("a", "b", "c"))
	is.Equal("c", result.A)
	is.NoError(result.B)

	result = <-ToFuture(context.Background(), Throw[string](assert.AnError))
	is.EqualError(result.B, assert.AnError.Error())
}

func TestSinkToIterator(t *testing.T) {
	t.Parallel()
	testWithTimeout(t, time.Second)
	is := assert.New(t)

	it := ToIterator(context.Background(), Just(1, 2, 3))

	values := []int{}

	for {
		value, ok := it.Next()
		if !ok {
			break
		}

		values = append(values, value)
	}

	is.Equal([]int{1, 2, 3}, values)
	is.NoError(it.Err())
}

func TestSinkToIteratorError(t *testing.T) {
	t.Parallel()
	testWithTimeout(t, time.Second)
	is := assert.New(t)

	it := ToIterator(context.Background(), Concat(Just(1), Throw[int](assert.AnError)))

	value, ok := it.Next()
	is.Equal(1, value)
	is.True(ok)

	_, ok = it.Next()
	is.False(ok)
	is.EqualError(it.Err(), assert.AnError.Error())
}

func TestSinkToIteratorDisposeUnblocks(t *testing.T) {
	t.Parallel()
	testWithTimeout(t, time.Second)
	is := assert.New(t)

	it := ToIterator(context.Background(), Never[int]())

	released := make(chan struct{})

	go func() {
		_, ok := it.Next()
		is.False(ok)
		close(released)
	}()

	time.Sleep(10 * time.Millisecond)
	it.Dispose()
	<-released
}

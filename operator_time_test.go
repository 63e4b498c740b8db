// Copyright 2025 The Streambed Authors
// SPDX-License-Identifier: Apache-2.0

package rx

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestOperatorDebounceKeepsLastOfBurst(t *testing.T) {
	t.Parallel()
	testWithTimeout(t, 2*time.Second)
	is := assert.New(t)

	subject := NewSubject[int]()

	seen := events[int]{}
	sub := Pipe1[int](subject, Debounce[int](40*time.Millisecond)).
		Subscribe(context.Background(), seen.observer())
	defer sub.Dispose()

	// A burst: only the last value survives, delayed.
	subject.Next(1)
	subject.Next(2)
	subject.Next(3)

	is.Empty(seen.Values())

	time.Sleep(80 * time.Millisecond)
	is.Equal([]int{3}, seen.Values())

	// A second burst, interrupted by completion: flushed immediately.
	subject.Next(4)
	subject.Complete()

	is.Equal([]int{3, 4}, seen.Values())
	is.Equal(1, seen.Completes())
}

func TestOperatorDebounceErrorDropsPending(t *testing.T) {
	t.Parallel()
	testWithTimeout(t, time.Second)
	is := assert.New(t)

	subject := NewSubject[int]()

	seen := events[int]{}
	sub := Pipe1[int](subject, Debounce[int](50*time.Millisecond)).
		Subscribe(context.Background(), seen.observer())
	defer sub.Dispose()

	subject.Next(1)
	subject.Error(assert.AnError)

	is.Empty(seen.Values())
	is.Len(seen.Errs(), 1)
}

func TestOperatorSampleEmitsFreshest(t *testing.T) {
	t.Parallel()
	testWithTimeout(t, 2*time.Second)
	is := assert.New(t)

	subject := NewSubject[int]()

	seen := events[int]{}
	sub := Pipe1[int](subject, Sample[int](30*time.Millisecond)).
		Subscribe(context.Background(), seen.observer())
	defer sub.Dispose()

	subject.Next(1)
	subject.Next(2)

	time.Sleep(50 * time.Millisecond)
	is.Equal([]int{2}, seen.Values())

	// An idle period emits nothing new.
	time.Sleep(50 * time.Millisecond)
	is.Equal([]int{2}, seen.Values())

	// Completion flushes an unsampled value.
	subject.Next(3)
	subject.Complete()

	is.Equal([]int{2, 3}, seen.Values())
	is.Equal(1, seen.Completes())
}

func TestOperatorBufferFlushesOnCount(t *testing.T) {
	t.Parallel()
	testWithTimeout(t, time.Second)
	is := assert.New(t)

	values, err := collect(Pipe1(
		Just(1, 2, 3, 4, 5),
		Buffer[int](time.Second, 2),
	))
	is.Equal([][]int{{1, 2}, {3, 4}, {5}}, values)
	is.NoError(err)
}

func TestOperatorBufferFlushesOnWindow(t *testing.T) {
	t.Parallel()
	testWithTimeout(t, 2*time.Second)
	is := assert.New(t)

	subject := NewSubject[int]()

	seen := events[[]int]{}
	sub := Pipe1[int](subject, Buffer[int](40*time.Millisecond, 0)).
		Subscribe(context.Background(), seen.observer())
	defer sub.Dispose()

	subject.Next(1)
	subject.Next(2)

	time.Sleep(70 * time.Millisecond)
	is.Equal([][]int{{1, 2}}, seen.Values())

	subject.Next(3)
	subject.Complete()

	is.Equal([][]int{{1, 2}, {3}}, seen.Values())
	is.Equal(1, seen.Completes())
}

func TestOperatorWindowRotates(t *testing.T) {
	t.Parallel()
	testWithTimeout(t, 2*time.Second)
	is := assert.New(t)

	subject := NewSubject[int]()

	// The rotation ticker delivers new windows off the main goroutine, so
	// the recording is mutex-guarded.
	var mu sync.Mutex

	windows := [][]int{}

	sub := Pipe1[int](subject, Window[int](40*time.Millisecond)).
		Subscribe(context.Background(), OnNext(func(w Observable[int]) {
			mu.Lock()
			index := len(windows)
			windows = append(windows, nil)
			mu.Unlock()

			w.Subscribe(context.Background(), OnNext(func(v int) {
				mu.Lock()
				windows[index] = append(windows[index], v)
				mu.Unlock()
			}))
		}))
	defer sub.Dispose()

	subject.Next(1)
	subject.Next(2)

	time.Sleep(60 * time.Millisecond)

	subject.Next(3)
	subject.Complete()

	mu.Lock()
	defer mu.Unlock()

	is.GreaterOrEqual(len(windows), 2)
	is.Equal([]int{1, 2}, windows[0])
	is.Equal([]int{3}, windows[len(windows)-1])
}

func TestOperatorDelayShiftsEmissions(t *testing.T) {
	t.Parallel()
	testWithTimeout(t, 2*time.Second)
	is := assert.New(t)

	started := time.Now()

	values, err := collect(Pipe1(Just(1, 2), Delay[int](40*time.Millisecond)))
	is.Equal([]int{1, 2}, values)
	is.NoError(err)
	is.GreaterOrEqual(time.Since(started), 40*time.Millisecond)
}

func TestOperatorDelayErrorIsImmediate(t *testing.T) {
	t.Parallel()
	testWithTimeout(t, time.Second)
	is := assert.New(t)

	started := time.Now()

	_, err := collect(Pipe1(Throw[int](assert.AnError), Delay[int](300*time.Millisecond)))
	is.EqualError(err, assert.AnError.Error())
	is.Less(time.Since(started), 200*time.Millisecond)
}

func TestOperatorTimeoutFires(t *testing.T) {
	t.Parallel()
	testWithTimeout(t, 2*time.Second)
	is := assert.New(t)

	_, err := collect(Pipe1(Never[int](), Timeout[int](30*time.Millisecond)))
	is.ErrorIs(err, ErrTimeout)

	var timeoutErr *TimeoutError

	is.ErrorAs(err, &timeoutErr)
	is.Equal(30*time.Millisecond, timeoutErr.After)
}

func TestOperatorTimeoutRearmsOnEveryValue(t *testing.T) {
	t.Parallel()
	testWithTimeout(t, 2*time.Second)
	is := assert.New(t)

	// Values keep arriving inside the deadline, then the source completes:
	// no timeout.
	values, err := collect(Pipe1(
		Pipe1(Interval(20*time.Millisecond), Take[int64](3)),
		Timeout[int64](100*time.Millisecond),
	))
	is.Equal([]int64{0, 1, 2}, values)
	is.NoError(err)
}

func TestOperatorTimestamp(t *testing.T) {
	t.Parallel()
	is := assert.New(t)

	before := time.Now()

	values, err := collect(Pipe1(Just(1, 2), Timestamp[int]()))
	is.Len(values, 2)
	is.NoError(err)

	for i, stamped := range values {
		is.Equal(i+1, stamped.Value)
		is.False(stamped.At.Before(before))
	}
}

func TestOperatorTimeInterval(t *testing.T) {
	t.Parallel()
	testWithTimeout(t, 2*time.Second)
	is := assert.New(t)

	values, err := collect(Pipe1(
		Pipe1(Interval(30*time.Millisecond), Take[int64](2)),
		TimeInterval[int64](),
	))
	is.Len(values, 2)
	is.NoError(err)

	for _, spaced := range values {
		is.GreaterOrEqual(spaced.Since, 20*time.Millisecond)
	}
}

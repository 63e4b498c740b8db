// Copyright 2025 The Streambed Authors
// SPDX-License-Identifier: Apache-2.0

package rx

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestJoinWhenSinglePlan(t *testing.T) {
	t.Parallel()
	testWithTimeout(t, time.Second)
	is := assert.New(t)

	letters := NewSubject[string]()
	numbers := NewSubject[int]()

	plan := Then2(And2[string, int](letters, numbers), func(s string, n int) string {
		return s + string(rune('0'+n))
	})

	seen := events[string]{}
	sub := When(plan).Subscribe(context.Background(), seen.observer())
	defer sub.Dispose()

	// Values queue per source until a counterpart arrives.
	letters.Next("A")
	letters.Next("B")
	is.Empty(seen.Values())

	numbers.Next(1)
	is.Equal([]string{"A1"}, seen.Values())

	numbers.Next(2)
	is.Equal([]string{"A1", "B2"}, seen.Values())
}

func TestJoinWhenRetiresOnEmptyCompletedQueue(t *testing.T) {
	t.Parallel()
	testWithTimeout(t, time.Second)
	is := assert.New(t)

	letters := NewSubject[string]()
	numbers := NewSubject[int]()

	plan := Then2(And2[string, int](letters, numbers), func(s string, n int) string {
		return s
	})

	seen := events[string]{}
	sub := When(plan).Subscribe(context.Background(), seen.observer())
	defer sub.Dispose()

	letters.Next("A")
	numbers.Next(1)

	// One source completes with its queue drained: no further match is
	// possible and the plan retires, completing the composite.
	letters.Complete()

	is.Equal([]string{"A"}, seen.Values())
	is.Equal(1, seen.Completes())
}

func TestJoinWhenPendingQueueDelaysRetirement(t *testing.T) {
	t.Parallel()
	testWithTimeout(t, time.Second)
	is := assert.New(t)

	letters := NewSubject[string]()
	numbers := NewSubject[int]()

	plan := Then2(And2[string, int](letters, numbers), func(s string, n int) string {
		return s
	})

	seen := events[string]{}
	sub := When(plan).Subscribe(context.Background(), seen.observer())
	defer sub.Dispose()

	// The completed source still has a queued value: a match is still
	// possible, so the plan stays live until it is consumed.
	letters.Next("A")
	letters.Complete()
	is.Zero(seen.Completes())

	numbers.Next(1)

	is.Equal([]string{"A"}, seen.Values())
	is.Equal(1, seen.Completes())
}

func TestJoinWhenPropagatesError(t *testing.T) {
	t.Parallel()
	testWithTimeout(t, time.Second)
	is := assert.New(t)

	letters := NewSubject[string]()
	numbers := NewSubject[int]()

	plan := Then2(And2[string, int](letters, numbers), func(s string, n int) string {
		return s
	})

	seen := events[string]{}
	sub := When(plan).Subscribe(context.Background(), seen.observer())
	defer sub.Dispose()

	numbers.Error(assert.AnError)

	is.Len(seen.Errs(), 1)
	is.Zero(seen.Completes())
}

func TestJoinWhenMultiplePlans(t *testing.T) {
	t.Parallel()
	testWithTimeout(t, time.Second)
	is := assert.New(t)

	a := NewSubject[int]()
	b := NewSubject[int]()
	c := NewSubject[int]()

	sum := Then2(And2[int, int](a, b), func(x, y int) int { return x + y })
	product := Then2(And2[int, int](a, c), func(x, y int) int { return x * y })

	seen := events[int]{}
	sub := When(sum, product).Subscribe(context.Background(), seen.observer())
	defer sub.Dispose()

	// Each plan owns independent queues, even over the shared source a.
	a.Next(3)
	b.Next(4)
	is.Equal([]int{7}, seen.Values())

	c.Next(5)
	is.Equal([]int{7, 15}, seen.Values())

	// The composite completes only when every plan has retired.
	b.Complete()
	is.Zero(seen.Completes())

	c.Complete()
	is.Equal(1, seen.Completes())
}

func TestJoinThen3(t *testing.T) {
	t.Parallel()
	testWithTimeout(t, time.Second)
	is := assert.New(t)

	plan := Then3(
		And3(Just(1), Just(10), Just(100)),
		func(a, b, c int) int { return a + b + c },
	)

	values, err := collect(When(plan))
	is.Equal([]int{111}, values)
	is.NoError(err)
}

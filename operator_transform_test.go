// Copyright 2025 The Streambed Authors
// SPDX-License-Identifier: Apache-2.0

package rx

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestOperatorMap(t *testing.T) {
	t.Parallel()
	is := assert.New(t)

	values, err := collect(Pipe1(Just(1, 2, 3), Map(strconv.Itoa)))
	is.Equal([]string{"1", "2", "3"}, values)
	is.NoError(err)

	values, err = collect(Pipe1(Throw[int](assert.AnError), Map(strconv.Itoa)))
	is.Equal([]string{}, values)
	is.EqualError(err, assert.AnError.Error())
}

func TestOperatorMapPanicBecomesError(t *testing.T) {
	t.Parallel()
	is := assert.New(t)

	values, err := collect(Pipe1(Just(1, 2, 3), Map(func(v int) int {
		if v == 2 {
			panic(assert.AnError)
		}

		return v * 10
	})))
	is.Equal([]int{10}, values)
	is.EqualError(err, assert.AnError.Error())
}

func TestOperatorScan(t *testing.T) {
	t.Parallel()
	is := assert.New(t)

	values, err := collect(Pipe1(Just(1, 2, 3, 4), Scan(func(acc, v int) int { return acc + v }, 0)))
	is.Equal([]int{1, 3, 6, 10}, values)
	is.NoError(err)

	values, err = collect(Pipe1(Empty[int](), Scan(func(acc, v int) int { return acc + v }, 0)))
	is.Equal([]int{}, values)
	is.NoError(err)
}

func TestOperatorGroupBy(t *testing.T) {
	t.Parallel()
	testWithTimeout(t, time.Second)
	is := assert.New(t)

	parity := func(v int) string {
		if v%2 == 0 {
			return "even"
		}

		return "odd"
	}

	keys := []string{}
	byKey := map[string][]int{}
	completions := map[string]int{}

	groups := Pipe1(Just(1, 2, 3, 4, 5), GroupBy(parity))

	_, err := Collect(context.Background(), Pipe1(groups, Map(func(g GroupedObservable[string, int]) string {
		keys = append(keys, g.Key())

		g.Subscribe(context.Background(), NewObserver(
			func(v int) { byKey[g.Key()] = append(byKey[g.Key()], v) },
			nil,
			func() { completions[g.Key()]++ },
		))

		return g.Key()
	})))
	is.NoError(err)

	// Groups appear in first-seen order and carry their members.
	is.Equal([]string{"odd", "even"}, keys)
	is.Equal([]int{1, 3, 5}, byKey["odd"])
	is.Equal([]int{2, 4}, byKey["even"])

	// Groups complete with the parent.
	is.Equal(1, completions["odd"])
	is.Equal(1, completions["even"])
}

func TestOperatorGroupByErrorReachesGroups(t *testing.T) {
	t.Parallel()
	testWithTimeout(t, time.Second)
	is := assert.New(t)

	groupErrs := 0

	source := Concat(Just(1, 2, 3), Throw[int](assert.AnError))

	_, err := Collect(context.Background(), Pipe1(
		Pipe1(source, GroupBy(func(v int) int { return v % 2 })),
		Map(func(g GroupedObservable[int, int]) int {
			g.Subscribe(context.Background(), NewObserver(
				func(int) {},
				func(error) { groupErrs++ },
				nil,
			))

			return g.Key()
		}),
	))

	is.EqualError(err, assert.AnError.Error())
	is.Equal(2, groupErrs)
}

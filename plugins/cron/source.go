// Copyright 2025 The Streambed Authors
// SPDX-License-Identifier: Apache-2.0

// Package rxcron adapts gocron schedules into Observable sources: every job
// run becomes an emission, and disposing the subscription shuts the
// scheduler down.
package rxcron

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/streambed/rx"
)

// Tick is one firing of a scheduled job.
type Tick struct {
	At time.Time
	N  int64
}

// Schedule emits a Tick on every firing of the given job definition, e.g.
// gocron.CronJob("*/5 * * * *", false) or gocron.DurationJob(time.Minute).
// A scheduler construction failure terminates the sequence with that error.
func Schedule(definition gocron.JobDefinition) rx.Observable[Tick] {
	return rx.NewObservable(func(ctx context.Context, sink rx.Observer[Tick]) rx.Teardown {
		scheduler, err := gocron.NewScheduler()
		if err != nil {
			sink.Error(err)
			return nil
		}

		var n int64

		_, err = scheduler.NewJob(definition, gocron.NewTask(func() {
			sink.Next(Tick{At: time.Now(), N: atomic.AddInt64(&n, 1) - 1})
		}))
		if err != nil {
			sink.Error(err)
			return nil
		}

		scheduler.Start()

		return func() {
			_ = scheduler.Shutdown()
		}
	})
}

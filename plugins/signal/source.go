// Copyright 2025 The Streambed Authors
// SPDX-License-Identifier: Apache-2.0

// Package rxsignal adapts OS signals into an Observable source, typically
// the head of a graceful-shutdown pipeline.
package rxsignal

import (
	"context"
	"os"
	"os/signal"

	"github.com/streambed/rx"
)

// Notify emits every delivery of the given signals until the subscription is
// disposed. With no signals listed, all incoming signals are emitted.
func Notify(signals ...os.Signal) rx.Observable[os.Signal] {
	return rx.NewObservable(func(ctx context.Context, sink rx.Observer[os.Signal]) rx.Teardown {
		ch := make(chan os.Signal, 1)
		signal.Notify(ch, signals...)

		stop := make(chan struct{})

		go func() {
			for {
				select {
				case sig := <-ch:
					sink.Next(sig)
				case <-ctx.Done():
					return
				case <-stop:
					return
				}
			}
		}()

		return func() {
			signal.Stop(ch)
			close(stop)
		}
	})
}

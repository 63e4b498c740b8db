// Copyright 2025 The Streambed Authors
// SPDX-License-Identifier: Apache-2.0

package rx

import (
	"context"

	"github.com/samber/lo"
)

// Observable is a lazy description of a stream of T. Subscribing is the only
// way to make it do anything; every subscription is an independent run
// unless the Observable multicasts (Subject, ConnectableObservable).
//
// The ctx is threaded through the whole pipeline so Go-style cancellation
// composes with Disposable-style cancellation: blocking stages watch
// ctx.Done() in addition to their own disposal.
type Observable[T any] interface {
	Subscribe(ctx context.Context, destination Observer[T]) Disposable
}

type observable[T any] struct {
	onSubscribe func(ctx context.Context, sink Observer[T]) Teardown
}

// NewObservable builds an Observable from a subscribe function. For each
// Subscribe call, onSubscribe receives a fresh sink already wrapped in the
// protocol gate: it may emit from any goroutine, terminal events are
// exclusive, and events after termination or disposal are dropped. The
// returned Teardown (which may be nil) runs when the subscription ends, by
// either terminal event or disposal.
//
// A panic inside onSubscribe itself is delivered to the sink as an Error.
func NewObservable[T any](onSubscribe func(ctx context.Context, sink Observer[T]) Teardown) Observable[T] {
	return &observable[T]{onSubscribe: onSubscribe}
}

func (o *observable[T]) Subscribe(ctx context.Context, destination Observer[T]) Disposable {
	sink := newSubscriber(ctx, destination)

	lo.TryCatchWithErrorValue(
		func() error {
			sink.addTeardown(o.onSubscribe(ctx, sink))
			return nil
		},
		func(r any) {
			sink.Error(recoveredToError(r))
		},
	)

	return sink
}

// SubscribeFunc subscribes with up to three callbacks instead of an
// Observer. Nil callbacks follow the NewObserver defaults; in particular a
// nil onError routes errors to OnUnhandledError.
func SubscribeFunc[T any](ctx context.Context, source Observable[T], onNext func(value T), onError func(err error), onComplete func()) Disposable {
	return source.Subscribe(ctx, NewObserver(onNext, onError, onComplete))
}

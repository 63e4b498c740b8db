// Copyright 2025 The Streambed Authors
// SPDX-License-Identifier: Apache-2.0

// Package rx is a push-based reactive streams library: a composable algebra
// of observable sequences, an operator set that transforms them, and a
// scheduler abstraction that decides where work runs.
//
// An Observable is a lazy description of a stream. Nothing happens until
// Subscribe is called; each subscription is an independent run of the stream
// (unless multicast through a Subject or a ConnectableObservable). Events
// delivered to an Observer always follow the grammar
//
//	Next* (Complete | Error)?
//
// and the Disposable returned by Subscribe cancels the whole run, upstream
// included.
//
// Operators are plain functions from Observable to Observable, composed with
// Pipe:
//
//	even := func(v int64) bool { return v%2 == 0 }
//	obs := rx.Pipe2(
//		rx.Range(0, 5),
//		rx.Filter(even),
//		rx.Map(func(v int64) int64 { return v * 10 }),
//	)
//	values, err := rx.Collect(context.Background(), obs) // [0 20 40], nil
package rx

import (
	"context"
	"fmt"
	"log"
)

// OnUnhandledError is invoked when an error reaches a sink that has no error
// callback, or when a user callback panics outside any delivery path that
// could turn the panic into a downstream Error. It is called synchronously
// on the goroutine that produced the error. Applications embedding this
// library should replace it with their own reporter.
var OnUnhandledError = func(ctx context.Context, err error) {
	log.Printf("rx: unhandled error: %s", err.Error())
}

// OnDroppedEvent is invoked when an event arrives after its subscription has
// terminated or been disposed and is therefore discarded, as the grammar
// requires. The default is silence: dropping late events is normal during
// teardown. Install a callback to surface misbehaving sources.
var OnDroppedEvent = func(ctx context.Context, kind Kind) {}

func recoveredToError(recovered any) error {
	if err, ok := recovered.(error); ok {
		return err
	}

	return fmt.Errorf("rx: recovered panic: %v", recovered)
}

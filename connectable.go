// Copyright 2025 The Streambed Authors
// SPDX-License-Identifier: Apache-2.0

package rx

import (
	"context"
	"sync"
)

// ConnectableObservable decouples subscribing from starting: observers
// attach at any time, but the underlying source is only subscribed when
// Connect is called. Disposing the Disposable returned by Connect
// disconnects the source; the next Connect starts a fresh run through a
// fresh Subject.
type ConnectableObservable[T any] interface {
	Observable[T]

	// Connect subscribes the internal Subject to the source and returns
	// the connection handle. While a connection is live, Connect is
	// idempotent and returns the same handle.
	Connect(ctx context.Context) Disposable
}

// Multicast wraps source in a ConnectableObservable whose fan-out hub is
// built by factory, once per connection.
func Multicast[T any](source Observable[T], factory func() Subject[T]) ConnectableObservable[T] {
	return &connectable[T]{
		source:  source,
		factory: factory,
		subject: factory(),
	}
}

// Publish multicasts source through a plain Subject: subscribers see only
// values emitted while they are attached and the connection is live.
func Publish[T any](source Observable[T]) ConnectableObservable[T] {
	return Multicast(source, NewSubject[T])
}

// ReplayConnectable multicasts source through a ReplaySubject: a subscriber
// attaching after Connect first receives the last bufferSize values already
// emitted, then the live stream.
func ReplayConnectable[T any](source Observable[T], bufferSize int) ConnectableObservable[T] {
	return Multicast(source, func() Subject[T] {
		return NewReplaySubject[T](bufferSize)
	})
}

type connectable[T any] struct {
	mu         sync.Mutex
	source     Observable[T]
	factory    func() Subject[T]
	subject    Subject[T]
	connection Disposable
}

func (c *connectable[T]) Subscribe(ctx context.Context, destination Observer[T]) Disposable {
	c.mu.Lock()
	subject := c.subject
	c.mu.Unlock()

	return subject.Subscribe(ctx, destination)
}

func (c *connectable[T]) Connect(ctx context.Context) Disposable {
	c.mu.Lock()
	if c.connection != nil && !c.connection.IsDisposed() {
		connection := c.connection
		c.mu.Unlock()

		return connection
	}

	subject := c.subject
	upstream := NewSerialDisposable()

	var connection Disposable

	connection = NewDisposable(func() {
		upstream.Dispose()

		c.mu.Lock()
		if c.connection == connection {
			c.connection = nil
			c.subject = c.factory()
		}
		c.mu.Unlock()
	})

	c.connection = connection
	c.mu.Unlock()

	// Subscribe outside the lock: a synchronous source runs to completion
	// right here, through the subject, to whoever already attached.
	upstream.Set(c.source.Subscribe(ctx, subject))

	return connection
}

// RefCount automates a ConnectableObservable's connection lifecycle: the
// first subscriber triggers Connect, and when the last subscriber leaves the
// connection is disposed. A later subscriber connects anew.
func RefCount[T any](source ConnectableObservable[T]) Observable[T] {
	var mu sync.Mutex

	var connection Disposable

	subscribers := 0

	return NewObservable(func(ctx context.Context, sink Observer[T]) Teardown {
		attached := source.Subscribe(ctx, sink)

		mu.Lock()
		subscribers++

		if subscribers == 1 {
			connection = source.Connect(ctx)
		}
		mu.Unlock()

		return func() {
			attached.Dispose()

			mu.Lock()
			subscribers--

			if subscribers == 0 && connection != nil {
				connection.Dispose()
				connection = nil
			}
			mu.Unlock()
		}
	})
}

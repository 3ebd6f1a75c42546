// Copyright 2026 The μSim Authors.
// Licensed under the AGPLv3, see LICENCE file for details.

package kernel

import "context"

// Queue is the anycast FIFO stream primitive (spec §4.5): each Put is
// received by exactly one Get, in FIFO order on both ends.
type Queue[T any] struct {
	closed  bool
	items   []T
	waiters waitQueue
}

// NewQueue builds an empty, open Queue.
func NewQueue[T any]() *Queue[T] { return &Queue[T]{} }

// Put enqueues v, waking the longest-waiting Get if one is blocked.
func (q *Queue[T]) Put(ctx context.Context, v T) error {
	k, _, ok := TaskFromContext(ctx)
	if !ok {
		return newUsageError("usim: Queue.Put called outside a running task")
	}
	if q.closed {
		return &StreamClosed{}
	}
	q.items = append(q.items, v)
	if _, flag, ok := q.waiters.front(); ok {
		q.waiters.advance()
		flag.Set(k, true)
	}
	return Await(ctx, k.instant)
}

// Get removes and returns the oldest queued item, blocking until one is
// available or the Queue is closed with nothing left to drain.
func (q *Queue[T]) Get(ctx context.Context) (T, error) {
	var zero T
	_, t, ok := TaskFromContext(ctx)
	if !ok {
		return zero, newUsageError("usim: Queue.Get called outside a running task")
	}
	for len(q.items) == 0 {
		if q.closed {
			return zero, &StreamClosed{}
		}
		flag := q.waiters.enqueue(t)
		if err := Await(ctx, flag); err != nil {
			q.waiters.remove(t)
			return zero, err
		}
	}
	v := q.items[0]
	q.items = q.items[1:]
	return v, nil
}

// Close marks the Queue closed: further Puts fail, and pending Gets fail
// once the already-buffered backlog is drained.
func (q *Queue[T]) Close(k *Kernel) {
	q.closed = true
	for {
		_, flag, ok := q.waiters.front()
		if !ok {
			return
		}
		q.waiters.advance()
		flag.Set(k, true)
	}
}

// Channel is the broadcast stream primitive (spec §4.5): each Put is
// delivered to every task currently blocked in Get, and to no one else —
// there is no buffering and no history for late subscribers.
type Channel[T any] struct {
	closed  bool
	waiters []*chanWaiter[T]
}

type chanWaiter[T any] struct {
	flag  *Flag
	value T
	ok    bool
}

// NewChannel builds an empty, open Channel.
func NewChannel[T any]() *Channel[T] { return &Channel[T]{} }

// Put broadcasts v to every task currently blocked in Get. A Put with no
// current subscribers still costs one turn but delivers to no one.
func (c *Channel[T]) Put(ctx context.Context, v T) error {
	k, _, ok := TaskFromContext(ctx)
	if !ok {
		return newUsageError("usim: Channel.Put called outside a running task")
	}
	if c.closed {
		return &StreamClosed{}
	}
	waiters := c.waiters
	c.waiters = nil
	for _, w := range waiters {
		w.value = v
		w.ok = true
		w.flag.Set(k, true)
	}
	return Await(ctx, k.instant)
}

// Get blocks until the next broadcast Put, or until the Channel is
// closed.
func (c *Channel[T]) Get(ctx context.Context) (T, error) {
	var zero T
	if _, _, ok := TaskFromContext(ctx); !ok {
		return zero, newUsageError("usim: Channel.Get called outside a running task")
	}
	if c.closed {
		return zero, &StreamClosed{}
	}
	w := &chanWaiter[T]{flag: NewFlag(false)}
	c.waiters = append(c.waiters, w)
	if err := Await(ctx, w.flag); err != nil {
		c.removeWaiter(w)
		return zero, err
	}
	if !w.ok {
		return zero, &StreamClosed{}
	}
	return w.value, nil
}

func (c *Channel[T]) removeWaiter(w *chanWaiter[T]) {
	for i, x := range c.waiters {
		if x == w {
			c.waiters = append(c.waiters[:i:i], c.waiters[i+1:]...)
			return
		}
	}
}

// Close marks the Channel closed, waking every current subscriber with a
// StreamClosed error.
func (c *Channel[T]) Close(k *Kernel) {
	c.closed = true
	waiters := c.waiters
	c.waiters = nil
	for _, w := range waiters {
		w.ok = false
		w.flag.Set(k, true)
	}
}

// Copyright 2026 The μSim Authors.
// Licensed under the AGPLv3, see LICENCE file for details.

package usim

import (
	"context"

	"github.com/MaineKuehn/usim/internal/kernel"
)

// Queue is the anycast FIFO stream primitive (spec §4.5): each Put is
// received by exactly one Get, in FIFO order on both ends.
type Queue[T any] struct {
	q *kernel.Queue[T]
}

// NewQueue builds an empty, open Queue.
func NewQueue[T any]() *Queue[T] { return &Queue[T]{q: kernel.NewQueue[T]()} }

// Put enqueues v, waking the longest-waiting Get if one is blocked.
func (q *Queue[T]) Put(ctx context.Context, v T) error { return q.q.Put(ctx, v) }

// Get removes and returns the oldest queued item, blocking until one is
// available or the Queue is closed with nothing left to drain.
func (q *Queue[T]) Get(ctx context.Context) (T, error) { return q.q.Get(ctx) }

// Close marks the Queue closed: further Puts fail, and pending Gets fail
// once the already-buffered backlog is drained.
func (q *Queue[T]) Close(ctx context.Context) { q.q.Close(currentKernel(ctx)) }

// Channel is the broadcast stream primitive (spec §4.5): each Put is
// delivered to every task currently blocked in Get, and to no one else.
type Channel[T any] struct {
	c *kernel.Channel[T]
}

// NewChannel builds an empty, open Channel.
func NewChannel[T any]() *Channel[T] { return &Channel[T]{c: kernel.NewChannel[T]()} }

// Put broadcasts v to every task currently blocked in Get.
func (c *Channel[T]) Put(ctx context.Context, v T) error { return c.c.Put(ctx, v) }

// Get blocks until the next broadcast Put, or until the Channel is
// closed.
func (c *Channel[T]) Get(ctx context.Context) (T, error) { return c.c.Get(ctx) }

// Close marks the Channel closed, waking every current subscriber with a
// StreamClosed error.
func (c *Channel[T]) Close(ctx context.Context) { c.c.Close(currentKernel(ctx)) }

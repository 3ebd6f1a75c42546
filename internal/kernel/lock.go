// Copyright 2026 The μSim Authors.
// Licensed under the AGPLv3, see LICENCE file for details.

package kernel

import "context"

// Lock is a FIFO exclusive lock (spec §4.5): at most one holder at a
// time, and waiters are granted the lock in strict arrival order.
type Lock struct {
	held    bool
	holder  *Task
	waiters waitQueue
}

// NewLock builds an unheld Lock.
func NewLock() *Lock { return &Lock{} }

// Locked reports whether any task currently holds the lock.
func (l *Lock) Locked() bool { return l.held }

// Acquire blocks until the calling task holds the lock. Acquiring an
// uncontended lock still costs one turn (the infinitesimal interruption
// rule, spec §4.1), the same as queueing behind other waiters.
func (l *Lock) Acquire(ctx context.Context) error {
	k, t, ok := TaskFromContext(ctx)
	if !ok {
		return newUsageError("usim: Lock.Acquire called outside a running task")
	}
	if !l.held {
		l.held = true
		l.holder = t
		return Await(ctx, k.instant)
	}
	if l.holder == t {
		return newUsageError("usim: Lock.Acquire called by its own holder")
	}
	flag := l.waiters.enqueue(t)
	if err := Await(ctx, flag); err != nil {
		l.waiters.remove(t)
		return err
	}
	return nil
}

// Release hands the lock to the next waiter in line, or marks it free if
// none are queued. It is a usage error to release a lock the caller does
// not hold.
func (l *Lock) Release(ctx context.Context) error {
	k, t, ok := TaskFromContext(ctx)
	if !ok {
		return newUsageError("usim: Lock.Release called outside a running task")
	}
	if !l.held || l.holder != t {
		return newUsageError("usim: Lock.Release called by a task that does not hold it")
	}
	if next, flag, ok := l.waiters.front(); ok {
		l.waiters.advance()
		l.holder = next
		flag.Set(k, true)
		return nil
	}
	l.held = false
	l.holder = nil
	return nil
}

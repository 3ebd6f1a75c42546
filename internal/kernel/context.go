// Copyright 2026 The μSim Authors.
// Licensed under the AGPLv3, see LICENCE file for details.

package kernel

import "context"

// ctxKey is the unexported key type for values this package stashes on a
// context.Context (Design Notes §9: "Global current simulation state ...
// model as an explicit handle passed to every primitive"). Using context
// rather than a package-level global lets multiple kernels exist (e.g. in
// parallel tests) without interfering with each other.
type ctxKey struct{ name string }

var taskKey = ctxKey{"usim-task"}
var scopeKey = ctxKey{"usim-scope"}

type taskBinding struct {
	k *Kernel
	t *Task
}

// RootContext returns the context a Kernel's root Scope runs under.
func (k *Kernel) RootContext() context.Context {
	return context.Background()
}

// WithTask returns a copy of ctx bound to the given task, so that Await
// and the coordination primitives can find their way back to the kernel
// and the task currently running.
func WithTask(ctx context.Context, k *Kernel, t *Task) context.Context {
	return context.WithValue(ctx, taskKey, taskBinding{k: k, t: t})
}

// TaskFromContext retrieves the kernel and task bound to ctx, if any.
func TaskFromContext(ctx context.Context) (*Kernel, *Task, bool) {
	b, ok := ctx.Value(taskKey).(taskBinding)
	if !ok {
		return nil, nil, false
	}
	return b.k, b.t, true
}

// WithScope returns a copy of ctx bound to the given Scope, so nested
// Scope.Do calls spawn into the right place.
func WithScope(ctx context.Context, s *Scope) context.Context {
	return context.WithValue(ctx, scopeKey, s)
}

// ScopeFromContext retrieves the Scope bound to ctx, if any.
func ScopeFromContext(ctx context.Context) (*Scope, bool) {
	s, ok := ctx.Value(scopeKey).(*Scope)
	return s, ok
}

// Await suspends the task bound to ctx until n becomes true, or until the
// task is cancelled (spec §4.1/§4.3). It is the single suspension
// primitive every coordination primitive in this module builds on.
func Await(ctx context.Context, n Notification) error {
	k, t, ok := TaskFromContext(ctx)
	if !ok {
		return newUsageError("usim: Await called outside a running task")
	}
	return t.awaitImpl(k, n)
}

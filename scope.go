// Copyright 2026 The μSim Authors.
// Licensed under the AGPLv3, see LICENCE file for details.

package usim

import (
	"context"

	"github.com/MaineKuehn/usim/internal/kernel"
)

// Scope is a structured-concurrency region: every non-volatile task it
// spawns is awaited to a terminal state, and every volatile one is
// cancelled and awaited, before the Scope itself exits (spec §4.4).
type Scope struct {
	s *kernel.Scope
}

// DoOption configures a spawned child task.
type DoOption func(*doConfig)

type doConfig struct {
	volatile bool
	after    float64
}

// Volatile marks the spawned task as not blocking Scope exit: it is
// force-cancelled the instant the Scope begins tearing down, whether or
// not it would otherwise finish quickly (spec GLOSSARY: "Volatile task").
func Volatile() DoOption { return func(c *doConfig) { c.volatile = true } }

// After delays the spawned task's first resumption by d virtual-time
// units (spec §4.4 "Scope.do(coro, after=delay?)"). A non-positive delay
// starts the task on the very next turn.
func After(d float64) DoOption { return func(c *doConfig) { c.after = d } }

// Do spawns fn as a child task of the scope.
func (s *Scope) Do(ctx context.Context, fn Func, opts ...DoOption) *Task {
	cfg := doConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}
	t := s.s.Do(currentKernel(ctx), kernel.Func(fn), cfg.volatile, cfg.after)
	return &Task{t: t}
}

// WithScope runs body as a structured-concurrency region: every task
// spawned via the Scope it is handed is bounded by the call, which
// returns only once all of them have reached a terminal state (spec
// §4.4). The returned error follows the same priority body spawns
// failures resolve to: a fatal error if one was produced, else body's own
// error, else a *Concurrent of child failures (even a single one), else
// nil.
func WithScope(ctx context.Context, body func(ctx context.Context, s *Scope) error) error {
	k, t, ok := kernel.TaskFromContext(ctx)
	if !ok {
		return &UsageError{Msg: "usim: WithScope called outside a running task"}
	}
	parent, _ := kernel.ScopeFromContext(ctx)
	ks := k.NewScope(parent, ctx)
	scopedCtx := kernel.WithScope(ctx, ks)

	bodyErr := body(scopedCtx, &Scope{s: ks})
	return ks.Finish(k, t, bodyErr)
}

// Until runs body inside a Scope guarded by an internal watchdog task
// awaiting guard: the instant guard becomes true, the Scope begins
// graceful shutdown exactly as it would on a child failure or a body
// exception (spec §4.4 "until(notification)"). Exit does not itself raise
// for the guard firing — only independent child failures (or the body's
// own error) surface, under the same priority as WithScope.
func Until(ctx context.Context, guard Notification, body func(ctx context.Context, s *Scope) error) error {
	k, t, ok := kernel.TaskFromContext(ctx)
	if !ok {
		return &UsageError{Msg: "usim: Until called outside a running task"}
	}
	parent, _ := kernel.ScopeFromContext(ctx)
	ks := k.NewScope(parent, ctx)
	ks.ArmGuard(k, guard)
	scopedCtx := kernel.WithScope(ctx, ks)

	bodyErr := body(scopedCtx, &Scope{s: ks})
	return ks.Finish(k, t, bodyErr)
}

// Copyright 2026 The μSim Authors.
// Licensed under the AGPLv3, see LICENCE file for details.

package kernel

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// withScope mirrors the usim façade's WithScope, kept here so white-box
// tests can drive Scope.finish without importing the façade package.
func withScope(ctx context.Context, body func(ctx context.Context, s *Scope) error) error {
	k, t, _ := TaskFromContext(ctx)
	parent, _ := ScopeFromContext(ctx)
	s := k.NewScope(parent, ctx)
	scopedCtx := WithScope(ctx, s)
	bodyErr := body(scopedCtx, s)
	return s.Finish(k, t, bodyErr)
}

func untilScope(ctx context.Context, guard Notification, body func(ctx context.Context, s *Scope) error) error {
	k, t, _ := TaskFromContext(ctx)
	parent, _ := ScopeFromContext(ctx)
	s := k.NewScope(parent, ctx)
	s.ArmGuard(k, guard)
	scopedCtx := WithScope(ctx, s)
	bodyErr := body(scopedCtx, s)
	return s.Finish(k, t, bodyErr)
}

// A regression test for the ordering bug this session fixed: the guard
// watchdog backing `until` is itself a volatile child, so it must
// survive the wait for non-volatile children — force-closing every
// volatile child *before* that wait would kill the watchdog the instant
// the body returns, and the guard would never get a chance to fire.
func TestUntilWatchdogSurvivesNonVolatileWait(t *testing.T) {
	var longRunnerDone bool
	root := func(ctx context.Context) error {
		return untilScope(ctx, TimeReachHelper(ctx, 10), func(ctx context.Context, s *Scope) error {
			k, _, _ := TaskFromContext(ctx)
			s.Do(k, func(ctx context.Context) error {
				if err := Await(ctx, TimeReachHelper(ctx, 20)); err != nil {
					return err
				}
				longRunnerDone = true
				return nil
			}, false, 0)
			return nil
		})
	}

	k := New()
	err := k.Run([]Func{root}, false, 0)
	require.NoError(t, err)
	assert.False(t, longRunnerDone, "guard at t=10 must cancel the still-running child before t=20")
	assert.Equal(t, 10.0, k.Now())
}

// TimeReachHelper is a tiny test-local shim so scope_test.go does not need
// to thread a *Kernel through every call site by hand.
func TimeReachHelper(ctx context.Context, t float64) Notification {
	k, _, _ := TaskFromContext(ctx)
	return k.TimeReach(t)
}

func TestWithScopeAggregatesSimultaneousFailuresOnly(t *testing.T) {
	root := func(ctx context.Context) error {
		return withScope(ctx, func(ctx context.Context, s *Scope) error {
			k, _, _ := TaskFromContext(ctx)
			s.Do(k, func(ctx context.Context) error { return assertErr("A") }, false, 0)
			s.Do(k, func(ctx context.Context) error { return assertErr("B") }, false, 0)
			return Await(ctx, TimeReachHelper(ctx, 1))
		})
	}

	k := New()
	err := k.Run([]Func{root}, false, 0)
	require.Error(t, err)
	var c *Concurrent
	require.ErrorAs(t, err, &c)
	assert.Len(t, c.Errors(), 2)
}

type sentinelErr struct{ msg string }

func (e *sentinelErr) Error() string { return e.msg }

func assertErr(msg string) error { return &sentinelErr{msg} }

// Scope closure completeness (spec §8 property 5): after a Scope exits,
// every child — volatile included — is in a terminal state.
func TestScopeExitLeavesEveryChildTerminal(t *testing.T) {
	var tasks []*Task
	root := func(ctx context.Context) error {
		return withScope(ctx, func(ctx context.Context, s *Scope) error {
			k, _, _ := TaskFromContext(ctx)
			tasks = append(tasks, s.Do(k, func(ctx context.Context) error {
				return Await(ctx, TimeReachHelper(ctx, 1))
			}, false, 0))
			tasks = append(tasks, s.Do(k, func(ctx context.Context) error {
				return Await(ctx, k.eternity)
			}, true, 0))
			return nil
		})
	}

	k := New()
	require.NoError(t, k.Run([]Func{root}, false, 0))
	for _, tsk := range tasks {
		assert.False(t, isAlive(tsk), "task %d left in non-terminal state %s", tsk.id, tsk.state)
	}
}

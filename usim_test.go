// Copyright 2026 The μSim Authors.
// Licensed under the AGPLv3, see LICENCE file for details.

package usim_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	usim "github.com/MaineKuehn/usim"
)

// S1 — two metronomes emit on independent periods; ties at the same
// instant resolve by subscription order (spec §8 S1).
func TestMetronomes(t *testing.T) {
	defer goleak.VerifyNone(t)

	var emitted []string
	metronome := func(sound string, period float64) usim.Func {
		return func(ctx context.Context) error {
			for now := range usim.Delay(ctx, period) {
				emitted = append(emitted, fmt.Sprintf("(%s,%v)", sound, now))
			}
			return nil
		}
	}

	err := usim.Run([]usim.Func{
		metronome("tick", 1),
		metronome("TOCK", 2),
	}, usim.Till(5))
	require.NoError(t, err)

	want := []string{
		"(tick,1)", "(TOCK,2)", "(tick,2)", "(tick,3)",
		"(TOCK,4)", "(tick,4)", "(tick,5)",
	}
	assert.Equal(t, want, emitted)
}

// S2 — a Scope spawning deliveries at t=0,0,1, each taking 5 units, must
// produce the exact (start, end) ordering from spec §8 S2.
func TestScopeOrdering(t *testing.T) {
	defer goleak.VerifyNone(t)

	var log []string
	delivery := func(id int) usim.Func {
		return func(ctx context.Context) error {
			log = append(log, fmt.Sprintf("start %d@%v", id, usim.Now(ctx)))
			if err := usim.Await(ctx, usim.TimeAfter(ctx, 5)); err != nil {
				return err
			}
			log = append(log, fmt.Sprintf("delivered %d@%v", id, usim.Now(ctx)))
			return nil
		}
	}

	root := func(ctx context.Context) error {
		err := usim.WithScope(ctx, func(ctx context.Context, s *usim.Scope) error {
			s.Do(ctx, delivery(1))
			s.Do(ctx, delivery(2))
			if err := usim.Await(ctx, usim.TimeAfter(ctx, 1)); err != nil {
				return err
			}
			log = append(log, fmt.Sprintf("sent@%v", usim.Now(ctx)))
			s.Do(ctx, delivery(3))
			return nil
		})
		if err != nil {
			return err
		}
		log = append(log, fmt.Sprintf("done@%v", usim.Now(ctx)))
		return nil
	}

	require.NoError(t, usim.Run([]usim.Func{root}))

	want := []string{
		"start 1@0", "start 2@0", "sent@1", "start 3@1",
		"delivered 1@5", "delivered 2@5", "delivered 3@6", "done@6",
	}
	assert.Equal(t, want, log)
}

type indexError struct{ msg string }

func (e *indexError) Error() string { return e.msg }

type keyError struct{ msg string }

func (e *keyError) Error() string { return e.msg }

// S3 — three children fail simultaneously; a fourth spawned afterwards
// must not be folded into the same Concurrent (spec §8 S3).
func TestConcurrentFailureAggregatesOnlySimultaneousChildren(t *testing.T) {
	defer goleak.VerifyNone(t)

	failNow := func(err error) usim.Func {
		return func(ctx context.Context) error { return err }
	}

	root := func(ctx context.Context) error {
		return usim.WithScope(ctx, func(ctx context.Context, s *usim.Scope) error {
			s.Do(ctx, failNow(&indexError{"A"}))
			s.Do(ctx, failNow(&keyError{"B"}))
			s.Do(ctx, failNow(&indexError{"C"}))
			if err := usim.Await(ctx, usim.TimeAfter(ctx, 2)); err != nil {
				return err
			}
			s.Do(ctx, failNow(&keyError{"D"}))
			return nil
		})
	}

	err := usim.Run([]usim.Func{root})
	require.Error(t, err)

	var c *usim.Concurrent
	require.True(t, errors.As(err, &c))
	assert.Len(t, c.Errors(), 3)
	assert.True(t, usim.MatchConcurrent(c, true, &indexError{}, &keyError{}))
	assert.False(t, usim.MatchConcurrent(c, true, &indexError{}))
}

// S4 — an `until` scope spawning deliveries every 3 units, each taking 5,
// must let deliveries 1 and 2 finish and cancel delivery 3 at the guard
// (spec §8 S4).
func TestUntilCancelsInFlightChild(t *testing.T) {
	defer goleak.VerifyNone(t)

	var log []string
	var tasks []*usim.Task
	delivery := func(id int) usim.Func {
		return func(ctx context.Context) error {
			if err := usim.Await(ctx, usim.TimeAfter(ctx, 5)); err != nil {
				return err
			}
			log = append(log, fmt.Sprintf("delivered %d@%v", id, usim.Now(ctx)))
			return nil
		}
	}

	root := func(ctx context.Context) error {
		return usim.Until(ctx, usim.TimeAfter(ctx, 10), func(ctx context.Context, s *usim.Scope) error {
			for i := 1; i <= 3; i++ {
				task := s.Do(ctx, delivery(i))
				tasks = append(tasks, task)
				if i < 3 {
					if err := usim.Await(ctx, usim.TimeAfter(ctx, 3)); err != nil {
						return nil
					}
				}
			}
			return nil
		})
	}

	require.NoError(t, usim.Run([]usim.Func{root}))

	want := []string{"delivered 1@5", "delivered 2@8"}
	assert.Equal(t, want, log)
	require.Len(t, tasks, 3)
	assert.Equal(t, usim.Success, tasks[0].Status())
	assert.Equal(t, usim.Success, tasks[1].Status())
	assert.Equal(t, usim.Cancelled, tasks[2].Status())
}

// S5 — three tasks requesting a Lock at t=0,1,2, each holding it for 10
// units, must enter the critical section at t=0,10,20 (spec §8 S5).
func TestLockIsFIFO(t *testing.T) {
	defer goleak.VerifyNone(t)

	lock := usim.NewLock()
	var entered []string

	holder := func(id int, arriveAt float64) usim.Func {
		return func(ctx context.Context) error {
			if arriveAt > 0 {
				if err := usim.Await(ctx, usim.TimeAfter(ctx, arriveAt)); err != nil {
					return err
				}
			}
			if err := lock.Acquire(ctx); err != nil {
				return err
			}
			entered = append(entered, fmt.Sprintf("%d@%v", id, usim.Now(ctx)))
			if err := usim.Await(ctx, usim.TimeAfter(ctx, 10)); err != nil {
				return err
			}
			return lock.Release(ctx)
		}
	}

	err := usim.Run([]usim.Func{
		holder(1, 0),
		holder(2, 1),
		holder(3, 2),
	})
	require.NoError(t, err)

	want := []string{"1@0", "2@10", "3@20"}
	assert.Equal(t, want, entered)
}

// S6 — Resources(a=3): X borrows a=2 at t=0 for 5, Y claims a=2 at t=1;
// Y must resume exactly at t=5, not before (spec §8 S6).
func TestResourceClaimWaitsForRelease(t *testing.T) {
	defer goleak.VerifyNone(t)

	res := usim.NewResources(map[string]float64{"a": 3})
	var resumedAt float64

	x := func(ctx context.Context) error {
		return res.Borrow(ctx, map[string]float64{"a": 2}, false, func(ctx context.Context) error {
			return usim.Await(ctx, usim.TimeAfter(ctx, 5))
		})
	}
	y := func(ctx context.Context) error {
		if err := usim.Await(ctx, usim.TimeAfter(ctx, 1)); err != nil {
			return err
		}
		if err := res.Claim(ctx, map[string]float64{"a": 2}, false); err != nil {
			return err
		}
		resumedAt = usim.Now(ctx)
		return res.Release(ctx, map[string]float64{"a": 2})
	}

	require.NoError(t, usim.Run([]usim.Func{x, y}))
	assert.Equal(t, 5.0, resumedAt)
}

// Quantified invariant: task.cancel() is idempotent (spec §8 property 4).
func TestCancelIsIdempotent(t *testing.T) {
	defer goleak.VerifyNone(t)

	var task *usim.Task
	root := func(ctx context.Context) error {
		return usim.WithScope(ctx, func(ctx context.Context, s *usim.Scope) error {
			task = s.Do(ctx, func(ctx context.Context) error {
				return usim.Await(ctx, usim.Eternity(ctx))
			}, usim.Volatile())
			task.Cancel(ctx, nil)
			task.Cancel(ctx, nil)
			return usim.Await(ctx, usim.TimeAfter(ctx, 1))
		})
	}

	require.NoError(t, usim.Run([]usim.Func{root}))
	assert.Equal(t, usim.Cancelled, task.Status())
}

// Quantified invariant: an empty run (no roots, nothing scheduled) halts
// immediately (spec §8 property 3).
func TestEmptyRunHaltsImmediately(t *testing.T) {
	defer goleak.VerifyNone(t)
	assert.NoError(t, usim.Run(nil))
}

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

// Channel is broadcast: every pending Get receives the same Put, and a
// Put with no subscribers delivers to no one (spec §4.5).
func TestChannelBroadcastsToEveryWaiter(t *testing.T) {
	defer goleak.VerifyNone(t)

	ch := usim.NewChannel[string]()
	var received []string

	receiver := func(id int) usim.Func {
		return func(ctx context.Context) error {
			v, err := ch.Get(ctx)
			if err != nil {
				return err
			}
			received = append(received, fmt.Sprintf("%d:%s", id, v))
			return nil
		}
	}
	sender := func(ctx context.Context) error {
		if err := usim.Await(ctx, usim.TimeAfter(ctx, 1)); err != nil {
			return err
		}
		return ch.Put(ctx, "hello")
	}

	err := usim.Run([]usim.Func{receiver(1), receiver(2), sender})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"1:hello", "2:hello"}, received)
}

// Queue is anycast: each Put is consumed by exactly one Get, FIFO on both
// ends (spec §4.5).
func TestQueueDeliversAnycastFIFO(t *testing.T) {
	defer goleak.VerifyNone(t)

	q := usim.NewQueue[int]()
	var got []int

	producer := func(ctx context.Context) error {
		for _, v := range []int{1, 2, 3} {
			if err := q.Put(ctx, v); err != nil {
				return err
			}
		}
		return nil
	}
	consumer := func(ctx context.Context) error {
		for i := 0; i < 3; i++ {
			v, err := q.Get(ctx)
			if err != nil {
				return err
			}
			got = append(got, v)
		}
		return nil
	}

	require.NoError(t, usim.Run([]usim.Func{producer, consumer}))
	assert.Equal(t, []int{1, 2, 3}, got)
}

// Closing a Queue fails a pending Get once the backlog is drained, and
// fails every subsequent Put (spec §4.5).
func TestQueueCloseDrainsThenFails(t *testing.T) {
	defer goleak.VerifyNone(t)

	q := usim.NewQueue[int]()
	var getErr, putErr error

	blocked := func(ctx context.Context) error {
		_, getErr = q.Get(ctx)
		return nil
	}
	closer := func(ctx context.Context) error {
		if err := usim.Await(ctx, usim.TimeAfter(ctx, 1)); err != nil {
			return err
		}
		q.Close(ctx)
		putErr = q.Put(ctx, 1)
		return nil
	}

	require.NoError(t, usim.Run([]usim.Func{blocked, closer}))
	var closed *usim.StreamClosed
	assert.True(t, errors.As(getErr, &closed))
	assert.True(t, errors.As(putErr, &closed))
}

// A Capacities pool rejects a Produce that would exceed its fixed
// capacity (spec §4.5 "Capacities ... produce above capacity is an
// error").
func TestCapacitiesRejectsProduceAboveCapacity(t *testing.T) {
	defer goleak.VerifyNone(t)

	caps := usim.NewCapacities(map[string]float64{"slots": 2})
	var err error

	root := func(ctx context.Context) error {
		err = caps.Produce(ctx, map[string]float64{"slots": 1})
		return nil
	}
	require.NoError(t, usim.Run([]usim.Func{root}))

	var unavailable *usim.ResourcesUnavailable
	assert.True(t, errors.As(err, &unavailable))
}

// A strict Claim that cannot be satisfied right now fails synchronously
// instead of queueing (spec §4.5/§7).
func TestStrictClaimFailsFastWhenUnavailable(t *testing.T) {
	defer goleak.VerifyNone(t)

	res := usim.NewResources(map[string]float64{"a": 1})
	var err error

	root := func(ctx context.Context) error {
		err = res.Claim(ctx, map[string]float64{"a": 2}, true)
		return nil
	}
	require.NoError(t, usim.Run([]usim.Func{root}))

	var unavailable *usim.ResourcesUnavailable
	assert.True(t, errors.As(err, &unavailable))
}

// Tracked relational notifications recompute on every Set/Add (spec
// §4.2).
func TestTrackedRelationalNotificationRecomputes(t *testing.T) {
	defer goleak.VerifyNone(t)

	level := usim.NewTracked(0)
	var crossedAt float64

	watcher := func(ctx context.Context) error {
		if err := usim.Await(ctx, level.GreaterOrEqual(3)); err != nil {
			return err
		}
		crossedAt = usim.Now(ctx)
		return nil
	}
	driver := func(ctx context.Context) error {
		for i := 0; i < 3; i++ {
			if err := usim.Await(ctx, usim.TimeAfter(ctx, 1)); err != nil {
				return err
			}
			level.Add(ctx, 1)
		}
		return nil
	}

	require.NoError(t, usim.Run([]usim.Func{watcher, driver}))
	assert.Equal(t, 3.0, crossedAt)
	assert.Equal(t, 3, level.Value())
}

// A Lock cannot be re-acquired by its own current holder (spec §4.5
// "Nested re-acquisition by the same task is an error").
func TestLockRejectsReentrantAcquire(t *testing.T) {
	defer goleak.VerifyNone(t)

	lock := usim.NewLock()
	var err error

	root := func(ctx context.Context) error {
		if e := lock.Acquire(ctx); e != nil {
			return e
		}
		err = lock.Acquire(ctx)
		return nil
	}
	require.NoError(t, usim.Run([]usim.Func{root}))

	var usageErr *usim.UsageError
	assert.True(t, errors.As(err, &usageErr))
}

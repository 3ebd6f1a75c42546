// Copyright 2026 The μSim Authors.
// Licensed under the AGPLv3, see LICENCE file for details.

package usim

import (
	"context"
	"iter"

	"github.com/MaineKuehn/usim/internal/kernel"
)

// Now reads the kernel's current virtual time. It never suspends.
func Now(ctx context.Context) float64 { return currentKernel(ctx).Now() }

// Eternity is a Notification that never becomes true: Awaiting it blocks
// forever.
func Eternity(ctx context.Context) Notification { return currentKernel(ctx).Eternity() }

// Instant is a Notification that is already true: Awaiting it still
// costs exactly one turn but never any virtual time.
func Instant(ctx context.Context) Notification { return currentKernel(ctx).Instant() }

// TimeAfter builds the Notification for `now + d` (spec §9 redesign:
// "time.after(d)" in place of operator-overloaded time arithmetic). d <=
// 0 means the target has already been reached.
func TimeAfter(ctx context.Context, d float64) Notification { return currentKernel(ctx).TimeAfter(d) }

// TimeAt builds the Notification for `now == t`, evaluated when it is
// built: already true if t is now, never true if t has passed, otherwise
// true from the moment virtual time reaches t onwards.
func TimeAt(ctx context.Context, t float64) Notification { return currentKernel(ctx).TimeAt(t) }

// TimeBefore builds the Notification for `now < t`: fires immediately if
// already before t, never otherwise.
func TimeBefore(ctx context.Context, t float64) Notification {
	return currentKernel(ctx).TimeBefore(t)
}

// TimeReach builds the Notification for `now >= t`.
func TimeReach(ctx context.Context, t float64) Notification {
	return currentKernel(ctx).TimeReach(t)
}

// PositiveInfinity and NegativeInfinity are plain float64 infinities,
// useful as an open upper/lower Till bound. Eternity and Instant do not
// use them.
var (
	PositiveInfinity = kernel.PositiveInfinity
	NegativeInfinity = kernel.NegativeInfinity
)

// Delay yields now once every d virtual-time units, measured from the
// caller's last resumption rather than a fixed schedule (spec §4.6:
// "delay(d) fires at t_last_resume + d"). Range over it with a for loop;
// breaking out (or the task being cancelled) stops the sequence.
func Delay(ctx context.Context, d float64) iter.Seq[float64] {
	return func(yield func(float64) bool) {
		k := currentKernel(ctx)
		if k == nil {
			return
		}
		for {
			if err := Await(ctx, k.TimeAfter(d)); err != nil {
				return
			}
			if !yield(k.Now()) {
				return
			}
		}
	}
}

// Interval yields now at t0+d, t0+2d, ... where t0 is the virtual time
// Interval was called, independent of how long the loop body takes
// between iterations (spec §4.6: "independent of in-block work").
func Interval(ctx context.Context, d float64) iter.Seq[float64] {
	return func(yield func(float64) bool) {
		k := currentKernel(ctx)
		if k == nil {
			return
		}
		t0 := k.Now()
		n := int64(1)
		for {
			target := t0 + float64(n)*d
			if err := Await(ctx, k.TimeReach(target)); err != nil {
				return
			}
			n++
			if !yield(k.Now()) {
				return
			}
		}
	}
}

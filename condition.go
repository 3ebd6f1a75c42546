// Copyright 2026 The μSim Authors.
// Licensed under the AGPLv3, see LICENCE file for details.

package usim

import (
	"context"

	"github.com/MaineKuehn/usim/internal/kernel"
)

// Notification is an observable Boolean-valued predicate with
// subscription semantics (spec §3/§4.2): Flag, Tracked comparisons, the
// time builders, a Task's Done, and the And/Or/Not combinators all
// produce one.
type Notification = kernel.Notification

// Await suspends the calling task until n becomes true, or returns the
// task's cancellation error if it is cancelled first. It is the single
// suspension primitive every coordination primitive in this package is
// built on; a Notification that is already true still costs exactly one
// turn (spec §4.1, the "infinitesimal interruption" rule).
func Await(ctx context.Context, n Notification) error {
	return kernel.Await(ctx, n)
}

// And builds the conjunction of a and b: true exactly when both are.
func And(a, b Notification) Notification { return kernel.NewAnd(a, b) }

// Or builds the disjunction of a and b: true when either is.
func Or(a, b Notification) Notification { return kernel.NewOr(a, b) }

// Not builds the total negation of n.
func Not(n Notification) Notification { return kernel.NewNot(n) }

// Flag is a Boolean notification explicitly settable true/false; setting
// to the current value is a no-op (spec §4.5).
type Flag struct {
	f *kernel.Flag
}

// NewFlag builds a Flag with the given initial value.
func NewFlag(initial bool) *Flag {
	return &Flag{f: kernel.NewFlag(initial)}
}

// Value reads the flag's current value without suspending.
func (fl *Flag) Value() bool { return fl.f.Value() }

// Set changes the flag's value, waking subscribers on a false→true
// transition.
func (fl *Flag) Set(ctx context.Context, v bool) { fl.f.Set(currentKernel(ctx), v) }

// Notification exposes the Flag itself as an awaitable Notification.
func (fl *Flag) Notification() Notification { return fl.f }

// Numeric is the constraint Tracked values support relational conditions
// over.
type Numeric = kernel.Numeric

// Tracked wraps a numeric value and exposes relational Notifications
// that recompute whenever the value changes (spec §4.2).
type Tracked[T Numeric] struct {
	t *kernel.Tracked[T]
}

// NewTracked builds a Tracked value starting at initial.
func NewTracked[T Numeric](initial T) *Tracked[T] {
	return &Tracked[T]{t: kernel.NewTracked(initial)}
}

// Value reads the current value without suspending.
func (tr *Tracked[T]) Value() T { return tr.t.Value() }

// Set replaces the value, recomputing every relational Notification
// built from this Tracked.
func (tr *Tracked[T]) Set(ctx context.Context, v T) { tr.t.Set(currentKernel(ctx), v) }

// Add adjusts the value by delta, recomputing every relational
// Notification built from this Tracked.
func (tr *Tracked[T]) Add(ctx context.Context, delta T) { tr.t.Add(currentKernel(ctx), delta) }

// Sub adjusts the value by -delta, recomputing every relational
// Notification built from this Tracked.
func (tr *Tracked[T]) Sub(ctx context.Context, delta T) { tr.t.Sub(currentKernel(ctx), delta) }

// Mul scales the value by factor, recomputing every relational
// Notification built from this Tracked.
func (tr *Tracked[T]) Mul(ctx context.Context, factor T) { tr.t.Mul(currentKernel(ctx), factor) }

// Div scales the value by 1/divisor, recomputing every relational
// Notification built from this Tracked.
func (tr *Tracked[T]) Div(ctx context.Context, divisor T) { tr.t.Div(currentKernel(ctx), divisor) }

// GreaterThan builds the Notification for value > threshold.
func (tr *Tracked[T]) GreaterThan(threshold T) Notification { return tr.t.GreaterThan(threshold) }

// GreaterOrEqual builds the Notification for value >= threshold.
func (tr *Tracked[T]) GreaterOrEqual(threshold T) Notification {
	return tr.t.GreaterOrEqual(threshold)
}

// LessThan builds the Notification for value < threshold.
func (tr *Tracked[T]) LessThan(threshold T) Notification { return tr.t.LessThan(threshold) }

// LessOrEqual builds the Notification for value <= threshold.
func (tr *Tracked[T]) LessOrEqual(threshold T) Notification { return tr.t.LessOrEqual(threshold) }

// EqualTo builds the Notification for value == target.
func (tr *Tracked[T]) EqualTo(target T) Notification { return tr.t.EqualTo(target) }

// NotEqual builds the Notification for value != target.
func (tr *Tracked[T]) NotEqual(target T) Notification { return tr.t.NotEqual(target) }

// Copyright 2026 The μSim Authors.
// Licensed under the AGPLv3, see LICENCE file for details.

package kernel

// Numeric is the constraint Tracked values support relational conditions
// over (SPEC_FULL.md SUPPLEMENTED FEATURES: generic Tracked[T] in place of
// the distilled spec's untyped numeric Trackable).
type Numeric interface {
	~int | ~int32 | ~int64 | ~float32 | ~float64
}

// Tracked wraps a numeric value and exposes relational Notifications over
// it (spec §4.2 "Tracked value"): each comparison builds a
// relNotification that is recomputed whenever the value changes.
type Tracked[T Numeric] struct {
	value T
	subs  []*relNotification
}

// NewTracked builds a Tracked value starting at initial.
func NewTracked[T Numeric](initial T) *Tracked[T] {
	return &Tracked[T]{value: initial}
}

// Value reads the current value without suspending.
func (tr *Tracked[T]) Value() T { return tr.value }

// Set replaces the value, recomputing every relational Notification built
// from this Tracked.
func (tr *Tracked[T]) Set(k *Kernel, v T) {
	tr.value = v
	tr.recomputeAll(k)
}

// Add adjusts the value by delta, recomputing every relational
// Notification built from this Tracked.
func (tr *Tracked[T]) Add(k *Kernel, delta T) {
	tr.value += delta
	tr.recomputeAll(k)
}

// Sub adjusts the value by -delta, recomputing every relational
// Notification built from this Tracked.
func (tr *Tracked[T]) Sub(k *Kernel, delta T) {
	tr.value -= delta
	tr.recomputeAll(k)
}

// Mul scales the value by factor, recomputing every relational
// Notification built from this Tracked.
func (tr *Tracked[T]) Mul(k *Kernel, factor T) {
	tr.value *= factor
	tr.recomputeAll(k)
}

// Div scales the value by 1/divisor, recomputing every relational
// Notification built from this Tracked.
func (tr *Tracked[T]) Div(k *Kernel, divisor T) {
	tr.value /= divisor
	tr.recomputeAll(k)
}

func (tr *Tracked[T]) recomputeAll(k *Kernel) {
	for _, n := range tr.subs {
		n.recompute(k)
	}
}

func (tr *Tracked[T]) track(pred func() bool) Notification {
	n := newRelNotification(pred)
	tr.subs = append(tr.subs, n)
	return n
}

// GreaterThan builds the Notification for value > threshold.
func (tr *Tracked[T]) GreaterThan(threshold T) Notification {
	return tr.track(func() bool { return tr.value > threshold })
}

// GreaterOrEqual builds the Notification for value >= threshold.
func (tr *Tracked[T]) GreaterOrEqual(threshold T) Notification {
	return tr.track(func() bool { return tr.value >= threshold })
}

// LessThan builds the Notification for value < threshold.
func (tr *Tracked[T]) LessThan(threshold T) Notification {
	return tr.track(func() bool { return tr.value < threshold })
}

// LessOrEqual builds the Notification for value <= threshold.
func (tr *Tracked[T]) LessOrEqual(threshold T) Notification {
	return tr.track(func() bool { return tr.value <= threshold })
}

// EqualTo builds the Notification for value == target.
func (tr *Tracked[T]) EqualTo(target T) Notification {
	return tr.track(func() bool { return tr.value == target })
}

// NotEqual builds the Notification for value != target (spec §4.2's
// relational operator set; negation is total, Design Notes §9, so this is
// just the inverse of EqualTo rather than its own tracked predicate).
func (tr *Tracked[T]) NotEqual(target T) Notification {
	return NewNot(tr.EqualTo(target))
}

// Copyright 2026 The μSim Authors.
// Licensed under the AGPLv3, see LICENCE file for details.

package kernel

import "math"

// Now returns the kernel's current virtual time. Reading it never
// suspends (spec §5).
func (k *Kernel) Now() float64 { return k.now }

// Eternity is a notification that never becomes true: awaiting it blocks
// forever (spec §6, "eternity ... distinguished constant").
func (k *Kernel) Eternity() Notification { return k.eternity }

// Instant is a notification that is already true: awaiting it still
// costs exactly one turn (the infinitesimal interruption rule) but never
// any virtual time (spec §6).
func (k *Kernel) Instant() Notification { return k.instant }

// TimeAfter builds the one-shot leaf for `time + d`: it fires when
// virtual time reaches now-at-creation + d (spec §4.2). d <= 0 means the
// target has already been reached, so the result is already true.
func (k *Kernel) TimeAfter(d float64) Notification {
	return k.TimeReach(k.now + d)
}

// TimeAt builds the leaf for `time == t`, evaluated against the current
// time when it is built: already true if t == now, never true if t has
// passed, otherwise it becomes true when virtual time reaches t and stays
// true afterwards.
func (k *Kernel) TimeAt(t float64) Notification {
	switch {
	case t == k.now:
		return k.instant
	case t < k.now:
		return k.eternity
	default:
		n := newTimeNotification(false)
		k.timeQ.push(t, func(kk *Kernel) { n.fire(kk) })
		return n
	}
}

// TimeBefore builds the leaf for `time < t` (spec §4.2: "fires
// immediately if already before, never otherwise").
func (k *Kernel) TimeBefore(t float64) Notification {
	if k.now < t {
		return k.instant
	}
	return k.eternity
}

// TimeReach builds the leaf for `time >= t`.
func (k *Kernel) TimeReach(t float64) Notification {
	if k.now >= t {
		return k.instant
	}
	n := newTimeNotification(false)
	k.timeQ.push(t, func(kk *Kernel) { n.fire(kk) })
	return n
}

// PositiveInfinity and NegativeInfinity are plain float64 infinities.
// Eternity and Instant are leaf notifications and do not use them.
var (
	PositiveInfinity = math.Inf(1)
	NegativeInfinity = math.Inf(-1)
)

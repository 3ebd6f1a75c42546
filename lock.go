// Copyright 2026 The μSim Authors.
// Licensed under the AGPLv3, see LICENCE file for details.

package usim

import "github.com/MaineKuehn/usim/internal/kernel"

// Lock is a FIFO exclusive lock (spec §4.5): acquire suspends on a
// Notification fired by release, and waiters are granted the lock in
// strict arrival order.
type Lock = kernel.Lock

// NewLock builds an unheld Lock.
func NewLock() *Lock { return kernel.NewLock() }

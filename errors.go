// Copyright 2026 The μSim Authors.
// Licensed under the AGPLv3, see LICENCE file for details.

package usim

import "github.com/MaineKuehn/usim/internal/kernel"

// CancelTask is the default cancellation reason used when Task.Cancel is
// called without one.
type CancelTask = kernel.CancelTask

// TaskCancelled is the terminal exception a cancelled task carries (spec
// §4.3).
type TaskCancelled = kernel.TaskCancelled

// TaskClosed is the reason delivered to non-volatile children cancelled
// during graceful Scope shutdown.
type TaskClosed = kernel.TaskClosed

// VolatileTaskClosed is the reason delivered to volatile children, force-
// terminated immediately on Scope teardown.
type VolatileTaskClosed = kernel.VolatileTaskClosed

// ResourcesUnavailable reports a Resources claim that could not be
// satisfied under the strict flag, or a Produce that would exceed a
// Capacities bound.
type ResourcesUnavailable = kernel.ResourcesUnavailable

// StreamClosed is returned by Channel/Queue operations against a closed
// stream.
type StreamClosed = kernel.StreamClosed

// UsageError is a synchronous, typed error raised at the call site of a
// misused API (spec §7).
type UsageError = kernel.UsageError

// FatalError marks an error that must escape Scope aggregation entirely
// rather than being folded into a Concurrent (spec §4.4/§7 priority:
// "fatal > synchronous body > concurrent children").
type FatalError = kernel.FatalError

// Concurrent is the aggregate exception a Scope raises when one or more
// children fail simultaneously (spec §4.4, GLOSSARY).
type Concurrent = kernel.Concurrent

// MatchConcurrent implements Concurrent's type-level selector (spec
// §4.4): with exact=true the inner exception type set must equal
// {types} precisely; with exact=false every named type must be present
// but the aggregate may also carry others. An empty types list with
// exact=false matches any Concurrent.
func MatchConcurrent(err error, exact bool, types ...error) bool {
	return kernel.MatchConcurrent(err, exact, types...)
}

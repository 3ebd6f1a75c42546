// Copyright 2026 The μSim Authors.
// Licensed under the AGPLv3, see LICENCE file for details.

package kernel

import (
	"reflect"

	"github.com/juju/errors"
)

// CancelTask is the default cancellation reason used when a caller
// cancels a task without supplying one (spec §4.3).
type CancelTask struct {
	Msg string
}

func (e *CancelTask) Error() string {
	if e.Msg == "" {
		return "task cancelled"
	}
	return e.Msg
}

// TaskCancelled is the terminal exception a cancelled task carries (spec
// §4.3: "the terminal state is Cancelled carrying a TaskCancelled(reason)").
type TaskCancelled struct {
	Reason error
}

func (e *TaskCancelled) Error() string {
	return errors.Annotate(e.Reason, "task cancelled").Error()
}

func (e *TaskCancelled) Unwrap() error { return e.Reason }

// TaskClosed is the reason delivered to non-volatile children cancelled
// during graceful Scope shutdown (spec §4.3).
type TaskClosed struct{}

func (e *TaskClosed) Error() string { return "task closed by scope teardown" }

// VolatileTaskClosed is the reason delivered to volatile children, which
// are force-terminated immediately on Scope teardown (spec §4.3).
type VolatileTaskClosed struct{}

func (e *VolatileTaskClosed) Error() string { return "volatile task closed by scope teardown" }

// ResourcesUnavailable reports a Resources claim that could not be
// satisfied under the `strict` flag (spec §4.5/§7).
type ResourcesUnavailable struct {
	Commodity string
	Requested float64
	Available float64
}

func (e *ResourcesUnavailable) Error() string {
	return errors.Errorf("resource %q unavailable: requested %v, available %v",
		e.Commodity, e.Requested, e.Available).Error()
}

// StreamClosed is returned by Channel/Queue operations against a closed
// stream (spec §4.5).
type StreamClosed struct{}

func (e *StreamClosed) Error() string { return "stream closed" }

// UsageError is a synchronous, typed error raised at the call site of a
// misused API (spec §7, "Usage error"), e.g. calling Await outside a
// running task or re-entering an already-held Lock.
type UsageError struct {
	Msg string
}

func (e *UsageError) Error() string { return e.Msg }

func newUsageError(format string, args ...interface{}) error {
	return &UsageError{Msg: errors.Errorf(format, args...).Error()}
}

// reflectType returns the dynamic type of an error sample, used as the
// comparison key by the type-set matcher.
func reflectType(err error) reflect.Type {
	return reflect.TypeOf(err)
}

// Copyright 2026 The μSim Authors.
// Licensed under the AGPLv3, see LICENCE file for details.

package usim

import (
	"context"

	"github.com/MaineKuehn/usim/internal/kernel"
)

// TaskState is the Task lifecycle state machine (spec §4.3):
//
//	Created -> Running -> (Waiting <-> Running) -> {Success, Failed, Cancelled}
type TaskState = kernel.TaskState

const (
	Created   = kernel.Created
	Running   = kernel.Running
	Waiting   = kernel.Waiting
	Cancelled = kernel.Cancelled
	Failed    = kernel.Failed
	Success   = kernel.Success
)

// Task is a handle to a spawned coroutine: its lifecycle state, terminal
// payload, and an awaitable completion Notification.
type Task struct {
	t *kernel.Task
}

// Status returns the task's current lifecycle state.
func (t *Task) Status() TaskState { return t.t.Status() }

// Result returns the task's terminal payload. Await the task's Done
// Notification first if it may still be running.
func (t *Task) Result() error {
	_, err := t.t.Result()
	return err
}

// Done returns the Notification that fires once the task reaches a
// terminal state.
func (t *Task) Done() Notification { return t.t.Done() }

// Cancel requests cancellation with the given reason (CancelTask{} if
// nil). Cancellation is observed only at the task's next suspension point
// (spec §4.3/§5); cancelling an already-terminal task is a no-op.
func (t *Task) Cancel(ctx context.Context, reason error) {
	if reason == nil {
		reason = &CancelTask{}
	}
	currentKernel(ctx).CancelTask(t.t, reason)
}

// Copyright 2026 The μSim Authors.
// Licensed under the AGPLv3, see LICENCE file for details.

package kernel

import (
	"context"

	tomb "gopkg.in/tomb.v2"
)

// TaskState is the Task lifecycle state machine from spec §4.3:
//
//	Created -> Running -> (Waiting <-> Running) -> {Success, Failed, Cancelled}
type TaskState int

const (
	// Created marks a task scheduled but not yet resumed once.
	Created TaskState = iota
	// Running marks a task currently executing its body.
	Running
	// Waiting marks a task subscribed to a notification.
	Waiting
	// Cancelled is a terminal state: the task unwound under cancellation.
	Cancelled
	// Failed is a terminal state: the task's body returned a non-terminal
	// (non-cancellation) error.
	Failed
	// Success is a terminal state: the task's body returned nil.
	Success
)

func (s TaskState) String() string {
	switch s {
	case Created:
		return "Created"
	case Running:
		return "Running"
	case Waiting:
		return "Waiting"
	case Cancelled:
		return "Cancelled"
	case Failed:
		return "Failed"
	case Success:
		return "Success"
	default:
		return "Unknown"
	}
}

// Func is the body of a task: a cooperative coroutine expressed as an
// ordinary Go function that suspends by calling Await on the context it
// is handed (Design Notes §9: "model tasks as explicit state machines
// driven by the kernel ... each suspension point corresponds to
// registering a task with a notification and returning to the kernel").
type Func func(ctx context.Context) error

// Task is the kernel's record for one coroutine: a goroutine running Func,
// bridged to the kernel's strictly single-threaded turn loop by a pair of
// unbuffered channels so that exactly one task body is ever executing at
// a time (spec §5: "There is exactly one logical executor").
type Task struct {
	id    TaskID
	Name  string
	scope *Scope

	volatile bool
	state    TaskState

	result interface{}
	err    error

	waitingOn Notification
	done      *taskDoneNotification

	tmb      tomb.Tomb
	resumeCh chan resumeMsg
	started  bool

	cancelPending error
	cancelFn      context.CancelFunc
	turnQueued    bool

	fn Func
}

// Status returns the task's current lifecycle state.
func (t *Task) Status() TaskState { return t.state }

// Result returns the task's terminal payload. It does not check the
// task's state: before the task is terminal it returns nil, nil. Await
// the task's Done notification first.
func (t *Task) Result() (interface{}, error) {
	return t.result, t.err
}

// Done returns the notification that fires when the task reaches a
// terminal state (spec §3: "task-completion sentinel").
func (t *Task) Done() Notification { return t.done }

// awaitImpl is the suspension primitive every coordination primitive in
// this module is built on (spec §4.1 "Resumption"). It always costs a
// turn: even a Notification that is already true is only observed on the
// task's next turn (spec §4.1: "the infinitesimal interruption rule").
func (t *Task) awaitImpl(k *Kernel, n Notification) error {
	if t.cancelPending != nil {
		return &TaskCancelled{Reason: t.cancelPending}
	}
	t.waitingOn = n
	t.state = Waiting
	k.events <- taskEvent{kind: eventSuspend, task: t, notif: n}
	msg := <-t.resumeCh
	t.state = Running
	t.waitingOn = nil
	if msg.kind == resumeCancel {
		return &TaskCancelled{Reason: msg.err}
	}
	return nil
}

// cancel requests cancellation (spec §4.3). Cancelling an already
// terminal task is a no-op (spec §8 property 4: "idempotent cancel").
func (t *Task) cancel(k *Kernel, reason error) {
	switch t.state {
	case Success, Failed, Cancelled:
		return
	case Created:
		if t.cancelPending == nil {
			t.cancelPending = reason
			if t.cancelFn != nil {
				t.cancelFn()
			}
			t.tmb.Kill(reason)
			// A delayed (after > 0) task would otherwise sit in the time
			// queue until its original start time; cancellation promotes
			// it to the turn queue immediately rather than waiting out a
			// scheduling convenience that no longer applies.
			if !t.turnQueued {
				t.turnQueued = true
				k.turnQ.push(runRecord{task: t, resume: resumeMsg{kind: resumeNormal}})
			}
		}
		return
	case Waiting:
		n := t.waitingOn
		n.removeObserver(k, taskWaiter{task: t})
		t.waitingOn = nil
		t.state = Running
		if t.cancelPending == nil {
			t.cancelPending = reason
		}
		if t.cancelFn != nil {
			t.cancelFn()
		}
		t.tmb.Kill(reason)
		// Mirrors the Created branch above: a runRecord may already be
		// queued for this task (an already-true Await result queued by
		// handleEvent, or a prior wake), and pushing a second one would
		// leave that stale entry's resumeCh send with nobody left to
		// receive it once the task's goroutine has moved on.
		if !t.turnQueued {
			t.turnQueued = true
			k.turnQ.push(runRecord{task: t, resume: resumeMsg{kind: resumeCancel, err: reason}})
		}
	case Running:
		// A running task cannot be interrupted mid-step (cooperative
		// scheduling); record the pending exception so its *next*
		// suspension point observes it, matching spec §4.3/§5.
		if t.cancelPending == nil {
			t.cancelPending = reason
		}
		if t.cancelFn != nil {
			t.cancelFn()
		}
		t.tmb.Kill(reason)
	}
}

func (t *Task) terminate(state TaskState, result interface{}, err error) {
	t.state = state
	t.result = result
	t.err = err
}

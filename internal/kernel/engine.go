// Copyright 2026 The μSim Authors.
// Licensed under the AGPLv3, see LICENCE file for details.

// Package kernel implements μSim's discrete-event core: a single logical
// executor driving virtual time forward across cooperatively-scheduled
// tasks (spec §4, §5). Nothing here is safe for use from more than one
// goroutine at a time except the internal goroutine-per-task handshake,
// which the Kernel itself owns and serialises.
package kernel

import (
	"context"
	stderrors "errors"
	"strconv"

	"github.com/juju/loggo/v2"
)

var logger = loggo.GetLogger("usim.kernel")

// eventKind tags the two things a task body can report back to the
// kernel's dispatch loop.
type eventKind int

const (
	eventSuspend eventKind = iota
	eventDone
)

// taskEvent is sent on Kernel.events by a task's goroutine whenever it
// either suspends on a Notification or returns from its Func entirely.
type taskEvent struct {
	kind  eventKind
	task  *Task
	notif Notification
	err   error
}

// Kernel owns every queue, task, and scope for one simulation run. A
// Kernel is single-use: construct a fresh one per Run (spec §6, "a second
// call after completion starts from fresh state").
type Kernel struct {
	now float64

	timeQ *timeQueue
	turnQ *turnQueue

	tasks  map[TaskID]*Task
	taskID idGen

	scopes  map[ScopeID]*Scope
	scopeID idGen

	events chan taskEvent

	root *Scope

	hasTill bool
	till    float64

	debug   bool
	started bool

	eternity *leaf
	instant  *leaf
}

// Option configures a Kernel at construction time.
type Option func(*Kernel)

// WithDebug enables trace/debug logging of task start, resumption and
// termination. It adds no consistency assertions.
func WithDebug() Option {
	return func(k *Kernel) { k.debug = true }
}

// New builds a Kernel ready to Run.
func New(opts ...Option) *Kernel {
	eternity := &leaf{value: false}
	instant := &leaf{value: true}
	k := &Kernel{
		timeQ:    newTimeQueue(),
		turnQ:    newTurnQueue(),
		tasks:    make(map[TaskID]*Task),
		scopes:   make(map[ScopeID]*Scope),
		events:   make(chan taskEvent),
		eternity: eternity,
		instant:  instant,
	}
	for _, opt := range opts {
		opt(k)
	}
	return k
}

// Run drives the kernel to completion: every root Func is spawned as a
// non-volatile child of the root Scope, then turns are drained and
// virtual time advanced (spec §4.1) until both queues are empty or till
// is reached. The Python original lets a top-level failure escape the
// call as a raised exception; Go idiom returns it instead (Design Notes
// §9, SPEC_FULL.md AMBIENT STACK).
func (k *Kernel) Run(roots []Func, hasTill bool, till float64) error {
	if k.started {
		panic("usim: kernel.Run called more than once on the same Kernel")
	}
	k.started = true
	k.hasTill = hasTill
	k.till = till

	k.root = k.newScope(nil, k.RootContext())
	for i, fn := range roots {
		t := k.spawn(k.root, fn, false, 0)
		if t.Name == "" {
			t.Name = rootTaskName(i)
		}
	}

	k.pump()
	k.shutdown()

	return k.root.outcome(nil)
}

// shutdown force-cancels any task still alive once pump halts, which
// happens when till cuts the run off with work left, or when tasks remain
// blocked on notifications that nothing will ever fire. Go tasks are real goroutines
// parked on resumeCh, not abandonable Python coroutines, so Run must drive
// them to a terminal state itself rather than leaving them blocked forever.
func (k *Kernel) shutdown() {
	for {
		progressed := false
		for _, t := range k.tasks {
			if isAlive(t) {
				k.cancelTask(t, &TaskClosed{})
				progressed = true
			}
		}
		if !progressed {
			return
		}
		k.pump()
	}
}

func rootTaskName(i int) string {
	return "root[" + strconv.Itoa(i) + "]"
}

// pump implements spec §4.1's loop: drain the turn queue to empty, then
// advance to the next distinct virtual timestamp and push its records,
// repeating until both queues are exhausted or till is reached.
func (k *Kernel) pump() {
	for {
		for !k.turnQ.empty() {
			rec := k.turnQ.pop()
			k.dispatch(rec)
		}
		if k.timeQ.empty() {
			return
		}
		at, _ := k.timeQ.peek()
		if k.hasTill && at > k.till {
			return
		}
		k.now = at
		_, records := k.timeQ.pop()
		for _, r := range records {
			r.fn(k)
		}
	}
}

// spawn creates a Task as a child of scope and schedules its first
// resumption after the given virtual-time delay (spec §4.4 "Scope.do"). A
// scope already tearing down never lets a newly spawned child's body run
// at all: it is born Cancelled with the same TaskClosed/VolatileTaskClosed
// reason teardown delivers to its siblings (spec §4.4 point 3, "the Scope
// cancels remaining children and raises a single Concurrent exception
// containing every unique child failure" — a failure arriving only after
// that aggregate is already fixed, via a child spawned into the closing
// scope itself, is never part of it; spec §8 S3).
func (k *Kernel) spawn(scope *Scope, fn Func, volatile bool, after float64) *Task {
	t := &Task{
		id:       TaskID(k.taskID.alloc()),
		scope:    scope,
		volatile: volatile,
		state:    Created,
		resumeCh: make(chan resumeMsg),
		done:     newTaskDoneNotification(),
		fn:       fn,
	}
	k.tasks[t.id] = t
	scope.children = append(scope.children, t)
	if scope.closing {
		reason := error(&TaskClosed{})
		if volatile {
			reason = &VolatileTaskClosed{}
		}
		t.terminate(Cancelled, nil, &TaskCancelled{Reason: reason})
		t.done.fire(k)
		return t
	}
	k.scheduleStart(t, after)
	return t
}

// scheduleStart enqueues t's first resumption, immediately if after <= 0
// (spec §9 Open Questions: "negative after is treated as immediate"),
// otherwise once virtual time reaches now + after.
func (k *Kernel) scheduleStart(t *Task, after float64) {
	if after <= 0 {
		t.turnQueued = true
		k.turnQ.push(runRecord{task: t, resume: resumeMsg{kind: resumeNormal}})
		return
	}
	at := k.now + after
	k.timeQ.push(at, func(kk *Kernel) {
		if t.turnQueued || t.state != Created {
			return
		}
		t.turnQueued = true
		kk.turnQ.push(runRecord{task: t, resume: resumeMsg{kind: resumeNormal}})
	})
}

// dispatch resumes exactly one task for one turn: either starting its
// goroutine for the first time or unblocking it via resumeCh, then
// blocking on events until that task reports back (spec §5: "exactly one
// logical executor").
func (k *Kernel) dispatch(rec runRecord) {
	t := rec.task
	t.turnQueued = false

	if !t.started {
		t.started = true
		t.state = Running
		ctx := WithScope(WithTask(t.scope.ctx, k, t), t.scope)
		taskCtx, cancel := context.WithCancel(ctx)
		t.cancelFn = cancel
		if k.debug {
			logger.Tracef("task %d starting", t.id)
		}
		t.tmb.Go(func() error {
			var err error
			func() {
				defer func() {
					if r := recover(); r != nil {
						err = newUsageError("usim: task panicked: %v", r)
					}
				}()
				err = t.fn(taskCtx)
			}()
			k.events <- taskEvent{kind: eventDone, task: t, err: err}
			return err
		})
	} else {
		t.state = Running
		if k.debug {
			logger.Tracef("task %d resuming", t.id)
		}
		t.resumeCh <- rec.resume
	}

	ev := <-k.events
	k.handleEvent(ev)
}

// handleEvent applies the infinitesimal-interruption rule (spec §4.1): a
// suspension on an already-true Notification is re-enqueued for the very
// next turn rather than resumed inline, so every Await costs exactly one
// turn regardless of whether it actually had to wait. n.Value() is safe
// to trust here even for a composite that has never had a subscriber
// before (andNode/orNode/notNode.Value() recomputes from their operands
// whenever unobserved, see notify.go).
func (k *Kernel) handleEvent(ev taskEvent) {
	switch ev.kind {
	case eventSuspend:
		t := ev.task
		n := ev.notif
		if n.Value() {
			t.turnQueued = true
			k.turnQ.push(runRecord{task: t, resume: resumeMsg{kind: resumeNormal}})
			return
		}
		n.addObserver(k, taskWaiter{task: t})
	case eventDone:
		k.finishTask(ev.task, ev.err)
	}
}

// wakeWaiting is called by taskWaiter.onChange once the notification a
// task is blocked on becomes true. turnQueued must be set here too: it is
// the flag Task.cancel checks before pushing its own runRecord, so it has
// to reflect every path that can enqueue one, not just scheduleStart's.
func (k *Kernel) wakeWaiting(t *Task) {
	t.turnQueued = true
	k.turnQ.push(runRecord{task: t, resume: resumeMsg{kind: resumeNormal}})
}

// finishTask records a task's terminal state and notifies its owning
// scope (spec §4.3/§4.4).
func (k *Kernel) finishTask(t *Task, err error) {
	var state TaskState
	switch {
	case err == nil:
		state = Success
	default:
		var cancelled *TaskCancelled
		if stderrors.As(err, &cancelled) {
			state = Cancelled
		} else {
			state = Failed
		}
	}
	t.terminate(state, nil, err)
	if k.debug {
		logger.Debugf("task %d terminated: %s", t.id, state)
	}
	t.done.fire(k)
	if t.scope != nil {
		t.scope.onChildTerminated(k, t)
	}
}

// cancelTask is the package-internal entry point Scope teardown uses to
// cancel a child (spec §4.3/§4.4).
func (k *Kernel) cancelTask(t *Task, reason error) {
	t.cancel(k, reason)
}

// CancelTask is the exported entry point the usim façade's Task.Cancel
// uses (spec §4.3, §6 "Task ... cancel(reason=None)").
func (k *Kernel) CancelTask(t *Task, reason error) {
	k.cancelTask(t, reason)
}

// Copyright 2026 The μSim Authors.
// Licensed under the AGPLv3, see LICENCE file for details.

package kernel

import (
	"context"

	"github.com/google/uuid"
)

// Scope owns a set of child tasks and enforces structured concurrency
// (spec §4.4): nothing it starts can outlive it, and its own exit blocks
// on every non-volatile child reaching a terminal state.
type Scope struct {
	id     ScopeID
	parent *Scope
	ctx    context.Context
	uuid   string

	guard    Notification
	watchdog *Task

	children []*Task
	closing  bool
}

// NewScope builds a Scope under parent (nil for the root), usable from
// outside the package by the usim façade's WithScope/WithUntil helpers.
func (k *Kernel) NewScope(parent *Scope, ctx context.Context) *Scope {
	return k.newScope(parent, ctx)
}

// ArmGuard arms the watchdog task backing an `until` scope. Call it once,
// before Finish.
func (s *Scope) ArmGuard(k *Kernel, guard Notification) {
	s.armGuard(k, guard)
}

// Finish runs the Scope's exit procedure from outside the package: t is
// the task executing the enclosing body, bodyErr is whatever that body
// returned.
func (s *Scope) Finish(k *Kernel, t *Task, bodyErr error) error {
	return s.finish(k, t, bodyErr)
}

func (k *Kernel) newScope(parent *Scope, ctx context.Context) *Scope {
	s := &Scope{
		id:     ScopeID(k.scopeID.alloc()),
		parent: parent,
		ctx:    ctx,
		uuid:   uuid.NewString(),
	}
	k.scopes[s.id] = s
	return s
}

// ID returns a stable, human-readable identifier for logging.
func (s *Scope) ID() string { return s.uuid }

// Do spawns fn as a child task of the scope (spec §4.4 "Scope.do"). A
// volatile child never blocks the scope's exit and is force-cancelled the
// moment teardown begins, whether or not it would otherwise finish
// quickly (spec GLOSSARY: "Volatile task").
func (s *Scope) Do(k *Kernel, fn Func, volatile bool, after float64) *Task {
	return k.spawn(s, fn, volatile, after)
}

// armGuard spawns the watchdog task backing an `until` scope (spec §4.4
// "until(notification)"). The watchdog is itself volatile: it must never
// outlive the scope it guards, and firing it starts the same teardown
// path a failing child or body exception would.
func (s *Scope) armGuard(k *Kernel, guard Notification) {
	s.guard = guard
	watchdogFn := func(ctx context.Context) error {
		if err := Await(ctx, guard); err != nil {
			return nil
		}
		s.beginClosing(k)
		return nil
	}
	s.watchdog = k.spawn(s, watchdogFn, true, 0)
}

// beginClosing starts Scope teardown: every still-alive child is
// cancelled with the reason appropriate to its kind (spec §4.3/§4.4). It
// is idempotent — the first failure, the guard firing, or the body's own
// exception may all race to trigger it, but only the first one acts.
func (s *Scope) beginClosing(k *Kernel) {
	if s.closing {
		return
	}
	s.closing = true
	for _, c := range s.children {
		if isAlive(c) {
			reason := error(&TaskClosed{})
			if c.volatile {
				reason = &VolatileTaskClosed{}
			}
			k.cancelTask(c, reason)
		}
	}
}

// closeVolatile force-cancels any volatile child still alive, even on a
// clean exit with no failures (spec GLOSSARY: "force-terminated on
// teardown" applies unconditionally to volatile children).
func (s *Scope) closeVolatile(k *Kernel) {
	for _, c := range s.children {
		if c.volatile && isAlive(c) {
			k.cancelTask(c, &VolatileTaskClosed{})
		}
	}
}

func isAlive(t *Task) bool {
	switch t.state {
	case Success, Failed, Cancelled:
		return false
	default:
		return true
	}
}

// onChildTerminated reacts to any child reaching a terminal state (spec
// §4.4 point 3: "Concurrent failure before body completion: the Scope
// cancels remaining children"). Only a genuine Failed child starts
// teardown; a Cancelled child never does, matching the "excluding
// cancellation-driven terminations" rule used when the final outcome is
// computed.
func (s *Scope) onChildTerminated(k *Kernel, t *Task) {
	if t.state == Failed {
		s.beginClosing(k)
	}
}

// finish runs the exit procedure for a body-bearing Scope (spec §4.4
// point 1: "await all non-volatile children"). A volatile child — not
// least an `until` watchdog — must stay alive across that wait: it is
// what lets the guard still fire and cancel stragglers while the body
// itself has already returned. Only once every non-volatile child has
// reached a terminal state does teardown force-close whatever volatile
// children are still running, then wait for *their* cancellation to
// finish too, so Scope closure completeness (spec §8 property 5) holds
// for every child, volatile or not. t is the task executing the
// enclosing body; it is the one that suspends at each of these points.
func (s *Scope) finish(k *Kernel, t *Task, bodyErr error) error {
	if bodyErr != nil {
		s.beginClosing(k)
	}
	if err := t.awaitImpl(k, s.doneFiltered(k, false)); err != nil {
		return err
	}
	s.closeVolatile(k)
	if err := t.awaitImpl(k, s.doneFiltered(k, true)); err != nil {
		return err
	}
	return s.outcome(bodyErr)
}

// doneFiltered builds the composite notification that fires once every
// child matching volatile has reached a terminal state (spec §4.4: the
// Normal-completion wait counts only non-volatile children; the second,
// post-closeVolatile wait picks up whatever volatile children that just
// force-cancelled).
func (s *Scope) doneFiltered(k *Kernel, volatile bool) Notification {
	var combined Notification
	for _, c := range s.children {
		if c.volatile != volatile {
			continue
		}
		if combined == nil {
			combined = c.Done()
		} else {
			combined = NewAnd(combined, c.Done())
		}
	}
	if combined == nil {
		return k.instant
	}
	return combined
}

// outcome implements the priority chain from spec §4.4/§7: fatal beats
// the body's own synchronous exception, which beats an aggregate
// Concurrent of child failures, which beats a clean exit.
func (s *Scope) outcome(bodyErr error) error {
	failures := s.failedChildErrors()

	if f := firstFatal(failures); f != nil {
		return f
	}
	if f := firstFatal([]error{bodyErr}); f != nil {
		return f
	}
	if bodyErr != nil {
		return bodyErr
	}
	if len(failures) > 0 {
		return newConcurrent(failures)
	}
	return nil
}

func (s *Scope) failedChildErrors() []error {
	var out []error
	for _, c := range s.children {
		if c.state == Failed {
			out = append(out, c.err)
		}
	}
	return out
}

// FatalError marks an error that must escape Scope aggregation entirely
// rather than being folded into a Concurrent (spec §7 priority list).
// μSim itself never constructs one; it exists for callers whose failures
// must always propagate regardless of how many siblings also failed.
type FatalError struct {
	Err error
}

func (e *FatalError) Error() string { return e.Err.Error() }
func (e *FatalError) Unwrap() error { return e.Err }

func firstFatal(errs []error) error {
	for _, e := range errs {
		if e == nil {
			continue
		}
		if f, ok := e.(*FatalError); ok {
			return f
		}
	}
	return nil
}

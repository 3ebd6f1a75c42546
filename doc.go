// Copyright 2026 The μSim Authors.
// Licensed under the AGPLv3, see LICENCE file for details.

// Package usim is a discrete-event simulation kernel: a cooperative
// coroutine scheduler driven by virtual time, with a notification graph
// that wakes suspended tasks when predicates become true, structured
// concurrency via Scope, and a small set of coordination primitives
// (Flag, Tracked, Lock, Channel, Queue, Resources).
//
// A simulation is one or more root functions passed to Run. Each runs as
// a cooperative task: it suspends only by calling Await (directly, or
// through a primitive built on it — ranging over Delay or Interval, a Lock's Acquire, a
// Channel's Get, a nested Scope's exit) and resumes exactly where it left
// off once the awaited Notification becomes true.
package usim

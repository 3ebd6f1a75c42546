// Copyright 2026 The μSim Authors.
// Licensed under the AGPLv3, see LICENCE file for details.

package kernel

// TaskID, ScopeID and NotificationID are opaque ids. TaskID and ScopeID
// key the Kernel's task and scope tables and appear in log lines; Tasks
// and Scopes still refer to each other by pointer (Task.scope,
// Scope.parent, Scope.children).
type TaskID uint64

// ScopeID identifies a Scope in the kernel's scope table.
type ScopeID uint64

// NotificationID is declared for identifying notification nodes, but no
// code assigns or reads one; a Notification's identity is its pointer.
type NotificationID uint64

type idGen struct {
	next uint64
}

func (g *idGen) alloc() uint64 {
	g.next++
	return g.next
}

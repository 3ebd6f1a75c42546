// Copyright 2026 The μSim Authors.
// Licensed under the AGPLv3, see LICENCE file for details.

package kernel

// Notification is the NotificationGraph node described in spec §3/§4.2:
// an observable Boolean-valued predicate with subscription semantics.
// Leaves (Flag, relational comparisons, time leaves, task-completion
// sentinels) and composites (And, Or, Not) both implement it.
type Notification interface {
	// Value reports the notification's current Boolean value. Reading it
	// never suspends and never mutates the graph.
	Value() bool

	addObserver(k *Kernel, o observer)
	removeObserver(k *Kernel, o observer)
}

// observer is notified whenever the Notification it is attached to may
// have changed value, in either direction. Composites implement it to
// keep their own cached value correct; taskWaiter implements it to wake a
// suspended task the first time the value becomes true.
type observer interface {
	onChange(k *Kernel, n Notification)
}

// leaf is the shared implementation for terminal (non-composite)
// notifications: Flag, relational comparisons, time leaves and the
// task-completion sentinel. Re-entrancy during propagation is handled by
// snapshotting the observer list before iterating (spec §4.2): any
// observer added while the snapshot is being walked is not notified in
// this pass.
type leaf struct {
	value     bool
	observers []observer
}

func (l *leaf) Value() bool { return l.value }

func (l *leaf) addObserver(_ *Kernel, o observer) {
	l.observers = append(l.observers, o)
}

func (l *leaf) removeObserver(_ *Kernel, o observer) {
	l.observers = removeObserver(l.observers, o)
}

// setValue flips the leaf's value and, on an actual change, notifies a
// snapshot of its current observers. Setting to the current value is a
// no-op (spec §4.5: "setting [a Flag] to the same value is a no-op (no
// subscriber wake)" — generalised here to every leaf kind).
func (l *leaf) setValue(k *Kernel, self Notification, v bool) {
	if v == l.value {
		return
	}
	l.value = v
	snapshot := append([]observer(nil), l.observers...)
	for _, o := range snapshot {
		o.onChange(k, self)
	}
}

func removeObserver(list []observer, o observer) []observer {
	for i, x := range list {
		if x == o {
			return append(list[:i:i], list[i+1:]...)
		}
	}
	return list
}

// taskWaiter is the observer a suspended Task registers on the
// notification it is awaiting. It is a pure leaf-consumer: it only cares
// about the first false->true transition, after which it unsubscribes
// itself (spec invariant: "a task waits on at most one notification at a
// time" and is unsubscribed exactly once it is woken).
type taskWaiter struct {
	task *Task
}

func (w taskWaiter) onChange(k *Kernel, n Notification) {
	if !n.Value() {
		return
	}
	n.removeObserver(k, w)
	k.wakeWaiting(w.task)
}

// andNode is the conjunction combinator (spec §3 Composite/§4.2). It
// subscribes to its operands lazily: the first external subscriber
// attaches it to both operands, the last detaches it (§4.2: "so that an
// unobserved composite costs nothing").
type andNode struct {
	a, b      Notification
	value     bool
	observers []observer
}

// NewAnd builds the conjunction of a and b.
func NewAnd(a, b Notification) Notification { return &andNode{a: a, b: b} }

// Value reports the conjunction's current truth. While observed, the
// cached value is kept current by onChange and returning it is just an
// optimisation; while unobserved there is nothing keeping it current, so
// it must be recomputed from the operands directly (spec §3: "Reading it
// never suspends and never mutates the graph" holds regardless of
// whether anyone has subscribed yet).
func (n *andNode) Value() bool {
	if len(n.observers) == 0 {
		return n.a.Value() && n.b.Value()
	}
	return n.value
}

func (n *andNode) addObserver(k *Kernel, o observer) {
	if len(n.observers) == 0 {
		n.a.addObserver(k, n)
		n.b.addObserver(k, n)
		n.value = n.a.Value() && n.b.Value()
	}
	n.observers = append(n.observers, o)
}

func (n *andNode) removeObserver(k *Kernel, o observer) {
	n.observers = removeObserver(n.observers, o)
	if len(n.observers) == 0 {
		n.a.removeObserver(k, n)
		n.b.removeObserver(k, n)
	}
}

func (n *andNode) onChange(k *Kernel, _ Notification) {
	newVal := n.a.Value() && n.b.Value()
	if newVal == n.value {
		return
	}
	n.value = newVal
	snapshot := append([]observer(nil), n.observers...)
	for _, o := range snapshot {
		o.onChange(k, n)
	}
}

// orNode is the disjunction combinator.
type orNode struct {
	a, b      Notification
	value     bool
	observers []observer
}

// NewOr builds the disjunction of a and b.
func NewOr(a, b Notification) Notification { return &orNode{a: a, b: b} }

// Value reports the disjunction's current truth, recomputed from the
// operands directly while unobserved (see andNode.Value).
func (n *orNode) Value() bool {
	if len(n.observers) == 0 {
		return n.a.Value() || n.b.Value()
	}
	return n.value
}

func (n *orNode) addObserver(k *Kernel, o observer) {
	if len(n.observers) == 0 {
		n.a.addObserver(k, n)
		n.b.addObserver(k, n)
		n.value = n.a.Value() || n.b.Value()
	}
	n.observers = append(n.observers, o)
}

func (n *orNode) removeObserver(k *Kernel, o observer) {
	n.observers = removeObserver(n.observers, o)
	if len(n.observers) == 0 {
		n.a.removeObserver(k, n)
		n.b.removeObserver(k, n)
	}
}

func (n *orNode) onChange(k *Kernel, _ Notification) {
	newVal := n.a.Value() || n.b.Value()
	if newVal == n.value {
		return
	}
	n.value = newVal
	snapshot := append([]observer(nil), n.observers...)
	for _, o := range snapshot {
		o.onChange(k, n)
	}
}

// notNode is total negation (Design Notes §9: "keep Not as a thin wrapper
// that subscribes to its operand and inverts its value; do not push
// negation into leaves").
type notNode struct {
	a         Notification
	value     bool
	observers []observer
}

// NewNot builds the negation of a.
func NewNot(a Notification) Notification { return &notNode{a: a} }

// Value reports the negation's current truth, recomputed from the
// operand directly while unobserved (see andNode.Value).
func (n *notNode) Value() bool {
	if len(n.observers) == 0 {
		return !n.a.Value()
	}
	return n.value
}

func (n *notNode) addObserver(k *Kernel, o observer) {
	if len(n.observers) == 0 {
		n.a.addObserver(k, n)
		n.value = !n.a.Value()
	}
	n.observers = append(n.observers, o)
}

func (n *notNode) removeObserver(k *Kernel, o observer) {
	n.observers = removeObserver(n.observers, o)
	if len(n.observers) == 0 {
		n.a.removeObserver(k, n)
	}
}

func (n *notNode) onChange(k *Kernel, _ Notification) {
	newVal := !n.a.Value()
	if newVal == n.value {
		return
	}
	n.value = newVal
	snapshot := append([]observer(nil), n.observers...)
	for _, o := range snapshot {
		o.onChange(k, n)
	}
}

// Flag is an explicitly settable Boolean leaf (spec §4.5).
type Flag struct {
	leaf
}

// NewFlag creates a Flag with the given initial value.
func NewFlag(initial bool) *Flag {
	return &Flag{leaf: leaf{value: initial}}
}

// Set changes the flag's value, waking subscribers on a false->true
// transition. Setting to the current value is a no-op.
func (f *Flag) Set(k *Kernel, v bool) {
	f.leaf.setValue(k, f, v)
}

// relNotification is the relational-comparison leaf produced by Tracked
// comparisons (spec §4.2). It is recomputed whenever the Tracked value it
// watches changes.
type relNotification struct {
	leaf
	pred func() bool
}

func newRelNotification(pred func() bool) *relNotification {
	n := &relNotification{pred: pred}
	n.value = pred()
	return n
}

func (n *relNotification) recompute(k *Kernel) {
	n.leaf.setValue(k, n, n.pred())
}

// taskDoneNotification is the task-completion sentinel leaf a Task
// exposes for `await task` (spec §3 Leaf variants).
type taskDoneNotification struct {
	leaf
}

func newTaskDoneNotification() *taskDoneNotification {
	return &taskDoneNotification{}
}

func (n *taskDoneNotification) fire(k *Kernel) {
	n.leaf.setValue(k, n, true)
}

// timeNotification is a one-shot leaf scheduled directly through the
// TimeQueue (spec §4.2: "Implementation uses TimeQueue directly; no
// subscription machinery is needed for the time leaf itself beyond
// registration").
type timeNotification struct {
	leaf
}

func newTimeNotification(already bool) *timeNotification {
	return &timeNotification{leaf: leaf{value: already}}
}

func (n *timeNotification) fire(k *Kernel) {
	n.leaf.setValue(k, n, true)
}

// Copyright 2026 The μSim Authors.
// Licensed under the AGPLv3, see LICENCE file for details.

package kernel

import "container/heap"

// wakeRecord is one pending action tied to a virtual timestamp: either
// resuming a task directly or flipping a leaf notification true. The
// TimeQueue does not know which; it just carries the closure to run once
// `now` reaches the key.
type wakeRecord struct {
	seq int // insertion order, for FIFO-within-timestamp determinism
	fn  func(k *Kernel)
}

// timeBucket holds every wakeRecord scheduled for one timestamp, in
// insertion order.
type timeBucket struct {
	at      float64
	records []wakeRecord
}

// timeQueue is the ordered map from virtual timestamp to a FIFO of wake
// records described in spec §4.1/§4.2: push(t, record) and pop() -> (t,
// records). It is a min-heap of buckets keyed by timestamp, with equal
// timestamps coalesced into one bucket so ties are resolved by the
// bucket's own FIFO order rather than heap-internal ordering.
type timeQueue struct {
	buckets  timeHeap
	byTime   map[float64]*timeBucket
	nextSeq  int
}

func newTimeQueue() *timeQueue {
	return &timeQueue{byTime: make(map[float64]*timeBucket)}
}

func (q *timeQueue) push(at float64, fn func(k *Kernel)) {
	b, ok := q.byTime[at]
	if !ok {
		b = &timeBucket{at: at}
		q.byTime[at] = b
		heap.Push(&q.buckets, b)
	}
	q.nextSeq++
	b.records = append(b.records, wakeRecord{seq: q.nextSeq, fn: fn})
}

// empty reports whether any timestamp still has pending records.
func (q *timeQueue) empty() bool {
	return len(q.buckets) == 0
}

// peek returns the earliest pending timestamp without removing it.
func (q *timeQueue) peek() (float64, bool) {
	if q.empty() {
		return 0, false
	}
	return q.buckets[0].at, true
}

// pop removes and returns the earliest timestamp's bucket of records.
func (q *timeQueue) pop() (float64, []wakeRecord) {
	b := heap.Pop(&q.buckets).(*timeBucket)
	delete(q.byTime, b.at)
	return b.at, b.records
}

// timeHeap implements container/heap.Interface over *timeBucket, ordered
// purely by timestamp (buckets already coalesce equal timestamps so no
// secondary key is needed here).
type timeHeap []*timeBucket

func (h timeHeap) Len() int            { return len(h) }
func (h timeHeap) Less(i, j int) bool  { return h[i].at < h[j].at }
func (h timeHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *timeHeap) Push(x interface{}) { *h = append(*h, x.(*timeBucket)) }
func (h *timeHeap) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return item
}

package procsim

import "container/heap"

// FIFOQueue is an insertion-order-preserving ready structure, used by
// FCFS, RR, and each side of MLQ.
type FIFOQueue struct {
	items []string
}

// NewFIFOQueue returns an empty FIFO ready structure.
func NewFIFOQueue() *FIFOQueue {
	return &FIFOQueue{}
}

// Enqueue appends pid to the tail.
func (q *FIFOQueue) Enqueue(pid string) {
	q.items = append(q.items, pid)
}

// Dequeue removes and returns the head, or ok=false if empty.
func (q *FIFOQueue) Dequeue() (pid string, ok bool) {
	if len(q.items) == 0 {
		return "", false
	}
	pid = q.items[0]
	q.items = q.items[1:]
	return pid, true
}

// Peek returns the head without removing it.
func (q *FIFOQueue) Peek() (pid string, ok bool) {
	if len(q.items) == 0 {
		return "", false
	}
	return q.items[0], true
}

// Remove deletes pid from anywhere in the queue, preserving order of
// the rest. Used when a process is removed by RemoveProcess.
func (q *FIFOQueue) Remove(pid string) bool {
	for i, item := range q.items {
		if item == pid {
			q.items = append(q.items[:i], q.items[i+1:]...)
			return true
		}
	}
	return false
}

// Len reports the number of waiting pids.
func (q *FIFOQueue) Len() int {
	return len(q.items)
}

// Snapshot returns a defensive copy of the queue contents, head first.
func (q *FIFOQueue) Snapshot() []string {
	out := make([]string, len(q.items))
	copy(out, q.items)
	return out
}

// Key orders ready-heap entries for SJF and the two PRIORITY policies:
// (Primary, Arrival, Pid) ascending, where Primary is either next-CPU-
// burst-length (SJF) or priority (PRIORITY).
type Key struct {
	Primary int
	Arrival int
	Pid     string
}

// Less reports whether a sorts before b.
func (a Key) Less(b Key) bool {
	if a.Primary != b.Primary {
		return a.Primary < b.Primary
	}
	if a.Arrival != b.Arrival {
		return a.Arrival < b.Arrival
	}
	return a.Pid < b.Pid
}

// KeyFunc computes the current ordering key for a pid. Recomputed on
// every comparison so that SJF's key (the length of the process's
// current burst, which changes as it moves from burst to burst) stays
// correct.
type KeyFunc func(pid string) Key

// ReadyHeap is a ready structure ordered by a dynamic KeyFunc, used by
// SJF and PRIORITY-NP/PRIORITY-P. It is a small container/heap-backed
// priority queue — the idiomatic stdlib structure for this exact job;
// none of the example repos carry a third-party priority-queue library,
// and simulated workloads are small enough that container/heap's O(log
// n) push/pop is more than sufficient.
type ReadyHeap struct {
	items []string
	keyFn KeyFunc
	index map[string]int
}

// NewReadyHeap returns an empty heap ordered by keyFn.
func NewReadyHeap(keyFn KeyFunc) *ReadyHeap {
	h := &ReadyHeap{keyFn: keyFn, index: map[string]int{}}
	heap.Init(h)
	return h
}

func (h *ReadyHeap) Len() int { return len(h.items) }

func (h *ReadyHeap) Less(i, j int) bool {
	return h.keyFn(h.items[i]).Less(h.keyFn(h.items[j]))
}

func (h *ReadyHeap) Swap(i, j int) {
	h.items[i], h.items[j] = h.items[j], h.items[i]
	h.index[h.items[i]] = i
	h.index[h.items[j]] = j
}

func (h *ReadyHeap) Push(x any) {
	pid := x.(string)
	h.index[pid] = len(h.items)
	h.items = append(h.items, pid)
}

func (h *ReadyHeap) Pop() any {
	old := h.items
	n := len(old)
	pid := old[n-1]
	h.items = old[:n-1]
	delete(h.index, pid)
	return pid
}

// Insert adds pid to the heap.
func (h *ReadyHeap) Insert(pid string) {
	heap.Push(h, pid)
}

// PeekBest returns the current best pid (by keyFn) without removing it.
// Ties are broken by the key's own (arrival, pid) ordering, so repeated
// calls are stable as long as the heap is unchanged.
func (h *ReadyHeap) PeekBest() (string, bool) {
	if len(h.items) == 0 {
		return "", false
	}
	best := h.items[0]
	for _, pid := range h.items[1:] {
		if h.keyFn(pid).Less(h.keyFn(best)) {
			best = pid
		}
	}
	return best, true
}

// PopBest removes and returns the current best pid.
func (h *ReadyHeap) PopBest() (string, bool) {
	best, ok := h.PeekBest()
	if !ok {
		return "", false
	}
	h.Remove(best)
	return best, true
}

// Remove deletes pid from the heap if present.
func (h *ReadyHeap) Remove(pid string) bool {
	idx, ok := h.index[pid]
	if !ok {
		return false
	}
	heap.Remove(h, idx)
	return true
}

// Contains reports whether pid is currently in the heap.
func (h *ReadyHeap) Contains(pid string) bool {
	_, ok := h.index[pid]
	return ok
}

// Snapshot returns every waiting pid, ordered by key ascending.
func (h *ReadyHeap) Snapshot() []string {
	out := make([]string, len(h.items))
	copy(out, h.items)
	// A heap's backing slice is only partially ordered; sort by key for
	// a stable, human-readable snapshot.
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && h.keyFn(out[j]).Less(h.keyFn(out[j-1])); j-- {
			out[j], out[j-1] = out[j-1], out[j]
		}
	}
	return out
}

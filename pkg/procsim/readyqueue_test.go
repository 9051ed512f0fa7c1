package procsim

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFIFOQueueOrdering(t *testing.T) {
	q := NewFIFOQueue()
	q.Enqueue("P1")
	q.Enqueue("P2")
	q.Enqueue("P3")

	assert.Equal(t, 3, q.Len())
	pid, ok := q.Peek()
	assert.True(t, ok)
	assert.Equal(t, "P1", pid)

	assert.True(t, q.Remove("P2"))
	assert.Equal(t, []string{"P1", "P3"}, q.Snapshot())

	pid, ok = q.Dequeue()
	assert.True(t, ok)
	assert.Equal(t, "P1", pid)

	pid, ok = q.Dequeue()
	assert.True(t, ok)
	assert.Equal(t, "P3", pid)

	_, ok = q.Dequeue()
	assert.False(t, ok)
}

func TestReadyHeapSJFOrdering(t *testing.T) {
	bursts := map[string]int{"P1": 7, "P2": 4, "P3": 1, "P4": 4}
	arrivals := map[string]int{"P1": 0, "P2": 2, "P3": 4, "P4": 5}

	h := NewReadyHeap(func(pid string) Key {
		return Key{Primary: bursts[pid], Arrival: arrivals[pid], Pid: pid}
	})

	for _, pid := range []string{"P1", "P2", "P3", "P4"} {
		h.Insert(pid)
	}
	h.Remove("P1")

	// S3 scenario: shortest burst wins, then earlier arrival breaks ties.
	best, ok := h.PopBest()
	assert.True(t, ok)
	assert.Equal(t, "P3", best)

	best, ok = h.PopBest()
	assert.True(t, ok)
	assert.Equal(t, "P2", best)

	best, ok = h.PopBest()
	assert.True(t, ok)
	assert.Equal(t, "P4", best)

	_, ok = h.PopBest()
	assert.False(t, ok)
}

func TestReadyHeapSnapshotIsSorted(t *testing.T) {
	keys := map[string]Key{
		"P1": {Primary: 3, Arrival: 0, Pid: "P1"},
		"P2": {Primary: 1, Arrival: 0, Pid: "P2"},
		"P3": {Primary: 2, Arrival: 0, Pid: "P3"},
	}
	h := NewReadyHeap(func(pid string) Key { return keys[pid] })
	h.Insert("P1")
	h.Insert("P2")
	h.Insert("P3")

	assert.Equal(t, []string{"P2", "P3", "P1"}, h.Snapshot())
	assert.True(t, h.Contains("P1"))
}

package metrics

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSegTreeLongestRuns(t *testing.T) {
	tr := NewSegTree()
	// 1 1 1 0 0 1 1 0 1 1 1 1
	bits := []int{1, 1, 1, 0, 0, 1, 1, 0, 1, 1, 1, 1}
	for _, b := range bits {
		tr.Append(b)
	}

	assert.Equal(t, 4, tr.LongestBusyRun())
	assert.Equal(t, 2, tr.LongestIdleRun())
	assert.Equal(t, len(bits), tr.Len())
}

func TestSegTreeAllIdle(t *testing.T) {
	tr := NewSegTree()
	for i := 0; i < 5; i++ {
		tr.Append(0)
	}
	assert.Equal(t, 0, tr.LongestBusyRun())
	assert.Equal(t, 5, tr.LongestIdleRun())
}

func TestSegTreeEmpty(t *testing.T) {
	tr := NewSegTree()
	assert.Equal(t, 0, tr.LongestBusyRun())
	assert.Equal(t, 0, tr.LongestIdleRun())
}

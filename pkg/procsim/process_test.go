package procsim

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewProcessValidation(t *testing.T) {
	_, err := NewProcess(Descriptor{Pid: "P1", Bursts: []int{5, 2}})
	assert.Error(t, err, "even-length burst sequence must be rejected")

	_, err = NewProcess(Descriptor{Pid: "P1", Bursts: []int{0}})
	assert.Error(t, err, "non-positive burst must be rejected")

	_, err = NewProcess(Descriptor{Pid: "", Bursts: []int{5}})
	assert.Error(t, err, "empty pid must be rejected")

	p, err := NewProcess(Descriptor{Pid: "P1", Bursts: []int{5, 2, 3}})
	assert.NoError(t, err)
	assert.Equal(t, StateNew, p.State)
	assert.Equal(t, 5, p.RemainingInBurst)
	assert.Equal(t, -1, p.FirstStart)
	assert.Equal(t, -1, p.CompletionTime)
}

func TestProcessBurstAdvance(t *testing.T) {
	p, err := NewProcess(Descriptor{Pid: "P1", Bursts: []int{3, 2, 4}})
	assert.NoError(t, err)

	assert.True(t, p.IsCPUBurst(0))
	assert.True(t, p.HasNextBurst())
	assert.Equal(t, 2, p.NextBurst())

	p.AdvanceBurst()
	assert.Equal(t, 1, p.BurstIndex)
	assert.Equal(t, 2, p.RemainingInBurst)
	assert.False(t, p.IsCPUBurst(1))

	p.AdvanceBurst()
	assert.Equal(t, 2, p.BurstIndex)
	assert.False(t, p.HasNextBurst())
}

func TestRefsPerCPUTickDefault(t *testing.T) {
	p, _ := NewProcess(Descriptor{Pid: "P1", Bursts: []int{1}})
	assert.Equal(t, 1, p.RefsPerCPUTick())
	p.RefsPerTick = 3
	assert.Equal(t, 3, p.RefsPerCPUTick())
}

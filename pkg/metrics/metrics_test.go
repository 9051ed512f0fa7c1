package metrics

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/nkamau/osched/pkg/procsim"
)

// TestComputeAggregateS1 mirrors spec.md's S1 scenario expectations.
func TestComputeAggregateS1(t *testing.T) {
	processes := map[string]procsim.Process{
		"P1": {
			Descriptor:     procsim.Descriptor{Pid: "P1", Arrival: 0, Bursts: []int{5}},
			State:          procsim.StateDone,
			FirstStart:     0,
			CompletionTime: 5,
		},
		"P2": {
			Descriptor:     procsim.Descriptor{Pid: "P2", Arrival: 1, Bursts: []int{3}},
			State:          procsim.StateDone,
			FirstStart:     5,
			CompletionTime: 8,
		},
		"P3": {
			Descriptor:     procsim.Descriptor{Pid: "P3", Arrival: 2, Bursts: []int{1}},
			State:          procsim.StateDone,
			FirstStart:     8,
			CompletionTime: 9,
		},
	}
	cpu := []string{"P1", "P1", "P1", "P1", "P1", "P2", "P2", "P2", "P3"}

	agg := ComputeAggregate(processes, cpu)

	assert.Equal(t, 3, agg.Completed)
	assert.Equal(t, 9, agg.Makespan)
	assert.InDelta(t, 100.0, agg.CPUUtilization, 0.001)

	want := map[string]int{"P1": 0, "P2": 4, "P3": 6}
	for _, m := range agg.Per {
		assert.Equal(t, want[m.Pid], m.WaitTime, m.Pid)
	}
}

func TestComputeAggregateSkipsInFlightProcesses(t *testing.T) {
	processes := map[string]procsim.Process{
		"P1": {Descriptor: procsim.Descriptor{Pid: "P1", Bursts: []int{5}}, State: procsim.StateRunning},
	}
	agg := ComputeAggregate(processes, []string{"P1", "P1"})
	assert.Equal(t, 0, agg.Completed)
	assert.Empty(t, agg.Per)
}

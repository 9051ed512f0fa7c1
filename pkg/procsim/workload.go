package procsim

import (
	"fmt"
	"math/rand"
)

// WorkloadSpec parameterizes a reproducible random workload (SPEC_FULL
// "Supplemented Features"): used by the comparator's default "same
// workload" input and by fuzz-style invariant tests (spec.md §8).
type WorkloadSpec struct {
	Seed           int64
	ProcessCount   int
	MaxArrival     int
	MaxPriority    int
	MinCPUBurst    int
	MaxCPUBurst    int
	MinIOBurst     int
	MaxIOBurst     int
	MaxBurstPairs  int // how many (cpu,io) pairs follow the first cpu burst
	IOProbability  float64
	SysQueueChance float64
}

// DefaultWorkloadSpec returns reasonable defaults for a small demo
// workload.
func DefaultWorkloadSpec(seed int64, processCount int) WorkloadSpec {
	return WorkloadSpec{
		Seed:           seed,
		ProcessCount:   processCount,
		MaxArrival:     10,
		MaxPriority:    5,
		MinCPUBurst:    1,
		MaxCPUBurst:    8,
		MinIOBurst:     1,
		MaxIOBurst:     5,
		MaxBurstPairs:  2,
		IOProbability:  0.6,
		SysQueueChance: 0.3,
	}
}

// GenerateWorkload produces a deterministic set of process descriptors
// from spec.
func GenerateWorkload(spec WorkloadSpec) []Descriptor {
	rng := rand.New(rand.NewSource(spec.Seed))
	out := make([]Descriptor, 0, spec.ProcessCount)

	for i := 0; i < spec.ProcessCount; i++ {
		bursts := []int{spec.MinCPUBurst + rng.Intn(spec.MaxCPUBurst-spec.MinCPUBurst+1)}
		for pair := 0; pair < spec.MaxBurstPairs; pair++ {
			if rng.Float64() > spec.IOProbability {
				break
			}
			bursts = append(bursts,
				spec.MinIOBurst+rng.Intn(spec.MaxIOBurst-spec.MinIOBurst+1),
				spec.MinCPUBurst+rng.Intn(spec.MaxCPUBurst-spec.MinCPUBurst+1),
			)
		}

		class := QueueClassUser
		if rng.Float64() < spec.SysQueueChance {
			class = QueueClassSys
		}

		out = append(out, Descriptor{
			Pid:        fmt.Sprintf("P%d", i+1),
			Arrival:    rng.Intn(spec.MaxArrival + 1),
			Priority:   rng.Intn(spec.MaxPriority + 1),
			QueueClass: class,
			Bursts:     bursts,
		})
	}
	return out
}

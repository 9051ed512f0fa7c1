package metrics

import (
	"sort"

	"github.com/samber/lo"

	"github.com/nkamau/osched/pkg/procsim"
)

// ProcessMetrics holds the per-process derived timing values spec.md
// §3/§8 invariant 2 defines.
type ProcessMetrics struct {
	Pid            string
	Arrival        int
	CompletionTime int
	TurnaroundTime int
	WaitTime       int
	ResponseTime   int
}

// Aggregate holds the run-wide summary spec.md §3 Metrics describes.
type Aggregate struct {
	AvgWaitTime       float64
	AvgTurnaround     float64
	AvgResponseTime   float64
	CPUUtilization    float64 // percent
	Makespan          int
	Throughput        float64 // completed / makespan
	Completed         int
	Per               []ProcessMetrics
}

// sumBursts adds every CPU-burst length of a descriptor (the even-index
// entries of Bursts).
func sumBursts(bursts []int, isCPU func(i int) bool) int {
	total := 0
	for i, b := range bursts {
		if isCPU(i) {
			total += b
		}
	}
	return total
}

// ComputeProcessMetrics derives TAT/WT/RT for one completed process.
// RT is FirstStart - Arrival; TAT is CompletionTime - Arrival; WT is TAT
// minus every busy-ticks accounting (CPU bursts, I/O ticks served,
// memory-wait ticks served), per spec.md §8 invariant 2.
func ComputeProcessMetrics(p procsim.Process) ProcessMetrics {
	cpuBurstTotal := sumBursts(p.Bursts, p.IsCPUBurst)
	tat := p.CompletionTime - p.Arrival
	wt := tat - cpuBurstTotal - p.IOTicksServed - p.MemWaitTicksServed
	rt := p.FirstStart - p.Arrival

	return ProcessMetrics{
		Pid:            p.Pid,
		Arrival:        p.Arrival,
		CompletionTime: p.CompletionTime,
		TurnaroundTime: tat,
		WaitTime:       wt,
		ResponseTime:   rt,
	}
}

// ComputeAggregate derives the run-wide summary from every process and
// the recorded CPU timeline. Only processes with CompletionTime set
// (i.e. DONE) contribute to the averages; processes still in flight are
// skipped, mirroring a live "metrics so far" snapshot.
func ComputeAggregate(processes map[string]procsim.Process, cpuTimeline []string) Aggregate {
	done := lo.Filter(lo.Values(processes), func(p procsim.Process, _ int) bool {
		return p.State == procsim.StateDone
	})

	per := lo.Map(done, func(p procsim.Process, _ int) ProcessMetrics {
		return ComputeProcessMetrics(p)
	})
	sort.Slice(per, func(i, j int) bool { return per[i].Pid < per[j].Pid })

	makespan := len(cpuTimeline)
	busy := lo.CountBy(cpuTimeline, func(tok string) bool { return tok != "IDLE" })

	agg := Aggregate{
		Makespan:  makespan,
		Completed: len(per),
		Per:       per,
	}
	if makespan > 0 {
		agg.CPUUtilization = float64(busy) / float64(makespan) * 100
		agg.Throughput = float64(len(per)) / float64(makespan)
	}
	if len(per) > 0 {
		var wtSum, tatSum, rtSum int
		for _, m := range per {
			wtSum += m.WaitTime
			tatSum += m.TurnaroundTime
			rtSum += m.ResponseTime
		}
		n := float64(len(per))
		agg.AvgWaitTime = float64(wtSum) / n
		agg.AvgTurnaround = float64(tatSum) / n
		agg.AvgResponseTime = float64(rtSum) / n
	}
	return agg
}

// Package comparator runs every supported scheduling policy against the
// same workload and ranks them (spec.md §4.5): fairness metrics, a
// Pareto front across nine metrics, and a weighted, workload-aware
// score with robust normalization.
package comparator

import (
	"math"
	"sort"

	"github.com/samber/lo"
	"github.com/sirupsen/logrus"

	"github.com/nkamau/osched/pkg/config"
	"github.com/nkamau/osched/pkg/memsim"
	"github.com/nkamau/osched/pkg/metrics"
	"github.com/nkamau/osched/pkg/procsim"
	"github.com/nkamau/osched/pkg/scheduler"
)

// Mode is a weighted-scoring optimization target.
type Mode string

const (
	ModeThroughput     Mode = "throughput"
	ModeResponsiveness Mode = "responsiveness"
	ModeFairness       Mode = "fairness"
)

// Confidence buckets the relative gap between the top two scores.
type Confidence string

const (
	ConfidenceHigh   Confidence = "HIGH"
	ConfidenceMedium Confidence = "MEDIUM"
	ConfidenceLow    Confidence = "LOW"
)

// Fairness holds the fairness metrics spec.md §4.5 names.
type Fairness struct {
	MaxWT     int     `json:"max_wt"`
	P95WT     int     `json:"p95_wt"`
	StdDevWT  float64 `json:"wt_std"`
	Starved   bool    `json:"starved"`
}

// Result is one policy's outcome: its aggregate/per-process metrics,
// fairness metrics, and whether it finished within the tick budget.
type Result struct {
	Policy    string                   `json:"policy"`
	Aggregate metrics.Aggregate        `json:"aggregate"`
	Per       []metrics.ProcessMetrics `json:"per"`
	Fairness  Fairness                 `json:"fairness"`
	TicksUsed int                      `json:"ticks_used"`
	Completed bool                     `json:"completed"`

	Score      float64 `json:"score,omitempty"`
	ParetoFront bool   `json:"pareto_front"`
}

// Report is the full comparator output for one workload.
type Report struct {
	Results    []Result   `json:"results"`
	Mode       Mode       `json:"mode"`
	Ranking    []string   `json:"ranking"` // policy names, best first
	Confidence Confidence `json:"confidence"`
}

// metricVector is the nine-metric vector spec.md §4.5 names, in the
// fixed order used throughout this package.
type metricVector struct {
	avgWT, avgTAT, avgRT     float64
	makespan                 float64
	p95WT, maxWT, wtStd      float64
	cpuUtil, throughput      float64
}

// higherIsBetter parallels metricVector's field order.
var higherIsBetter = [9]bool{false, false, false, false, false, false, false, true, true}

const defaultTickBudget = 100000

// Run executes every policy in policies against the same workload
// independently (fresh Scheduler per policy, spec.md §4.5), bounded by
// tickBudget (0 means defaultTickBudget). base supplies every
// non-policy SimConfig field (memory mode, quantum, page size, ...);
// base.Policy is overwritten per run.
func Run(log *logrus.Entry, base config.SimConfig, workload []procsim.Descriptor, policies []string, tickBudget int) ([]Result, error) {
	if tickBudget <= 0 {
		tickBudget = defaultTickBudget
	}

	results := make([]Result, 0, len(policies))
	for _, policyName := range policies {
		cfg := base
		cfg.Policy = policyName

		var res Result
		var err error
		if cfg.MemoryMode == config.MemoryFull && cfg.ReplacementPolicy == config.ReplacementOPT {
			res, err = runOfflineOPT(log, cfg, workload, tickBudget)
		} else {
			res, err = runOne(log, cfg, workload, tickBudget)
		}
		if err != nil {
			return nil, err
		}
		results = append(results, res)
	}
	return results, nil
}

func runOne(log *logrus.Entry, cfg config.SimConfig, workload []procsim.Descriptor, tickBudget int) (Result, error) {
	sched := scheduler.New(log)
	if err := sched.Configure(cfg); err != nil {
		return Result{}, err
	}
	if err := sched.Seed(workload); err != nil {
		return Result{}, err
	}
	return drive(sched, cfg.Policy, tickBudget)
}

// runOfflineOPT performs the two-pass offline OPT approximation: a
// dry run with LRU (a stand-in replacer, since OPT requires a
// reference string that doesn't exist yet) records the chronological
// (pid, vpn) reference trace, then a second run replays the same
// workload with an OPTReplacer seeded from that trace. Fault-count
// differences between passes can shift a handful of cross-process
// reference interleavings; this is a documented approximation, not an
// exact optimum (see DESIGN.md).
func runOfflineOPT(log *logrus.Entry, cfg config.SimConfig, workload []procsim.Descriptor, tickBudget int) (Result, error) {
	probe := scheduler.New(log)
	if err := probe.ConfigureOffline(cfg); err != nil {
		return Result{}, err
	}
	if err := probe.Seed(workload); err != nil {
		return Result{}, err
	}
	if _, err := drive(probe, cfg.Policy, tickBudget); err != nil {
		return Result{}, err
	}
	trace := probe.RefTrace()

	sched := scheduler.New(log)
	if err := sched.ConfigureOffline(cfg); err != nil {
		return Result{}, err
	}
	if err := sched.Seed(workload); err != nil {
		return Result{}, err
	}
	sched.SetReplacer(&memsim.OPTReplacer{Sequence: trace})
	return drive(sched, cfg.Policy, tickBudget)
}

func drive(sched *scheduler.Scheduler, policyName string, tickBudget int) (Result, error) {
	ticks := 0
	for ticks < tickBudget && !sched.AllDone() {
		if err := sched.Tick(); err != nil {
			return Result{}, err
		}
		ticks++
	}

	processes := sched.Processes()
	cpu, _, _ := sched.Timelines()
	agg := metrics.ComputeAggregate(processes, cpu)

	return Result{
		Policy:    policyName,
		Aggregate: agg,
		Per:       agg.Per,
		Fairness:  computeFairness(agg.Per),
		TicksUsed: ticks,
		Completed: sched.AllDone(),
	}, nil
}

func computeFairness(per []metrics.ProcessMetrics) Fairness {
	if len(per) == 0 {
		return Fairness{}
	}
	wts := lo.Map(per, func(m metrics.ProcessMetrics, _ int) int { return m.WaitTime })
	sorted := append([]int(nil), wts...)
	sort.Ints(sorted)

	maxWT := sorted[len(sorted)-1]
	avgWT := mean(wts)
	p95 := nearestRankP95(sorted)
	std := stdDev(wts, avgWT)

	return Fairness{
		MaxWT:    maxWT,
		P95WT:    p95,
		StdDevWT: std,
		Starved:  float64(maxWT) >= math.Max(2*avgWT, 10),
	}
}

func mean(xs []int) float64 {
	if len(xs) == 0 {
		return 0
	}
	sum := 0
	for _, x := range xs {
		sum += x
	}
	return float64(sum) / float64(len(xs))
}

func stdDev(xs []int, avg float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	var sumSq float64
	for _, x := range xs {
		d := float64(x) - avg
		sumSq += d * d
	}
	return math.Sqrt(sumSq / float64(len(xs)))
}

// nearestRankP95 returns the nearest-rank 95th percentile of an
// ascending-sorted slice: rank = ceil(0.95*n), 1-indexed.
func nearestRankP95(sortedAsc []int) int {
	n := len(sortedAsc)
	if n == 0 {
		return 0
	}
	rank := int(math.Ceil(0.95 * float64(n)))
	if rank < 1 {
		rank = 1
	}
	if rank > n {
		rank = n
	}
	return sortedAsc[rank-1]
}

func vectorOf(r Result) metricVector {
	return metricVector{
		avgWT:      r.Aggregate.AvgWaitTime,
		avgTAT:     r.Aggregate.AvgTurnaround,
		avgRT:      r.Aggregate.AvgResponseTime,
		makespan:   float64(r.Aggregate.Makespan),
		p95WT:      float64(r.Fairness.P95WT),
		maxWT:      float64(r.Fairness.MaxWT),
		wtStd:      r.Fairness.StdDevWT,
		cpuUtil:    r.Aggregate.CPUUtilization,
		throughput: r.Aggregate.Throughput,
	}
}

func (v metricVector) at(i int) float64 {
	switch i {
	case 0:
		return v.avgWT
	case 1:
		return v.avgTAT
	case 2:
		return v.avgRT
	case 3:
		return v.makespan
	case 4:
		return v.p95WT
	case 5:
		return v.maxWT
	case 6:
		return v.wtStd
	case 7:
		return v.cpuUtil
	default:
		return v.throughput
	}
}

// dominates reports whether a dominates b: at least as good on every
// dimension, strictly better on at least one.
func dominates(a, b metricVector) bool {
	strictlyBetter := false
	for i := 0; i < 9; i++ {
		av, bv := a.at(i), b.at(i)
		if higherIsBetter[i] {
			if av < bv {
				return false
			}
			if av > bv {
				strictlyBetter = true
			}
		} else {
			if av > bv {
				return false
			}
			if av < bv {
				strictlyBetter = true
			}
		}
	}
	return strictlyBetter
}

// ParetoFront marks every non-dominated result.
func ParetoFront(results []Result) []Result {
	vectors := lo.Map(results, func(r Result, _ int) metricVector { return vectorOf(r) })
	out := make([]Result, len(results))
	for i := range results {
		out[i] = results[i]
		dominated := false
		for j := range results {
			if i == j {
				continue
			}
			if dominates(vectors[j], vectors[i]) {
				dominated = true
				break
			}
		}
		out[i].ParetoFront = !dominated
	}
	return out
}

package comparator

import (
	"math"
	"sort"

	"github.com/nkamau/osched/pkg/procsim"
)

// weights is the nine-metric weight vector, same field order as
// metricVector.
type weights [9]float64

var baseWeights = map[Mode]weights{
	// throughput favors makespan/utilization/throughput.
	ModeThroughput: {0.10, 0.10, 0.05, 0.25, 0.05, 0.05, 0.05, 0.20, 0.15},
	// responsiveness favors response time and tail-wait metrics.
	ModeResponsiveness: {0.15, 0.10, 0.25, 0.05, 0.15, 0.10, 0.10, 0.05, 0.05},
	// fairness favors the spread metrics: std-dev, max, p95.
	ModeFairness: {0.15, 0.05, 0.05, 0.05, 0.20, 0.20, 0.25, 0.025, 0.025},
}

// signals is the workload profile the weighting shifts on (spec.md
// §4.5: "weights ... shift by workload signals").
type signals struct {
	ioRatio        float64
	burstVariance  float64 // coefficient of variation of CPU burst lengths
	arrivalSpread  int
	processCount   int
}

func computeSignals(workload []procsim.Descriptor) signals {
	var cpuTotal, ioTotal int
	var cpuBursts []int
	minArrival, maxArrival := math.MaxInt, math.MinInt

	for _, d := range workload {
		for i, b := range d.Bursts {
			if i%2 == 0 {
				cpuTotal += b
				cpuBursts = append(cpuBursts, b)
			} else {
				ioTotal += b
			}
		}
		if d.Arrival < minArrival {
			minArrival = d.Arrival
		}
		if d.Arrival > maxArrival {
			maxArrival = d.Arrival
		}
	}

	sig := signals{processCount: len(workload)}
	if cpuTotal+ioTotal > 0 {
		sig.ioRatio = float64(ioTotal) / float64(cpuTotal+ioTotal)
	}
	if len(workload) > 0 {
		sig.arrivalSpread = maxArrival - minArrival
	}
	sig.burstVariance = coefficientOfVariation(cpuBursts)
	return sig
}

func coefficientOfVariation(xs []int) float64 {
	if len(xs) == 0 {
		return 0
	}
	var sum float64
	for _, x := range xs {
		sum += float64(x)
	}
	mean := sum / float64(len(xs))
	if mean == 0 {
		return 0
	}
	var sumSq float64
	for _, x := range xs {
		d := float64(x) - mean
		sumSq += d * d
	}
	std := math.Sqrt(sumSq / float64(len(xs)))
	return std / mean
}

// applyShifts nudges the base weights by 0.05 per active signal,
// clamps negatives to zero, and renormalizes to sum to 1.
func applyShifts(base weights, sig signals) weights {
	const d = 0.05
	w := base

	if sig.ioRatio >= 0.6 {
		w[2] += d // avg_rt: I/O-heavy workloads reward responsiveness
		w[8] -= d // throughput
	}
	if sig.burstVariance >= 0.8 {
		w[6] += d // wt_std: uneven bursts reward fairness
		w[3] -= d // makespan
	}
	if sig.arrivalSpread >= 10 {
		w[4] += d // p95_wt: spread-out arrivals reward tail behavior
		w[0] -= d // avg_wt
	}
	if sig.processCount >= 12 {
		w[5] += d // max_wt: crowded workloads reward worst-case bounds
		w[7] -= d // cpu_util
	}

	sum := 0.0
	for i := range w {
		if w[i] < 0 {
			w[i] = 0
		}
		sum += w[i]
	}
	if sum > 0 {
		for i := range w {
			w[i] /= sum
		}
	}
	return w
}

func sigmoid(z float64) float64 { return 1 / (1 + math.Exp(-z)) }

// normalizeCohort robust-normalizes one metric column across every
// policy's result (spec.md §4.5): robust z via median/IQR through a
// sigmoid, min-max fallback when IQR is zero. The sign is flipped for
// higher-is-better metrics first, so every returned value follows
// "lower is better" uniformly. Invariant 10: equal inputs normalize to
// exactly 0.5.
func normalizeCohort(xs []float64, higher bool) []float64 {
	work := make([]float64, len(xs))
	for i, x := range xs {
		if higher {
			work[i] = -x
		} else {
			work[i] = x
		}
	}

	sorted := append([]float64(nil), work...)
	sort.Float64s(sorted)
	med := medianOf(sorted)
	q1 := percentileOf(sorted, 0.25)
	q3 := percentileOf(sorted, 0.75)
	iqr := q3 - q1

	out := make([]float64, len(work))
	if iqr == 0 {
		min, max := sorted[0], sorted[len(sorted)-1]
		for i, x := range work {
			if max == min {
				out[i] = 0.5
			} else {
				out[i] = (x - min) / (max - min)
			}
		}
		return out
	}
	for i, x := range work {
		z := (x - med) / iqr
		out[i] = sigmoid(z)
	}
	return out
}

func medianOf(sortedAsc []float64) float64 {
	n := len(sortedAsc)
	if n == 0 {
		return 0
	}
	if n%2 == 1 {
		return sortedAsc[n/2]
	}
	return (sortedAsc[n/2-1] + sortedAsc[n/2]) / 2
}

// percentileOf uses linear interpolation between closest ranks.
func percentileOf(sortedAsc []float64, p float64) float64 {
	n := len(sortedAsc)
	if n == 0 {
		return 0
	}
	if n == 1 {
		return sortedAsc[0]
	}
	pos := p * float64(n-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sortedAsc[lo]
	}
	frac := pos - float64(lo)
	return sortedAsc[lo]*(1-frac) + sortedAsc[hi]*frac
}

// tieBreakLess returns a mode-specific lexicographic tiebreaker for two
// results whose scores are equal.
func tieBreakLess(mode Mode, a, b Result) bool {
	switch mode {
	case ModeThroughput:
		if a.Aggregate.Makespan != b.Aggregate.Makespan {
			return a.Aggregate.Makespan < b.Aggregate.Makespan
		}
		return a.Aggregate.CPUUtilization > b.Aggregate.CPUUtilization
	case ModeResponsiveness:
		if a.Aggregate.AvgResponseTime != b.Aggregate.AvgResponseTime {
			return a.Aggregate.AvgResponseTime < b.Aggregate.AvgResponseTime
		}
		return a.Fairness.P95WT < b.Fairness.P95WT
	default: // ModeFairness
		if a.Fairness.StdDevWT != b.Fairness.StdDevWT {
			return a.Fairness.StdDevWT < b.Fairness.StdDevWT
		}
		return a.Fairness.MaxWT < b.Fairness.MaxWT
	}
}

// Score computes weighted scores for every result, ranks them (lowest
// score first), marks the Pareto front, and buckets the confidence of
// the top pick by the relative gap to the runner-up.
func Score(results []Result, mode Mode, workload []procsim.Descriptor) Report {
	results = ParetoFront(results)
	if len(results) == 0 {
		return Report{Mode: mode, Confidence: ConfidenceLow}
	}

	w := applyShifts(baseWeights[mode], computeSignals(workload))

	columns := make([][]float64, 9)
	for i := 0; i < 9; i++ {
		columns[i] = make([]float64, len(results))
		for j, r := range results {
			columns[i][j] = vectorOf(r).at(i)
		}
		columns[i] = normalizeCohort(columns[i], higherIsBetter[i])
	}

	for j := range results {
		var score float64
		for i := 0; i < 9; i++ {
			score += w[i] * columns[i][j]
		}
		results[j].Score = score
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score < results[j].Score
		}
		return tieBreakLess(mode, results[i], results[j])
	})

	ranking := make([]string, len(results))
	for i, r := range results {
		ranking[i] = r.Policy
	}

	confidence := ConfidenceLow
	if len(results) >= 2 {
		best, second := results[0].Score, results[1].Score
		denom := math.Abs(second)
		if denom == 0 {
			denom = 1
		}
		gap := (second - best) / denom
		switch {
		case gap >= 0.08:
			confidence = ConfidenceHigh
		case gap >= 0.04:
			confidence = ConfidenceMedium
		}
	} else {
		confidence = ConfidenceHigh
	}

	return Report{
		Results:    results,
		Mode:       mode,
		Ranking:    ranking,
		Confidence: confidence,
	}
}

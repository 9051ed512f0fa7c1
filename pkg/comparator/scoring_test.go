package comparator

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/nkamau/osched/pkg/procsim"
)

func TestNormalizeCohortEqualInputsYieldHalf(t *testing.T) {
	xs := []float64{7, 7, 7, 7}
	out := normalizeCohort(xs, false)
	for _, v := range out {
		assert.Equal(t, 0.5, v)
	}
}

func TestNormalizeCohortOrdersLowerIsBetter(t *testing.T) {
	xs := []float64{1, 2, 3, 100}
	out := normalizeCohort(xs, false)
	for i := 1; i < len(out); i++ {
		assert.LessOrEqual(t, out[i-1], out[i])
	}
}

func TestNormalizeCohortFlipsHigherIsBetter(t *testing.T) {
	xs := []float64{1, 2, 3, 100}
	lower := normalizeCohort(xs, false)
	higher := normalizeCohort(xs, true)
	// x=1 is best under "lower is better" (small normalized score) but
	// worst under "higher is better" (large normalized score), and
	// vice versa for x=100.
	assert.Less(t, lower[0], higher[0])
	assert.Greater(t, lower[len(lower)-1], higher[len(higher)-1])
}

func TestApplyShiftsSumsToOne(t *testing.T) {
	sig := signals{ioRatio: 0.7, burstVariance: 0.9, arrivalSpread: 20, processCount: 15}
	w := applyShifts(baseWeights[ModeThroughput], sig)

	var sum float64
	for _, v := range w {
		assert.GreaterOrEqual(t, v, 0.0)
		sum += v
	}
	assert.InDelta(t, 1.0, sum, 1e-9)
}

func TestApplyShiftsNoSignalsReturnsBase(t *testing.T) {
	w := applyShifts(baseWeights[ModeFairness], signals{})
	assert.Equal(t, baseWeights[ModeFairness], w)
}

func TestComputeSignalsIORatio(t *testing.T) {
	workload := []procsim.Descriptor{
		{Pid: "P1", Arrival: 0, Bursts: []int{1, 9, 1}},
	}
	sig := computeSignals(workload)
	assert.InDelta(t, 0.818, sig.ioRatio, 0.01)
	assert.Equal(t, 1, sig.processCount)
}

func TestPercentileOfMatchesMedianAtP50(t *testing.T) {
	sorted := []float64{1, 2, 3, 4, 5}
	assert.Equal(t, medianOf(sorted), percentileOf(sorted, 0.5))
}

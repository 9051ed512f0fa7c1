package metrics

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFenwickRangeSum(t *testing.T) {
	f := NewFenwick()
	bits := []int{1, 0, 1, 1, 0, 1, 0, 0, 1}
	for _, b := range bits {
		f.Append(b)
	}

	assert.Equal(t, 5, f.Total())
	assert.Equal(t, bits[2]+bits[3]+bits[4]+bits[5], f.RangeSum(3, 6))
	assert.Equal(t, bits[0], f.RangeSum(1, 1))
	assert.Equal(t, 9, f.Len())
}

func TestFenwickGrowsPastInitialCapacity(t *testing.T) {
	f := NewFenwick()
	for i := 0; i < 100; i++ {
		f.Append(i % 2)
	}
	assert.Equal(t, 50, f.Total())
	assert.Equal(t, 100, f.Len())
}

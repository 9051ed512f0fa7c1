package memsim

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRefGeneratorSEQWraps(t *testing.T) {
	g := NewRefGenerator("SEQ", 0, 4096, []int{0, 1, 2}, nil, 1)
	got := []int{g.Next(), g.Next(), g.Next(), g.Next()}
	assert.Equal(t, []int{0, 4096, 8192, 0}, got)
}

func TestRefGeneratorLOOPUsesLeadingPeriod(t *testing.T) {
	g := NewRefGenerator("LOOP", 0, 4096, []int{0, 1, 2, 3, 4}, nil, 1)
	got := []int{g.Next(), g.Next(), g.Next(), g.Next()}
	// period capped at 3, so it cycles VPNs 0,1,2,0
	assert.Equal(t, []int{0, 4096, 8192, 0}, got)
}

func TestRefGeneratorCUSTOMCycles(t *testing.T) {
	g := NewRefGenerator("CUSTOM", 0, 4096, nil, []int{100, 200}, 1)
	got := []int{g.Next(), g.Next(), g.Next()}
	assert.Equal(t, []int{100, 200, 100}, got)
}

func TestRefGeneratorRANDStaysWithinWorkingSet(t *testing.T) {
	g := NewRefGenerator("RAND", 0, 4096, []int{0, 1, 2}, nil, 42)
	for i := 0; i < 20; i++ {
		va := g.Next()
		vpn := va / 4096
		assert.Contains(t, []int{0, 1, 2}, vpn)
	}
}

func TestRefGeneratorRANDDeterministicForSameSeed(t *testing.T) {
	a := NewRefGenerator("RAND", 0, 4096, []int{0, 1, 2, 3}, nil, 7)
	b := NewRefGenerator("RAND", 0, 4096, []int{0, 1, 2, 3}, nil, 7)
	for i := 0; i < 10; i++ {
		assert.Equal(t, a.Next(), b.Next())
	}
}

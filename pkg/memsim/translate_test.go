package memsim

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestTranslateS5PageFaultScenario mirrors spec.md's S5 scenario: FULL
// mode, 2 frames, LRU, page-size=4096, P1 working set {0,1,2} with SEQ
// pattern. The first three references each fault; the third evicts
// VPN 0, the least recently used page.
func TestTranslateS5PageFaultScenario(t *testing.T) {
	const pageSize = 4096
	const vmSize = 3 * pageSize

	ft := NewFrameTable(2)
	pt := NewPageTable()
	replacer := LRUReplacer{}
	gen := NewRefGenerator("SEQ", 0, pageSize, []int{0, 1, 2}, nil, 1)

	va1 := gen.Next()
	res1 := Translate(va1, 0, vmSize, pageSize, pt, ft, replacer, "P1", 1, 0)
	assert.True(t, res1.Fault)
	assert.Equal(t, 0, res1.VPN)
	assert.False(t, res1.Evicted)

	va2 := gen.Next()
	res2 := Translate(va2, 0, vmSize, pageSize, pt, ft, replacer, "P1", 2, 1)
	assert.True(t, res2.Fault)
	assert.Equal(t, 1, res2.VPN)
	assert.False(t, res2.Evicted)

	va3 := gen.Next()
	res3 := Translate(va3, 0, vmSize, pageSize, pt, ft, replacer, "P1", 3, 2)
	assert.True(t, res3.Fault)
	assert.Equal(t, 2, res3.VPN)
	assert.True(t, res3.Evicted)
	assert.Equal(t, 0, res3.EvictedVPN)

	entry0, _ := pt.Lookup(0)
	assert.False(t, entry0.Present)
}

func TestTranslateHitUpdatesRecency(t *testing.T) {
	const pageSize = 4096
	const vmSize = 2 * pageSize

	ft := NewFrameTable(1)
	pt := NewPageTable()
	replacer := LRUReplacer{}

	res1 := Translate(0, 0, vmSize, pageSize, pt, ft, replacer, "P1", 1, 0)
	assert.True(t, res1.Fault)

	res2 := Translate(0, 0, vmSize, pageSize, pt, ft, replacer, "P1", 5, 1)
	assert.False(t, res2.Fault)
	assert.Equal(t, 5, ft.Frames[0].LastUse)
}

func TestTranslateFoldsOutOfRangeAddress(t *testing.T) {
	const pageSize = 4096
	const vmSize = 2 * pageSize

	ft := NewFrameTable(1)
	pt := NewPageTable()
	replacer := LRUReplacer{}

	res := Translate(3*pageSize, 0, vmSize, pageSize, pt, ft, replacer, "P1", 1, 0)
	assert.True(t, res.Fault)
	assert.GreaterOrEqual(t, res.VPN, 0)
	assert.Less(t, res.VPN, vmSize/pageSize)
}

package memsim

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFrameTableInstallAndEvict(t *testing.T) {
	ft := NewFrameTable(2)
	idx, ok := ft.FreeFrame()
	assert.True(t, ok)
	assert.Equal(t, 0, idx)

	ft.Install(idx, "P1", 3, 10)
	pid, vpn := ft.OwnerOf(idx)
	assert.Equal(t, "P1", pid)
	assert.Equal(t, 3, vpn)

	_, ok = ft.FreeFrame()
	assert.True(t, ok) // second frame still free

	evPid, evVPN := ft.Evict(idx)
	assert.Equal(t, "P1", evPid)
	assert.Equal(t, 3, evVPN)
	_, ok = ft.FreeFrame()
	assert.True(t, ok)
}

func TestFrameTableRemovePid(t *testing.T) {
	ft := NewFrameTable(2)
	ft.Install(0, "P1", 0, 0)
	ft.Install(1, "P2", 0, 0)

	ft.RemovePid("P1")
	assert.True(t, ft.Frames[0].Free)
	assert.False(t, ft.Frames[1].Free)
}

func TestPageTableInvalidate(t *testing.T) {
	pt := NewPageTable()
	e := pt.EnsureEntry(2)
	e.Present = true
	e.PFN = 1

	pt.Invalidate(2)
	got, ok := pt.Lookup(2)
	assert.True(t, ok)
	assert.False(t, got.Present)
}

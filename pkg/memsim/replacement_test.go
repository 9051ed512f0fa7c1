package memsim

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFIFOReplacerPicksOldestLoad(t *testing.T) {
	ft := NewFrameTable(3)
	ft.Install(0, "P1", 0, 5)
	ft.Install(1, "P1", 1, 2)
	ft.Install(2, "P1", 2, 8)

	r := FIFOReplacer{}
	assert.Equal(t, 1, r.Victim(ft, 0))
}

func TestLRUReplacerPicksLeastRecentlyUsed(t *testing.T) {
	ft := NewFrameTable(2)
	ft.Install(0, "P1", 0, 0)
	ft.Install(1, "P1", 1, 0)
	ft.Touch(1, 5)
	ft.Touch(0, 1)

	r := LRUReplacer{}
	assert.Equal(t, 0, r.Victim(ft, 0))
}

func TestLFUReplacerPicksLeastFrequent(t *testing.T) {
	ft := NewFrameTable(2)
	ft.Install(0, "P1", 0, 0)
	ft.Install(1, "P1", 1, 0)
	ft.Touch(0, 1)
	ft.Touch(0, 2)

	r := LFUReplacer{}
	assert.Equal(t, 1, r.Victim(ft, 0))
}

func TestClockReplacerSkipsReferencedFrames(t *testing.T) {
	ft := NewFrameTable(3)
	ft.Install(0, "P1", 0, 0) // Ref true
	ft.Install(1, "P1", 1, 0) // Ref true
	ft.Frames[2] = Frame{Free: false, Pid: "P1", VPN: 2, Ref: false}

	c := NewClockReplacer()
	victim := c.Victim(ft, 0)
	assert.Equal(t, 2, victim)
	assert.False(t, ft.Frames[0].Ref)
	assert.False(t, ft.Frames[1].Ref)
}

func TestOPTReplacerPicksFarthestNextUse(t *testing.T) {
	ft := NewFrameTable(2)
	ft.Install(0, "P1", 0, 0)
	ft.Install(1, "P1", 1, 0)

	r := &OPTReplacer{Sequence: []Ref{
		{Pid: "P1", VPN: 0},
		{Pid: "P1", VPN: 1},
		{Pid: "P1", VPN: 0},
	}}
	// at refIndex 0: VPN0 next used at index 2 (distance 2), VPN1 at index 1 (distance 1)
	assert.Equal(t, 0, r.Victim(ft, 0))
}

func TestOPTReplacerPrefersNeverReusedPage(t *testing.T) {
	ft := NewFrameTable(2)
	ft.Install(0, "P1", 0, 0)
	ft.Install(1, "P1", 1, 0)

	r := &OPTReplacer{Sequence: []Ref{
		{Pid: "P1", VPN: 1},
	}}
	assert.Equal(t, 0, r.Victim(ft, 0))
}

func TestNewReplacerFactory(t *testing.T) {
	assert.IsType(t, FIFOReplacer{}, NewReplacer("FIFO"))
	assert.IsType(t, LRUReplacer{}, NewReplacer("LRU"))
	assert.IsType(t, LFUReplacer{}, NewReplacer("LFU"))
	assert.IsType(t, &ClockReplacer{}, NewReplacer("CLOCK"))
	assert.IsType(t, &OPTReplacer{}, NewReplacer("OPT"))
	assert.Nil(t, NewReplacer("BOGUS"))
}

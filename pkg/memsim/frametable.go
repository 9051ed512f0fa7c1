// Package memsim implements the paged virtual-memory subsystem: frame
// table, per-process page tables, reference generators, and page
// replacement policies (spec.md §3, §4.3). As with pkg/procsim, there
// is no teacher file to adapt — the content is new, grounded directly
// on spec.md's data model and the replacement-policy table.
package memsim

// Frame is one physical frame slot (spec.md §3 Frame Table).
type Frame struct {
	Free bool
	Pid  string
	VPN  int

	LoadTick int // tick the current page was loaded (FIFO victim key)
	LastUse  int // tick of last access (LRU victim key)
	Freq     int // access frequency (LFU victim key)
	Ref      bool
}

// FrameTable is the fixed-size array of physical frames shared by every
// process in FULL memory mode.
type FrameTable struct {
	Frames []Frame
}

// NewFrameTable returns a frame table with n free frames.
func NewFrameTable(n int) *FrameTable {
	frames := make([]Frame, n)
	for i := range frames {
		frames[i] = Frame{Free: true}
	}
	return &FrameTable{Frames: frames}
}

// FreeFrame returns the index of an arbitrary free frame, if any.
func (ft *FrameTable) FreeFrame() (int, bool) {
	for i, f := range ft.Frames {
		if f.Free {
			return i, true
		}
	}
	return -1, false
}

// Install overwrites frame idx with a fresh owner.
func (ft *FrameTable) Install(idx int, pid string, vpn, tick int) {
	ft.Frames[idx] = Frame{
		Free:     false,
		Pid:      pid,
		VPN:      vpn,
		LoadTick: tick,
		LastUse:  tick,
		Freq:     1,
		Ref:      true,
	}
}

// Evict frees frame idx and reports its prior owner.
func (ft *FrameTable) Evict(idx int) (pid string, vpn int) {
	f := ft.Frames[idx]
	ft.Frames[idx] = Frame{Free: true}
	return f.Pid, f.VPN
}

// Touch updates the hit-path bookkeeping on frame idx.
func (ft *FrameTable) Touch(idx, tick int) {
	ft.Frames[idx].LastUse = tick
	ft.Frames[idx].Freq++
	ft.Frames[idx].Ref = true
}

// OwnerOf returns the (pid, vpn) occupying frame idx.
func (ft *FrameTable) OwnerOf(idx int) (pid string, vpn int) {
	f := ft.Frames[idx]
	return f.Pid, f.VPN
}

// RemovePid clears every frame owned by pid (used by RemoveProcess).
func (ft *FrameTable) RemovePid(pid string) {
	for i, f := range ft.Frames {
		if !f.Free && f.Pid == pid {
			ft.Frames[i] = Frame{Free: true}
		}
	}
}

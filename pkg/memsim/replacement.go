package memsim

import "math"

// Replacer chooses a victim frame when a fault occurs and no frame is
// free. refIndex is a monotonically increasing count of memory
// references processed so far (not the tick counter, since more than
// one reference can land in a single tick); only OPTReplacer uses it.
type Replacer interface {
	Name() string
	Victim(ft *FrameTable, refIndex int) int
}

// FIFOReplacer evicts the frame with the smallest load-tick.
type FIFOReplacer struct{}

func (FIFOReplacer) Name() string { return "FIFO" }

func (FIFOReplacer) Victim(ft *FrameTable, _ int) int {
	victim, best := -1, math.MaxInt
	for i, f := range ft.Frames {
		if !f.Free && f.LoadTick < best {
			best, victim = f.LoadTick, i
		}
	}
	return victim
}

// LRUReplacer evicts the frame with the smallest last-used tick; ties
// broken by the smallest PFN.
type LRUReplacer struct{}

func (LRUReplacer) Name() string { return "LRU" }

func (LRUReplacer) Victim(ft *FrameTable, _ int) int {
	victim, best := -1, math.MaxInt
	for i, f := range ft.Frames {
		if !f.Free && f.LastUse < best {
			best, victim = f.LastUse, i
		}
	}
	return victim
}

// LFUReplacer evicts the frame with the smallest access frequency; ties
// broken by smallest last-used, then smallest PFN.
type LFUReplacer struct{}

func (LFUReplacer) Name() string { return "LFU" }

func (LFUReplacer) Victim(ft *FrameTable, _ int) int {
	victim := -1
	bestFreq, bestLastUse := math.MaxInt, math.MaxInt
	for i, f := range ft.Frames {
		if f.Free {
			continue
		}
		if f.Freq < bestFreq || (f.Freq == bestFreq && f.LastUse < bestLastUse) {
			bestFreq, bestLastUse, victim = f.Freq, f.LastUse, i
		}
	}
	return victim
}

// ClockReplacer implements the second-chance algorithm with a circular
// pointer carried across calls.
type ClockReplacer struct {
	pointer int
}

// NewClockReplacer returns a clock replacer starting at frame 0.
func NewClockReplacer() *ClockReplacer {
	return &ClockReplacer{}
}

func (c *ClockReplacer) Name() string { return "CLOCK" }

func (c *ClockReplacer) Victim(ft *FrameTable, _ int) int {
	n := len(ft.Frames)
	if n == 0 {
		return -1
	}
	for {
		f := &ft.Frames[c.pointer]
		if f.Free {
			v := c.pointer
			c.pointer = (c.pointer + 1) % n
			return v
		}
		if f.Ref {
			f.Ref = false
			c.pointer = (c.pointer + 1) % n
			continue
		}
		v := c.pointer
		c.pointer = (c.pointer + 1) % n
		return v
	}
}

// Ref identifies one (pid, vpn) reference in a recorded access
// sequence, as used by OPTReplacer.
type Ref struct {
	Pid string
	VPN int
}

// OPTReplacer evicts the frame whose page has the farthest next
// reference in Sequence (spec.md §4.3); pages never referenced again
// are preferred. It requires the full reference string up front, so it
// is only usable by the comparator's offline replay
// (pkg/scheduler.ErrOPTUnsupportedLive is returned if selected on the
// live Tick path).
type OPTReplacer struct {
	Sequence []Ref
}

func (o *OPTReplacer) Name() string { return "OPT" }

func (o *OPTReplacer) Victim(ft *FrameTable, refIndex int) int {
	victim, farthest := -1, -1
	for i, f := range ft.Frames {
		if f.Free {
			continue
		}
		dist := o.nextDistance(f.Pid, f.VPN, refIndex)
		if dist > farthest {
			farthest, victim = dist, i
		}
	}
	return victim
}

func (o *OPTReplacer) nextDistance(pid string, vpn, refIndex int) int {
	for i := refIndex + 1; i < len(o.Sequence); i++ {
		if o.Sequence[i].Pid == pid && o.Sequence[i].VPN == vpn {
			return i - refIndex
		}
	}
	return math.MaxInt
}

// NewReplacer constructs the Replacer named by policy, or nil if
// unrecognized.
func NewReplacer(policy string) Replacer {
	switch policy {
	case "FIFO":
		return FIFOReplacer{}
	case "LRU":
		return LRUReplacer{}
	case "LFU":
		return LFUReplacer{}
	case "CLOCK":
		return NewClockReplacer()
	case "OPT":
		return &OPTReplacer{}
	default:
		return nil
	}
}

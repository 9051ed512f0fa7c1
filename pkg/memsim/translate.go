package memsim

// Result reports the outcome of one Translate call.
type Result struct {
	VPN     int
	Fault   bool
	Evicted bool
	EvictedPid string
	EvictedVPN int
}

// Translate resolves a virtual address against pt (the owning
// process's page table) and ft (the shared frame table), installing or
// evicting frames as needed. Addresses outside [base, base+vmSize) are
// folded back into range ((va-base) mod vmSize) rather than rejected, so
// a single bad address generator cannot abort a run. The folded address
// is translated like any other (it hits if its page is resident), and
// Result carries no separate out-of-range marker.
//
// refIndex is the generator-wide reference count, needed only by
// OPTReplacer; pid identifies the owner for frame bookkeeping on a
// fault. Eviction of another process's page-table entry is the
// caller's responsibility: Translate only holds the current process's
// table.
func Translate(va, base, vmSize, pageSize int, pt *PageTable, ft *FrameTable, replacer Replacer, pid string, tick, refIndex int) Result {
	offset := va - base
	if offset < 0 || offset >= vmSize {
		offset = ((offset % vmSize) + vmSize) % vmSize
	}
	vpn := offset / pageSize

	entry, ok := pt.Lookup(vpn)
	if ok && entry.Present {
		entry.LastUsed = tick
		entry.Freq++
		ft.Touch(entry.PFN, tick)
		return Result{VPN: vpn}
	}

	entry = pt.EnsureEntry(vpn)

	idx, free := ft.FreeFrame()
	res := Result{VPN: vpn, Fault: true}
	if !free {
		idx = replacer.Victim(ft, refIndex)
		evPid, evVPN := ft.Evict(idx)
		if evPid == pid {
			pt.Invalidate(evVPN)
		}
		res.Evicted = true
		res.EvictedPid = evPid
		res.EvictedVPN = evVPN
	}

	ft.Install(idx, pid, vpn, tick)
	entry.Present = true
	entry.PFN = idx
	entry.LastUsed = tick
	entry.Freq++

	return res
}

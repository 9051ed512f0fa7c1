package memsim

// PageEntry is one VPN's mapping state in a process's page table.
type PageEntry struct {
	Present  bool
	PFN      int
	LastUsed int
	Freq     int
	Dirty    bool
}

// PageTable maps VPN to PageEntry for a single process. Working sets in
// this simulator are small (tens of pages), so a plain map is used
// rather than the dense-array-plus-hot-map split spec.md §9's Design
// Notes describe for a from-scratch kernel implementation — correctness
// doesn't depend on that micro-optimization at this scale.
type PageTable struct {
	Entries map[int]*PageEntry
}

// NewPageTable returns an empty page table.
func NewPageTable() *PageTable {
	return &PageTable{Entries: map[int]*PageEntry{}}
}

// Lookup returns the entry for vpn, if one has ever been created.
func (pt *PageTable) Lookup(vpn int) (*PageEntry, bool) {
	e, ok := pt.Entries[vpn]
	return e, ok
}

// EnsureEntry returns the entry for vpn, creating a not-present one if
// necessary.
func (pt *PageTable) EnsureEntry(vpn int) *PageEntry {
	e, ok := pt.Entries[vpn]
	if !ok {
		e = &PageEntry{}
		pt.Entries[vpn] = e
	}
	return e
}

// Invalidate marks vpn not-present, used when its frame is evicted.
func (pt *PageTable) Invalidate(vpn int) {
	if e, ok := pt.Entries[vpn]; ok {
		e.Present = false
		e.PFN = 0
	}
}

// Snapshot returns every tracked entry as (vpn, entry) pairs, for wire
// serialization.
func (pt *PageTable) Snapshot() map[int]PageEntry {
	out := make(map[int]PageEntry, len(pt.Entries))
	for vpn, e := range pt.Entries {
		out[vpn] = *e
	}
	return out
}

package memsim

import "math/rand"

// RefGenerator produces the sequence of virtual addresses a process
// touches on each CPU tick, per its configured RefPattern (spec.md
// §3/§4.3: SEQ walks the working set in order and wraps; LOOP walks a
// small leading period of it repeatedly; RAND draws from it via a
// seeded PRNG; CUSTOM cycles a user-supplied address list).
type RefGenerator struct {
	pattern  string
	base     int
	pageSize int
	working  []int // working-set VPNs, for SEQ/LOOP/RAND
	custom   []int // raw virtual addresses, for CUSTOM
	period   int   // LOOP's leading-subset length
	rng      *rand.Rand
	idx      int // cursor into working/custom
}

// NewRefGenerator builds a generator for one process. seed makes RAND
// deterministic per-process for replay.
func NewRefGenerator(pattern string, base, pageSize int, working, custom []int, seed int64) *RefGenerator {
	period := len(working)
	if period > 3 {
		period = 3
	}
	return &RefGenerator{
		pattern:  pattern,
		base:     base,
		pageSize: pageSize,
		working:  working,
		custom:   custom,
		period:   period,
		rng:      rand.New(rand.NewSource(seed)),
	}
}

// Next returns the next virtual address to translate.
func (g *RefGenerator) Next() int {
	switch g.pattern {
	case "LOOP":
		period := g.period
		if period == 0 {
			period = 1
		}
		vpn := g.working[g.idx%period]
		g.idx++
		return g.base + vpn*g.pageSize
	case "RAND":
		vpn := g.working[g.rng.Intn(len(g.working))]
		return g.base + vpn*g.pageSize
	case "CUSTOM":
		va := g.custom[g.idx%len(g.custom)]
		g.idx++
		return va
	default: // SEQ
		vpn := g.working[g.idx%len(g.working)]
		g.idx++
		return g.base + vpn*g.pageSize
	}
}

package scheduler

import (
	"github.com/nkamau/osched/pkg/memsim"
	"github.com/nkamau/osched/pkg/procsim"
)

// translateWithReplacer adapts memsim.Translate to a process's own
// virtual-memory geometry.
func translateWithReplacer(
	va int,
	p *procsim.Process,
	pt *memsim.PageTable,
	ft *memsim.FrameTable,
	replacer memsim.Replacer,
	pageSize int,
	pid string,
	tick, refIndex int,
) memsim.Result {
	return memsim.Translate(va, p.BaseAddr, p.VMSize, pageSize, pt, ft, replacer, pid, tick, refIndex)
}

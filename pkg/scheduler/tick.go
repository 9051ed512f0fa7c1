package scheduler

import (
	"fmt"
	"sort"

	goerrors "github.com/go-errors/errors"

	"github.com/nkamau/osched/pkg/config"
	"github.com/nkamau/osched/pkg/memsim"
	"github.com/nkamau/osched/pkg/procsim"
)

// Tick advances logical time by exactly one unit, running the eight
// fixed phases of spec.md §4.1 in order.
func (s *Scheduler) Tick() error {
	if !s.configured {
		return goerrors.Wrap(ErrNotInitialized, 1)
	}

	s.admitArrivals()
	s.releaseMemoryWaiters()
	s.advanceIO()
	s.preemptionCheck()
	s.dispatch()
	memToken := s.executeTick()
	s.postExecute()
	s.advanceTime(memToken)

	return nil
}

// phase 1
func (s *Scheduler) admitArrivals() {
	var arrivals []*procsim.Process
	for _, p := range s.processes {
		if p.State == procsim.StateNew && p.Arrival == s.currentTime {
			arrivals = append(arrivals, p)
		}
	}
	sort.Slice(arrivals, func(i, j int) bool {
		if arrivals[i].Arrival != arrivals[j].Arrival {
			return arrivals[i].Arrival < arrivals[j].Arrival
		}
		return arrivals[i].Pid < arrivals[j].Pid
	})
	for _, p := range arrivals {
		s.logEvent(p.Pid, p.State, procsim.StateReady, "arrival")
		p.State = procsim.StateReady
		s.policy.OnArrival(p.Pid)
	}
}

// phase 2
func (s *Scheduler) releaseMemoryWaiters() {
	var released []*procsim.Process
	for _, p := range s.processes {
		if p.State != procsim.StateWaitingMem {
			continue
		}
		p.MemWaitRemaining--
		p.MemWaitTicksServed++
		if p.MemWaitRemaining <= 0 {
			released = append(released, p)
		}
	}
	sort.Slice(released, func(i, j int) bool { return released[i].Pid < released[j].Pid })
	for _, p := range released {
		s.logEvent(p.Pid, p.State, procsim.StateReady, "memory-released")
		p.State = procsim.StateReady
		s.policy.OnArrival(p.Pid)
	}
}

// phase 3. Records the pid actively served during this tick (before any
// release/promotion) into s.ioTickToken, since a release that completes
// this tick still means the device served that pid through this tick.
func (s *Scheduler) advanceIO() {
	s.ioTickToken = "IDLE"
	if !s.ioDevice.Busy() {
		return
	}
	s.ioTickToken = s.ioDevice.ActivePid

	released := s.ioDevice.AdvanceOne()
	if released != "" {
		p := s.processes[released]
		p.IOTicksServed++
		s.logEvent(p.Pid, p.State, procsim.StateReady, "io-complete")
		p.State = procsim.StateReady
		p.AdvanceBurst()
		s.policy.OnArrival(p.Pid)
	} else if p, ok := s.processes[s.ioDevice.ActivePid]; ok {
		p.IOTicksServed++
	}
}

// phase 4
func (s *Scheduler) preemptionCheck() {
	if s.runningPid == "" {
		return
	}
	running := s.processes[s.runningPid]

	switch s.policyName {
	case config.PolicyPriorityP:
		if s.policy.ShouldPreempt(s.runningPid, s.currentTime) {
			s.preemptRunning(running, "preempt")
		}
	case config.PolicyRR:
		if s.quantumLeft <= 0 && s.policy.Len() > 0 {
			s.preemptRunning(running, "time slice")
		}
	case config.PolicyMLQ:
		mlq := s.policy.(*MLQPolicy)
		if running.QueueClass == procsim.QueueClassUser && mlq.sys.Len() > 0 {
			s.preemptRunning(running, "preempt")
		} else if s.quantumLeft <= 0 && s.policy.Len() > 0 {
			s.preemptRunning(running, "time slice")
		}
	}
}

func (s *Scheduler) preemptRunning(p *procsim.Process, reason string) {
	s.logEvent(p.Pid, p.State, procsim.StateReady, reason)
	p.State = procsim.StateReady
	s.policy.OnArrival(p.Pid)
	s.runningPid = ""
	s.quantumLeft = 0
}

// phase 5
func (s *Scheduler) dispatch() {
	if s.runningPid != "" {
		return
	}
	pid, ok := s.policy.PickNext(s.currentTime)
	if !ok {
		return
	}
	p := s.processes[pid]
	if p.FirstStart == -1 {
		p.FirstStart = s.currentTime
	}
	s.logEvent(p.Pid, p.State, procsim.StateRunning, "dispatch")
	p.State = procsim.StateRunning
	s.runningPid = pid
	if s.policy.RequiresQuantum() {
		s.quantumLeft = s.quantum
	}
}

// phase 6: execute one CPU tick, returning the memory timeline token.
func (s *Scheduler) executeTick() string {
	if s.runningPid == "" {
		s.cpuTimeline = append(s.cpuTimeline, "IDLE")
		return "IDLE"
	}
	p := s.processes[s.runningPid]
	s.cpuTimeline = append(s.cpuTimeline, p.Pid)

	memToken := "IDLE"
	if s.memoryMode == config.MemoryFull && p.MemoryAware() {
		faulted, token := s.performMemoryRefs(p)
		memToken = token
		if faulted {
			return token
		}
	}

	p.RemainingInBurst--
	p.CPUTicksServed++
	if s.policy.RequiresQuantum() {
		s.quantumLeft--
	}
	return memToken
}

// performMemoryRefs runs refs_per_cpu_tick translations for p. On the
// first fault it parks p in WAITING_MEM and aborts the remaining
// references for this tick (spec.md §4.1 step 6b).
func (s *Scheduler) performMemoryRefs(p *procsim.Process) (faulted bool, memToken string) {
	gen := s.refGens[p.Pid]
	pt := s.pageTables[p.Pid]

	for i := 0; i < p.RefsPerCPUTick(); i++ {
		va := gen.Next()
		penalty := p.FaultPenalty
		if penalty == 0 {
			penalty = s.faultPenalty
		}

		res := translateWithReplacer(va, p, pt, s.frameTable, s.replacer, s.pageSize, p.Pid, s.currentTime, s.refIndex)
		s.refIndex++
		s.refTrace = append(s.refTrace, memsim.Ref{Pid: p.Pid, VPN: res.VPN})

		var evictPid string
		var evictVPN int
		if res.Fault {
			s.faultCount++
			if res.Evicted && res.EvictedPid != p.Pid {
				if otherPT, ok := s.pageTables[res.EvictedPid]; ok {
					otherPT.Invalidate(res.EvictedVPN)
				}
			}
			if res.Evicted {
				evictPid, evictVPN = res.EvictedPid, res.EvictedVPN
			}
			s.logTranslation(p.Pid, va, res.VPN, false, evictPid, evictVPN)
			s.logEvent(p.Pid, p.State, procsim.StateWaitingMem, "page-fault")
			p.State = procsim.StateWaitingMem
			p.MemWaitRemaining = penalty
			s.runningPid = ""
			s.quantumLeft = 0
			return true, "FAULT:" + p.Pid
		}
		s.hitCount++
		s.logTranslation(p.Pid, va, res.VPN, true, "", 0)
	}
	return false, "HIT:" + p.Pid
}

// logTranslation records one translation-log line (spec.md §6's
// "Translation log line" grammar).
func (s *Scheduler) logTranslation(pid string, va, vpn int, hit bool, evictPid string, evictVPN int) {
	pfn := -1
	if entry, ok := s.pageTables[pid].Lookup(vpn); ok {
		pfn = entry.PFN
	}
	outcome := "FAULT"
	if hit {
		outcome = "HIT"
	}
	line := fmt.Sprintf("t=%d: %s VA=%d VPN=%d PFN=%d %s", s.currentTime, pid, va, vpn, pfn, outcome)
	if evictPid != "" {
		line += fmt.Sprintf(" evict=%s/%d", evictPid, evictVPN)
	}
	s.translationLog = append(s.translationLog, line)
}

// phase 7
func (s *Scheduler) postExecute() {
	if s.runningPid == "" {
		return
	}
	p := s.processes[s.runningPid]
	if p.State != procsim.StateRunning {
		return // moved to WAITING_MEM this tick; handled already
	}

	if p.RemainingInBurst <= 0 {
		if p.HasNextBurst() {
			s.logEvent(p.Pid, p.State, procsim.StateWaitingIO, "burst-complete")
			p.State = procsim.StateWaitingIO
			p.AdvanceBurst()
			s.ioDevice.Enqueue(p.Pid, p.RemainingInBurst)
			s.runningPid = ""
			s.quantumLeft = 0
		} else {
			s.logEvent(p.Pid, p.State, procsim.StateDone, "completed")
			p.State = procsim.StateDone
			p.CompletionTime = s.currentTime + 1
			s.runningPid = ""
			s.quantumLeft = 0
		}
		return
	}

	// Time-slice expiry is not acted on here: quantumLeft already sits at
	// or below zero once executeTick has decremented it, and phase 4 of
	// the *next* tick (preemptionCheck) is what rotates the process out,
	// after that tick's own arrivals have been admitted in phase 1. See
	// spec.md §4.1 step 4 and the S2 worked example in §8.
}

// phase 8
func (s *Scheduler) advanceTime(memToken string) {
	s.ioTimeline = append(s.ioTimeline, s.ioTickToken)

	if s.memoryMode != config.MemoryFull {
		memToken = "IDLE"
	}
	s.memTimeline = append(s.memTimeline, memToken)

	s.currentTime++
}

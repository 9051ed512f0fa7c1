// Package scheduler is the simulation engine's tick function: it owns
// every piece of mutable runtime state (process table, ready structure,
// I/O device, memory subsystem, timelines, event log) and exposes the
// public operations spec.md §4.1 names. No teacher file maps onto it
// directly; its shape — constructor taking a *logrus.Entry (the
// *config.SimConfig arrives later through Configure), go-errors/errors-
// wrapped failures, Debug-level logging of configuration, workload
// edits and state transitions — follows the teacher's pkg/commands
// idiom.
package scheduler

import (
	"fmt"

	goerrors "github.com/go-errors/errors"
	"github.com/sirupsen/logrus"

	"github.com/nkamau/osched/pkg/config"
	"github.com/nkamau/osched/pkg/memsim"
	"github.com/nkamau/osched/pkg/procsim"
)

// Scheduler is the single owner of simulation state (spec.md §3's
// ownership invariant: "the Scheduler owns all runtime state").
type Scheduler struct {
	log *logrus.Entry

	configured  bool
	policyName  string
	tickMS      int
	quantum     int
	memoryMode  string
	pageSize    int
	frameCount  int
	replacement string
	faultPenalty int

	baseline    []procsim.Descriptor
	descriptors []procsim.Descriptor
	added       map[string]bool

	policy      Policy
	processes   map[string]*procsim.Process
	ioDevice    *procsim.IODevice
	currentTime int
	runningPid  string
	quantumLeft int

	frameTable *memsim.FrameTable
	pageTables map[string]*memsim.PageTable
	refGens    map[string]*memsim.RefGenerator
	replacer   memsim.Replacer
	refIndex   int

	cpuTimeline    []string
	ioTimeline     []string
	memTimeline    []string
	eventLog       []string
	translationLog []string
	ioTickToken    string
	faultCount     int
	hitCount       int
	refTrace       []memsim.Ref
}

// New returns an unconfigured Scheduler; call Configure before Tick.
func New(log *logrus.Entry) *Scheduler {
	return &Scheduler{log: log, processes: map[string]*procsim.Process{}}
}

func validPolicyName(name string) bool {
	switch name {
	case config.PolicyFCFS, config.PolicySJF, config.PolicyPriorityNP,
		config.PolicyPriorityP, config.PolicyRR, config.PolicyMLQ:
		return true
	default:
		return false
	}
}

// Configure validates and applies a full scheduler configuration,
// atomically: on any validation error, no field is changed.
func (s *Scheduler) Configure(cfg config.SimConfig) error {
	if !validPolicyName(cfg.Policy) {
		return newConfigError("policy", fmt.Errorf("unrecognized policy %q", cfg.Policy))
	}
	if (cfg.Policy == config.PolicyRR || cfg.Policy == config.PolicyMLQ) && cfg.Quantum < 1 {
		return newConfigError("quantum", fmt.Errorf("RR/MLQ require quantum >= 1"))
	}
	if cfg.MemoryMode != config.MemoryOff && cfg.MemoryMode != config.MemoryFull {
		return newConfigError("memoryMode", fmt.Errorf("unrecognized memory mode %q", cfg.MemoryMode))
	}
	if cfg.MemoryMode == config.MemoryFull {
		if cfg.PageSize <= 0 || cfg.PageSize&(cfg.PageSize-1) != 0 {
			return newConfigError("pageSize", fmt.Errorf("page size must be a power of two"))
		}
		if cfg.FrameCount <= 0 {
			return newConfigError("frameCount", fmt.Errorf("frame count must be positive"))
		}
		if cfg.ReplacementPolicy == config.ReplacementOPT {
			return goerrors.Wrap(ErrOPTUnsupportedLive, 1)
		}
		if memsim.NewReplacer(cfg.ReplacementPolicy) == nil {
			return newConfigError("replacementPolicy", fmt.Errorf("unrecognized replacement policy %q", cfg.ReplacementPolicy))
		}
		if cfg.GlobalFaultPenalty < 0 {
			return newConfigError("globalFaultPenalty", fmt.Errorf("fault penalty must be non-negative"))
		}
	}

	s.policyName = cfg.Policy
	s.tickMS = cfg.TickMS
	s.quantum = cfg.Quantum
	s.memoryMode = cfg.MemoryMode
	s.pageSize = cfg.PageSize
	s.frameCount = cfg.FrameCount
	s.replacement = cfg.ReplacementPolicy
	s.faultPenalty = cfg.GlobalFaultPenalty
	s.configured = true

	s.baseline = nil
	s.descriptors = nil
	s.added = map[string]bool{}
	s.resetRuntime()

	s.log.WithFields(logrus.Fields{"tick": 0, "policy": s.policyName, "event": "configure"}).Debug("scheduler configured")
	return nil
}

// Seed loads the initial workload. Descriptors supplied here form the
// baseline that Reset and ClearUserAdded fall back to.
func (s *Scheduler) Seed(descriptors []procsim.Descriptor) error {
	if !s.configured {
		return goerrors.Wrap(ErrNotInitialized, 1)
	}
	for _, d := range descriptors {
		if err := d.Validate(); err != nil {
			return goerrors.Wrap(ErrInvalidBursts, 1)
		}
	}
	if dup := firstDuplicate(descriptors); dup != "" {
		return goerrors.Wrap(ErrDuplicatePid, 1)
	}

	s.baseline = append([]procsim.Descriptor(nil), descriptors...)
	s.descriptors = append([]procsim.Descriptor(nil), descriptors...)
	s.added = map[string]bool{}
	s.resetRuntime()
	return nil
}

func firstDuplicate(descriptors []procsim.Descriptor) string {
	seen := map[string]bool{}
	for _, d := range descriptors {
		if seen[d.Pid] {
			return d.Pid
		}
		seen[d.Pid] = true
	}
	return ""
}

// AddProcess inserts descriptor into the pending-arrivals set without
// resetting the run in progress.
func (s *Scheduler) AddProcess(d procsim.Descriptor) error {
	if !s.configured {
		return goerrors.Wrap(ErrNotInitialized, 1)
	}
	if err := d.Validate(); err != nil {
		return goerrors.Wrap(ErrInvalidBursts, 1)
	}
	if _, exists := s.processes[d.Pid]; exists {
		return goerrors.Wrap(ErrDuplicatePid, 1)
	}

	proc, err := procsim.NewProcess(d)
	if err != nil {
		return goerrors.Wrap(ErrInvalidBursts, 1)
	}

	s.processes[d.Pid] = proc
	s.descriptors = append(s.descriptors, d)
	s.added[d.Pid] = true
	s.initMemoryFor(proc)

	s.log.WithFields(logrus.Fields{"tick": s.currentTime, "policy": s.policyName, "event": "add_process"}).Debug(d.Pid)
	return nil
}

// RemoveProcess deletes pid from the workload and, per spec.md §4.1,
// resets timelines and time to zero, replaying the remaining
// descriptors from their original arrival times.
func (s *Scheduler) RemoveProcess(pid string) error {
	if !s.configured {
		return goerrors.Wrap(ErrNotInitialized, 1)
	}
	idx := -1
	for i, d := range s.descriptors {
		if d.Pid == pid {
			idx = i
			break
		}
	}
	if idx == -1 {
		return goerrors.Wrap(ErrUnknownPid, 1)
	}

	s.descriptors = append(s.descriptors[:idx], s.descriptors[idx+1:]...)
	delete(s.added, pid)
	s.resetRuntime()

	s.log.WithFields(logrus.Fields{"tick": 0, "policy": s.policyName, "event": "remove_process"}).Debug(pid)
	return nil
}

// ClearUserAdded drops every process added via AddProcess since the
// last Seed, keeping whatever baseline processes remain, and resets.
func (s *Scheduler) ClearUserAdded() error {
	if !s.configured {
		return goerrors.Wrap(ErrNotInitialized, 1)
	}
	kept := s.descriptors[:0:0]
	for _, d := range s.descriptors {
		if !s.added[d.Pid] {
			kept = append(kept, d)
		}
	}
	s.descriptors = kept
	s.added = map[string]bool{}
	s.resetRuntime()

	s.log.WithFields(logrus.Fields{"tick": 0, "policy": s.policyName, "event": "clear_user_added"}).Debug("")
	return nil
}

// Reset restores the scheduler to the baseline workload captured by the
// last Seed call, discarding both additions and removals.
func (s *Scheduler) Reset() error {
	if !s.configured {
		return goerrors.Wrap(ErrNotInitialized, 1)
	}
	s.descriptors = append([]procsim.Descriptor(nil), s.baseline...)
	s.added = map[string]bool{}
	s.resetRuntime()

	s.log.WithFields(logrus.Fields{"tick": 0, "policy": s.policyName, "event": "reset"}).Debug("")
	return nil
}

// ConfigureOffline is Configure, except it permits ReplacementOPT by
// configuring with a placeholder LRU replacer first (comparator use
// only — see pkg/comparator). Callers must follow with Seed and then
// SetReplacer to install a real OPTReplacer before the first Tick.
func (s *Scheduler) ConfigureOffline(cfg config.SimConfig) error {
	if cfg.ReplacementPolicy != config.ReplacementOPT {
		return s.Configure(cfg)
	}
	probe := cfg
	probe.ReplacementPolicy = config.ReplacementLRU
	if err := s.Configure(probe); err != nil {
		return err
	}
	s.replacement = config.ReplacementOPT
	return nil
}

// SetReplacer overrides the live memory replacer directly, bypassing
// the policy-name-driven construction in resetRuntime. Comparator use
// only, for offline OPT runs seeded with a precomputed reference
// sequence.
func (s *Scheduler) SetReplacer(r memsim.Replacer) { s.replacer = r }

func (s *Scheduler) lookup(pid string) *procsim.Process { return s.processes[pid] }

func (s *Scheduler) resetRuntime() {
	s.currentTime = 0
	s.runningPid = ""
	s.quantumLeft = 0
	s.cpuTimeline = nil
	s.ioTimeline = nil
	s.memTimeline = nil
	s.eventLog = nil
	s.translationLog = nil
	s.refIndex = 0
	s.faultCount = 0
	s.hitCount = 0
	s.refTrace = nil

	policy, _ := NewPolicy(s.policyName, s.lookup)
	s.policy = policy
	s.ioDevice = procsim.NewIODevice()

	s.processes = make(map[string]*procsim.Process, len(s.descriptors))
	for _, d := range s.descriptors {
		proc, err := procsim.NewProcess(d)
		if err != nil {
			continue // descriptors were validated at Seed/AddProcess time
		}
		s.processes[d.Pid] = proc
	}

	if s.memoryMode == config.MemoryFull {
		s.frameTable = memsim.NewFrameTable(s.frameCount)
		replacement := s.replacement
		if replacement == config.ReplacementOPT {
			replacement = config.ReplacementLRU // placeholder until SetReplacer
		}
		s.replacer = memsim.NewReplacer(replacement)
		s.pageTables = map[string]*memsim.PageTable{}
		s.refGens = map[string]*memsim.RefGenerator{}
		for _, proc := range s.processes {
			s.initMemoryFor(proc)
		}
	} else {
		s.frameTable = nil
		s.replacer = nil
		s.pageTables = nil
		s.refGens = nil
	}
}

func (s *Scheduler) initMemoryFor(p *procsim.Process) {
	if s.memoryMode != config.MemoryFull || !p.MemoryAware() {
		return
	}
	s.pageTables[p.Pid] = memsim.NewPageTable()
	working := p.WorkingSetVPNs
	if len(working) == 0 && p.WorkingSetSize > 0 {
		working = make([]int, p.WorkingSetSize)
		for i := range working {
			working[i] = i
		}
	}
	seed := int64(len(p.Pid))
	for _, c := range p.Pid {
		seed = seed*31 + int64(c)
	}
	s.refGens[p.Pid] = memsim.NewRefGenerator(string(p.RefPattern), p.BaseAddr, s.pageSize, working, p.CustomAddrs, seed)
}

func (s *Scheduler) logEvent(pid string, from, to procsim.State, reason string) {
	line := fmt.Sprintf("t=%d: %s %s -> %s", s.currentTime, pid, from, to)
	if reason != "" {
		line += fmt.Sprintf(" (%s)", reason)
	}
	s.eventLog = append(s.eventLog, line)
	s.log.WithFields(logrus.Fields{"tick": s.currentTime, "policy": s.policyName, "event": "transition"}).Debug(line)
}

// EventLog returns the full ordered transition log.
func (s *Scheduler) EventLog() []string { return append([]string(nil), s.eventLog...) }

// Timelines returns defensive copies of the three recorded timelines.
func (s *Scheduler) Timelines() (cpu, io, mem []string) {
	return append([]string(nil), s.cpuTimeline...),
		append([]string(nil), s.ioTimeline...),
		append([]string(nil), s.memTimeline...)
}

// CurrentTime returns the current logical tick.
func (s *Scheduler) CurrentTime() int { return s.currentTime }

// Process returns a copy of the named process's runtime state.
func (s *Scheduler) Process(pid string) (procsim.Process, bool) {
	p, ok := s.processes[pid]
	if !ok {
		return procsim.Process{}, false
	}
	return *p, true
}

// Processes returns a copy of every tracked process, keyed by pid.
func (s *Scheduler) Processes() map[string]procsim.Process {
	out := make(map[string]procsim.Process, len(s.processes))
	for pid, p := range s.processes {
		out[pid] = *p
	}
	return out
}

// PolicyName returns the configured policy's name, or "" if
// unconfigured.
func (s *Scheduler) PolicyName() string { return s.policyName }

// Preemptive reports whether the configured policy preempts.
func (s *Scheduler) Preemptive() bool {
	return s.policy != nil && s.policy.Preemptive()
}

// TickMS returns the configured pacing hint.
func (s *Scheduler) TickMS() int { return s.tickMS }

// Quantum returns the configured RR/MLQ quantum.
func (s *Scheduler) Quantum() int { return s.quantum }

// SetTickMS updates the pacing hint in place, without touching runtime
// state (spec.md §6 `set_speed`).
func (s *Scheduler) SetTickMS(ms int) { s.tickMS = ms }

// SetQuantum re-arms the RR/MLQ quantum in place (spec.md §6
// `set_quantum`); the currently running process keeps whatever
// quantumLeft it already has.
func (s *Scheduler) SetQuantum(q int) error {
	if !s.configured {
		return goerrors.Wrap(ErrNotInitialized, 1)
	}
	if q < 1 {
		return newConfigError("quantum", fmt.Errorf("quantum must be >= 1"))
	}
	s.quantum = q
	return nil
}

// Descriptors returns a copy of the live descriptor set (baseline plus
// any still-present additions, minus removals).
func (s *Scheduler) Descriptors() []procsim.Descriptor {
	return append([]procsim.Descriptor(nil), s.descriptors...)
}

// RunningPid returns the currently RUNNING pid, or "" if the CPU is
// idle.
func (s *Scheduler) RunningPid() string { return s.runningPid }

// ReadyQueue returns a snapshot of the ready structure in dispatch
// order. For MLQ, use SysUserQueues instead.
func (s *Scheduler) ReadyQueue() []string {
	if s.policy == nil {
		return nil
	}
	return s.policy.Snapshot()
}

// SysUserQueues returns the two MLQ sub-queues, or (nil, nil) for any
// other policy.
func (s *Scheduler) SysUserQueues() (sys, user []string) {
	mlq, ok := s.policy.(*MLQPolicy)
	if !ok {
		return nil, nil
	}
	return mlq.sys.Snapshot(), mlq.user.Snapshot()
}

// IOActive returns the pid currently being served by the I/O device, or
// "" if idle.
func (s *Scheduler) IOActive() string {
	if s.ioDevice == nil {
		return ""
	}
	return s.ioDevice.ActivePid
}

// IOQueue returns the I/O device's waiting list.
func (s *Scheduler) IOQueue() []string {
	if s.ioDevice == nil {
		return nil
	}
	return s.ioDevice.WaitingPids()
}

// MemoryMode, PageSize, FrameCount, and ReplacementPolicyName expose the
// configured memory subsystem parameters.
func (s *Scheduler) MemoryMode() string             { return s.memoryMode }
func (s *Scheduler) PageSize() int                  { return s.pageSize }
func (s *Scheduler) FrameCount() int                 { return s.frameCount }
func (s *Scheduler) ReplacementPolicyName() string  { return s.replacement }
func (s *Scheduler) GlobalFaultPenalty() int        { return s.faultPenalty }

// FaultCount and HitCount report cumulative memory-reference outcomes.
func (s *Scheduler) FaultCount() int { return s.faultCount }
func (s *Scheduler) HitCount() int   { return s.hitCount }

// TranslationLog returns every recorded translation-log line.
func (s *Scheduler) TranslationLog() []string {
	return append([]string(nil), s.translationLog...)
}

// Frames returns a copy of the frame table, or nil outside FULL mode.
func (s *Scheduler) Frames() []memsim.Frame {
	if s.frameTable == nil {
		return nil
	}
	return append([]memsim.Frame(nil), s.frameTable.Frames...)
}

// PageTable returns a VPN->entry snapshot for pid, or nil if pid has no
// page table (not memory-aware, or CPU-only mode).
func (s *Scheduler) PageTable(pid string) map[int]memsim.PageEntry {
	pt, ok := s.pageTables[pid]
	if !ok {
		return nil
	}
	return pt.Snapshot()
}

// RefTrace returns every memory reference made so far, in chronological
// order (comparator use only, for offline OPT precomputation).
func (s *Scheduler) RefTrace() []memsim.Ref {
	return append([]memsim.Ref(nil), s.refTrace...)
}

// AllDone reports whether every admitted process has completed.
func (s *Scheduler) AllDone() bool {
	if len(s.processes) == 0 {
		return false
	}
	for _, p := range s.processes {
		if p.State != procsim.StateDone {
			return false
		}
	}
	return true
}

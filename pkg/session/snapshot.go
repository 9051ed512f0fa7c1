package session

import (
	"sort"

	"github.com/samber/lo"

	"github.com/nkamau/osched/pkg/metrics"
	"github.com/nkamau/osched/pkg/procsim"
	"github.com/nkamau/osched/pkg/scheduler"
)

// FrameView is one physical frame in the wire-contract memory object.
type FrameView struct {
	Index int    `json:"index"`
	Free  bool   `json:"free"`
	Pid   string `json:"pid,omitempty"`
	VPN   int    `json:"vpn,omitempty"`
}

// PageEntryView is one VPN's mapping in a process's page table, as
// serialized for the wire.
type PageEntryView struct {
	VPN     int  `json:"vpn"`
	Present bool `json:"present"`
	PFN     int  `json:"pfn,omitempty"`
}

// MemorySnapshot is the nested `memory{...}` object of spec.md §6's wire
// contract.
type MemorySnapshot struct {
	Mode               string                     `json:"mode"`
	Algo               string                     `json:"algo,omitempty"`
	PageSize           int                        `json:"page_size,omitempty"`
	NumFrames          int                        `json:"num_frames,omitempty"`
	Frames             []FrameView                `json:"frames,omitempty"`
	FaultPenalty       int                        `json:"fault_penalty,omitempty"`
	Faults             int                        `json:"faults"`
	Hits               int                        `json:"hits"`
	HitRatio           float64                    `json:"hit_ratio"`
	PageTables         map[string][]PageEntryView `json:"page_tables,omitempty"`
	RecentSteps        []string                   `json:"recent_steps,omitempty"`
	LastTranslationLog []string                   `json:"last_translation_log,omitempty"`
	MemGantt           []string                   `json:"mem_gantt"`
}

// Snapshot is the exact wire-contract shape of spec.md §6's "State
// snapshot" row. Every field is an immutable value copied out of the
// Scheduler at the moment of construction.
type Snapshot struct {
	Time        int      `json:"time"`
	Algorithm   string    `json:"algorithm"`
	Preemptive  bool      `json:"preemptive,omitempty"`
	TickMS      int       `json:"tick_ms"`
	Quantum     int       `json:"quantum"`
	Running     string    `json:"running"`
	ReadyQueue  []string  `json:"ready_queue"`
	SysQueue    []string  `json:"sys_queue,omitempty"`
	UserQueue   []string  `json:"user_queue,omitempty"`
	IOActive    string    `json:"io_active"`
	IOQueue     []string  `json:"io_queue"`
	Gantt       []string  `json:"gantt"`
	IOGantt     []string  `json:"io_gantt"`
	MemGantt    []string  `json:"mem_gantt"`
	Completed   []string  `json:"completed"`
	Metrics     metrics.Aggregate      `json:"metrics"`
	PerProcess  []metrics.ProcessMetrics `json:"per_process"`
	Processes   []procsim.Process `json:"processes"`
	EventLog    []string  `json:"event_log"`
	Memory      MemorySnapshot `json:"memory"`
}

// BuildSnapshot copies the scheduler's entire observable state into one
// immutable Snapshot value (spec.md §5: "serialization copies primitive
// data and container contents into a value snapshot").
func BuildSnapshot(s *scheduler.Scheduler) Snapshot {
	processes := s.Processes()
	pids := lo.Keys(processes)
	sort.Strings(pids)

	procList := make([]procsim.Process, 0, len(pids))
	var completed []string
	for _, pid := range pids {
		p := processes[pid]
		procList = append(procList, p)
		if p.State == procsim.StateDone {
			completed = append(completed, pid)
		}
	}

	cpu, io, mem := s.Timelines()
	agg := metrics.ComputeAggregate(processes, cpu)

	snap := Snapshot{
		Time:       s.CurrentTime(),
		Algorithm:  s.PolicyName(),
		Preemptive: s.Preemptive(),
		TickMS:     s.TickMS(),
		Quantum:    s.Quantum(),
		Running:    s.RunningPid(),
		ReadyQueue: s.ReadyQueue(),
		IOActive:   s.IOActive(),
		IOQueue:    s.IOQueue(),
		Gantt:      cpu,
		IOGantt:    io,
		MemGantt:   mem,
		Completed:  completed,
		Metrics:    agg,
		PerProcess: agg.Per,
		Processes:  procList,
		EventLog:   s.EventLog(),
	}

	if s.PolicyName() == "MLQ" {
		sys, user := s.SysUserQueues()
		snap.SysQueue, snap.UserQueue = sys, user
	}

	snap.Memory = buildMemorySnapshot(s, pids)

	return snap
}

func buildMemorySnapshot(s *scheduler.Scheduler, pids []string) MemorySnapshot {
	_, _, memGantt := s.Timelines()
	mem := MemorySnapshot{
		Mode:         s.MemoryMode(),
		Algo:         s.ReplacementPolicyName(),
		PageSize:     s.PageSize(),
		NumFrames:    s.FrameCount(),
		FaultPenalty: s.GlobalFaultPenalty(),
		Faults:       s.FaultCount(),
		Hits:         s.HitCount(),
		MemGantt:     memGantt,
	}

	total := mem.Faults + mem.Hits
	if total > 0 {
		mem.HitRatio = float64(mem.Hits) / float64(total)
	}

	frames := s.Frames()
	if frames != nil {
		mem.Frames = make([]FrameView, len(frames))
		for i, f := range frames {
			mem.Frames[i] = FrameView{Index: i, Free: f.Free, Pid: f.Pid, VPN: f.VPN}
		}
	}

	pageTables := make(map[string][]PageEntryView)
	for _, pid := range pids {
		pt := s.PageTable(pid)
		if pt == nil {
			continue
		}
		vpns := lo.Keys(pt)
		sort.Ints(vpns)
		entries := make([]PageEntryView, 0, len(vpns))
		for _, vpn := range vpns {
			e := pt[vpn]
			entries = append(entries, PageEntryView{VPN: vpn, Present: e.Present, PFN: e.PFN})
		}
		pageTables[pid] = entries
	}
	if len(pageTables) > 0 {
		mem.PageTables = pageTables
	}

	log := s.TranslationLog()
	mem.LastTranslationLog = recentTail(log, 20)
	mem.RecentSteps = recentTail(s.EventLog(), 20)

	return mem
}

func recentTail(lines []string, n int) []string {
	if len(lines) <= n {
		return append([]string(nil), lines...)
	}
	return append([]string(nil), lines[len(lines)-n:]...)
}

// Package procsim holds the process model, ready-queue disciplines, and
// I/O device that sit directly beneath the scheduler core. It has no
// teacher file to adapt line-for-line — the Docker/Podman domain model
// it replaces (pkg/commands in the teacher) had no transferable
// semantics — but it keeps the teacher's organizational shape: one
// entity per file and methods that return go-errors/errors-wrapped
// failures. Its types carry no logger; logging happens in the
// scheduler.
package procsim

import (
	"github.com/go-errors/errors"
)

// State is a position in the process lifecycle.
type State string

const (
	StateNew        State = "NEW"
	StateReady      State = "READY"
	StateRunning    State = "RUNNING"
	StateWaitingIO  State = "WAITING_IO"
	StateWaitingMem State = "WAITING_MEM"
	StateDone       State = "DONE"
)

// QueueClass partitions processes for the MLQ policy.
type QueueClass string

const (
	QueueClassSys  QueueClass = "SYS"
	QueueClassUser QueueClass = "USER"
)

// RefPattern selects how a process's virtual-address generator walks
// its working set.
type RefPattern string

const (
	RefPatternSeq    RefPattern = "SEQ"
	RefPatternLoop   RefPattern = "LOOP"
	RefPatternRand   RefPattern = "RAND"
	RefPatternCustom RefPattern = "CUSTOM"
)

// Descriptor is the immutable part of a process, as supplied to
// AddProcess.
type Descriptor struct {
	Pid        string     `json:"pid"`
	Arrival    int        `json:"arrival"`
	Priority   int        `json:"priority,omitempty"`
	QueueClass QueueClass `json:"queue_class,omitempty"`
	// Bursts alternates CPU/IO burst lengths, starting and ending on a
	// CPU burst: [c0, i0, c1, i1, ..., cn]. Must have odd length and
	// every value must be strictly positive.
	Bursts []int `json:"bursts"`

	// Memory fields, all optional (zero value means "not memory-aware").
	VMSize         int        `json:"vm_size,omitempty"`
	BaseAddr       int        `json:"base_addr,omitempty"`
	WorkingSetSize int        `json:"working_set_size,omitempty"`
	WorkingSetVPNs []int      `json:"working_set_vpns,omitempty"`
	RefPattern     RefPattern `json:"ref_pattern,omitempty"`
	CustomAddrs    []int      `json:"custom_addrs,omitempty"`
	RefsPerTick    int        `json:"refs_per_tick,omitempty"` // in [1,3]; 0 defaults to 1 when memory mode is FULL
	// FaultPenalty optionally overrides the scheduler's configured
	// global fault penalty for this process only; 0 means "use the
	// global value" (spec.md §4.3's documented behavior).
	FaultPenalty int `json:"fault_penalty,omitempty"`
}

// Validate checks the structural invariants on a descriptor (spec.md
// §3, §7 InvalidBursts).
func (d Descriptor) Validate() error {
	if d.Pid == "" {
		return errors.New("invalid bursts: pid must not be empty")
	}
	if d.Arrival < 0 {
		return errors.New("invalid bursts: arrival time must be non-negative")
	}
	if len(d.Bursts) == 0 {
		return errors.New("invalid bursts: burst sequence must not be empty")
	}
	if len(d.Bursts)%2 == 0 {
		return errors.New("invalid bursts: burst sequence must have odd length")
	}
	for _, b := range d.Bursts {
		if b <= 0 {
			return errors.New("invalid bursts: every burst must be strictly positive")
		}
	}
	if d.RefsPerTick != 0 && (d.RefsPerTick < 1 || d.RefsPerTick > 3) {
		return errors.New("invalid bursts: refs per cpu tick must be in [1,3]")
	}
	return nil
}

// Process is a Descriptor plus its mutable runtime state. The Scheduler
// owns the only live copies; every other consumer works off a snapshot.
type Process struct {
	Descriptor

	State            State
	BurstIndex       int
	RemainingInBurst int

	// FirstStart and CompletionTime are -1 until set, each exactly once.
	FirstStart     int
	CompletionTime int

	MemWaitRemaining int

	// Cumulative counters used to derive WT without re-scanning the
	// timelines (spec.md §8 invariant 2).
	CPUTicksServed     int
	IOTicksServed      int
	MemWaitTicksServed int
}

// NewProcess constructs a Process in state NEW from a validated
// descriptor.
func NewProcess(d Descriptor) (*Process, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return &Process{
		Descriptor:       d,
		State:            StateNew,
		RemainingInBurst: d.Bursts[0],
		FirstStart:       -1,
		CompletionTime:   -1,
	}, nil
}

// CurrentBurst returns the length of the burst the process is presently
// positioned at.
func (p *Process) CurrentBurst() int {
	return p.Bursts[p.BurstIndex]
}

// HasNextBurst reports whether a burst follows the current one.
func (p *Process) HasNextBurst() bool {
	return p.BurstIndex+1 < len(p.Bursts)
}

// NextBurst returns the length of the burst following the current one.
// Callers must check HasNextBurst first.
func (p *Process) NextBurst() int {
	return p.Bursts[p.BurstIndex+1]
}

// IsCPUBurst reports whether the burst at the given index is a CPU
// burst (even indices) as opposed to an I/O burst (odd indices).
func (p *Process) IsCPUBurst(index int) bool {
	return index%2 == 0
}

// AdvanceBurst moves to the next burst and resets RemainingInBurst.
func (p *Process) AdvanceBurst() {
	p.BurstIndex++
	p.RemainingInBurst = p.Bursts[p.BurstIndex]
}

// MemoryAware reports whether the descriptor carries enough memory
// configuration to participate in the FULL memory subsystem.
func (p *Process) MemoryAware() bool {
	return p.VMSize > 0
}

// RefsPerCPUTick returns the configured references-per-tick, defaulting
// to 1 when unset.
func (p *Process) RefsPerCPUTick() int {
	if p.RefsPerTick == 0 {
		return 1
	}
	return p.RefsPerTick
}

package scheduler

import (
	"github.com/nkamau/osched/pkg/procsim"
)

// Lookup resolves a pid to its live process record, so a Policy can
// read burst/priority/queue-class fields without owning them.
type Lookup func(pid string) *procsim.Process

// Policy is the scheduling-policy seam (spec.md §9's "duck-typed
// scheduling policy" redesign): a tagged variant of policy kinds, each
// with a concrete ready structure and selector. The Scheduler owns
// ticks and transitions; a Policy only orders readiness and answers
// preemption questions.
type Policy interface {
	Name() string
	RequiresQuantum() bool
	Preemptive() bool

	OnArrival(pid string)
	Remove(pid string)
	Len() int
	Snapshot() []string

	// PickNext pops and returns the next process to dispatch.
	PickNext(now int) (pid string, ok bool)

	// ShouldPreempt reports whether the best ready candidate should
	// take the CPU from runningPid right now. Non-preemptive policies
	// always return false.
	ShouldPreempt(runningPid string, now int) bool
}

// --- FCFS --------------------------------------------------------------

type FCFSPolicy struct {
	q *procsim.FIFOQueue
}

func NewFCFSPolicy() *FCFSPolicy { return &FCFSPolicy{q: procsim.NewFIFOQueue()} }

func (p *FCFSPolicy) Name() string            { return "FCFS" }
func (p *FCFSPolicy) RequiresQuantum() bool    { return false }
func (p *FCFSPolicy) Preemptive() bool         { return false }
func (p *FCFSPolicy) OnArrival(pid string)     { p.q.Enqueue(pid) }
func (p *FCFSPolicy) Remove(pid string)        { p.q.Remove(pid) }
func (p *FCFSPolicy) Len() int                 { return p.q.Len() }
func (p *FCFSPolicy) Snapshot() []string       { return p.q.Snapshot() }
func (p *FCFSPolicy) PickNext(int) (string, bool) {
	return p.q.Dequeue()
}
func (p *FCFSPolicy) ShouldPreempt(string, int) bool { return false }

// --- Round Robin ---------------------------------------------------------

// RRPolicy is FCFS-shaped: rotation on quantum expiry is driven by the
// Scheduler re-calling OnArrival for the preempted pid, which the FIFO
// ordering places at the back.
type RRPolicy struct {
	q *procsim.FIFOQueue
}

func NewRRPolicy() *RRPolicy { return &RRPolicy{q: procsim.NewFIFOQueue()} }

func (p *RRPolicy) Name() string                 { return "RR" }
func (p *RRPolicy) RequiresQuantum() bool         { return true }
func (p *RRPolicy) Preemptive() bool              { return false }
func (p *RRPolicy) OnArrival(pid string)          { p.q.Enqueue(pid) }
func (p *RRPolicy) Remove(pid string)             { p.q.Remove(pid) }
func (p *RRPolicy) Len() int                      { return p.q.Len() }
func (p *RRPolicy) Snapshot() []string            { return p.q.Snapshot() }
func (p *RRPolicy) PickNext(int) (string, bool)   { return p.q.Dequeue() }
func (p *RRPolicy) ShouldPreempt(string, int) bool { return false }

// --- SJF -------------------------------------------------------------

type SJFPolicy struct {
	h      *procsim.ReadyHeap
	lookup Lookup
}

func NewSJFPolicy(lookup Lookup) *SJFPolicy {
	s := &SJFPolicy{lookup: lookup}
	s.h = procsim.NewReadyHeap(func(pid string) procsim.Key {
		proc := lookup(pid)
		return procsim.Key{Primary: proc.CurrentBurst(), Arrival: proc.Arrival, Pid: pid}
	})
	return s
}

func (p *SJFPolicy) Name() string              { return "SJF" }
func (p *SJFPolicy) RequiresQuantum() bool      { return false }
func (p *SJFPolicy) Preemptive() bool           { return false }
func (p *SJFPolicy) OnArrival(pid string)       { p.h.Insert(pid) }
func (p *SJFPolicy) Remove(pid string)          { p.h.Remove(pid) }
func (p *SJFPolicy) Len() int                   { return p.h.Len() }
func (p *SJFPolicy) Snapshot() []string         { return p.h.Snapshot() }
func (p *SJFPolicy) PickNext(int) (string, bool) { return p.h.PopBest() }
func (p *SJFPolicy) ShouldPreempt(string, int) bool { return false }

// --- Priority (non-preemptive) -----------------------------------------

type PriorityNPPolicy struct {
	h      *procsim.ReadyHeap
	lookup Lookup
}

func NewPriorityNPPolicy(lookup Lookup) *PriorityNPPolicy {
	p := &PriorityNPPolicy{lookup: lookup}
	p.h = procsim.NewReadyHeap(func(pid string) procsim.Key {
		proc := lookup(pid)
		return procsim.Key{Primary: proc.Priority, Arrival: proc.Arrival, Pid: pid}
	})
	return p
}

func (p *PriorityNPPolicy) Name() string                 { return "PRIORITY-NP" }
func (p *PriorityNPPolicy) RequiresQuantum() bool         { return false }
func (p *PriorityNPPolicy) Preemptive() bool              { return false }
func (p *PriorityNPPolicy) OnArrival(pid string)          { p.h.Insert(pid) }
func (p *PriorityNPPolicy) Remove(pid string)             { p.h.Remove(pid) }
func (p *PriorityNPPolicy) Len() int                      { return p.h.Len() }
func (p *PriorityNPPolicy) Snapshot() []string            { return p.h.Snapshot() }
func (p *PriorityNPPolicy) PickNext(int) (string, bool)   { return p.h.PopBest() }
func (p *PriorityNPPolicy) ShouldPreempt(string, int) bool { return false }

// --- Priority (preemptive) -----------------------------------------------

// PriorityPPolicy preempts the running process on strict priority
// improvement only (never on a tie), guaranteeing progress per
// spec.md's Open Question resolution.
type PriorityPPolicy struct {
	h      *procsim.ReadyHeap
	lookup Lookup
}

func NewPriorityPPolicy(lookup Lookup) *PriorityPPolicy {
	p := &PriorityPPolicy{lookup: lookup}
	p.h = procsim.NewReadyHeap(func(pid string) procsim.Key {
		proc := lookup(pid)
		return procsim.Key{Primary: proc.Priority, Arrival: proc.Arrival, Pid: pid}
	})
	return p
}

func (p *PriorityPPolicy) Name() string               { return "PRIORITY-P" }
func (p *PriorityPPolicy) RequiresQuantum() bool       { return false }
func (p *PriorityPPolicy) Preemptive() bool            { return true }
func (p *PriorityPPolicy) OnArrival(pid string)        { p.h.Insert(pid) }
func (p *PriorityPPolicy) Remove(pid string)           { p.h.Remove(pid) }
func (p *PriorityPPolicy) Len() int                    { return p.h.Len() }
func (p *PriorityPPolicy) Snapshot() []string          { return p.h.Snapshot() }
func (p *PriorityPPolicy) PickNext(int) (string, bool) { return p.h.PopBest() }

func (p *PriorityPPolicy) ShouldPreempt(runningPid string, _ int) bool {
	bestPid, ok := p.h.PeekBest()
	if !ok {
		return false
	}
	running := p.lookup(runningPid)
	best := p.lookup(bestPid)
	return best.Priority < running.Priority
}

// --- MLQ -------------------------------------------------------------

// MLQPolicy keeps two FIFOs; SYS strictly dominates USER at every pick.
type MLQPolicy struct {
	sys    *procsim.FIFOQueue
	user   *procsim.FIFOQueue
	lookup Lookup
}

func NewMLQPolicy(lookup Lookup) *MLQPolicy {
	return &MLQPolicy{sys: procsim.NewFIFOQueue(), user: procsim.NewFIFOQueue(), lookup: lookup}
}

func (p *MLQPolicy) Name() string         { return "MLQ" }
func (p *MLQPolicy) RequiresQuantum() bool { return true }
func (p *MLQPolicy) Preemptive() bool      { return true }

func (p *MLQPolicy) OnArrival(pid string) {
	if p.lookup(pid).QueueClass == procsim.QueueClassSys {
		p.sys.Enqueue(pid)
	} else {
		p.user.Enqueue(pid)
	}
}

func (p *MLQPolicy) Remove(pid string) {
	if !p.sys.Remove(pid) {
		p.user.Remove(pid)
	}
}

func (p *MLQPolicy) Len() int { return p.sys.Len() + p.user.Len() }

func (p *MLQPolicy) Snapshot() []string {
	return append(p.sys.Snapshot(), p.user.Snapshot()...)
}

func (p *MLQPolicy) PickNext(int) (string, bool) {
	if pid, ok := p.sys.Dequeue(); ok {
		return pid, true
	}
	return p.user.Dequeue()
}

func (p *MLQPolicy) ShouldPreempt(string, int) bool { return false }

// NewPolicy constructs the named policy, wiring lookup where required.
func NewPolicy(name string, lookup Lookup) (Policy, error) {
	switch name {
	case "FCFS":
		return NewFCFSPolicy(), nil
	case "RR":
		return NewRRPolicy(), nil
	case "SJF":
		return NewSJFPolicy(lookup), nil
	case "PRIORITY-NP":
		return NewPriorityNPPolicy(lookup), nil
	case "PRIORITY-P":
		return NewPriorityPPolicy(lookup), nil
	case "MLQ":
		return NewMLQPolicy(lookup), nil
	default:
		return nil, newConfigError("policy", ErrInvalidPolicy)
	}
}

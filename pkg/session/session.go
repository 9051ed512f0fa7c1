// Package session owns the single Scheduler instance and serializes
// every inbound control message onto it (spec.md §4.6, §5). Every
// mutating command produces exactly one outbound broadcast through the
// Publisher; `sync` just re-broadcasts the current state.
package session

import (
	"fmt"
	"sync"

	goerrors "github.com/go-errors/errors"
	"github.com/imdario/mergo"
	"github.com/sirupsen/logrus"

	"github.com/nkamau/osched/pkg/config"
	"github.com/nkamau/osched/pkg/procsim"
	"github.com/nkamau/osched/pkg/scheduler"
)

// autoplayLoop is one running (or stopping) background tick loop.
// Stopping it is cancel-and-wait: send on stop, then block until the
// loop goroutine confirms it has exited by closing done.
type autoplayLoop struct {
	stop chan struct{}
	done chan struct{}
}

// CommandType tags one of the eleven inbound control messages spec.md §6
// names.
type CommandType string

const (
	CmdInit          CommandType = "init"
	CmdTick          CommandType = "tick"
	CmdRun           CommandType = "run"
	CmdAddProcess    CommandType = "add_process"
	CmdRemoveProcess CommandType = "remove_process"
	CmdClearAdded    CommandType = "clear_added"
	CmdSetSpeed      CommandType = "set_speed"
	CmdSetQuantum    CommandType = "set_quantum"
	CmdConfig        CommandType = "config"
	CmdReset         CommandType = "reset"
	CmdSync          CommandType = "sync"
)

// InitPayload is the `init` control message body.
type InitPayload struct {
	config.SimConfig `yaml:",inline"`
	Processes        []procsim.Descriptor `json:"processes,omitempty"`
}

// Command is one inbound control message, queued onto the writer's
// single command channel and replied to on Reply once handled.
type Command struct {
	Type    CommandType
	Init    *InitPayload
	Steps   int
	Process *procsim.Descriptor
	Pid     string
	TickMS  int
	Quantum int
	Config  *config.SimConfig

	Reply chan error
}

// Session is the single-writer owner of one Scheduler. Every control-
// message method enqueues a Command and blocks for its Reply; the command loop
// runs on its own goroutine so concurrent callers never race the
// Scheduler directly (spec.md §5's single-writer discipline).
type Session struct {
	log       *logrus.Entry
	sched     *scheduler.Scheduler
	publisher *Publisher

	autoplayMu sync.Mutex
	autoplay   *autoplayLoop

	initialCfg config.SimConfig
	haveInit   bool

	latestMu sync.Mutex
	latest   Snapshot

	cmdCh chan Command
	done  chan struct{}
}

// NewSession wires a fresh, unconfigured Session and starts its
// command loop.
func NewSession(log *logrus.Entry) *Session {
	s := &Session{
		log:       log,
		sched:     scheduler.New(log),
		publisher: NewPublisher(),
		cmdCh:     make(chan Command),
		done:      make(chan struct{}),
	}
	go s.loop()
	return s
}

// Subscribe registers a new snapshot listener.
func (s *Session) Subscribe() (uuid string, ch <-chan Snapshot, unsubscribe func()) {
	id, c := s.publisher.Subscribe()
	return id.String(), c, func() { s.publisher.Unsubscribe(id) }
}

// Close stops the command loop. The Session is unusable afterward.
func (s *Session) Close() error {
	close(s.done)
	return nil
}

// loop is the single writer: every command is handled to completion
// before the next is read off cmdCh, and at most one broadcast happens
// per handled command.
func (s *Session) loop() {
	for {
		select {
		case <-s.done:
			return
		case cmd := <-s.cmdCh:
			err := s.handle(cmd)
			if err == nil {
				snap := BuildSnapshot(s.sched)
				s.latestMu.Lock()
				s.latest = snap
				s.latestMu.Unlock()
				s.publisher.Broadcast(snap)
			}
			if cmd.Reply != nil {
				cmd.Reply <- err
			}
		}
	}
}

// submit enqueues cmd and blocks for its handler's result. It is safe
// to call from any goroutine.
func (s *Session) submit(cmd Command) error {
	cmd.Reply = make(chan error, 1)
	select {
	case s.cmdCh <- cmd:
	case <-s.done:
		return goerrors.Errorf("session closed")
	}
	select {
	case err := <-cmd.Reply:
		return err
	case <-s.done:
		return goerrors.Errorf("session closed")
	}
}

func (s *Session) handle(cmd Command) error {
	switch cmd.Type {
	case CmdInit:
		return s.handleInit(cmd.Init)
	case CmdTick:
		return s.sched.Tick()
	case CmdRun:
		return s.handleRun(cmd.Steps)
	case CmdAddProcess:
		if cmd.Process == nil {
			return goerrors.Errorf("add_process requires a process")
		}
		return s.sched.AddProcess(*cmd.Process)
	case CmdRemoveProcess:
		if cmd.Pid == "" {
			return goerrors.Errorf("remove_process requires a pid")
		}
		return s.sched.RemoveProcess(cmd.Pid)
	case CmdClearAdded:
		return s.sched.ClearUserAdded()
	case CmdSetSpeed:
		s.sched.SetTickMS(cmd.TickMS)
		return nil
	case CmdSetQuantum:
		return s.sched.SetQuantum(cmd.Quantum)
	case CmdConfig:
		if cmd.Config == nil {
			return goerrors.Errorf("config requires a field subset")
		}
		return s.handleConfigUpdate(*cmd.Config)
	case CmdReset:
		if !s.haveInit {
			return goerrors.Wrap(scheduler.ErrNotInitialized, 1)
		}
		return s.sched.Configure(s.initialCfg)
	case CmdSync:
		return nil
	default:
		return goerrors.Errorf("unrecognized command %q", cmd.Type)
	}
}

func (s *Session) handleInit(payload *InitPayload) error {
	if payload == nil {
		return goerrors.Errorf("init requires a body")
	}
	if err := s.sched.Configure(payload.SimConfig); err != nil {
		return err
	}
	if err := s.sched.Seed(payload.Processes); err != nil {
		return err
	}
	s.initialCfg = payload.SimConfig
	s.haveInit = true
	return nil
}

// handleRun advances n ticks back to back within one command. It is not
// cancelled part-way: other commands wait on the command channel until
// all n ticks have run. A failing tick stops the run, and the ticks
// completed before it are kept.
func (s *Session) handleRun(n int) error {
	if n <= 0 {
		n = 1
	}
	for i := 0; i < n; i++ {
		if err := s.sched.Tick(); err != nil {
			return err
		}
	}
	return nil
}

// handleConfigUpdate merges a partial SimConfig onto the currently
// running one (spec.md §6: "subset of init fields"). A policy or
// memory-mode change rebuilds the scheduler from scratch (time resets,
// since the ready structure and memory subsystem are policy/mode
// shaped). Otherwise only tick_ms and quantum are applied live,
// preserving time; page size, frame count, replacement policy and fault
// penalty changes take effect only together with a policy or
// memory-mode change.
func (s *Session) handleConfigUpdate(partial config.SimConfig) error {
	if !s.haveInit {
		return goerrors.Wrap(scheduler.ErrNotInitialized, 1)
	}

	merged := config.SimConfig{
		Policy:             s.sched.PolicyName(),
		TickMS:             s.sched.TickMS(),
		Quantum:            s.sched.Quantum(),
		MemoryMode:         s.sched.MemoryMode(),
		PageSize:           s.sched.PageSize(),
		FrameCount:         s.sched.FrameCount(),
		ReplacementPolicy:  s.sched.ReplacementPolicyName(),
		GlobalFaultPenalty: s.sched.GlobalFaultPenalty(),
	}
	if err := mergo.Merge(&merged, partial, mergo.WithOverride); err != nil {
		return goerrors.Wrap(fmt.Errorf("merge config: %w", err), 1)
	}

	restructure := merged.Policy != s.sched.PolicyName() || merged.MemoryMode != s.sched.MemoryMode()
	if !restructure {
		s.sched.SetTickMS(merged.TickMS)
		return s.sched.SetQuantum(merged.Quantum)
	}

	descriptors := s.sched.Descriptors()
	if err := s.sched.Configure(merged); err != nil {
		return err
	}
	return s.sched.Seed(descriptors)
}

// Init applies the `init` control message.
func (s *Session) Init(cfg config.SimConfig, processes []procsim.Descriptor) error {
	return s.submit(Command{Type: CmdInit, Init: &InitPayload{SimConfig: cfg, Processes: processes}})
}

// Tick applies the `tick` control message.
func (s *Session) Tick() error { return s.submit(Command{Type: CmdTick}) }

// Run applies the `run` control message, advancing n ticks (n<=0 means
// 1, per spec.md §6's "steps (default 1)").
func (s *Session) Run(n int) error { return s.submit(Command{Type: CmdRun, Steps: n}) }

// AddProcess applies the `add_process` control message.
func (s *Session) AddProcess(d procsim.Descriptor) error {
	return s.submit(Command{Type: CmdAddProcess, Process: &d})
}

// RemoveProcess applies the `remove_process` control message.
func (s *Session) RemoveProcess(pid string) error {
	return s.submit(Command{Type: CmdRemoveProcess, Pid: pid})
}

// ClearAdded applies the `clear_added` control message.
func (s *Session) ClearAdded() error { return s.submit(Command{Type: CmdClearAdded}) }

// SetSpeed applies the `set_speed` control message.
func (s *Session) SetSpeed(tickMS int) error {
	return s.submit(Command{Type: CmdSetSpeed, TickMS: tickMS})
}

// SetQuantum applies the `set_quantum` control message.
func (s *Session) SetQuantum(q int) error {
	return s.submit(Command{Type: CmdSetQuantum, Quantum: q})
}

// Config applies the `config` control message.
func (s *Session) Config(partial config.SimConfig) error {
	return s.submit(Command{Type: CmdConfig, Config: &partial})
}

// Reset applies the `reset` control message: revert to the initial
// `init` configuration with no processes.
func (s *Session) Reset() error { return s.submit(Command{Type: CmdReset}) }

// Sync applies the `sync` control message: no mutation, just a fresh
// broadcast of the current state.
func (s *Session) Sync() error { return s.submit(Command{Type: CmdSync}) }

// StartAutoplay runs an unbounded tick loop in the background,
// cancelling whatever autoplay loop is already in flight. Each tick
// still goes through the normal single-writer command channel, so
// autoplay composes safely with any other control message arriving
// concurrently.
func (s *Session) StartAutoplay() error {
	s.autoplayMu.Lock()
	defer s.autoplayMu.Unlock()
	s.stopAutoplayLocked()

	loop := &autoplayLoop{stop: make(chan struct{}, 1), done: make(chan struct{})}
	s.autoplay = loop
	go func() {
		defer close(loop.done)
		for {
			select {
			case <-loop.stop:
				return
			default:
			}
			if err := s.Tick(); err != nil {
				return
			}
		}
	}()
	return nil
}

// StopAutoplay cancels any in-flight autoplay loop. Per spec.md §5,
// cancellation only ever lands between ticks and commits every tick
// already completed.
func (s *Session) StopAutoplay() error {
	s.autoplayMu.Lock()
	defer s.autoplayMu.Unlock()
	s.stopAutoplayLocked()
	return nil
}

// stopAutoplayLocked cancels the current autoplay loop, if any, and
// waits for its goroutine to exit. Callers must hold autoplayMu.
func (s *Session) stopAutoplayLocked() {
	if s.autoplay == nil {
		return
	}
	s.autoplay.stop <- struct{}{}
	<-s.autoplay.done
	s.autoplay = nil
}

// CurrentSnapshot forces a `sync` and returns the resulting snapshot,
// for request/response callers (e.g. the CLI demo driver) that don't
// want to subscribe to the broadcast fan-out.
func (s *Session) CurrentSnapshot() (Snapshot, error) {
	if err := s.Sync(); err != nil {
		return Snapshot{}, err
	}
	s.latestMu.Lock()
	defer s.latestMu.Unlock()
	return s.latest, nil
}

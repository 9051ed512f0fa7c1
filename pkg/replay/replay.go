// Package replay derives a past-state view from a live Snapshot's
// recorded timelines (spec.md §4.7). It never touches the Scheduler;
// it only reslices and refilters a Snapshot already captured by
// pkg/session.
package replay

import (
	"strconv"
	"strings"

	"github.com/nkamau/osched/pkg/session"
	"github.com/nkamau/osched/pkg/utils"
)

// MaxTick returns replayMax = max(state.time, |gantt|-1, |io_gantt|-1,
// |mem_gantt|-1), the highest tick a replay request may name.
func MaxTick(state session.Snapshot) int {
	max := state.Time
	max = utils.Max(max, len(state.Gantt)-1)
	max = utils.Max(max, len(state.IOGantt)-1)
	max = utils.Max(max, len(state.MemGantt)-1)
	return max
}

// Project derives a snapshot as of tick t from a live state snapshot.
// t is clamped into [0, MaxTick(state)]. When t != state.Time, a
// warning note is prepended to the event log noting that queue
// snapshots are latest-known only (spec.md §4.7) — only the running
// pid, I/O active pid, and the truncated timelines are faithfully
// reconstructed for tick t; ready/sys/user/io queue contents reflect
// the live state, not tick t's.
func Project(state session.Snapshot, t int) session.Snapshot {
	maxTick := MaxTick(state)
	if t < 0 {
		t = 0
	}
	if t > maxTick {
		t = maxTick
	}

	out := state
	out.Time = t

	if t < len(state.Gantt) {
		out.Running = state.Gantt[t]
		if out.Running == "IDLE" {
			out.Running = ""
		}
	}
	if t < len(state.IOGantt) {
		out.IOActive = state.IOGantt[t]
		if out.IOActive == "IDLE" {
			out.IOActive = ""
		}
	}

	out.Gantt = truncate(state.Gantt, t)
	out.IOGantt = truncate(state.IOGantt, t)
	out.MemGantt = truncate(state.MemGantt, t)
	out.Memory.MemGantt = out.MemGantt

	out.EventLog = filterEventLog(state.EventLog, t)

	if t != state.Time {
		note := "t=" + strconv.Itoa(t) + ": REPLAY -> REPLAY (queue snapshots are latest-known only, not as of t=" + strconv.Itoa(t) + ")"
		out.EventLog = append([]string{note}, out.EventLog...)
	}

	return out
}

func truncate(timeline []string, t int) []string {
	if t+1 >= len(timeline) {
		return append([]string(nil), timeline...)
	}
	return append([]string(nil), timeline[:t+1]...)
}

// filterEventLog keeps only lines whose parsed "t=<n>:" prefix is <= t.
// Lines that don't parse (shouldn't occur in a well-formed log) are
// dropped rather than guessed at.
func filterEventLog(log []string, t int) []string {
	out := make([]string, 0, len(log))
	for _, line := range log {
		tick, ok := parseTick(line)
		if ok && tick <= t {
			out = append(out, line)
		}
	}
	return out
}

func parseTick(line string) (int, bool) {
	rest, ok := strings.CutPrefix(line, "t=")
	if !ok {
		return 0, false
	}
	idx := strings.IndexByte(rest, ':')
	if idx == -1 {
		return 0, false
	}
	n, err := strconv.Atoi(rest[:idx])
	if err != nil {
		return 0, false
	}
	return n, true
}

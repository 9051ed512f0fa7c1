package replay

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/nkamau/osched/pkg/session"
)

func sampleState() session.Snapshot {
	return session.Snapshot{
		Time:     4,
		Gantt:    []string{"P1", "P1", "P2", "P2", "P3"},
		IOGantt:  []string{"IDLE", "IDLE", "IDLE", "IDLE", "IDLE"},
		MemGantt: []string{"IDLE", "IDLE", "IDLE", "IDLE", "IDLE"},
		EventLog: []string{
			"t=0: NEW -> READY arrival",
			"t=0: READY -> RUNNING dispatch",
			"t=2: RUNNING -> READY preempt",
			"t=4: RUNNING -> DONE completed",
		},
	}
}

func TestMaxTickUsesLongestTimeline(t *testing.T) {
	state := sampleState()
	assert.Equal(t, 4, MaxTick(state))

	state.Gantt = append(state.Gantt, "P3", "P3")
	assert.Equal(t, 6, MaxTick(state))
}

func TestProjectMatchesLiveGanttAtRecordedTick(t *testing.T) {
	state := sampleState()
	for t2 := 0; t2 <= state.Time; t2++ {
		proj := Project(state, t2)
		assert.Equal(t, state.Gantt[t2], proj.Gantt[len(proj.Gantt)-1])
		assert.Equal(t, state.IOGantt[t2], proj.IOGantt[len(proj.IOGantt)-1])
	}
}

func TestProjectTruncatesTimelines(t *testing.T) {
	state := sampleState()
	proj := Project(state, 2)

	assert.Equal(t, []string{"P1", "P1", "P2"}, proj.Gantt)
	assert.Equal(t, "P2", proj.Running)
	assert.Equal(t, 2, proj.Time)
}

func TestProjectFiltersEventLogByTick(t *testing.T) {
	state := sampleState()
	proj := Project(state, 1)

	for _, line := range proj.EventLog {
		assert.Contains(t, []string{
			"t=1: REPLAY -> REPLAY (queue snapshots are latest-known only, not as of t=1)",
			"t=0: NEW -> READY arrival",
			"t=0: READY -> RUNNING dispatch",
		}, line)
	}
}

func TestProjectPastTickAddsWarningNote(t *testing.T) {
	state := sampleState()
	proj := Project(state, 1)

	assert.Contains(t, proj.EventLog[0], "latest-known only")
}

func TestProjectAtCurrentTickHasNoWarningNote(t *testing.T) {
	state := sampleState()
	proj := Project(state, state.Time)

	for _, line := range proj.EventLog {
		assert.NotContains(t, line, "latest-known only")
	}
}

func TestProjectClampsOutOfRangeTick(t *testing.T) {
	state := sampleState()

	assert.Equal(t, 0, Project(state, -5).Time)
	assert.Equal(t, MaxTick(state), Project(state, 999).Time)
}

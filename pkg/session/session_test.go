package session

import (
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nkamau/osched/pkg/config"
	"github.com/nkamau/osched/pkg/procsim"
)

func testLog() *logrus.Entry {
	l := logrus.New()
	l.SetLevel(logrus.PanicLevel)
	return logrus.NewEntry(l)
}

func testWorkload() []procsim.Descriptor {
	return []procsim.Descriptor{
		{Pid: "P1", Arrival: 0, Bursts: []int{5}},
		{Pid: "P2", Arrival: 1, Bursts: []int{3}},
	}
}

func pidsOf(snap Snapshot) []string {
	pids := make([]string, len(snap.Processes))
	for i, p := range snap.Processes {
		pids[i] = p.Pid
	}
	return pids
}

func TestInitThenTickAdvancesTime(t *testing.T) {
	s := NewSession(testLog())
	defer s.Close()

	cfg := config.DefaultSimConfig()
	require.NoError(t, s.Init(cfg, testWorkload()))
	require.NoError(t, s.Tick())

	snap, err := s.CurrentSnapshot()
	require.NoError(t, err)
	assert.Equal(t, 1, snap.Time)
	assert.Equal(t, "P1", snap.Running)
}

func TestTickBeforeInitFails(t *testing.T) {
	s := NewSession(testLog())
	defer s.Close()

	err := s.Tick()
	assert.Error(t, err)
}

func TestRunAdvancesMultipleTicks(t *testing.T) {
	s := NewSession(testLog())
	defer s.Close()

	require.NoError(t, s.Init(config.DefaultSimConfig(), testWorkload()))
	require.NoError(t, s.Run(5))

	snap, err := s.CurrentSnapshot()
	require.NoError(t, err)
	assert.Equal(t, 5, snap.Time)
}

func TestAddAndRemoveProcess(t *testing.T) {
	s := NewSession(testLog())
	defer s.Close()

	require.NoError(t, s.Init(config.DefaultSimConfig(), testWorkload()))
	require.NoError(t, s.AddProcess(procsim.Descriptor{Pid: "P3", Arrival: 0, Bursts: []int{2}}))

	snap, err := s.CurrentSnapshot()
	require.NoError(t, err)
	assert.Contains(t, pidsOf(snap), "P3")

	require.NoError(t, s.RemoveProcess("P3"))
	snap, err = s.CurrentSnapshot()
	require.NoError(t, err)
	assert.NotContains(t, pidsOf(snap), "P3")
}

func TestClearAddedKeepsBaseline(t *testing.T) {
	s := NewSession(testLog())
	defer s.Close()

	require.NoError(t, s.Init(config.DefaultSimConfig(), testWorkload()))
	require.NoError(t, s.AddProcess(procsim.Descriptor{Pid: "P3", Arrival: 0, Bursts: []int{2}}))
	require.NoError(t, s.ClearAdded())

	snap, err := s.CurrentSnapshot()
	require.NoError(t, err)
	assert.NotContains(t, pidsOf(snap), "P3")
	assert.Contains(t, pidsOf(snap), "P1")
}

func TestSetSpeedAndQuantum(t *testing.T) {
	s := NewSession(testLog())
	defer s.Close()

	cfg := config.DefaultSimConfig()
	cfg.Policy = config.PolicyRR
	require.NoError(t, s.Init(cfg, testWorkload()))

	require.NoError(t, s.SetSpeed(50))
	require.NoError(t, s.SetQuantum(4))

	snap, err := s.CurrentSnapshot()
	require.NoError(t, err)
	assert.Equal(t, 50, snap.TickMS)
	assert.Equal(t, 4, snap.Quantum)
}

func TestConfigLiveFieldPreservesTime(t *testing.T) {
	s := NewSession(testLog())
	defer s.Close()

	require.NoError(t, s.Init(config.DefaultSimConfig(), testWorkload()))
	require.NoError(t, s.Tick())
	require.NoError(t, s.Tick())

	require.NoError(t, s.Config(config.SimConfig{TickMS: 10}))

	snap, err := s.CurrentSnapshot()
	require.NoError(t, err)
	assert.Equal(t, 2, snap.Time)
	assert.Equal(t, 10, snap.TickMS)
}

func TestConfigPolicyChangeResetsTime(t *testing.T) {
	s := NewSession(testLog())
	defer s.Close()

	require.NoError(t, s.Init(config.DefaultSimConfig(), testWorkload()))
	require.NoError(t, s.Tick())
	require.NoError(t, s.Tick())

	require.NoError(t, s.Config(config.SimConfig{Policy: config.PolicyRR, Quantum: 2}))

	snap, err := s.CurrentSnapshot()
	require.NoError(t, err)
	assert.Equal(t, 0, snap.Time)
	assert.Equal(t, config.PolicyRR, snap.Algorithm)
	assert.Contains(t, pidsOf(snap), "P1")
}

func TestResetRevertsToInitialConfigNoProcesses(t *testing.T) {
	s := NewSession(testLog())
	defer s.Close()

	require.NoError(t, s.Init(config.DefaultSimConfig(), testWorkload()))
	require.NoError(t, s.Tick())
	require.NoError(t, s.AddProcess(procsim.Descriptor{Pid: "P3", Arrival: 0, Bursts: []int{2}}))

	require.NoError(t, s.Reset())

	snap, err := s.CurrentSnapshot()
	require.NoError(t, err)
	assert.Equal(t, 0, snap.Time)
	assert.Empty(t, snap.Processes)
}

func TestSyncDoesNotMutate(t *testing.T) {
	s := NewSession(testLog())
	defer s.Close()

	require.NoError(t, s.Init(config.DefaultSimConfig(), testWorkload()))
	require.NoError(t, s.Tick())

	before, err := s.CurrentSnapshot()
	require.NoError(t, err)
	require.NoError(t, s.Sync())
	after, err := s.CurrentSnapshot()
	require.NoError(t, err)

	assert.Equal(t, before.Time, after.Time)
}

func TestStartStopAutoplay(t *testing.T) {
	s := NewSession(testLog())
	defer s.Close()

	require.NoError(t, s.Init(config.DefaultSimConfig(), testWorkload()))
	require.NoError(t, s.StartAutoplay())

	time.Sleep(20 * time.Millisecond)
	require.NoError(t, s.StopAutoplay())

	snap, err := s.CurrentSnapshot()
	require.NoError(t, err)
	assert.Greater(t, snap.Time, 0)
}

func TestSubscribeReceivesBroadcast(t *testing.T) {
	s := NewSession(testLog())
	defer s.Close()

	_, ch, unsubscribe := s.Subscribe()
	defer unsubscribe()

	require.NoError(t, s.Init(config.DefaultSimConfig(), testWorkload()))

	select {
	case snap := <-ch:
		assert.Equal(t, 0, snap.Time)
	case <-time.After(time.Second):
		t.Fatal("did not receive broadcast after init")
	}
}

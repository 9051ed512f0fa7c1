package app

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nkamau/osched/pkg/config"
)

func testAppConfig(t *testing.T) *config.AppConfig {
	t.Helper()
	t.Setenv("CONFIG_DIR", t.TempDir())

	cfg, err := config.NewAppConfig("osched-test", "test", "", "", "test", false)
	require.NoError(t, err)
	return cfg
}

func TestNewAppWiresSessionAndLogger(t *testing.T) {
	a, err := NewApp(testAppConfig(t))
	require.NoError(t, err)
	defer a.Close()

	assert.NotNil(t, a.Log)
	assert.NotNil(t, a.Session)
	assert.NotNil(t, a.Config.SimConfig)
}

func TestCloseStopsSession(t *testing.T) {
	a, err := NewApp(testAppConfig(t))
	require.NoError(t, err)

	require.NoError(t, a.Close())

	err = a.Session.Tick()
	assert.Error(t, err)
}

func TestKnownErrorMapsNotInitialized(t *testing.T) {
	a, err := NewApp(testAppConfig(t))
	require.NoError(t, err)
	defer a.Close()

	msg, known := a.KnownError(a.Session.Tick())
	assert.True(t, known)
	assert.Contains(t, msg, "init")
}

func TestKnownErrorRejectsUnmappedError(t *testing.T) {
	a, err := NewApp(testAppConfig(t))
	require.NoError(t, err)
	defer a.Close()

	_, known := a.KnownError(assertUnmappedError{})
	assert.False(t, known)
}

type assertUnmappedError struct{}

func (assertUnmappedError) Error() string { return "something unrelated broke" }

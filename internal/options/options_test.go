package options

import (
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	o, err := Load(nil)
	require.NoError(t, err)

	assert.Equal(t, "citycam.yaml", o.SettingsPath)
	assert.Equal(t, "info", o.LogLevel)
	assert.Equal(t, 1280, o.WindowWidth)
	assert.Equal(t, 720, o.WindowHeight)
	assert.Equal(t, int64(1), o.Seed)
	assert.Equal(t, 40, o.Vehicles)
	assert.Equal(t, 60, o.Pedestrians)
	assert.Equal(t, 2, o.Trains)
	assert.True(t, o.WatchSettings)
	assert.False(t, o.ShowStats)
}

func TestLoad_Flags(t *testing.T) {
	o, err := Load([]string{
		"-s", "/tmp/cam.yaml",
		"--log-level", "debug",
		"--width", "800", "--height", "600",
		"--seed", "42",
		"--vehicles", "5",
		"--watch=false",
		"--stats",
	})
	require.NoError(t, err)

	assert.Equal(t, "/tmp/cam.yaml", o.SettingsPath)
	assert.Equal(t, "debug", o.LogLevel)
	assert.Equal(t, 800, o.WindowWidth)
	assert.Equal(t, 600, o.WindowHeight)
	assert.Equal(t, int64(42), o.Seed)
	assert.Equal(t, 5, o.Vehicles)
	assert.False(t, o.WatchSettings)
	assert.True(t, o.ShowStats)
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	t.Setenv("CITYCAM_LOG_LEVEL", "warn")
	t.Setenv("CITYCAM_PEDESTRIANS", "7")
	t.Setenv("CITYCAM_SEED", "9")

	o, err := Load(nil)
	require.NoError(t, err)
	assert.Equal(t, "warn", o.LogLevel)
	assert.Equal(t, 7, o.Pedestrians)
	assert.Equal(t, int64(9), o.Seed)

	// An explicit flag beats the environment.
	o, err = Load([]string{"--pedestrians", "3"})
	require.NoError(t, err)
	assert.Equal(t, 3, o.Pedestrians)
}

func TestLoad_Validation(t *testing.T) {
	_, err := Load([]string{"--width", "100"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "window size")

	_, err = Load([]string{"--trains=-1"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must not be negative")

	_, err = Load([]string{"--settings", ""})
	require.Error(t, err)
}

func TestLoad_Help(t *testing.T) {
	_, err := Load([]string{"--help"})
	assert.ErrorIs(t, err, pflag.ErrHelp)
}

func TestLoad_UnknownFlag(t *testing.T) {
	_, err := Load([]string{"--nope"})
	assert.Error(t, err)
}

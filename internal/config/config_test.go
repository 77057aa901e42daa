package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jpl-au/kbmirror/internal/config"
)

func TestLoad_Defaults(t *testing.T) {
	c, err := config.Load()
	require.NoError(t, err)

	assert.False(t, c.AuthEnabled)
	assert.Equal(t, config.DefaultSyncCron, c.SyncCron)
	assert.Equal(t, config.DefaultSyncTimezone, c.SyncTimezone)
	assert.Equal(t, config.DefaultStalenessHours, c.StalenessHours)
	assert.True(t, c.SyncEnabled)
	assert.Equal(t, "info", c.LogLevel)
	assert.False(t, c.StructuredLogs)
}

func TestLoad_OverridesFromEnv(t *testing.T) {
	t.Setenv("SYNC_CRON", "*/15 * * * *")
	t.Setenv("SYNC_TIMEZONE", "America/New_York")
	t.Setenv("STALENESS_HOURS", "6")
	t.Setenv("SYNC_ENABLED", "false")
	t.Setenv("LOG_LEVEL", "DEBUG")
	t.Setenv("STRUCTURED_LOGS", "true")

	c, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "*/15 * * * *", c.SyncCron)
	assert.Equal(t, "America/New_York", c.SyncTimezone)
	assert.Equal(t, 6, c.StalenessHours)
	assert.False(t, c.SyncEnabled)
	assert.Equal(t, "debug", c.LogLevel)
	assert.True(t, c.StructuredLogs)
}

func TestLoad_AuthEnabledRequiresToken(t *testing.T) {
	t.Setenv("AUTH_ENABLED", "true")
	_, err := config.Load()
	assert.ErrorIs(t, err, config.ErrInvalidValue)
}

func TestLoad_AuthEnabledWithToken(t *testing.T) {
	t.Setenv("AUTH_ENABLED", "true")
	t.Setenv("AUTH_TOKEN", "secret-token")
	c, err := config.Load()
	require.NoError(t, err)
	assert.True(t, c.AuthEnabled)
	assert.Equal(t, "secret-token", c.AuthToken)
}

func TestLoad_RejectsOutOfRangeStaleness(t *testing.T) {
	t.Setenv("STALENESS_HOURS", "0")
	_, err := config.Load()
	assert.ErrorIs(t, err, config.ErrInvalidValue)
}

func TestLoad_RejectsUnknownLogLevel(t *testing.T) {
	t.Setenv("LOG_LEVEL", "verbose")
	_, err := config.Load()
	assert.ErrorIs(t, err, config.ErrInvalidValue)
}

func TestLoadWithFile_SeedsEnvFromYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kbmirror.yaml")
	require.NoError(t, os.WriteFile(path, []byte("SYNC_CRON: \"*/5 * * * *\"\nSTALENESS_HOURS: \"12\"\n"), 0o644))

	c, err := config.LoadWithFile(path)
	require.NoError(t, err)
	assert.Equal(t, "*/5 * * * *", c.SyncCron)
	assert.Equal(t, 12, c.StalenessHours)
}

func TestLoadWithFile_EnvTakesPrecedenceOverFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kbmirror.yaml")
	require.NoError(t, os.WriteFile(path, []byte("SYNC_CRON: \"*/5 * * * *\"\n"), 0o644))
	t.Setenv("SYNC_CRON", "0 0 * * *")

	c, err := config.LoadWithFile(path)
	require.NoError(t, err)
	assert.Equal(t, "0 0 * * *", c.SyncCron)
}

func TestLoadWithFile_EmptyPathSkipsFile(t *testing.T) {
	c, err := config.LoadWithFile("")
	require.NoError(t, err)
	assert.Equal(t, config.DefaultSyncCron, c.SyncCron)
}

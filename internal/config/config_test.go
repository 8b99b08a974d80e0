package config

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("BUNGIE_API_KEY", "key")
	t.Setenv("BUNGIE_GROUP_ID", "4242")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "4242", cfg.Bungie.GroupID)
	assert.Equal(t, "https://www.bungie.net/Platform", cfg.Bungie.BaseURL)
	assert.Equal(t, time.Hour, cfg.Schedule.ReconcileInterval)
	assert.Equal(t, 10*time.Second, cfg.Schedule.ActivityTimeout)
	assert.Equal(t, 21, cfg.Schedule.OfflineCutoffDays)
	assert.Equal(t, "$", cfg.Bot.Prefix)
	assert.False(t, cfg.Redis.Enabled)
	assert.False(t, cfg.Postgres.Enabled)
	assert.Equal(t, filepath.Join("data", "members.json"), cfg.DocumentPath("members.json"))
}

func TestLoadOverrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("BUNGIE_API_KEY", "key")
	t.Setenv("BUNGIE_GROUP_ID", "4242")
	t.Setenv("RECONCILE_INTERVAL_SECONDS", "120")
	t.Setenv("OFFLINE_CUTOFF_DAYS", "30")
	t.Setenv("REDIS_ENABLED", "true")
	t.Setenv("DATA_DIR", "/var/lib/clanbot")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 2*time.Minute, cfg.Schedule.ReconcileInterval)
	assert.Equal(t, 30, cfg.Schedule.OfflineCutoffDays)
	assert.True(t, cfg.Redis.Enabled)
	assert.Equal(t, "/var/lib/clanbot/push_list.json", cfg.DocumentPath("push_list.json"))
}

func TestLoadRequiresBungieCredentials(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("BUNGIE_API_KEY", "")
	t.Setenv("BUNGIE_GROUP_ID", "4242")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "BUNGIE_API_KEY")
}

func TestValidateRejectsNonPositiveInterval(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("BUNGIE_API_KEY", "key")
	t.Setenv("BUNGIE_GROUP_ID", "4242")
	t.Setenv("RECONCILE_INTERVAL_SECONDS", "0")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "RECONCILE_INTERVAL_SECONDS")
}

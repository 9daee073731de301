package jobs

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "jobs.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadConfigMergesOverDefaults(t *testing.T) {
	path := writeConfig(t, `
base_url: http://crm.internal:9000/
timeout: 3s
retries: 5
jobs:
  heartbeat:
    schedule: "@every 1m"
  report:
    enabled: false
`)
	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "http://crm.internal:9000", cfg.BaseURL)
	assert.Equal(t, 3*time.Second, cfg.Timeout)
	assert.Equal(t, 5, cfg.Retries)
	assert.Equal(t, "@every 1m", cfg.Jobs[JobHeartbeat].Schedule)
	assert.Equal(t, "/tmp/crm_heartbeat_log.txt", cfg.Jobs[JobHeartbeat].LogPath)
	assert.False(t, cfg.Jobs[JobReport].IsEnabled())
	assert.True(t, cfg.Jobs[JobLowStock].IsEnabled())
	assert.Equal(t, 7*24*time.Hour, cfg.Jobs[JobOrderReminders].Lookback)
}

func TestLoadConfigRejectsUnknownJob(t *testing.T) {
	path := writeConfig(t, `
jobs:
  backup:
    schedule: "@daily"
    log_path: /tmp/backup.log
`)
	_, err := LoadConfig(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown job "backup"`)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}

func TestConfigPathFromEnv(t *testing.T) {
	t.Setenv(ConfigEnv, "")
	assert.Equal(t, DefaultConfigPath, ConfigPath())
	t.Setenv(ConfigEnv, "/etc/crm/jobs.yaml")
	assert.Equal(t, "/etc/crm/jobs.yaml", ConfigPath())
}

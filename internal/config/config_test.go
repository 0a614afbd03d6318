package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.Logging.Level)
	assert.False(t, cfg.Metrics.Enabled)
	assert.Equal(t, "localhost:9277", cfg.Metrics.Listen)
	assert.Equal(t, "/run/media", cfg.Mount.Root)
	assert.Empty(t, cfg.Disks)
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
logging:
  level: debug
metrics:
  enabled: true
  listen: "127.0.0.1:9000"
disks:
  - id: sdb1
    device: /dev/sdb1
    unit: sdb
    filesystem: vfat
    name: STICK
    whole: false
    mountable: true
  - id: sdb
    device: /dev/sdb
    unit: sdb
    whole: true
    mountable: false
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.True(t, cfg.Metrics.Enabled)
	assert.Equal(t, "127.0.0.1:9000", cfg.Metrics.Listen)
	require.Len(t, cfg.Disks, 2)
	assert.Equal(t, "sdb1", cfg.Disks[0].ID)
	assert.Equal(t, "vfat", cfg.Disks[0].Filesystem)
	assert.True(t, cfg.Disks[0].Mountable)
	assert.True(t, cfg.Disks[1].Whole)
}

func TestEnvOverride(t *testing.T) {
	t.Setenv("DISKARB_LOGGING_LEVEL", "error")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "error", cfg.Logging.Level)
}

func TestValidation(t *testing.T) {
	_, err := Load(writeConfig(t, `
disks:
  - device: /dev/sdb1
    unit: sdb
`))
	assert.ErrorContains(t, err, "id is required")

	_, err = Load(writeConfig(t, `
disks:
  - id: sdb1
    unit: sdb
  - id: sdb1
    unit: sdb
`))
	assert.ErrorContains(t, err, "duplicate id")

	_, err = Load(writeConfig(t, `
disks:
  - id: sdb1
`))
	assert.ErrorContains(t, err, "unit is required")
}

func TestMissingFile(t *testing.T) {
	_, err := Load("/nonexistent/config.yaml")
	assert.Error(t, err)
}

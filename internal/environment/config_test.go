package environment_test

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/programme-lv/speedwar/internal/environment"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate points XDG and the working directory at empty temp dirs so no
// developer config leaks into the test.
func isolate(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(root, "config"))
	t.Setenv("XDG_CONFIG_DIRS", filepath.Join(root, "etc"))
	t.Setenv("XDG_DATA_HOME", filepath.Join(root, "data"))
	t.Chdir(root)
	return root
}

func TestDefaults(t *testing.T) {
	root := isolate(t)

	cfg, err := environment.ReadConfig("")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "data", "speedwar"), cfg.BasePath)
	assert.Equal(t, 2*time.Second, cfg.Poll())
	assert.Equal(t, slog.LevelInfo, cfg.Level())
	assert.Equal(t, int64(5*1024*1024), cfg.UnpackLimits().MaxArchiveBytes)
	assert.Empty(t, cfg.EnergyMonitorURL)
}

func TestTomlAndEnvOverrides(t *testing.T) {
	root := isolate(t)
	path := filepath.Join(root, "config", "speedwar", "config.toml")
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(`
base_path = "/srv/speedwar"
poll_period = "500ms"
energy_monitor_url = "ws://10.0.0.2:8765"
log_level = "debug"
max_archive_bytes = 1024
`), 0644))

	t.Setenv("SPEEDWAR_ENERGY_MONITOR_URL", "ws://override:1")
	t.Setenv("SPEEDWAR_MAX_UNPACKED_BYTES", "4096")

	cfg, err := environment.ReadConfig("")
	require.NoError(t, err)
	assert.Equal(t, "/srv/speedwar", cfg.BasePath)
	assert.Equal(t, 500*time.Millisecond, cfg.Poll())
	assert.Equal(t, slog.LevelDebug, cfg.Level())
	assert.Equal(t, "ws://override:1", cfg.EnergyMonitorURL)
	assert.Equal(t, int64(1024), cfg.UnpackLimits().MaxArchiveBytes)
	assert.Equal(t, int64(4096), cfg.UnpackLimits().MaxUnpackedBytes)
}

func TestDotEnv(t *testing.T) {
	root := isolate(t)
	require.NoError(t, os.WriteFile(filepath.Join(root, ".env"), []byte("SPEEDWAR_WORK_ROOT=/var/tmp/judge\n"), 0644))
	t.Setenv("SPEEDWAR_WORK_ROOT", "")
	os.Unsetenv("SPEEDWAR_WORK_ROOT")

	cfg, err := environment.ReadConfig("")
	require.NoError(t, err)
	assert.Equal(t, "/var/tmp/judge", cfg.WorkRoot)
}

func TestInvalidConfig(t *testing.T) {
	root := isolate(t)

	_, err := environment.ReadConfig(filepath.Join(root, "missing.toml"))
	require.Error(t, err)

	bad := filepath.Join(root, "bad.toml")
	require.NoError(t, os.WriteFile(bad, []byte(`poll_period = "soon"`), 0644))
	_, err = environment.ReadConfig(bad)
	require.Error(t, err)

	t.Setenv("SPEEDWAR_MAX_ARCHIVE_BYTES", "lots")
	_, err = environment.ReadConfig("")
	require.Error(t, err)
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := environment.NewLogger(&buf, slog.LevelWarn)
	logger.Info("hidden")
	logger.Warn("shown", "team", 3)

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
	assert.Contains(t, buf.String(), "team")
}

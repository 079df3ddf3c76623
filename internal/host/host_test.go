package host_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gofrs/flock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"modkit/internal/host"
	"modkit/internal/logging"
	"modkit/internal/module"
	"modkit/internal/testsupport"
)

func newTestHost(t *testing.T) (*host.Host, string) {
	t.Helper()
	logDir := filepath.Join(t.TempDir(), "logs")
	path := testsupport.WriteConfigFile(t, map[string]any{
		"logging": map[string]any{
			"service": "hosttest",
			"log_dir": logDir,
			"console": false,
		},
	})
	h, err := host.New(host.Options{ConfigPath: path})
	require.NoError(t, err)
	return h, logDir
}

func quietModule(name string) host.Factory {
	return func(cfg map[string]any, logger logging.Logger) (module.Module, error) {
		return module.NewBase(module.Spec{Name: name, Logger: logger})
	}
}

func TestHostRunsModulesAndLogs(t *testing.T) {
	h, logDir := newTestHost(t)
	h.Register("alpha", quietModule("Alpha"))
	h.Register("beta", quietModule("Beta"))

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()
	require.NoError(t, h.Run(ctx))

	content, err := os.ReadFile(filepath.Join(logDir, "hosttest.log"))
	require.NoError(t, err)
	text := string(content)
	assert.Contains(t, text, "host starting")
	assert.Contains(t, text, "[alpha]")
	assert.Contains(t, text, "Running Alpha")
	assert.Contains(t, text, "Running Beta")
	assert.Contains(t, text, "host stopped")
	// Reaching the deadline is how this test shuts the host down; it must be
	// recorded as a stop, not a failure.
	assert.NotContains(t, text, "host run failed")
	assert.Contains(t, text, h.RunID())

	_, err = os.Stat(filepath.Join(logDir, "hosttest.lock"))
	assert.True(t, os.IsNotExist(err), "lock file should be removed on clean shutdown")
}

func TestHostRefusesSecondInstance(t *testing.T) {
	h, logDir := newTestHost(t)

	require.NoError(t, os.MkdirAll(logDir, 0o755))
	other := flock.New(filepath.Join(logDir, "hosttest.lock"))
	locked, err := other.TryLock()
	require.NoError(t, err)
	require.True(t, locked)
	defer other.Unlock()

	err = h.Run(context.Background())
	require.ErrorIs(t, err, host.ErrAlreadyRunning)
}

func TestHostReportsModuleBuildFailure(t *testing.T) {
	h, _ := newTestHost(t)
	h.Register("broken", func(cfg map[string]any, logger logging.Logger) (module.Module, error) {
		return nil, module.ErrConfig
	})

	err := h.Run(context.Background())
	require.ErrorIs(t, err, module.ErrConfig)
	assert.True(t, strings.Contains(err.Error(), "broken"))
}

func TestHostDefaultsWithoutConfigFile(t *testing.T) {
	logDir := filepath.Join(t.TempDir(), "logs")
	t.Setenv("MODKITHOSTTEST_LOGGING", `{"service": "envhost", "log_dir": "`+logDir+`", "console": false}`)

	h, err := host.New(host.Options{EnvPrefix: "MODKITHOSTTEST_"})
	require.NoError(t, err)
	require.NotEmpty(t, h.RunID())

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	require.NoError(t, h.Run(ctx))

	_, err = os.Stat(filepath.Join(logDir, "envhost.log"))
	require.NoError(t, err)
}

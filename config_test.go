package asyncqueue_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	aq "github.com/azargarov/asyncq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := aq.LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 5, cfg.MaxConcurrency)
	assert.Zero(t, cfg.MaxRetries)
	assert.Zero(t, cfg.Timeout)
	assert.Equal(t, 300*time.Millisecond, cfg.BaseDelay)
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("ASYNCQ_MAX_CONCURRENCY", "8")
	t.Setenv("ASYNCQ_MAX_RETRIES", "3")
	t.Setenv("ASYNCQ_TIMEOUT", "2s")

	cfg, err := aq.LoadConfig()
	require.NoError(t, err)

	opts := cfg.Options()
	assert.Equal(t, 8, opts.MaxConcurrency)
	assert.Equal(t, 3, opts.MaxRetries)
	assert.Equal(t, 2*time.Second, opts.Timeout)

	q, err := aq.New[int](opts)
	require.NoError(t, err)
	defer q.Stop()
	assert.Equal(t, 8, q.Stats().MaxConcurrency)
}

func TestLoadConfigFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "queue.env")
	require.NoError(t, os.WriteFile(path, []byte("ASYNCQ_BASE_DELAY=50ms\n"), 0o600))
	t.Cleanup(func() { os.Unsetenv("ASYNCQ_BASE_DELAY") })

	cfg, err := aq.LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 50*time.Millisecond, cfg.BaseDelay)
}

func TestLoadConfigErrors(t *testing.T) {
	_, err := aq.LoadConfig(filepath.Join(t.TempDir(), "missing.env"))
	assert.ErrorIs(t, err, aq.ErrParsingConfig)

	t.Setenv("ASYNCQ_MAX_CONCURRENCY", "dsf")
	_, err = aq.LoadConfig()
	assert.ErrorIs(t, err, aq.ErrParsingConfig)
}

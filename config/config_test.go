// config/config_test.go
package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, DefaultDatabasePath, cfg.Database.Path)
	assert.Equal(t, DefaultMaxConcurrent, cfg.Fetch.MaxConcurrent)
	assert.Equal(t, DefaultRateLimitDelay, cfg.Fetch.RateLimitDelay)
	assert.Equal(t, DefaultHTTPTimeout, cfg.API.Timeout)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
database:
  path: /var/data/flights.db
api:
  timeout: 45s
fetch:
  max_concurrent: 8
  rate_limit_delay: 250ms
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/var/data/flights.db", cfg.Database.Path)
	assert.Equal(t, 45*time.Second, cfg.API.Timeout)
	assert.Equal(t, 8, cfg.Fetch.MaxConcurrent)
	assert.Equal(t, 250*time.Millisecond, cfg.Fetch.RateLimitDelay)
}

func TestLoadRejectsBadDuration(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("fetch:\n  rate_limit_delay: soon\n"), 0o644))

	_, err := Load(path)
	require.Error(t, err)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

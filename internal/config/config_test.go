package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("", nil)
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Listen)
	assert.Equal(t, "mnemod.db", cfg.DBPath)
	assert.Equal(t, time.Hour, cfg.SyncInterval)
	assert.Equal(t, 20, cfg.Session.Limit)
	assert.Equal(t, 2.5, cfg.Scheduler.InitialEase)
	assert.Equal(t, 1.3, cfg.Scheduler.MinEase)
}

func TestLoadMissingFileIsSkipped(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"), nil)
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Listen)
}

func TestLoadYAMLOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mnemod.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
listen: ":9090"
db_path: /tmp/cards.db
sources:
  - /var/lib/decks
  - https://example.com/decks.git
sync_interval: 30m
session:
  limit: 10
  new_per_session: 3
scheduler:
  min_ease: 1.4
`), 0o644))

	cfg, err := Load(path, nil)
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Listen)
	assert.Equal(t, "/tmp/cards.db", cfg.DBPath)
	assert.Equal(t, []string{"/var/lib/decks", "https://example.com/decks.git"}, cfg.Sources)
	assert.Equal(t, 30*time.Minute, cfg.SyncInterval)
	assert.Equal(t, 10, cfg.Session.Limit)
	assert.Equal(t, 3, cfg.Session.NewPerSession)
	assert.Equal(t, 1.4, cfg.Scheduler.MinEase)
	// Untouched keys keep their defaults.
	assert.Equal(t, 365.0, cfg.Scheduler.MaxIntervalDays)
}

func TestLoadEnvironmentOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mnemod.yaml")
	require.NoError(t, os.WriteFile(path, []byte("db_path: from-file.db\n"), 0o644))

	t.Setenv("MNEMOD_DB_PATH", "from-env.db")
	t.Setenv("MNEMOD_SESSION__LIMIT", "5")

	cfg, err := Load(path, nil)
	require.NoError(t, err)

	assert.Equal(t, "from-env.db", cfg.DBPath)
	assert.Equal(t, 5, cfg.Session.Limit)
}

func TestLoadFlagsOverrideEverything(t *testing.T) {
	t.Setenv("MNEMOD_LISTEN", ":7070")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("listen", ":8080", "")
	flags.String("db_path", "mnemod.db", "")
	require.NoError(t, flags.Parse([]string{"--listen", ":6060"}))

	cfg, err := Load("", flags)
	require.NoError(t, err)

	assert.Equal(t, ":6060", cfg.Listen)
	// An unchanged flag does not clobber earlier layers.
	assert.Equal(t, "mnemod.db", cfg.DBPath)
}

func TestLoadRejectsInvalidConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mnemod.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
scheduler:
  min_ease: 2.0
  max_ease: 1.5
`), 0o644))

	_, err := Load(path, nil)
	assert.Error(t, err)
}

func TestLoadRejectsZeroSessionLimit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mnemod.yaml")
	require.NoError(t, os.WriteFile(path, []byte("session:\n  limit: 0\n"), 0o644))

	_, err := Load(path, nil)
	assert.Error(t, err)
}

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad_File(t *testing.T) {
	path := writeConfig(t, `
repositories:
  - /src/a
  - /src/b
since: "2024-01-01"
until: "2024-06-30"
timezone: UTC
max_files: 10
hotspot_author_threshold: 3
flush_trailing: true
db_path: /tmp/commits.db
author_aliases:
  rstoyanchev: Rossen Stoyanchev
log:
  level: debug
  format: json
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, []string{"/src/a", "/src/b"}, cfg.Repositories)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), cfg.Since)
	assert.Equal(t, time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC), cfg.Until)
	assert.Equal(t, time.UTC, cfg.Timezone)
	assert.Equal(t, 10, cfg.MaxFiles)
	assert.Equal(t, 20, cfg.MaxAuthors)
	assert.Equal(t, 3, cfg.HotspotAuthorThreshold)
	assert.True(t, cfg.FlushTrailing)
	assert.Equal(t, "/tmp/commits.db", cfg.DBPath)
	assert.Equal(t, "Rossen Stoyanchev", cfg.AuthorAliases["rstoyanchev"])
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoad_EnvOverride(t *testing.T) {
	path := writeConfig(t, "max_files: 10\n")
	t.Setenv("COCOSTAT_MAX_FILES", "7")
	t.Setenv("COCOSTAT_LOG_LEVEL", "warn")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 7, cfg.MaxFiles)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestLoad_InvalidRange(t *testing.T) {
	path := writeConfig(t, "since: \"2024-06-01\"\nuntil: \"2024-01-01\"\ntimezone: UTC\n")

	_, err := Load(path)
	assert.ErrorContains(t, err, "after until")
}

func TestLoad_InvalidTimezone(t *testing.T) {
	path := writeConfig(t, "timezone: Mars/Olympus\n")

	_, err := Load(path)
	assert.ErrorContains(t, err, "invalid timezone")
}

func TestParseDate(t *testing.T) {
	ref := time.Date(2024, 3, 31, 12, 0, 0, 0, time.UTC)

	got, err := ParseDate("2024-03-01", ref, time.UTC)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), got)

	got, err = ParseDate("2024-03-01T10:00:00Z", ref, time.UTC)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC), got)

	got, err = ParseDate("48h", ref, time.UTC)
	require.NoError(t, err)
	assert.Equal(t, ref.Add(-48*time.Hour), got)

	_, err = ParseDate("last tuesday", ref, time.UTC)
	assert.Error(t, err)
}

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, 7, cfg.RollingWindow)
	assert.True(t, cfg.Since.Before(cfg.Until))
	assert.False(t, cfg.FlushTrailing)
	assert.NotNil(t, cfg.AuthorAliases)
}

package nextver

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), ".nextver.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadConfig(t *testing.T) {
	t.Run("Parses a full config file", func(t *testing.T) {
		path := writeConfigFile(t, `
tag_pattern: "^release-(.+)$"
first_version: "0.001"
version_by_branch: true
override_env: "RELEASE_VERSION"
log_level: debug
`)

		cfg, err := LoadConfig(path)
		require.NoError(t, err)
		require.Equal(t, "^release-(.+)$", cfg.TagPattern)
		require.Equal(t, "0.001", cfg.FirstVersion)
		require.True(t, cfg.VersionByBranch)
		require.Equal(t, "RELEASE_VERSION", cfg.OverrideEnv)
		require.Equal(t, "debug", cfg.LogLevel)
	})

	t.Run("Fills defaults for missing values", func(t *testing.T) {
		path := writeConfigFile(t, `version_by_branch: true`)

		cfg, err := LoadConfig(path)
		require.NoError(t, err)
		require.Equal(t, DefaultTagPattern, cfg.TagPattern)
		require.Equal(t, DefaultFirstVersion, cfg.FirstVersion)
		require.Equal(t, DefaultOverrideEnv, cfg.OverrideEnv)
		require.Equal(t, "info", cfg.LogLevel)
	})

	t.Run("No config file anywhere yields defaults", func(t *testing.T) {
		t.Setenv("NEXTVER_CONFIG", "")

		cfg, err := LoadConfig("")
		require.NoError(t, err)
		require.Equal(t, DefaultConfig(), cfg)
	})

	t.Run("Explicit missing path is an error", func(t *testing.T) {
		_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
		require.Error(t, err)
	})

	t.Run("Config from NEXTVER_CONFIG", func(t *testing.T) {
		path := writeConfigFile(t, `first_version: "2.0.0"`)
		t.Setenv("NEXTVER_CONFIG", path)

		cfg, err := LoadConfig("")
		require.NoError(t, err)
		require.Equal(t, "2.0.0", cfg.FirstVersion)
	})

	t.Run("Malformed yaml is an error", func(t *testing.T) {
		path := writeConfigFile(t, `tag_pattern: [unclosed`)

		_, err := LoadConfig(path)
		require.Error(t, err)
	})

	t.Run("Pattern without capture group is rejected", func(t *testing.T) {
		path := writeConfigFile(t, `tag_pattern: "^v.+$"`)

		_, err := LoadConfig(path)
		require.Error(t, err)
	})

	t.Run("Unparsable first version is rejected", func(t *testing.T) {
		path := writeConfigFile(t, `first_version: "garbage"`)

		_, err := LoadConfig(path)
		require.Error(t, err)
	})

	t.Run("Unknown log level is rejected", func(t *testing.T) {
		path := writeConfigFile(t, `log_level: loud`)

		_, err := LoadConfig(path)
		require.Error(t, err)
	})
}

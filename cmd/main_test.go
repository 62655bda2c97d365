package main

import (
	"testing"

	"github.com/nextver/nextver"
	"github.com/stretchr/testify/require"
)

func TestApplyFlags(t *testing.T) {
	t.Run("Flags override config values", func(t *testing.T) {
		cfg := nextver.DefaultConfig()
		cli := &CLI{
			Pattern:      `^release-(.+)$`,
			FirstVersion: "0.001",
			Branch:       true,
			Debug:        true,
		}

		applyFlags(cfg, cli)

		require.Equal(t, `^release-(.+)$`, cfg.TagPattern)
		require.Equal(t, "0.001", cfg.FirstVersion)
		require.True(t, cfg.VersionByBranch)
		require.Equal(t, "debug", cfg.LogLevel)
	})

	t.Run("Unset flags leave config alone", func(t *testing.T) {
		cfg := nextver.DefaultConfig()
		cfg.TagPattern = `^sdk-(.+)$`
		cfg.VersionByBranch = true

		applyFlags(cfg, &CLI{})

		require.Equal(t, `^sdk-(.+)$`, cfg.TagPattern)
		require.True(t, cfg.VersionByBranch)
		require.Equal(t, "info", cfg.LogLevel)
	})
}

func TestNewLogger(t *testing.T) {
	for _, level := range []string{"debug", "info", "warn", "error"} {
		t.Run(level, func(t *testing.T) {
			logger, err := newLogger(level)
			require.NoError(t, err)
			require.NotNil(t, logger)
		})
	}

	t.Run("Unknown level fails", func(t *testing.T) {
		_, err := newLogger("loud")
		require.Error(t, err)
	})
}

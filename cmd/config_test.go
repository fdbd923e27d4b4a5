package cmd

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ocdsmap.dev/pkg/ocdsmap/internal/domain"
)

func TestConfigConstants(t *testing.T) {
	assert.Equal(t, "ocdsmap", configBaseName)
	assert.Equal(t, "ocdsmap.yaml", configFileName)
	assert.Equal(t, ".", configFolderPath)
	assert.Equal(t, ".env", envFileName)
	assert.Equal(t, "output", outputFlagName)
	assert.Equal(t, "shard", shardFlagName)
	assert.Equal(t, "mapping.ocid_prefix", ocidPrefixConfigKey)
	assert.Equal(t, "datasource.connection", connectionConfigKey)
	assert.Equal(t, "releases", defaultOutputDir)
	assert.Equal(t, "mapping.yaml", defaultMappingFile)
	assert.True(t, defaultPackage)
	assert.Equal(t, "OCDSMAP", envPrefix)
}

func TestConfigVersionConstants(t *testing.T) {
	assert.Equal(t, "version", configVersionKey)
	assert.Equal(t, 1, currentConfigVersion)
}

func TestConfigDefaults(t *testing.T) {
	assert.Equal(t, defaultMappingFile, viper.GetString(mappingFileConfigKey))
	assert.Equal(t, defaultOCDSVersion, viper.GetString(publishingConfigKey+".version"))
	assert.Equal(t, domain.DefaultBuffer, viper.GetInt(runBufferConfigKey))
	assert.ElementsMatch(t, domain.DefaultSlotArrays, viper.GetStringSlice(slotArraysConfigKey))
}

func TestPublishingMeta(t *testing.T) {
	t.Setenv("OCDSMAP_PUBLISHING_PUBLISHER_NAME", "Ministry of Finance")
	t.Setenv("OCDSMAP_PUBLISHING_PUBLICATION_POLICY", "https://example.org/policy")

	meta := publishingMeta()

	assert.Equal(t, "Ministry of Finance", meta.Publisher.Name)
	assert.Equal(t, "https://example.org/policy", meta.PublicationPolicy)
	assert.Equal(t, defaultOCDSVersion, meta.Version)
	assert.Empty(t, meta.PublishedDate)
}

func TestLoadEnvFile(t *testing.T) {
	t.Run("exports variables", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), envFileName)
		require.NoError(t, os.WriteFile(path, []byte("OCDSMAP_TEST_SECRET=s3cret\n"), 0o600))
		t.Cleanup(func() { _ = os.Unsetenv("OCDSMAP_TEST_SECRET") })

		loadEnvFile(path)

		assert.Equal(t, "s3cret", os.Getenv("OCDSMAP_TEST_SECRET"))
	})

	t.Run("keeps existing environment", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), envFileName)
		require.NoError(t, os.WriteFile(path, []byte("OCDSMAP_TEST_KEEP=file\n"), 0o600))
		t.Setenv("OCDSMAP_TEST_KEEP", "env")

		loadEnvFile(path)

		assert.Equal(t, "env", os.Getenv("OCDSMAP_TEST_KEEP"))
	})

	t.Run("missing file", func(t *testing.T) {
		assert.NotPanics(t, func() { loadEnvFile(filepath.Join(t.TempDir(), "absent.env")) })
	})
}

func TestParseSlogLevel(t *testing.T) {
	tests := []struct {
		value string
		want  slog.Level
	}{
		{"", slog.LevelInfo},
		{"debug", slog.LevelDebug},
		{" INFO ", slog.LevelInfo},
		{"warning", slog.LevelWarn},
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
		{"-4", slog.LevelDebug},
		{"loud", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			assert.Equal(t, tt.want, parseSlogLevel(tt.value, slog.LevelInfo))
		})
	}
}

func TestConfigureLogger(t *testing.T) {
	original := slog.Default()
	t.Cleanup(func() { slog.SetDefault(original) })

	logPath := filepath.Join(t.TempDir(), "ocdsmap.log")
	configureLogger(logPath, true)

	require.NotNil(t, globalLogger)
	assert.Same(t, globalLogger, slog.Default())
	assert.True(t, slog.Default().Enabled(t.Context(), slog.LevelDebug))

	slog.Info("configured")

	contents, err := os.ReadFile(logPath)
	require.NoError(t, err)
	assert.Contains(t, string(contents), "configured")
}

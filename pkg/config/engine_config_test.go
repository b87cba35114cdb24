package config_test

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/syre-project/engine/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadEngineConfigMissingFileReturnsDefaults(t *testing.T) {
	dir := t.TempDir()
	cfg, err := config.LoadEngineConfig(filepath.Join(dir, "engine.yaml"))
	require.NoError(t, err)
	assert.Equal(t, config.DefaultEngineConfig(), cfg)
}

func TestSaveAndLoadEngineConfigRoundTrips(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "engine.yaml")

	cfg := config.EngineConfig{
		LogLevel:           "debug",
		DebounceInterval:   500 * time.Millisecond,
		SearchIndexEnabled: false,
		RawEventBufferSize: 64,
	}
	require.NoError(t, config.SaveEngineConfig(path, cfg))

	loaded, err := config.LoadEngineConfig(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

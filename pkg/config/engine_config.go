package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// EngineConfig is the engine's own process-level configuration: values
// that shape the pipeline itself, not any one project's data. It is
// distinct from the per-project/per-container JSON resource files, which
// are bit-exact per spec and never touch YAML.
type EngineConfig struct {
	// LogLevel is one of "debug", "info", "warn", "error".
	LogLevel string `yaml:"log_level"`
	// DebounceInterval is how long the raw-event source accumulates OS
	// notifications before emitting a batch.
	DebounceInterval time.Duration `yaml:"debounce_interval"`
	// SearchIndexEnabled toggles the optional search index (component H).
	// Failures in the index must never block the main pipeline regardless
	// of this flag; it only controls whether the index runs at all.
	SearchIndexEnabled bool `yaml:"search_index_enabled"`
	// RawEventBufferSize is the bound on the watcher->supervisor channel.
	// Backpressure on this channel blocks the watcher; it is never
	// dropped.
	RawEventBufferSize int `yaml:"raw_event_buffer_size"`
}

// DefaultEngineConfig returns the engine's built-in defaults.
func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		LogLevel:           "info",
		DebounceInterval:   300 * time.Millisecond,
		SearchIndexEnabled: true,
		RawEventBufferSize: 256,
	}
}

// LoadEngineConfig reads the YAML config file at path over the defaults:
// fields present in the file override them, absent fields keep them, and
// a missing file yields the defaults unchanged.
func LoadEngineConfig(path string) (EngineConfig, error) {
	cfg := DefaultEngineConfig()

	content, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read engine config: %w", err)
	}

	if err := yaml.Unmarshal(content, &cfg); err != nil {
		return cfg, fmt.Errorf("parse engine config: %w", err)
	}
	return cfg, nil
}

// SaveEngineConfig writes cfg as YAML to path, creating parent
// directories as needed.
func SaveEngineConfig(path string, cfg EngineConfig) error {
	content, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal engine config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create engine config directory: %w", err)
	}
	if err := os.WriteFile(path, content, 0o644); err != nil {
		return fmt.Errorf("write engine config: %w", err)
	}
	return nil
}

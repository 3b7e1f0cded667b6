package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config represents the complete converter configuration.
type Config struct {
	Audio   AudioConfig   `yaml:"audio"`
	Batch   BatchConfig   `yaml:"batch"`
	HTTP    HTTPConfig    `yaml:"http"`
	Logging LoggingConfig `yaml:"logging"`
}

// AudioConfig contains audio processing parameters.
type AudioConfig struct {
	ChunkFrames    int   `yaml:"chunk_frames"`
	MaxFileSizeMiB int64 `yaml:"max_file_size_mib"`
}

// BatchConfig contains batch sizing parameters.
type BatchConfig struct {
	Capacity  int `yaml:"capacity"`
	MaxEvents int `yaml:"max_events"`
}

// HTTPConfig contains the monitoring HTTP API configuration.
type HTTPConfig struct {
	Enabled bool   `yaml:"enabled"`
	Address string `yaml:"address"`
	Port    int    `yaml:"port"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// Default returns the configuration used when no config file is given.
func Default() *Config {
	return &Config{
		Audio: AudioConfig{
			ChunkFrames:    32768,
			MaxFileSizeMiB: 100,
		},
		Batch: BatchConfig{
			Capacity:  50,
			MaxEvents: 500,
		},
		HTTP: HTTPConfig{
			Enabled: false,
			Address: "127.0.0.1",
			Port:    8675,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
			Output: "stderr",
		},
	}
}

// Load reads and parses the configuration file. Fields absent from the file
// keep their defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	config := Default()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return config, nil
}

// Validate performs validation of the configuration.
func (c *Config) Validate() error {
	if err := c.Audio.Validate(); err != nil {
		return fmt.Errorf("audio config: %w", err)
	}

	if err := c.Batch.Validate(); err != nil {
		return fmt.Errorf("batch config: %w", err)
	}

	if err := c.HTTP.Validate(); err != nil {
		return fmt.Errorf("http config: %w", err)
	}

	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("logging config: %w", err)
	}

	return nil
}

// Validate validates audio configuration.
func (a *AudioConfig) Validate() error {
	if a.ChunkFrames < 1 {
		return fmt.Errorf("chunk_frames must be at least 1, got %d", a.ChunkFrames)
	}

	if a.MaxFileSizeMiB < 1 {
		return fmt.Errorf("max_file_size_mib must be at least 1, got %d", a.MaxFileSizeMiB)
	}

	return nil
}

// Validate validates batch configuration.
func (b *BatchConfig) Validate() error {
	if b.Capacity < 1 {
		return fmt.Errorf("capacity must be at least 1, got %d", b.Capacity)
	}

	if b.MaxEvents < 1 {
		return fmt.Errorf("max_events must be at least 1, got %d", b.MaxEvents)
	}

	return nil
}

// Validate validates HTTP configuration.
func (h *HTTPConfig) Validate() error {
	if h.Enabled {
		if h.Port < 1 || h.Port > 65535 {
			return fmt.Errorf("port must be between 1 and 65535, got %d", h.Port)
		}

		if h.Address == "" {
			return fmt.Errorf("address cannot be empty when HTTP is enabled")
		}
	}

	return nil
}

// Validate validates logging configuration.
func (l *LoggingConfig) Validate() error {
	validLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLevels[l.Level] {
		return fmt.Errorf("level must be one of [debug, info, warn, error], got '%s'", l.Level)
	}

	validFormats := map[string]bool{"json": true, "text": true}
	if !validFormats[l.Format] {
		return fmt.Errorf("format must be 'json' or 'text', got '%s'", l.Format)
	}

	return nil
}

// MaxFileBytes returns the pre-flight size limit in bytes.
func (a *AudioConfig) MaxFileBytes() int64 {
	return a.MaxFileSizeMiB << 20
}

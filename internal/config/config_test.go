package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Default config must validate: %v", err)
	}
	if cfg.Audio.ChunkFrames != 32768 {
		t.Errorf("Expected default chunk_frames 32768, got %d", cfg.Audio.ChunkFrames)
	}
	if cfg.Batch.Capacity != 50 {
		t.Errorf("Expected default capacity 50, got %d", cfg.Batch.Capacity)
	}
	if cfg.Audio.MaxFileBytes() != 100<<20 {
		t.Errorf("Expected 100 MiB limit, got %d bytes", cfg.Audio.MaxFileBytes())
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	content := `
audio:
  chunk_frames: 8192
  max_file_size_mib: 10
batch:
  capacity: 5
http:
  enabled: true
  address: "127.0.0.1"
  port: 9000
logging:
  level: debug
  format: json
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Audio.ChunkFrames != 8192 {
		t.Errorf("Expected chunk_frames 8192, got %d", cfg.Audio.ChunkFrames)
	}
	if cfg.Audio.MaxFileSizeMiB != 10 {
		t.Errorf("Expected max_file_size_mib 10, got %d", cfg.Audio.MaxFileSizeMiB)
	}
	if cfg.Batch.Capacity != 5 {
		t.Errorf("Expected capacity 5, got %d", cfg.Batch.Capacity)
	}
	if !cfg.HTTP.Enabled || cfg.HTTP.Port != 9000 {
		t.Errorf("Unexpected http config: %+v", cfg.HTTP)
	}
	if cfg.Logging.Level != "debug" || cfg.Logging.Format != "json" {
		t.Errorf("Unexpected logging config: %+v", cfg.Logging)
	}
	// Fields absent from the file keep their defaults
	if cfg.Batch.MaxEvents != 500 {
		t.Errorf("Expected default max_events 500, got %d", cfg.Batch.MaxEvents)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load("/does/not/exist.yaml"); err == nil {
		t.Fatal("Expected error for missing config file")
	}
}

func TestValidateErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero chunk frames", func(c *Config) { c.Audio.ChunkFrames = 0 }},
		{"zero file size limit", func(c *Config) { c.Audio.MaxFileSizeMiB = 0 }},
		{"zero capacity", func(c *Config) { c.Batch.Capacity = 0 }},
		{"zero max events", func(c *Config) { c.Batch.MaxEvents = 0 }},
		{"bad http port", func(c *Config) { c.HTTP.Enabled = true; c.HTTP.Port = 0 }},
		{"empty http address", func(c *Config) { c.HTTP.Enabled = true; c.HTTP.Address = "" }},
		{"bad log level", func(c *Config) { c.Logging.Level = "loud" }},
		{"bad log format", func(c *Config) { c.Logging.Format = "xml" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("Expected validation error")
			}
		})
	}
}

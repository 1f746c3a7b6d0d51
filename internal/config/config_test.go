package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestConfigYAMLRoundTrip(t *testing.T) {
	tmpDir := t.TempDir()

	cfg := DefaultConfig()
	cfg.Export.OutputDir = "batches"
	cfg.Export.Compress = true
	cfg.History.MaxAgeDays = 7

	// Write to disk
	if err := WriteConfig(tmpDir, cfg); err != nil {
		t.Fatalf("WriteConfig failed: %v", err)
	}

	// Read back
	loaded, err := ReadConfig(tmpDir)
	if err != nil {
		t.Fatalf("ReadConfig failed: %v", err)
	}

	if loaded.Export.OutputDir != "batches" {
		t.Errorf("Export.OutputDir: got %q, want %q", loaded.Export.OutputDir, "batches")
	}
	if !loaded.Export.Compress {
		t.Error("Export.Compress: got false, want true")
	}
	if loaded.History.MaxAgeDays != 7 {
		t.Errorf("History.MaxAgeDays: got %d, want 7", loaded.History.MaxAgeDays)
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if !cfg.History.Enabled {
		t.Error("default History.Enabled: got false, want true")
	}
	if !cfg.Log.Enabled {
		t.Error("default Log.Enabled: got false, want true")
	}
	if cfg.Export.Compress {
		t.Error("default Export.Compress: got true, want false")
	}
}

func TestPartialConfigKeepsDefaults(t *testing.T) {
	tmpDir := t.TempDir()
	partial := `version: 1
export:
  compress: true
`
	configPath := filepath.Join(tmpDir, Dir)
	if err := os.MkdirAll(configPath, 0755); err != nil {
		t.Fatalf("failed to create dir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(configPath, "config.yaml"), []byte(partial), 0644); err != nil {
		t.Fatalf("failed to write partial config: %v", err)
	}

	cfg, err := ReadConfig(tmpDir)
	if err != nil {
		t.Fatalf("ReadConfig failed on partial config: %v", err)
	}
	if !cfg.Export.Compress {
		t.Error("Export.Compress: got false, want true")
	}
	// Sections missing from the file keep their defaults.
	if !cfg.History.Enabled || cfg.History.MaxAgeDays != 90 {
		t.Errorf("History: got %+v, want defaults", cfg.History)
	}
}

func TestLoadOrDefault(t *testing.T) {
	cfg, err := LoadOrDefault(t.TempDir())
	if err != nil {
		t.Fatalf("LoadOrDefault failed: %v", err)
	}
	if cfg.Version != 1 {
		t.Errorf("Version: got %d, want 1", cfg.Version)
	}

	broken := t.TempDir()
	if err := os.MkdirAll(filepath.Join(broken, Dir), 0755); err != nil {
		t.Fatalf("failed to create dir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(broken, Dir, "config.yaml"), []byte("export: [\n"), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	if _, err := LoadOrDefault(broken); err == nil {
		t.Error("expected error for malformed config")
	}
}

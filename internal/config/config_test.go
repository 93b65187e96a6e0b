package config

import (
	"os"
	"path/filepath"
	"testing"
)

func isolateConfigDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv("APPDATA", dir)
	return dir
}

func TestLoadDefaults(t *testing.T) {
	isolateConfigDir(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Whisper.Model != "base" {
		t.Errorf("Model = %q, want base", cfg.Whisper.Model)
	}
	if cfg.Whisper.Language != "auto" {
		t.Errorf("Language = %q, want auto", cfg.Whisper.Language)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel = %q, want info", cfg.LogLevel)
	}
	if cfg.Translate.TimeoutSeconds != 30 {
		t.Errorf("TimeoutSeconds = %d, want 30", cfg.Translate.TimeoutSeconds)
	}
	if cfg.OutputDir() != "." {
		t.Errorf("OutputDir() = %q, want .", cfg.OutputDir())
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	isolateConfigDir(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	cfg.Whisper.Model = "small"
	cfg.Audio.DeviceID = "Speakers"
	cfg.Output.Dir = "/tmp/recordings"
	if err := cfg.Save(); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	loaded, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if loaded.Whisper.Model != "small" {
		t.Errorf("Model = %q, want small", loaded.Whisper.Model)
	}
	if loaded.Audio.DeviceID != "Speakers" {
		t.Errorf("DeviceID = %q, want Speakers", loaded.Audio.DeviceID)
	}
	if loaded.OutputDir() != "/tmp/recordings" {
		t.Errorf("OutputDir() = %q, want /tmp/recordings", loaded.OutputDir())
	}
}

func TestLoadPartialFileKeepsDefaults(t *testing.T) {
	isolateConfigDir(t)

	path := configPath()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(`{"log_level": "debug"}`), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want debug", cfg.LogLevel)
	}
	if cfg.Whisper.Model != "base" {
		t.Errorf("Model = %q, want base (default)", cfg.Whisper.Model)
	}
}

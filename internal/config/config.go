package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"runtime"
)

type Config struct {
	Output    OutputConfig    `json:"output"`
	Audio     AudioConfig     `json:"audio"`
	Whisper   WhisperConfig   `json:"whisper"`
	Translate TranslateConfig `json:"translate"`
	LogLevel  string          `json:"log_level"` // "debug", "info", "warn", "error"
}

type OutputConfig struct {
	Dir string `json:"dir"` // empty = current directory
}

type AudioConfig struct {
	DeviceID string `json:"device_id"` // playback device name, empty = default
}

type WhisperConfig struct {
	Model    string `json:"model"`    // "base", "small", etc.
	Language string `json:"language"` // "auto", "en", etc.
	Threads  int    `json:"threads"`  // 0 = auto-detect
}

type TranslateConfig struct {
	Endpoint       string `json:"endpoint"`
	APIKey         string `json:"api_key"`
	TimeoutSeconds int    `json:"timeout_seconds"`
}

// Load reads the config from disk or returns defaults
func Load() (*Config, error) {
	path := configPath()

	// Default config
	cfg := &Config{
		Output: OutputConfig{
			Dir: "",
		},
		Audio: AudioConfig{
			DeviceID: "",
		},
		Whisper: WhisperConfig{
			Model:    "base",
			Language: "auto",
			Threads:  0,
		},
		Translate: TranslateConfig{
			Endpoint:       "https://libretranslate.com/translate",
			APIKey:         "",
			TimeoutSeconds: 30,
		},
		LogLevel: "info",
	}

	// Load existing config if it exists
	if data, err := os.ReadFile(path); err == nil {
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

// Save writes the config to disk
func (c *Config) Save() error {
	path := configPath()

	// Ensure directory exists
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// OutputDir returns the directory capture files are written to, falling
// back to the current working directory.
func (c *Config) OutputDir() string {
	if c.Output.Dir != "" {
		return c.Output.Dir
	}
	return "."
}

// configPath returns the platform-specific config file path
func configPath() string {
	var base string

	switch runtime.GOOS {
	case "darwin":
		base = os.Getenv("HOME") + "/Library/Application Support"
	case "windows":
		base = os.Getenv("APPDATA")
	default: // linux
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			base = xdg
		} else {
			base = os.Getenv("HOME") + "/.config"
		}
	}

	return filepath.Join(base, "audiotransvox", "config.json")
}

// ModelsPath returns the platform-specific models directory path
func ModelsPath() string {
	var base string

	switch runtime.GOOS {
	case "darwin":
		base = os.Getenv("HOME") + "/Library/Application Support"
	case "windows":
		base = os.Getenv("LOCALAPPDATA")
	default:
		if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
			base = xdg
		} else {
			base = os.Getenv("HOME") + "/.local/share"
		}
	}

	return filepath.Join(base, "audiotransvox", "models")
}

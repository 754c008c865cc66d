package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/ini.v1"
	"gopkg.in/yaml.v3"
)

// Load reads, decodes and validates a configuration document. YAML and JSON
// are both accepted, keyed off the file extension.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := &Config{}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse YAML config: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse JSON config: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported config format %q (want .yaml, .yml or .json)", filepath.Ext(path))
	}

	cfg.baseDir = filepath.Dir(path)
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// ApplyUserSettings overlays values from a Settings.ini file onto an already
// loaded document. Only keys present in the file override; everything else
// keeps its document value. A missing file is not an error.
func ApplyUserSettings(cfg *Config, path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}

	file, err := ini.Load(path)
	if err != nil {
		return fmt.Errorf("failed to load settings file: %w", err)
	}

	section := file.Section("UserSettings")
	if key := section.Key("pauseHotkey"); key.String() != "" {
		cfg.Hotkeys.PauseResume = key.String()
	}
	if key := section.Key("stopHotkey"); key.String() != "" {
		cfg.Hotkeys.Shutdown = key.String()
	}
	if section.HasKey("useWin32Clicks") {
		cfg.Clicks.UseWin32 = section.Key("useWin32Clicks").MustBool(cfg.Clicks.UseWin32)
	}
	if section.HasKey("scanIntervalMs") {
		ms := section.Key("scanIntervalMs").MustInt(0)
		if ms > 0 {
			cfg.Timing.ScanInterval = float64(ms) / 1000.0
		}
	}
	return nil
}

// UserLogLevel reads the logLevel override from a Settings.ini file,
// returning the fallback when the file or key is absent.
func UserLogLevel(path, fallback string) string {
	file, err := ini.Load(path)
	if err != nil {
		return fallback
	}
	return file.Section("UserSettings").Key("logLevel").MustString(fallback)
}

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

const validYAML = `
monitor:
  left: 0
  top: 0
  width: 1920
  height: 1080
trades:
  - name: alpha
    region: {left: 100, top: 200, width: 60, height: 40}
    start_button: {x: 130, y: 260}
  - region: {left: 100, top: 300, width: 60, height: 40}
    start_button: {x: 130, y: 360}
collect_button: {x: 900, y: 1000}
refresh_button: {x: 950, y: 1000}
hsv_ranges:
  - {hue_low: 350, hue_high: 360, sat_low: 0.5, sat_high: 1, val_low: 0.3, val_high: 1}
  - {hue_low: 0, hue_high: 10, sat_low: 0.5, sat_high: 1, val_low: 0.3, val_high: 1}
templates:
  start_active:
    path: images/start.png
`

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func TestLoadYAML(t *testing.T) {
	cfg, err := Load(writeConfig(t, "config.yaml", validYAML))
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if len(cfg.Trades) != 2 {
		t.Fatalf("expected 2 trades, got %d", len(cfg.Trades))
	}
	if cfg.Trades[0].Name != "alpha" {
		t.Errorf("expected explicit name kept, got %q", cfg.Trades[0].Name)
	}
	if cfg.Trades[1].Name != "trade_2" {
		t.Errorf("expected generated name trade_2, got %q", cfg.Trades[1].Name)
	}
	if cfg.Monitor.Width != 1920 {
		t.Errorf("monitor width: got %d", cfg.Monitor.Width)
	}
	if len(cfg.HSVRanges) != 2 {
		t.Errorf("expected 2 hsv ranges, got %d", len(cfg.HSVRanges))
	}
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "config.yaml", validYAML))
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if cfg.RedRatioThreshold != 0.01 {
		t.Errorf("default red ratio threshold: got %v", cfg.RedRatioThreshold)
	}
	if cfg.Trades[0].RedRatioThreshold != 0.01 {
		t.Errorf("entry should inherit global threshold, got %v", cfg.Trades[0].RedRatioThreshold)
	}
	if cfg.Timing.ScanIntervalDuration() != 500*time.Millisecond {
		t.Errorf("default scan interval: got %v", cfg.Timing.ScanIntervalDuration())
	}
	if cfg.Timing.CooldownDuration() != 2*time.Second {
		t.Errorf("default cooldown: got %v", cfg.Timing.CooldownDuration())
	}
	if cfg.Templates["start_active"].Threshold != 0.8 {
		t.Errorf("default template threshold: got %v", cfg.Templates["start_active"].Threshold)
	}
	if cfg.Hotkeys.PauseResume != "f9" || cfg.Hotkeys.Shutdown != "f10" {
		t.Errorf("default hotkeys: got %+v", cfg.Hotkeys)
	}
	if cfg.MaxCaptureFailures != 5 {
		t.Errorf("default max capture failures: got %d", cfg.MaxCaptureFailures)
	}
	if cfg.Clicks.Win32PressDuration != 40 {
		t.Errorf("default press duration: got %d", cfg.Clicks.Win32PressDuration)
	}
}

func TestScanIntervalFloor(t *testing.T) {
	cfg, err := Load(writeConfig(t, "config.yaml", strings.Replace(validYAML,
		"refresh_button: {x: 950, y: 1000}",
		"refresh_button: {x: 950, y: 1000}\ntiming:\n  scan_interval: 0.001", 1)))
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if got := cfg.Timing.ScanIntervalDuration(); got != 50*time.Millisecond {
		t.Errorf("scan interval should be floored at 50ms, got %v", got)
	}
}

func TestLoadUnsupportedExtension(t *testing.T) {
	if _, err := Load(writeConfig(t, "config.toml", validYAML)); err == nil {
		t.Error("expected an error for unsupported extension")
	}
}

func TestValidateErrors(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(string) string
		wantErr string
	}{
		{
			"no trades",
			func(s string) string {
				start := strings.Index(s, "trades:")
				end := strings.Index(s, "collect_button:")
				return s[:start] + s[end:]
			},
			"at least one trade",
		},
		{
			"duplicate names",
			func(s string) string { return strings.Replace(s, "- region:", "- name: alpha\n    region:", 1) },
			"duplicate trade entry name",
		},
		{
			"no ranges",
			func(s string) string {
				start := strings.Index(s, "hsv_ranges:")
				end := strings.Index(s, "templates:")
				return s[:start] + s[end:]
			},
			"hsv_ranges",
		},
		{
			"unknown template reference",
			func(s string) string {
				return strings.Replace(s, "start_button: {x: 130, y: 260}",
					"start_button: {x: 130, y: 260}\n    start_template: no_such", 1)
			},
			"not defined",
		},
		{
			"hue out of bounds",
			func(s string) string { return strings.Replace(s, "hue_high: 360", "hue_high: 400", 1) },
			"hue bounds",
		},
		{
			"zero size region",
			func(s string) string {
				return strings.Replace(s, "width: 60, height: 40}\n    start_button: {x: 130, y: 260}", "width: 0, height: 40}\n    start_button: {x: 130, y: 260}", 1)
			},
			"region",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, "config.yaml", tc.mutate(validYAML)))
			if err == nil {
				t.Fatal("expected a validation error")
			}
			if !strings.Contains(err.Error(), tc.wantErr) {
				t.Errorf("error %q does not mention %q", err, tc.wantErr)
			}
		})
	}
}

func TestReferenceConfigsResolveRelativePaths(t *testing.T) {
	path := writeConfig(t, "config.yaml", validYAML)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	refs := cfg.ReferenceConfigs()
	if len(refs) != 1 {
		t.Fatalf("expected one reference, got %d", len(refs))
	}
	want := filepath.Join(filepath.Dir(path), "images", "start.png")
	if refs[0].Path != want {
		t.Errorf("expected resolved path %q, got %q", want, refs[0].Path)
	}
}

func TestApplyUserSettings(t *testing.T) {
	cfg, err := Load(writeConfig(t, "config.yaml", validYAML))
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	ini := writeConfig(t, "Settings.ini", `
[UserSettings]
pauseHotkey = f7
useWin32Clicks = true
scanIntervalMs = 250
logLevel = DEBUG
`)
	if err := ApplyUserSettings(cfg, ini); err != nil {
		t.Fatalf("overlay failed: %v", err)
	}

	if cfg.Hotkeys.PauseResume != "f7" {
		t.Errorf("pause hotkey: got %q", cfg.Hotkeys.PauseResume)
	}
	if cfg.Hotkeys.Shutdown != "f10" {
		t.Errorf("shutdown hotkey should keep its document value, got %q", cfg.Hotkeys.Shutdown)
	}
	if !cfg.Clicks.UseWin32 {
		t.Error("useWin32Clicks overlay not applied")
	}
	if got := cfg.Timing.ScanIntervalDuration(); got != 250*time.Millisecond {
		t.Errorf("scan interval overlay: got %v", got)
	}
	if got := UserLogLevel(ini, "INFO"); got != "DEBUG" {
		t.Errorf("log level overlay: got %q", got)
	}
}

func TestApplyUserSettingsMissingFile(t *testing.T) {
	cfg, err := Load(writeConfig(t, "config.yaml", validYAML))
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if err := ApplyUserSettings(cfg, filepath.Join(t.TempDir(), "Settings.ini")); err != nil {
		t.Errorf("missing settings file should not be an error: %v", err)
	}
	if got := UserLogLevel(filepath.Join(t.TempDir(), "Settings.ini"), "INFO"); got != "INFO" {
		t.Errorf("missing settings should fall back, got %q", got)
	}
}

package config

import (
	"fmt"
	"path/filepath"
	"time"

	"kestrelworks.com/trade-sentry-go/internal/cv"
)

// TradeEntry is one configured watch target: the region to scan, the start
// button to click on a match, and optional template confirmation. Immutable
// after load.
type TradeEntry struct {
	Name              string    `yaml:"name" json:"name"`
	Region            cv.Region `yaml:"region" json:"region"`
	StartButton       cv.Point  `yaml:"start_button" json:"start_button"`
	StartTemplate     string    `yaml:"start_template,omitempty" json:"start_template,omitempty"`
	StartGrayTemplate string    `yaml:"start_gray_template,omitempty" json:"start_gray_template,omitempty"`
	RedRatioThreshold float64   `yaml:"red_ratio_threshold,omitempty" json:"red_ratio_threshold,omitempty"`
}

// Spec converts the entry to the detector's form.
func (t TradeEntry) Spec() cv.EntrySpec {
	return cv.EntrySpec{
		Name:              t.Name,
		Region:            t.Region,
		StartButton:       t.StartButton,
		StartTemplate:     t.StartTemplate,
		StartGrayTemplate: t.StartGrayTemplate,
		RedRatioThreshold: t.RedRatioThreshold,
	}
}

// TemplateEntry points at a reference image on disk.
type TemplateEntry struct {
	Path      string  `yaml:"path" json:"path"`
	Threshold float64 `yaml:"threshold" json:"threshold"`
}

// TimingConfig holds all loop timing knobs, in seconds.
type TimingConfig struct {
	ScanInterval    float64 `yaml:"scan_interval" json:"scan_interval"`
	Cooldown        float64 `yaml:"cooldown" json:"cooldown"`
	PostClickDelay  float64 `yaml:"post_click_delay" json:"post_click_delay"`
	CollectInterval float64 `yaml:"collect_interval" json:"collect_interval"`
	RefreshInterval float64 `yaml:"refresh_interval" json:"refresh_interval"`
}

// ScanIntervalDuration returns the scan interval with the minimum floor
// applied.
func (t TimingConfig) ScanIntervalDuration() time.Duration {
	return secondsToDuration(t.ScanInterval, 50*time.Millisecond)
}

// CooldownDuration returns the per-entry cooldown.
func (t TimingConfig) CooldownDuration() time.Duration {
	return secondsToDuration(t.Cooldown, 0)
}

// PostClickDelayDuration returns the settle time after a click.
func (t TimingConfig) PostClickDelayDuration() time.Duration {
	return secondsToDuration(t.PostClickDelay, 0)
}

// CollectIntervalDuration returns the collect button interval.
func (t TimingConfig) CollectIntervalDuration() time.Duration {
	return secondsToDuration(t.CollectInterval, 0)
}

// RefreshIntervalDuration returns the refresh staleness window.
func (t TimingConfig) RefreshIntervalDuration() time.Duration {
	return secondsToDuration(t.RefreshInterval, 0)
}

func secondsToDuration(seconds float64, floor time.Duration) time.Duration {
	d := time.Duration(seconds * float64(time.Second))
	if d < floor {
		return floor
	}
	return d
}

// ClickConfig selects and tunes the actuation backend.
type ClickConfig struct {
	UseWin32           bool `yaml:"use_win32" json:"use_win32"`
	Win32PressDuration int  `yaml:"win32_press_duration_ms" json:"win32_press_duration_ms"`
	MoveCursorBack     bool `yaml:"move_cursor_back" json:"move_cursor_back"`
}

// HotkeyConfig names the global control keys.
type HotkeyConfig struct {
	PauseResume string `yaml:"pause_resume" json:"pause_resume"`
	Shutdown    string `yaml:"shutdown" json:"shutdown"`
}

// Config is the full configuration document. The automation core treats it
// as read-only after load.
type Config struct {
	Monitor       cv.Region                `yaml:"monitor" json:"monitor"`
	Trades        []TradeEntry             `yaml:"trades" json:"trades"`
	CollectButton cv.Point                 `yaml:"collect_button" json:"collect_button"`
	RefreshButton cv.Point                 `yaml:"refresh_button" json:"refresh_button"`
	HSVRanges     []cv.HSVRange            `yaml:"hsv_ranges" json:"hsv_ranges"`
	Templates     map[string]TemplateEntry `yaml:"templates,omitempty" json:"templates,omitempty"`
	Timing        TimingConfig             `yaml:"timing" json:"timing"`
	Clicks        ClickConfig              `yaml:"clicks" json:"clicks"`
	Hotkeys       HotkeyConfig             `yaml:"hotkeys" json:"hotkeys"`

	// RedRatioThreshold is the global default; entries may override it.
	RedRatioThreshold float64 `yaml:"red_ratio_threshold" json:"red_ratio_threshold"`

	// MaxCaptureFailures disables an entry after this many consecutive
	// capture errors.
	MaxCaptureFailures int `yaml:"max_capture_failures" json:"max_capture_failures"`

	baseDir string
}

// ReferenceConfigs converts the template table to the library's form, with
// relative paths resolved against the config file directory.
func (c *Config) ReferenceConfigs() []cv.ReferenceConfig {
	configs := make([]cv.ReferenceConfig, 0, len(c.Templates))
	for name, entry := range c.Templates {
		path := entry.Path
		if !filepath.IsAbs(path) {
			path = filepath.Join(c.baseDir, path)
		}
		configs = append(configs, cv.ReferenceConfig{
			Name:      name,
			Path:      path,
			Threshold: entry.Threshold,
		})
	}
	return configs
}

// applyDefaults fills unset fields after decoding.
func (c *Config) applyDefaults() {
	if c.RedRatioThreshold == 0 {
		c.RedRatioThreshold = 0.01
	}
	for i := range c.Trades {
		if c.Trades[i].Name == "" {
			c.Trades[i].Name = fmt.Sprintf("trade_%d", i+1)
		}
		if c.Trades[i].RedRatioThreshold == 0 {
			c.Trades[i].RedRatioThreshold = c.RedRatioThreshold
		}
	}
	for name, tmpl := range c.Templates {
		if tmpl.Threshold == 0 {
			tmpl.Threshold = 0.8
			c.Templates[name] = tmpl
		}
	}
	if c.Timing.ScanInterval == 0 {
		c.Timing.ScanInterval = 0.5
	}
	if c.Timing.Cooldown == 0 {
		c.Timing.Cooldown = 2.0
	}
	if c.Timing.PostClickDelay == 0 {
		c.Timing.PostClickDelay = 0.15
	}
	if c.Timing.CollectInterval == 0 {
		c.Timing.CollectInterval = 300
	}
	if c.Timing.RefreshInterval == 0 {
		c.Timing.RefreshInterval = 60
	}
	if c.Clicks.Win32PressDuration == 0 {
		c.Clicks.Win32PressDuration = 40
	}
	if c.Hotkeys.PauseResume == "" {
		c.Hotkeys.PauseResume = "f9"
	}
	if c.Hotkeys.Shutdown == "" {
		c.Hotkeys.Shutdown = "f10"
	}
	if c.MaxCaptureFailures == 0 {
		c.MaxCaptureFailures = 5
	}
}

// Validate checks the document for structural problems that would make the
// loop misbehave. Template files are not checked here; a missing file is an
// entry-level error reported at first use.
func (c *Config) Validate() error {
	if c.Monitor.Empty() {
		return fmt.Errorf("monitor region must have positive width and height")
	}
	if len(c.Trades) == 0 {
		return fmt.Errorf("at least one trade entry is required")
	}
	seen := make(map[string]bool, len(c.Trades))
	for _, trade := range c.Trades {
		if seen[trade.Name] {
			return fmt.Errorf("duplicate trade entry name %q", trade.Name)
		}
		seen[trade.Name] = true
		if trade.Region.Empty() {
			return fmt.Errorf("trade %q: region must have positive width and height", trade.Name)
		}
		if trade.RedRatioThreshold < 0 || trade.RedRatioThreshold > 1 {
			return fmt.Errorf("trade %q: red_ratio_threshold must be within [0,1]", trade.Name)
		}
		if trade.StartTemplate != "" {
			if _, ok := c.Templates[trade.StartTemplate]; !ok {
				return fmt.Errorf("trade %q: start_template %q not defined", trade.Name, trade.StartTemplate)
			}
		}
		if trade.StartGrayTemplate != "" {
			if _, ok := c.Templates[trade.StartGrayTemplate]; !ok {
				return fmt.Errorf("trade %q: start_gray_template %q not defined", trade.Name, trade.StartGrayTemplate)
			}
		}
	}
	if len(c.HSVRanges) == 0 {
		return fmt.Errorf("hsv_ranges must contain at least one range")
	}
	for i, hr := range c.HSVRanges {
		if hr.HueLow > hr.HueHigh || hr.HueLow < 0 || hr.HueHigh > 360 {
			return fmt.Errorf("hsv_ranges[%d]: hue bounds must satisfy 0 <= low <= high <= 360", i)
		}
		if hr.SatLow > hr.SatHigh || hr.SatLow < 0 || hr.SatHigh > 1 {
			return fmt.Errorf("hsv_ranges[%d]: saturation bounds must satisfy 0 <= low <= high <= 1", i)
		}
		if hr.ValLow > hr.ValHigh || hr.ValLow < 0 || hr.ValHigh > 1 {
			return fmt.Errorf("hsv_ranges[%d]: value bounds must satisfy 0 <= low <= high <= 1", i)
		}
	}
	for name, tmpl := range c.Templates {
		if tmpl.Path == "" {
			return fmt.Errorf("template %q requires a path", name)
		}
		if tmpl.Threshold < 0 || tmpl.Threshold > 1 {
			return fmt.Errorf("template %q: threshold must be within [0,1]", name)
		}
	}
	if c.Timing.ScanInterval < 0 || c.Timing.Cooldown < 0 || c.Timing.PostClickDelay < 0 {
		return fmt.Errorf("timing values must be non-negative")
	}
	return nil
}

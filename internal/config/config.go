// Package config loads and validates the daemon configuration from
// ~/.config/pointertile/config.yaml.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// HotkeysConfig binds global hotkeys for runtime toggles. Empty strings
// disable the binding.
type HotkeysConfig struct {
	// ToggleShowTouches flips touch spot rendering, e.g. "Mod4-Mod1-t".
	ToggleShowTouches string `yaml:"toggle_show_touches,omitempty"`
	// ToggleStylusIcon flips the hovering stylus icon.
	ToggleStylusIcon string `yaml:"toggle_stylus_icon,omitempty"`
}

// LoggingConfig controls daemon logging.
type LoggingConfig struct {
	// Level controls verbosity: debug, info, warn, error
	Level string `yaml:"level,omitempty"`
	// File is the log file path; empty logs to stderr.
	File string `yaml:"file,omitempty"`
}

// Config is the daemon configuration.
type Config struct {
	// DefaultMouseDisplay is the output name (e.g. "eDP-1") that owns the
	// mouse cursor when a device has no display of its own. Empty picks
	// the primary output.
	DefaultMouseDisplay string `yaml:"default_mouse_display,omitempty"`

	// ShowTouches renders a spot for every touch contact.
	ShowTouches bool `yaml:"show_touches"`

	// StylusPointerIcon shows an icon while a stylus hovers.
	StylusPointerIcon bool `yaml:"stylus_pointer_icon"`

	// FadeOnTyping hides the mouse cursor while the user types into a
	// text field.
	FadeOnTyping *bool `yaml:"fade_on_typing,omitempty"`

	// SensitiveWindowClasses lists WM_CLASS values whose windows mark a
	// display privacy sensitive: pointer presentations on such displays
	// are excluded from screen captures.
	SensitiveWindowClasses []string `yaml:"sensitive_window_classes"`

	// PollIntervalMS is how often display topology is re-read, in
	// milliseconds.
	PollIntervalMS int `yaml:"poll_interval_ms"`

	Hotkeys    HotkeysConfig `yaml:"hotkeys,omitempty"`
	Logging    LoggingConfig `yaml:"logging,omitempty"`
	Display    string        `yaml:"display,omitempty"`
	XAuthority string        `yaml:"xauthority,omitempty"`
}

// FadeOnTypingEnabled returns the effective fade-on-typing setting
// (default true).
func (c *Config) FadeOnTypingEnabled() bool {
	if c.FadeOnTyping == nil {
		return true
	}
	return *c.FadeOnTyping
}

func DefaultConfig() *Config {
	return &Config{
		ShowTouches:       false,
		StylusPointerIcon: false,
		SensitiveWindowClasses: []string{
			"KeePassXC",
			"Bitwarden",
			"1Password",
		},
		PollIntervalMS: 2000,
		Hotkeys: HotkeysConfig{
			ToggleShowTouches: "Mod4-Mod1-t",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

type ValidationError struct {
	Path string
	Err  error
}

func (e *ValidationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("config: %s: %v", e.Path, e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }

func (c *Config) Validate() error {
	if c.PollIntervalMS < 100 {
		return &ValidationError{Path: "poll_interval_ms", Err: fmt.Errorf("poll_interval_ms must be >= 100")}
	}
	switch c.Logging.Level {
	case "", "debug", "info", "warn", "warning", "error":
	default:
		return &ValidationError{Path: "logging.level", Err: fmt.Errorf("level must be one of: debug, info, warn, error")}
	}
	for i, class := range c.SensitiveWindowClasses {
		if class == "" {
			return &ValidationError{Path: fmt.Sprintf("sensitive_window_classes[%d]", i), Err: fmt.Errorf("class name must not be empty")}
		}
	}
	return nil
}

func DefaultConfigPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".config", "pointertile", "config.yaml"), nil
}

// Load reads the configuration from the standard location. A missing file
// yields the defaults.
func Load() (*Config, error) {
	path, err := DefaultConfigPath()
	if err != nil {
		return nil, err
	}
	return LoadFromPath(path)
}

// LoadFromPath reads the configuration from an explicit path.
func LoadFromPath(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the configuration to the standard location.
func (c *Config) Save() error {
	if err := c.Validate(); err != nil {
		return err
	}

	path, err := DefaultConfigPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

package config

import (
	"encoding/json"
	"fmt"
	"os"
	"runtime"
	"strings"
	"time"
)

// windowsShell drops PSReadLine because its line editing relies on escape
// sequences the decoder does not interpret.
const windowsShell = `powershell.exe -NoLogo -NoProfile -NoExit -Command "Remove-Module PSReadLine -ErrorAction SilentlyContinue"`

const (
	defaultScrollLines      = 3
	defaultLivenessInterval = 500 * time.Millisecond
)

// KeyMapConfig holds user overrides for keybindings.
type KeyMapConfig struct {
	Bindings map[string][]string `json:"bindings,omitempty"`
}

// BindingFor returns the configured keys for an action, if present.
func (k KeyMapConfig) BindingFor(action string) ([]string, bool) {
	if len(k.Bindings) == 0 {
		return nil, false
	}
	if keys, ok := k.Bindings[action]; ok {
		return keys, true
	}
	if keys, ok := k.Bindings[strings.ToLower(action)]; ok {
		return keys, true
	}
	return nil, false
}

// Config holds the application configuration
type Config struct {
	Paths            *Paths
	Shell            string
	LogLevel         string
	ScrollLines      int  // rows moved per wheel notch or scroll key
	CursorBlink      bool // blink the cursor on the live view
	LivenessInterval time.Duration
	KeyMap           KeyMapConfig
}

// DefaultShell returns the command line launched when none is configured.
func DefaultShell() string {
	if runtime.GOOS == "windows" {
		return windowsShell
	}
	if sh := os.Getenv("SHELL"); sh != "" {
		return sh
	}
	return "/bin/sh"
}

// DefaultConfig returns the default configuration
func DefaultConfig() (*Config, error) {
	paths, err := DefaultPaths()
	if err != nil {
		return nil, err
	}
	return defaultConfigAt(paths), nil
}

func defaultConfigAt(paths *Paths) *Config {
	return &Config{
		Paths:            paths,
		Shell:            DefaultShell(),
		LogLevel:         "info",
		ScrollLines:      defaultScrollLines,
		CursorBlink:      true,
		LivenessInterval: defaultLivenessInterval,
		KeyMap:           KeyMapConfig{},
	}
}

// fileConfig is the on-disk shape. Pointer fields distinguish "unset" from
// zero values.
type fileConfig struct {
	Shell              *string      `json:"shell"`
	LogLevel           *string      `json:"log_level"`
	ScrollLines        *int         `json:"scroll_lines"`
	CursorBlink        *bool        `json:"cursor_blink"`
	LivenessIntervalMs *int         `json:"liveness_interval_ms"`
	KeyMap             KeyMapConfig `json:"keymap,omitempty"`
}

// Load loads config overrides from ~/.ring0/config.json if present.
func Load() (*Config, error) {
	paths, err := DefaultPaths()
	if err != nil {
		return nil, err
	}
	return LoadFrom(paths)
}

// LoadFrom applies the overrides in paths.ConfigPath to the defaults.
func LoadFrom(paths *Paths) (*Config, error) {
	cfg := defaultConfigAt(paths)

	data, err := os.ReadFile(paths.ConfigPath)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}
	if err := cfg.apply(data); err != nil {
		return nil, fmt.Errorf("parse %s: %w", paths.ConfigPath, err)
	}
	return cfg, nil
}

func (c *Config) apply(data []byte) error {
	var user fileConfig
	if err := json.Unmarshal(data, &user); err != nil {
		return err
	}
	if user.Shell != nil && strings.TrimSpace(*user.Shell) != "" {
		c.Shell = strings.TrimSpace(*user.Shell)
	}
	if user.LogLevel != nil {
		c.LogLevel = *user.LogLevel
	}
	if user.ScrollLines != nil && *user.ScrollLines > 0 {
		c.ScrollLines = *user.ScrollLines
	}
	if user.CursorBlink != nil {
		c.CursorBlink = *user.CursorBlink
	}
	if user.LivenessIntervalMs != nil && *user.LivenessIntervalMs > 0 {
		c.LivenessInterval = time.Duration(*user.LivenessIntervalMs) * time.Millisecond
	}
	if len(user.KeyMap.Bindings) > 0 {
		c.KeyMap = user.KeyMap
	}
	return nil
}

// Save writes the persisted subset of c to its config file, keeping keys it
// does not know about.
func (c *Config) Save() error {
	if c == nil || c.Paths == nil {
		return nil
	}
	if err := os.MkdirAll(c.Paths.Home, 0o755); err != nil {
		return err
	}

	payload := map[string]any{}
	if existing, err := os.ReadFile(c.Paths.ConfigPath); err == nil {
		_ = json.Unmarshal(existing, &payload)
	}
	payload["shell"] = c.Shell
	payload["log_level"] = c.LogLevel
	payload["scroll_lines"] = c.ScrollLines
	payload["cursor_blink"] = c.CursorBlink
	payload["liveness_interval_ms"] = c.LivenessInterval.Milliseconds()
	if len(c.KeyMap.Bindings) > 0 {
		payload["keymap"] = c.KeyMap
	}

	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(c.Paths.ConfigPath, data, 0o644)
}

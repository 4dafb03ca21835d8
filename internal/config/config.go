package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gobwas/glob"
	"gopkg.in/yaml.v3"
)

// Hotkey action names recognized in the hotkeys map.
const (
	ActionSlot0      = "slot0"
	ActionSlot1      = "slot1"
	ActionSlot2      = "slot2"
	ActionSlot3      = "slot3"
	ActionAll        = "all"
	ActionToggleMode = "toggle-mode"
	ActionUndo       = "undo"
	ActionOpenFolder = "open-folder"
	ActionQuit       = "quit"
)

// Config represents the application configuration structure.
// It covers session state, hotkey bindings, thumbnail preparation,
// and filename filters for folder scanning.
type Config struct {
	Session struct {
		LastFolder   string `yaml:"last_folder"`    // Folder opened most recently
		DefaultMode  string `yaml:"default_mode"`   // Primary hotkey action: delete or keep
		MaxUndoDepth int    `yaml:"max_undo_depth"` // Bounded undo capacity
	} `yaml:"session"`
	Hotkeys    map[string]string `yaml:"hotkeys"` // action name -> key
	Thumbnails struct {
		Size int `yaml:"size"` // Square thumbnail edge in pixels
	} `yaml:"thumbnails"`
	Filters struct {
		Include []string `yaml:"include"` // Filename globs to include (empty = all images)
		Exclude []string `yaml:"exclude"` // Filename globs to exclude
	} `yaml:"filters"`
	Settings struct {
		WatchFolder bool `yaml:"watch_folder"` // Pick up images added mid-session
		ConfirmBulk bool `yaml:"confirm_bulk"` // Ask before acting on all four slots
		Debug       bool `yaml:"debug"`        // Debug logging
	} `yaml:"settings"`

	path string // where the config was loaded from, for Save
}

// LoadConfig loads configuration from the default location
// (~/.config/culld/config.yaml).
func LoadConfig() (*Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}

	configPath := filepath.Join(home, ".config", "culld", "config.yaml")
	return LoadConfigFile(configPath)
}

// LoadConfigFile loads configuration from a specific file path.
// If the file doesn't exist, returns default configuration.
func LoadConfigFile(path string) (*Config, error) {
	cfg := defaultConfig()
	cfg.path = path

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil // Return defaults if file doesn't exist
		}
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	// Unmarshal into a temporary config to preserve defaults for unset fields
	var tempCfg Config
	if err := yaml.Unmarshal(data, &tempCfg); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	if tempCfg.Session.LastFolder != "" {
		cfg.Session.LastFolder = tempCfg.Session.LastFolder
	}
	if tempCfg.Session.DefaultMode != "" {
		cfg.Session.DefaultMode = tempCfg.Session.DefaultMode
	}
	if tempCfg.Session.MaxUndoDepth > 0 {
		cfg.Session.MaxUndoDepth = tempCfg.Session.MaxUndoDepth
	}
	if tempCfg.Thumbnails.Size > 0 {
		cfg.Thumbnails.Size = tempCfg.Thumbnails.Size
	}

	// A partial hotkeys map overrides only the named actions
	for action, key := range tempCfg.Hotkeys {
		cfg.Hotkeys[action] = key
	}

	if len(tempCfg.Filters.Include) > 0 {
		cfg.Filters.Include = tempCfg.Filters.Include
	}
	if len(tempCfg.Filters.Exclude) > 0 {
		cfg.Filters.Exclude = tempCfg.Filters.Exclude
	}

	// Booleans need presence detection: a file that omits a settings key
	// must keep the default, not zero it
	var fileSettings struct {
		Settings struct {
			WatchFolder *bool `yaml:"watch_folder"`
			ConfirmBulk *bool `yaml:"confirm_bulk"`
			Debug       *bool `yaml:"debug"`
		} `yaml:"settings"`
	}
	if err := yaml.Unmarshal(data, &fileSettings); err == nil {
		if fileSettings.Settings.WatchFolder != nil {
			cfg.Settings.WatchFolder = *fileSettings.Settings.WatchFolder
		}
		if fileSettings.Settings.ConfirmBulk != nil {
			cfg.Settings.ConfirmBulk = *fileSettings.Settings.ConfirmBulk
		}
		if fileSettings.Settings.Debug != nil {
			cfg.Settings.Debug = *fileSettings.Settings.Debug
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// defaultConfig returns the default configuration with safe defaults.
func defaultConfig() *Config {
	cfg := &Config{}

	cfg.Session.LastFolder = ""
	cfg.Session.DefaultMode = "delete"
	cfg.Session.MaxUndoDepth = 10

	cfg.Hotkeys = map[string]string{
		ActionSlot0:      "u",
		ActionSlot1:      "i",
		ActionSlot2:      "j",
		ActionSlot3:      "k",
		ActionAll:        "m",
		ActionToggleMode: "t",
		ActionUndo:       "z",
		ActionOpenFolder: "o",
		ActionQuit:       "q",
	}

	cfg.Thumbnails.Size = 256

	cfg.Filters.Include = []string{}
	cfg.Filters.Exclude = []string{}

	cfg.Settings.WatchFolder = true
	cfg.Settings.ConfirmBulk = false
	cfg.Settings.Debug = false

	return cfg
}

// New creates a new configuration instance with default values.
func New() *Config {
	return defaultConfig()
}

// Save writes the configuration back to the file it was loaded from,
// or the default location when it was built in memory.
func (c *Config) Save() error {
	path := c.path
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return err
		}
		path = filepath.Join(home, ".config", "culld", "config.yaml")
	}
	return SaveConfig(c, path)
}

// SaveConfig saves the configuration to the specified file.
// It creates parent directories if they don't exist.
func SaveConfig(cfg *Config, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// knownActions lists every action a hotkey may be bound to.
var knownActions = []string{
	ActionSlot0, ActionSlot1, ActionSlot2, ActionSlot3,
	ActionAll, ActionToggleMode, ActionUndo, ActionOpenFolder, ActionQuit,
}

// Validate checks if the configuration is valid.
// Returns error if any settings are invalid.
func (c *Config) Validate() error {
	if c == nil {
		return fmt.Errorf("nil config")
	}

	if c.Session.DefaultMode != "delete" && c.Session.DefaultMode != "keep" {
		return fmt.Errorf("invalid default_mode: %s", c.Session.DefaultMode)
	}

	if c.Session.MaxUndoDepth < 1 {
		return fmt.Errorf("max_undo_depth must be >= 1")
	}

	if c.Thumbnails.Size < 16 {
		return fmt.Errorf("thumbnail size must be >= 16 pixels")
	}

	known := make(map[string]bool, len(knownActions))
	for _, a := range knownActions {
		known[a] = true
	}
	seen := make(map[string]string)
	for action, key := range c.Hotkeys {
		if !known[action] {
			return fmt.Errorf("unknown hotkey action: %s", action)
		}
		if len([]rune(key)) != 1 {
			return fmt.Errorf("hotkey for %s must be a single character, got %q", action, key)
		}
		if other, dup := seen[key]; dup {
			return fmt.Errorf("hotkey %q bound to both %s and %s", key, other, action)
		}
		seen[key] = action
	}

	for _, pattern := range append(append([]string{}, c.Filters.Include...), c.Filters.Exclude...) {
		if _, err := glob.Compile(pattern); err != nil {
			return fmt.Errorf("invalid filter pattern %q: %w", pattern, err)
		}
	}

	return nil
}

// Key returns the bound key for an action, falling back to the default
// binding when the action is missing from the map.
func (c *Config) Key(action string) string {
	if key, ok := c.Hotkeys[action]; ok {
		return key
	}
	return defaultConfig().Hotkeys[action]
}

// NewTestConfig creates a configuration instance for testing purposes.
func NewTestConfig() *Config {
	cfg := defaultConfig()
	cfg.Session.MaxUndoDepth = 3
	cfg.Settings.WatchFolder = false
	return cfg
}

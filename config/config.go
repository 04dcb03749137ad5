package config

import (
	"errors"
	"fmt"
	"image/color"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/javanhut/ravenvt/grid"
	"github.com/javanhut/ravenvt/shell"
)

// ShellConfig holds shell-specific settings
type ShellConfig struct {
	// Path to shell binary (empty = system default)
	Path string `toml:"path"`
	// Command run instead of an interactive shell (empty = interactive)
	Command string `toml:"command"`
	// Dir is the starting directory (empty = home)
	Dir string `toml:"dir"`
	// AdditionalEnv extra environment variables
	AdditionalEnv map[string]string `toml:"env"`
}

// TerminalConfig holds screen buffer settings
type TerminalConfig struct {
	Cols       int `toml:"cols"`
	Rows       int `toml:"rows"`
	Scrollback int `toml:"scrollback"`
}

// ColorsConfig overrides palette entries with hex colors such as "#1e1e2e"
type ColorsConfig struct {
	Foreground string            `toml:"foreground"`
	Background string            `toml:"background"`
	ANSI       map[string]string `toml:"ansi"` // keyed by index "0".."15"
}

// Config holds the terminal configuration
type Config struct {
	Shell    ShellConfig    `toml:"shell"`
	Terminal TerminalConfig `toml:"terminal"`
	Theme    string         `toml:"theme"`
	Colors   ColorsConfig   `toml:"colors"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Shell: ShellConfig{
			AdditionalEnv: map[string]string{},
		},
		Terminal: TerminalConfig{
			Cols:       80,
			Rows:       24,
			Scrollback: grid.MaxScrollback,
		},
		Theme: "raven-blue",
	}
}

// GetConfigDir returns the config directory path
func GetConfigDir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".config/ravenvt"
	}
	return filepath.Join(homeDir, ".config", "ravenvt")
}

// GetConfigPath returns the path to the config file
func GetConfigPath() string {
	return filepath.Join(GetConfigDir(), "config.toml")
}

// Load loads the configuration from the default path, writing the defaults
// there first if no file exists.
func Load() (*Config, error) {
	configPath := GetConfigPath()

	// Check if config file exists
	if _, err := os.Stat(configPath); errors.Is(err, os.ErrNotExist) {
		// Create default config
		cfg := DefaultConfig()
		if err := cfg.SaveFile(configPath); err != nil {
			return nil, err
		}
		return cfg, nil
	}

	return LoadFile(configPath)
}

// LoadFile loads the configuration from path. Keys missing from the file
// keep their default values.
func LoadFile(path string) (*Config, error) {
	cfg := DefaultConfig()
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks values that cannot be clamped sensibly
func (c *Config) Validate() error {
	if c.Terminal.Cols < 0 || c.Terminal.Rows < 0 {
		return fmt.Errorf("terminal size %dx%d: %w", c.Terminal.Cols, c.Terminal.Rows, ErrInvalidValue)
	}
	if c.Terminal.Scrollback < 0 {
		return fmt.Errorf("scrollback %d: %w", c.Terminal.Scrollback, ErrInvalidValue)
	}
	if !IsKnownTheme(c.Theme) {
		return fmt.Errorf("theme %q: %w", c.Theme, ErrInvalidValue)
	}
	if _, err := c.Palette(); err != nil {
		return err
	}
	return nil
}

// Save saves the configuration to the default path
func (c *Config) Save() error {
	return c.SaveFile(GetConfigPath())
}

// SaveFile writes the configuration to path, creating its directory
func (c *Config) SaveFile(path string) error {
	// Ensure config directory exists
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	// Write config file
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	encoder := toml.NewEncoder(f)
	return encoder.Encode(c)
}

// Palette builds the color palette for the configured theme with any hex
// overrides applied.
func (c *Config) Palette() (grid.Palette, error) {
	p := grid.PaletteByName(c.Theme)

	if c.Colors.Foreground != "" {
		fg, err := parseHex(c.Colors.Foreground)
		if err != nil {
			return p, fmt.Errorf("colors.foreground: %w", err)
		}
		p.Foreground = fg
	}
	if c.Colors.Background != "" {
		bg, err := parseHex(c.Colors.Background)
		if err != nil {
			return p, fmt.Errorf("colors.background: %w", err)
		}
		p.Background = bg
	}
	for key, value := range c.Colors.ANSI {
		var index int
		if _, err := fmt.Sscanf(key, "%d", &index); err != nil || index < 0 || index > 15 {
			return p, fmt.Errorf("colors.ansi key %q: %w", key, ErrInvalidValue)
		}
		rgba, err := parseHex(value)
		if err != nil {
			return p, fmt.Errorf("colors.ansi.%s: %w", key, err)
		}
		p.ANSI[index] = rgba
	}
	return p, nil
}

// ShellOptions returns the options for starting the child process
func (c *Config) ShellOptions() shell.Options {
	return shell.Options{
		Shell: c.Shell.Path,
		Env:   c.Shell.AdditionalEnv,
		Dir:   c.Shell.Dir,
	}
}

func parseHex(s string) (color.RGBA, error) {
	c, err := colorful.Hex(s)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("%q: %w", s, ErrInvalidValue)
	}
	r, g, b := c.RGB255()
	return color.RGBA{r, g, b, 0xff}, nil
}

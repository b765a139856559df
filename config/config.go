// Package config loads wtmux configuration from
// ~/.wtmux/config.toml (or $WTMUX_CONFIG_DIR/config.toml) and carries
// the built-in color schemes.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// DefaultScrollback is the primary-grid scrollback cap.
const DefaultScrollback = 10000

// Config is the top-level configuration.
type Config struct {
	Shell       string `toml:"shell"`
	Codepage    int    `toml:"codepage"`
	PrefixKey   string `toml:"prefix_key"`
	ColorScheme string `toml:"color_scheme"`

	TabBar     TabBarConfig     `toml:"tab_bar"`
	StatusBar  StatusBarConfig  `toml:"status_bar"`
	Pane       PaneConfig       `toml:"pane"`
	Cursor     CursorConfig     `toml:"cursor"`
	Scrollback ScrollbackConfig `toml:"scrollback"`
}

// TabBarConfig controls the tab bar row.
type TabBarConfig struct {
	Visible bool `toml:"visible"`
}

// StatusBarConfig controls the status bar composition.
type StatusBarConfig struct {
	Visible  bool `toml:"visible"`
	ShowTime bool `toml:"show_time"`
}

// PaneConfig controls pane framing.
type PaneConfig struct {
	BorderStyle string `toml:"border_style"` // single, double, rounded, none
}

// CursorConfig is the default cursor appearance.
type CursorConfig struct {
	Shape string `toml:"shape"` // block, underline, bar
	Blink bool   `toml:"blink"`
}

// ScrollbackConfig caps the primary-grid scrollback.
type ScrollbackConfig struct {
	Lines int `toml:"lines"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Codepage:    65001,
		PrefixKey:   "C-b",
		ColorScheme: "default",
		TabBar:      TabBarConfig{Visible: true},
		StatusBar:   StatusBarConfig{Visible: true, ShowTime: true},
		Pane:        PaneConfig{BorderStyle: "single"},
		Cursor:      CursorConfig{Shape: "block", Blink: true},
		Scrollback:  ScrollbackConfig{Lines: DefaultScrollback},
	}
}

// Dir resolves the configuration directory: $WTMUX_CONFIG_DIR when set,
// else ~/.wtmux. Only the path is resolved; the directory is not
// created here.
func Dir() string {
	if dir := os.Getenv("WTMUX_CONFIG_DIR"); dir != "" {
		return dir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".wtmux"
	}
	return filepath.Join(home, ".wtmux")
}

// Path returns the config file location under the given directory.
func Path(dir string) string {
	return filepath.Join(dir, "config.toml")
}

// Load reads the config file, applying defaults first so absent keys
// keep their built-in values. A missing file is not an error; an
// invalid value for a recognized key is.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config file %s: %w", path, err)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Validate rejects invalid values for recognized keys.
func (c *Config) Validate() error {
	if c.Codepage != 65001 && c.Codepage != 932 {
		return fmt.Errorf("codepage must be 65001 or 932, got %d", c.Codepage)
	}
	if _, err := c.PrefixByte(); err != nil {
		return err
	}
	switch c.Pane.BorderStyle {
	case "single", "double", "rounded", "none":
	default:
		return fmt.Errorf("unknown border_style %q", c.Pane.BorderStyle)
	}
	switch c.Cursor.Shape {
	case "block", "underline", "bar":
	default:
		return fmt.Errorf("unknown cursor shape %q", c.Cursor.Shape)
	}
	if c.Scrollback.Lines < 0 {
		return fmt.Errorf("scrollback lines must be non-negative, got %d", c.Scrollback.Lines)
	}
	return nil
}

// PrefixByte parses the prefix key spec ("C-b", "C-a") into the
// control byte it maps to.
func (c *Config) PrefixByte() (byte, error) {
	spec := strings.ToLower(c.PrefixKey)
	if !strings.HasPrefix(spec, "c-") || len(spec) != 3 {
		return 0, fmt.Errorf("prefix_key must be of the form \"C-x\", got %q", c.PrefixKey)
	}
	ch := spec[2]
	if ch < 'a' || ch > 'z' {
		return 0, fmt.Errorf("prefix_key letter must be a-z, got %q", c.PrefixKey)
	}
	return ch - 'a' + 1, nil
}

// PrefixLetter returns the plain letter of the prefix key, used for
// the literal prefix-prefix chord.
func (c *Config) PrefixLetter() byte {
	spec := strings.ToLower(c.PrefixKey)
	if len(spec) == 3 {
		return spec[2]
	}
	return 'b'
}

package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "config.toml"))
	if err != nil {
		t.Fatalf("missing file should not error: %v", err)
	}
	if cfg.Codepage != 65001 || cfg.PrefixKey != "C-b" || cfg.ColorScheme != "default" {
		t.Errorf("defaults wrong: %+v", cfg)
	}
	if !cfg.TabBar.Visible || !cfg.StatusBar.Visible || !cfg.StatusBar.ShowTime {
		t.Error("bars should default to visible")
	}
	if cfg.Scrollback.Lines != DefaultScrollback {
		t.Errorf("scrollback default = %d, want %d", cfg.Scrollback.Lines, DefaultScrollback)
	}
}

func TestLoadFullConfig(t *testing.T) {
	path := writeConfig(t, `
shell = "pwsh"
codepage = 932
prefix_key = "C-a"
color_scheme = "nord"

[tab_bar]
visible = false

[status_bar]
visible = true
show_time = false

[pane]
border_style = "rounded"

[cursor]
shape = "bar"
blink = false

[scrollback]
lines = 5000
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Shell != "pwsh" || cfg.Codepage != 932 || cfg.ColorScheme != "nord" {
		t.Errorf("top-level keys wrong: %+v", cfg)
	}
	if cfg.TabBar.Visible {
		t.Error("tab_bar.visible should be false")
	}
	if cfg.StatusBar.ShowTime {
		t.Error("status_bar.show_time should be false")
	}
	if cfg.Pane.BorderStyle != "rounded" || cfg.Cursor.Shape != "bar" || cfg.Cursor.Blink {
		t.Errorf("section keys wrong: %+v", cfg)
	}
	if cfg.Scrollback.Lines != 5000 {
		t.Errorf("scrollback = %d, want 5000", cfg.Scrollback.Lines)
	}
	b, err := cfg.PrefixByte()
	if err != nil || b != 0x01 {
		t.Errorf("prefix byte = %#x, want 0x01 for C-a", b)
	}
	if cfg.PrefixLetter() != 'a' {
		t.Errorf("prefix letter = %q, want 'a'", cfg.PrefixLetter())
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := []string{
		`codepage = 437`,
		`prefix_key = "B"`,
		"[pane]\nborder_style = \"dotted\"",
		"[cursor]\nshape = \"wedge\"",
		"[scrollback]\nlines = -1",
	}
	for _, body := range cases {
		if _, err := Load(writeConfig(t, body)); err == nil {
			t.Errorf("config %q should be rejected", body)
		}
	}
}

func TestLoadRejectsMalformedTOML(t *testing.T) {
	if _, err := Load(writeConfig(t, "shell = [unclosed")); err == nil {
		t.Error("malformed TOML should error")
	}
}

func TestSchemeByName(t *testing.T) {
	for _, name := range SchemeNames() {
		s := SchemeByName(name)
		if s.Name != name {
			t.Errorf("SchemeByName(%q).Name = %q", name, s.Name)
		}
	}
	if SchemeByName("no-such-theme").Name != "default" {
		t.Error("unknown scheme should fall back to default")
	}
	if SchemeByName("Tokyo_Night").Name != "tokyo-night" {
		t.Error("scheme lookup should normalize case and underscores")
	}
}

func TestDirPrefersEnvOverride(t *testing.T) {
	t.Setenv("WTMUX_CONFIG_DIR", "/tmp/custom-wtmux")
	if Dir() != "/tmp/custom-wtmux" {
		t.Errorf("Dir() = %q, want env override", Dir())
	}
}

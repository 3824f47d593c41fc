package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	homedir "github.com/mitchellh/go-homedir"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Logging.Level != "info" {
		t.Errorf("Level = %q, want info", cfg.Logging.Level)
	}
	if cfg.Output.Format != FormatYAML {
		t.Errorf("Format = %q, want %q", cfg.Output.Format, FormatYAML)
	}
	if cfg.Logging.File != "" {
		t.Errorf("File = %q, want empty", cfg.Logging.File)
	}
}

func TestLoadLayered_CLIOverridesEverything(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("logging:\n  level: debug\noutput:\n  format: json\n"), 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv(EnvFormat, "yaml")
	cli := CLIOverrides{LogLevel: "error", Format: FormatCommand}

	cfg, err := LoadLayered(cli, path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Output.Format != FormatCommand {
		t.Errorf("Format = %q, want CLI override", cfg.Output.Format)
	}
	if cfg.Logging.Level != "error" {
		t.Errorf("Level = %q, want CLI override", cfg.Logging.Level)
	}
}

func TestLoadLayered_EnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("logging:\n  level: debug\noutput:\n  format: json\n"), 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv(EnvFormat, FormatCommand)
	t.Setenv(EnvLogLevel, "")

	cfg, err := LoadLayered(CLIOverrides{}, path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Output.Format != FormatCommand {
		t.Errorf("Format = %q, want env override", cfg.Output.Format)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Level = %q, want file value", cfg.Logging.Level)
	}
}

func TestLoadLayered_DefaultsWhenEmpty(t *testing.T) {
	t.Setenv(EnvFormat, "")
	t.Setenv(EnvLogLevel, "")
	cfg, err := LoadLayered(CLIOverrides{}, "")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Output.Format != FormatYAML {
		t.Errorf("Format = %q, want yaml default", cfg.Output.Format)
	}
}

func TestLoadLayered_MalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("logging: [\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadLayered(CLIOverrides{}, path); err == nil {
		t.Error("expected parse error")
	}
}

func TestLoad_EmptyPathUsesDefaults(t *testing.T) {
	t.Setenv(EnvLogLevel, "warn")
	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Logging.Level != "warn" {
		t.Errorf("Level = %q, want env value", cfg.Logging.Level)
	}
}

func TestLoadLayered_ExplicitMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "absent.yaml")
	_, err := LoadLayered(CLIOverrides{}, path)
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("LoadLayered(%q) error = %v, want not-exist", path, err)
	}
}

func TestLoadLayered_DiscoveredFile(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("APPDATA", home)
	t.Setenv(EnvFormat, "")
	homedir.DisableCache = true
	t.Cleanup(func() { homedir.DisableCache = false })

	if got := Locate(); got != "" {
		t.Fatalf("Locate() = %q before any file exists", got)
	}
	cfg, err := LoadLayered(CLIOverrides{})
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Output.Format != FormatYAML {
		t.Errorf("Format = %q, want yaml default", cfg.Output.Format)
	}

	if err := WriteConfig(&Config{Logging: LoggingConfig{Level: "info"}, Output: OutputConfig{Format: FormatJSON}}, DefaultPath()); err != nil {
		t.Fatal(err)
	}
	if got := Locate(); got != DefaultPath() {
		t.Fatalf("Locate() = %q, want %q", got, DefaultPath())
	}
	cfg, err = LoadLayered(CLIOverrides{})
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Output.Format != FormatJSON {
		t.Errorf("Format = %q, want discovered file value", cfg.Output.Format)
	}
}

func TestWriteConfig_RoundTrip(t *testing.T) {
	t.Setenv(EnvFormat, "")
	t.Setenv(EnvLogLevel, "")
	t.Setenv(EnvLogFile, "")
	path := filepath.Join(t.TempDir(), "sub", "config.yaml")

	cfg := DefaultConfig()
	cfg.Output.Format = FormatJSON
	if err := WriteConfig(cfg, path); err != nil {
		t.Fatal(err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Output.Format != FormatJSON {
		t.Errorf("Format = %q, want json", loaded.Output.Format)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"command format", func(c *Config) { c.Output.Format = FormatCommand }, false},
		{"unknown format", func(c *Config) { c.Output.Format = "toml" }, true},
		{"unknown level", func(c *Config) { c.Logging.Level = "trace" }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

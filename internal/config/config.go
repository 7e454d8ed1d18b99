// Package config loads the optional osu-switcher YAML settings file.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	"github.com/OpenGG/osu-switcher/internal/switcher/storage"
)

const (
	// EnvConfig points at an explicit config file.
	EnvConfig = "OSU_SWITCHER_CONFIG"
	// EnvInstallDir overrides install_dir.
	EnvInstallDir = "OSU_SWITCHER_DIR"
	// EnvLogLevel overrides log_level.
	EnvLogLevel = "OSU_SWITCHER_LOG_LEVEL"

	appDir   = "osu-switcher"
	fileName = "config.yaml"
)

// Backups controls the snapshots taken before each swap.
type Backups struct {
	Enabled   bool   `yaml:"enabled"`
	Retention string `yaml:"retention"`
}

// Config is the user's switcher configuration.
type Config struct {
	// InstallDir is used when --osu is omitted.
	InstallDir string `yaml:"install_dir,omitempty"`
	// Servers are extra servers offered by the wizard.
	Servers []string `yaml:"servers,omitempty"`
	Backups Backups  `yaml:"backups"`
	// LaunchCommand prefixes the client command line outside Windows.
	LaunchCommand []string `yaml:"launch_command"`
	LogLevel      string   `yaml:"log_level,omitempty"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		Backups:       Backups{Enabled: true, Retention: "30d"},
		LaunchCommand: []string{"wine"},
		LogLevel:      "info",
	}
}

// Retention parses Backups.Retention.
func (c *Config) Retention() (time.Duration, error) {
	return ParseRetentionInterval(c.Backups.Retention)
}

// Level parses LogLevel. An empty level is info.
func (c *Config) Level() (slog.Level, error) {
	var level slog.Level
	if strings.TrimSpace(c.LogLevel) == "" {
		return slog.LevelInfo, nil
	}
	if err := level.UnmarshalText([]byte(strings.TrimSpace(c.LogLevel))); err != nil {
		return 0, fmt.Errorf("invalid log_level %q: %w", c.LogLevel, err)
	}
	return level, nil
}

// Validate checks values that would otherwise fail later.
func (c *Config) Validate() error {
	if _, err := c.Retention(); err != nil {
		return fmt.Errorf("backups.retention: %w", err)
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	for i, s := range c.Servers {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("servers[%d]: must not be empty", i)
		}
	}
	return nil
}

// Loader finds and reads the config file.
type Loader struct {
	storage *storage.Storage
	getenv  func(string) string
	home    func() (string, error)
}

// NewLoader creates a Loader reading the process environment.
func NewLoader(fs afero.Fs) *Loader {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	return &Loader{storage: storage.New(fs), getenv: os.Getenv, home: os.UserHomeDir}
}

// Candidates returns possible config file paths in priority order:
// $OSU_SWITCHER_CONFIG, $XDG_CONFIG_HOME/osu-switcher/config.yaml and
// ~/.config/osu-switcher/config.yaml.
func (l *Loader) Candidates() []string {
	var out []string
	if env := l.getenv(EnvConfig); env != "" {
		out = append(out, env)
	}
	if xdg := l.getenv("XDG_CONFIG_HOME"); xdg != "" {
		out = append(out, filepath.Join(xdg, appDir, fileName))
	}
	if home, _ := l.home(); home != "" {
		out = append(out, filepath.Join(home, ".config", appDir, fileName))
	}
	return out
}

// Load reads the first existing candidate and applies environment
// overrides. A missing file yields Default. The returned path is empty when
// no file was read.
func (l *Loader) Load() (*Config, string, error) {
	cfg := Default()
	path := ""
	for _, p := range l.Candidates() {
		data, err := l.storage.ReadFile(p)
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, p, fmt.Errorf("failed to read config %s: %w", p, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, p, fmt.Errorf("parse yaml %s: %w", p, err)
		}
		path = p
		break
	}

	if dir := l.getenv(EnvInstallDir); dir != "" {
		cfg.InstallDir = dir
	}
	if level := l.getenv(EnvLogLevel); level != "" {
		cfg.LogLevel = level
	}
	if err := cfg.Validate(); err != nil {
		if path == "" {
			return nil, path, fmt.Errorf("invalid configuration: %w", err)
		}
		return nil, path, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, path, nil
}

// Save writes cfg to path, or to the first candidate when path is empty.
func (l *Loader) Save(cfg *Config, path string) (string, error) {
	if path == "" {
		candidates := l.Candidates()
		if len(candidates) == 0 {
			return "", errors.New("no config location available")
		}
		path = candidates[0]
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return "", fmt.Errorf("encode config: %w", err)
	}
	if err := l.storage.WriteFileAtomic(path, data); err != nil {
		return "", fmt.Errorf("failed to write config %s: %w", path, err)
	}
	return path, nil
}

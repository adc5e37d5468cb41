// Package config loads the TOML configuration of the contacts command.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/titouanreal/contacts/daemon"
	"github.com/titouanreal/contacts/logging"
)

// EnvConfigPath overrides the default config file location.
const EnvConfigPath = "CONTACTS_CONFIG"

const (
	FormatText = "text"
	FormatJSON = "json"
)

// Config is the resolved configuration.
type Config struct {
	Target       daemon.Target
	Timeout      time.Duration
	PollInterval time.Duration
	LogLevel     string
	Format       string
}

type fileConfig struct {
	BusAddress   string `toml:"bus_address"`
	Service      string `toml:"service"`
	ObjectPath   string `toml:"object_path"`
	Interface    string `toml:"interface"`
	Timeout      string `toml:"timeout"`
	PollInterval string `toml:"poll_interval"`
	LogLevel     string `toml:"log_level"`
	Format       string `toml:"format"`
}

// Default returns the built-in configuration: the well-known daemon on the
// session bus, polled every two seconds.
func Default() Config {
	return Config{
		Target:       daemon.DefaultTarget(),
		Timeout:      5 * time.Second,
		PollInterval: 2 * time.Second,
		Format:       FormatText,
	}
}

// DefaultPath returns $CONTACTS_CONFIG, or contacts/config.toml under the
// user config directory.
func DefaultPath() string {
	if p := strings.TrimSpace(os.Getenv(EnvConfigPath)); p != "" {
		return p
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "contacts", "config.toml")
}

// Resolve loads path, or DefaultPath when path is empty. A missing default
// file yields Default(); a missing explicit file is an error.
func Resolve(path string) (Config, error) {
	if strings.TrimSpace(path) != "" {
		return Load(path)
	}
	path = DefaultPath()
	if path == "" {
		return Default(), nil
	}
	cfg, err := Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}
	return cfg, err
}

// Load reads a TOML file over Default(). Keys absent from the file keep their
// default values.
func Load(path string) (Config, error) {
	cfg := Default()

	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return Config{}, fmt.Errorf("load config %s: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return Config{}, fmt.Errorf("load config %s: unknown key %q", path, undecoded[0].String())
	}

	if meta.IsDefined("bus_address") {
		cfg.Target.Address = strings.TrimSpace(raw.BusAddress)
	}
	if meta.IsDefined("service") {
		cfg.Target.Service = strings.TrimSpace(raw.Service)
	}
	if meta.IsDefined("object_path") {
		cfg.Target.Path = strings.TrimSpace(raw.ObjectPath)
	}
	if meta.IsDefined("interface") {
		cfg.Target.Interface = strings.TrimSpace(raw.Interface)
	}
	if meta.IsDefined("timeout") {
		d, err := time.ParseDuration(strings.TrimSpace(raw.Timeout))
		if err != nil {
			return Config{}, fmt.Errorf("parse timeout: %w", err)
		}
		cfg.Timeout = d
	}
	if meta.IsDefined("poll_interval") {
		d, err := time.ParseDuration(strings.TrimSpace(raw.PollInterval))
		if err != nil {
			return Config{}, fmt.Errorf("parse poll_interval: %w", err)
		}
		cfg.PollInterval = d
	}
	if meta.IsDefined("log_level") {
		cfg.LogLevel = strings.TrimSpace(raw.LogLevel)
	}
	if meta.IsDefined("format") {
		cfg.Format = strings.ToLower(strings.TrimSpace(raw.Format))
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if err := c.Target.Validate(); err != nil {
		return err
	}
	if c.Timeout < 0 {
		return fmt.Errorf("timeout must not be negative")
	}
	if c.PollInterval <= 0 {
		return fmt.Errorf("poll_interval must be positive")
	}
	if c.LogLevel != "" {
		if _, ok := logging.ParseLevel(c.LogLevel); !ok {
			return fmt.Errorf("unknown log_level %q", c.LogLevel)
		}
	}
	switch c.Format {
	case FormatText, FormatJSON:
	default:
		return fmt.Errorf("unknown format %q", c.Format)
	}
	return nil
}

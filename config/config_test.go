package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/nalgeon/be"

	"github.com/titouanreal/contacts/daemon"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	be.Err(t, os.WriteFile(path, []byte(body), 0o600), nil)
	return path
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
bus_address = "unix:path=/run/user/1000/bus"
service = "org.example.Contacts"
timeout = "750ms"
poll_interval = "10s"
log_level = "debug"
format = "JSON"
`)

	cfg, err := Load(path)
	be.Err(t, err, nil)
	be.Equal(t, cfg.Target.Address, "unix:path=/run/user/1000/bus")
	be.Equal(t, cfg.Target.Service, "org.example.Contacts")
	be.Equal(t, cfg.Target.Path, daemon.DefaultPath)
	be.Equal(t, cfg.Target.Interface, daemon.DefaultInterface)
	be.Equal(t, cfg.Timeout, 750*time.Millisecond)
	be.Equal(t, cfg.PollInterval, 10*time.Second)
	be.Equal(t, cfg.LogLevel, "debug")
	be.Equal(t, cfg.Format, FormatJSON)
}

func TestLoadEmptyFileKeepsDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, ""))
	be.Err(t, err, nil)
	be.Equal(t, cfg, Default())
}

func TestLoadRejectsInvalid(t *testing.T) {
	cases := map[string]string{
		`timeout = "soon"`:     "parse timeout",
		`poll_interval = "0s"`: "poll_interval must be positive",
		`poll_interval = "x"`:  "parse poll_interval",
		`log_level = "loud"`:   "unknown log_level",
		`format = "xml"`:       "unknown format",
		`object_path = "nope"`: "invalid object path",
		`colour = "blue"`:      "unknown key",
		`timeout = `:           "load config",
	}
	for body, want := range cases {
		_, err := Load(writeConfig(t, body))
		be.Err(t, err, want)
	}
}

func TestResolve(t *testing.T) {
	t.Setenv(EnvConfigPath, filepath.Join(t.TempDir(), "missing.toml"))
	cfg, err := Resolve("")
	be.Err(t, err, nil)
	be.Equal(t, cfg, Default())

	_, err = Resolve(filepath.Join(t.TempDir(), "explicit.toml"))
	be.Err(t, err, "load config")

	path := writeConfig(t, `poll_interval = "1m"`)
	t.Setenv(EnvConfigPath, path)
	be.Equal(t, DefaultPath(), path)
	cfg, err = Resolve("")
	be.Err(t, err, nil)
	be.Equal(t, cfg.PollInterval, time.Minute)
}

package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/unkn0wn-root/playterm/internal/errdef"
	"github.com/unkn0wn-root/playterm/internal/playground"
)

type SettingsFormat string

const (
	SettingsFormatTOML SettingsFormat = "toml"
	SettingsFormatYAML SettingsFormat = "yaml"
)

const (
	DefaultServerURL     = "https://play.rust-lang.org"
	DefaultPlaygroundURL = "https://play.rust-lang.org"
	DefaultTimeout       = 60 * time.Second
)

type ServerSettings struct {
	URL      string `toml:"url,omitempty" yaml:"url,omitempty"`
	Timeout  string `toml:"timeout,omitempty" yaml:"timeout,omitempty"`
	Proxy    string `toml:"proxy,omitempty" yaml:"proxy,omitempty"`
	Insecure bool   `toml:"insecure,omitempty" yaml:"insecure,omitempty"`
	// CACerts are PEM files trusted instead of the system roots.
	CACerts []string `toml:"ca_certs,omitempty" yaml:"ca_certs,omitempty"`
}

type GistSettings struct {
	APIURL        string `toml:"api_url,omitempty" yaml:"api_url,omitempty"`
	Token         string `toml:"token,omitempty" yaml:"token,omitempty"`
	PlaygroundURL string `toml:"playground_url,omitempty" yaml:"playground_url,omitempty"`
}

type DefaultsSettings struct {
	Channel   string `toml:"channel,omitempty" yaml:"channel,omitempty"`
	Mode      string `toml:"mode,omitempty" yaml:"mode,omitempty"`
	CrateType string `toml:"crate_type,omitempty" yaml:"crate_type,omitempty"`
	Tests     bool   `toml:"tests,omitempty" yaml:"tests,omitempty"`
	Editor    string `toml:"editor,omitempty" yaml:"editor,omitempty"`
}

type LogSettings struct {
	Level  string `toml:"level,omitempty" yaml:"level,omitempty"`
	Format string `toml:"format,omitempty" yaml:"format,omitempty"`
}

type HistorySettings struct {
	MaxEntries int  `toml:"max_entries,omitempty" yaml:"max_entries,omitempty"`
	Disabled   bool `toml:"disabled,omitempty" yaml:"disabled,omitempty"`
}

type Settings struct {
	Server   ServerSettings   `toml:"server" yaml:"server"`
	Gist     GistSettings     `toml:"gist" yaml:"gist"`
	Defaults DefaultsSettings `toml:"defaults" yaml:"defaults"`
	Log      LogSettings      `toml:"log" yaml:"log"`
	History  HistorySettings  `toml:"history" yaml:"history"`
}

// SettingsHandle remembers where settings came from so they can be written
// back in the same format.
type SettingsHandle struct {
	Path   string
	Format SettingsFormat
}

var settingsCandidates = []struct {
	name   string
	format SettingsFormat
}{
	{"settings.toml", SettingsFormatTOML},
	{"settings.yaml", SettingsFormatYAML},
	{"settings.yml", SettingsFormatYAML},
}

// LoadSettings reads the first settings file found in Dir() and applies
// environment overrides. A missing file is not an error.
func LoadSettings() (Settings, SettingsHandle, error) {
	return LoadSettingsFrom(Dir(), os.Getenv)
}

func LoadSettingsFrom(dir string, getenv func(string) string) (Settings, SettingsHandle, error) {
	var settings Settings
	handle := SettingsHandle{Path: filepath.Join(dir, "settings.toml"), Format: SettingsFormatTOML}

	for _, c := range settingsCandidates {
		path := filepath.Join(dir, c.name)
		data, err := os.ReadFile(path)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return Settings{}, handle, errdef.Wrap(errdef.CodeConfig, err, "read %s", path)
		}
		handle = SettingsHandle{Path: path, Format: c.format}
		if err := decodeSettings(data, c.format, &settings); err != nil {
			return Settings{}, handle, errdef.Wrap(errdef.CodeConfig, err, "parse %s", path)
		}
		break
	}

	applyEnv(&settings, getenv)
	return settings, handle, nil
}

func SaveSettings(settings Settings, handle SettingsHandle) error {
	if handle.Path == "" {
		handle = SettingsHandle{Path: filepath.Join(Dir(), "settings.toml"), Format: SettingsFormatTOML}
	}
	var (
		data []byte
		err  error
	)
	switch handle.Format {
	case SettingsFormatYAML:
		data, err = yaml.Marshal(settings)
	default:
		data, err = toml.Marshal(settings)
	}
	if err != nil {
		return errdef.Wrap(errdef.CodeConfig, err, "encode settings")
	}
	if err := os.MkdirAll(filepath.Dir(handle.Path), 0o755); err != nil {
		return errdef.Wrap(errdef.CodeConfig, err, "create settings dir")
	}
	tmp := handle.Path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return errdef.Wrap(errdef.CodeConfig, err, "write settings tmp")
	}
	if err := os.Rename(tmp, handle.Path); err != nil {
		return errdef.Wrap(errdef.CodeConfig, err, "replace settings file")
	}
	return nil
}

// SaveDefaults persists cfg as the defaults section of the settings file in
// Dir(). Other sections are rewritten as they are on disk; environment
// overrides are not written back.
func SaveDefaults(cfg playground.Configuration) (SettingsHandle, error) {
	return SaveDefaultsTo(Dir(), cfg)
}

func SaveDefaultsTo(dir string, cfg playground.Configuration) (SettingsHandle, error) {
	settings, handle, err := LoadSettingsFrom(dir, nil)
	if err != nil {
		return handle, err
	}
	settings.Defaults = DefaultsSettings{
		Channel:   string(cfg.Channel),
		Mode:      string(cfg.Mode),
		CrateType: string(cfg.CrateType),
		Tests:     cfg.Tests,
		Editor:    string(cfg.Editor),
	}
	return handle, SaveSettings(settings, handle)
}

func decodeSettings(data []byte, format SettingsFormat, out *Settings) error {
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil
	}
	if format == SettingsFormatYAML {
		return yaml.Unmarshal(data, out)
	}
	return toml.Unmarshal(data, out)
}

func applyEnv(s *Settings, getenv func(string) string) {
	if getenv == nil {
		return
	}
	if v := strings.TrimSpace(getenv("PLAYTERM_SERVER_URL")); v != "" {
		s.Server.URL = v
	}
	if v := strings.TrimSpace(getenv("PLAYTERM_GITHUB_TOKEN")); v != "" {
		s.Gist.Token = v
	}
}

func (s Settings) ServerURL() string {
	if v := strings.TrimSpace(s.Server.URL); v != "" {
		return v
	}
	return DefaultServerURL
}

func (s Settings) PlaygroundURL() string {
	if v := strings.TrimSpace(s.Gist.PlaygroundURL); v != "" {
		return v
	}
	return DefaultPlaygroundURL
}

// Timeout parses server.timeout, falling back to DefaultTimeout.
func (s Settings) Timeout() time.Duration {
	if d, err := time.ParseDuration(strings.TrimSpace(s.Server.Timeout)); err == nil && d > 0 {
		return d
	}
	return DefaultTimeout
}

// Configuration turns the defaults section into a session configuration,
// keeping built-in values for anything missing or invalid.
func (s Settings) Configuration() playground.Configuration {
	cfg := playground.DefaultConfiguration()
	if ch, err := playground.ParseChannel(s.Defaults.Channel); err == nil {
		cfg.Channel = ch
	}
	if m, err := playground.ParseMode(s.Defaults.Mode); err == nil {
		cfg.Mode = m
	}
	if strings.TrimSpace(s.Defaults.CrateType) != "" {
		cfg.CrateType = playground.ParseCrateType(s.Defaults.CrateType)
	}
	if e, err := playground.ParseEditor(s.Defaults.Editor); err == nil {
		cfg.Editor = e
	}
	cfg.Tests = s.Defaults.Tests
	return cfg
}

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/unkn0wn-root/playterm/internal/playground"
)

func noEnv(string) string { return "" }

func TestLoadSettingsMissingFileUsesDefaults(t *testing.T) {
	dir := t.TempDir()
	settings, handle, err := LoadSettingsFrom(dir, noEnv)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if handle.Format != SettingsFormatTOML || handle.Path != filepath.Join(dir, "settings.toml") {
		t.Fatalf("unexpected handle %+v", handle)
	}
	if settings.ServerURL() != DefaultServerURL || settings.Timeout() != DefaultTimeout {
		t.Fatalf("expected defaults, got %q %s", settings.ServerURL(), settings.Timeout())
	}
	if settings.Configuration() != playground.DefaultConfiguration() {
		t.Fatalf("expected default configuration, got %+v", settings.Configuration())
	}
}

func TestLoadSettingsTOML(t *testing.T) {
	dir := t.TempDir()
	data := `
[server]
url = "http://localhost:5000"
timeout = "5s"

[defaults]
channel = "nightly"
mode = "release"
crate_type = "lib"
tests = true
`
	if err := os.WriteFile(filepath.Join(dir, "settings.toml"), []byte(data), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	settings, _, err := LoadSettingsFrom(dir, noEnv)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if settings.ServerURL() != "http://localhost:5000" || settings.Timeout() != 5*time.Second {
		t.Fatalf("unexpected server settings %+v", settings.Server)
	}
	cfg := settings.Configuration()
	if cfg.Channel != playground.ChannelNightly || cfg.Mode != playground.ModeRelease || cfg.CrateType != playground.CrateLibrary || !cfg.Tests {
		t.Fatalf("unexpected configuration %+v", cfg)
	}
}

func TestLoadSettingsYAMLAndEnvOverride(t *testing.T) {
	dir := t.TempDir()
	data := "gist:\n  token: from-file\n  playground_url: https://play.example\n"
	if err := os.WriteFile(filepath.Join(dir, "settings.yaml"), []byte(data), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	env := map[string]string{"PLAYTERM_GITHUB_TOKEN": "from-env", "PLAYTERM_SERVER_URL": "http://env"}
	settings, handle, err := LoadSettingsFrom(dir, func(k string) string { return env[k] })
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if handle.Format != SettingsFormatYAML {
		t.Fatalf("expected yaml handle, got %s", handle.Format)
	}
	if settings.Gist.Token != "from-env" || settings.ServerURL() != "http://env" {
		t.Fatalf("expected env overrides, got %+v", settings)
	}
	if settings.PlaygroundURL() != "https://play.example" {
		t.Fatalf("unexpected playground url %q", settings.PlaygroundURL())
	}
}

func TestLoadSettingsRejectsBrokenFile(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "settings.toml"), []byte("[server\nurl="), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, _, err := LoadSettingsFrom(dir, noEnv); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestSaveSettingsRoundTrip(t *testing.T) {
	dir := t.TempDir()
	for _, format := range []SettingsFormat{SettingsFormatTOML, SettingsFormatYAML} {
		handle := SettingsHandle{Path: filepath.Join(dir, "settings."+string(format)), Format: format}
		in := Settings{Defaults: DefaultsSettings{Channel: "beta", Editor: "simple"}}
		if err := SaveSettings(in, handle); err != nil {
			t.Fatalf("save %s: %v", format, err)
		}
		out, got, err := LoadSettingsFrom(dir, noEnv)
		if err != nil {
			t.Fatalf("load %s: %v", format, err)
		}
		if got.Path != handle.Path {
			t.Fatalf("expected %s to be picked up, got %s", handle.Path, got.Path)
		}
		if out.Configuration().Channel != playground.ChannelBeta || out.Configuration().Editor != playground.EditorSimple {
			t.Fatalf("round trip lost values: %+v", out.Defaults)
		}
		if err := os.Remove(handle.Path); err != nil {
			t.Fatalf("cleanup: %v", err)
		}
	}
}

func TestSaveDefaultsKeepsOtherSections(t *testing.T) {
	dir := t.TempDir()
	yml := "server:\n  url: https://play.internal\ngist:\n  api_url: https://ghe.internal/api/v3\n"
	if err := os.WriteFile(filepath.Join(dir, "settings.yaml"), []byte(yml), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	cfg := playground.DefaultConfiguration()
	cfg.Channel = playground.ChannelNightly
	cfg.Mode = playground.ModeRelease
	cfg.CrateType = playground.CrateLibrary
	cfg.Tests = true
	handle, err := SaveDefaultsTo(dir, cfg)
	if err != nil {
		t.Fatalf("save defaults: %v", err)
	}
	if handle.Format != SettingsFormatYAML {
		t.Fatalf("expected the yaml file to be rewritten, got %+v", handle)
	}

	got, _, err := LoadSettingsFrom(dir, func(k string) string {
		if k == "PLAYTERM_SERVER_URL" {
			return "https://ignored"
		}
		return ""
	})
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if got.Gist.APIURL != "https://ghe.internal/api/v3" {
		t.Fatalf("gist section lost: %+v", got.Gist)
	}
	if c := got.Configuration(); c.Channel != playground.ChannelNightly || c.Mode != playground.ModeRelease || c.CrateType != playground.CrateLibrary || !c.Tests {
		t.Fatalf("defaults not persisted: %+v", c)
	}

	raw, _, _ := LoadSettingsFrom(dir, nil)
	if raw.Server.URL != "https://play.internal" {
		t.Fatalf("environment override leaked into the file: %q", raw.Server.URL)
	}
}

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadConfigMissingFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Test.Mode != nil || cfg.Sink.WebhookURL != nil {
		t.Fatalf("expected empty config, got %+v", cfg)
	}
}

func TestLoadConfigEmptyPath(t *testing.T) {
	if _, err := LoadConfig(""); err == nil {
		t.Fatalf("expected error for empty path")
	}
}

func TestLoadConfigSections(t *testing.T) {
	path := writeConfig(t, `
[user]
name = "Maria Silva"
email = "maria@example.com"
matricula = "12345"

[test]
mode = "audio"
lang = "pt-PT"
rate = 1.1
speech-cmd = "say -v Luciana"

[catalog]
path = "/tmp/texts.toml"

[sink]
webhook-url = "https://example.com/hook"
timeout-seconds = 30
store = false

[log]
level = "debug"
file = "/tmp/digita.log"
`)
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.User.Name == nil || *cfg.User.Name != "Maria Silva" {
		t.Fatalf("unexpected user name: %v", cfg.User.Name)
	}
	if cfg.User.ExternalID != nil {
		t.Fatalf("external-id should be unset")
	}
	if cfg.Test.Mode == nil || *cfg.Test.Mode != "audio" {
		t.Fatalf("unexpected mode: %v", cfg.Test.Mode)
	}
	if cfg.Test.Rate == nil || *cfg.Test.Rate != 1.1 {
		t.Fatalf("unexpected rate: %v", cfg.Test.Rate)
	}
	if cfg.Sink.TimeoutSeconds == nil || *cfg.Sink.TimeoutSeconds != 30 {
		t.Fatalf("unexpected timeout: %v", cfg.Sink.TimeoutSeconds)
	}
	if cfg.Sink.Store == nil || *cfg.Sink.Store {
		t.Fatalf("expected store = false")
	}
	if cfg.Log.Level == nil || *cfg.Log.Level != "debug" {
		t.Fatalf("unexpected log level: %v", cfg.Log.Level)
	}
}

func TestLoadConfigRejectsUnknownKey(t *testing.T) {
	path := writeConfig(t, "[test]\nwords = 25\n")
	_, err := LoadConfig(path)
	if err == nil || !strings.Contains(err.Error(), "test.words") {
		t.Fatalf("expected unknown key error, got %v", err)
	}
}

func TestLoaderEnvironmentOverrides(t *testing.T) {
	path := writeConfig(t, "[sink]\nwebhook-url = \"https://file.example\"\n[log]\nlevel = \"info\"\n")
	env := map[string]string{
		EnvWebhookURL: " https://env.example ",
		EnvSpeechCmd:  "say",
	}
	loader := Loader{Lookup: func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	}}
	cfg, err := loader.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got := *cfg.Sink.WebhookURL; got != "https://env.example" {
		t.Fatalf("webhook url = %q", got)
	}
	if got := *cfg.Test.SpeechCmd; got != "say" {
		t.Fatalf("speech cmd = %q", got)
	}
	if got := *cfg.Log.Level; got != "info" {
		t.Fatalf("log level = %q, want file value", got)
	}
}

func TestDefaultPathsUseXDG(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/cfg")
	t.Setenv("XDG_DATA_HOME", "/data")
	cases := map[string]string{
		DefaultConfigPath():  "/cfg/digita/config.toml",
		DefaultCatalogPath(): "/cfg/digita/texts.toml",
		DefaultDBPath():      "/data/digita/digita.db",
		DefaultLogPath():     "/data/digita/digita.log",
	}
	for got, want := range cases {
		if got != want {
			t.Fatalf("path = %q, want %q", got, want)
		}
	}
}

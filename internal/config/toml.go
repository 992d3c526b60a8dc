// Package config provides configuration helpers and TOML parsing.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// FileConfig represents the TOML configuration file.
type FileConfig struct {
	User    UserConfig    `toml:"user"`
	Test    TestConfig    `toml:"test"`
	Catalog CatalogConfig `toml:"catalog"`
	Sink    SinkConfig    `toml:"sink"`
	Log     LogConfig     `toml:"log"`
}

// UserConfig prefills the participant form.
type UserConfig struct {
	Name       *string `toml:"name"`
	Email      *string `toml:"email"`
	Matricula  *string `toml:"matricula"`
	ExternalID *string `toml:"external-id"`
}

// TestConfig maps attempt and dictation settings.
type TestConfig struct {
	Mode      *string  `toml:"mode"`
	Lang      *string  `toml:"lang"`
	Rate      *float64 `toml:"rate"`
	SpeechCmd *string  `toml:"speech-cmd"`
}

// CatalogConfig points at an extra text catalog.
type CatalogConfig struct {
	Path *string `toml:"path"`
}

// SinkConfig selects where finished attempts are delivered.
type SinkConfig struct {
	WebhookURL     *string `toml:"webhook-url"`
	TimeoutSeconds *int    `toml:"timeout-seconds"`
	Store          *bool   `toml:"store"`
}

// LogConfig maps diagnostics log settings.
type LogConfig struct {
	Level *string `toml:"level"`
	File  *string `toml:"file"`
}

// LoadConfig reads a TOML config from the given path. Missing file is not an error.
func LoadConfig(path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, fmt.Errorf("config path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, nil
		}
		return FileConfig{}, fmt.Errorf("failed to stat config: %w", err)
	}
	var cfg FileConfig
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return FileConfig{}, fmt.Errorf("unknown config key %q", undecoded[0].String())
	}
	return cfg, nil
}

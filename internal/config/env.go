package config

import (
	"os"
	"strings"
)

// Environment variables that override file values.
const (
	EnvWebhookURL = "DIGITA_WEBHOOK_URL"
	EnvLogLevel   = "DIGITA_LOG_LEVEL"
	EnvSpeechCmd  = "DIGITA_SPEECH_CMD"
)

// Loader reads the config file and applies environment overrides.
type Loader struct {
	// Lookup defaults to os.LookupEnv.
	Lookup func(key string) (string, bool)
}

// Load reads path and overlays the environment. Set but blank variables clear the value.
func (l Loader) Load(path string) (FileConfig, error) {
	cfg, err := LoadConfig(path)
	if err != nil {
		return FileConfig{}, err
	}
	l.apply(&cfg)
	return cfg, nil
}

func (l Loader) apply(cfg *FileConfig) {
	lookup := l.Lookup
	if lookup == nil {
		lookup = os.LookupEnv
	}
	override := func(key string, target **string) {
		v, ok := lookup(key)
		if !ok {
			return
		}
		v = strings.TrimSpace(v)
		*target = &v
	}
	override(EnvWebhookURL, &cfg.Sink.WebhookURL)
	override(EnvLogLevel, &cfg.Log.Level)
	override(EnvSpeechCmd, &cfg.Test.SpeechCmd)
}

// Package config loads SmartHub's runtime configuration from the
// environment. A .env file, when present, is loaded first; CLI flags in
// cmd/smarthub override the result.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds every knob the binary reads at startup.
type Config struct {
	// Language-model endpoint.
	Endpoint       string        `env:"SMARTHUB_ENDPOINT" envDefault:"https://openai-proxy-ucgy.onrender.com/v1/responses"`
	Model          string        `env:"SMARTHUB_MODEL" envDefault:"gpt-4.1-mini"`
	APIKey         string        `env:"SMARTHUB_API_KEY"`
	RequestTimeout time.Duration `env:"SMARTHUB_REQUEST_TIMEOUT" envDefault:"60s"`

	// Logging.
	LogLevel string `env:"SMARTHUB_LOG_LEVEL" envDefault:"normal"`
	LogFile  string `env:"SMARTHUB_LOG_FILE" envDefault:".smarthub-logs/smarthub.log"`

	// Settings persistence.
	SettingsDB string `env:"SMARTHUB_SETTINGS_DB" envDefault:".smarthub/settings.db"`
	NoPersist  bool   `env:"SMARTHUB_NO_PERSIST"`

	// Text-to-speech.
	AzureKey    string `env:"AZURE_SPEECH_KEY"`
	AzureRegion string `env:"AZURE_SPEECH_REGION"`
	Voice       string `env:"SMARTHUB_TTS_VOICE"`
	NoSpeech    bool   `env:"SMARTHUB_NO_SPEECH"`
	CacheDir    string `env:"SMARTHUB_CACHE_DIR" envDefault:".smarthub-cache"`
	DiskCache   bool   `env:"SMARTHUB_DISK_CACHE" envDefault:"true"`

	// Speech-to-text.
	WhisperBin   string        `env:"SMARTHUB_WHISPER_BIN" envDefault:"whisper-cli"`
	WhisperModel string        `env:"SMARTHUB_WHISPER_MODEL" envDefault:"bin/ggml-small.bin"`
	MaxRecord    time.Duration `env:"SMARTHUB_MAX_RECORD" envDefault:"15s"`
	Language     string        `env:"SMARTHUB_LANGUAGE" envDefault:"ru-RU"`
}

// Load reads the given .env files (default ".env"; missing files are
// skipped), then parses the environment into a Config and validates it.
// Variables already set in the environment win over .env values.
func Load(dotenv ...string) (*Config, error) {
	if len(dotenv) == 0 {
		dotenv = []string{".env"}
	}
	for _, path := range dotenv {
		if err := godotenv.Load(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("config: load %s: %w", path, err)
		}
	}

	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("config: parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the values that would otherwise fail late.
func (c *Config) Validate() error {
	if c.Endpoint == "" {
		return errors.New("config: endpoint is empty")
	}
	u, err := url.Parse(c.Endpoint)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("config: endpoint %q is not an absolute URL", c.Endpoint)
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("config: request timeout must be positive, got %s", c.RequestTimeout)
	}
	if c.MaxRecord <= 0 {
		return fmt.Errorf("config: max record must be positive, got %s", c.MaxRecord)
	}
	return nil
}

// SpeechConfigured reports whether Azure credentials are present and
// speech is not switched off.
func (c *Config) SpeechConfigured() bool {
	return !c.NoSpeech && c.AzureKey != "" && c.AzureRegion != ""
}

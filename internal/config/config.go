// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and validation for ayane.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	chromastyles "github.com/alecthomas/chroma/v2/styles"
	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
)

// =============================================================================
// CONSTANTS
// =============================================================================

const (
	ProviderOpenAI = "openai"
	ProviderOllama = "ollama"

	SpeechElevenLabs = "elevenlabs"
	SpeechProxy      = "proxy"

	// DefaultVoiceID is the voice used when none is configured.
	DefaultVoiceID = "EXAVITQu4vr4xnSDxMaL"

	DefaultOpenAIBaseURL     = "https://api.openai.com/v1"
	DefaultOllamaBaseURL     = "http://127.0.0.1:11434"
	DefaultElevenLabsBaseURL = "https://api.elevenlabs.io"
)

// OutputFormats lists the synthesis output formats the audio decoder understands.
var OutputFormats = []string{
	"mp3_44100_128",
	"mp3_22050_32",
	"ulaw_8000",
	"pcm_16000",
	"pcm_22050",
	"pcm_24000",
	"pcm_44100",
}

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config is the root configuration.
type Config struct {
	Chat   ChatConfig   `toml:"chat"`
	Speech SpeechConfig `toml:"speech"`
	UI     UIConfig     `toml:"ui"`
	Log    LogConfig    `toml:"log"`
}

// ChatConfig selects and configures the conversational backend.
type ChatConfig struct {
	// Provider is "openai" (any OpenAI-compatible endpoint) or "ollama".
	Provider string `toml:"provider"`

	BaseURL string `toml:"base_url"`
	APIKey  string `toml:"api_key"`
	Model   string `toml:"model"`

	// SystemPrompt is sent ahead of the history when non-empty.
	SystemPrompt string `toml:"system_prompt"`

	// Timeout bounds a whole streamed reply. Zero disables it.
	Timeout time.Duration `toml:"timeout"`
}

// SpeechConfig configures the synthesis backend used by playback.
type SpeechConfig struct {
	Enabled bool `toml:"enabled"`

	// Provider is "elevenlabs" (direct REST) or "proxy" ({text, voice_id} endpoint).
	Provider string `toml:"provider"`

	// Endpoint is the full URL of the proxy provider.
	Endpoint string `toml:"endpoint"`

	BaseURL         string        `toml:"base_url"`
	APIKey          string        `toml:"api_key"`
	VoiceID         string        `toml:"voice_id"`
	ModelID         string        `toml:"model_id"`
	OutputFormat    string        `toml:"output_format"`
	Stability       float64       `toml:"stability"`
	SimilarityBoost float64       `toml:"similarity_boost"`
	Timeout         time.Duration `toml:"timeout"`
}

// UIConfig holds terminal UI preferences.
type UIConfig struct {
	ComposerMinHeight int    `toml:"composer_min_height"`
	ComposerMaxHeight int    `toml:"composer_max_height"`
	CodeTheme         string `toml:"code_theme"`

	// WordWrap for rendered markdown. Zero follows the window width.
	WordWrap int  `toml:"word_wrap"`
	Mouse    bool `toml:"mouse"`
}

// LogConfig controls the debug log file.
type LogConfig struct {
	File  string `toml:"file"`
	Level string `toml:"level"`
}

// =============================================================================
// DEFAULTS
// =============================================================================

// Default returns the built-in configuration.
func Default() *Config {
	cfg := seed()
	cfg.SetDefaults()
	return cfg
}

// seed holds the defaults that a zero value cannot express. Provider
// dependent fields stay empty so SetDefaults can pick them after the file
// and environment chose a provider.
func seed() *Config {
	return &Config{
		Chat: ChatConfig{
			Timeout: 5 * time.Minute,
		},
		Speech: SpeechConfig{
			Enabled:         true,
			Stability:       0.5,
			SimilarityBoost: 0.75,
		},
		UI: UIConfig{
			Mouse: true,
		},
	}
}

// SetDefaults fills zero values left by a partial config file.
func (c *Config) SetDefaults() {
	c.Chat.Provider = strings.ToLower(strings.TrimSpace(c.Chat.Provider))
	if c.Chat.Provider == "" {
		c.Chat.Provider = ProviderOpenAI
	}
	if c.Chat.BaseURL == "" {
		if c.Chat.Provider == ProviderOllama {
			c.Chat.BaseURL = DefaultOllamaBaseURL
		} else {
			c.Chat.BaseURL = DefaultOpenAIBaseURL
		}
	}
	if c.Chat.Model == "" {
		if c.Chat.Provider == ProviderOllama {
			c.Chat.Model = "llama3.2"
		} else {
			c.Chat.Model = "gpt-4o-mini"
		}
	}

	c.Speech.Provider = strings.ToLower(strings.TrimSpace(c.Speech.Provider))
	if c.Speech.Provider == "" {
		c.Speech.Provider = SpeechElevenLabs
	}
	if c.Speech.BaseURL == "" {
		c.Speech.BaseURL = DefaultElevenLabsBaseURL
	}
	if c.Speech.VoiceID == "" {
		c.Speech.VoiceID = DefaultVoiceID
	}
	if c.Speech.ModelID == "" {
		c.Speech.ModelID = "eleven_turbo_v2_5"
	}
	if c.Speech.OutputFormat == "" {
		c.Speech.OutputFormat = "mp3_44100_128"
	}
	if c.Speech.Timeout == 0 {
		c.Speech.Timeout = 60 * time.Second
	}

	if c.UI.ComposerMinHeight == 0 {
		c.UI.ComposerMinHeight = 2
	}
	if c.UI.ComposerMaxHeight == 0 {
		c.UI.ComposerMaxHeight = 8
	}
	if c.UI.CodeTheme == "" {
		c.UI.CodeTheme = "monokai"
	}

	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}

// =============================================================================
// PATHS
// =============================================================================

// ConfigDir returns ~/.ayane.
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".ayane"), nil
}

// ConfigPath returns the default config file location.
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// DefaultLogPath returns the log file used by --debug.
func DefaultLogPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "ayane.log"), nil
}

// =============================================================================
// LOAD FUNCTIONS
// =============================================================================

// Override adjusts a loaded config before defaults are filled. Command-line
// flags are applied this way so provider dependent defaults follow them.
type Override func(cfg *Config)

// Load reads the configuration. An explicit path must exist; with an empty
// path the default location is used when present and defaults otherwise.
// .env files are loaded first so their values feed the environment
// overrides, then overrides run in order. Defaults are filled and the
// result is validated.
func Load(path string, overrides ...Override) (*Config, error) {
	LoadDotEnv()

	cfg := seed()

	explicit := path != ""
	if !explicit {
		p, err := ConfigPath()
		if err == nil {
			path = p
		}
	}

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := LoadTOML(cfg, path); err != nil {
				return nil, err
			}
		} else if explicit {
			return nil, fmt.Errorf("config file %s: %w", path, err)
		}
	}

	cfg.ApplyEnvOverrides()
	for _, o := range overrides {
		o(cfg)
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// LoadTOML decodes a TOML file over cfg.
func LoadTOML(cfg *Config, path string) error {
	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return fmt.Errorf("failed to decode TOML file: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, k := range undecoded {
			keys = append(keys, k.String())
		}
		log.Warn("unknown config keys ignored", "path", path, "keys", strings.Join(keys, ","))
	}
	return nil
}

// LoadDotEnv loads .env from the working directory and the config
// directory. Existing environment variables win; missing files are skipped.
func LoadDotEnv() {
	candidates := []string{".env"}
	if dir, err := ConfigDir(); err == nil {
		candidates = append(candidates, filepath.Join(dir, ".env"))
	}
	for _, p := range candidates {
		if _, err := os.Stat(p); err != nil {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			log.Warn("failed to load env file", "path", p, "err", err)
		}
	}
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

// ApplyEnvOverrides applies AYANE_* variables and the providers' standard
// API key variables.
func (c *Config) ApplyEnvOverrides() {
	if v := os.Getenv("AYANE_PROVIDER"); v != "" {
		c.Chat.Provider = v
	}
	if v := os.Getenv("AYANE_BASE_URL"); v != "" {
		c.Chat.BaseURL = v
	}
	if v := os.Getenv("AYANE_MODEL"); v != "" {
		c.Chat.Model = v
	}
	if v := os.Getenv("AYANE_SYSTEM_PROMPT"); v != "" {
		c.Chat.SystemPrompt = v
	}
	if v := os.Getenv("AYANE_API_KEY"); v != "" {
		c.Chat.APIKey = v
	} else if v := os.Getenv("OPENAI_API_KEY"); v != "" && c.Chat.APIKey == "" {
		c.Chat.APIKey = v
	}

	if v := os.Getenv("AYANE_SPEECH"); v != "" {
		c.Speech.Enabled = parseBool(v, c.Speech.Enabled)
	}
	if v := os.Getenv("AYANE_SPEECH_PROVIDER"); v != "" {
		c.Speech.Provider = v
	}
	if v := os.Getenv("AYANE_TTS_ENDPOINT"); v != "" {
		c.Speech.Endpoint = v
	}
	if v := os.Getenv("AYANE_VOICE_ID"); v != "" {
		c.Speech.VoiceID = v
	}
	if v := os.Getenv("ELEVENLABS_API_KEY"); v != "" && c.Speech.APIKey == "" {
		c.Speech.APIKey = v
	}

	if v := os.Getenv("AYANE_LOG_FILE"); v != "" {
		c.Log.File = v
	}
	if v := os.Getenv("AYANE_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
}

func parseBool(s string, fallback bool) bool {
	b, err := strconv.ParseBool(strings.TrimSpace(s))
	if err != nil {
		return fallback
	}
	return b
}

// =============================================================================
// VALIDATION
// =============================================================================

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateErrors is a collection of validation errors.
type ValidateErrors []ValidationError

func (e ValidateErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	msgs := make([]string, 0, len(e))
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

// Validate checks the configuration and returns every problem found.
func (c *Config) Validate() error {
	var errs ValidateErrors

	switch c.Chat.Provider {
	case ProviderOpenAI, ProviderOllama:
	default:
		errs = append(errs, ValidationError{
			Field:   "chat.provider",
			Message: fmt.Sprintf("invalid provider '%s', must be one of: openai, ollama", c.Chat.Provider),
		})
	}
	if err := validateURL(c.Chat.BaseURL); err != nil {
		errs = append(errs, ValidationError{Field: "chat.base_url", Message: err.Error()})
	}
	if c.Chat.Timeout < 0 {
		errs = append(errs, ValidationError{Field: "chat.timeout", Message: "must not be negative"})
	}

	if c.Speech.Enabled {
		switch c.Speech.Provider {
		case SpeechElevenLabs:
			if err := validateURL(c.Speech.BaseURL); err != nil {
				errs = append(errs, ValidationError{Field: "speech.base_url", Message: err.Error()})
			}
		case SpeechProxy:
			if err := validateURL(c.Speech.Endpoint); err != nil {
				errs = append(errs, ValidationError{Field: "speech.endpoint", Message: err.Error()})
			}
		default:
			errs = append(errs, ValidationError{
				Field:   "speech.provider",
				Message: fmt.Sprintf("invalid provider '%s', must be one of: elevenlabs, proxy", c.Speech.Provider),
			})
		}
		if strings.TrimSpace(c.Speech.VoiceID) == "" {
			errs = append(errs, ValidationError{Field: "speech.voice_id", Message: "must not be empty"})
		}
		if !isKnownFormat(c.Speech.OutputFormat) {
			errs = append(errs, ValidationError{
				Field:   "speech.output_format",
				Message: fmt.Sprintf("unsupported format '%s', must be one of: %s", c.Speech.OutputFormat, strings.Join(OutputFormats, ", ")),
			})
		}
		if c.Speech.Stability < 0 || c.Speech.Stability > 1 {
			errs = append(errs, ValidationError{Field: "speech.stability", Message: "must be between 0 and 1"})
		}
		if c.Speech.SimilarityBoost < 0 || c.Speech.SimilarityBoost > 1 {
			errs = append(errs, ValidationError{Field: "speech.similarity_boost", Message: "must be between 0 and 1"})
		}
	}

	if c.UI.ComposerMinHeight < 1 {
		errs = append(errs, ValidationError{Field: "ui.composer_min_height", Message: "must be at least 1"})
	}
	if c.UI.ComposerMaxHeight < c.UI.ComposerMinHeight {
		errs = append(errs, ValidationError{Field: "ui.composer_max_height", Message: "must not be less than composer_min_height"})
	}
	if c.UI.ComposerMaxHeight > 40 {
		errs = append(errs, ValidationError{Field: "ui.composer_max_height", Message: "must be at most 40"})
	}
	if _, ok := chromastyles.Registry[c.UI.CodeTheme]; !ok {
		errs = append(errs, ValidationError{
			Field:   "ui.code_theme",
			Message: fmt.Sprintf("unknown chroma style '%s'", c.UI.CodeTheme),
		})
	}
	if c.UI.WordWrap < 0 {
		errs = append(errs, ValidationError{Field: "ui.word_wrap", Message: "must not be negative"})
	}

	if _, err := log.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, ValidationError{Field: "log.level", Message: err.Error()})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

func validateURL(raw string) error {
	if strings.TrimSpace(raw) == "" {
		return errors.New("must not be empty")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("unsupported scheme '%s'", u.Scheme)
	}
	if u.Host == "" {
		return errors.New("missing host")
	}
	return nil
}

func isKnownFormat(format string) bool {
	for _, f := range OutputFormats {
		if f == format {
			return true
		}
	}
	return false
}

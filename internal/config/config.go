// Package config loads inkwell settings from a TOML file and the
// environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/iw2rmb/inkwell/generate"
	"github.com/iw2rmb/inkwell/internal/logging"
)

// Config is the full settings tree.
type Config struct {
	Prompts    PromptsConfig    `toml:"prompts"`
	Generation GenerationConfig `toml:"generation"`
	Editor     EditorConfig     `toml:"editor"`
	Logging    LoggingConfig    `toml:"logging"`
}

type PromptsConfig struct {
	// Directory holds user templates; relative paths resolve against the
	// config file's directory, whether or not the file exists.
	Directory string `toml:"directory"`
	Watch     bool   `toml:"watch"`
}

type GenerationConfig struct {
	Provider    string   `toml:"provider"`
	Model       string   `toml:"model"`
	APIKey      string   `toml:"api_key"`
	BaseURL     string   `toml:"base_url"`
	Temperature float64  `toml:"temperature"`
	Timeout     Duration `toml:"timeout"`
	MaxRetries  int      `toml:"max_retries"`
}

type EditorConfig struct {
	LineNumbers  bool `toml:"line_numbers"`
	HistoryLimit int  `toml:"history_limit"`
}

type LoggingConfig struct {
	Level string `toml:"level"`
	// File receives log records in interactive mode. Empty disables
	// logging there.
	File string `toml:"file"`
}

// Duration is a time.Duration written as a string such as "60s".
type Duration time.Duration

func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(strings.TrimSpace(string(b)))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

func Default() Config {
	return Config{
		Prompts: PromptsConfig{Directory: "prompts", Watch: true},
		Generation: GenerationConfig{
			Provider:    generate.ProviderOpenAI,
			Temperature: 0.3,
			Timeout:     Duration(60 * time.Second),
			MaxRetries:  2,
		},
		Editor:  EditorConfig{LineNumbers: true, HistoryLimit: 1000},
		Logging: LoggingConfig{Level: "info"},
	}
}

// DefaultPath is $XDG_CONFIG_HOME/inkwell/config.toml (or the platform
// equivalent).
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "inkwell.toml"
	}
	return filepath.Join(dir, "inkwell", "config.toml")
}

// LookupFunc reads one environment variable.
type LookupFunc func(key string) (string, bool)

// Load reads path over the defaults and applies environment overrides.
// A missing file is not an error.
func Load(path string) (Config, error) {
	return LoadWithEnv(path, os.LookupEnv)
}

func LoadWithEnv(path string, lookup LookupFunc) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := toml.Unmarshal(data, &cfg); err != nil {
				return Config{}, fmt.Errorf("parse config %s: %w", path, err)
			}
		case errors.Is(err, os.ErrNotExist):
		default:
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
		if d := cfg.Prompts.Directory; d != "" && !filepath.IsAbs(d) {
			cfg.Prompts.Directory = filepath.Join(filepath.Dir(path), d)
		}
	}
	if err := cfg.applyEnv(lookup); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyEnv(lookup LookupFunc) error {
	if v, ok := lookup("INKWELL_PROVIDER"); ok && v != "" {
		c.Generation.Provider = v
	}
	if v, ok := lookup("INKWELL_MODEL"); ok && v != "" {
		c.Generation.Model = v
	}
	if v, ok := lookup("INKWELL_PROMPT_DIR"); ok && v != "" {
		c.Prompts.Directory = v
	}
	if v, ok := lookup("INKWELL_LOG_LEVEL"); ok && v != "" {
		c.Logging.Level = v
	}
	if v, ok := lookup("INKWELL_TEMPERATURE"); ok && v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("INKWELL_TEMPERATURE: %w", err)
		}
		c.Generation.Temperature = f
	}
	if v, ok := lookup("INKWELL_API_KEY"); ok && v != "" {
		c.Generation.APIKey = v
	}
	if c.Generation.APIKey == "" {
		fallback := "OPENAI_API_KEY"
		if strings.EqualFold(c.Generation.Provider, generate.ProviderAnthropic) {
			fallback = "ANTHROPIC_API_KEY"
		}
		if v, ok := lookup(fallback); ok {
			c.Generation.APIKey = v
		}
	}
	return nil
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	switch strings.ToLower(c.Generation.Provider) {
	case generate.ProviderOpenAI, generate.ProviderAnthropic:
	default:
		return fmt.Errorf("generation.provider: unknown provider %q", c.Generation.Provider)
	}
	if c.Generation.Temperature < 0 || c.Generation.Temperature > 2 {
		return fmt.Errorf("generation.temperature: %v outside [0, 2]", c.Generation.Temperature)
	}
	if c.Generation.Timeout <= 0 {
		return errors.New("generation.timeout: must be positive")
	}
	if c.Generation.MaxRetries < 0 {
		return errors.New("generation.max_retries: must not be negative")
	}
	if c.Editor.HistoryLimit < 0 {
		return errors.New("editor.history_limit: must not be negative")
	}
	if _, err := logging.ParseLevel(c.Logging.Level); err != nil {
		return fmt.Errorf("logging.level: %w", err)
	}
	return nil
}

// GeneratorConfig maps the generation section onto generate.Config.
func (c Config) GeneratorConfig() generate.Config {
	return generate.Config{
		Provider:   c.Generation.Provider,
		Model:      c.Generation.Model,
		APIKey:     c.Generation.APIKey,
		BaseURL:    c.Generation.BaseURL,
		Timeout:    time.Duration(c.Generation.Timeout),
		MaxRetries: c.Generation.MaxRetries,
	}
}

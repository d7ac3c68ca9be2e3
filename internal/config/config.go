// Package config loads the application config file.
//
// Lookup order, later wins:
//   - built-in defaults
//   - $XDG_CONFIG_HOME/knowflow/config.toml (or the --config path)
//   - KNOWFLOW_* environment variables
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/abhisek/knowflow/internal/llm"
)

// Config is the application config file.
type Config struct {
	Store  StoreConfig  `toml:"store"`
	Log    LogConfig    `toml:"log"`
	Server ServerConfig `toml:"server"`
	Quiz   QuizConfig   `toml:"quiz"`
	LLM    LLMConfig    `toml:"llm"`
}

type StoreConfig struct {
	// Driver is "sqlite" or "postgres".
	Driver string `toml:"driver"`
	// DSN is a file path for sqlite or a connection URL for postgres.
	DSN string `toml:"dsn"`
}

type LogConfig struct {
	Level string `toml:"level"`
	// File receives the TUI's logs. Empty means the data directory.
	File string `toml:"file"`
}

type ServerConfig struct {
	Addr           string   `toml:"addr"`
	AllowedOrigins []string `toml:"allowed_origins"`
}

type QuizConfig struct {
	Questions int `toml:"questions"`
}

// LLMConfig seeds the provider settings used before the user saves any.
type LLMConfig struct {
	Provider    string   `toml:"provider"`
	Model       string   `toml:"model"`
	BaseURL     string   `toml:"base_url"`
	Temperature *float64 `toml:"temperature"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Store:  StoreConfig{Driver: "sqlite"},
		Log:    LogConfig{Level: "info"},
		Server: ServerConfig{Addr: "127.0.0.1:8787", AllowedOrigins: []string{"http://localhost:5173"}},
		Quiz:   QuizConfig{Questions: 3},
	}
}

// DefaultPath returns where the config file lives when --config is unset.
func DefaultPath() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "knowflow", "config.toml")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "config.toml")
	}
	return filepath.Join(home, ".config", "knowflow", "config.toml")
}

// Load reads the config file at path, or DefaultPath when path is empty,
// then applies environment overrides. A missing default file is not an
// error; a missing explicit path is.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		if !errors.Is(err, fs.ErrNotExist) || explicit {
			return nil, fmt.Errorf("load config %s: %w", path, err)
		}
	}

	if err := cfg.ApplyEnvOverrides(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// ApplyEnvOverrides applies KNOWFLOW_* variables on top of the file.
func (c *Config) ApplyEnvOverrides() error {
	if v := os.Getenv("KNOWFLOW_DB"); v != "" {
		c.Store.DSN = v
	}
	if v := os.Getenv("KNOWFLOW_DB_DRIVER"); v != "" {
		c.Store.Driver = v
	}
	if v := os.Getenv("KNOWFLOW_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("KNOWFLOW_ADDR"); v != "" {
		c.Server.Addr = v
	}
	if v := os.Getenv("KNOWFLOW_QUIZ_QUESTIONS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("KNOWFLOW_QUIZ_QUESTIONS=%q: %w", v, err)
		}
		c.Quiz.Questions = n
	}
	return nil
}

// Validate rejects values that would fail later at startup.
func (c *Config) Validate() error {
	var errs []error
	switch strings.ToLower(c.Store.Driver) {
	case "", "sqlite", "sqlite3", "postgres", "postgresql", "pgx":
	default:
		errs = append(errs, fmt.Errorf("store.driver %q is not sqlite or postgres", c.Store.Driver))
	}
	if _, err := ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, err)
	}
	if c.Quiz.Questions < 1 || c.Quiz.Questions > 10 {
		errs = append(errs, fmt.Errorf("quiz.questions %d out of range [1, 10]", c.Quiz.Questions))
	}
	if c.LLM.Provider != "" {
		if _, err := llm.ParseProviderKind(c.LLM.Provider); err != nil {
			errs = append(errs, fmt.Errorf("llm.provider: %w", err))
		}
	}
	if t := c.LLM.Temperature; t != nil && (*t < llm.MinTemperature || *t > llm.MaxTemperature) {
		errs = append(errs, fmt.Errorf("llm.temperature %.1f out of range [%.1f, %.1f]", *t, llm.MinTemperature, llm.MaxTemperature))
	}
	return errors.Join(errs...)
}

// LLMDefaults returns the provider settings used on first run.
func (c *Config) LLMDefaults() llm.Config {
	cfg := llm.DefaultConfig()
	if c.LLM.Provider != "" {
		if k, err := llm.ParseProviderKind(c.LLM.Provider); err == nil {
			cfg = cfg.WithProvider(k)
		}
	}
	if c.LLM.Model != "" {
		cfg.Model = c.LLM.Model
	}
	if c.LLM.BaseURL != "" {
		cfg.BaseURL = c.LLM.BaseURL
	}
	if c.LLM.Temperature != nil {
		cfg.Temperature = *c.LLM.Temperature
	}
	return cfg
}

// ParseLevel maps a level name to slog. Empty means info.
func ParseLevel(s string) (slog.Level, error) {
	var l slog.Level
	if s == "" {
		return slog.LevelInfo, nil
	}
	if err := l.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("log.level %q: %w", s, err)
	}
	return l, nil
}

// Package settings persists the LLM provider configuration.
package settings

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/abhisek/knowflow/internal/llm"
	"github.com/abhisek/knowflow/internal/store"
)

// ConfigKey is the settings row holding the LLM config.
const ConfigKey = "config"

// Store loads and saves the singleton llm.Config.
type Store struct {
	repo     store.SettingsRepo
	defaults llm.Config
	logger   *slog.Logger
}

// New wraps repo. defaults is returned whenever nothing usable is stored.
func New(repo store.SettingsRepo, defaults llm.Config, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{repo: repo, defaults: defaults, logger: logger}
}

// Defaults returns the fallback config.
func (s *Store) Defaults() llm.Config {
	return s.defaults
}

// Load returns the stored config. A missing, corrupt or invalid record
// yields the defaults; only the corrupt cases are logged.
func (s *Store) Load(ctx context.Context) llm.Config {
	raw, err := s.repo.Get(ctx, ConfigKey)
	if errors.Is(err, store.ErrNotFound) {
		return s.defaults
	}
	if err != nil {
		s.logger.WarnContext(ctx, "reading config failed, using defaults", "err", err)
		return s.defaults
	}

	var cfg llm.Config
	if err := json.Unmarshal(raw, &cfg); err != nil {
		s.logger.WarnContext(ctx, "stored config is corrupt, using defaults", "err", err)
		return s.defaults
	}
	if err := cfg.Validate(); err != nil {
		s.logger.WarnContext(ctx, "stored config is invalid, using defaults", "err", err)
		return s.defaults
	}
	return cfg
}

// Save validates cfg and writes it. Last write wins.
func (s *Store) Save(ctx context.Context, cfg llm.Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	raw, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return s.repo.Put(ctx, ConfigKey, raw)
}

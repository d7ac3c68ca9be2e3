package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/abhisek/knowflow/internal/config"
	"github.com/abhisek/knowflow/internal/gateway"
	"github.com/abhisek/knowflow/internal/history"
	"github.com/abhisek/knowflow/internal/llm"
	"github.com/abhisek/knowflow/internal/session"
	"github.com/abhisek/knowflow/internal/settings"
	"github.com/abhisek/knowflow/internal/store"
)

// cfg is loaded before any subcommand runs.
var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "knowflow",
	Short: "Turn any topic into a learning path",
	Long: `knowflow asks an LLM to break a topic into a short path of steps, then
unlocks each step as you pass a quiz on it.`,
	SilenceUsage:      true,
	PersistentPreRunE: loadConfig,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runApp(cmd)
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("db", "", "Database file (sqlite) or URL (postgres); overrides config and KNOWFLOW_DB")
	rootCmd.PersistentFlags().String("config", "", "Config file (default $XDG_CONFIG_HOME/knowflow/config.toml)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn, error")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(settingsCmd)
	rootCmd.AddCommand(previewCmd)
	rootCmd.AddCommand(llmCmd)
	rootCmd.AddCommand(versionCmd)
}

// loadConfig reads .env, the config file and flag overrides.
func loadConfig(cmd *cobra.Command, args []string) error {
	_ = godotenv.Load()

	path, _ := cmd.Flags().GetString("config")
	c, err := config.Load(path)
	if err != nil {
		return err
	}
	if lvl, _ := cmd.Flags().GetString("log-level"); lvl != "" {
		if _, err := config.ParseLevel(lvl); err != nil {
			return err
		}
		c.Log.Level = lvl
	}
	cfg = c
	return nil
}

// resolveDSN returns the connection string using --db flag (highest
// priority), then the config file and KNOWFLOW_DB, then the default XDG path.
func resolveDSN(cmd *cobra.Command, driver store.Driver) (string, error) {
	dsn, _ := cmd.Flags().GetString("db")
	if dsn == "" {
		dsn = cfg.Store.DSN
	}
	if driver == store.DriverPostgres {
		if dsn == "" {
			return "", fmt.Errorf("store.dsn is required for the postgres driver")
		}
		return dsn, nil
	}
	if dsn == "" {
		return store.DefaultDBPath()
	}
	return dsn, store.EnsureDir(dsn)
}

// openStore opens the configured database.
func openStore(cmd *cobra.Command) (*store.Store, error) {
	driver, err := store.ParseDriver(cfg.Store.Driver)
	if err != nil {
		return nil, err
	}
	dsn, err := resolveDSN(cmd, driver)
	if err != nil {
		return nil, fmt.Errorf("resolve database: %w", err)
	}
	st, err := store.Open(cmd.Context(), driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	return st, nil
}

// newLogger builds a text logger at the configured level.
func newLogger(w io.Writer) *slog.Logger {
	level, _ := config.ParseLevel(cfg.Log.Level)
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// openLogFile opens the TUI's log file, which cannot write to the terminal.
func openLogFile() (*os.File, error) {
	path := cfg.Log.File
	if path == "" {
		db, err := store.DefaultDBPath()
		if err != nil {
			return nil, err
		}
		path = filepath.Join(filepath.Dir(db), "knowflow.log")
	}
	if err := store.EnsureDir(path); err != nil {
		return nil, err
	}
	return os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
}

// newController wires the session controller over st. Providers are built
// lazily from the stored config, so a missing API key only fails the first
// generation request.
func newController(ctx context.Context, st *store.Store, logger *slog.Logger) (*session.Controller, error) {
	return session.New(ctx, session.Options{
		History:  history.NewService(st.HistoryRepo(), logger),
		Settings: settings.New(st.SettingsRepo(), cfg.LLMDefaults(), logger),
		NewGenerator: func(ctx context.Context, c llm.Config) (session.Generator, error) {
			if err := c.Ready(); err != nil {
				return nil, err
			}
			provider, err := llm.NewProvider(ctx, c, st.EventRepo(), logger)
			if err != nil {
				return nil, err
			}
			gc := gateway.DefaultConfig()
			gc.QuestionCount = cfg.Quiz.Questions
			gc.Temperature = c.Temperature
			return gateway.New(provider, gc), nil
		},
		Logger: logger,
	})
}

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/knowflow/internal/app"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Launch the terminal UI (same as running knowflow with no command)",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runApp(cmd)
	},
}

// runApp opens the store, builds dependencies, and launches the TUI.
func runApp(cmd *cobra.Command) error {
	ctx := cmd.Context()

	logFile, err := openLogFile()
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer logFile.Close()
	logger := newLogger(logFile)

	st, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer st.Close()

	ctrl, err := newController(ctx, st, logger)
	if err != nil {
		return fmt.Errorf("start session: %w", err)
	}

	logger.Info("starting tui", "provider", ctrl.Snapshot().Config.Provider, "driver", st.Driver())
	return app.Run(app.Options{Controller: ctrl, Logger: logger})
}

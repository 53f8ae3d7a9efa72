package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"mesaYaPos/internal/config"
	"mesaYaPos/internal/shared/logging"
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "posctl",
		Short:         "MesaYa POS operator tools",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.AddCommand(newNotesCmd())
	cmd.AddCommand(newMigrateCmd())
	cmd.AddCommand(newSweepCmd())
	cmd.AddCommand(newVersionCmd())
	return cmd
}

// loadConfig reads .env when present, then the environment, and installs a stderr logger.
func loadConfig() (*config.Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	slog.SetDefault(logging.New(os.Stderr, logging.Config{Level: cfg.Logging.Level, Format: cfg.Logging.Format}))
	return cfg, nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the posctl version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "posctl", version)
		},
	}
}

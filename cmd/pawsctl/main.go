package main

import (
	"fmt"
	"os"

	"github.com/smallbiznis/paws/internal/config"
	"github.com/smallbiznis/paws/internal/logger"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	logLevel string

	log *zap.Logger
	cfg config.Config
)

var rootCmd = &cobra.Command{
	Use:           "pawsctl",
	Short:         "pawsctl manages PAWS invitation codes and identity tokens",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		l, err := logger.New(logLevel)
		if err != nil {
			return err
		}
		log = l
		cfg = config.Load()
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if log != nil {
			_ = log.Sync()
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")

	rootCmd.AddCommand(codesCmd)
	rootCmd.AddCommand(tokenCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

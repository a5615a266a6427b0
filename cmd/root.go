package cmd

import (
	"fmt"
	"os"

	"watchstate/core/config"
	"watchstate/core/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var configDir string

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:   "watchstate",
	Short: "Watch state reconciliation service",
	Long: `WatchState keeps the watched state of movies and episodes in sync across
media servers. Backends are pulled into a local store and the store is pushed
back to backends that fell behind.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() {
	if err := RootCmd.Execute(); err != nil {
		// Console encoding and the development config keep CLI errors readable.
		l, logErr := logger.New(&logger.Config{Level: "debug", Format: "console"})
		if logErr == nil {
			l.Error("command failed", zap.Error(err))
			_ = l.Sync()
		} else {
			fmt.Println(err)
		}
		os.Exit(1)
	}
}

func init() {
	RootCmd.PersistentFlags().StringVar(&configDir, "config-dir", ".", "Directory holding the .env file")
}

// bootstrap loads the configuration and builds the logger.
func bootstrap() (*config.Config, *zap.Logger, error) {
	cfg, err := config.LoadConfig(configDir)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	l, err := logger.New(&cfg.Log)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	zap.ReplaceGlobals(l)
	return cfg, l, nil
}

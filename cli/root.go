// Package cli wires the stratsim commands.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// RootConfig carries the persistent flags shared by all subcommands.
type RootConfig struct {
	ConfigPath string
	DBPath     string
	LogLevel   string

	logger *zap.Logger
}

// Logger builds (once) the process logger at the configured level.
func (rc *RootConfig) Logger() (*zap.Logger, error) {
	if rc.logger != nil {
		return rc.logger, nil
	}
	level, err := zapcore.ParseLevel(rc.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("bad log level %q: %w", rc.LogLevel, err)
	}
	cfg := zap.NewDevelopmentConfig()
	cfg.Level = zap.NewAtomicLevelAt(level)
	rc.logger, err = cfg.Build()
	if err != nil {
		return nil, err
	}
	return rc.logger, nil
}

func NewRootCmd() *cobra.Command {
	rc := &RootConfig{}

	cmd := &cobra.Command{
		Use:           "stratsim",
		Short:         "Strategy backtesting over daily market data",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&rc.ConfigPath, "config", "", "Path to config file")
	cmd.PersistentFlags().StringVar(&rc.DBPath, "db", "./stratsim.sqlite", "SQLite journal database")
	cmd.PersistentFlags().StringVar(&rc.LogLevel, "log-level", "info", "Log level: debug|info|warn|error")

	cmd.AddCommand(
		newRunCmd(rc),
		newReportCmd(rc),
	)

	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println("stratsim (dev)")
		},
	})

	return cmd
}

func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// Command claimtmpl converts claims exports into the benefit template
// workbook without running the web server.
//
// Usage:
//
//	claimtmpl convert claims.csv -o march
//	claimtmpl inspect march.xlsx
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/JonMunkholm/ClaimTemplate/internal/config"
	"github.com/JonMunkholm/ClaimTemplate/internal/logging"
)

// app carries what every subcommand needs.
type app struct {
	cfg      *config.Config
	logLevel string
	envFile  string
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "claimtmpl",
		Short:         "Convert claims CSV exports into the benefit template workbook",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init(cmd)
		},
	}

	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "Log level: debug, info, warn, error (default from LOG_LEVEL)")
	root.PersistentFlags().StringVar(&a.envFile, "env-file", ".env", "Optional .env file to load")

	root.AddCommand(newConvertCmd(a))
	root.AddCommand(newInspectCmd(a))
	return root
}

// init loads .env and config, then routes logs to stderr so stdout only
// carries command output.
func (a *app) init(cmd *cobra.Command) error {
	if a.envFile != "" {
		if err := godotenv.Load(a.envFile); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("load %s: %w", a.envFile, err)
		}
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		cfg.Logging.Level = a.logLevel
	}
	a.cfg = cfg

	slog.SetDefault(logging.New(cmd.ErrOrStderr(), cfg.Logging.Level, cfg.Logging.Format))
	return nil
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

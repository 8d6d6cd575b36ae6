// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/ava-labs/avalanchego/utils/logging"
	"github.com/spf13/cobra"

	"github.com/ava-labs/weightedvm/config"
)

const loggerName = "weighted-cli"

var (
	configPath string
	envFile    string
	logLevel   string
	dbDir      string
	genesisArg string
	quiet      bool

	cfg config.Config
	log logging.Logger = logging.NoLog{}

	rootCmd = &cobra.Command{
		Use:        "weighted-cli",
		Short:      "Weighted pool CLI",
		SuggestFor: []string{"weighted-cli", "weightedcli"},
	}
)

func init() {
	cobra.EnablePrefixMatching = true
	rootCmd.AddCommand(
		keyCmd,
		genesisCmd,
		deriveCmd,
		runCmd,
		poolCmd,
		serveCmd,
	)
	rootCmd.SilenceErrors = true
	rootCmd.SilenceUsage = true
	rootCmd.CompletionOptions.HiddenDefaultCmd = true

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configPath, "config", "", "path to a YAML config file")
	flags.StringVar(&envFile, "env-file", ".env", "optional file of WEIGHTEDVM_ variables")
	flags.StringVar(&logLevel, "log-level", "", "log level (overrides config)")
	flags.StringVar(&dbDir, "database", "", "database directory (overrides config)")
	flags.StringVar(&genesisArg, "genesis", "", "genesis file (overrides config)")
	flags.BoolVar(&quiet, "quiet", false, "only write logs to the log file")

	rootCmd.PersistentPreRunE = func(*cobra.Command, []string) error {
		var err error
		cfg, err = config.Load(configPath, envFile)
		if err != nil {
			return err
		}
		if logLevel != "" {
			cfg.LogLevel = logLevel
		}
		if dbDir != "" {
			cfg.DatabaseDir = dbDir
		}
		if genesisArg != "" {
			cfg.GenesisPath = genesisArg
		}
		if err := cfg.Validate(); err != nil {
			return err
		}
		log, err = newLogger(cfg.LogDir, loggerName, cfg.Level(), quiet)
		return err
	}
	rootCmd.PersistentPostRun = func(*cobra.Command, []string) {
		log.Stop()
	}
}

func Execute() error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	return rootCmd.ExecuteContext(ctx)
}

func printJSON(w io.Writer, v interface{}) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(b))
	return err
}

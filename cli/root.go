// Package cli implements the loan-widget command line.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"loan-widget/config"
	"loan-widget/logging"
)

// Version information (set at build time).
var (
	version = "dev"
	commit  = "none"
)

type globalOptions struct {
	configFile string
	logLevel   string
	logFormat  string
	storage    string

	cfg *config.Config
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &globalOptions{}

	cmd := &cobra.Command{
		Use:           "loan-widget",
		Short:         "Amortized loan payment calculator",
		Version:       fmt.Sprintf("%s (%s)", version, commit),
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return opts.load()
		},
	}

	cmd.PersistentFlags().StringVar(&opts.configFile, "config", "", "config file (default is $HOME/.config/loan-widget/config.yaml)")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "override logging level (debug, info, warn, error)")
	cmd.PersistentFlags().StringVar(&opts.logFormat, "log-format", "", "override logging format (json, console)")
	cmd.PersistentFlags().StringVar(&opts.storage, "storage", "", "override storage backend (memory, sqlite, redis)")

	cmd.AddCommand(
		newServeCmd(opts),
		newCalcCmd(opts),
		newPromptCmd(opts),
		newTUICmd(opts),
		newHistoryCmd(opts),
	)
	return cmd
}

func (o *globalOptions) load() error {
	loader := config.NewLoader()
	if o.configFile != "" {
		loader.SetConfigFile(o.configFile)
	}

	cfg, err := loader.Load()
	if err != nil {
		return err
	}

	if o.logLevel != "" {
		cfg.Logging.Level = o.logLevel
	}
	if o.logFormat != "" {
		cfg.Logging.Format = o.logFormat
	}
	if o.storage != "" {
		cfg.Storage.Backend = o.storage
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid flags: %w", err)
	}

	logging.Init(logging.Config{
		Level:        cfg.Logging.Level,
		Format:       cfg.Logging.Format,
		EnableCaller: cfg.Logging.EnableCaller,
	})
	if used := loader.ConfigFileUsed(); used != "" {
		log := logging.Component("cli")
		log.Debug().Str("config_file", used).Msg("loaded config file")
	}

	o.cfg = cfg
	return nil
}

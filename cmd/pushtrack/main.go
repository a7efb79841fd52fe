// Package main implements pushtrack, a CLI for decoding push payloads and
// replaying host callbacks through the push tracking manager.
package main

import (
	"fmt"
	"os"

	"github.com/goliatone/go-push-tracking/pkg/config"
	"github.com/goliatone/go-push-tracking/pkg/interfaces/logger"
	"github.com/goliatone/go-push-tracking/pkg/logging/zaplogger"
	"github.com/spf13/cobra"
)

var version = "dev"

type rootFlags struct {
	configPath string
	envPrefix  string
	logLevel   string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}
	root := &cobra.Command{
		Use:   "pushtrack",
		Short: "Decode push payloads and replay push callbacks",
		Long: `pushtrack exercises the push tracking pipeline outside a host app.

It decodes notification payloads into campaign properties, replays recorded
host callbacks against a simulated host, and exports tracked events.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.PersistentFlags().StringVar(&flags.configPath, "config", "", "YAML config file")
	root.PersistentFlags().StringVar(&flags.envPrefix, "env-prefix", config.DefaultEnvPrefix, "environment override prefix")
	root.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "override logging.level")

	root.AddCommand(newDecodeCmd())
	root.AddCommand(newReplayCmd(flags))
	root.AddCommand(newEventsCmd(flags))
	return root
}

func (f *rootFlags) load() (config.Config, error) {
	cfg, err := config.LoadFile(f.configPath, f.envPrefix)
	if err != nil {
		return config.Config{}, err
	}
	if f.logLevel != "" {
		cfg.Logging.Level = f.logLevel
		if err := cfg.Validate(); err != nil {
			return config.Config{}, err
		}
	}
	return cfg, nil
}

func newLogger(cfg config.Config) (logger.Logger, error) {
	lgr, err := zaplogger.NewProduction(cfg.Logging.Level)
	if err != nil {
		return nil, fmt.Errorf("pushtrack: logger: %w", err)
	}
	return lgr, nil
}

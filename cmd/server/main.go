package main

import (
	"os"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/autoasmr/api/internal/config"
	"github.com/autoasmr/api/internal/logger"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "autoasmr",
		Short:         "Generate and publish short ASMR clips on a weekly schedule",
		SilenceUsage: true,
	}
	root.AddCommand(newServeCmd(), newNextSlotCmd(), newRunOnceCmd())
	return root
}

// setup loads configuration and builds the process logger.
func setup() (*config.Config, *zap.SugaredLogger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, errors.Wrap(err, "failed to load config")
	}
	log, err := logger.New(cfg.Server.Env, cfg.Server.LogLevel)
	if err != nil {
		return nil, nil, errors.Wrap(err, "failed to build logger")
	}
	return cfg, log, nil
}

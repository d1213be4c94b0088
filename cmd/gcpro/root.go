package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/Alp4ka/gcpro"
)

// app is the state shared by all commands.
type app struct {
	configPath string
	verbose    bool

	cfg    *gcpro.Config
	logger *zap.Logger
}

func newRootCmd() *cobra.Command {
	a := new(app)

	rootCmd := &cobra.Command{
		Use:           "gcpro",
		Short:         "Command line client for the GoCardless Pro API",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init()
		},
		PersistentPostRun: func(cmd *cobra.Command, _ []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}

	rootCmd.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "path to a config file")
	rootCmd.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "log requests")

	rootCmd.AddCommand(
		newListCmd(a),
		newPagesCmd(a),
		newExportCmd(a),
		newSandboxCmd(a),
	)

	return rootCmd
}

func (a *app) init() error {
	cfg, err := gcpro.LoadConfig(a.configPath)
	if err != nil {
		return err
	}
	a.cfg = cfg

	zcfg := zap.NewProductionConfig()
	zcfg.Encoding = "console"
	zcfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	zcfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	if a.verbose {
		zcfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}

	a.logger, err = zcfg.Build()

	return err
}

func (a *app) client() (*gcpro.Client, error) {
	return gcpro.NewFromConfig(a.cfg, gcpro.WithLogger(a.logger))
}

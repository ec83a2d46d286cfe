package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kailas-cloud/hitmap/internal/config"
	logpkg "github.com/kailas-cloud/hitmap/internal/logger"
)

// globals holds the persistent flags shared by all subcommands.
type globals struct {
	configPath string
	env        string
	logLevel   string
}

func newRootCmd() *cobra.Command {
	g := &globals{}

	root := &cobra.Command{
		Use:           "hitmap",
		Short:         "Map Elasticsearch search responses to domain objects",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&g.configPath, "config", "c", "", "config file (default: config/<env>.yaml)")
	root.PersistentFlags().StringVar(&g.env, "env", config.GetEnv(), "environment: local, dev, docker, prod, test")
	root.PersistentFlags().StringVar(&g.logLevel, "log-level", "", "log level override: debug, info, warn, error")

	root.AddCommand(newServeCmd(g), newMapCmd(g), newVersionCmd())
	return root
}

// load reads the config and builds the logger.
func (g *globals) load() (config.Config, *zap.Logger, error) {
	var (
		cfg config.Config
		err error
	)
	if g.configPath != "" {
		cfg, err = config.LoadFile(g.configPath)
	} else {
		cfg, err = config.Load(g.env)
	}
	if err != nil {
		return config.Config{}, nil, err
	}

	level := cfg.Logging.Level
	if g.logLevel != "" {
		level = g.logLevel
	}
	logger, err := logpkg.NewLogger(g.env, level)
	if err != nil {
		return config.Config{}, nil, err
	}
	return cfg, logger, nil
}

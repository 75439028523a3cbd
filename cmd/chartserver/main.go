package main

import (
	"fmt"
	"os"

	"stockchart/config"
	"stockchart/logger"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
)

func main() {
	app := &cli.App{
		Name:  "chartserver",
		Usage: "candlestick charts with technical indicators and AI chart analysis",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config-dir",
				Usage:   "directory holding config.yaml",
				EnvVars: []string{"STOCKCHART_CONFIG_DIR"},
			},
		},
		DefaultCommand: "serve",
		Commands: []*cli.Command{
			serveCommand(),
			importBarsCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// setup loads config and builds the logger shared by every command.
func setup(c *cli.Context) (*config.Config, *zap.Logger, error) {
	var (
		cfg *config.Config
		err error
	)
	if dir := c.String("config-dir"); dir != "" {
		cfg, err = config.LoadFrom(dir)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, nil, err
	}

	log, err := logger.New(cfg.Log)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create logger: %w", err)
	}
	return cfg, log, nil
}

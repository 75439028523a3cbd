package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"stockchart/config"
	"stockchart/internal/analysis"
	"stockchart/internal/chart"
	"stockchart/internal/metrics"
	"stockchart/internal/quote"
	"stockchart/internal/server"
	"stockchart/internal/session"
	"stockchart/pkg/alphavantage"
	"stockchart/pkg/storage/postgres"
	"stockchart/pkg/vision"

	"github.com/spf13/afero"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
)

const sessionIdle = 12 * time.Hour

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "run the chart web server",
		Action: func(c *cli.Context) error {
			cfg, log, err := setup(c)
			if err != nil {
				return err
			}
			defer log.Sync()

			ctx, stop := signal.NotifyContext(c.Context, syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			return serve(ctx, cfg, log)
		},
	}
}

func serve(ctx context.Context, cfg *config.Config, log *zap.Logger) error {
	source, closeSource, err := newSource(cfg, log)
	if err != nil {
		return err
	}
	defer closeSource()

	visionClient := vision.NewClient(cfg.Vision.BaseURL, cfg.Vision.APIKey, cfg.Vision.Model, cfg.Vision.Timeout)
	runner := analysis.NewRunner(afero.NewOsFs(), visionClient, chart.DefaultOptions, log)

	srv := server.New(cfg.Server, source, session.NewStore(sessionIdle), runner, metrics.New(), log)

	log.Info("chart server starting",
		zap.String("source", source.Name()),
		zap.String("vision_model", visionClient.Model()),
	)
	return srv.ListenAndServe(ctx)
}

// newSource builds the configured quote source and a func releasing its resources.
func newSource(cfg *config.Config, log *zap.Logger) (quote.Source, func(), error) {
	switch cfg.Quote.Source {
	case config.SourceLive:
		if cfg.Quote.APIKey == "" {
			log.Warn("requests will be sent without an API key",
				zap.Error(quote.ErrMissingCredential),
				zap.String("hint", "set ALPHAVANTAGE_API_KEY or quote.api_key"),
			)
		}
		client := alphavantage.NewRESTClient(cfg.Quote.BaseURL, cfg.Quote.APIKey, cfg.Quote.Timeout)
		return quote.NewLiveSource(client), func() {}, nil

	case config.SourceFixture:
		log.Info("serving bars from fixture", zap.String("path", cfg.Quote.FixturePath))
		return quote.NewFixtureSource(afero.NewOsFs(), cfg.Quote.FixturePath), func() {}, nil

	case config.SourceWarehouse:
		pg, err := postgres.InitializeAndMigrateDailyBarRecord(cfg.Postgres, cfg.Log.Environment, false)
		if err != nil {
			return nil, nil, fmt.Errorf("warehouse: %w", err)
		}
		closeFn := func() {
			if err := pg.Close(); err != nil {
				log.Warn("close warehouse", zap.Error(err))
			}
		}
		return quote.NewWarehouseSource(pg), closeFn, nil
	}
	return nil, nil, fmt.Errorf("unknown quote source %q", cfg.Quote.Source)
}

package analysis

import (
	"context"
	"errors"
	"io"
	"time"

	"stockchart/internal/chart"
	"stockchart/internal/session"

	"github.com/spf13/afero"
	"go.uber.org/zap"
)

// ErrNotLoaded is returned when there is no chart to analyze yet.
var ErrNotLoaded = errors.New("no chart loaded")

// Analyzer turns a chart image into a narrative.
type Analyzer interface {
	Analyze(ctx context.Context, image []byte) (string, error)
}

// Runner snapshots a session's chart and sends it to the vision model.
type Runner struct {
	fs       afero.Fs
	analyzer Analyzer
	opts     chart.Options
	logger   *zap.Logger
}

func NewRunner(fs afero.Fs, analyzer Analyzer, opts chart.Options, logger *zap.Logger) *Runner {
	return &Runner{fs: fs, analyzer: analyzer, opts: opts, logger: logger}
}

// Run analyzes the chart in v. The temp snapshot is gone when Run returns.
func (r *Runner) Run(ctx context.Context, v session.View) (string, error) {
	if v.State != session.Loaded {
		return "", ErrNotLoaded
	}

	opts := r.opts
	opts.Title = v.Symbol + "  " + v.Start + " to " + v.End

	var narrative string
	err := WithSnapshot(r.fs,
		func(w io.Writer) error {
			return chart.Render(w, v.Bars, v.Overlays, opts)
		},
		func(path string, data []byte) error {
			started := time.Now()
			r.logger.Debug("sending chart snapshot",
				zap.String("session", v.ID),
				zap.String("path", path),
				zap.Int("bytes", len(data)),
			)
			out, err := r.analyzer.Analyze(ctx, data)
			if err != nil {
				return err
			}
			r.logger.Info("analysis completed",
				zap.String("session", v.ID),
				zap.String("symbol", v.Symbol),
				zap.Duration("elapsed", time.Since(started)),
			)
			narrative = out
			return nil
		},
	)
	if err != nil {
		return "", err
	}
	return narrative, nil
}

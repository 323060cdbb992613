// Package pipeline runs one export: it fetches the station directory, queries
// every station for every configured metric on a bounded worker pool, and
// assembles the per-metric station maps.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/chrissnell/mesonet-exporter/internal/aggregate"
	"github.com/chrissnell/mesonet-exporter/internal/mesonet"
	"github.com/chrissnell/mesonet-exporter/pkg/config"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Settings is the subset of the configuration a run needs
type Settings struct {
	Workers    int
	ActiveOnly bool
	Metrics    []config.MetricData
	MergeRules []aggregate.MergeRule
	Report     config.ReportData
}

// SettingsFromConfig extracts run settings from the loaded configuration
func SettingsFromConfig(cfg *config.ConfigData) Settings {
	return Settings{
		Workers:    cfg.API.Workers,
		ActiveOnly: cfg.API.ActiveOnly,
		Metrics:    cfg.Metrics,
		MergeRules: cfg.MergeRules,
		Report:     cfg.Report,
	}
}

// Pipeline executes export runs against the mesonet API
type Pipeline struct {
	api      mesonet.API
	settings Settings
	logger   *zap.SugaredLogger
	now      func() time.Time
}

// New creates a pipeline
func New(api mesonet.API, settings Settings, logger *zap.SugaredLogger) *Pipeline {
	if settings.Workers < 1 {
		settings.Workers = 1
	}
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Pipeline{
		api:      api,
		settings: settings,
		logger:   logger,
		now:      time.Now,
	}
}

// Run performs one full export. Individual request failures are absorbed
// into the result; only context cancellation aborts the run.
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	runID := uuid.NewString()
	logger := p.logger.With("run_id", runID)
	started := p.now()

	stations := p.fetchStations(ctx, logger)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Every station's age is measured against the same instant
	now := p.now().UTC()
	tasks := p.plan(stations, now)
	logger.Infof("querying %d stations for %d metrics (%d tasks, %d workers)",
		len(stations), len(p.settings.Metrics), len(tasks), p.settings.Workers)

	outcomes := make([]outcome, len(tasks))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.settings.Workers)
	for i := range tasks {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			outcomes[i] = p.execute(gctx, tasks[i])
			return nil
		})
	}
	g.Wait()

	if err := ctx.Err(); err != nil {
		logger.Warnf("run cancelled after %v", p.now().Sub(started))
		return nil, fmt.Errorf("run %s cancelled: %w", runID, err)
	}

	res := p.assemble(logger, stations, tasks, outcomes, now)
	res.RunID = runID
	res.Started = started
	res.Duration = p.now().Sub(started)

	logger.Infow("run complete",
		"stations", len(stations),
		"metrics", len(res.Metrics)+len(res.Wind),
		"requests", res.Requests,
		"duration", res.Duration,
	)
	return res, nil
}

// fetchStations loads the station directory. A failed fetch is logged and
// yields no stations so the run still produces (empty) files.
func (p *Pipeline) fetchStations(ctx context.Context, logger *zap.SugaredLogger) []mesonet.Station {
	all, err := p.api.Stations(ctx)
	if err != nil {
		logger.Errorf("failed to retrieve stations: %v", err)
		return nil
	}

	if !p.settings.ActiveOnly {
		return all
	}

	active := make([]mesonet.Station, 0, len(all))
	for _, st := range all {
		if st.Active() {
			active = append(active, st)
		}
	}
	logger.Debugf("%d of %d stations are active", len(active), len(all))
	return active
}

package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/chrissnell/mesonet-exporter/internal/controllers"
	"github.com/chrissnell/mesonet-exporter/internal/controllers/restserver"
	"github.com/chrissnell/mesonet-exporter/internal/mesonet"
	"github.com/chrissnell/mesonet-exporter/internal/metrics"
	"github.com/chrissnell/mesonet-exporter/internal/output"
	"github.com/chrissnell/mesonet-exporter/internal/pipeline"
	"github.com/chrissnell/mesonet-exporter/pkg/config"
	"go.uber.org/zap"
)

// App represents the main application
type App struct {
	config  *config.ConfigData
	logger  *zap.SugaredLogger
	metrics *metrics.Metrics
	state   *restserver.State
}

// New creates a new application instance
func New(cfg *config.ConfigData, logger *zap.SugaredLogger) *App {
	return &App{
		config:  cfg,
		logger:  logger,
		metrics: metrics.New(),
		state:   restserver.NewState(),
	}
}

// Run exports once, or every config.Interval, and blocks until done. With a
// zero interval and no server it returns after the first run along with that
// run's error.
func (a *App) Run(ctx context.Context) error {
	var wg sync.WaitGroup

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	client := mesonet.NewClient(a.config.API.BaseURL, a.config.API.Token, a.logger,
		mesonet.WithTimeout(a.config.API.Timeout),
		mesonet.WithRequestInterval(a.config.API.RequestInterval),
		mesonet.WithObserver(a.metrics),
	)

	writer, err := output.NewWriter(a.config.Output.Dir, a.logger)
	if err != nil {
		return err
	}

	p := pipeline.New(client, pipeline.SettingsFromConfig(a.config), a.logger)

	serving := a.config.Server.ListenAddr != ""
	if serving {
		ctrl := restserver.NewController(ctx, &wg, a.config.Server.ListenAddr, a.state, a.metrics.Handler(), a.logger)
		if err := ctrl.StartController(); err != nil {
			return err
		}
	}

	// Set up signal handling
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigs)
	go func() {
		select {
		case <-sigs:
			a.logger.Info("shutdown signal received, initiating graceful shutdown...")
			cancel()
		case <-ctx.Done():
		}
	}()

	var runErr error
	export := func(ctx context.Context) error {
		return a.runOnce(ctx, p, writer)
	}

	switch {
	case a.config.Interval > 0:
		controllers.RunPeriodicTask(ctx, controllers.PeriodicTask{
			Name:     "export",
			Interval: a.config.Interval,
			Task:     export,
		}, a.logger)
	case serving:
		if err := export(ctx); err != nil {
			a.logger.Errorf("export failed: %v", err)
		}
		<-ctx.Done()
	default:
		runErr = export(ctx)
	}

	cancel()
	a.logger.Info("waiting for all workers to terminate...")
	wg.Wait()
	a.logger.Info("shutdown complete")

	if errors.Is(runErr, context.Canceled) {
		return nil
	}
	return runErr
}

// runOnce performs one export and publishes its outcome
func (a *App) runOnce(ctx context.Context, p *pipeline.Pipeline, writer *output.Writer) error {
	started := time.Now()

	res, err := p.Run(ctx)
	if err != nil {
		a.finish(restserver.RunStatus{Started: started}, nil, nil, 0, time.Since(started), err)
		return err
	}

	docs := res.Documents()
	files, err := writer.WriteAll(docs)
	if err != nil {
		err = fmt.Errorf("run %s: %d of %d files failed: %w", res.RunID, len(docs)-len(files), len(docs), err)
		a.logger.Errorw("run failed", "run_id", res.RunID, "error", err)
	}

	status := restserver.RunStatus{RunID: res.RunID, Started: res.Started}
	a.finish(status, docs, files, res.Stations, time.Since(started), err)
	return err
}

func (a *App) finish(status restserver.RunStatus, docs map[string]any, files []string, stations int, elapsed time.Duration, err error) {
	status.Duration = elapsed.Round(time.Millisecond).String()
	status.OK = err == nil
	status.Stations = stations
	status.Files = files
	if status.Files == nil {
		status.Files = []string{}
	}
	if err != nil {
		status.Error = err.Error()
	}

	a.metrics.ObserveRun(stations, len(files), elapsed, err)
	a.state.Publish(restserver.Snapshot{Status: status, Documents: docs})
}

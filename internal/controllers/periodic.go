// Package controllers holds the long-running pieces of the exporter: the
// periodic export loop and the HTTP server.
package controllers

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// PeriodicTask represents a periodic task configuration
type PeriodicTask struct {
	Name     string
	Interval time.Duration
	Task     func(ctx context.Context) error
}

// RunPeriodicTask runs a task every Interval until the context is
// cancelled. Tickers only fire after the first interval has elapsed, so the
// task also runs once immediately.
func RunPeriodicTask(ctx context.Context, task PeriodicTask, logger *zap.SugaredLogger) {
	logger.Infof("Starting periodic task: %s (interval: %v)", task.Name, task.Interval)

	run := func() {
		if err := task.Task(ctx); err != nil {
			logger.Errorf("Error in periodic task %s: %v", task.Name, err)
		}
	}
	run()

	ticker := time.NewTicker(task.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			run()
		case <-ctx.Done():
			logger.Infof("Stopping periodic task: %s", task.Name)
			return
		}
	}
}

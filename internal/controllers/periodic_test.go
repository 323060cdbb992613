package controllers

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"
)

func TestRunPeriodicTask(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var runs atomic.Int32
	done := make(chan struct{})

	go func() {
		RunPeriodicTask(ctx, PeriodicTask{
			Name:     "export",
			Interval: 10 * time.Millisecond,
			Task: func(context.Context) error {
				if runs.Add(1) >= 3 {
					cancel()
				}
				return errors.New("errors are logged, not fatal")
			},
		}, zap.NewNop().Sugar())
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("RunPeriodicTask did not stop after cancellation")
	}
	if runs.Load() < 3 {
		t.Errorf("runs = %d, want at least 3", runs.Load())
	}
}

func TestRunPeriodicTaskRunsImmediately(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	var runs atomic.Int32
	RunPeriodicTask(ctx, PeriodicTask{
		Name:     "export",
		Interval: time.Hour,
		Task: func(context.Context) error {
			runs.Add(1)
			cancel()
			return nil
		},
	}, zap.NewNop().Sugar())

	if runs.Load() != 1 {
		t.Errorf("runs = %d, want 1", runs.Load())
	}
}

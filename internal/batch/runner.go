package batch

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/limaJavier/fjsp/internal/logger"
	"github.com/limaJavier/fjsp/internal/metrics"
	"github.com/limaJavier/fjsp/pkg/model"
)

// StatusError marks rows of instances that produced no solve
const StatusError = "error"

// Row is the outcome of one instance in a batch. Makespan and Gap are nil when absent
type Row struct {
	RunID       string
	Instance    string
	Jobs        int
	Machines    int
	Operations  int
	Binary      int
	Continuous  int
	Constraints int
	Makespan    *float64
	Gap         *float64
	Time        time.Duration
	Status      string
	Error       string
}

func (row Row) Failed() bool {
	return row.Error != ""
}

type Runner struct {
	Scheduler model.Scheduler
	Workers   int // Instances solved concurrently; values below 1 run sequentially
	Logger    logger.Logger
	Metrics   metrics.Recorder
}

// Run schedules every path and returns one row per path in input order. Malformed or invalid instances
// become error rows and the batch goes on; solver failures and inconsistent decodings become error rows
// too but are also returned joined once every path has been processed
func (runner Runner) Run(ctx context.Context, paths []string) ([]Row, error) {
	if runner.Logger == nil {
		runner.Logger = logger.NopLogger{}
	}
	if runner.Metrics == nil {
		runner.Metrics = metrics.NopRecorder{}
	}

	runID := uuid.NewString()
	runner.Logger.Infof("batch %v: %d instances with %d workers", runID, len(paths), max(runner.Workers, 1))

	rows := make([]Row, len(paths))
	failures := make([]error, len(paths))

	var group errgroup.Group
	group.SetLimit(max(runner.Workers, 1))
	for i, path := range paths {
		group.Go(func() error {
			rows[i], failures[i] = runner.run(ctx, runID, path)
			return nil
		})
	}
	_ = group.Wait()

	return rows, errors.Join(failures...)
}

func (runner Runner) run(ctx context.Context, runID, path string) (Row, error) {
	row := Row{RunID: runID, Instance: filepath.Base(path)}
	fail := func(err error) Row {
		row.Status, row.Error = StatusError, err.Error()
		return row
	}

	if err := ctx.Err(); err != nil {
		return fail(err), fmt.Errorf("%v: %w", row.Instance, err)
	}

	//** Load instance
	instance, err := model.InstanceFromFile(path)
	if err != nil {
		runner.Logger.Warnf("skipping %v: %v", path, err)
		runner.Metrics.IncFailure(metrics.FailureInstance)
		return fail(err), nil
	}
	stats := instance.Stats()
	row.Jobs, row.Machines, row.Operations = stats.Jobs, stats.Machines, stats.Operations

	//** Schedule
	start := time.Now()
	solution, err := runner.Scheduler.Schedule(ctx, instance)
	if err != nil {
		row.Time = time.Since(start)
		switch {
		case model.IsInstanceError(err):
			runner.Logger.Warnf("skipping %v: %v", path, err)
			runner.Metrics.IncFailure(metrics.FailureInstance)
			return fail(err), nil
		case model.IsDecodingInconsistency(err):
			runner.Logger.Errorf("%v: %v", path, err)
			runner.Metrics.IncFailure(metrics.FailureDecoding)
		default:
			runner.Logger.Errorf("%v: %v", path, err)
			runner.Metrics.IncFailure(metrics.FailureSolver)
		}
		return fail(err), err
	}

	row.Binary, row.Continuous, row.Constraints = solution.Stats.Binary, solution.Stats.Continuous, solution.Stats.Constraints
	row.Makespan, row.Gap = solution.Makespan, solution.Gap
	row.Time = solution.Runtime
	row.Status = solution.Status.String()

	runner.Metrics.ObserveModel(row.Binary, row.Continuous, row.Constraints)
	runner.Metrics.ObserveSolve(row.Status, row.Time)
	runner.Logger.Infof("%v: %v in %v", row.Instance, row.Status, row.Time)
	return row, nil
}

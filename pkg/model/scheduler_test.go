package model

import (
	"context"
	"errors"
	"testing"

	"github.com/limaJavier/fjsp/pkg/milp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSolver struct {
	result *milp.Result
	err    error
}

func (solver fakeSolver) Name() string {
	return "fake"
}

func (solver fakeSolver) Solve(ctx context.Context, problem *milp.Problem, options milp.Options) (*milp.Result, error) {
	return solver.result, solver.err
}

func branchBound(t *testing.T) milp.Solver {
	t.Helper()
	solver, err := milp.NewSolver(milp.BranchBound, nil)
	require.NoError(t, err)
	return solver
}

func TestMILPScheduler(t *testing.T) {
	t.Run("Flexible operation goes to the faster machine", func(t *testing.T) {
		//** Arrange
		instance := flexibleInstance(t)
		scheduler := NewMILPScheduler(branchBound(t), SumPolicy{}, milp.Options{}, DefaultAssignmentThreshold, nil)

		//** Act
		solution, err := scheduler.Schedule(context.Background(), instance)

		//** Assert
		require.NoError(t, err)
		assert.Equal(t, milp.Optimal, solution.Status)
		require.Len(t, solution.Operations, 2)
		assert.Equal(t, ScheduledOperation{Operation: 0, Job: 0, Position: 0, Machine: 1, Start: 0, End: 3}, solution.Operations[0])
		assert.Equal(t, ScheduledOperation{Operation: 1, Job: 0, Position: 1, Machine: 1, Start: 3, End: 5}, solution.Operations[1])
		require.NotNil(t, solution.Makespan)
		assert.Equal(t, 5.0, *solution.Makespan)
		require.NotNil(t, solution.Gap)
		assert.Zero(t, *solution.Gap)
		assert.NoError(t, Verify(instance, solution))
	})

	t.Run("Two jobs competing for both machines", func(t *testing.T) {
		//** Arrange
		instance := bigMInstance(t)
		scheduler := NewMILPScheduler(branchBound(t), SumMaxPolicy{}, milp.Options{}, DefaultAssignmentThreshold, nil)

		//** Act
		solution, err := scheduler.Schedule(context.Background(), instance)

		//** Assert
		require.NoError(t, err)
		assert.Equal(t, milp.Optimal, solution.Status)
		require.NotNil(t, solution.Makespan)
		assert.Equal(t, 11.0, *solution.Makespan)
		assert.NoError(t, Verify(instance, solution))
		assert.Equal(t, ModelStats{Binary: 6, Continuous: 5, Constraints: 12, Pairs: 2}, solution.Stats)
	})

	t.Run("Solver failure is wrapped", func(t *testing.T) {
		//** Arrange
		failure := errors.New("license expired")
		scheduler := NewMILPScheduler(fakeSolver{err: failure}, nil, milp.Options{}, 0, nil)

		//** Act
		solution, err := scheduler.Schedule(context.Background(), flexibleInstance(t))

		//** Assert
		assert.Nil(t, solution)
		assert.ErrorIs(t, err, failure)
		assert.ErrorContains(t, err, "fake solver")
	})

	t.Run("Inconsistent solver output", func(t *testing.T) {
		//** Arrange
		values := map[string]float64{"y_1_0": 1, "y_1_1": 1, "y_2_1": 0, "s_0": 0, "s_1": 1, "x_1_0_1": 1, "cmax": 3}
		result := &milp.Result{Status: milp.Optimal, Objective: 3, Bound: 3, Values: values}
		scheduler := NewMILPScheduler(fakeSolver{result: result}, nil, milp.Options{}, 0, nil)

		//** Act
		_, err := scheduler.Schedule(context.Background(), flexibleInstance(t))

		//** Assert
		assert.True(t, IsDecodingInconsistency(err))
	})

	t.Run("Time limit without incumbent", func(t *testing.T) {
		//** Arrange
		result := &milp.Result{Status: milp.TimeLimitInfeasible, Bound: 4}
		scheduler := NewMILPScheduler(fakeSolver{result: result}, nil, milp.Options{}, 0, nil)

		//** Act
		solution, err := scheduler.Schedule(context.Background(), flexibleInstance(t))

		//** Assert
		require.NoError(t, err)
		assert.Equal(t, milp.TimeLimitInfeasible, solution.Status)
		assert.False(t, solution.HasSchedule())
		assert.Nil(t, solution.Makespan)
	})

	t.Run("Invalid instance never reaches the solver", func(t *testing.T) {
		scheduler := NewMILPScheduler(fakeSolver{err: errors.New("unreachable")}, nil, milp.Options{}, 0, nil)

		_, err := scheduler.Schedule(context.Background(), &Instance{Name: "broken"})

		assert.True(t, IsInstanceError(err))
	})
}

package model

import (
	"context"
	"fmt"

	"github.com/limaJavier/fjsp/internal/logger"
	"github.com/limaJavier/fjsp/pkg/milp"
)

type milpScheduler struct {
	solver    milp.Solver
	policy    BigMPolicy
	options   milp.Options
	threshold float64
	logger    logger.Logger
}

func NewMILPScheduler(solver milp.Solver, policy BigMPolicy, options milp.Options, threshold float64, log logger.Logger) Scheduler {
	if log == nil {
		log = logger.NopLogger{}
	}
	if policy == nil {
		policy = SumPolicy{}
	}
	return &milpScheduler{
		solver:    solver,
		policy:    policy,
		options:   options,
		threshold: threshold,
		logger:    log,
	}
}

func (scheduler *milpScheduler) Schedule(ctx context.Context, instance *Instance) (*Solution, error) {
	//** Build model
	model, err := BuildModel(instance, scheduler.policy)
	if err != nil {
		return nil, err
	}
	scheduler.logger.Infof("%v: model built (big-M %v/%v): %d binary, %d continuous, %d constraints, %d disjunctive pairs",
		instance.Name, model.Policy, model.BigM, model.Stats.Binary, model.Stats.Continuous, model.Stats.Constraints, model.Stats.Pairs)

	//** Solve model
	result, err := scheduler.solver.Solve(ctx, model.Problem, scheduler.options)
	if err != nil {
		return nil, fmt.Errorf("%v: %v solver: %w", instance.Name, scheduler.solver.Name(), err)
	}
	scheduler.logger.Infof("%v: %v terminated with status %v in %v (objective %v, bound %v)",
		instance.Name, scheduler.solver.Name(), result.Status, result.Runtime, result.Objective, result.Bound)

	if result.Status.HasIncumbent() {
		for name, value := range fractionalAssignments(model, result, tieTolerance) {
			scheduler.logger.Debugw("fractional assignment", map[string]any{"instance": instance.Name, "variable": name, "value": value})
		}
	}

	//** Decode solution
	return Decode(model, result, scheduler.threshold)
}

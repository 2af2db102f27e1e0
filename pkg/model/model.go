package model

import (
	"math"

	"github.com/limaJavier/fjsp/pkg/milp"
	"github.com/samber/lo"
)

type ModelStats struct {
	Binary      int `json:"binary_vars" yaml:"binary_vars"`
	Continuous  int `json:"continuous_vars" yaml:"continuous_vars"`
	Constraints int `json:"constraints" yaml:"constraints"`
	Pairs       int `json:"disjunctive_pairs" yaml:"disjunctive_pairs"` // (machine, a, b) triples carrying an order variable
}

// Model is the MILP formulation of one instance. It is built per solve and discarded afterwards
type Model struct {
	Instance *Instance
	BigM     float64
	Policy   string
	Problem  *milp.Problem

	Assign   []map[int]int          // Assign[operation][machine] is the index of y
	Start    []int                  // Start[operation] is the index of s
	Order    map[int]map[[2]int]int // Order[machine][{a, b}] is the index of x, a < b
	Makespan int                    // Index of cmax
	Stats    ModelStats

	indexer indexer
}

// BuildModel validates the instance, derives big-M once and generates the full formulation
func BuildModel(instance *Instance, policy BigMPolicy) (*Model, error) {
	if err := instance.Validate(); err != nil {
		return nil, err
	}
	bigM, err := policy.BigM(instance)
	if err != nil {
		return nil, err
	}
	return newModel(instance, bigM, policy.Name()), nil
}

func newModel(instance *Instance, bigM float64, policy string) *Model {
	//** Initialize dependencies
	evaluator := newPredicateEvaluator(instance)
	indexer := newIndexer()
	generator := newPairGenerator(instance)
	problem := milp.NewProblem(instance.Name)

	model := &Model{
		Instance: instance,
		BigM:     bigM,
		Policy:   policy,
		Problem:  problem,
		Assign:   make([]map[int]int, len(instance.Operations())),
		Start:    make([]int, len(instance.Operations())),
		Order:    make(map[int]map[[2]int]int),
		indexer:  indexer,
	}

	//** Declare variables
	for _, operation := range instance.Operations() {
		model.Assign[operation.Id] = make(map[int]int, len(operation.Options))
		for _, option := range operation.Options {
			model.Assign[operation.Id][option.Machine] = problem.AddBinary(indexer.Assign(option.Machine, operation.Id))
		}
	}
	for _, operation := range instance.Operations() {
		model.Start[operation.Id] = problem.AddContinuous(indexer.Start(operation.Id), 0, math.Inf(1))
	}
	pairs := generator.MachinePairs()
	for _, pair := range pairs {
		if _, ok := model.Order[pair.Machine]; !ok {
			model.Order[pair.Machine] = make(map[[2]int]int)
		}
		model.Order[pair.Machine][[2]int{pair.A, pair.B}] = problem.AddBinary(indexer.Order(pair.Machine, pair.A, pair.B))
	}
	model.Makespan = problem.AddContinuous(indexer.Makespan(), 0, math.Inf(1))

	//** Build constraints
	constraints := []func(state constraintState) []milp.Constraint{
		assignmentConstraints,
		precedenceConstraints,
		disjunctiveConstraints,
		makespanConstraints,
	}

	state := constraintState{
		instance:  instance,
		evaluator: evaluator,
		indexer:   indexer,
		generator: generator,
		problem:   problem,
		bigM:      bigM,
	}

	for _, constraint := range buildConstraints(constraints, state) {
		problem.AddConstraint(constraint)
	}
	problem.Minimize(milp.Term{Variable: model.Makespan, Coefficient: 1})

	binary, continuous, rows := problem.Counts()
	model.Stats = ModelStats{Binary: binary, Continuous: continuous, Constraints: rows, Pairs: len(pairs)}
	return model
}

// buildConstraints runs the generators on different goroutines and concatenates their output in generator
// order, so the same instance always yields the same model
func buildConstraints(constraints []func(state constraintState) []milp.Constraint, state constraintState) []milp.Constraint {
	type generated struct {
		position    int
		constraints []milp.Constraint
	}

	constraintsChannel := make(chan generated, len(constraints))
	for position, constraint := range constraints {
		go func(position int, constraint func(state constraintState) []milp.Constraint) {
			constraintsChannel <- generated{position: position, constraints: constraint(state)}
		}(position, constraint)
	}

	collected := make([][]milp.Constraint, len(constraints))
	for range constraints {
		result := <-constraintsChannel
		collected[result.position] = result.constraints
	}

	return lo.Flatten(collected)
}

// Check lists every bound, integrality or constraint violated by a full variable assignment
func (model *Model) Check(values map[string]float64, tolerance float64) []string {
	return model.Problem.Violations(values, tolerance)
}

// ScheduleValues maps a concrete schedule onto the model variables. Order variables follow start times,
// equal starts put the lower operation index first
func (model *Model) ScheduleValues(operations []ScheduledOperation) map[string]float64 {
	values := make(map[string]float64, len(model.Problem.Variables))
	byId := lo.KeyBy(operations, func(operation ScheduledOperation) int { return operation.Operation })

	makespan := 0.0
	for _, operation := range model.Instance.Operations() {
		scheduled := byId[operation.Id]
		for machine := range model.Assign[operation.Id] {
			values[model.indexer.Assign(machine, operation.Id)] = lo.Ternary(machine == scheduled.Machine, 1.0, 0.0)
		}
		values[model.indexer.Start(operation.Id)] = scheduled.Start
		makespan = math.Max(makespan, scheduled.End)
	}

	for machine, pairs := range model.Order {
		for pair := range pairs {
			a, b := byId[pair[0]], byId[pair[1]]
			first := a.Start < b.Start || (a.Start == b.Start && pair[0] < pair[1])
			values[model.indexer.Order(machine, pair[0], pair[1])] = lo.Ternary(first, 1.0, 0.0)
		}
	}

	values[model.indexer.Makespan()] = makespan
	return values
}

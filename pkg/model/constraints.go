package model

import (
	"fmt"
	"log"

	"github.com/limaJavier/fjsp/pkg/milp"
)

type constraintState struct {
	instance  *Instance
	evaluator predicateEvaluator
	indexer   indexer
	generator pairGenerator
	problem   *milp.Problem

	bigM float64
}

// variable resolves a declared variable; every name used by a generator must have been declared beforehand
func (state constraintState) variable(name string) int {
	index, ok := state.problem.Lookup(name)
	if !ok {
		log.Panicf("variable %q is used before being declared", name)
	}
	return index
}

// duration returns the terms sum_m p(o,m) * y[o][m], the processing time selected by the assignment
func (state constraintState) duration(operation int, coefficient float64) []milp.Term {
	terms := make([]milp.Term, 0)
	for _, option := range state.instance.Operation(operation).Options {
		terms = append(terms, milp.Term{
			Variable:    state.variable(state.indexer.Assign(option.Machine, operation)),
			Coefficient: coefficient * state.evaluator.ProcessingTime(operation, option.Machine),
		})
	}
	return terms
}

// sum_m y[o][m] = 1
func assignmentConstraints(state constraintState) []milp.Constraint {
	constraints := make([]milp.Constraint, 0, len(state.instance.Operations()))
	for _, operation := range state.instance.Operations() {
		terms := make([]milp.Term, 0, len(operation.Options))
		for _, option := range operation.Options {
			terms = append(terms, milp.Term{Variable: state.variable(state.indexer.Assign(option.Machine, operation.Id)), Coefficient: 1})
		}
		constraints = append(constraints, milp.Constraint{
			Name:  fmt.Sprintf("assign_%d", operation.Id),
			Terms: terms,
			Sense: milp.Equal,
			RHS:   1,
		})
	}
	return constraints
}

// s[b] - s[a] - sum_m p(a,m) * y[a][m] >= 0 for consecutive operations a, b of a job
func precedenceConstraints(state constraintState) []milp.Constraint {
	constraints := make([]milp.Constraint, 0)
	for _, operation := range state.instance.Operations() {
		predecessor, ok := state.instance.Predecessor(operation.Id)
		if !ok || !state.evaluator.Precedes(predecessor.Id, operation.Id) {
			continue
		}

		terms := []milp.Term{
			{Variable: state.variable(state.indexer.Start(operation.Id)), Coefficient: 1},
			{Variable: state.variable(state.indexer.Start(predecessor.Id)), Coefficient: -1},
		}
		constraints = append(constraints, milp.Constraint{
			Name:  fmt.Sprintf("prec_%d_%d_%d", operation.Job, predecessor.Id, operation.Id),
			Terms: append(terms, state.duration(predecessor.Id, -1)...),
			Sense: milp.GreaterEqual,
			RHS:   0,
		})
	}
	return constraints
}

// For every pair (a, b) eligible on machine m, with M = big-M:
//
//	s[b] >= s[a] + p(a,m) - M(1 - x[m][a][b]) - M(2 - y[a][m] - y[b][m])
//	s[a] >= s[b] + p(b,m) - M x[m][a][b]     - M(2 - y[a][m] - y[b][m])
//
// rewritten with the constants on the right-hand side. Both rows are slack unless a and b are both on m
func disjunctiveConstraints(state constraintState) []milp.Constraint {
	pairs := state.generator.MachinePairs()
	constraints := make([]milp.Constraint, 0, 2*len(pairs))
	bigM := state.bigM

	for _, pair := range pairs {
		startA := state.variable(state.indexer.Start(pair.A))
		startB := state.variable(state.indexer.Start(pair.B))
		order := state.variable(state.indexer.Order(pair.Machine, pair.A, pair.B))
		assignA := state.variable(state.indexer.Assign(pair.Machine, pair.A))
		assignB := state.variable(state.indexer.Assign(pair.Machine, pair.B))

		constraints = append(constraints,
			milp.Constraint{
				Name: fmt.Sprintf("disj1_%d_%d_%d", pair.Machine, pair.A, pair.B),
				Terms: []milp.Term{
					{Variable: startB, Coefficient: 1},
					{Variable: startA, Coefficient: -1},
					{Variable: order, Coefficient: -bigM},
					{Variable: assignA, Coefficient: -bigM},
					{Variable: assignB, Coefficient: -bigM},
				},
				Sense: milp.GreaterEqual,
				RHS:   state.evaluator.ProcessingTime(pair.A, pair.Machine) - 3*bigM,
			},
			milp.Constraint{
				Name: fmt.Sprintf("disj2_%d_%d_%d", pair.Machine, pair.A, pair.B),
				Terms: []milp.Term{
					{Variable: startA, Coefficient: 1},
					{Variable: startB, Coefficient: -1},
					{Variable: order, Coefficient: bigM},
					{Variable: assignA, Coefficient: -bigM},
					{Variable: assignB, Coefficient: -bigM},
				},
				Sense: milp.GreaterEqual,
				RHS:   state.evaluator.ProcessingTime(pair.B, pair.Machine) - 2*bigM,
			},
		)
	}
	return constraints
}

// cmax - s[o] - sum_m p(o,m) * y[o][m] >= 0 for the last operation o of every job
func makespanConstraints(state constraintState) []milp.Constraint {
	constraints := make([]milp.Constraint, 0, len(state.instance.Jobs))
	makespan := state.variable(state.indexer.Makespan())

	for _, operation := range state.instance.Operations() {
		if !state.evaluator.Last(operation.Id) {
			continue
		}
		terms := []milp.Term{
			{Variable: makespan, Coefficient: 1},
			{Variable: state.variable(state.indexer.Start(operation.Id)), Coefficient: -1},
		}
		constraints = append(constraints, milp.Constraint{
			Name:  fmt.Sprintf("mk_%d", operation.Job),
			Terms: append(terms, state.duration(operation.Id, -1)...),
			Sense: milp.GreaterEqual,
			RHS:   0,
		})
	}
	return constraints
}

package model

import (
	"cmp"
	"fmt"
	"math"
	"slices"

	"github.com/limaJavier/fjsp/pkg/milp"
	"github.com/samber/lo"
)

const (
	DefaultAssignmentThreshold = 0.5

	tieTolerance        = 1e-9 // Assignment values closer than this are a tie, resolved by the lowest machine id
	assignmentSumSlack  = 1e-3 // Accepted deviation of sum_m y[o][m] from 1
	fractionalPrecision = 1e6  // Time unit of instances with fractional durations
)

// Decode turns the solver's raw values into a verified schedule. Each operation takes the machine with the
// largest assignment value (lowest id on ties), which must reach threshold; times are rounded to the
// instance time unit. Values that do not describe a valid schedule yield a DecodingInconsistencyError.
// Without incumbent the solution only carries status, runtime and model counters
func Decode(model *Model, result *milp.Result, threshold float64) (*Solution, error) {
	if result == nil {
		return nil, fmt.Errorf("cannot decode %q: nil solver result", model.Instance.Name)
	}
	if threshold <= 0 || threshold > 1 {
		threshold = DefaultAssignmentThreshold
	}

	instance := model.Instance
	solution := &Solution{
		Instance: instance.Name,
		Jobs:     len(instance.Jobs),
		Machines: instance.MachineCount,
		Status:   result.Status,
		Runtime:  result.Runtime,
		Stats:    model.Stats,
	}
	if !result.Status.HasIncumbent() {
		return solution, nil
	}
	if result.Values == nil {
		return nil, &DecodingInconsistencyError{Instance: instance.Name, Violations: []string{fmt.Sprintf("status %v without variable values", result.Status)}}
	}

	violations := model.unknownVariables(result.Values)
	round := timeRounder(instance)

	operations := make([]ScheduledOperation, 0, len(instance.Operations()))
	raw := make([]float64, 0, len(instance.Operations()))
	for _, operation := range instance.Operations() {
		machine, best, sum := -1, math.Inf(-1), 0.0
		for _, option := range operation.Options {
			value := result.Values[model.indexer.Assign(option.Machine, operation.Id)]
			sum += value
			if value > best+tieTolerance {
				machine, best = option.Machine, value
			}
		}

		if best < threshold {
			violations = append(violations, fmt.Sprintf("operation %d has no assignment reaching %v (best %v on machine %d)", operation.Id, threshold, best, machine))
		}
		if math.Abs(sum-1) > assignmentSumSlack {
			violations = append(violations, fmt.Sprintf("operation %d assignments sum to %v", operation.Id, sum))
		}

		time, _ := operation.ProcessingTime(machine)
		raw = append(raw, result.Values[model.indexer.Start(operation.Id)])
		start := round(raw[len(raw)-1])
		operations = append(operations, ScheduledOperation{
			Operation: operation.Id,
			Job:       operation.Job,
			Position:  operation.Position,
			Machine:   machine,
			Start:     start,
			End:       round(start + time),
		})
	}

	makespan := lo.MaxBy(operations, func(a, b ScheduledOperation) bool { return a.End > b.End }).End
	if reported := round(result.Values[model.indexer.Makespan()]); reported < makespan-verifyTolerance {
		violations = append(violations, fmt.Sprintf("solver makespan %v is below the latest end %v", reported, makespan))
	}
	alignToPredecessors(instance, operations, raw, round)
	makespan = lo.MaxBy(operations, func(a, b ScheduledOperation) bool { return a.End > b.End }).End

	solution.Operations = operations
	solution.Makespan = &makespan
	if gap, ok := result.Gap(); ok {
		solution.Gap = &gap
	}

	if err := Verify(instance, solution); err != nil {
		if inconsistency, ok := err.(*DecodingInconsistencyError); ok {
			violations = append(violations, inconsistency.Violations...)
		} else {
			return nil, err
		}
	}
	if len(violations) > 0 {
		return nil, &DecodingInconsistencyError{Instance: instance.Name, Violations: violations}
	}
	return solution, nil
}

// timeRounder rounds to whole units when every duration is integral, otherwise to fractionalPrecision
func timeRounder(instance *Instance) func(float64) float64 {
	integral := instance.Integral()
	return func(value float64) float64 {
		var rounded float64
		if integral {
			rounded = math.Round(value)
		} else {
			rounded = math.Round(value*fractionalPrecision) / fractionalPrecision
		}
		if rounded == 0 {
			rounded = 0 // Drop the sign of -0
		}
		return rounded
	}
}

// alignToPredecessors repairs overlaps created by rounding alone. Operations are visited by raw start; an
// operation whose raw start is within tolerance of the raw end of its job or machine predecessor starts no earlier
// than that predecessor's rounded end. Raw overlaps beyond tolerance are left for Verify to report
func alignToPredecessors(instance *Instance, operations []ScheduledOperation, raw []float64, round func(float64) float64) {
	type frontier struct{ raw, rounded float64 }

	order := make([]int, len(operations))
	for i := range order {
		order[i] = i
	}
	slices.SortStableFunc(order, func(a, b int) int { return cmp.Compare(raw[a], raw[b]) })

	jobs := make(map[int]frontier)
	machines := make(map[int]frontier)
	for _, i := range order {
		operation := &operations[i]
		time, ok := instance.Operation(operation.Operation).ProcessingTime(operation.Machine)
		if !ok {
			continue
		}

		for _, previous := range []frontier{jobs[operation.Job], machines[operation.Machine]} {
			if operation.Start < previous.rounded && raw[i] >= previous.raw-verifyTolerance {
				operation.Start = previous.rounded
			}
		}
		operation.End = round(operation.Start + time)

		end := frontier{raw: raw[i] + time, rounded: operation.End}
		jobs[operation.Job] = end
		machines[operation.Machine] = end
	}
}

// unknownVariables lists returned names that the model never declared, a broken solver contract
func (model *Model) unknownVariables(values map[string]float64) []string {
	unknown := make([]string, 0)
	for name := range values {
		kind, _, _, _ := model.indexer.Attributes(name)
		if _, declared := model.Problem.Lookup(name); kind == unknownVariable || !declared {
			unknown = append(unknown, name)
		}
	}
	slices.Sort(unknown)

	return lo.Map(unknown, func(name string, _ int) string {
		return fmt.Sprintf("solver returned undeclared variable %q", name)
	})
}

// fractionalAssignments returns the assignment values that are not within tolerance of 0 or 1
func fractionalAssignments(model *Model, result *milp.Result, tolerance float64) map[string]float64 {
	fractional := make(map[string]float64)
	for _, operation := range model.Instance.Operations() {
		for _, option := range operation.Options {
			name := model.indexer.Assign(option.Machine, operation.Id)
			if value := result.Values[name]; math.Abs(value-math.Round(value)) > tolerance {
				fractional[name] = value
			}
		}
	}
	return fractional
}

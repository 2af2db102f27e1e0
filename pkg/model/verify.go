package model

import (
	"fmt"
	"math"
)

const verifyTolerance = 1e-6

// Verify checks a schedule against the instance: every operation scheduled exactly once on an eligible
// machine for its processing time, job precedence, machine exclusivity and makespan equal to the latest end.
// A solution without schedule has nothing to verify
func Verify(instance *Instance, solution *Solution) error {
	if !solution.HasSchedule() {
		return nil
	}

	violations := make([]string, 0)
	scheduled := make(map[int]ScheduledOperation, len(solution.Operations))

	for _, operation := range solution.Operations {
		if operation.Operation < 0 || operation.Operation >= len(instance.Operations()) {
			violations = append(violations, fmt.Sprintf("unknown operation %d", operation.Operation))
			continue
		}
		if _, ok := scheduled[operation.Operation]; ok {
			violations = append(violations, fmt.Sprintf("operation %d is scheduled more than once", operation.Operation))
			continue
		}
		scheduled[operation.Operation] = operation

		time, eligible := instance.Operation(operation.Operation).ProcessingTime(operation.Machine)
		switch {
		case !eligible:
			violations = append(violations, fmt.Sprintf("operation %d runs on non-eligible machine %d", operation.Operation, operation.Machine))
		case math.Abs(operation.End-operation.Start-time) > verifyTolerance:
			violations = append(violations, fmt.Sprintf("operation %d lasts %v on machine %d, expected %v", operation.Operation, operation.End-operation.Start, operation.Machine, time))
		}
		if operation.Start < -verifyTolerance {
			violations = append(violations, fmt.Sprintf("operation %d starts at negative time %v", operation.Operation, operation.Start))
		}
	}

	latest := 0.0
	for _, operation := range instance.Operations() {
		current, ok := scheduled[operation.Id]
		if !ok {
			violations = append(violations, fmt.Sprintf("operation %d is not scheduled", operation.Id))
			continue
		}
		latest = math.Max(latest, current.End)

		predecessor, ok := instance.Predecessor(operation.Id)
		if !ok {
			continue
		}
		if previous, ok := scheduled[predecessor.Id]; ok && current.Start < previous.End-verifyTolerance {
			violations = append(violations, fmt.Sprintf("job %d: operation %d starts at %v before operation %d ends at %v", operation.Job, operation.Id, current.Start, predecessor.Id, previous.End))
		}
	}

	for _, timeline := range solution.Gantt() {
		for i := 1; i < len(timeline.Operations); i++ {
			previous, current := timeline.Operations[i-1], timeline.Operations[i]
			if current.Start < previous.End-verifyTolerance {
				violations = append(violations, fmt.Sprintf("machine %d: operations %d [%v, %v) and %d [%v, %v) overlap", timeline.Machine, previous.Operation, previous.Start, previous.End, current.Operation, current.Start, current.End))
			}
		}
	}

	if solution.Makespan == nil {
		violations = append(violations, "makespan is missing")
	} else if math.Abs(*solution.Makespan-latest) > verifyTolerance {
		violations = append(violations, fmt.Sprintf("makespan %v differs from the latest end %v", *solution.Makespan, latest))
	}

	if len(violations) > 0 {
		return &DecodingInconsistencyError{Instance: instance.Name, Violations: violations}
	}
	return nil
}

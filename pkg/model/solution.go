package model

import (
	"slices"
	"time"

	"github.com/limaJavier/fjsp/pkg/milp"
	"github.com/samber/lo"
)

type ScheduledOperation struct {
	Operation int     `json:"operation" yaml:"operation"`
	Job       int     `json:"job" yaml:"job"`
	Position  int     `json:"position" yaml:"position"`
	Machine   int     `json:"machine" yaml:"machine"`
	Start     float64 `json:"start" yaml:"start"`
	End       float64 `json:"end" yaml:"end"`
}

// Solution is the outcome of one solve. Operations, Makespan and Gap are nil when the solver ended without
// an incumbent; Gap is also nil when the solver had no finite bound
type Solution struct {
	Instance   string               `json:"instance" yaml:"instance"`
	Jobs       int                  `json:"jobs" yaml:"jobs"`
	Machines   int                  `json:"machines" yaml:"machines"`
	Status     milp.Status          `json:"status" yaml:"status"`
	Operations []ScheduledOperation `json:"operations,omitempty" yaml:"operations,omitempty"`
	Makespan   *float64             `json:"makespan" yaml:"makespan"`
	Gap        *float64             `json:"gap" yaml:"gap"`
	Runtime    time.Duration        `json:"-" yaml:"-"`
	Stats      ModelStats           `json:"model" yaml:"model"`
}

// MachineTimeline is the sequence of operations processed by one machine
type MachineTimeline struct {
	Machine    int                  `json:"machine" yaml:"machine"`
	Operations []ScheduledOperation `json:"operations" yaml:"operations"`
}

func (solution *Solution) HasSchedule() bool {
	return solution.Operations != nil
}

// Gantt groups the scheduled operations per machine, machines in increasing id and operations by start time
func (solution *Solution) Gantt() []MachineTimeline {
	groups := lo.GroupBy(solution.Operations, func(operation ScheduledOperation) int { return operation.Machine })

	machines := lo.Keys(groups)
	slices.Sort(machines)

	return lo.Map(machines, func(machine int, _ int) MachineTimeline {
		operations := slices.Clone(groups[machine])
		slices.SortFunc(operations, compareScheduled)
		return MachineTimeline{Machine: machine, Operations: operations}
	})
}

// compareScheduled orders by start time, then by operation index
func compareScheduled(a, b ScheduledOperation) int {
	switch {
	case a.Start < b.Start:
		return -1
	case a.Start > b.Start:
		return 1
	default:
		return a.Operation - b.Operation
	}
}

package milp

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"
)

var (
	ErrUnknownSolver   = errors.New("unknown solver")
	ErrSolverExecution = errors.New("solver execution failed")
)

// SolutionParseError reports solver output that could not be understood
type SolutionParseError struct {
	Solver string
	Reason string
}

func (err *SolutionParseError) Error() string {
	return fmt.Sprintf("cannot parse %v output: %v", err.Solver, err.Reason)
}

type Status int

const (
	Optimal Status = iota
	TimeLimitFeasible
	TimeLimitInfeasible
	Infeasible
	Unbounded
	NumericalError
)

var statusNames = map[Status]string{
	Optimal:             "optimal",
	TimeLimitFeasible:   "time-limit",
	TimeLimitInfeasible: "time-limit-no-incumbent",
	Infeasible:          "infeasible",
	Unbounded:           "unbounded",
	NumericalError:      "numerical-error",
}

func (status Status) String() string {
	if name, ok := statusNames[status]; ok {
		return name
	}
	return fmt.Sprintf("status(%d)", int(status))
}

// HasIncumbent reports whether the status carries a feasible solution
func (status Status) HasIncumbent() bool {
	return status == Optimal || status == TimeLimitFeasible
}

func (status Status) MarshalText() ([]byte, error) {
	return []byte(status.String()), nil
}

func (status *Status) UnmarshalText(text []byte) error {
	for candidate, name := range statusNames {
		if name == string(text) {
			*status = candidate
			return nil
		}
	}
	return fmt.Errorf("unknown solver status %q", text)
}

// Options is the solver budget. Zero values leave the solver's own default in place
type Options struct {
	TimeLimit time.Duration
	Threads   int
	MIPGap    float64 // Target relative gap; reaching it counts as optimal
}

type Result struct {
	Status    Status
	Objective float64 // Best incumbent objective, meaningful only when Status.HasIncumbent()
	Bound     float64 // Best proven lower bound, math.Inf(-1) when unknown
	Runtime   time.Duration
	Values    map[string]float64 // Incumbent values by variable name, nil without incumbent
}

// Gap returns the relative optimality gap |objective - bound| / max(|objective|, 1e-10).
// It is absent when there is no incumbent or no finite bound
func (result *Result) Gap() (float64, bool) {
	if !result.Status.HasIncumbent() || math.IsInf(result.Bound, 0) || math.IsNaN(result.Bound) {
		return 0, false
	}
	return relativeGap(result.Objective, result.Bound), true
}

func relativeGap(objective, bound float64) float64 {
	return math.Abs(objective-bound) / math.Max(math.Abs(objective), 1e-10)
}

// Solver solves a minimization MILP within the given budget. A non-optimal termination is reported through
// Result.Status; the error is reserved for failures to run the solver or to read its answer
type Solver interface {
	Name() string
	Solve(ctx context.Context, problem *Problem, options Options) (*Result, error)
}

package milp

import (
	"context"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
	"time"
)

const Cbc = "cbc"

type cbcSolver struct {
	options executableOptions
}

func NewCbcSolver(conf map[string]any) (Solver, error) {
	var options executableOptions
	if err := Decode(conf, &options); err != nil {
		return nil, fmt.Errorf("invalid %v options: %w", Cbc, err)
	}
	return &cbcSolver{options: options}, nil
}

func (solver *cbcSolver) Name() string {
	return Cbc
}

func (solver *cbcSolver) Solve(ctx context.Context, problem *Problem, options Options) (*Result, error) {
	start := time.Now()

	space, err := newWorkspace(Cbc, solver.options.KeepFiles)
	if err != nil {
		return nil, err
	}
	defer space.Close()

	modelPath, err := space.writeModel(problem)
	if err != nil {
		return nil, err
	}
	solutionPath := space.path("model.sol")

	stdOut, err := runExecutable(ctx, Cbc, executablePath(solver.options, Cbc), options.TimeLimit, cbcArguments(modelPath, solutionPath, options, solver.options.ExtraArgs))
	if err != nil {
		return nil, err
	}

	solution, err := os.ReadFile(solutionPath)
	if err != nil {
		return nil, &SolutionParseError{Solver: Cbc, Reason: fmt.Sprintf("missing solution file: %v", err)}
	}

	result, err := parseCbcSolution(string(solution), stdOut)
	if err != nil {
		return nil, err
	}
	result.Runtime = time.Since(start)
	return result, nil
}

// cbcArguments builds the command line; CBC executes its arguments in order, so "solve" and "solu" come last
func cbcArguments(modelPath, solutionPath string, options Options, extra []string) []string {
	args := []string{modelPath}
	if options.TimeLimit > 0 {
		args = append(args, "sec", strconv.FormatFloat(options.TimeLimit.Seconds(), 'g', -1, 64))
	}
	if options.MIPGap > 0 {
		args = append(args, "ratio", strconv.FormatFloat(options.MIPGap, 'g', -1, 64))
	}
	if options.Threads > 0 {
		args = append(args, "threads", strconv.Itoa(options.Threads))
	}
	args = append(args, extra...)
	return append(args, "solve", "solu", solutionPath)
}

// parseCbcSolution reads the status line and the "index name value reduced-cost" rows written by "solu".
// Variables at zero are omitted by CBC
func parseCbcSolution(solution, stdOut string) (*Result, error) {
	lines := strings.Split(strings.TrimSpace(solution), "\n")
	if len(lines) == 0 || strings.TrimSpace(lines[0]) == "" {
		return nil, &SolutionParseError{Solver: Cbc, Reason: "empty solution file"}
	}

	header := strings.TrimSpace(lines[0])
	result := &Result{Status: cbcStatus(header), Bound: math.Inf(-1)}
	if !result.Status.HasIncumbent() {
		return result, nil
	}

	_, objectiveText, found := strings.Cut(header, "objective value")
	if !found {
		return nil, &SolutionParseError{Solver: Cbc, Reason: fmt.Sprintf("objective not found in %q", header)}
	}
	objective, err := strconv.ParseFloat(strings.TrimSpace(objectiveText), 64)
	if err != nil {
		return nil, &SolutionParseError{Solver: Cbc, Reason: fmt.Sprintf("invalid objective in %q", header)}
	}

	values := make(map[string]float64)
	for _, line := range lines[1:] {
		fields := strings.Fields(strings.TrimPrefix(strings.TrimSpace(line), "**"))
		if len(fields) == 0 {
			continue
		}
		if len(fields) < 3 {
			return nil, &SolutionParseError{Solver: Cbc, Reason: fmt.Sprintf("invalid value row %q", line)}
		}
		value, err := strconv.ParseFloat(fields[2], 64)
		if err != nil {
			return nil, &SolutionParseError{Solver: Cbc, Reason: fmt.Sprintf("invalid value row %q", line)}
		}
		values[fields[1]] = value
	}

	result.Objective, result.Values = objective, values
	if result.Status == Optimal {
		result.Bound = objective
	} else if bound, ok := cbcLowerBound(stdOut); ok {
		result.Bound = bound
	}
	return result, nil
}

func cbcStatus(header string) Status {
	lower := strings.ToLower(header)
	switch {
	case strings.HasPrefix(lower, "optimal"):
		return Optimal
	case strings.HasPrefix(lower, "stopped"):
		if strings.Contains(lower, "no integer solution") {
			return TimeLimitInfeasible
		}
		return TimeLimitFeasible
	case strings.HasPrefix(lower, "infeasible"), strings.HasPrefix(lower, "integer infeasible"):
		return Infeasible
	case strings.HasPrefix(lower, "unbounded"):
		return Unbounded
	default:
		return NumericalError
	}
}

func cbcLowerBound(stdOut string) (float64, bool) {
	for _, line := range strings.Split(stdOut, "\n") {
		if rest, found := strings.CutPrefix(strings.TrimSpace(line), "Lower bound:"); found {
			value, err := strconv.ParseFloat(strings.TrimSpace(rest), 64)
			if err == nil {
				return value, true
			}
		}
	}
	return 0, false
}

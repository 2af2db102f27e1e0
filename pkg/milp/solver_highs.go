package milp

import (
	"bufio"
	"context"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
	"time"
)

const Highs = "highs"

type highsSolver struct {
	options executableOptions
}

func NewHighsSolver(conf map[string]any) (Solver, error) {
	var options executableOptions
	if err := Decode(conf, &options); err != nil {
		return nil, fmt.Errorf("invalid %v options: %w", Highs, err)
	}
	return &highsSolver{options: options}, nil
}

func (solver *highsSolver) Name() string {
	return Highs
}

func (solver *highsSolver) Solve(ctx context.Context, problem *Problem, options Options) (*Result, error) {
	start := time.Now()

	space, err := newWorkspace(Highs, solver.options.KeepFiles)
	if err != nil {
		return nil, err
	}
	defer space.Close()

	modelPath, err := space.writeModel(problem)
	if err != nil {
		return nil, err
	}
	optionsPath := space.path("highs.opt")
	if err := os.WriteFile(optionsPath, []byte(highsOptions(options)), 0o644); err != nil {
		return nil, fmt.Errorf("failed to write options file: %v", err)
	}
	solutionPath := space.path("model.sol")

	args := append([]string{
		"--model_file", modelPath,
		"--options_file", optionsPath,
		"--solution_file", solutionPath,
	}, solver.options.ExtraArgs...)

	stdOut, err := runExecutable(ctx, Highs, executablePath(solver.options, Highs), options.TimeLimit, args)
	if err != nil {
		return nil, err
	}

	solution, err := os.ReadFile(solutionPath)
	if err != nil {
		return nil, &SolutionParseError{Solver: Highs, Reason: fmt.Sprintf("missing solution file: %v", err)}
	}

	result, err := parseHighsSolution(string(solution), stdOut)
	if err != nil {
		return nil, err
	}
	result.Runtime = time.Since(start)
	return result, nil
}

func highsOptions(options Options) string {
	var builder strings.Builder
	if options.TimeLimit > 0 {
		fmt.Fprintf(&builder, "time_limit = %v\n", options.TimeLimit.Seconds())
	}
	if options.Threads > 0 {
		fmt.Fprintf(&builder, "threads = %d\n", options.Threads)
	}
	if options.MIPGap > 0 {
		fmt.Fprintf(&builder, "mip_rel_gap = %v\n", options.MIPGap)
	}
	return builder.String()
}

// parseHighsSolution reads a raw-style HiGHS solution file; the dual bound comes from the solving report on stdout
func parseHighsSolution(solution, stdOut string) (*Result, error) {
	lines := make([]string, 0)
	scanner := bufio.NewScanner(strings.NewReader(solution))
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			lines = append(lines, line)
		}
	}

	modelStatus, primalStatus := "", ""
	objective := math.NaN()
	values := make(map[string]float64)

	for i := 0; i < len(lines); i++ {
		switch {
		case lines[i] == "Model status" && i+1 < len(lines):
			i++
			modelStatus = lines[i]
		case lines[i] == "# Primal solution values" && i+1 < len(lines):
			i++
			primalStatus = lines[i]
		case strings.HasPrefix(lines[i], "Objective ") && primalStatus != "" && math.IsNaN(objective):
			value, err := strconv.ParseFloat(strings.TrimSpace(strings.TrimPrefix(lines[i], "Objective ")), 64)
			if err != nil {
				return nil, &SolutionParseError{Solver: Highs, Reason: fmt.Sprintf("invalid objective line %q", lines[i])}
			}
			objective = value
		case strings.HasPrefix(lines[i], "# Columns ") && len(values) == 0 && primalStatus == "Feasible":
			count, err := strconv.Atoi(strings.TrimPrefix(lines[i], "# Columns "))
			if err != nil || i+count >= len(lines) {
				return nil, &SolutionParseError{Solver: Highs, Reason: fmt.Sprintf("invalid column section %q", lines[i])}
			}
			for j := 1; j <= count; j++ {
				fields := strings.Fields(lines[i+j])
				if len(fields) != 2 {
					return nil, &SolutionParseError{Solver: Highs, Reason: fmt.Sprintf("invalid column value %q", lines[i+j])}
				}
				value, err := strconv.ParseFloat(fields[1], 64)
				if err != nil {
					return nil, &SolutionParseError{Solver: Highs, Reason: fmt.Sprintf("invalid column value %q", lines[i+j])}
				}
				values[fields[0]] = value
			}
			i += count
		}
	}

	if modelStatus == "" {
		return nil, &SolutionParseError{Solver: Highs, Reason: "model status not found"}
	}

	incumbent := primalStatus == "Feasible" && len(values) > 0
	result := &Result{Status: highsStatus(modelStatus, incumbent), Bound: math.Inf(-1)}
	if bound, ok := highsDualBound(stdOut); ok {
		result.Bound = bound
	}

	if result.Status.HasIncumbent() {
		if !incumbent || math.IsNaN(objective) {
			return nil, &SolutionParseError{Solver: Highs, Reason: fmt.Sprintf("status %q without primal solution", modelStatus)}
		}
		result.Objective, result.Values = objective, values
		if result.Status == Optimal && math.IsInf(result.Bound, -1) {
			result.Bound = objective
		}
	}
	return result, nil
}

func highsStatus(modelStatus string, incumbent bool) Status {
	limit := func() Status {
		if incumbent {
			return TimeLimitFeasible
		}
		return TimeLimitInfeasible
	}

	lower := strings.ToLower(modelStatus)
	switch {
	case lower == "optimal":
		return Optimal
	case strings.Contains(lower, "infeasible or unbounded"):
		// Presolve could not tell the two apart; neither is a safe verdict
		return NumericalError
	case lower == "unbounded":
		return Unbounded
	case lower == "infeasible":
		return Infeasible
	case strings.Contains(lower, "limit"), strings.Contains(lower, "interrupt"):
		return limit()
	default:
		return NumericalError
	}
}

func highsDualBound(stdOut string) (float64, bool) {
	for _, line := range strings.Split(stdOut, "\n") {
		fields := strings.Fields(line)
		if len(fields) >= 3 && fields[0] == "Dual" && fields[1] == "bound" {
			value, err := strconv.ParseFloat(fields[2], 64)
			if err == nil && !math.IsInf(value, 0) {
				return value, true
			}
		}
	}
	return 0, false
}

package milp

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize/convex/lp"
)

const BranchBound = "branchbound"

type branchBoundOptions struct {
	NodeLimit            int     `json:"node_limit"`            // 0 means no limit
	IntegralityTolerance float64 `json:"integrality_tolerance"` // Distance from 0/1 accepted as integral
	FeasibilityTolerance float64 `json:"feasibility_tolerance"` // Slack accepted on rows left without free variables
	SimplexTolerance     float64 `json:"simplex_tolerance"`     // Reduced-cost tolerance handed to the simplex
}

func (options *branchBoundOptions) setDefaults() {
	if options.IntegralityTolerance <= 0 {
		options.IntegralityTolerance = 1e-6
	}
	if options.FeasibilityTolerance <= 0 {
		options.FeasibilityTolerance = 1e-7
	}
	if options.SimplexTolerance <= 0 {
		options.SimplexTolerance = 1e-10
	}
}

// branchBoundSolver is a single-threaded depth-first branch-and-bound over LP relaxations solved with the
// gonum simplex. It needs no external executable, which makes it the default for tests and small instances
type branchBoundSolver struct {
	options branchBoundOptions
}

func NewBranchBoundSolver(conf map[string]any) (Solver, error) {
	var options branchBoundOptions
	if err := Decode(conf, &options); err != nil {
		return nil, fmt.Errorf("invalid %v options: %w", BranchBound, err)
	}
	options.setDefaults()
	return &branchBoundSolver{options: options}, nil
}

func (solver *branchBoundSolver) Name() string {
	return BranchBound
}

// node is an open subproblem; fixed holds -1 for free binaries and 0/1 for fixed ones
type node struct {
	fixed []int8
	bound float64 // Relaxation objective of the parent, a valid lower bound for the subtree
}

func (solver *branchBoundSolver) Solve(ctx context.Context, problem *Problem, options Options) (*Result, error) {
	start := time.Now()
	if options.TimeLimit > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, options.TimeLimit)
		defer cancel()
	}

	for _, variable := range problem.Variables {
		if math.IsInf(variable.Lower, -1) || math.IsNaN(variable.Lower) {
			return nil, fmt.Errorf("%w: %v: variable %q needs a finite lower bound", ErrSolverExecution, BranchBound, variable.Name)
		}
	}

	root := node{fixed: make([]int8, len(problem.Variables)), bound: math.Inf(-1)}
	for i := range root.fixed {
		root.fixed[i] = -1
	}

	stack := []node{root}
	incumbent, incumbentObjective := []float64(nil), math.Inf(1)
	lostBound := math.Inf(1) // Lowest bound among subtrees dropped on numerical failure
	explored, stopped := 0, false

	globalBound := func() float64 {
		bound := math.Min(incumbentObjective, lostBound)
		for _, open := range stack {
			bound = math.Min(bound, open.bound)
		}
		return bound
	}

	for len(stack) > 0 {
		if ctx.Err() != nil || (solver.options.NodeLimit > 0 && explored >= solver.options.NodeLimit) {
			stopped = true
			break
		}
		if incumbent != nil && options.MIPGap > 0 && relativeGap(incumbentObjective, globalBound()) <= options.MIPGap {
			break
		}

		current := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if incumbent != nil && current.bound >= incumbentObjective-solver.pruneTolerance(incumbentObjective) {
			continue
		}

		objective, values, err := solver.relaxation(problem, current.fixed)
		explored++
		switch {
		case errors.Is(err, lp.ErrInfeasible):
			continue
		case errors.Is(err, lp.ErrUnbounded):
			if explored == 1 {
				return &Result{Status: Unbounded, Bound: math.Inf(-1), Runtime: time.Since(start)}, nil
			}
			continue
		case err != nil:
			if explored == 1 {
				return &Result{Status: NumericalError, Bound: math.Inf(-1), Runtime: time.Since(start)}, nil
			}
			lostBound = math.Min(lostBound, current.bound)
			continue
		}

		if incumbent != nil && objective >= incumbentObjective-solver.pruneTolerance(incumbentObjective) {
			continue
		}

		branch := solver.mostFractional(problem, current.fixed, values)
		if branch < 0 {
			incumbent, incumbentObjective = solver.integral(problem, values), objective
			continue
		}

		preferred := int8(math.Round(values[branch]))
		for _, side := range []int8{1 - preferred, preferred} {
			child := node{fixed: make([]int8, len(current.fixed)), bound: objective}
			copy(child.fixed, current.fixed)
			child.fixed[branch] = side
			stack = append(stack, child)
		}
	}

	result := &Result{Bound: globalBound(), Runtime: time.Since(start)}
	searchComplete := len(stack) == 0 && !stopped && math.IsInf(lostBound, 1)

	switch {
	case incumbent == nil && searchComplete:
		result.Status = Infeasible
		result.Bound = math.Inf(1)
	case incumbent == nil:
		result.Status = TimeLimitInfeasible
	default:
		result.Objective = incumbentObjective
		result.Values = problem.Named(incumbent)
		switch {
		case searchComplete:
			result.Status, result.Bound = Optimal, incumbentObjective
		case relativeGap(incumbentObjective, result.Bound) <= options.MIPGap:
			result.Status = Optimal
		default:
			result.Status = TimeLimitFeasible
		}
	}
	return result, nil
}

func (solver *branchBoundSolver) pruneTolerance(objective float64) float64 {
	return 1e-9 * math.Max(1, math.Abs(objective))
}

// mostFractional returns the free binary farthest from integrality (lowest index on ties) or -1
func (solver *branchBoundSolver) mostFractional(problem *Problem, fixed []int8, values []float64) int {
	branch, distance := -1, solver.options.IntegralityTolerance
	for i, variable := range problem.Variables {
		if variable.Domain != Binary || fixed[i] >= 0 {
			continue
		}
		if d := math.Abs(values[i] - math.Round(values[i])); d > distance {
			branch, distance = i, d
		}
	}
	return branch
}

func (solver *branchBoundSolver) integral(problem *Problem, values []float64) []float64 {
	rounded := make([]float64, len(values))
	for i, variable := range problem.Variables {
		rounded[i] = values[i]
		if variable.Domain == Binary {
			rounded[i] = math.Round(values[i])
		}
	}
	return rounded
}

// relaxation solves the LP relaxation with the fixed binaries substituted out. Every remaining row becomes
// a <= row with its own slack, so the standard form handed to the simplex always has full row rank
func (solver *branchBoundSolver) relaxation(problem *Problem, fixed []int8) (objective float64, values []float64, err error) {
	defer func() {
		if recovered := recover(); recovered != nil {
			err = fmt.Errorf("simplex failure: %v", recovered)
		}
	}()

	tolerance := solver.options.FeasibilityTolerance
	values = make([]float64, len(problem.Variables))
	costs := make([]float64, len(problem.Variables))
	for _, term := range problem.Objective {
		costs[term.Variable] += term.Coefficient
	}

	// Free variables are shifted by their lower bound so that x' = x - lower >= 0
	free := make([]bool, len(problem.Variables))
	offset := 0.0
	for i, variable := range problem.Variables {
		if variable.Domain == Binary && fixed[i] >= 0 {
			values[i] = float64(fixed[i])
		} else {
			free[i] = true
			values[i] = variable.Lower
		}
		offset += costs[i] * values[i]
	}

	type row struct {
		terms []Term
		rhs   float64
	}
	rows := make([]row, 0, len(problem.Constraints))
	for _, constraint := range problem.Constraints {
		rhs := constraint.RHS
		terms := make([]Term, 0, len(constraint.Terms))
		for _, term := range constraint.Terms {
			rhs -= term.Coefficient * values[term.Variable]
			if free[term.Variable] {
				terms = append(terms, term)
			}
		}

		if len(terms) == 0 {
			if !satisfied(0, constraint.Sense, rhs, tolerance) {
				return 0, nil, lp.ErrInfeasible
			}
			continue
		}

		switch constraint.Sense {
		case LessEqual:
			rows = append(rows, row{terms, rhs})
		case GreaterEqual:
			rows = append(rows, row{negate(terms), -rhs})
		case Equal:
			rows = append(rows, row{terms, rhs}, row{negate(terms), -rhs})
		}
	}
	for i, variable := range problem.Variables {
		if free[i] && !math.IsInf(variable.Upper, 1) {
			rows = append(rows, row{[]Term{{Variable: i, Coefficient: 1}}, variable.Upper - variable.Lower})
		}
	}

	// Columns that no row touches are settled directly: at their lower bound, or unbounded below
	used := make([]bool, len(problem.Variables))
	for _, r := range rows {
		for _, term := range r.terms {
			used[term.Variable] = true
		}
	}
	columns := make(map[int]int)
	structural := make([]int, 0)
	for i := range problem.Variables {
		if !free[i] {
			continue
		}
		if !used[i] {
			if costs[i] < 0 {
				return 0, nil, lp.ErrUnbounded
			}
			continue
		}
		columns[i] = len(structural)
		structural = append(structural, i)
	}

	if len(rows) == 0 {
		return offset, values, nil
	}

	m, n := len(rows), len(structural)+len(rows)
	a := mat.NewDense(m, n, nil)
	b := make([]float64, m)
	c := make([]float64, n)
	for column, variable := range structural {
		c[column] = costs[variable]
	}
	for i, r := range rows {
		for _, term := range r.terms {
			a.Set(i, columns[term.Variable], a.At(i, columns[term.Variable])+term.Coefficient)
		}
		a.Set(i, len(structural)+i, 1)
		b[i] = r.rhs
	}

	optimum, x, err := lp.Simplex(c, a, b, solver.options.SimplexTolerance, nil)
	if err != nil {
		return 0, nil, err
	}

	for column, variable := range structural {
		values[variable] += x[column]
	}
	return optimum + offset, values, nil
}

func negate(terms []Term) []Term {
	negated := make([]Term, len(terms))
	for i, term := range terms {
		negated[i] = Term{Variable: term.Variable, Coefficient: -term.Coefficient}
	}
	return negated
}

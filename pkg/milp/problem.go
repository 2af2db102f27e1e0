package milp

import (
	"fmt"
	"log"
	"math"
)

type Domain int

const (
	Continuous Domain = iota
	Binary
)

type Sense int

const (
	LessEqual Sense = iota
	GreaterEqual
	Equal
)

func (sense Sense) String() string {
	switch sense {
	case LessEqual:
		return "<="
	case GreaterEqual:
		return ">="
	default:
		return "="
	}
}

type Variable struct {
	Name   string
	Domain Domain
	Lower  float64
	Upper  float64 // math.Inf(1) when unbounded
}

// Term is a coefficient applied to the variable at index Variable of the owning problem
type Term struct {
	Variable    int
	Coefficient float64
}

type Constraint struct {
	Name  string
	Terms []Term
	Sense Sense
	RHS   float64
}

// Problem is a minimization MILP: linear objective, linear constraints, bounded variables
type Problem struct {
	Name        string
	Variables   []Variable
	Constraints []Constraint
	Objective   []Term

	index map[string]int
}

func NewProblem(name string) *Problem {
	return &Problem{
		Name:  name,
		index: make(map[string]int),
	}
}

// AddBinary declares a {0,1} variable and returns its index
func (problem *Problem) AddBinary(name string) int {
	return problem.addVariable(Variable{Name: name, Domain: Binary, Lower: 0, Upper: 1})
}

// AddContinuous declares a continuous variable within [lower, upper] and returns its index
func (problem *Problem) AddContinuous(name string, lower, upper float64) int {
	return problem.addVariable(Variable{Name: name, Domain: Continuous, Lower: lower, Upper: upper})
}

func (problem *Problem) addVariable(variable Variable) int {
	if _, ok := problem.index[variable.Name]; ok {
		log.Panicf("variable %q must be declared only once", variable.Name)
	}
	problem.index[variable.Name] = len(problem.Variables)
	problem.Variables = append(problem.Variables, variable)
	return len(problem.Variables) - 1
}

// Lookup returns the index of a variable by name
func (problem *Problem) Lookup(name string) (int, bool) {
	index, ok := problem.index[name]
	return index, ok
}

// AddConstraint appends a constraint after merging repeated variables and dropping zero coefficients
func (problem *Problem) AddConstraint(constraint Constraint) {
	constraint.Terms = mergeTerms(constraint.Terms)
	for _, term := range constraint.Terms {
		if term.Variable < 0 || term.Variable >= len(problem.Variables) {
			log.Panicf("constraint %q references unknown variable %d", constraint.Name, term.Variable)
		}
	}
	problem.Constraints = append(problem.Constraints, constraint)
}

func (problem *Problem) Minimize(terms ...Term) {
	problem.Objective = mergeTerms(terms)
}

// Counts returns the model-size counters
func (problem *Problem) Counts() (binary, continuous, constraints int) {
	for _, variable := range problem.Variables {
		if variable.Domain == Binary {
			binary++
		} else {
			continuous++
		}
	}
	return binary, continuous, len(problem.Constraints)
}

// Vector maps named values onto variable order; missing names become 0
func (problem *Problem) Vector(values map[string]float64) []float64 {
	vector := make([]float64, len(problem.Variables))
	for i, variable := range problem.Variables {
		vector[i] = values[variable.Name]
	}
	return vector
}

// Named maps a value vector in variable order back to names
func (problem *Problem) Named(vector []float64) map[string]float64 {
	values := make(map[string]float64, len(problem.Variables))
	for i, variable := range problem.Variables {
		values[variable.Name] = vector[i]
	}
	return values
}

func (problem *Problem) ObjectiveValue(vector []float64) float64 {
	return evaluate(problem.Objective, vector)
}

// Violations lists every bound, integrality and constraint that the assignment breaks by more than tolerance
func (problem *Problem) Violations(values map[string]float64, tolerance float64) []string {
	vector := problem.Vector(values)
	violations := make([]string, 0)

	for i, variable := range problem.Variables {
		value := vector[i]
		if value < variable.Lower-tolerance || value > variable.Upper+tolerance {
			violations = append(violations, fmt.Sprintf("%v = %v outside [%v, %v]", variable.Name, value, variable.Lower, variable.Upper))
		}
		if variable.Domain == Binary && math.Abs(value-math.Round(value)) > tolerance {
			violations = append(violations, fmt.Sprintf("%v = %v is not integral", variable.Name, value))
		}
	}

	for _, constraint := range problem.Constraints {
		lhs := evaluate(constraint.Terms, vector)
		if !satisfied(lhs, constraint.Sense, constraint.RHS, tolerance) {
			violations = append(violations, fmt.Sprintf("%v: %v %v %v does not hold", constraint.Name, lhs, constraint.Sense, constraint.RHS))
		}
	}

	return violations
}

func evaluate(terms []Term, vector []float64) float64 {
	value := 0.0
	for _, term := range terms {
		value += term.Coefficient * vector[term.Variable]
	}
	return value
}

func satisfied(lhs float64, sense Sense, rhs, tolerance float64) bool {
	switch sense {
	case LessEqual:
		return lhs <= rhs+tolerance
	case GreaterEqual:
		return lhs >= rhs-tolerance
	default:
		return math.Abs(lhs-rhs) <= tolerance
	}
}

func mergeTerms(terms []Term) []Term {
	merged := make([]Term, 0, len(terms))
	position := make(map[int]int, len(terms))
	for _, term := range terms {
		if i, ok := position[term.Variable]; ok {
			merged[i].Coefficient += term.Coefficient
			continue
		}
		position[term.Variable] = len(merged)
		merged = append(merged, term)
	}

	nonZero := merged[:0]
	for _, term := range merged {
		if term.Coefficient != 0 {
			nonZero = append(nonZero, term)
		}
	}
	return nonZero
}

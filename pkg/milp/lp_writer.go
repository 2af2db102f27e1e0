package milp

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
)

const termsPerLine = 8

// WriteLP renders the problem in CPLEX LP format, which both HiGHS and CBC read
func (problem *Problem) WriteLP(writer io.Writer) error {
	buffered := bufio.NewWriter(writer)

	fmt.Fprintf(buffered, "\\ Problem: %v\n", problem.Name)
	buffered.WriteString("Minimize\n")
	fmt.Fprintf(buffered, " obj:%v\n", problem.expression(problem.Objective))

	buffered.WriteString("Subject To\n")
	for _, constraint := range problem.Constraints {
		fmt.Fprintf(buffered, " %v:%v %v %v\n", constraint.Name, problem.expression(constraint.Terms), constraint.Sense, formatNumber(constraint.RHS))
	}

	buffered.WriteString("Bounds\n")
	for _, variable := range problem.Variables {
		if variable.Domain == Binary {
			continue
		}
		switch {
		case math.IsInf(variable.Lower, -1) && math.IsInf(variable.Upper, 1):
			fmt.Fprintf(buffered, " %v free\n", variable.Name)
		case math.IsInf(variable.Upper, 1):
			fmt.Fprintf(buffered, " %v >= %v\n", variable.Name, formatNumber(variable.Lower))
		default:
			fmt.Fprintf(buffered, " %v <= %v <= %v\n", formatNumber(variable.Lower), variable.Name, formatNumber(variable.Upper))
		}
	}

	binaries := make([]string, 0)
	for _, variable := range problem.Variables {
		if variable.Domain == Binary {
			binaries = append(binaries, variable.Name)
		}
	}
	if len(binaries) > 0 {
		buffered.WriteString("Binaries\n")
		for start := 0; start < len(binaries); start += termsPerLine {
			end := min(start+termsPerLine, len(binaries))
			fmt.Fprintf(buffered, " %v\n", strings.Join(binaries[start:end], " "))
		}
	}

	buffered.WriteString("End\n")
	return buffered.Flush()
}

// ToLP returns the CPLEX LP rendering as a string
func (problem *Problem) ToLP() string {
	var builder strings.Builder
	_ = problem.WriteLP(&builder)
	return builder.String()
}

func (problem *Problem) expression(terms []Term) string {
	if len(terms) == 0 {
		return " 0"
	}

	var builder strings.Builder
	for i, term := range terms {
		// Long rows are wrapped since some readers cap the line length
		if i > 0 && i%termsPerLine == 0 {
			builder.WriteString("\n  ")
		}
		sign, coefficient := "+", term.Coefficient
		if coefficient < 0 {
			sign, coefficient = "-", -coefficient
		}
		fmt.Fprintf(&builder, " %v %v %v", sign, formatNumber(coefficient), problem.Variables[term.Variable].Name)
	}
	return builder.String()
}

func formatNumber(value float64) string {
	switch {
	case math.IsInf(value, 1):
		return "+inf"
	case math.IsInf(value, -1):
		return "-inf"
	}
	return strconv.FormatFloat(value, 'g', -1, 64)
}

package model

import (
	"fmt"
	"strconv"
	"strings"
)

const makespanName = "cmax"

// indexerImplementation names variables y_<machine>_<operation>, s_<operation>, x_<machine>_<a>_<b> and cmax.
// Names only use characters accepted by the LP readers of every backend
type indexerImplementation struct{}

func (indexer *indexerImplementation) Assign(machine, operation int) string {
	return fmt.Sprintf("y_%d_%d", machine, operation)
}

func (indexer *indexerImplementation) Start(operation int) string {
	return fmt.Sprintf("s_%d", operation)
}

func (indexer *indexerImplementation) Order(machine, a, b int) string {
	return fmt.Sprintf("x_%d_%d_%d", machine, a, b)
}

func (indexer *indexerImplementation) Makespan() string {
	return makespanName
}

func (indexer *indexerImplementation) Attributes(name string) (kind variableKind, machine, a, b int) {
	if name == makespanName {
		return makespanVariable, -1, -1, -1
	}

	prefix, rest, found := strings.Cut(name, "_")
	if !found {
		return unknownVariable, -1, -1, -1
	}

	parts := strings.Split(rest, "_")
	numbers := make([]int, len(parts))
	for i, part := range parts {
		value, err := strconv.Atoi(part)
		if err != nil || value < 0 {
			return unknownVariable, -1, -1, -1
		}
		numbers[i] = value
	}

	switch {
	case prefix == "y" && len(numbers) == 2:
		return assignVariable, numbers[0], numbers[1], -1
	case prefix == "s" && len(numbers) == 1:
		return startVariable, -1, numbers[0], -1
	case prefix == "x" && len(numbers) == 3 && numbers[1] < numbers[2]:
		return orderVariable, numbers[0], numbers[1], numbers[2]
	default:
		return unknownVariable, -1, -1, -1
	}
}

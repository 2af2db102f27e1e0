package model

type variableKind int

const (
	unknownVariable variableKind = iota
	assignVariable
	startVariable
	orderVariable
	makespanVariable
)

// indexer interface is design to give a unique name to a combination of a decision variable's attributes and vice versa
type indexer interface {
	// Returns the name of the variable stating that operation runs on machine
	Assign(machine, operation int) string
	// Returns the name of the operation's start time
	Start(operation int) string
	// Returns the name of the variable stating that a precedes b on machine (a < b)
	Order(machine, a, b int) string
	// Returns the name of the makespan variable
	Makespan() string
	// Returns the kind and attributes encoded in a variable name; unused attributes are -1
	Attributes(name string) (kind variableKind, machine, a, b int)
}

func newIndexer() indexer {
	return &indexerImplementation{}
}

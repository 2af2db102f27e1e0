package model

// machinePair is an unordered pair of operations (A < B) that are both eligible on Machine
type machinePair struct {
	Machine int
	A       int
	B       int
}

type pairGenerator interface {
	// Returns every (machine, a, b) with a < b both eligible on the machine, machine-major and then
	// lexicographic, so each unordered pair yields exactly one entry per shared machine.
	// Pairs of the same job are included even though job precedence already orders them
	//
	// Example:
	//
	//	generator := newPairGenerator(instance)
	//
	//	for _, pair := range generator.MachinePairs() {
	//		name := indexer.Order(pair.Machine, pair.A, pair.B)
	//	}
	MachinePairs() []machinePair
}

func newPairGenerator(instance *Instance) pairGenerator {
	return &pairGeneratorImplementation{instance: instance}
}

type pairGeneratorImplementation struct {
	instance *Instance
}

func (generator *pairGeneratorImplementation) MachinePairs() []machinePair {
	pairs := make([]machinePair, 0)
	for _, machine := range generator.instance.Machines() {
		operations := generator.instance.OperationsOn(machine)
		for i := range len(operations) - 1 {
			for j := i + 1; j < len(operations); j++ {
				pairs = append(pairs, machinePair{Machine: machine, A: operations[i], B: operations[j]})
			}
		}
	}
	return pairs
}

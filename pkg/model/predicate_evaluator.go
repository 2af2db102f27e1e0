package model

type predicateEvaluator interface {
	// Checks whether the operation may run on the machine
	Eligible(operation, machine int) bool

	// Returns the operation's processing time on the machine (0 when not eligible)
	ProcessingTime(operation, machine int) float64

	// Checks whether b immediately follows a in the same job
	Precedes(a, b int) bool

	// Checks whether the operation is the last one of its job
	Last(operation int) bool
}

func newPredicateEvaluator(instance *Instance) predicateEvaluator {
	evaluator := predicateEvaluatorStandard{
		instance: instance,
		times:    make([]map[int]float64, len(instance.Operations())),
	}

	for _, operation := range instance.Operations() {
		evaluator.times[operation.Id] = make(map[int]float64, len(operation.Options))
		for _, option := range operation.Options {
			evaluator.times[operation.Id][option.Machine] = option.Time
		}
	}

	return &evaluator
}

package model

type predicateEvaluatorStandard struct {
	instance *Instance
	times    []map[int]float64 // Processing time per operation and eligible machine
}

func (evaluator *predicateEvaluatorStandard) Eligible(operation, machine int) bool {
	_, ok := evaluator.times[operation][machine]
	return ok
}

func (evaluator *predicateEvaluatorStandard) ProcessingTime(operation, machine int) float64 {
	return evaluator.times[operation][machine]
}

func (evaluator *predicateEvaluatorStandard) Precedes(a, b int) bool {
	predecessor, ok := evaluator.instance.Predecessor(b)
	return ok && predecessor.Id == a
}

func (evaluator *predicateEvaluatorStandard) Last(operation int) bool {
	return evaluator.instance.Last(operation)
}

package model

import "fmt"

// BigMPolicy derives the constant that deactivates a disjunctive constraint. Any value below the largest
// start time a feasible schedule may need silently cuts off solutions, so it is always instance-derived
type BigMPolicy interface {
	Name() string
	BigM(instance *Instance) (float64, error)
}

const (
	SumPolicyName    = "sum"
	SumMaxPolicyName = "sum-max"
	FixedPolicyName  = "fixed"
)

// SumPolicy uses the sum of every option's processing time
type SumPolicy struct{}

func (SumPolicy) Name() string {
	return SumPolicyName
}

func (SumPolicy) BigM(instance *Instance) (float64, error) {
	return instance.TotalProcessingTime(), nil
}

// SumMaxPolicy uses the sum of each operation's longest option plus one. It is below the total processing time
// on flexible instances but still bounds every start of an optimal schedule; opt-in only
type SumMaxPolicy struct{}

func (SumMaxPolicy) Name() string {
	return SumMaxPolicyName
}

func (SumMaxPolicy) BigM(instance *Instance) (float64, error) {
	return instance.SumOfMaxProcessingTimes() + 1, nil
}

// FixedPolicy uses a caller-chosen value and refuses it when it is below the total processing time
type FixedPolicy struct {
	Value float64
}

func (FixedPolicy) Name() string {
	return FixedPolicyName
}

func (policy FixedPolicy) BigM(instance *Instance) (float64, error) {
	if total := instance.TotalProcessingTime(); policy.Value < total {
		return 0, fmt.Errorf("%w: %v < %v for instance %q", ErrBigMTooSmall, policy.Value, total, instance.Name)
	}
	return policy.Value, nil
}

// NewBigMPolicy resolves a policy by name; value is only read by the fixed policy
func NewBigMPolicy(name string, value float64) (BigMPolicy, error) {
	switch name {
	case "", SumPolicyName:
		return SumPolicy{}, nil
	case SumMaxPolicyName:
		return SumMaxPolicy{}, nil
	case FixedPolicyName:
		if value <= 0 {
			return nil, fmt.Errorf("fixed big-M policy needs a positive value (got %v)", value)
		}
		return FixedPolicy{Value: value}, nil
	default:
		return nil, fmt.Errorf("unknown big-M policy %q (valid: %v, %v, %v)", name, SumPolicyName, SumMaxPolicyName, FixedPolicyName)
	}
}

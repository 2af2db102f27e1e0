package milp

import (
	"fmt"
	"slices"

	"github.com/mitchellh/mapstructure"
	"github.com/samber/lo"
)

// Factory builds a solver from its free-form configuration
type Factory func(conf map[string]any) (Solver, error)

var factories = map[string]Factory{
	BranchBound: NewBranchBoundSolver,
	Highs:       NewHighsSolver,
	Cbc:         NewCbcSolver,
}

// ValidSolvers returns the registered solver names in lexical order
func ValidSolvers() []string {
	names := lo.Keys(factories)
	slices.Sort(names)
	return names
}

func NewSolver(name string, conf map[string]any) (Solver, error) {
	factory, ok := factories[name]
	if !ok {
		return nil, fmt.Errorf("%w %q (valid: %v)", ErrUnknownSolver, name, ValidSolvers())
	}
	return factory(conf)
}

// Decode fills out the provided struct from a free-form map using json tags
func Decode(data map[string]any, out any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		Result:           out,
	})
	if err != nil {
		return err
	}
	return decoder.Decode(data)
}

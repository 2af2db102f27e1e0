package milp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSolver(t *testing.T) {
	t.Run("Registered solvers", func(t *testing.T) {
		assert.Equal(t, []string{"branchbound", "cbc", "highs"}, ValidSolvers())

		for _, name := range ValidSolvers() {
			solver, err := NewSolver(name, nil)

			require.NoError(t, err)
			assert.Equal(t, name, solver.Name())
		}
	})

	t.Run("Executable options", func(t *testing.T) {
		//** Act
		solver, err := NewSolver(Highs, map[string]any{"path": "/opt/highs/bin/highs", "extra_args": []any{"--presolve", "off"}})

		//** Assert
		require.NoError(t, err)
		options := solver.(*highsSolver).options
		assert.Equal(t, "/opt/highs/bin/highs", options.Path)
		assert.Equal(t, []string{"--presolve", "off"}, options.ExtraArgs)
	})

	t.Run("Unknown solver", func(t *testing.T) {
		_, err := NewSolver("gurobi", nil)

		assert.ErrorIs(t, err, ErrUnknownSolver)
	})
}

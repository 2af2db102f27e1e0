package model

import (
	"strings"
	"testing"

	"github.com/limaJavier/fjsp/pkg/milp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// bigMInstance: two jobs on two machines with processing times {3, 5, 2, 4}
func bigMInstance(t *testing.T) *Instance {
	t.Helper()
	instance, err := ParseInstance(strings.NewReader("2 2\n2 1 1 3 1 2 5\n2 1 1 2 1 2 4\n"), "big-m")
	require.NoError(t, err)
	return instance
}

// bigMSchedule is feasible with makespan 11 and needs a start-time offset of 9 between operations 1 and 3
func bigMSchedule() []ScheduledOperation {
	return []ScheduledOperation{
		{Operation: 0, Job: 0, Position: 0, Machine: 1, Start: 2, End: 5},
		{Operation: 1, Job: 0, Position: 1, Machine: 2, Start: 6, End: 11},
		{Operation: 2, Job: 1, Position: 0, Machine: 1, Start: 0, End: 2},
		{Operation: 3, Job: 1, Position: 1, Machine: 2, Start: 2, End: 6},
	}
}

func TestBuildModel(t *testing.T) {
	t.Run("Model size", func(t *testing.T) {
		//** Act
		model, err := BuildModel(bigMInstance(t), SumPolicy{})

		//** Assert
		require.NoError(t, err)
		assert.Equal(t, ModelStats{Binary: 6, Continuous: 5, Constraints: 12, Pairs: 2}, model.Stats)
		assert.Equal(t, 14.0, model.BigM)
		assert.Equal(t, SumPolicyName, model.Policy)
	})

	t.Run("Deterministic constraint order", func(t *testing.T) {
		//** Act
		first, err := BuildModel(bigMInstance(t), SumPolicy{})
		require.NoError(t, err)
		second, err := BuildModel(bigMInstance(t), SumPolicy{})
		require.NoError(t, err)

		//** Assert
		names := func(model *Model) []string {
			result := make([]string, 0)
			for _, constraint := range model.Problem.Constraints {
				result = append(result, constraint.Name)
			}
			return result
		}
		assert.Equal(t, []string{
			"assign_0", "assign_1", "assign_2", "assign_3",
			"prec_0_0_1", "prec_1_2_3",
			"disj1_1_0_2", "disj2_1_0_2", "disj1_2_1_3", "disj2_2_1_3",
			"mk_0", "mk_1",
		}, names(first))
		assert.Equal(t, first.Problem.ToLP(), second.Problem.ToLP())
	})

	t.Run("Disjunctive rows", func(t *testing.T) {
		//** Arrange
		model, err := BuildModel(bigMInstance(t), SumPolicy{})
		require.NoError(t, err)
		problem := model.Problem
		index := func(name string) int {
			i, ok := problem.Lookup(name)
			require.True(t, ok, name)
			return i
		}

		//** Act
		disj1, disj2 := problem.Constraints[8], problem.Constraints[9]

		//** Assert
		assert.Equal(t, []milp.Term{
			{Variable: index("s_3"), Coefficient: 1},
			{Variable: index("s_1"), Coefficient: -1},
			{Variable: index("x_2_1_3"), Coefficient: -14},
			{Variable: index("y_2_1"), Coefficient: -14},
			{Variable: index("y_2_3"), Coefficient: -14},
		}, disj1.Terms)
		assert.Equal(t, milp.GreaterEqual, disj1.Sense)
		assert.Equal(t, 5.0-3*14, disj1.RHS)

		assert.Equal(t, []milp.Term{
			{Variable: index("s_1"), Coefficient: 1},
			{Variable: index("s_3"), Coefficient: -1},
			{Variable: index("x_2_1_3"), Coefficient: 14},
			{Variable: index("y_2_1"), Coefficient: -14},
			{Variable: index("y_2_3"), Coefficient: -14},
		}, disj2.Terms)
		assert.Equal(t, 4.0-2*14, disj2.RHS)
	})

	t.Run("One order variable per pair and shared machine", func(t *testing.T) {
		//** Arrange
		instance, err := NewInstance("shared", 2, [][][]MachineOption{
			{{{Machine: 1, Time: 2}, {Machine: 2, Time: 3}}},
			{{{Machine: 1, Time: 4}, {Machine: 2, Time: 1}}},
			{{{Machine: 2, Time: 5}}},
		})
		require.NoError(t, err)

		//** Act
		model, err := BuildModel(instance, SumPolicy{})

		//** Assert
		require.NoError(t, err)
		assert.Len(t, model.Order[1], 1)
		assert.Len(t, model.Order[2], 3)
		assert.Equal(t, 4, model.Stats.Pairs)
		for machine, pairs := range model.Order {
			for pair := range pairs {
				assert.Less(t, pair[0], pair[1], "machine %d", machine)
			}
		}
	})

	t.Run("Invalid instance is rejected before building", func(t *testing.T) {
		instance := &Instance{Name: "broken", MachineCount: 1, Jobs: []Job{{Id: 0}}}

		_, err := BuildModel(instance, SumPolicy{})

		var validationError *InstanceValidationError
		assert.ErrorAs(t, err, &validationError)
	})
}

func TestBigMPolicies(t *testing.T) {
	instance := bigMInstance(t)

	t.Run("Sum of all processing times", func(t *testing.T) {
		bigM, err := SumPolicy{}.BigM(instance)

		require.NoError(t, err)
		assert.GreaterOrEqual(t, bigM, 14.0)
	})

	t.Run("Sum of longest options plus one", func(t *testing.T) {
		bigM, err := SumMaxPolicy{}.BigM(instance)

		require.NoError(t, err)
		assert.Equal(t, 15.0, bigM)
	})

	t.Run("Fixed value below the horizon", func(t *testing.T) {
		_, err := BuildModel(instance, FixedPolicy{Value: 3})

		assert.ErrorIs(t, err, ErrBigMTooSmall)
	})

	t.Run("Fixed value between the horizon and the total processing time", func(t *testing.T) {
		//** Arrange
		flexible := flexibleInstance(t)
		require.Equal(t, 8.0, flexible.SumOfMaxProcessingTimes())
		require.Equal(t, 10.0, flexible.TotalProcessingTime())

		//** Act
		_, err := BuildModel(flexible, FixedPolicy{Value: 9})

		//** Assert
		assert.ErrorIs(t, err, ErrBigMTooSmall)
	})

	t.Run("Fixed value above the horizon", func(t *testing.T) {
		model, err := BuildModel(instance, FixedPolicy{Value: 100})

		require.NoError(t, err)
		assert.Equal(t, 100.0, model.BigM)
	})

	t.Run("Policy by name", func(t *testing.T) {
		for name, expected := range map[string]BigMPolicy{"": SumPolicy{}, "sum": SumPolicy{}, "sum-max": SumMaxPolicy{}, "fixed": FixedPolicy{Value: 50}} {
			policy, err := NewBigMPolicy(name, 50)

			require.NoError(t, err)
			assert.Equal(t, expected, policy)
		}

		_, err := NewBigMPolicy("fixed", 0)
		assert.Error(t, err)
		_, err = NewBigMPolicy("constant", 1)
		assert.Error(t, err)
	})
}

func TestBigMSufficiency(t *testing.T) {
	instance := bigMInstance(t)

	t.Run("Instance-derived big-M keeps the known schedule feasible", func(t *testing.T) {
		//** Arrange
		model, err := BuildModel(instance, SumPolicy{})
		require.NoError(t, err)

		//** Act
		violations := model.Check(model.ScheduleValues(bigMSchedule()), 1e-9)

		//** Assert
		assert.Empty(t, violations)
	})

	t.Run("Undersized big-M cuts the known schedule off", func(t *testing.T) {
		//** Arrange
		model := newModel(instance, 3, FixedPolicyName)

		//** Act
		violations := model.Check(model.ScheduleValues(bigMSchedule()), 1e-9)

		//** Assert
		require.NotEmpty(t, violations)
		assert.Contains(t, strings.Join(violations, "\n"), "disj1_2_1_3")
	})
}

func TestScheduleValues(t *testing.T) {
	//** Arrange
	model, err := BuildModel(bigMInstance(t), SumPolicy{})
	require.NoError(t, err)

	//** Act
	values := model.ScheduleValues(bigMSchedule())

	//** Assert
	assert.Equal(t, 1.0, values["y_1_0"])
	assert.Equal(t, 2.0, values["s_0"])
	assert.Equal(t, 0.0, values["x_1_0_2"]) // operation 2 runs first on machine 1
	assert.Equal(t, 0.0, values["x_2_1_3"])
	assert.Equal(t, 11.0, values["cmax"])
	assert.Len(t, values, len(model.Problem.Variables))
}

func TestIndexer(t *testing.T) {
	indexer := newIndexer()

	names := map[string][4]int{
		indexer.Assign(3, 12):  {int(assignVariable), 3, 12, -1},
		indexer.Start(7):       {int(startVariable), -1, 7, -1},
		indexer.Order(2, 4, 9): {int(orderVariable), 2, 4, 9},
		indexer.Makespan():     {int(makespanVariable), -1, -1, -1},
		"x_2_9_4":              {int(unknownVariable), -1, -1, -1},
		"y_1":                  {int(unknownVariable), -1, -1, -1},
		"s_-1":                 {int(unknownVariable), -1, -1, -1},
		"slack":                {int(unknownVariable), -1, -1, -1},
	}

	for name, expected := range names {
		kind, machine, a, b := indexer.Attributes(name)

		assert.Equal(t, expected, [4]int{int(kind), machine, a, b}, name)
	}
}

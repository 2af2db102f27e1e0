package model

import (
	"testing"

	"github.com/onsi/gomega"
	"github.com/stretchr/testify/require"
)

func TestVerify(t *testing.T) {
	instance := bigMInstance(t)
	makespan := 11.0

	valid := func() *Solution {
		return &Solution{Instance: instance.Name, Operations: bigMSchedule(), Makespan: &makespan}
	}

	t.Run("Feasible schedule", func(t *testing.T) {
		g := gomega.NewWithT(t)

		g.Expect(Verify(instance, valid())).To(gomega.Succeed())
	})

	t.Run("Solution without schedule", func(t *testing.T) {
		g := gomega.NewWithT(t)

		g.Expect(Verify(instance, &Solution{Instance: instance.Name})).To(gomega.Succeed())
	})

	scenarios := []struct {
		name      string
		mutate    func(solution *Solution)
		violation string
	}{
		{"Non-eligible machine", func(s *Solution) { s.Operations[0].Machine = 2 }, "non-eligible machine 2"},
		{"Wrong duration", func(s *Solution) { s.Operations[2].End = 3 }, "lasts 3"},
		{"Missing operation", func(s *Solution) { s.Operations = s.Operations[:3] }, "operation 3 is not scheduled"},
		{"Duplicated operation", func(s *Solution) { s.Operations = append(s.Operations, s.Operations[0]) }, "more than once"},
		{"Unknown operation", func(s *Solution) { s.Operations[3].Operation = 9 }, "unknown operation 9"},
		{"Negative start", func(s *Solution) { s.Operations[2].Start, s.Operations[2].End = -1, 1 }, "negative time"},
		{"Makespan mismatch", func(s *Solution) { other := 12.0; s.Makespan = &other }, "differs from the latest end"},
		{"Missing makespan", func(s *Solution) { s.Makespan = nil }, "makespan is missing"},
		{"Overlap", func(s *Solution) { s.Operations[0].Start, s.Operations[0].End = 1, 4 }, "overlap"},
	}

	for _, scenario := range scenarios {
		t.Run(scenario.name, func(t *testing.T) {
			//** Arrange
			g := gomega.NewWithT(t)
			solution := valid()
			scenario.mutate(solution)

			//** Act
			err := Verify(instance, solution)

			//** Assert
			var inconsistency *DecodingInconsistencyError
			require.ErrorAs(t, err, &inconsistency)
			g.Expect(inconsistency.Instance).To(gomega.Equal(instance.Name))
			g.Expect(inconsistency.Violations).To(gomega.ContainElement(gomega.ContainSubstring(scenario.violation)))
		})
	}
}

func TestGantt(t *testing.T) {
	//** Arrange
	g := gomega.NewWithT(t)
	makespan := 11.0
	solution := &Solution{Operations: bigMSchedule(), Makespan: &makespan}

	//** Act
	gantt := solution.Gantt()

	//** Assert
	g.Expect(gantt).To(gomega.HaveLen(2))
	g.Expect(gantt[0].Machine).To(gomega.Equal(1))
	g.Expect(gantt[0].Operations).To(gomega.HaveExactElements(
		gomega.HaveField("Operation", 2),
		gomega.HaveField("Operation", 0),
	))
	g.Expect(gantt[1].Machine).To(gomega.Equal(2))
	g.Expect(gantt[1].Operations).To(gomega.HaveExactElements(
		gomega.HaveField("Operation", 3),
		gomega.HaveField("Operation", 1),
	))
}

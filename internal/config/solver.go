package config

import (
	"fmt"
	"slices"
	"time"

	"github.com/limaJavier/fjsp/pkg/milp"
)

const DefaultTimeLimit = 3600

// SolverConfig selects the MILP backend and its limits.
type SolverConfig struct {
	// Type is one of milp.ValidSolvers().
	Type string `json:"type"`
	// TimeLimit is the wall-clock budget per instance in seconds.
	TimeLimit float64 `json:"time_limit"`
	// Threads handed to the backend; 0 keeps the backend default.
	Threads int `json:"threads"`
	// MIPGap is the target relative gap; 0 keeps the backend default.
	MIPGap float64 `json:"mip_gap"`
	// Conf is decoded by the chosen backend (executable path, extra arguments, tolerances).
	Conf map[string]any `json:"conf"`
}

func (c *SolverConfig) SetDefaults() {
	if c.Type == "" {
		c.Type = milp.BranchBound
	}
	if c.TimeLimit == 0 {
		c.TimeLimit = DefaultTimeLimit
	}
}

func (c SolverConfig) Validate() error {
	if !slices.Contains(milp.ValidSolvers(), c.Type) {
		return fmt.Errorf("unknown type %q (valid: %v)", c.Type, milp.ValidSolvers())
	}
	if c.TimeLimit < 0 {
		return fmt.Errorf("time_limit must not be negative (got %v)", c.TimeLimit)
	}
	if c.Threads < 0 {
		return fmt.Errorf("threads must not be negative (got %d)", c.Threads)
	}
	if c.MIPGap < 0 || c.MIPGap >= 1 {
		return fmt.Errorf("mip_gap must be in [0, 1) (got %v)", c.MIPGap)
	}
	return nil
}

func (c SolverConfig) Options() milp.Options {
	return milp.Options{
		TimeLimit: time.Duration(c.TimeLimit * float64(time.Second)),
		Threads:   c.Threads,
		MIPGap:    c.MIPGap,
	}
}

func (c SolverConfig) New() (milp.Solver, error) {
	return milp.NewSolver(c.Type, c.Conf)
}

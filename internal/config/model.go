package config

import (
	"fmt"

	"github.com/limaJavier/fjsp/pkg/model"
)

type ModelConfig struct {
	BigM                string  `json:"big_m"`
	BigMValue           float64 `json:"big_m_value"` // Only read by the fixed policy
	AssignmentThreshold float64 `json:"assignment_threshold"`
}

func (c *ModelConfig) SetDefaults() {
	if c.BigM == "" {
		c.BigM = model.SumPolicyName
	}
	if c.AssignmentThreshold == 0 {
		c.AssignmentThreshold = model.DefaultAssignmentThreshold
	}
}

func (c ModelConfig) Validate() error {
	if _, err := c.Policy(); err != nil {
		return err
	}
	if c.AssignmentThreshold <= 0 || c.AssignmentThreshold > 1 {
		return fmt.Errorf("assignment_threshold must be in (0, 1] (got %v)", c.AssignmentThreshold)
	}
	return nil
}

func (c ModelConfig) Policy() (model.BigMPolicy, error) {
	return model.NewBigMPolicy(c.BigM, c.BigMValue)
}

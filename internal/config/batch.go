package config

import "fmt"

// BatchConfig controls instance discovery and parallelism of a batch run.
type BatchConfig struct {
	// Extensions accepted during discovery, compared case-insensitively.
	Extensions []string `json:"extensions"`
	// Prefer restricts discovery to paths containing this substring when any does.
	Prefer string `json:"prefer"`
	// MaxInstances truncates the sorted discovery; 0 means all.
	MaxInstances int `json:"max_instances"`
	// Workers solving instances concurrently.
	Workers int `json:"workers"`
}

func (c *BatchConfig) SetDefaults() {
	if len(c.Extensions) == 0 {
		c.Extensions = []string{".fjs", ".fjsp", ".txt", ".dat"}
	}
	if c.Prefer == "" {
		c.Prefer = "fattahi"
	}
	if c.Workers == 0 {
		c.Workers = 1
	}
}

func (c BatchConfig) Validate() error {
	if c.Workers < 1 {
		return fmt.Errorf("workers must be positive (got %d)", c.Workers)
	}
	if c.MaxInstances < 0 {
		return fmt.Errorf("max_instances must not be negative (got %d)", c.MaxInstances)
	}
	return nil
}

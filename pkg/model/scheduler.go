package model

import "context"

type Scheduler interface {
	// Builds, solves and decodes the instance. Non-optimal terminations are reported through Solution.Status;
	// the error covers invalid instances, solver failures and inconsistent decodings
	Schedule(ctx context.Context, instance *Instance) (*Solution, error)
}

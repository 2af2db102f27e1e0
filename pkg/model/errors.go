package model

import (
	"errors"
	"fmt"
	"strings"
)

// ErrBigMTooSmall is returned when a fixed Big-M is below the total processing time of the instance
var ErrBigMTooSmall = errors.New("big-M is smaller than the total processing time")

// MalformedInstanceError reports a structural failure while reading an instance file.
// Job and Operation are -1 when the failure is not tied to one of them.
type MalformedInstanceError struct {
	Instance  string
	Job       int
	Operation int
	Reason    string
}

func (err *MalformedInstanceError) Error() string {
	return fmt.Sprintf("malformed instance %q%v: %v", err.Instance, location(err.Job, err.Operation), err.Reason)
}

// InstanceValidationError reports a structurally readable instance that breaks a semantic rule
// (e.g. an operation without eligible machines)
type InstanceValidationError struct {
	Instance  string
	Job       int
	Operation int
	Reason    string
}

func (err *InstanceValidationError) Error() string {
	return fmt.Sprintf("invalid instance %q%v: %v", err.Instance, location(err.Job, err.Operation), err.Reason)
}

// DecodingInconsistencyError signals that the solver's values do not describe a valid schedule.
// It points to a modeling bug (e.g. an undersized Big-M) or a broken solver contract and must never be
// reported as a regular "no solution" outcome
type DecodingInconsistencyError struct {
	Instance   string
	Violations []string
}

func (err *DecodingInconsistencyError) Error() string {
	return fmt.Sprintf("decoded schedule of %q is inconsistent: %v", err.Instance, strings.Join(err.Violations, "; "))
}

// IsInstanceError reports whether err is a per-instance parse or validation failure
func IsInstanceError(err error) bool {
	var malformed *MalformedInstanceError
	var invalid *InstanceValidationError
	return errors.As(err, &malformed) || errors.As(err, &invalid)
}

// IsDecodingInconsistency reports whether err carries a DecodingInconsistencyError
func IsDecodingInconsistency(err error) bool {
	var inconsistency *DecodingInconsistencyError
	return errors.As(err, &inconsistency)
}

func location(job, operation int) string {
	switch {
	case job >= 0 && operation >= 0:
		return fmt.Sprintf(" (job %d, operation %d)", job, operation)
	case job >= 0:
		return fmt.Sprintf(" (job %d)", job)
	default:
		return ""
	}
}

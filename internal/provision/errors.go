// Package provision creates or updates the pipeline's cloud resources:
// the unit functions, the state machine, and the bucket notification that
// invokes the trigger unit. Every operation is keyed by resource name and
// safe to repeat.
package provision

import "errors"

// Sentinel errors for provisioning operations.
var (
	ErrArtifactNotFound = errors.New("artifact not found")
	ErrInvalidArtifact  = errors.New("invalid artifact")
	ErrFunctionNotFound = errors.New("function not found")
)

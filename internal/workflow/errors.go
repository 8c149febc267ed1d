// Package workflow models the state-machine definition that sequences metadata
// extraction and classification, and binds its function placeholders to
// deployed function ARNs.
package workflow

import "errors"

// Sentinel errors for definition operations.
var (
	ErrInvalidDefinition  = errors.New("invalid workflow definition")
	ErrUnboundPlaceholder = errors.New("unbound placeholder")
	ErrInvalidResource    = errors.New("invalid task resource")
)

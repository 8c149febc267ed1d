package pipeline

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinel errors for the two failure kinds a unit can report.
var (
	ErrStructuralInput = errors.New("structural input error")
	ErrUnexpected      = errors.New("unexpected error")
)

// Kind names a failure category.
type Kind string

// Failure kinds reported by KindOf.
const (
	KindNone       Kind = ""
	KindStructural Kind = "structural_input"
	KindUnexpected Kind = "unexpected"
)

// StructuralInputError reports a required field absent from, or malformed in,
// an incoming message. The invoking environment marks the invocation failed and
// applies its own retry policy.
type StructuralInputError struct {
	Field  string
	Reason string
}

// MissingField returns a StructuralInputError for an absent field.
func MissingField(field string) *StructuralInputError {
	return &StructuralInputError{Field: field, Reason: "missing required field"}
}

func (e *StructuralInputError) Error() string {
	return fmt.Sprintf("%s: %s: %s", ErrStructuralInput, e.Field, e.Reason)
}

// Is reports whether target is ErrStructuralInput.
func (e *StructuralInputError) Is(target error) bool {
	return target == ErrStructuralInput
}

// UnexpectedError wraps any other failure, including recovered panics.
type UnexpectedError struct {
	Err error
}

func (e *UnexpectedError) Error() string {
	return fmt.Sprintf("%s: %v", ErrUnexpected, e.Err)
}

func (e *UnexpectedError) Unwrap() error {
	return e.Err
}

// Is reports whether target is ErrUnexpected.
func (e *UnexpectedError) Is(target error) bool {
	return target == ErrUnexpected
}

// KindOf classifies err. Any non-nil error that is not structural is unexpected.
func KindOf(err error) Kind {
	switch {
	case err == nil:
		return KindNone
	case errors.Is(err, ErrStructuralInput):
		return KindStructural
	default:
		return KindUnexpected
	}
}

// Normalize converts err into exactly one of the two typed unit errors.
// Structural errors nested in a wrap chain are returned unwrapped so the
// reported error type stays StructuralInputError.
func Normalize(err error) error {
	if err == nil {
		return nil
	}

	var structural *StructuralInputError
	if errors.As(err, &structural) {
		return structural
	}

	var unexpected *UnexpectedError
	if errors.As(err, &unexpected) {
		return unexpected
	}

	return &UnexpectedError{Err: err}
}

// MapHTTPStatus maps unit errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	if errors.Is(err, ErrStructuralInput) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

package scoring

import (
	"errors"
	"fmt"
)

// Validation error codes.
const (
	CodeMissingName               = "missing-name"
	CodeInsufficientTeachingYears = "insufficient-teaching-years"
	CodeInvalidNumericField       = "invalid-numeric-field"
)

// ValidationError rejects a record before scoring. It is caller-correctable and
// never retryable as-is.
type ValidationError struct {
	Code  string `json:"code"`
	Field string `json:"field,omitempty"`
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed: %s (%s)", e.Code, e.Field)
	}
	return "validation failed: " + e.Code
}

// IsValidationError reports whether err is, or wraps, a *ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

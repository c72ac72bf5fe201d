package types

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound           = errors.New("not found")
	ErrForbidden          = errors.New("forbidden")
	ErrServiceUnavailable = errors.New("service unavailable")
)

// ValidationError is a field scoped rejection of submitted input. Code is
// the short identifier rendered by templates, e.g. "not_pdf".
type ValidationError struct {
	Field string
	Code  string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Code)
}

func NewValidationError(field, code string) *ValidationError {
	return &ValidationError{Field: field, Code: code}
}

package services

import (
	"errors"

	"catalog/internal/repositories"
	"catalog/internal/validation"
)

var (
	// ErrNotFound is returned when the referenced product does not exist.
	ErrNotFound = repositories.ErrNotFound
	// ErrValidationFailed is wrapped by every *ValidationError.
	ErrValidationFailed = errors.New("validation failed")
)

// ValidationError reports the constraints violated by submitted product fields.
// Its message is the first violation only.
type ValidationError struct {
	fields []validation.FieldError
}

// NewValidationError wraps one or more field errors; first is the reported one.
func NewValidationError(first validation.FieldError, rest ...validation.FieldError) *ValidationError {
	fields := make([]validation.FieldError, 0, 1+len(rest))
	fields = append(fields, first)
	return &ValidationError{fields: append(fields, rest...)}
}

func (e *ValidationError) Error() string {
	return e.fields[0].Message
}

func (e *ValidationError) Unwrap() error {
	return ErrValidationFailed
}

// Errors returns every violation in declaration order.
func (e *ValidationError) Errors() []validation.FieldError {
	out := make([]validation.FieldError, len(e.fields))
	copy(out, e.fields)
	return out
}

// User-facing outcome messages.
const (
	MsgProductAdded    = "Product added successfully"
	MsgProductUpdated  = "Product updated"
	MsgProductRemoved  = "Product removed successfully"
	MsgProductNotFound = "Product not found"
	MsgInternalError   = "Something went wrong, please try again"
)

// Result is the outcome of a product operation as shown to the user.
type Result struct {
	OK      bool
	Message string
}

// ResultOf maps the error returned by a ProductService call to a Result.
func ResultOf(err error, success string) Result {
	if err == nil {
		return Result{OK: true, Message: success}
	}
	var validationErr *ValidationError
	switch {
	case errors.As(err, &validationErr):
		return Result{Message: validationErr.Error()}
	case errors.Is(err, ErrNotFound):
		return Result{Message: MsgProductNotFound}
	default:
		return Result{Message: MsgInternalError}
	}
}

package matrix

import (
	"errors"
	"fmt"
)

var (
	// ErrShape marks an empty matrix, an empty row or non-rectangular rows.
	ErrShape = errors.New("matrix: invalid shape")
	// ErrType marks a non-numeric, NaN or infinite cell, or a container that is
	// not a sequence of sequences.
	ErrType = errors.New("matrix: invalid value")
	// ErrEmptyInput marks a request carrying neither a matrix nor a Q/R pair.
	ErrEmptyInput = errors.New("matrix: no input supplied")
	// ErrOverflow marks finite cells whose sum leaves the float64 range.
	ErrOverflow = errors.New("matrix: sum out of range")
	// ErrEmptyValues is an internal invariant violation: validated input always
	// carries at least one value.
	ErrEmptyValues = errors.New("matrix: empty value set")
)

// Reason identifies which invariant a validation failure broke.
type Reason string

const (
	ReasonEmptyMatrix    Reason = "empty_matrix"
	ReasonEmptyRow       Reason = "empty_row"
	ReasonNotRectangular Reason = "not_rectangular"
	ReasonNotNumeric     Reason = "not_numeric"
	ReasonNotFinite      Reason = "not_finite"
	ReasonNotMatrix      Reason = "not_matrix"
	ReasonMissingField   Reason = "missing_field"
	ReasonBadTolerance   Reason = "invalid_tolerance"
	ReasonOverflow       Reason = "overflow"
)

// ValidationError describes a rejected input.
type ValidationError struct {
	Field  string
	Reason Reason
	Err    error
	Msg    string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Msg
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Msg)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// Kind returns the short taxonomy name of the failure.
func (e *ValidationError) Kind() string {
	switch {
	case errors.Is(e.Err, ErrShape):
		return "ShapeError"
	case errors.Is(e.Err, ErrType):
		return "TypeError"
	case errors.Is(e.Err, ErrEmptyInput):
		return "EmptyInputError"
	case errors.Is(e.Err, ErrOverflow):
		return "RangeError"
	default:
		return "ValidationError"
	}
}

func shapeError(field string, reason Reason, msg string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason, Err: ErrShape, Msg: msg}
}

func typeError(field string, reason Reason, msg string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason, Err: ErrType, Msg: msg}
}

func overflowError(field string) *ValidationError {
	return &ValidationError{
		Field:  field,
		Reason: ReasonOverflow,
		Err:    ErrOverflow,
		Msg:    "values sum beyond the representable range",
	}
}

// EmptyInput builds the error for a request with nothing to compute. field names
// the missing member when only half of a pair was supplied.
func EmptyInput(field, msg string) *ValidationError {
	return &ValidationError{Field: field, Reason: ReasonMissingField, Err: ErrEmptyInput, Msg: msg}
}

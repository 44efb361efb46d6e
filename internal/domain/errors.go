package domain

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a calculation failure so hosts can render a message
// per field without parsing error text.
type ErrorKind string

const (
	KindInvalidInput         ErrorKind = "invalid_input"
	KindInvalidRange         ErrorKind = "invalid_range"
	KindInvariantViolation   ErrorKind = "invariant_violation"
	KindArithmeticDegenerate ErrorKind = "arithmetic_degenerate"
)

// Sentinels for errors.Is matching against a CalculationError's kind.
var (
	ErrInvalidInput         = errors.New("invalid input")
	ErrInvalidRange         = errors.New("invalid range")
	ErrInvariantViolation   = errors.New("invariant violation")
	ErrArithmeticDegenerate = errors.New("arithmetic degenerate")
)

func (k ErrorKind) sentinel() error {
	switch k {
	case KindInvalidInput:
		return ErrInvalidInput
	case KindInvalidRange:
		return ErrInvalidRange
	case KindInvariantViolation:
		return ErrInvariantViolation
	case KindArithmeticDegenerate:
		return ErrArithmeticDegenerate
	}
	return nil
}

// CalculationError is returned by every model in place of a NaN, Infinity or
// silently coerced zero.
type CalculationError struct {
	Kind      ErrorKind `json:"kind"`
	Operation string    `json:"operation"`
	Field     string    `json:"field,omitempty"`
	Message   string    `json:"message"`
	Cause     error     `json:"-"`
}

func (e *CalculationError) Error() string {
	msg := e.Operation + ": "
	if e.Field != "" {
		msg += e.Field + ": "
	}
	msg += e.Message
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *CalculationError) Unwrap() error {
	return e.Cause
}

// Is reports whether target is the sentinel for this error's kind.
func (e *CalculationError) Is(target error) bool {
	s := e.Kind.sentinel()
	return s != nil && target == s
}

// InvalidInput builds a KindInvalidInput error for a single field.
func InvalidInput(op, field, format string, args ...any) *CalculationError {
	return &CalculationError{Kind: KindInvalidInput, Operation: op, Field: field, Message: fmt.Sprintf(format, args...)}
}

// InvalidRange builds a KindInvalidRange error.
func InvalidRange(op, field, format string, args ...any) *CalculationError {
	return &CalculationError{Kind: KindInvalidRange, Operation: op, Field: field, Message: fmt.Sprintf(format, args...)}
}

// InvariantViolation builds a KindInvariantViolation error.
func InvariantViolation(op, field, format string, args ...any) *CalculationError {
	return &CalculationError{Kind: KindInvariantViolation, Operation: op, Field: field, Message: fmt.Sprintf(format, args...)}
}

// ArithmeticDegenerate builds a KindArithmeticDegenerate error.
func ArithmeticDegenerate(op, field, format string, args ...any) *CalculationError {
	return &CalculationError{Kind: KindArithmeticDegenerate, Operation: op, Field: field, Message: fmt.Sprintf(format, args...)}
}

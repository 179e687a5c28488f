package where

import (
	"errors"
	"fmt"
)

// Compiler errors
var (
	ErrUnknownField   = errors.New("unknown field")
	ErrRecursionDepth = errors.New("recursion depth exceeded")
	ErrInvalidFilter  = errors.New("invalid filter")
)

// UnknownFieldError names a field the registry does not know.
type UnknownFieldError struct {
	Entity string
	Field  string
}

func (e *UnknownFieldError) Error() string {
	return fmt.Sprintf("%s: %q on %s", ErrUnknownField, e.Field, e.Entity)
}

func (e *UnknownFieldError) Unwrap() error {
	return ErrUnknownField
}

// DepthError is returned when a filter nests deeper than the compiler allows.
type DepthError struct {
	Max int
}

func (e *DepthError) Error() string {
	return fmt.Sprintf("%s: filter nests deeper than %d levels", ErrRecursionDepth, e.Max)
}

func (e *DepthError) Unwrap() error {
	return ErrRecursionDepth
}

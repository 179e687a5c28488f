package ql

import (
	"errors"
	"fmt"
)

// Template errors
var (
	ErrEmptyTemplate       = errors.New("empty template")
	ErrTemplateArity       = errors.New("template arity mismatch")
	ErrConflictingVariable = errors.New("conflicting variable")
	ErrInvalidVariable     = errors.New("invalid variable name")
)

// ArityError reports a template whose values do not fit between its
// segments.
type ArityError struct {
	Segments int
	Values   int
}

func (e *ArityError) Error() string {
	return fmt.Sprintf("%s: %d segments need %d values, got %d", ErrTemplateArity, e.Segments, e.Segments-1, e.Values)
}

func (e *ArityError) Unwrap() error {
	return ErrTemplateArity
}

// ConflictError reports one variable hoisted with two different values.
type ConflictError struct {
	Name   string
	First  string
	Second string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s: $%s is both %s and %s", ErrConflictingVariable, e.Name, e.First, e.Second)
}

func (e *ConflictError) Unwrap() error {
	return ErrConflictingVariable
}

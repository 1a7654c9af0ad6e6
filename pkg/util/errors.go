// Package util provides logging helpers and common error types.
package util

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for harness faults. These all indicate the harness itself
// is misconfigured or misused; they are never recorded as compliance
// failures and always abort the run.
var (
	ErrInvalidInput     = errors.New("invalid input")
	ErrInvalidSpec      = errors.New("invalid specification")
	ErrValidationFailed = errors.New("validation failed")
	ErrFinalized        = errors.New("report already finalized")
)

// InputError represents invalid input to a checker with context
type InputError struct {
	Component string // "timing", "switching", "report"
	Subject   string // characteristic or scenario name
	Detail    string
}

func (e *InputError) Error() string {
	if e.Subject != "" {
		return fmt.Sprintf("%s: %s: %s", e.Component, e.Subject, e.Detail)
	}
	return fmt.Sprintf("%s: %s", e.Component, e.Detail)
}

func (e *InputError) Unwrap() error {
	return ErrInvalidInput
}

// NewInputError creates a new input error
func NewInputError(component, subject, detail string) *InputError {
	return &InputError{Component: component, Subject: subject, Detail: detail}
}

// SpecError represents a malformed timing or scenario specification
type SpecError struct {
	Name   string
	Detail string
}

func (e *SpecError) Error() string {
	return fmt.Sprintf("spec %s: %s", e.Name, e.Detail)
}

func (e *SpecError) Unwrap() error {
	return ErrInvalidSpec
}

// NewSpecError creates a spec error
func NewSpecError(name, detail string) *SpecError {
	return &SpecError{Name: name, Detail: detail}
}

// ValidationError represents one or more validation failures
type ValidationError struct {
	Errors []string
}

func (e *ValidationError) Error() string {
	if len(e.Errors) == 1 {
		return "validation failed: " + e.Errors[0]
	}
	return fmt.Sprintf("validation failed:\n  - %s", strings.Join(e.Errors, "\n  - "))
}

func (e *ValidationError) Unwrap() error {
	return ErrValidationFailed
}

// NewValidationError creates a validation error from messages
func NewValidationError(messages ...string) *ValidationError {
	return &ValidationError{Errors: messages}
}

// ValidationBuilder helps accumulate validation errors
type ValidationBuilder struct {
	errors []string
}

// Add adds an error message if condition is false
func (v *ValidationBuilder) Add(condition bool, message string) *ValidationBuilder {
	if !condition {
		v.errors = append(v.errors, message)
	}
	return v
}

// AddError adds an error message unconditionally
func (v *ValidationBuilder) AddError(message string) *ValidationBuilder {
	v.errors = append(v.errors, message)
	return v
}

// AddErrorf adds a formatted error message
func (v *ValidationBuilder) AddErrorf(format string, args ...interface{}) *ValidationBuilder {
	v.errors = append(v.errors, fmt.Sprintf(format, args...))
	return v
}

// HasErrors returns true if there are validation errors
func (v *ValidationBuilder) HasErrors() bool {
	return len(v.errors) > 0
}

// Build returns the validation error or nil if no errors
func (v *ValidationBuilder) Build() error {
	if len(v.errors) == 0 {
		return nil
	}
	return &ValidationError{Errors: v.errors}
}

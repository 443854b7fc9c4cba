// Package errors provides custom error types for domain-specific errors.
package errors

import (
	"errors"
	"fmt"
)

// Standard sentinel errors
var (
	ErrColumnNotFound    = errors.New("column not found")
	ErrKernelNotFound    = errors.New("kernel not found")
	ErrLengthMismatch    = errors.New("column length does not match index")
	ErrConfigInvalid     = errors.New("invalid configuration")
	ErrDataNotFound      = errors.New("data not found")
	ErrUnsupportedFormat = errors.New("unsupported format")
	ErrDatabaseError     = errors.New("database error")
	ErrInputValidation   = errors.New("input validation failed")
)

// ColumnError reports a role column that is absent from the bar frame.
type ColumnError struct {
	Kernel string
	Role   string
	Column string
}

func (e *ColumnError) Error() string {
	return fmt.Sprintf("kernel %s: %s column %q: %v", e.Kernel, e.Role, e.Column, ErrColumnNotFound)
}

func (e *ColumnError) Unwrap() error {
	return ErrColumnNotFound
}

// NewColumnError creates a new ColumnError.
func NewColumnError(kernel, role, column string) *ColumnError {
	return &ColumnError{
		Kernel: kernel,
		Role:   role,
		Column: column,
	}
}

// ValidationError represents a validation error.
type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error: %s (%v): %s", e.Field, e.Value, e.Message)
}

func (e *ValidationError) Unwrap() error {
	return ErrInputValidation
}

// NewValidationError creates a new ValidationError.
func NewValidationError(field string, value interface{}, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Value:   value,
		Message: message,
	}
}

// DataError represents a failure reading or writing bar data.
type DataError struct {
	Source  string
	Message string
	Err     error
}

func (e *DataError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("data error [%s]: %s: %v", e.Source, e.Message, e.Err)
	}
	return fmt.Sprintf("data error [%s]: %s", e.Source, e.Message)
}

func (e *DataError) Unwrap() error {
	return e.Err
}

// NewDataError creates a new DataError.
func NewDataError(source, message string, err error) *DataError {
	return &DataError{
		Source:  source,
		Message: message,
		Err:     err,
	}
}

// KernelError attaches the kernel tag to a failure raised while running it.
type KernelError struct {
	Kernel string
	Err    error
}

func (e *KernelError) Error() string {
	return fmt.Sprintf("kernel error [%s]: %v", e.Kernel, e.Err)
}

func (e *KernelError) Unwrap() error {
	return e.Err
}

// NewKernelError creates a new KernelError.
func NewKernelError(kernel string, err error) *KernelError {
	return &KernelError{
		Kernel: kernel,
		Err:    err,
	}
}

// Wrap wraps an error with additional context.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf wraps an error with formatted context.
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

package repeat

import (
	"errors"
	"fmt"
)

// InfraError represents an operational error that should lead to exit code 2.
// Examples include a missing engine binary, an unparsable report or an
// unwritable summary file.
type InfraError struct {
	Err error
}

func (e *InfraError) Error() string {
	return fmt.Sprintf("infrastructure error: %v", e.Err)
}

// Unwrap implements the errors.Unwrap interface
func (e *InfraError) Unwrap() error {
	return e.Err
}

// NewInfraError creates a new InfraError
func NewInfraError(err error) *InfraError {
	return &InfraError{Err: err}
}

// IsInfraError checks if the error is or wraps an InfraError
func IsInfraError(err error) bool {
	var infraErr *InfraError
	return err != nil && errors.As(err, &infraErr)
}

// TestFailureError represents failing tests observed across the run (exit code 1)
type TestFailureError struct {
	Message string
}

func (e *TestFailureError) Error() string {
	return fmt.Sprintf("test failure: %s", e.Message)
}

// NewTestFailureError creates a new TestFailureError
func NewTestFailureError(message string) *TestFailureError {
	return &TestFailureError{Message: message}
}

// IsTestFailureError checks if the error is or wraps a TestFailureError
func IsTestFailureError(err error) bool {
	var testErr *TestFailureError
	return err != nil && errors.As(err, &testErr)
}

package errors

import (
	"errors"
	"fmt"
	"strings"
)

// ParseError represents a YAML parsing failure with optional line metadata.
type ParseError struct {
	Path    string
	Line    int
	Message string
	Err     error
}

// NewParseError constructs a ParseError.
func NewParseError(path string, line int, err error) error {
	message := ""
	if err != nil {
		message = err.Error()
	}
	return &ParseError{Path: path, Line: line, Message: message, Err: err}
}

func (e *ParseError) Error() string {
	if e == nil {
		return ""
	}

	if e.Line > 0 {
		return fmt.Sprintf("parse error: %s:%d: %s", e.Path, e.Line, e.Message)
	}
	return fmt.Sprintf("parse error: %s: %s", e.Path, e.Message)
}

// Unwrap exposes the underlying error.
func (e *ParseError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// ValidationError captures configuration validation issues.
type ValidationError struct {
	Field   string
	Message string
	Err     error
}

// NewValidationError constructs a ValidationError.
func NewValidationError(field, message string, err error) error {
	return &ValidationError{Field: field, Message: message, Err: err}
}

func (e *ValidationError) Error() string {
	if e == nil {
		return ""
	}
	if e.Field != "" {
		return fmt.Sprintf("validation error: %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation error: %s", e.Message)
}

// Unwrap exposes the underlying error.
func (e *ValidationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// UnreachableError indicates an external dependency could not be contacted.
// Readiness polling retries these up to the configured attempt bound; past
// that bound the error is fatal for the whole run.
type UnreachableError struct {
	Target string
	Err    error
}

// NewUnreachableError constructs an UnreachableError for the named dependency.
func NewUnreachableError(target string, err error) error {
	return &UnreachableError{Target: target, Err: err}
}

func (e *UnreachableError) Error() string {
	if e == nil {
		return ""
	}
	if e.Target != "" {
		return fmt.Sprintf("%s unreachable: %v", e.Target, e.Err)
	}
	return fmt.Sprintf("dependency unreachable: %v", e.Err)
}

// Unwrap exposes the underlying error.
func (e *UnreachableError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// ReadFailedError marks a state check that could not produce an answer.
// It is deliberately distinct from "resource absent": a store error or an
// undecodable query result must never be treated as a missing row.
type ReadFailedError struct {
	Resource string
	Message  string
	Err      error
}

// NewReadFailedError constructs a ReadFailedError for the named resource.
func NewReadFailedError(resource, message string, err error) error {
	return &ReadFailedError{Resource: resource, Message: message, Err: err}
}

func (e *ReadFailedError) Error() string {
	if e == nil {
		return ""
	}
	parts := make([]string, 0, 2)
	if e.Resource != "" {
		parts = append(parts, e.Resource)
	}
	if e.Message != "" {
		parts = append(parts, e.Message)
	}
	if e.Err != nil {
		parts = append(parts, e.Err.Error())
	}
	return fmt.Sprintf("read failed: %s", strings.Join(parts, ": "))
}

// Unwrap exposes the underlying error.
func (e *ReadFailedError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// RejectedError indicates the external store or API refused a mutation.
// Rejections are recorded per assertion and are not retried automatically.
type RejectedError struct {
	Op      string
	Message string
	Err     error
}

// NewRejectedError constructs a RejectedError for the given operation.
func NewRejectedError(op, message string, err error) error {
	return &RejectedError{Op: op, Message: message, Err: err}
}

func (e *RejectedError) Error() string {
	if e == nil {
		return ""
	}
	if e.Message != "" {
		return fmt.Sprintf("rejected: %s: %s", e.Op, e.Message)
	}
	return fmt.Sprintf("rejected: %s: %v", e.Op, e.Err)
}

// Unwrap exposes the underlying error.
func (e *RejectedError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// CycleError reports a dependency cycle in the assertion graph. This is a
// programmer error and aborts the run before any mutation is attempted.
type CycleError struct {
	IDs []string
}

// NewCycleError constructs a CycleError naming the assertions left unordered.
func NewCycleError(ids []string) error {
	return &CycleError{IDs: ids}
}

func (e *CycleError) Error() string {
	if e == nil {
		return ""
	}
	if len(e.IDs) > 0 {
		return fmt.Sprintf("cycle detected in assertion graph: %s", strings.Join(e.IDs, ", "))
	}
	return "cycle detected in assertion graph"
}

// ExecError represents a runtime failure while running a command inside a
// container.
type ExecError struct {
	Container string
	ExitCode  int
	Err       error
}

// NewExecError constructs an ExecError.
func NewExecError(container string, exitCode int, err error) error {
	return &ExecError{Container: container, ExitCode: exitCode, Err: err}
}

func (e *ExecError) Error() string {
	if e == nil {
		return ""
	}
	if e.Container != "" {
		return fmt.Sprintf("exec error in container %s (exit %d): %v", e.Container, e.ExitCode, e.Err)
	}
	return fmt.Sprintf("exec error (exit %d): %v", e.ExitCode, e.Err)
}

// Unwrap exposes the root error.
func (e *ExecError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// IsUnreachable reports whether err wraps an UnreachableError.
func IsUnreachable(err error) bool {
	var target *UnreachableError
	return errors.As(err, &target)
}

// IsReadFailed reports whether err wraps a ReadFailedError.
func IsReadFailed(err error) bool {
	var target *ReadFailedError
	return errors.As(err, &target)
}

// IsRejected reports whether err wraps a RejectedError.
func IsRejected(err error) bool {
	var target *RejectedError
	return errors.As(err, &target)
}

// IsCycle reports whether err wraps a CycleError.
func IsCycle(err error) bool {
	var target *CycleError
	return errors.As(err, &target)
}

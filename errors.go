package hsm

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorCode represents specific error conditions in the state machine
type ErrorCode int

const (
	// No error occurred
	ErrCodeNone ErrorCode = iota
	// State was not found in the graph
	ErrCodeStateNotFound
	// Argument passed to a structural operation is invalid
	ErrCodeInvalidArgument
	// Machine structure or policy validation failed
	ErrCodeInvalidConfiguration
	// Transition action failed
	ErrCodeActionFailed
	// Entry or exit callback failed
	ErrCodeCallbackFailed
)

func (c ErrorCode) String() string {
	switch c {
	case ErrCodeNone:
		return "none"
	case ErrCodeStateNotFound:
		return "state_not_found"
	case ErrCodeInvalidArgument:
		return "invalid_argument"
	case ErrCodeInvalidConfiguration:
		return "invalid_configuration"
	case ErrCodeActionFailed:
		return "action_failed"
	case ErrCodeCallbackFailed:
		return "callback_failed"
	default:
		return fmt.Sprintf("code(%d)", int(c))
	}
}

var (
	// ErrNotComposite is wrapped by ArgumentError when a composite state is required
	ErrNotComposite = errors.New("state is not composite")
	// ErrStateNotFound is wrapped by ArgumentError when a referenced state is not registered
	ErrStateNotFound = errors.New("state not found")
	// ErrDuplicateState is wrapped by ArgumentError when a submachine state
	// name is already registered in the parent machine
	ErrDuplicateState = errors.New("state already registered")
)

// ValidationError is returned by Start when the machine structure or the
// external validator rejects the machine.
type ValidationError struct {
	Problems []string
	Err      error
}

func (e *ValidationError) Error() string {
	var parts []string
	parts = append(parts, e.Problems...)
	if e.Err != nil {
		parts = append(parts, e.Err.Error())
	}
	if len(parts) == 0 {
		return "validation failed"
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// NewValidationError creates a validation error listing structural problems
func NewValidationError(problems []string) *ValidationError {
	return &ValidationError{Problems: problems}
}

// ArgumentError reports an invalid argument to a structural operation.
// The operation that returned it performed no mutation.
type ArgumentError struct {
	Op     string
	Arg    string
	Reason string
	Err    error
}

func (e *ArgumentError) Error() string {
	return fmt.Sprintf("%s: invalid argument %q: %s", e.Op, e.Arg, e.Reason)
}

func (e *ArgumentError) Unwrap() error {
	return e.Err
}

// NewArgumentError creates a new argument error
func NewArgumentError(op, arg, reason string, err error) *ArgumentError {
	return &ArgumentError{
		Op:     op,
		Arg:    arg,
		Reason: reason,
		Err:    err,
	}
}

// Stage identifies the step of a transition that failed
type Stage string

const (
	StageExit   Stage = "exit"
	StageAction Stage = "action"
	StageEntry  Stage = "entry"
)

// TransitionError wraps a failure raised while exiting, acting or entering.
// Nothing is rolled back: the machine stays where the failing step left it.
type TransitionError struct {
	From  string
	To    string
	Event string
	Stage Stage
	Err   error
}

func (e *TransitionError) Error() string {
	if e.Event != "" {
		return fmt.Sprintf("transition error [%s->%s on %s] during %s: %v", e.From, e.To, e.Event, e.Stage, e.Err)
	}
	return fmt.Sprintf("transition error [%s->%s] during %s: %v", e.From, e.To, e.Stage, e.Err)
}

func (e *TransitionError) Unwrap() error {
	return e.Err
}

// NewTransitionError creates a new transition error
func NewTransitionError(from, to string, event Event, stage Stage, err error) *TransitionError {
	return &TransitionError{
		From:  from,
		To:    to,
		Event: EventName(event),
		Stage: stage,
		Err:   err,
	}
}

// IsValidationError checks if an error is a ValidationError
func IsValidationError(err error) bool {
	var target *ValidationError
	return errors.As(err, &target)
}

// IsArgumentError checks if an error is an ArgumentError
func IsArgumentError(err error) bool {
	var target *ArgumentError
	return errors.As(err, &target)
}

// IsTransitionError checks if an error is a TransitionError
func IsTransitionError(err error) bool {
	var target *TransitionError
	return errors.As(err, &target)
}

// GetErrorCode returns the error code for known error types
func GetErrorCode(err error) ErrorCode {
	var (
		validationErr *ValidationError
		argumentErr   *ArgumentError
		transitionErr *TransitionError
	)
	switch {
	case errors.As(err, &validationErr):
		return ErrCodeInvalidConfiguration
	case errors.As(err, &argumentErr):
		if errors.Is(argumentErr.Err, ErrStateNotFound) {
			return ErrCodeStateNotFound
		}
		return ErrCodeInvalidArgument
	case errors.As(err, &transitionErr):
		if transitionErr.Stage == StageAction {
			return ErrCodeActionFailed
		}
		return ErrCodeCallbackFailed
	default:
		return ErrCodeNone
	}
}

// safeCall runs fn and converts a panic into an error
func safeCall(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return fn()
}

// safeGuard evaluates a transition's guards, treating a panic as rejection
func safeGuard(t Transition, event Event) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			ok = false
		}
	}()
	return t.EvaluateGuards(event)
}

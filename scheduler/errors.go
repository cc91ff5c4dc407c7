package scheduler

import (
	"errors"
	"fmt"
)

// Error kinds surfaced by the scheduler. All operations wrap one of
// these sentinels, so callers can match with errors.Is.
var (
	// ErrCapacityExceeded means a push would overflow the combined
	// stack region. The operation is rejected and the state unchanged.
	ErrCapacityExceeded = errors.New("scheduler: capacity exceeded")

	// ErrStackUnderflow means a pop was attempted on an empty data or
	// call stack.
	ErrStackUnderflow = errors.New("scheduler: stack underflow")

	// ErrNoPendingTask means Execute was invoked with an empty call
	// stack.
	ErrNoPendingTask = errors.New("scheduler: no pending task")

	// ErrTypeMismatch means a popped entry did not decode into the
	// requested shape.
	ErrTypeMismatch = errors.New("scheduler: type mismatch")

	// ErrEncoding means serialization of a value to push failed, or a
	// stored envelope was malformed.
	ErrEncoding = errors.New("scheduler: encoding error")

	// ErrUnknownTaskKind means a popped call-stack entry carried a
	// type tag with no registered factory.
	ErrUnknownTaskKind = errors.New("scheduler: unknown task kind")
)

// TaskError reports a failure signalled by a task's own Execute logic.
// The failing task is not restored to the call stack; its failure is
// terminal for that unit of work.
type TaskError struct {
	Kind string // registered type tag of the failing task
	Err  error  // underlying cause
}

func (e *TaskError) Error() string {
	return fmt.Sprintf("scheduler: task %q failed: %v", e.Kind, e.Err)
}

func (e *TaskError) Unwrap() error {
	return e.Err
}

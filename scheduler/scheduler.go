// Package scheduler implements a resumable, stack-based task-execution
// engine.
//
// A Scheduler threads units of work through two cooperating stacks
// hosted in one fixed-capacity buffer: a call stack of pending tasks
// and a data stack of intermediate values. Callers push arguments onto
// the data stack, push a task onto the call stack, and drive execution
// one step at a time. Each executed task reads its inputs from the data
// stack, optionally schedules successor tasks or reschedules itself,
// and writes its output back to the data stack.
//
// The entire in-flight computation is serializable between any two
// Execute calls (see MarshalBinary), so a run can be persisted and
// resumed byte-for-byte at every task boundary.
package scheduler

import (
	"errors"
	"fmt"

	"github.com/neotheprogramist/scheduler/stack"
)

// DefaultCapacity is the combined byte budget of the two stacks when no
// explicit capacity is chosen.
const DefaultCapacity = 4096

// Scheduler orchestrates task execution over a bidirectional stack. It
// is the sole owner of the stack; all access is sequential and
// single-threaded.
type Scheduler struct {
	stack    *stack.Bidirectional
	registry *Registry
}

// Option configures a Scheduler at construction time.
type Option func(*config)

type config struct {
	capacity int
	registry *Registry
}

// WithCapacity fixes the total byte capacity shared by the data and
// call stacks. The capacity is a hard ceiling on combined in-flight
// state and must be sized for the deepest task tree the caller intends
// to run.
func WithCapacity(n int) Option {
	return func(c *config) { c.capacity = n }
}

// WithRegistry uses a private task registry instead of the package
// default.
func WithRegistry(r *Registry) Option {
	return func(c *config) { c.registry = r }
}

// New creates an empty scheduler.
func New(opts ...Option) *Scheduler {
	cfg := &config{
		capacity: DefaultCapacity,
		registry: defaultRegistry,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return &Scheduler{
		stack:    stack.New(cfg.capacity),
		registry: cfg.registry,
	}
}

// Capacity returns the total byte budget of the combined stacks.
func (s *Scheduler) Capacity() int {
	return s.stack.Capacity()
}

// DataBytes returns the bytes currently held by the data stack.
func (s *Scheduler) DataBytes() int {
	return s.stack.FrontBytes()
}

// CallBytes returns the bytes currently held by the call stack.
func (s *Scheduler) CallBytes() int {
	return s.stack.BackBytes()
}

// Idle reports whether the call stack is empty, i.e. execution has
// terminated.
func (s *Scheduler) Idle() bool {
	return s.stack.IsEmptyBack()
}

// PushTask serializes a task and pushes it onto the call stack.
func (s *Scheduler) PushTask(t Task) error {
	data, err := encodeTask(t)
	if err != nil {
		return err
	}
	if err := s.stack.PushBack(data); err != nil {
		return fmt.Errorf("%w: task %q needs %d bytes, %d available",
			ErrCapacityExceeded, t.Kind(), len(data), s.stack.Available())
	}
	return nil
}

// PopTask removes and restores the most recently pushed task.
func (s *Scheduler) PopTask() (Task, error) {
	data, err := s.stack.PopBack()
	if err != nil {
		if errors.Is(err, stack.ErrEmpty) {
			return nil, fmt.Errorf("%w: call stack is empty", ErrStackUnderflow)
		}
		return nil, fmt.Errorf("%w: %v", ErrEncoding, err)
	}
	return decodeTask(data, s.registry)
}

// PushData serializes a value and pushes it onto the data stack.
func (s *Scheduler) PushData(v any) error {
	data, err := cborEncMode.Marshal(v)
	if err != nil {
		return fmt.Errorf("%w: marshal data: %v", ErrEncoding, err)
	}
	if err := s.stack.PushFront(data); err != nil {
		return fmt.Errorf("%w: data value needs %d bytes, %d available",
			ErrCapacityExceeded, len(data), s.stack.Available())
	}
	return nil
}

// PopData removes the top data-stack entry and decodes it as T.
func PopData[T any](s *Scheduler) (T, error) {
	var v T
	data, err := s.stack.PopFront()
	if err != nil {
		if errors.Is(err, stack.ErrEmpty) {
			return v, fmt.Errorf("%w: data stack is empty", ErrStackUnderflow)
		}
		return v, fmt.Errorf("%w: %v", ErrEncoding, err)
	}
	if err := cborDecMode.Unmarshal(data, &v); err != nil {
		return v, fmt.Errorf("%w: unmarshal data as %T: %v", ErrTypeMismatch, v, err)
	}
	return v, nil
}

// Execute pops exactly one task from the call stack and runs one step
// of its dispatch protocol: the task executes, then the scheduler
// re-pushes the task itself if it asked to resume, then pushes the
// returned successors in reverse list order so the first successor is
// popped next.
//
// This is the unit of resumability: the scheduler's full state may be
// serialized between any two Execute calls. A task that fails is not
// restored; its failure is terminal for that unit of work.
func (s *Scheduler) Execute() error {
	if s.stack.IsEmptyBack() {
		return ErrNoPendingTask
	}
	task, err := s.PopTask()
	if err != nil {
		return err
	}

	successors, err := task.Execute(s)
	if err != nil {
		return &TaskError{Kind: task.Kind(), Err: err}
	}

	// The rescheduled task goes deepest so every successor completes
	// before it resumes.
	if task.PushSelf() {
		if err := s.PushTask(task); err != nil {
			return err
		}
	}
	for i := len(successors) - 1; i >= 0; i-- {
		if err := s.PushTask(successors[i]); err != nil {
			return err
		}
	}
	return nil
}

// ExecuteAll runs Execute until the call stack is empty, stopping at
// the first error and leaving the stacks exactly as they were at the
// failing step.
func (s *Scheduler) ExecuteAll() error {
	for !s.Idle() {
		if err := s.Execute(); err != nil {
			return err
		}
	}
	return nil
}

package scheduler

import (
	"fmt"
	"sync"

	"github.com/fxamacker/cbor/v2"
)

// Task is one schedulable, serializable unit of work.
//
// A task is popped from the call stack exactly once per execution step
// and owned by the execution loop for the duration of that step. It may
// read and write the data stack through the scheduler it is handed.
type Task interface {
	// Kind returns the type tag stored alongside the task's serialized
	// bytes, so the call stack can hold a heterogeneous sequence of
	// task variants. Kinds must be registered (see Register).
	Kind() string

	// Execute performs one unit of work and returns zero or more
	// successor tasks. Successors run to completion before this task
	// resumes, in the order given: the first successor in the list is
	// the next task popped.
	Execute(s *Scheduler) ([]Task, error)

	// PushSelf is queried immediately after Execute returns. If true,
	// the scheduler re-pushes the task, with whatever internal state
	// Execute mutated, beneath its successors so it resumes once they
	// have completed.
	PushSelf() bool
}

// Registry maps task kinds to factories so serialized call-stack
// entries can be restored to live task values.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]func() Task
}

// NewRegistry creates an empty task registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]func() Task)}
}

// Register associates a kind with a factory producing a blank task of
// that kind, ready to be decoded into. Registering the same kind twice
// panics, mirroring the registration discipline of encoding/gob.
func (r *Registry) Register(kind string, factory func() Task) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.factories[kind]; ok {
		panic(fmt.Sprintf("scheduler: task kind %q registered twice", kind))
	}
	r.factories[kind] = factory
}

// New produces a blank task of the given kind, or false if the kind is
// not registered.
func (r *Registry) New(kind string) (Task, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	factory, ok := r.factories[kind]
	if !ok {
		return nil, false
	}
	return factory(), true
}

// defaultRegistry serves schedulers built without WithRegistry. Task
// packages register their kinds here from init.
var defaultRegistry = NewRegistry()

// Register adds a task kind to the default registry.
func Register(kind string, factory func() Task) {
	defaultRegistry.Register(kind, factory)
}

// CBOR modes shared by the whole package: canonical encoding for
// deterministic bytes, strict decoding so unknown fields surface as
// type mismatches instead of being dropped.
var (
	cborEncMode cbor.EncMode
	cborDecMode cbor.DecMode
)

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("scheduler: failed to create CBOR enc mode: %v", err))
	}
	cborEncMode = em

	dm, err := cbor.DecOptions{ExtraReturnErrors: cbor.ExtraDecErrorUnknownField}.DecMode()
	if err != nil {
		panic(fmt.Sprintf("scheduler: failed to create CBOR dec mode: %v", err))
	}
	cborDecMode = dm
}

// taskEnvelope is the call-stack wire form of a task: its registered
// kind next to its serialized private state.
type taskEnvelope struct {
	Kind string          `cbor:"kind"`
	Body cbor.RawMessage `cbor:"body"`
}

// encodeTask serializes a task into its tagged envelope.
func encodeTask(t Task) ([]byte, error) {
	body, err := cborEncMode.Marshal(t)
	if err != nil {
		return nil, fmt.Errorf("%w: marshal task %q: %v", ErrEncoding, t.Kind(), err)
	}
	data, err := cborEncMode.Marshal(taskEnvelope{Kind: t.Kind(), Body: body})
	if err != nil {
		return nil, fmt.Errorf("%w: marshal envelope for %q: %v", ErrEncoding, t.Kind(), err)
	}
	return data, nil
}

// decodeTask restores a task from its tagged envelope using the given
// registry.
func decodeTask(data []byte, reg *Registry) (Task, error) {
	var env taskEnvelope
	if err := cborDecMode.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("%w: unmarshal envelope: %v", ErrEncoding, err)
	}
	task, ok := reg.New(env.Kind)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTaskKind, env.Kind)
	}
	if err := cborDecMode.Unmarshal(env.Body, task); err != nil {
		return nil, fmt.Errorf("%w: unmarshal task %q: %v", ErrTypeMismatch, env.Kind, err)
	}
	return task, nil
}

package tasks

import (
	"github.com/neotheprogramist/scheduler/scheduler"
)

// Registered type tags for the Fibonacci tasks.
const (
	FibKind    = "fib"
	fibSumKind = "fib.sum"
)

// FibResult is one Fibonacci number, left on the data stack.
type FibResult struct {
	Result uint64 `cbor:"result"`
}

// Fib computes the Nth Fibonacci number by scheduling sub-tasks for
// the two preceding numbers plus a join task that sums their results.
//
// Unlike the arithmetic tasks, Fib carries its argument in its own
// serialized state: two sibling sub-computations cannot both stage
// arguments on the data stack, because the first sibling's result
// would bury the second sibling's arguments. Results still flow
// through the data stack, where the join task finds them.
type Fib struct {
	N uint64 `cbor:"n"`
}

// NewFib creates a task computing the Nth Fibonacci number.
func NewFib(n uint64) *Fib {
	return &Fib{N: n}
}

func (*Fib) Kind() string {
	return FibKind
}

func (*Fib) PushSelf() bool {
	return false
}

func (f *Fib) Execute(s *scheduler.Scheduler) ([]scheduler.Task, error) {
	if f.N < 2 {
		return nil, s.PushData(FibResult{Result: f.N})
	}
	// Both branches run to completion before the join task pops their
	// two results.
	return []scheduler.Task{
		NewFib(f.N - 1),
		NewFib(f.N - 2),
		&fibSum{},
	}, nil
}

// fibSum joins two branch results into one.
type fibSum struct{}

func (*fibSum) Kind() string {
	return fibSumKind
}

func (*fibSum) PushSelf() bool {
	return false
}

func (*fibSum) Execute(s *scheduler.Scheduler) ([]scheduler.Task, error) {
	a, err := scheduler.PopData[FibResult](s)
	if err != nil {
		return nil, err
	}
	b, err := scheduler.PopData[FibResult](s)
	if err != nil {
		return nil, err
	}
	return nil, s.PushData(FibResult{Result: a.Result + b.Result})
}

func init() {
	scheduler.Register(FibKind, func() scheduler.Task { return &Fib{} })
	scheduler.Register(fibSumKind, func() scheduler.Task { return &fibSum{} })
}

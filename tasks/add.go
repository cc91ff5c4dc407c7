// Package tasks contains sample consumers of the scheduler's public
// contract: small arithmetic operations decomposed into schedulable,
// serializable steps. They exist to exercise the engine and to show
// the composition patterns; they carry no engine-level logic.
package tasks

import (
	"github.com/neotheprogramist/scheduler/scheduler"
)

// AddKind is the registered type tag for the Add task.
const AddKind = "add"

// AddArgs are the two operands, pushed by the caller before the task
// is scheduled.
type AddArgs struct {
	X uint8 `cbor:"x"`
	Y uint8 `cbor:"y"`
}

// AddResult is the sum, left on the data stack.
type AddResult struct {
	Result uint8 `cbor:"result"`
}

// Add pops two operands from the data stack and pushes their sum back,
// saturating at 255. It completes in a single step.
type Add struct{}

// NewAdd creates an addition task.
func NewAdd() *Add {
	return &Add{}
}

func (*Add) Kind() string {
	return AddKind
}

func (*Add) PushSelf() bool {
	return false
}

func (*Add) Execute(s *scheduler.Scheduler) ([]scheduler.Task, error) {
	args, err := scheduler.PopData[AddArgs](s)
	if err != nil {
		return nil, err
	}
	return nil, s.PushData(AddResult{Result: satAdd(args.X, args.Y)})
}

// satAdd adds two bytes, saturating at the top of the range.
func satAdd(x, y uint8) uint8 {
	sum := uint16(x) + uint16(y)
	if sum > 255 {
		return 255
	}
	return uint8(sum)
}

func init() {
	scheduler.Register(AddKind, func() scheduler.Task { return NewAdd() })
}

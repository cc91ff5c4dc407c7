package tasks

import (
	"github.com/neotheprogramist/scheduler/scheduler"
)

// MulKind is the registered type tag for the Mul task.
const MulKind = "mul"

// MulArgs are the factors: X is added Y times.
type MulArgs struct {
	X uint8 `cbor:"x"`
	Y uint8 `cbor:"y"`
}

// MulResult is the product, saturated at 255.
type MulResult struct {
	Result uint8 `cbor:"result"`
}

// MulState accumulates the product across phases.
type MulState struct {
	X       uint8 `cbor:"x"`
	Y       uint8 `cbor:"y"`
	Result  uint8 `cbor:"result"`
	Counter uint8 `cbor:"counter"`
}

// mulPhases implements multiplication by repeated addition: each phase
// stages one Add sub-task and folds its result into the running
// product. Multiplying by zero completes without any additions.
type mulPhases struct{}

func (mulPhases) Kind() string {
	return MulKind
}

func (mulPhases) Init(args MulArgs) (MulState, error) {
	return MulState{X: args.X, Y: args.Y}, nil
}

func (mulPhases) Advance(s *scheduler.Scheduler, state *MulState) error {
	res, err := scheduler.PopData[AddResult](s)
	if err != nil {
		return err
	}
	state.Result = res.Result
	state.Counter++
	return nil
}

func (mulPhases) Next(s *scheduler.Scheduler, state *MulState) ([]scheduler.Task, error) {
	if err := s.PushData(AddArgs{X: state.Result, Y: state.X}); err != nil {
		return nil, err
	}
	return []scheduler.Task{NewAdd()}, nil
}

func (mulPhases) Done(state *MulState) bool {
	return state.Counter >= state.Y
}

func (mulPhases) Result(state *MulState) MulResult {
	return MulResult{Result: state.Result}
}

// Mul multiplies two bytes by repeated addition, one Add sub-task per
// scheduler step. Drive it with ExecuteAll.
type Mul = scheduler.PhasedTask[MulArgs, MulState, MulResult, mulPhases]

// NewMul creates a multiplication task in its initial phase.
func NewMul() *Mul {
	return &Mul{}
}

func init() {
	scheduler.Register(MulKind, func() scheduler.Task { return NewMul() })
}

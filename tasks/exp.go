package tasks

import (
	"github.com/neotheprogramist/scheduler/scheduler"
)

// ExpKind is the registered type tag for the Exp task.
const ExpKind = "exp"

// ExpArgs are the base X and exponent Y.
type ExpArgs struct {
	X uint8 `cbor:"x"`
	Y uint8 `cbor:"y"`
}

// ExpResult is X to the power Y, saturated at 255.
type ExpResult struct {
	Result uint8 `cbor:"result"`
}

// ExpState accumulates the power across phases.
type ExpState struct {
	X       uint8 `cbor:"x"`
	Y       uint8 `cbor:"y"`
	Result  uint8 `cbor:"result"`
	Counter uint8 `cbor:"counter"`
}

// expPhases implements exponentiation by repeated multiplication: each
// phase stages one Mul sub-task, which in turn decomposes into Add
// sub-tasks. Starting from a result of one makes x^0 = 1 a completed
// zero-iteration state and x^1 a single multiplication.
type expPhases struct{}

func (expPhases) Kind() string {
	return ExpKind
}

func (expPhases) Init(args ExpArgs) (ExpState, error) {
	return ExpState{X: args.X, Y: args.Y, Result: 1}, nil
}

func (expPhases) Advance(s *scheduler.Scheduler, state *ExpState) error {
	res, err := scheduler.PopData[MulResult](s)
	if err != nil {
		return err
	}
	state.Result = res.Result
	state.Counter++
	return nil
}

func (expPhases) Next(s *scheduler.Scheduler, state *ExpState) ([]scheduler.Task, error) {
	if err := s.PushData(MulArgs{X: state.Result, Y: state.X}); err != nil {
		return nil, err
	}
	return []scheduler.Task{NewMul()}, nil
}

func (expPhases) Done(state *ExpState) bool {
	return state.Counter >= state.Y
}

func (expPhases) Result(state *ExpState) ExpResult {
	return ExpResult{Result: state.Result}
}

// Exp raises X to the power Y by repeated multiplication. Drive it
// with ExecuteAll.
type Exp = scheduler.PhasedTask[ExpArgs, ExpState, ExpResult, expPhases]

// NewExp creates an exponentiation task in its initial phase.
func NewExp() *Exp {
	return &Exp{}
}

func init() {
	scheduler.Register(ExpKind, func() scheduler.Task { return NewExp() })
}

package scheduler

// Phases describes one logical operation split into an initial phase
// and a run of subsequent phases. It is the composition pattern for
// multi-step algorithms: instead of native recursion, the operation
// advances one increment per scheduler step, staging sub-tasks between
// steps, until its completion predicate holds.
//
// Implementations are stateless; everything the operation accumulates
// lives in the State value that PhasedTask serializes with itself.
type Phases[A, S, R any] interface {
	// Kind returns the registered type tag for the operation.
	Kind() string

	// Init builds the operation's state from its arguments. It runs
	// exactly once, in the initial phase.
	Init(args A) (S, error)

	// Advance consumes any sub-task results left on the data stack by
	// the previous round of sub-work and performs one increment of
	// work on the state. It runs once per subsequent phase.
	Advance(s *Scheduler, state *S) error

	// Next stages the next round of sub-work: it pushes the sub-tasks'
	// arguments onto the data stack and returns the sub-tasks
	// themselves. It is only called while Done is false.
	Next(s *Scheduler, state *S) ([]Task, error)

	// Done is the completion predicate over the state.
	Done(state *S) bool

	// Result computes the operation's final result from the completed
	// state.
	Result(state *S) R
}

// PhasedTask adapts a Phases implementation to the Task interface.
//
// The phase counter and the operation state ride inside the task's own
// serialized bytes, so a phased operation checkpoints with the call
// stack and every step boundary is a resumption point. The counter only
// increments; a task never re-enters its initial phase.
//
// An operation whose completion predicate already holds after Init
// still produces its State first and then emits the result in the same
// step ("zero iterations").
type PhasedTask[A, S, R any, P Phases[A, S, R]] struct {
	Phase uint32 `cbor:"phase"`
	State S      `cbor:"state"`

	phases P
	resume bool
}

// Kind implements Task.
func (t *PhasedTask[A, S, R, P]) Kind() string {
	return t.phases.Kind()
}

// Execute implements Task. The initial phase consumes the operation's
// arguments from the data stack; subsequent phases advance the state by
// one increment.
func (t *PhasedTask[A, S, R, P]) Execute(s *Scheduler) ([]Task, error) {
	if t.Phase == 0 {
		args, err := PopData[A](s)
		if err != nil {
			return nil, err
		}
		state, err := t.phases.Init(args)
		if err != nil {
			return nil, err
		}
		t.State = state
	} else {
		if err := t.phases.Advance(s, &t.State); err != nil {
			return nil, err
		}
	}
	t.Phase++

	if t.phases.Done(&t.State) {
		t.resume = false
		return nil, s.PushData(t.phases.Result(&t.State))
	}
	t.resume = true
	return t.phases.Next(s, &t.State)
}

// PushSelf implements Task: a phased task reschedules itself until its
// completion predicate holds.
func (t *PhasedTask[A, S, R, P]) PushSelf() bool {
	return t.resume
}

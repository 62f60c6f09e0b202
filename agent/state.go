package agent

import (
	"time"

	"github.com/hupe1980/taskforce/core"
)

// State is the lifecycle state of a single Loop run.
type State int

const (
	// StateRunning is the state while the loop is still stepping.
	StateRunning State = iota
	// StateDone means the model produced a final answer.
	StateDone
	// StateErrored means the run ended on the step budget, a model failure
	// or cancellation.
	StateErrored
)

// String returns the lower-case state name.
func (s State) String() string {
	switch s {
	case StateRunning:
		return "running"
	case StateDone:
		return "done"
	case StateErrored:
		return "errored"
	default:
		return "unknown"
	}
}

// Outcome is the terminal result of Loop.Run. Output is always set; it holds
// the final answer on success and an "Error: ..." string otherwise.
type Outcome struct {
	Agent        string
	State        State
	Output       string
	Steps        int
	Compressions int
	Duration     time.Duration
	Transcript   []core.Message
	Err          error
}

// String returns the outcome text.
func (o Outcome) String() string { return o.Output }

// OK reports whether the run finished with a final answer.
func (o Outcome) OK() bool { return o.State == StateDone }

// runState is the per-run mutable state. It never leaves the goroutine that
// owns the run.
type runState struct {
	name         string
	transcript   []core.Message
	limiter      *core.StepLimiter
	compressions int
	started      time.Time
}

func newRunState(name, systemPrompt, task string, maxSteps int) *runState {
	return &runState{
		name: name,
		transcript: []core.Message{
			core.NewSystemMessage(systemPrompt),
			core.NewUserMessage(task),
		},
		limiter: core.NewStepLimiter(maxSteps),
		started: time.Now(),
	}
}

func (s *runState) append(m core.Message) { s.transcript = append(s.transcript, m) }

func (s *runState) outcome(state State, output string, err error) Outcome {
	return Outcome{
		Agent:        s.name,
		State:        state,
		Output:       output,
		Steps:        s.limiter.Count(),
		Compressions: s.compressions,
		Duration:     time.Since(s.started),
		Transcript:   core.CloneMessages(s.transcript),
		Err:          err,
	}
}

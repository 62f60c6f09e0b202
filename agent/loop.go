package agent

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/hupe1980/taskforce/compress"
	"github.com/hupe1980/taskforce/core"
	"github.com/hupe1980/taskforce/logging"
	"github.com/hupe1980/taskforce/model"
	"github.com/hupe1980/taskforce/protocol"
	"github.com/hupe1980/taskforce/tool"
)

// DefaultMaxSteps is the step budget of a Loop built without MaxSteps.
const DefaultMaxSteps = 50

// MaxStepsExceeded is the output of a run that used up its step budget.
const MaxStepsExceeded = "Error: Maximum steps exceeded"

// ErrNilModel is returned by NewLoop when no model is given.
var ErrNilModel = errors.New("agent: model is nil")

// LoopOptions configure a Loop.
type LoopOptions struct {
	// Instruction is the system prompt template. Defaults to DefaultInstruction.
	Instruction Instruction

	// Tools are registered on the loop's own registry.
	Tools []tool.Tool

	// Registry supplies additional tools. Its contents are copied; the
	// registry itself is not modified.
	Registry *tool.Registry

	// MaxSteps bounds the number of tool executions per run. Defaults to
	// DefaultMaxSteps. A negative value means zero.
	MaxSteps int

	// Compressor rewrites the transcript once it outgrows its budget.
	// Nil disables compression.
	Compressor *compress.Compressor

	// StrictProtocol feeds malformed tool regions back to the model as an
	// error result instead of treating the reply as final.
	StrictProtocol bool

	// Stream requests streamed model responses.
	Stream bool

	Logger   logging.Logger
	Observer core.Observer
}

// Loop drives one model through plan/act/observe steps until it produces a
// final answer or runs out of budget. A Loop is immutable configuration;
// every Run owns its own transcript, so concurrent runs are safe.
type Loop struct {
	name     string
	model    model.Model
	registry *tool.Registry
	opts     LoopOptions
}

// NewLoop creates a Loop named name around m.
func NewLoop(name string, m model.Model, optFns ...func(o *LoopOptions)) (*Loop, error) {
	if m == nil {
		return nil, ErrNilModel
	}

	opts := LoopOptions{
		Instruction: NewInstructionFromText(DefaultInstruction),
		MaxSteps:    DefaultMaxSteps,
		Logger:      logging.NoOpLogger{},
		Observer:    core.NoOpObserver{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.Instruction.IsZero() {
		opts.Instruction = NewInstructionFromText(DefaultInstruction)
	}

	if opts.MaxSteps < 0 {
		opts.MaxSteps = 0
	}

	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}

	if opts.Observer == nil {
		opts.Observer = core.NoOpObserver{}
	}

	registry := tool.NewRegistry(func(o *tool.RegistryOptions) {
		o.Logger = opts.Logger
	})

	if opts.Registry != nil {
		for _, n := range opts.Registry.Names() {
			t, _ := opts.Registry.Get(n)
			if err := registry.Register(t); err != nil {
				return nil, fmt.Errorf("agent %s: %w", name, err)
			}
		}
	}

	if err := registry.Register(opts.Tools...); err != nil {
		return nil, fmt.Errorf("agent %s: %w", name, err)
	}

	return &Loop{
		name:     name,
		model:    m,
		registry: registry,
		opts:     opts,
	}, nil
}

// Name returns the loop's agent name.
func (l *Loop) Name() string { return l.name }

// Registry returns the loop's tool registry.
func (l *Loop) Registry() *tool.Registry { return l.registry }

// MaxSteps returns the configured step budget.
func (l *Loop) MaxSteps() int { return l.opts.MaxSteps }

// SystemPrompt renders the system message a run starts with.
func (l *Loop) SystemPrompt(ctx context.Context) (string, error) {
	return RenderSystemPrompt(ctx, l.opts.Instruction, PromptData{
		Name:     l.name,
		Tools:    l.registry.Describe(),
		MaxSteps: l.opts.MaxSteps,
	})
}

// Run executes task to completion. It never returns an error value: every
// terminal condition is reported through the Outcome.
func (l *Loop) Run(ctx context.Context, task string) Outcome {
	logger := logging.With(l.opts.Logger, "agent", l.name)

	systemPrompt, err := l.SystemPrompt(ctx)
	if err != nil {
		st := newRunState(l.name, "", task, l.opts.MaxSteps)
		return l.finish(logger, st, StateErrored, "Error: invalid instruction: "+err.Error(), fmt.Errorf("render instruction: %w", err))
	}

	st := newRunState(l.name, systemPrompt, task, l.opts.MaxSteps)

	logger.Info("agent.run.start", "max_steps", l.opts.MaxSteps, "tools", l.registry.Len())
	l.emit(st, core.EventStart, task, nil)

	for {
		if err := ctx.Err(); err != nil {
			return l.finish(logger, st, StateErrored, "Error: "+err.Error(), err)
		}

		if l.opts.Compressor != nil && l.opts.Compressor.ShouldCompress(st.transcript) {
			compressed, err := l.opts.Compressor.Compress(ctx, st.transcript, systemPrompt)
			if err != nil {
				return l.modelFailure(ctx, logger, st, err)
			}

			st.transcript = compressed
			st.compressions++

			logger.Info("agent.transcript.compressed", "step", st.limiter.Count(), "compressions", st.compressions)
			l.emit(st, core.EventCompressed, "", nil)
		}

		start := time.Now()
		resp, err := model.Complete(ctx, l.model, model.Request{
			Messages: core.CloneMessages(st.transcript),
			Stream:   l.opts.Stream,
		})
		logging.LogModelCall(logger, l.model.Info().Name, time.Since(start), err)

		if err != nil {
			return l.modelFailure(ctx, logger, st, err)
		}

		reply := resp.Text
		st.append(core.NewAssistantMessage(reply))

		parsed := protocol.Parse(reply)
		if parsed.HasPlan {
			l.emit(st, core.EventPlan, parsed.Plan, nil)
		}

		if parsed.Call == nil {
			if l.opts.StrictProtocol && parsed.IsMalformed() {
				if !st.limiter.Allowed() {
					return l.finish(logger, st, StateErrored, MaxStepsExceeded, core.ErrMaxSteps)
				}

				feedback := "Error: malformed tool call: " + parseReason(parsed.Err)
				logger.Warn("agent.step.malformed", "step", st.limiter.Count()+1, "error", parsed.Err)

				st.append(core.NewUserMessage(protocol.FormatResult(feedback)))
				st.limiter.Increment()
				l.emit(st, core.EventToolResult, feedback, nil)

				continue
			}

			return l.finish(logger, st, StateDone, strings.TrimSpace(reply), nil)
		}

		if !st.limiter.Allowed() {
			return l.finish(logger, st, StateErrored, MaxStepsExceeded, core.ErrMaxSteps)
		}

		call := parsed.Call
		logger.Debug("agent.step.tool", "step", st.limiter.Count()+1, "tool", call.Name)
		l.emit(st, core.EventToolCall, "", call)

		result := l.registry.Execute(ctx, call.Name, call.Args)

		st.append(core.NewUserMessage(protocol.FormatResult(result)))
		st.limiter.Increment()
		l.emit(st, core.EventToolResult, result, call)
	}
}

func (l *Loop) modelFailure(ctx context.Context, logger logging.Logger, st *runState, err error) Outcome {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return l.finish(logger, st, StateErrored, "Error: "+ctxErr.Error(), ctxErr)
	}

	return l.finish(logger, st, StateErrored, "Error: No response from model: "+modelErrorText(err), err)
}

func (l *Loop) finish(logger logging.Logger, st *runState, state State, output string, err error) Outcome {
	out := st.outcome(state, output, err)

	if state == StateDone {
		logger.Info("agent.run.complete", "steps", out.Steps, "compressions", out.Compressions, "duration", out.Duration)
		l.emit(st, core.EventFinal, output, nil)
	} else {
		logger.Warn("agent.run.error", "steps", out.Steps, "duration", out.Duration, "error", err)
		l.emit(st, core.EventError, output, nil)
	}

	return out
}

func (l *Loop) emit(st *runState, typ core.EventType, text string, call *core.ToolCall) {
	ev := core.NewEvent(l.name, typ)
	ev.Step = st.limiter.Count()
	ev.Text = text

	if call != nil {
		c := *call
		ev.Tool = &c
	}

	l.opts.Observer.OnEvent(ev)
}

// modelErrorText drops the generic model-call prefix so the output names the
// actual cause.
func modelErrorText(err error) string {
	msg := err.Error()
	return strings.TrimPrefix(msg, core.ErrModelCall.Error()+": ")
}

func parseReason(err error) string {
	var pe *protocol.ParseError
	if errors.As(err, &pe) && pe.Reason != "" {
		return pe.Reason
	}

	if err != nil {
		return err.Error()
	}

	return "unknown"
}

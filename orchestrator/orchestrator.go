package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hupe1980/taskforce/agent"
	"github.com/hupe1980/taskforce/compress"
	"github.com/hupe1980/taskforce/core"
	"github.com/hupe1980/taskforce/delegate"
	"github.com/hupe1980/taskforce/knowledge"
	"github.com/hupe1980/taskforce/logging"
	"github.com/hupe1980/taskforce/model"
	"github.com/hupe1980/taskforce/tokenizer"
	"github.com/hupe1980/taskforce/tool"
)

const (
	// DefaultName is the lead agent's name.
	DefaultName = "lead"
	// DefaultMaxSteps is the lead's step budget.
	DefaultMaxSteps = 500
	// DefaultWorkerMaxSteps is each worker's step budget.
	DefaultWorkerMaxSteps = agent.DefaultMaxSteps
)

// ErrNilModel is returned by New when no model is given.
var ErrNilModel = errors.New("orchestrator: model is nil")

// Options configure an Orchestrator.
type Options struct {
	// Name of the lead agent. Defaults to DefaultName.
	Name string

	// WorkerModel runs delegated workers. Defaults to the lead's model.
	WorkerModel model.Model

	// Store is shared by the lead and all workers. Defaults to an
	// in-memory knowledge.Store with a bleve index.
	Store core.KnowledgeStore

	// WorkerTools are given to every worker in addition to the knowledge
	// tools.
	WorkerTools []tool.Tool

	// Instruction overrides LeadInstruction.
	Instruction agent.Instruction

	// WorkerInstruction overrides WorkerInstruction.
	WorkerInstruction agent.Instruction

	MaxSteps       int
	WorkerMaxSteps int

	// MaxParallel bounds concurrently running workers. Zero is unbounded.
	MaxParallel int

	// ChildTimeout bounds each worker run. Zero is unbounded.
	ChildTimeout time.Duration

	// TokenBudget is the compression threshold shared by lead and workers.
	// Defaults to compress.DefaultThreshold.
	TokenBudget int

	// Counter measures transcripts. Defaults to tokenizer.HeuristicCounter.
	Counter tokenizer.Counter

	// StrictProtocol is passed to every loop.
	StrictProtocol bool

	// Stream requests streamed model responses.
	Stream bool

	Logger   logging.Logger
	Observer core.Observer
}

// Orchestrator is a lead agent that decomposes requests into delegated
// sub-tasks.
type Orchestrator struct {
	lead      *agent.Loop
	delegator *delegate.Delegator
	store     core.KnowledgeStore
	opts      Options
}

// New creates an Orchestrator whose lead runs on m.
func New(m model.Model, optFns ...func(o *Options)) (*Orchestrator, error) {
	if m == nil {
		return nil, ErrNilModel
	}

	opts := Options{
		Name:              DefaultName,
		Instruction:       agent.NewInstructionFromText(LeadInstruction),
		WorkerInstruction: agent.NewInstructionFromText(WorkerInstruction),
		MaxSteps:          DefaultMaxSteps,
		WorkerMaxSteps:    DefaultWorkerMaxSteps,
		TokenBudget:       compress.DefaultThreshold,
		Logger:            logging.NoOpLogger{},
		Observer:          core.NoOpObserver{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.Name == "" {
		opts.Name = DefaultName
	}

	if opts.WorkerModel == nil {
		opts.WorkerModel = m
	}

	if opts.Instruction.IsZero() {
		opts.Instruction = agent.NewInstructionFromText(LeadInstruction)
	}

	if opts.WorkerInstruction.IsZero() {
		opts.WorkerInstruction = agent.NewInstructionFromText(WorkerInstruction)
	}

	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}

	if opts.Observer == nil {
		opts.Observer = core.NoOpObserver{}
	}

	if opts.Store == nil {
		store, err := knowledge.NewStore(func(o *knowledge.Options) {
			o.Logger = opts.Logger
		})
		if err != nil {
			return nil, fmt.Errorf("orchestrator: create knowledge store: %w", err)
		}

		opts.Store = store
	}

	o := &Orchestrator{store: opts.Store, opts: opts}

	workerCompressor := o.compressor(opts.WorkerModel)

	// Build one worker eagerly so misconfigured worker tools fail here
	// instead of inside every delegation.
	if _, err := o.newWorker("probe", workerCompressor); err != nil {
		return nil, fmt.Errorf("orchestrator: worker configuration: %w", err)
	}

	o.delegator = delegate.New(func(id string) (delegate.Runner, error) {
		return o.newWorker(id, workerCompressor)
	}, func(d *delegate.Options) {
		d.MaxParallel = opts.MaxParallel
		d.ChildTimeout = opts.ChildTimeout
		d.Logger = opts.Logger
		d.Observer = opts.Observer
	})

	leadTools := append(delegate.Tools(o.delegator),
		tool.NewGetKnowledgeTool(opts.Store),
		tool.NewSearchKnowledgeTool(opts.Store),
	)

	lead, err := agent.NewLoop(opts.Name, m, func(l *agent.LoopOptions) {
		l.Instruction = opts.Instruction
		l.Tools = leadTools
		l.MaxSteps = opts.MaxSteps
		l.Compressor = o.compressor(m)
		l.StrictProtocol = opts.StrictProtocol
		l.Stream = opts.Stream
		l.Logger = opts.Logger
		l.Observer = opts.Observer
	})
	if err != nil {
		return nil, fmt.Errorf("orchestrator: %w", err)
	}

	o.lead = lead

	return o, nil
}

func (o *Orchestrator) compressor(m model.Model) *compress.Compressor {
	return compress.New(m, func(c *compress.Options) {
		c.Counter = o.opts.Counter
		c.Threshold = o.opts.TokenBudget
		c.Logger = o.opts.Logger
	})
}

func (o *Orchestrator) newWorker(id string, c *compress.Compressor) (*agent.Loop, error) {
	tools := make([]tool.Tool, 0, len(o.opts.WorkerTools)+3)
	tools = append(tools, o.opts.WorkerTools...)
	tools = append(tools, tool.KnowledgeTools(o.opts.Store, id)...)

	return agent.NewLoop(id, o.opts.WorkerModel, func(l *agent.LoopOptions) {
		l.Instruction = o.opts.WorkerInstruction
		l.Tools = tools
		l.MaxSteps = o.opts.WorkerMaxSteps
		l.Compressor = c
		l.StrictProtocol = o.opts.StrictProtocol
		l.Stream = o.opts.Stream
		l.Logger = o.opts.Logger
		l.Observer = o.opts.Observer
	})
}

// Run executes request on the lead agent.
func (o *Orchestrator) Run(ctx context.Context, request string) agent.Outcome {
	return o.lead.Run(ctx, request)
}

// Agents returns snapshots of every worker delegated so far.
func (o *Orchestrator) Agents() []core.AgentHandle { return o.delegator.Roster().List() }

// Store returns the shared knowledge store.
func (o *Orchestrator) Store() core.KnowledgeStore { return o.store }

// Lead returns the lead agent loop.
func (o *Orchestrator) Lead() *agent.Loop { return o.lead }

// Delegator returns the delegation layer used by the lead.
func (o *Orchestrator) Delegator() *delegate.Delegator { return o.delegator }

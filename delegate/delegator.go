package delegate

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/taskforce/agent"
	"github.com/hupe1980/taskforce/core"
	"github.com/hupe1980/taskforce/internal/util"
	"github.com/hupe1980/taskforce/logging"
)

// Runner runs one task to a terminal outcome. *agent.Loop implements it.
type Runner interface {
	Run(ctx context.Context, task string) agent.Outcome
}

// RunnerFunc adapts a plain function to Runner.
type RunnerFunc func(ctx context.Context, task string) agent.Outcome

// Run implements Runner.
func (f RunnerFunc) Run(ctx context.Context, task string) agent.Outcome { return f(ctx, task) }

// Factory builds the Runner for a freshly reserved agent id.
type Factory func(agentID string) (Runner, error)

// ErrNilRunner is recorded on a handle whose factory returned no runner.
var ErrNilRunner = errors.New("factory returned nil runner")

// Task is one entry of a DelegateMany batch. An empty AgentID is generated.
type Task struct {
	Task    string `json:"task"`
	AgentID string `json:"agent_id,omitempty"`
}

// Options configure a Delegator.
type Options struct {
	// MaxParallel bounds concurrently running children in DelegateMany.
	// Zero means unbounded.
	MaxParallel int

	// ChildTimeout bounds each child run. Zero means no per-child deadline.
	ChildTimeout time.Duration

	Logger   logging.Logger
	Observer core.Observer
}

// Delegator creates child agents on demand and records their handles.
type Delegator struct {
	factory Factory
	roster  *Roster
	opts    Options
}

// New creates a Delegator that builds children with factory.
func New(factory Factory, optFns ...func(o *Options)) *Delegator {
	opts := Options{
		Logger:   logging.NoOpLogger{},
		Observer: core.NoOpObserver{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}

	if opts.Observer == nil {
		opts.Observer = core.NoOpObserver{}
	}

	return &Delegator{
		factory: factory,
		roster:  NewRoster(),
		opts:    opts,
	}
}

// Roster returns the handles created so far.
func (d *Delegator) Roster() *Roster { return d.roster }

// DelegateOne runs task on a new child and returns its terminal handle.
func (d *Delegator) DelegateOne(ctx context.Context, task, agentID string) core.AgentHandle {
	id := d.reserve(agentID, task)

	d.run(ctx, id, task)

	h, _ := d.roster.Get(id)

	return h
}

// DelegateMany runs every task on its own child concurrently and waits for
// all of them. Ids are reserved before any child starts, so renamed
// duplicates are deterministic in submission order.
func (d *Delegator) DelegateMany(ctx context.Context, tasks []Task) Batch {
	ids := make([]string, len(tasks))
	for i, t := range tasks {
		ids[i] = d.reserve(t.AgentID, t.Task)
	}

	start := time.Now()
	d.opts.Logger.Info("delegate.batch.start", "agents", len(ids), "max_parallel", d.opts.MaxParallel)

	var g errgroup.Group
	if d.opts.MaxParallel > 0 {
		g.SetLimit(d.opts.MaxParallel)
	}

	for i := range tasks {
		id, task := ids[i], tasks[i].Task

		g.Go(func() error {
			d.run(ctx, id, task)
			return nil
		})
	}

	_ = g.Wait()

	batch := Batch{Handles: make([]core.AgentHandle, 0, len(ids))}
	for _, id := range ids {
		h, _ := d.roster.Get(id)
		batch.Handles = append(batch.Handles, h)
	}

	d.opts.Logger.Info("delegate.batch.complete",
		"agents", len(ids),
		"failed", batch.Failed(),
		"duration", time.Since(start),
	)

	return batch
}

func (d *Delegator) reserve(requested, task string) string {
	id := d.roster.reserve(requested, task)
	if requested != "" && id != requested {
		d.opts.Logger.Warn("delegate.agent.renamed", "requested", requested, "agent", id)
	}

	return id
}

// run drives one reserved handle through Working to a terminal status.
func (d *Delegator) run(ctx context.Context, id, task string) {
	logger := logging.With(d.opts.Logger, "agent", id)

	if err := d.roster.update(id, (*core.AgentHandle).Start); err != nil {
		logger.Error("delegate.agent.start", "error", err)
		return
	}

	logger.Info("delegate.agent.start", "task", task)
	d.emit(id, core.EventDelegated, task, nil)

	out, err := d.execute(ctx, id, task)

	_ = d.roster.update(id, func(h *core.AgentHandle) error {
		switch {
		case err != nil:
			return h.Fail("Error: " + err.Error())
		case out.OK():
			return h.Complete(out.Output)
		default:
			return h.Fail(out.Output)
		}
	})

	h, _ := d.roster.Get(id)

	if h.Status == core.StatusCompleted {
		logger.Info("delegate.agent.complete", "steps", out.Steps, "duration", h.Duration())
	} else {
		logger.Warn("delegate.agent.failed", "steps", out.Steps, "duration", h.Duration(), "error", h.Error)
	}

	d.emit(id, core.EventAgentFinish, h.Result, map[string]any{"status": h.Status.String()})
}

// execute builds and runs the child. Panics in the factory or the child are
// recovered into an error so siblings are unaffected.
func (d *Delegator) execute(ctx context.Context, id, task string) (out agent.Outcome, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			pe := util.NewPanicError(rec)
			d.opts.Logger.Error("delegate.agent.panic", "agent", id, "recover", rec, "stack", string(pe.Stack))
			out, err = agent.Outcome{}, pe
		}
	}()

	if d.opts.ChildTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.opts.ChildTimeout)
		defer cancel()
	}

	runner, err := d.factory(id)
	if err != nil {
		return agent.Outcome{}, fmt.Errorf("create agent: %w", err)
	}

	if runner == nil {
		return agent.Outcome{}, ErrNilRunner
	}

	return runner.Run(ctx, task), nil
}

func (d *Delegator) emit(id string, typ core.EventType, text string, meta map[string]any) {
	ev := core.NewEvent(id, typ)
	ev.Text = text
	ev.Metadata = meta
	d.opts.Observer.OnEvent(ev)
}

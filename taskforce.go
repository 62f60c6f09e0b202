// Package taskforce provides a high-level façade over the orchestrator and
// its collaborators (models, knowledge store, tokenizer, logging) so a
// multi-agent deployment can be built from a config.Config in one call.
//
// Most applications interact with this package by:
//  1. Loading a config via config.FromEnv (or NewFromEnv)
//  2. Creating a Taskforce via New, optionally supplying worker tools
//  3. Calling Run with a request and reading the agent.Outcome
//
// Any collaborator can be replaced through Options; unset ones are built
// from the config.
package taskforce

import (
	"context"
	"fmt"

	anthropicsdk "github.com/anthropics/anthropic-sdk-go"
	openaisdk "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/hupe1980/taskforce/agent"
	"github.com/hupe1980/taskforce/config"
	"github.com/hupe1980/taskforce/core"
	"github.com/hupe1980/taskforce/knowledge"
	"github.com/hupe1980/taskforce/logging"
	"github.com/hupe1980/taskforce/model"
	anthropicmodel "github.com/hupe1980/taskforce/model/anthropic"
	"github.com/hupe1980/taskforce/model/localai"
	openaimodel "github.com/hupe1980/taskforce/model/openai"
	"github.com/hupe1980/taskforce/orchestrator"
	"github.com/hupe1980/taskforce/tokenizer"
	"github.com/hupe1980/taskforce/tool"
)

// Options configures a Taskforce.
type Options struct {
	// Config supplies every setting not overridden below. Defaults to
	// config.Default().
	Config config.Config

	// Model and WorkerModel override provider construction.
	Model       model.Model
	WorkerModel model.Model

	// Store overrides the configured knowledge backend.
	Store core.KnowledgeStore

	// Counter overrides the configured tokenizer.
	Counter tokenizer.Counter

	// WorkerTools are available to every delegated worker.
	WorkerTools []tool.Tool

	// StrictProtocol feeds malformed tool calls back to the model.
	StrictProtocol bool

	// Logger defaults to a slog logger built from Config.
	Logger logging.Logger

	// Observer receives progress events from every agent.
	Observer core.Observer
}

// Taskforce is the high-level façade aggregating the orchestrator and its
// services.
type Taskforce struct {
	opts         Options
	orchestrator *orchestrator.Orchestrator
}

// New creates a Taskforce. Collaborators not given in Options are built from
// Options.Config.
func New(optFns ...func(o *Options)) (*Taskforce, error) {
	opts := Options{Config: config.Default()}

	for _, fn := range optFns {
		fn(&opts)
	}

	cfg := opts.Config
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("taskforce: %w", err)
	}

	if opts.Logger == nil {
		opts.Logger = logging.NewLogger(cfg.LoggerConfig())
	}

	if opts.Observer == nil {
		opts.Observer = core.NoOpObserver{}
	}

	var err error

	if opts.Model == nil {
		if opts.Model, err = NewModel(cfg, cfg.Model); err != nil {
			return nil, err
		}
	}

	if opts.WorkerModel == nil {
		if cfg.WorkerModel == "" {
			opts.WorkerModel = opts.Model
		} else if opts.WorkerModel, err = NewModel(cfg, cfg.WorkerModel); err != nil {
			return nil, err
		}
	}

	if opts.Store == nil {
		if opts.Store, err = NewStore(cfg, opts.Logger); err != nil {
			return nil, err
		}
	}

	if opts.Counter == nil {
		opts.Counter = tokenizer.New(cfg.TokenizerModel, opts.Logger)
	}

	orch, err := orchestrator.New(opts.Model, func(o *orchestrator.Options) {
		o.WorkerModel = opts.WorkerModel
		o.Store = opts.Store
		o.WorkerTools = opts.WorkerTools
		o.MaxSteps = cfg.MaxSteps
		o.WorkerMaxSteps = cfg.WorkerMaxSteps
		o.MaxParallel = cfg.MaxParallel
		o.ChildTimeout = cfg.ChildTimeout
		o.TokenBudget = cfg.TokenBudget
		o.Counter = opts.Counter
		o.StrictProtocol = opts.StrictProtocol
		o.Logger = opts.Logger
		o.Observer = opts.Observer
	})
	if err != nil {
		return nil, fmt.Errorf("taskforce: %w", err)
	}

	opts.Logger.Info("taskforce.ready",
		"provider", cfg.Provider,
		"model", opts.Model.Info().Name,
		"worker_model", opts.WorkerModel.Info().Name,
		"knowledge", cfg.KnowledgeBackend,
	)

	return &Taskforce{opts: opts, orchestrator: orch}, nil
}

// NewFromEnv loads the config from the environment and calls New. optFns
// run after the config is set and may override any part of it.
func NewFromEnv(optFns ...func(o *Options)) (*Taskforce, error) {
	cfg, err := config.FromEnv()
	if err != nil {
		return nil, fmt.Errorf("taskforce: %w", err)
	}

	return New(append([]func(o *Options){func(o *Options) { o.Config = cfg }}, optFns...)...)
}

// Run executes request and blocks until the lead agent finishes.
func (t *Taskforce) Run(ctx context.Context, request string) agent.Outcome {
	return t.orchestrator.Run(ctx, request)
}

// Agents returns every worker delegated so far.
func (t *Taskforce) Agents() []core.AgentHandle { return t.orchestrator.Agents() }

// Store returns the shared knowledge store.
func (t *Taskforce) Store() core.KnowledgeStore { return t.orchestrator.Store() }

// Orchestrator returns the underlying orchestrator.
func (t *Taskforce) Orchestrator() *orchestrator.Orchestrator { return t.orchestrator }

// NewModel builds a model for the configured provider. An empty name keeps
// the adapter's default model.
func NewModel(cfg config.Config, name string) (model.Model, error) {
	switch cfg.Provider {
	case config.ProviderOpenAI:
		reqOpts := []option.RequestOption{option.WithRequestTimeout(cfg.Timeout)}
		if cfg.APIKey != "" {
			reqOpts = append(reqOpts, option.WithAPIKey(cfg.APIKey))
		}

		if cfg.APIURL != "" {
			reqOpts = append(reqOpts, option.WithBaseURL(cfg.APIURL))
		}

		client := openaisdk.NewClient(reqOpts...)

		return openaimodel.NewModelFromClient(&client, func(o *openaimodel.Options) {
			if name != "" {
				o.Model = name
			}
		}), nil
	case config.ProviderAnthropic:
		return anthropicmodel.NewModel(func(o *anthropicmodel.Options) {
			o.APIKey = cfg.APIKey
			o.BaseURL = cfg.APIURL
			if name != "" {
				o.Model = anthropicsdk.Model(name)
			}
		}), nil
	case config.ProviderLocalAI:
		client := localai.NewClient(cfg.APIKey, cfg.APIURL, cfg.Timeout)

		return localai.NewModel(client, func(o *localai.Options) {
			if name != "" {
				o.Model = name
			}
		}), nil
	default:
		return nil, fmt.Errorf("taskforce: unknown provider %q", cfg.Provider)
	}
}

// NewStore builds the knowledge store for the configured backend. The
// chromem backend embeds through the configured OpenAI compatible endpoint.
func NewStore(cfg config.Config, logger logging.Logger) (*knowledge.Store, error) {
	var index knowledge.Index

	switch cfg.KnowledgeBackend {
	case config.BackendBleve, "":
		bi, err := knowledge.NewBleveIndex()
		if err != nil {
			return nil, fmt.Errorf("taskforce: bleve index: %w", err)
		}

		index = bi
	case config.BackendChromem:
		client := localai.NewClient(cfg.APIKey, cfg.APIURL, cfg.Timeout)

		ci, err := knowledge.NewChromemIndex("knowledge", knowledge.NewOpenAIEmbeddingFunc(client, cfg.EmbeddingsModel))
		if err != nil {
			return nil, fmt.Errorf("taskforce: chromem index: %w", err)
		}

		index = ci
	default:
		return nil, fmt.Errorf("taskforce: unknown knowledge backend %q", cfg.KnowledgeBackend)
	}

	return knowledge.NewStore(func(o *knowledge.Options) {
		o.Index = index
		o.Logger = logger
	})
}

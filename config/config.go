// Package config loads the settings of a taskforce deployment from the
// environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/hupe1980/taskforce/compress"
	"github.com/hupe1980/taskforce/logging"
	"github.com/hupe1980/taskforce/orchestrator"
)

// Supported model providers.
const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderLocalAI   = "localai"
)

// Supported knowledge index backends.
const (
	BackendBleve   = "bleve"
	BackendChromem = "chromem"
)

// Environment variable names.
const (
	EnvProvider         = "TASKFORCE_PROVIDER"
	EnvModel            = "TASKFORCE_MODEL"
	EnvWorkerModel      = "TASKFORCE_WORKER_MODEL"
	EnvAPIURL           = "TASKFORCE_API_URL"
	EnvAPIKey           = "TASKFORCE_API_KEY"
	EnvTimeout          = "TASKFORCE_TIMEOUT"
	EnvMaxSteps         = "TASKFORCE_MAX_STEPS"
	EnvWorkerMaxSteps   = "TASKFORCE_WORKER_MAX_STEPS"
	EnvTokenBudget      = "TASKFORCE_TOKEN_BUDGET"
	EnvMaxParallel      = "TASKFORCE_MAX_PARALLEL"
	EnvChildTimeout     = "TASKFORCE_CHILD_TIMEOUT"
	EnvKnowledgeBackend = "TASKFORCE_KNOWLEDGE_BACKEND"
	EnvEmbeddingsModel  = "TASKFORCE_EMBEDDINGS_MODEL"
	EnvTokenizerModel   = "TASKFORCE_TOKENIZER_MODEL"
	EnvLogLevel         = "LOG_LEVEL"
	EnvLogFormat        = "LOG_FORMAT"
)

// DefaultTimeout bounds a single model HTTP call.
const DefaultTimeout = 5 * time.Minute

// Config holds every tunable of the façade. The zero value is not useful;
// start from Default or FromEnv.
type Config struct {
	Provider    string
	Model       string
	WorkerModel string
	APIURL      string
	APIKey      string
	Timeout     time.Duration

	MaxSteps       int
	WorkerMaxSteps int
	TokenBudget    int
	MaxParallel    int
	ChildTimeout   time.Duration

	KnowledgeBackend string
	EmbeddingsModel  string
	TokenizerModel   string

	LogLevel  logging.LogLevel
	LogFormat string
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Provider:         ProviderOpenAI,
		Timeout:          DefaultTimeout,
		MaxSteps:         orchestrator.DefaultMaxSteps,
		WorkerMaxSteps:   orchestrator.DefaultWorkerMaxSteps,
		TokenBudget:      compress.DefaultThreshold,
		KnowledgeBackend: BackendBleve,
		EmbeddingsModel:  "text-embedding-3-small",
		TokenizerModel:   "gpt-4o",
		LogLevel:         logging.LogLevelInfo,
		LogFormat:        "text",
	}
}

// FromEnv reads the configuration from the process environment.
func FromEnv() (Config, error) { return FromLookup(os.LookupEnv) }

// FromLookup reads the configuration through lookup, which has the
// signature of os.LookupEnv. Unset variables keep their defaults. All
// invalid values are reported together.
func FromLookup(lookup func(string) (string, bool)) (Config, error) {
	cfg := Default()
	p := parser{lookup: lookup}

	p.str(EnvProvider, &cfg.Provider)
	p.str(EnvModel, &cfg.Model)
	p.str(EnvWorkerModel, &cfg.WorkerModel)
	p.str(EnvAPIURL, &cfg.APIURL)
	p.str(EnvAPIKey, &cfg.APIKey)
	p.duration(EnvTimeout, &cfg.Timeout)
	p.integer(EnvMaxSteps, &cfg.MaxSteps)
	p.integer(EnvWorkerMaxSteps, &cfg.WorkerMaxSteps)
	p.integer(EnvTokenBudget, &cfg.TokenBudget)
	p.integer(EnvMaxParallel, &cfg.MaxParallel)
	p.duration(EnvChildTimeout, &cfg.ChildTimeout)
	p.str(EnvKnowledgeBackend, &cfg.KnowledgeBackend)
	p.str(EnvEmbeddingsModel, &cfg.EmbeddingsModel)
	p.str(EnvTokenizerModel, &cfg.TokenizerModel)
	p.str(EnvLogFormat, &cfg.LogFormat)

	if v, ok := p.get(EnvLogLevel); ok {
		level, err := logging.ParseLevel(v)
		if err != nil {
			p.errs = append(p.errs, fmt.Errorf("%s: %w", EnvLogLevel, err))
		} else {
			cfg.LogLevel = level
		}
	}

	cfg.Provider = strings.ToLower(cfg.Provider)
	cfg.KnowledgeBackend = strings.ToLower(cfg.KnowledgeBackend)
	cfg.LogFormat = strings.ToLower(cfg.LogFormat)

	if err := errors.Join(append(p.errs, cfg.Validate())...); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Validate reports every out-of-range setting.
func (c Config) Validate() error {
	var errs []error

	switch c.Provider {
	case ProviderOpenAI, ProviderAnthropic, ProviderLocalAI:
	default:
		errs = append(errs, fmt.Errorf("%s: unknown provider %q", EnvProvider, c.Provider))
	}

	switch c.KnowledgeBackend {
	case BackendBleve, BackendChromem:
	default:
		errs = append(errs, fmt.Errorf("%s: unknown backend %q", EnvKnowledgeBackend, c.KnowledgeBackend))
	}

	if c.LogFormat != "json" && c.LogFormat != "text" {
		errs = append(errs, fmt.Errorf("%s: must be json or text, got %q", EnvLogFormat, c.LogFormat))
	}

	if c.Provider == ProviderLocalAI && c.APIURL == "" {
		errs = append(errs, fmt.Errorf("%s: required for provider %s", EnvAPIURL, ProviderLocalAI))
	}

	nonNegative := []struct {
		name  string
		value int64
	}{
		{EnvMaxSteps, int64(c.MaxSteps)},
		{EnvWorkerMaxSteps, int64(c.WorkerMaxSteps)},
		{EnvTokenBudget, int64(c.TokenBudget)},
		{EnvMaxParallel, int64(c.MaxParallel)},
		{EnvTimeout, int64(c.Timeout)},
		{EnvChildTimeout, int64(c.ChildTimeout)},
	}

	for _, n := range nonNegative {
		if n.value < 0 {
			errs = append(errs, fmt.Errorf("%s: must not be negative", n.name))
		}
	}

	return errors.Join(errs...)
}

// LoggerConfig returns the logging configuration.
func (c Config) LoggerConfig() *logging.LoggerConfig {
	cfg := logging.DefaultLoggerConfig()
	cfg.Level = c.LogLevel
	cfg.Format = c.LogFormat

	return cfg
}

// WorkerModelName returns the worker model, falling back to Model.
func (c Config) WorkerModelName() string {
	if c.WorkerModel != "" {
		return c.WorkerModel
	}

	return c.Model
}

type parser struct {
	lookup func(string) (string, bool)
	errs   []error
}

func (p *parser) get(name string) (string, bool) {
	v, ok := p.lookup(name)
	if !ok {
		return "", false
	}

	v = strings.TrimSpace(v)

	return v, v != ""
}

func (p *parser) str(name string, dst *string) {
	if v, ok := p.get(name); ok {
		*dst = v
	}
}

func (p *parser) integer(name string, dst *int) {
	v, ok := p.get(name)
	if !ok {
		return
	}

	n, err := strconv.Atoi(v)
	if err != nil {
		p.errs = append(p.errs, fmt.Errorf("%s: invalid integer %q", name, v))
		return
	}

	*dst = n
}

func (p *parser) duration(name string, dst *time.Duration) {
	v, ok := p.get(name)
	if !ok {
		return
	}

	d, err := time.ParseDuration(v)
	if err != nil {
		p.errs = append(p.errs, fmt.Errorf("%s: invalid duration %q", name, v))
		return
	}

	*dst = d
}

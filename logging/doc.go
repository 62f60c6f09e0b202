// Package logging provides a minimal logging interface and adapters for taskforce.
//
// The Logger interface defines the standard logging methods (Debug, Info, Warn, Error)
// that agent loops, the delegation layer and the orchestrator use for observability.
// This package includes:
//
//   - Logger interface for dependency injection
//   - SlogAdapter wrapping Go's structured logging
//   - NoOpLogger for silent operation (testing, minimal setups)
//
// Usage:
//
//	logger := logging.NewLogger(&logging.LoggerConfig{Level: logging.LogLevelInfo, Format: "json", Output: os.Stderr})
//	lead := orchestrator.New(m, func(o *orchestrator.Options) { o.Logger = logger })
//
// Record names are dotted keys (agent.step.tool, delegate.batch.complete) with
// key/value attributes.
package logging

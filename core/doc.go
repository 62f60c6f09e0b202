// Package core provides the foundational domain types and interfaces shared by
// every taskforce package. It defines:
//
//   - Messages and roles (the transcript an agent loop feeds to a model)
//   - Tool calls parsed from assistant replies
//   - Agent handles tracking delegated sub-agents and their lifecycle
//   - Knowledge entries and the KnowledgeStore contract used to hand findings
//     between agents that do not share a transcript
//   - Progress events and the Observer side channel
//   - Step budgets (StepLimiter) and sentinel errors
//
// The package intentionally keeps implementation concerns (model vendors,
// index backends, concurrency) out of scope, exposing small interfaces so
// other packages can depend on contracts instead of concrete types.
package core

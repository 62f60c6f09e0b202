// Package orchestrator wires a lead agent on top of the delegation layer.
//
// The lead is an agent.Loop whose tools are the delegation primitives plus
// read access to the shared knowledge store. Every delegated sub-task runs
// on a fresh worker loop that can write to the store, so large findings
// travel between agents by id instead of through the lead's transcript.
package orchestrator

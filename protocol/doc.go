// Package protocol implements the textual convention agents and models use to
// exchange tool invocations.
//
// A model reply may carry an optional plan region and at most one tool region:
//
//	<plan>look up the population first</plan>
//	<tool>{"name": "search", "args": {"query": "population of Lisbon"}}</tool>
//
// Tool output is fed back wrapped in a result region:
//
//	<result>about 545000</result>
//
// A reply without a tool region is a final answer. The markup is an internal
// convention between the agent loop and the model, not a public wire format.
package protocol

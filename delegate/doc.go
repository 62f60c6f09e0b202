// Package delegate runs sub-tasks on independent child agents.
//
// A Delegator owns a Roster of AgentHandles and a Factory that builds a
// fresh Runner per handle. DelegateOne runs a single child to completion;
// DelegateMany reserves every id up front and runs the children
// concurrently behind one join barrier. A child's failure is recorded on
// its own handle and never aborts its siblings.
//
// Tools exposes the Delegator to a model as the delegate,
// delegate_multiple, get_agent_result and list_agents tools.
package delegate

// Package agent contains the agent definition used by the runner and router:
// a named persona bundling a model identifier, instructions (static or
// computed from context variables), an ordered tool list and a tool choice
// policy.
//
// Tools return an Outcome, a closed union of TextResult and Handoff. A Handoff
// carries the Agent that should serve the next turn; WireTriage installs the
// transfer tools that make a triage agent route between its peers.
//
// Agents are built once at process start and shared by reference; AddTools is
// the only mutation and is intended for construction-time handoff wiring.
package agent

// Package router drives one conversational turn across a set of agents.
//
// A Router is built from a triage agent and its peers. Construction wires
// the handoff tools in both directions. Each Turn runs the active agent once,
// assembles the answer into chunks and dispatches tool calls as they
// arrive. Text results are attached to the tool chunk; the first handoff
// ends the turn and names the agent the caller should pass back next time.
// The router keeps no conversation state between turns.
package router

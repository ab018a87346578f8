// Package runner is the completion client of winemesh.
//
// A Runner turns an agent plus a conversation transcript into exactly one
// provider request: the agent's instructions are resolved into a system
// message that is always placed first, the agent's tools are attached with
// its tool-choice policy, and the request is sent either as a complete
// generation (Run) or as a forward-only event stream (RunStream).
//
// The Runner never executes tools and never re-invokes the model on its own;
// acting on tool calls is the router's job. Upstream failures are logged and
// returned to the caller without retry.
package runner

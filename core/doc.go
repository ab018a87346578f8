// Package core provides the foundational conversation types shared by the
// agent, model, runner and router packages: transcript messages, tool call
// records, context variables and the sentinel errors surfaced to callers.
//
// The package intentionally keeps provider, transport and persistence concerns
// out of scope so every other package can depend on it without cycles.
package core

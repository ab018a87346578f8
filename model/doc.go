// Package model defines the provider-agnostic abstractions for talking to
// hosted chat-completion models.
//
// Core goals:
//   - One request per call, in single-shot (Generate) or streamed (Stream) form
//   - Normalize tool call representation across providers (core.ToolCall)
//   - Expose streams as explicit forward-only iterators (Stream) instead of channels
//   - Facilitate lightweight mocking for tests (MockModel)
//
// Providers (OpenAI-compatible incl. Groq, Anthropic, Google Gemini) live in
// subpackages and implement Model so higher layers stay decoupled from SDKs.
package model

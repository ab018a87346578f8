package testutil

import (
	"fmt"

	"github.com/hupe1980/winemesh/core"
	"github.com/hupe1980/winemesh/model"
)

// EventBuilder provides a fluent helper for scripting a model stream.
// Example:
//
//	events := NewEventBuilder().Text("Hel", "lo").Boundary().Call("transfer_to_sales", "{}").Build()
//
// Tool call ids are assigned deterministically ("call_1", "call_2", ...).
type EventBuilder struct {
	events []model.StreamEvent
	calls  int
}

// NewEventBuilder creates an empty builder.
func NewEventBuilder() *EventBuilder { return &EventBuilder{} }

// Text appends one content event per fragment (chainable).
func (b *EventBuilder) Text(fragments ...string) *EventBuilder {
	for _, f := range fragments {
		b.events = append(b.events, model.ContentEvent(f))
	}
	return b
}

// Call appends a tool call event with the given JSON arguments (chainable).
func (b *EventBuilder) Call(name, args string) *EventBuilder {
	b.calls++
	b.events = append(b.events, model.ToolCallEvent(core.ToolCall{
		ID:        fmt.Sprintf("call_%d", b.calls),
		Name:      name,
		Arguments: args,
	}))
	return b
}

// Boundary appends a turn boundary (chainable).
func (b *EventBuilder) Boundary() *EventBuilder {
	b.events = append(b.events, model.BoundaryEvent())
	return b
}

// Build returns a copy of the scripted events.
func (b *EventBuilder) Build() []model.StreamEvent {
	return append([]model.StreamEvent(nil), b.events...)
}

// Stream wraps the scripted events in a model.Stream.
func (b *EventBuilder) Stream() model.Stream { return model.NewSliceStream(b.Build(), nil) }

// Script wraps the scripted events in a MockModel script.
func (b *EventBuilder) Script() model.Script { return model.Script{Events: b.Build()} }

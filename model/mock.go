package model

import (
	"context"
	"fmt"
	"sync"

	"github.com/hupe1980/winemesh/core"
)

// Script is one canned answer of a MockModel. Events drive Stream; Message
// drives Generate (and Stream when Events is empty). Err fails the call.
type Script struct {
	Message core.Message
	Events  []StreamEvent
	Err     error
}

// MockModel is a lightweight in-memory Model useful for tests & examples.
// Scripts are consumed in order; once exhausted it echoes the last user message.
type MockModel struct {
	info Info

	mu       sync.Mutex
	scripts  []Script
	requests []Request
}

// NewMockModel constructs a MockModel with tool support enabled.
func NewMockModel(name string, scripts ...Script) *MockModel {
	return &MockModel{
		info:    Info{Name: name, Provider: "mock", SupportsTools: true},
		scripts: scripts,
	}
}

// Enqueue appends scripts.
func (m *MockModel) Enqueue(scripts ...Script) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.scripts = append(m.scripts, scripts...)
}

// Requests returns the requests received so far.
func (m *MockModel) Requests() []Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Request(nil), m.requests...)
}

// LastRequest returns the most recent request.
func (m *MockModel) LastRequest() (Request, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.requests) == 0 {
		return Request{}, false
	}
	return m.requests[len(m.requests)-1], true
}

func (m *MockModel) next(req Request) (Script, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests = append(m.requests, req)
	if len(m.scripts) == 0 {
		return Script{}, false
	}
	s := m.scripts[0]
	m.scripts = m.scripts[1:]
	return s, true
}

func echo(req Request) core.Message {
	var input string
	for i := len(req.Messages) - 1; i >= 0; i-- {
		if req.Messages[i].Role == core.RoleUser {
			input = req.Messages[i].Content
			break
		}
	}
	return core.AssistantMessage(fmt.Sprintf("Mock response to: %s", input))
}

// Generate implements Model.
func (m *MockModel) Generate(ctx context.Context, req Request) (*Response, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s, ok := m.next(req)
	if !ok {
		return &Response{Message: echo(req), FinishReason: "stop"}, nil
	}
	if s.Err != nil {
		return nil, s.Err
	}
	msg := s.Message
	if msg.Role == "" {
		msg.Role = core.RoleAssistant
	}
	finish := "stop"
	if len(msg.ToolCalls) > 0 {
		finish = "tool_calls"
	}
	return &Response{Message: msg, FinishReason: finish}, nil
}

// Stream implements Model. Unscripted answers are streamed rune by rune.
func (m *MockModel) Stream(ctx context.Context, req Request) (Stream, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s, ok := m.next(req)
	if !ok {
		var events []StreamEvent
		for _, r := range echo(req).Content {
			events = append(events, ContentEvent(string(r)))
		}
		return NewSliceStream(append(events, BoundaryEvent()), nil), nil
	}
	if s.Err != nil && len(s.Events) == 0 {
		return nil, s.Err
	}
	if len(s.Events) == 0 {
		return NewSliceStream(MessageEvents(s.Message), nil), nil
	}
	return NewSliceStream(append([]StreamEvent(nil), s.Events...), s.Err), nil
}

// Info implements Model.
func (m *MockModel) Info() Info { return m.info }

package model

import (
	"github.com/hupe1980/winemesh/core"
)

// EventKind discriminates StreamEvent values.
type EventKind int

const (
	// EventContent carries a text fragment.
	EventContent EventKind = iota + 1
	// EventToolCall carries a decoded tool call.
	EventToolCall
	// EventTurnBoundary marks the end of one assistant message segment.
	EventTurnBoundary
)

func (k EventKind) String() string {
	switch k {
	case EventContent:
		return "content"
	case EventToolCall:
		return "tool_call"
	case EventTurnBoundary:
		return "turn_boundary"
	default:
		return "unknown"
	}
}

// StreamEvent is a transient unit emitted while draining a streamed completion.
type StreamEvent struct {
	Kind     EventKind      `json:"kind"`
	Content  string         `json:"content,omitempty"`
	ToolCall *core.ToolCall `json:"tool_call,omitempty"`
}

// ContentEvent builds a content fragment event.
func ContentEvent(text string) StreamEvent { return StreamEvent{Kind: EventContent, Content: text} }

// ToolCallEvent builds a tool call event.
func ToolCallEvent(tc core.ToolCall) StreamEvent {
	return StreamEvent{Kind: EventToolCall, ToolCall: &tc}
}

// BoundaryEvent builds a turn boundary event.
func BoundaryEvent() StreamEvent { return StreamEvent{Kind: EventTurnBoundary} }

// Stream is a single-pass, forward-only iterator over StreamEvents. Next
// blocks until the next event is available and returns false at end of
// stream or on error; Err distinguishes the two. A finished stream stays
// finished. Close releases the underlying connection and may be called at
// any time, including mid-stream.
//
//	for s.Next() {
//		ev := s.Event()
//		...
//	}
//	if err := s.Err(); err != nil { ... }
type Stream interface {
	Next() bool
	Event() StreamEvent
	Err() error
	Close() error
}

// Queue buffers events decoded from one network read so providers can hand
// them out one Next call at a time.
type Queue struct {
	events []StreamEvent
}

// Push appends events.
func (q *Queue) Push(evs ...StreamEvent) { q.events = append(q.events, evs...) }

// Pop removes and returns the oldest event.
func (q *Queue) Pop() (StreamEvent, bool) {
	if len(q.events) == 0 {
		return StreamEvent{}, false
	}
	ev := q.events[0]
	q.events = q.events[1:]
	return ev, true
}

// Len returns the number of buffered events.
func (q *Queue) Len() int { return len(q.events) }

// sliceStream replays a fixed event list.
type sliceStream struct {
	events []StreamEvent
	err    error
	pos    int
	cur    StreamEvent
	done   bool
}

// NewSliceStream returns a Stream over events that reports err, if any, once
// the events are exhausted.
func NewSliceStream(events []StreamEvent, err error) Stream {
	return &sliceStream{events: events, err: err}
}

func (s *sliceStream) Next() bool {
	if s.done {
		return false
	}
	if s.pos >= len(s.events) {
		s.done = true
		return false
	}
	s.cur = s.events[s.pos]
	s.pos++
	return true
}

func (s *sliceStream) Event() StreamEvent { return s.cur }

func (s *sliceStream) Err() error {
	if s.done && s.pos >= len(s.events) {
		return s.err
	}
	return nil
}

func (s *sliceStream) Close() error {
	s.done = true
	return nil
}

// MessageEvents converts a complete assistant message into the event
// sequence a streamed answer would have produced: content, tool calls, one
// turn boundary.
func MessageEvents(msg core.Message) []StreamEvent {
	events := make([]StreamEvent, 0, len(msg.ToolCalls)+2)
	if msg.Content != "" {
		events = append(events, ContentEvent(msg.Content))
	}
	for _, tc := range msg.ToolCalls {
		events = append(events, ToolCallEvent(tc))
	}
	return append(events, BoundaryEvent())
}

// Collect drains s into a slice and closes it.
func Collect(s Stream) ([]StreamEvent, error) {
	defer s.Close()
	var out []StreamEvent
	for s.Next() {
		out = append(out, s.Event())
	}
	return out, s.Err()
}

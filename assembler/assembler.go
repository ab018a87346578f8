package assembler

import (
	"errors"
	"strings"

	"github.com/hupe1980/winemesh/core"
	"github.com/hupe1980/winemesh/model"
)

// ErrStop may be returned by a ToolHandler to end the turn after the current
// tool chunk. The stream is closed and no further events are consumed.
var ErrStop = errors.New("assembler: stop")

// ToolUsage annotates a chunk produced by a tool call.
type ToolUsage struct {
	ID        string `json:"id,omitempty"`
	Name      string `json:"name"`
	Arguments string `json:"arguments,omitempty"`
	// Result holds the text a tool returned, if any.
	Result string `json:"result,omitempty"`
	// Handoff names the agent the conversation moves to, if any.
	Handoff string `json:"handoff,omitempty"`
}

// Chunk is one caller-visible piece of a turn.
type Chunk struct {
	Text string     `json:"text"`
	Tool *ToolUsage `json:"tool,omitempty"`
}

// ToolHandler is invoked once per tool call in arrival order. The returned
// usage replaces the default annotation.
type ToolHandler func(call core.ToolCall) (ToolUsage, error)

// Options configure an Assembler.
type Options struct {
	// Segmenter defaults to TurnBoundary.
	Segmenter Strategy
	// ToolAnnotations controls whether tool chunks carry the
	// "Using <tool>..." text. Metadata is attached either way.
	ToolAnnotations bool
}

// Assembler drains streams into chunks. It holds no per-stream state and may
// be shared.
type Assembler struct {
	segmenter   Strategy
	annotations bool
}

// New creates an Assembler.
func New(optFns ...func(o *Options)) *Assembler {
	opts := Options{Segmenter: TurnBoundary(), ToolAnnotations: true}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Segmenter == nil {
		opts.Segmenter = TurnBoundary()
	}
	return &Assembler{segmenter: opts.Segmenter, annotations: opts.ToolAnnotations}
}

// WithSegmenter selects the segmentation strategy.
func WithSegmenter(s Strategy) func(o *Options) {
	return func(o *Options) { o.Segmenter = s }
}

// WithToolAnnotations toggles the descriptive tool chunk text.
func WithToolAnnotations(enabled bool) func(o *Options) {
	return func(o *Options) { o.ToolAnnotations = enabled }
}

// ToolText is the descriptive text of a tool chunk.
func ToolText(name string) string { return "Using " + name + "..." }

// Run drains s in arrival order and calls emit for every chunk. s is always
// closed on return. An error from emit or onTool (other than ErrStop) aborts
// the run and is returned; a stream error is returned after the buffered
// content has been emitted.
func (a *Assembler) Run(s model.Stream, onTool ToolHandler, emit func(Chunk) error) error {
	defer s.Close()

	seg := a.segmenter()
	emitText := func(texts []string) error {
		for _, t := range texts {
			if err := emit(Chunk{Text: t}); err != nil {
				return err
			}
		}
		return nil
	}

	for s.Next() {
		ev := s.Event()
		switch ev.Kind {
		case model.EventContent:
			if err := emitText(seg.Write(ev.Content)); err != nil {
				return err
			}
		case model.EventTurnBoundary:
			if err := emitText(seg.Boundary()); err != nil {
				return err
			}
		case model.EventToolCall:
			if ev.ToolCall == nil {
				continue
			}
			if err := emitText(seg.Flush()); err != nil {
				return err
			}
			stop, err := a.tool(*ev.ToolCall, onTool, emit)
			if err != nil {
				return err
			}
			if stop {
				return nil
			}
		}
	}

	if err := emitText(seg.Flush()); err != nil {
		return err
	}
	return s.Err()
}

func (a *Assembler) tool(call core.ToolCall, onTool ToolHandler, emit func(Chunk) error) (bool, error) {
	usage := ToolUsage{ID: call.ID, Name: call.Name, Arguments: call.Arguments}
	var stop bool
	if onTool != nil {
		u, err := onTool(call)
		switch {
		case errors.Is(err, ErrStop):
			stop = true
		case err != nil:
			return false, err
		}
		usage = merge(usage, u)
	}

	chunk := Chunk{Tool: &usage}
	if a.annotations {
		chunk.Text = ToolText(call.Name)
	}
	return stop, emit(chunk)
}

func merge(base, u ToolUsage) ToolUsage {
	if u.Name != "" {
		base.Name = u.Name
	}
	if u.Arguments != "" {
		base.Arguments = u.Arguments
	}
	base.Result = u.Result
	base.Handoff = u.Handoff
	return base
}

// Collect drains s and returns all chunks.
func (a *Assembler) Collect(s model.Stream, onTool ToolHandler) ([]Chunk, error) {
	var chunks []Chunk
	err := a.Run(s, onTool, func(c Chunk) error {
		chunks = append(chunks, c)
		return nil
	})
	return chunks, err
}

// Join concatenates the text of all chunks.
func Join(chunks []Chunk) string {
	var b strings.Builder
	for _, c := range chunks {
		b.WriteString(c.Text)
	}
	return b.String()
}

// Content concatenates the text of content chunks only, skipping tool chunks.
func Content(chunks []Chunk) string {
	var b strings.Builder
	for _, c := range chunks {
		if c.Tool == nil {
			b.WriteString(c.Text)
		}
	}
	return b.String()
}

// Tools returns the tool annotations in order.
func Tools(chunks []Chunk) []ToolUsage {
	var out []ToolUsage
	for _, c := range chunks {
		if c.Tool != nil {
			out = append(out, *c.Tool)
		}
	}
	return out
}

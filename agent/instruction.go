package agent

import (
	"context"

	"github.com/hupe1980/winemesh/core"
	"github.com/hupe1980/winemesh/internal/util"
)

// Provider supplies dynamic instruction text at call time.
type Provider interface {
	Instruction(ctx context.Context, vars core.Variables) (string, error)
}

// Func is a functional adapter to allow ordinary functions to be used as Providers.
type Func func(ctx context.Context, vars core.Variables) (string, error)

// Instruction implements Provider.
func (f Func) Instruction(ctx context.Context, vars core.Variables) (string, error) {
	return f(ctx, vars)
}

// Instruction represents either a static instruction string or a dynamic provider.
// Static text may reference context variables with template markers ({{.user_id}}).
type Instruction struct {
	text     string
	provider Provider
}

// NewInstructionFromText creates an Instruction from a string that is parsed
// as a text/template at resolve time. A literal "{{" must be written as
// {{"{{"}}; unbalanced markers fail Resolve.
func NewInstructionFromText(text string) Instruction { return Instruction{text: text} }

// NewInstructionFromProvider creates an Instruction from a dynamic provider.
func NewInstructionFromProvider(p Provider) Instruction { return Instruction{provider: p} }

// NewInstructionFromFunc creates an Instruction from a function.
func NewInstructionFromFunc(f func(ctx context.Context, vars core.Variables) (string, error)) Instruction {
	return Instruction{provider: Func(f)}
}

// IsStatic returns true if the instruction is backed by a static string.
func (i Instruction) IsStatic() bool { return i.provider == nil }

// Resolve returns the instruction text, invoking the provider or rendering the
// template markers as needed.
func (i Instruction) Resolve(ctx context.Context, vars core.Variables) (string, error) {
	if i.provider != nil {
		return i.provider.Instruction(ctx, vars)
	}
	return util.RenderTemplate(i.text, vars)
}

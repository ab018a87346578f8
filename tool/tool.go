// Package tool implements the function descriptors advertised to models: a
// static schema builder, struct reflection for argument containers, argument
// validation and the error type shared by every tool invocation.
package tool

import "fmt"

// Error codes attached to *Error.
const (
	CodeValidation = "VALIDATION_ERROR"
	CodeExecution  = "EXECUTION_ERROR"
	CodeNotFound   = "NOT_FOUND"
)

// Definition is the tool schema object attached verbatim to each model request.
type Definition struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Parameters  Schema `json:"parameters"`
}

// NewDefinition builds a Definition. A nil-valued schema becomes an empty object schema.
func NewDefinition(name, description string, params Schema) Definition {
	if params.Type == "" {
		params = NewSchema().Build()
	}
	return Definition{Name: name, Description: description, Parameters: params}
}

// Error represents errors that occur during tool lookup, validation or execution.
type Error struct {
	Tool    string `json:"tool"`
	Message string `json:"message"`
	Code    string `json:"code"`
	Details any    `json:"details,omitempty"`
}

func (e *Error) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("tool error [%s] in %s: %s", e.Code, e.Tool, e.Message)
	}
	return fmt.Sprintf("tool error in %s: %s", e.Tool, e.Message)
}

// NewError creates a new Error with the specified details.
func NewError(tool, message, code string) *Error {
	return &Error{Tool: tool, Message: message, Code: code}
}

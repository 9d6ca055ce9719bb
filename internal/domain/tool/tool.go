// Package tool defines the capability contract every TuneDeck analysis
// plugin must satisfy, plus the outcome taxonomy returned by the
// invocation boundary.
package tool

import "context"

// DefaultVersion is assumed when a tool does not declare its own version.
const DefaultVersion = "1.0.0"

// Metadata identifies a tool. It is constructed once per instance and
// never mutated afterwards; Name is the registry key.
type Metadata struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Version     string `json:"version"`
}

// NewMetadata builds a Metadata, filling in the default version when
// none is given.
func NewMetadata(name, description, version string) Metadata {
	if version == "" {
		version = DefaultVersion
	}
	return Metadata{Name: name, Description: description, Version: version}
}

// AgentTool is the contract a loaded plugin exposes to the registry.
//
// ValidateInputs is a pure predicate: it must not mutate tool state and
// must return false (not an error) for well-formed-but-invalid payloads.
// An error return is reserved for structurally malformed payloads and is
// treated as a validation failure by the caller.
//
// Execute is only called with a payload that ValidateInputs accepted.
// It blocks for the duration of the work; callers wanting a deadline
// pass it through ctx.
//
// Tools invoked from multiple goroutines are responsible for their own
// thread safety; the registry does not serialize calls.
type AgentTool interface {
	Metadata() Metadata
	ValidateInputs(inputs map[string]any) (bool, error)
	Execute(ctx context.Context, inputs map[string]any) (map[string]any, error)
}

// Initializer is the optional eager-setup hook. Init must be idempotent.
type Initializer interface {
	Init() error
}

// Finalizer is the optional resource-release hook. Teardown must be
// idempotent and is called before an instance is dropped.
type Finalizer interface {
	Teardown() error
}

// Init runs the tool's Init hook if it declares one.
func Init(t AgentTool) error {
	if i, ok := t.(Initializer); ok {
		return i.Init()
	}
	return nil
}

// Teardown runs the tool's Teardown hook if it declares one.
func Teardown(t AgentTool) error {
	if f, ok := t.(Finalizer); ok {
		return f.Teardown()
	}
	return nil
}

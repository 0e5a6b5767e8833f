// Package toolkit provides the tool-calling core for text-protocol LLM agents.
// It lets host code register Go functions as tools, describes them to a model,
// parses the model's tagged output into call requests, and executes those calls
// with per-call failure isolation.
//
// Core concepts:
//   - Descriptor: one callable with its name, documentation, ordered parameters and return type
//   - Toolkit: the registry of descriptors, resolving name collisions on insertion
//   - Parser: extracts CallRequests from tagged segments of raw model text
//   - Dispatcher: runs CallRequests in order and serializes each CallResult back into tags
//
// This file defines the descriptor that every registered tool is built from.
package toolkit

import (
	"context"
	"reflect"
	"slices"
)

// UnknownType is the schema type reported for parameters without a declared type.
const UnknownType = "unknown"

// Func is the uniform calling convention every tool is reduced to.
// Arguments arrive exactly as parsed from the model output.
type Func func(ctx context.Context, args map[string]any) (any, error)

// Param declares one parameter of a tool.
type Param struct {
	Name        string
	Type        string // JSON type name ("integer", "string", ...); UnknownType if undeclared
	Description string
	Required    bool
}

// Descriptor wraps one callable with everything needed to describe, validate and invoke it.
// A Descriptor is immutable once built.
type Descriptor struct {
	name        string
	description string
	params      []Param
	returnType  reflect.Type // nil when no return type is declared
	fn          Func
}

// NewDynamicTool builds a Descriptor from an explicit parameter list and an untyped function.
// Use it for tools whose signature is only known at runtime. returnType may be nil, in which
// case the result is not type-checked.
func NewDynamicTool(name, description string, params []Param, returnType reflect.Type, fn Func) (*Descriptor, error) {
	if fn == nil {
		return nil, wrapError(KindRegistration, ErrRegistration, "tool '%s' must be a callable function", name)
	}
	if name == "" {
		return nil, wrapError(KindRegistration, ErrRegistration, "tool name must not be empty")
	}
	seen := make(map[string]struct{}, len(params))
	ps := make([]Param, len(params))
	for i, p := range params {
		if p.Name == "" {
			return nil, wrapError(KindRegistration, ErrRegistration, "tool '%s': parameter %d has no name", name, i)
		}
		if _, dup := seen[p.Name]; dup {
			return nil, wrapError(KindRegistration, ErrRegistration, "tool '%s': duplicate parameter '%s'", name, p.Name)
		}
		seen[p.Name] = struct{}{}
		if p.Type == "" {
			p.Type = UnknownType
		}
		ps[i] = p
	}
	return &Descriptor{
		name:        name,
		description: description,
		params:      ps,
		returnType:  returnType,
		fn:          fn,
	}, nil
}

// GetName returns the tool name.
func (d *Descriptor) GetName() string { return d.name }

// GetDescription returns the tool documentation, empty if none was given.
func (d *Descriptor) GetDescription() string { return d.description }

// GetParameters returns a copy of the ordered parameter list.
func (d *Descriptor) GetParameters() []Param { return slices.Clone(d.params) }

// GetReturnType returns the declared return type, or nil.
func (d *Descriptor) GetReturnType() reflect.Type { return d.returnType }

// renamed returns a copy of d registered under another name.
func (d *Descriptor) renamed(name string) *Descriptor {
	c := *d
	c.name = name
	return &c
}

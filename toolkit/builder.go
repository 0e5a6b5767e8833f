package toolkit

import (
	"context"
	"encoding/json"
	"reflect"

	"github.com/invopop/jsonschema"
)

// NewTool builds a Descriptor from a typed Go function.
//
// T must be a struct; each of its JSON-visible fields becomes a required parameter, in field
// order, typed by the JSON schema github.com/invopop/jsonschema derives for it. Fields of
// interface type are reported as UnknownType. R is the declared return type; when R is an
// interface type the result is not type-checked.
//
// Arguments are coerced into T through a JSON round trip; values that cannot be coerced are
// reported as invalid arguments without invoking fn.
//
// Example:
//
//	type SumArgs struct {
//	    X int `json:"x" jsonschema:"description=First addend"`
//	    Y int `json:"y" jsonschema:"description=Second addend"`
//	}
//	sum, err := toolkit.NewTool("summation", "Add two integers.",
//	    func(_ context.Context, a SumArgs) (int, error) { return a.X + a.Y, nil })
func NewTool[T any, R any](name, description string, fn func(ctx context.Context, args T) (R, error)) (*Descriptor, error) {
	if fn == nil {
		return nil, wrapError(KindRegistration, ErrRegistration, "tool '%s' must be a callable function", name)
	}
	argType := reflect.TypeOf((*T)(nil)).Elem()
	if argType.Kind() != reflect.Struct {
		return nil, wrapError(KindRegistration, ErrRegistration, "tool '%s': argument type %s must be a struct", name, argType)
	}

	var returnType reflect.Type
	if rt := reflect.TypeOf((*R)(nil)).Elem(); rt.Kind() != reflect.Interface {
		returnType = rt
	}

	call := func(ctx context.Context, args map[string]any) (any, error) {
		typed, err := decodeArgs[T](args)
		if err != nil {
			return nil, err
		}
		return fn(ctx, typed)
	}
	return NewDynamicTool(name, description, paramsFromSchema(GenerateSchema[T]()), returnType, call)
}

// decodeArgs coerces raw arguments into T.
func decodeArgs[T any](args map[string]any) (T, error) {
	var typed T
	raw, err := json.Marshal(args)
	if err != nil {
		return typed, wrapError(KindInvalidArguments, err, "%v", err)
	}
	if err := json.Unmarshal(raw, &typed); err != nil {
		return typed, wrapError(KindInvalidArguments, err, "%v", err)
	}
	return typed, nil
}

func paramsFromSchema(s *jsonschema.Schema) []Param {
	if s == nil || s.Properties == nil {
		return nil
	}
	params := make([]Param, 0, s.Properties.Len())
	for pair := s.Properties.Oldest(); pair != nil; pair = pair.Next() {
		typ := UnknownType
		desc := ""
		if pair.Value != nil {
			if pair.Value.Type != "" {
				typ = pair.Value.Type
			}
			desc = pair.Value.Description
		}
		params = append(params, Param{Name: pair.Key, Type: typ, Description: desc, Required: true})
	}
	return params
}

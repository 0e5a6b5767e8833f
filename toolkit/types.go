// Package toolkit provides the tool-calling core for text-protocol LLM agents.
// This file defines the data structures used for schemas, call requests and call results.
package toolkit

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"

	"github.com/invopop/jsonschema"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// --- Schema surface exposed to the model ---

// Schema is the model-facing description of one tool:
// {name, description, parameters: {properties: {paramName: {type}}}}.
type Schema struct {
	Name        string           `json:"name"`
	Description string           `json:"description"`
	Parameters  SchemaParameters `json:"parameters"`
}

// SchemaParameters holds the properties of a schema in declaration order.
type SchemaParameters struct {
	Properties *orderedmap.OrderedMap[string, PropertySchema] `json:"properties"`
}

// PropertySchema describes one parameter.
type PropertySchema struct {
	Type string `json:"type"`
}

// Schema derives the model-facing schema. It is pure: repeated calls return equal values.
func (d *Descriptor) Schema() Schema {
	props := orderedmap.New[string, PropertySchema]()
	for _, p := range d.params {
		props.Set(p.Name, PropertySchema{Type: p.Type})
	}
	return Schema{
		Name:        d.name,
		Description: d.description,
		Parameters:  SchemaParameters{Properties: props},
	}
}

// JSONSchema returns a standard JSON Schema object for the tool's arguments, used for
// strict argument validation. Parameters of UnknownType accept any value.
func (d *Descriptor) JSONSchema() map[string]any {
	props := make(map[string]any, len(d.params))
	required := make([]string, 0, len(d.params))
	for _, p := range d.params {
		prop := map[string]any{}
		if p.Type != UnknownType {
			prop["type"] = p.Type
		}
		props[p.Name] = prop
		if p.Required {
			required = append(required, p.Name)
		}
	}
	s := map[string]any{
		"type":       "object",
		"properties": props,
	}
	if len(required) > 0 {
		s["required"] = required
	}
	return s
}

// --- Call protocol records ---

// CallRequest is one tool invocation parsed from model output.
// ID is supplied by the model and is not verified.
type CallRequest struct {
	Name      string         `json:"name"`
	Arguments map[string]any `json:"arguments"`
	ID        int64          `json:"id"`
}

// CallResult is the outcome of one CallRequest: either Value or Err is meaningful.
type CallResult struct {
	ID    int64
	Name  string
	Value any
	Err   *ToolKitError

	text     string
	rendered bool
}

// OK reports whether the call succeeded.
func (r CallResult) OK() bool { return r.Err == nil }

// Text renders the outcome as the string reported back to the model.
func (r CallResult) Text() string {
	if r.Err != nil {
		return r.Err.Message
	}
	if r.rendered {
		return r.text
	}
	return FormatValue(r.Value)
}

// FormatValue renders a tool result value as text. Scalars use their natural
// representation; composite values are rendered as JSON. Nil values, including typed nil
// pointers, maps and slices, render as "null".
func FormatValue(v any) string {
	if v == nil {
		return "null"
	}
	switch rv := reflect.ValueOf(v); rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface, reflect.Func, reflect.Chan:
		if rv.IsNil() {
			return "null"
		}
	}
	switch val := v.(type) {
	case string:
		return val
	case bool:
		return strconv.FormatBool(val)
	case json.Number:
		return val.String()
	case fmt.Stringer:
		return val.String()
	case error:
		return val.Error()
	}
	switch reflect.ValueOf(v).Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return fmt.Sprint(v)
	}
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(b)
}

// --- Schema Generation Helper ---

// GenerateSchema creates a JSON schema representation for the provided generic type T.
// It uses reflection through the github.com/invopop/jsonschema library.
//
// The schema generation respects jsonschema tags on struct fields, including:
// - required: Whether the field is required
// - description: Field descriptions for documentation
func GenerateSchema[T any]() *jsonschema.Schema {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties:  true, // Allow additional properties in the generated schema
		DoNotReference:             true, // Keep schema self-contained, no $refs
		RequiredFromJSONSchemaTags: true, // Only fields tagged required are listed in Required
	}
	var v T
	return reflector.Reflect(&v)
}

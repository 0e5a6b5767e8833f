package toolkit

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/sourcegraph/conc/panics"
	"github.com/xeipuuv/gojsonschema"
)

// Validator checks a call's arguments against a Descriptor, invokes the tool, and checks
// the runtime type of the result against the declared return type.
// Every failure is returned as a *ToolKitError; nothing a tool does escapes Run.
type Validator struct {
	strict bool
	logger zerolog.Logger
}

// ValidatorOption configures a Validator.
type ValidatorOption func(*Validator)

// WithStrictTypes validates argument values against the declared parameter types
// (JSON Schema semantics) before invoking the tool. Off by default: declared types are advisory.
func WithStrictTypes() ValidatorOption {
	return func(v *Validator) {
		v.strict = true
	}
}

// WithValidatorLogger sets the logger used for execution diagnostics.
func WithValidatorLogger(logger zerolog.Logger) ValidatorOption {
	return func(v *Validator) {
		v.logger = logger
	}
}

// NewValidator creates a Validator.
func NewValidator(opts ...ValidatorOption) *Validator {
	v := &Validator{logger: log.Logger}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// CheckPresence requires every required parameter of d to be present in args.
// With strict types enabled it also validates the values. It never invokes the tool.
func (v *Validator) CheckPresence(d *Descriptor, args map[string]any) error {
	var missing []string
	for _, p := range d.params {
		if !p.Required {
			continue
		}
		if _, ok := args[p.Name]; !ok {
			missing = append(missing, p.Name)
		}
	}
	if len(missing) > 0 {
		return invalidArguments(d, nil, "Missing: "+strings.Join(missing, ", "))
	}
	if v.strict {
		return v.checkTypes(d, args)
	}
	return nil
}

func (v *Validator) checkTypes(d *Descriptor, args map[string]any) error {
	if args == nil {
		args = map[string]any{}
	}
	v.logger.Trace().Str("tool", d.name).Msg("validating argument types")
	result, err := gojsonschema.Validate(gojsonschema.NewGoLoader(d.JSONSchema()), gojsonschema.NewGoLoader(args))
	if err != nil {
		return invalidArguments(d, err, "Details: "+err.Error())
	}
	if !result.Valid() {
		msgs := make([]string, 0, len(result.Errors()))
		for _, re := range result.Errors() {
			msgs = append(msgs, re.String())
		}
		return invalidArguments(d, nil, "Details: "+strings.Join(msgs, "; "))
	}
	return nil
}

// Run validates args, invokes the tool and checks its result.
// Panics raised by the tool are recovered and reported as execution faults.
func (v *Validator) Run(ctx context.Context, d *Descriptor, args map[string]any) (any, error) {
	if err := v.CheckPresence(d, args); err != nil {
		return nil, err
	}

	var (
		result  any
		callErr error
		pc      panics.Catcher
	)
	pc.Try(func() { result, callErr = d.fn(ctx, args) })
	if r := pc.Recovered(); r != nil {
		v.logger.Error().Str("tool", d.name).Interface("panic", r.Value).Msg("tool panicked")
		return nil, wrapError(KindExecution, r.AsError(), "Error executing '%s': %v", d.name, r.Value)
	}
	if callErr != nil {
		var tkErr *ToolKitError
		if errors.As(callErr, &tkErr) && tkErr.Code == KindInvalidArguments {
			return nil, invalidArguments(d, callErr, "Details: "+tkErr.Message)
		}
		return nil, wrapError(KindExecution, callErr, "Error executing '%s': %v", d.name, callErr)
	}

	if d.returnType != nil {
		if got := reflect.TypeOf(result); got != d.returnType {
			return nil, wrapError(KindReturnTypeMismatch, ErrReturnTypeMismatch,
				"Error: Function '%s' returned %s, expected %s.", d.name, typeName(got), d.returnType)
		}
	}
	return result, nil
}

func invalidArguments(d *Descriptor, cause error, detail string) *ToolKitError {
	if cause == nil {
		cause = ErrInvalidArguments
	}
	return wrapError(KindInvalidArguments, cause, "Error: Invalid or missing parameters for function '%s'. %s", d.name, detail)
}

func typeName(t reflect.Type) string {
	if t == nil {
		return "nil"
	}
	return fmt.Sprint(t)
}

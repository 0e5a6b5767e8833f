package toolkit_test

import (
	"context"
	"encoding/json"
	"errors"
	"reflect"
	"testing"

	"github.com/hamzaessahbaoui/agentic-toolkit/toolkit"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidatorRun_Summation(t *testing.T) {
	v := toolkit.NewValidator()
	d := newSumTool(t, "summation")

	got, err := v.Run(context.Background(), d, map[string]any{"x": 3, "y": 4})
	require.NoError(t, err)
	assert.Equal(t, 7, got)
	assert.Equal(t, d.GetReturnType(), reflect.TypeOf(got))
}

func TestValidatorRun_ParsedNumbers(t *testing.T) {
	v := toolkit.NewValidator()
	got, err := v.Run(context.Background(), newSumTool(t, "summation"),
		map[string]any{"x": json.Number("2"), "y": json.Number("5")})
	require.NoError(t, err)
	assert.Equal(t, 7, got)
}

func TestValidatorRun_MissingParameterNeverInvokes(t *testing.T) {
	called := false
	d, err := toolkit.NewTool("summation", "", func(_ context.Context, a sumArgs) (int, error) {
		called = true
		return a.X + a.Y, nil
	})
	require.NoError(t, err)

	v := toolkit.NewValidator()
	for _, args := range []map[string]any{nil, {}, {"x": 1}, {"y": 1}} {
		_, err := v.Run(context.Background(), d, args)
		require.Error(t, err)
		assert.ErrorIs(t, err, toolkit.ErrInvalidArguments)
		assert.Contains(t, err.Error(), "Error: Invalid or missing parameters for function 'summation'.")
	}
	assert.False(t, called)
}

func TestValidatorRun_OptionalParameter(t *testing.T) {
	d, err := toolkit.NewDynamicTool("greet", "", []toolkit.Param{
		{Name: "name", Type: "string", Required: true},
		{Name: "greeting", Type: "string"},
	}, reflect.TypeOf(""), func(_ context.Context, args map[string]any) (any, error) {
		g, ok := args["greeting"].(string)
		if !ok {
			g = "Hello"
		}
		return g + ", " + args["name"].(string), nil
	})
	require.NoError(t, err)

	got, err := toolkit.NewValidator().Run(context.Background(), d, map[string]any{"name": "Ada"})
	require.NoError(t, err)
	assert.Equal(t, "Hello, Ada", got)
}

func TestValidatorRun_Faults(t *testing.T) {
	boom := errors.New("boom")

	tests := []struct {
		name    string
		fn      toolkit.Func
		ret     reflect.Type
		kind    toolkit.ErrorKind
		message string
	}{
		{
			name:    "tool error",
			fn:      func(context.Context, map[string]any) (any, error) { return nil, boom },
			kind:    toolkit.KindExecution,
			message: "Error executing 'faulty': boom",
		},
		{
			name:    "tool panic",
			fn:      func(context.Context, map[string]any) (any, error) { panic("kaboom") },
			kind:    toolkit.KindExecution,
			message: "Error executing 'faulty': kaboom",
		},
		{
			name:    "wrong return type",
			fn:      func(context.Context, map[string]any) (any, error) { return "7", nil },
			ret:     reflect.TypeOf(0),
			kind:    toolkit.KindReturnTypeMismatch,
			message: "Error: Function 'faulty' returned string, expected int.",
		},
		{
			name:    "nil where a value is declared",
			fn:      func(context.Context, map[string]any) (any, error) { return nil, nil },
			ret:     reflect.TypeOf(0),
			kind:    toolkit.KindReturnTypeMismatch,
			message: "Error: Function 'faulty' returned nil, expected int.",
		},
		{
			name:    "subtypes are not accepted",
			fn:      func(context.Context, map[string]any) (any, error) { return int64(7), nil },
			ret:     reflect.TypeOf(0),
			kind:    toolkit.KindReturnTypeMismatch,
			message: "Error: Function 'faulty' returned int64, expected int.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := toolkit.NewDynamicTool("faulty", "", nil, tt.ret, tt.fn)
			require.NoError(t, err)

			var got any
			require.NotPanics(t, func() {
				got, err = toolkit.NewValidator().Run(context.Background(), d, nil)
			})
			require.Error(t, err)
			assert.Nil(t, got)
			assert.Equal(t, tt.kind, toolkit.KindOf(err))

			var tkErr *toolkit.ToolKitError
			require.ErrorAs(t, err, &tkErr)
			assert.Equal(t, tt.message, tkErr.Message)
		})
	}
}

func TestValidatorRun_ToolErrorIsUnwrappable(t *testing.T) {
	sentinel := errors.New("disk full")
	d, err := toolkit.NewDynamicTool("write", "", nil, nil,
		func(context.Context, map[string]any) (any, error) { return nil, sentinel })
	require.NoError(t, err)

	_, err = toolkit.NewValidator().Run(context.Background(), d, nil)
	assert.ErrorIs(t, err, sentinel)
	assert.ErrorIs(t, err, toolkit.ErrExecution)
}

func TestValidatorRun_UncoercibleArguments(t *testing.T) {
	_, err := toolkit.NewValidator().Run(context.Background(), newSumTool(t, "summation"),
		map[string]any{"x": "three", "y": 4})
	require.Error(t, err)
	assert.Equal(t, toolkit.KindInvalidArguments, toolkit.KindOf(err))
	assert.Contains(t, err.Error(), "function 'summation'")
}

func TestValidator_StrictTypes(t *testing.T) {
	d, err := toolkit.NewDynamicTool("scale", "", []toolkit.Param{
		{Name: "factor", Type: "integer", Required: true},
		{Name: "label"},
	}, nil, func(_ context.Context, args map[string]any) (any, error) { return args["factor"], nil })
	require.NoError(t, err)

	lenient := toolkit.NewValidator()
	strict := toolkit.NewValidator(toolkit.WithStrictTypes())

	bad := map[string]any{"factor": "two"}
	assert.NoError(t, lenient.CheckPresence(d, bad), "declared types are advisory by default")

	err = strict.CheckPresence(d, bad)
	require.Error(t, err)
	assert.ErrorIs(t, err, toolkit.ErrInvalidArguments)

	assert.NoError(t, strict.CheckPresence(d, map[string]any{"factor": json.Number("2"), "label": []any{1, "x"}}))
}

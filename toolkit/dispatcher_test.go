package toolkit_test

import (
	"bytes"
	"context"
	"errors"
	"net/url"
	"strings"
	"testing"

	"github.com/hamzaessahbaoui/agentic-toolkit/toolkit"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMathToolkit(t *testing.T) *toolkit.Toolkit {
	t.Helper()
	tk := toolkit.New("math", toolkit.WithLogger(zerolog.Nop()))
	tk.MustRegister(newSumTool(t, "summation"))

	failing, err := toolkit.NewDynamicTool("divide", "", []toolkit.Param{{Name: "a", Required: true}, {Name: "b", Required: true}}, nil,
		func(context.Context, map[string]any) (any, error) { return nil, errors.New("division by zero") })
	require.NoError(t, err)
	tk.MustRegister(failing)
	return tk
}

func newDispatcher(tk *toolkit.Toolkit) *toolkit.Dispatcher {
	return toolkit.NewDispatcher(tk, toolkit.WithDispatcherLogger(zerolog.Nop()))
}

func TestDispatcher_ParseThenDispatch(t *testing.T) {
	text := "<tool_call>\n{\"name\":\"summation\",\"arguments\":{\"x\":2,\"y\":5},\"id\":0}\n</tool_call>"
	reqs := quietParser(toolkit.CallTags).Parse(text)

	results := newDispatcher(newMathToolkit(t)).Process(context.Background(), reqs)
	require.Len(t, results, 1)
	assert.True(t, results[0].OK())
	assert.Equal(t, 7, results[0].Value)
	assert.Equal(t, "<tool_response>\n7\n</tool_response>\n", toolkit.Render(results))
}

func TestDispatcher_NotFound(t *testing.T) {
	reqs := []toolkit.CallRequest{{Name: "nonexistent", Arguments: map[string]any{}, ID: 3}}

	var results []toolkit.CallResult
	require.NotPanics(t, func() {
		results = newDispatcher(newMathToolkit(t)).Process(context.Background(), reqs)
	})
	require.Len(t, results, 1)
	assert.Equal(t, int64(3), results[0].ID)
	assert.ErrorIs(t, results[0].Err, toolkit.ErrNotFound)
	assert.Equal(t,
		"<tool_response>\nError: Function 'nonexistent' not found in the registry.\n</tool_response>\n",
		toolkit.RenderResult(results[0]))
}

func TestDispatcher_PartialFailureIsolation(t *testing.T) {
	reqs := []toolkit.CallRequest{
		{Name: "summation", Arguments: map[string]any{"x": 1, "y": 1}, ID: 0},
		{Name: "nonexistent", Arguments: map[string]any{}, ID: 1},
		{Name: "summation", Arguments: map[string]any{"x": 1}, ID: 2},
		{Name: "divide", Arguments: map[string]any{"a": 1, "b": 0}, ID: 3},
		{Name: "summation", Arguments: map[string]any{"x": 20, "y": 22}, ID: 4},
	}

	results := newDispatcher(newMathToolkit(t)).Process(context.Background(), reqs)
	require.Len(t, results, len(reqs))

	want := []struct {
		kind toolkit.ErrorKind
		text string
	}{
		{text: "2"},
		{kind: toolkit.KindNotFound, text: "Error: Function 'nonexistent' not found in the registry."},
		{kind: toolkit.KindInvalidArguments, text: "Error: Invalid or missing parameters for function 'summation'. Missing: y"},
		{kind: toolkit.KindExecution, text: "Error executing 'divide': division by zero"},
		{text: "42"},
	}
	for i, w := range want {
		assert.Equal(t, reqs[i].ID, results[i].ID)
		assert.Equal(t, reqs[i].Name, results[i].Name)
		assert.Equal(t, w.text, results[i].Text(), "result %d", i)
		if w.kind == "" {
			assert.True(t, results[i].OK(), "result %d", i)
		} else {
			require.NotNil(t, results[i].Err, "result %d", i)
			assert.Equal(t, w.kind, results[i].Err.Code)
		}
	}
}

func TestDispatcher_MissingParameterDoesNotInvoke(t *testing.T) {
	calls := 0
	d, err := toolkit.NewTool("count", "", func(_ context.Context, a sumArgs) (int, error) {
		calls++
		return a.X, nil
	})
	require.NoError(t, err)
	tk := toolkit.New("counting", toolkit.WithLogger(zerolog.Nop()))
	tk.MustRegister(d)

	results := newDispatcher(tk).Process(context.Background(), []toolkit.CallRequest{
		{Name: "count", Arguments: nil},
		{Name: "count", Arguments: map[string]any{"x": 5, "y": 0}},
	})
	require.Len(t, results, 2)
	assert.Equal(t, toolkit.KindInvalidArguments, results[0].Err.Code)
	assert.Equal(t, 5, results[1].Value)
	assert.Equal(t, 1, calls)
}

func TestDispatcher_ResolvedNameInMessages(t *testing.T) {
	tk := toolkit.New("dupes", toolkit.WithLogger(zerolog.Nop()))
	tk.MustRegister(newSumTool(t, "foo"))
	second := tk.MustRegister(newSumTool(t, "foo"))

	results := newDispatcher(tk).Process(context.Background(), []toolkit.CallRequest{{Name: second, Arguments: map[string]any{}}})
	require.Len(t, results, 1)
	assert.Contains(t, results[0].Text(), "function 'foo_1'")
}

func TestDispatcher_EmptyBatch(t *testing.T) {
	results := newDispatcher(newMathToolkit(t)).Process(context.Background(), nil)
	assert.Empty(t, results)
	assert.Equal(t, "", toolkit.Render(results))
}

func TestCallResult_Text(t *testing.T) {
	tests := []struct {
		name  string
		value any
		want  string
	}{
		{name: "nil", value: nil, want: "null"},
		{name: "int", value: 7, want: "7"},
		{name: "float", value: 2.5, want: "2.5"},
		{name: "string", value: "hello", want: "hello"},
		{name: "bool", value: true, want: "true"},
		{name: "slice", value: []int{1, 2}, want: "[1,2]"},
		{name: "map", value: map[string]int{"a": 1}, want: `{"a":1}`},
		{name: "nil stringer pointer", value: (*url.URL)(nil), want: "null"},
		{name: "nil map", value: map[string]int(nil), want: "null"},
		{name: "stringer", value: &url.URL{Scheme: "https", Host: "example.com"}, want: "https://example.com"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, toolkit.CallResult{Value: tt.value}.Text())
		})
	}
}

type explosive struct{}

func (explosive) String() string { panic("boom") }

func TestDispatcher_NilStringerResult(t *testing.T) {
	tk := newMathToolkit(t)
	parse, err := toolkit.NewTool("parse_url", "", func(context.Context, sumArgs) (*url.URL, error) {
		return nil, nil
	})
	require.NoError(t, err)
	tk.MustRegister(parse)

	var results []toolkit.CallResult
	require.NotPanics(t, func() {
		results = newDispatcher(tk).Process(context.Background(), []toolkit.CallRequest{
			{Name: "parse_url", Arguments: map[string]any{"x": 1, "y": 2}, ID: 0},
			{Name: "summation", Arguments: map[string]any{"x": 3, "y": 4}, ID: 1},
		})
	})
	require.Len(t, results, 2)
	assert.True(t, results[0].OK())
	assert.Equal(t, "null", results[0].Text())
	assert.True(t, results[1].OK())
	assert.Equal(t, "7", results[1].Text())
}

func TestDispatcher_RenderPanicIsExecutionFault(t *testing.T) {
	tk := newMathToolkit(t)
	bad, err := toolkit.NewTool("explode", "", func(context.Context, sumArgs) (explosive, error) {
		return explosive{}, nil
	})
	require.NoError(t, err)
	tk.MustRegister(bad)

	var results []toolkit.CallResult
	require.NotPanics(t, func() {
		results = newDispatcher(tk).Process(context.Background(), []toolkit.CallRequest{
			{Name: "explode", Arguments: map[string]any{"x": 1, "y": 2}, ID: 0},
			{Name: "summation", Arguments: map[string]any{"x": 3, "y": 4}, ID: 1},
		})
	})
	require.Len(t, results, 2)
	require.NotNil(t, results[0].Err)
	assert.ErrorIs(t, results[0].Err, toolkit.ErrExecution)
	assert.Contains(t, results[0].Text(), "Error executing 'explode'")
	assert.Equal(t, "7", results[1].Text())
}

func TestDispatcher_ToolsLogThroughContext(t *testing.T) {
	var buf bytes.Buffer
	tk := toolkit.New("logging", toolkit.WithLogger(zerolog.Nop()))
	d, err := toolkit.NewTool("noisy", "", func(ctx context.Context, a sumArgs) (int, error) {
		zerolog.Ctx(ctx).Debug().Int("x", a.X).Msg("noisy tool ran")
		return a.X, nil
	})
	require.NoError(t, err)
	tk.MustRegister(d)

	dispatcher := toolkit.NewDispatcher(tk, toolkit.WithDispatcherLogger(zerolog.New(&buf).Level(zerolog.DebugLevel)))
	results := dispatcher.Process(context.Background(), []toolkit.CallRequest{{Name: "noisy", Arguments: map[string]any{"x": 9, "y": 0}}})
	require.Len(t, results, 1)
	assert.Contains(t, buf.String(), `"message":"noisy tool ran"`)
}

func TestDispatcher_StrictTypesCheckedOncePerCall(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf).Level(zerolog.TraceLevel)
	validator := toolkit.NewValidator(toolkit.WithStrictTypes(), toolkit.WithValidatorLogger(logger))
	dispatcher := toolkit.NewDispatcher(newMathToolkit(t), toolkit.WithValidator(validator), toolkit.WithDispatcherLogger(zerolog.Nop()))

	results := dispatcher.Process(context.Background(), []toolkit.CallRequest{{Name: "summation", Arguments: map[string]any{"x": 1, "y": 2}}})
	require.Len(t, results, 1)
	assert.True(t, results[0].OK())
	assert.Equal(t, 1, strings.Count(buf.String(), "validating argument types"))
}

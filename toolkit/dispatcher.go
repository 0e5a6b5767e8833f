package toolkit

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/sourcegraph/conc/panics"
)

// --- Processing Methods ---

// Dispatcher executes parsed CallRequests against a Toolkit and serializes the outcomes
// back into the tagged protocol.
//
// Requests are processed strictly in order, one at a time. A failing request never prevents
// the remaining requests of the batch from running, and no failure escapes Process: every
// request yields exactly one CallResult.
type Dispatcher struct {
	toolkit   *Toolkit
	validator *Validator
	logger    zerolog.Logger
}

// DispatcherOption configures a Dispatcher.
type DispatcherOption func(*Dispatcher)

// WithValidator replaces the default Validator.
func WithValidator(v *Validator) DispatcherOption {
	return func(d *Dispatcher) {
		d.validator = v
	}
}

// WithDispatcherLogger sets the logger that receives per-call outcomes.
func WithDispatcherLogger(logger zerolog.Logger) DispatcherOption {
	return func(d *Dispatcher) {
		d.logger = logger
	}
}

// NewDispatcher creates a Dispatcher over tk.
func NewDispatcher(tk *Toolkit, opts ...DispatcherOption) *Dispatcher {
	d := &Dispatcher{
		toolkit: tk,
		logger:  log.Logger,
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.validator == nil {
		d.validator = NewValidator(WithValidatorLogger(d.logger))
	}
	return d
}

// Process runs every request in order and returns one CallResult per request, in the same order.
// Tools that log through zerolog.Ctx receive the dispatcher's logger unless ctx already carries one.
//
// Per request:
//   - an unregistered name yields a NotFound result
//   - a missing required parameter yields an InvalidArguments result without invoking the tool
//   - otherwise the tool runs through the Validator and its value or fault is captured
//   - a value whose rendering panics yields an ExecutionFault result
func (d *Dispatcher) Process(ctx context.Context, reqs []CallRequest) []CallResult {
	if zerolog.Ctx(ctx).GetLevel() == zerolog.Disabled {
		ctx = d.logger.WithContext(ctx)
	}
	results := make([]CallResult, 0, len(reqs))
	for _, req := range reqs {
		res := d.processOne(ctx, req)
		ev := d.logger.Debug()
		if !res.OK() {
			ev = d.logger.Warn().Str("kind", string(res.Err.Code))
		}
		ev.Str("tool", req.Name).Int64("id", req.ID).Str("result", res.Text()).Msg("tool call processed")
		results = append(results, res)
	}
	return results
}

func (d *Dispatcher) processOne(ctx context.Context, req CallRequest) CallResult {
	res := CallResult{ID: req.ID, Name: req.Name}

	desc, ok := d.toolkit.Lookup(req.Name)
	if !ok {
		res.Err = wrapError(KindNotFound, ErrNotFound, "Error: Function '%s' not found in the registry.", req.Name)
		return res
	}
	val, err := d.validator.Run(ctx, desc, req.Arguments)
	if err != nil {
		res.Err = asToolKitError(err)
		return res
	}
	res.Value = val

	var pc panics.Catcher
	pc.Try(func() { res.text = FormatValue(val) })
	if r := pc.Recovered(); r != nil {
		d.logger.Error().Str("tool", desc.name).Interface("panic", r.Value).Msg("tool result could not be rendered")
		res.Value = nil
		res.Err = wrapError(KindExecution, r.AsError(), "Error executing '%s': rendering result: %v", desc.name, r.Value)
		return res
	}
	res.rendered = true
	return res
}

func asToolKitError(err error) *ToolKitError {
	var tkErr *ToolKitError
	if errors.As(err, &tkErr) {
		return tkErr
	}
	return &ToolKitError{Code: KindExecution, Message: err.Error(), Err: err}
}

// RenderResult wraps one result in <tool_response> tags.
func RenderResult(r CallResult) string {
	return ResultTags.Wrap(r.Text())
}

// Render concatenates the result blocks of results, in order.
func Render(results []CallResult) string {
	var sb strings.Builder
	for _, r := range results {
		sb.WriteString(RenderResult(r))
	}
	return sb.String()
}

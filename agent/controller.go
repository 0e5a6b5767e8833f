package agent

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/hamzaessahbaoui/agentic-toolkit/toolkit"
)

// DefaultMaxIterations bounds a ModeReAct run when no bound is configured.
const DefaultMaxIterations = 20

// ErrIterationLimit is returned, together with the partial Result, when a ModeReAct run
// reaches its iteration bound without a terminal response.
var ErrIterationLimit = errors.New("agent: iteration limit reached without a final response")

// Transcript persists conversation messages as they are appended.
// Failures are logged and never interrupt a run.
type Transcript interface {
	Record(ctx context.Context, conversationID string, seq int, m Message) error
}

// Result is the outcome of one run.
type Result struct {
	// Answer is the final answer: the trimmed content of the terminal tag in ModeReAct,
	// the second reply in ModeSingleShot. Empty when Completed is false.
	Answer string
	// Completed is false when the run ended without a final answer.
	Completed bool
	// Iterations counts the model round trips of the tool-calling phase.
	Iterations int
	// Conversation is the full input log of the run.
	Conversation *Conversation
	// Output is the independent answering log of ModeSingleShot, nil otherwise.
	Output *Conversation
}

// Controller runs conversations between a model and a toolkit.
// A Controller holds no per-run state: each run owns a fresh Conversation, so runs on the
// same Controller never share a log. The toolkit must not be mutated while runs are active.
type Controller struct {
	client        ChatClient
	model         string
	toolkit       *toolkit.Toolkit
	dispatcher    *toolkit.Dispatcher
	dispatchOpts  []toolkit.DispatcherOption
	mode          Mode
	maxIterations int
	systemPrompt  string
	logger        zerolog.Logger
	observer      Observer
	transcript    Transcript
}

// Option configures a Controller.
type Option func(*Controller)

// WithMode selects the operating mode (default ModeReAct).
func WithMode(mode Mode) Option {
	return func(c *Controller) { c.mode = mode }
}

// WithMaxIterations sets the ModeReAct iteration bound.
func WithMaxIterations(n int) Option {
	return func(c *Controller) { c.maxIterations = n }
}

// WithSystemPrompt replaces the mode's default system prompt. The first "%s" in tmpl is
// replaced by the tool schemas.
func WithSystemPrompt(tmpl string) Option {
	return func(c *Controller) { c.systemPrompt = tmpl }
}

// WithLogger sets the logger for the controller and its dispatcher.
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Controller) { c.logger = logger }
}

// WithObserver registers fn to receive every state transition.
func WithObserver(fn Observer) Option {
	return func(c *Controller) { c.observer = fn }
}

// WithTranscript records every appended message to t.
func WithTranscript(t Transcript) Option {
	return func(c *Controller) { c.transcript = t }
}

// WithDispatcherOptions passes options through to the toolkit.Dispatcher.
func WithDispatcherOptions(opts ...toolkit.DispatcherOption) Option {
	return func(c *Controller) { c.dispatchOpts = append(c.dispatchOpts, opts...) }
}

// New creates a Controller that talks to model through client and calls tools from tk.
func New(client ChatClient, model string, tk *toolkit.Toolkit, opts ...Option) (*Controller, error) {
	c := &Controller{
		client:        client,
		model:         model,
		toolkit:       tk,
		mode:          ModeReAct,
		maxIterations: DefaultMaxIterations,
		logger:        log.Logger,
	}
	for _, opt := range opts {
		opt(c)
	}

	switch {
	case client == nil:
		return nil, errors.New("agent: chat client is required")
	case tk == nil:
		return nil, errors.New("agent: toolkit is required")
	case c.maxIterations < 1:
		return nil, fmt.Errorf("agent: max iterations must be positive, got %d", c.maxIterations)
	case c.mode != ModeReAct && c.mode != ModeSingleShot:
		return nil, fmt.Errorf("agent: unknown mode %q", c.mode)
	}

	dispatchOpts := append([]toolkit.DispatcherOption{toolkit.WithDispatcherLogger(c.logger)}, c.dispatchOpts...)
	c.dispatcher = toolkit.NewDispatcher(tk, dispatchOpts...)
	return c, nil
}

// Mode returns the configured operating mode.
func (c *Controller) Mode() Mode { return c.mode }

// Run answers message using the configured mode.
func (c *Controller) Run(ctx context.Context, message string) (*Result, error) {
	if c.mode == ModeSingleShot {
		return c.RunSingleShot(ctx, message)
	}
	return c.RunReAct(ctx, message)
}

// RunReAct runs the iterative loop: it continues only while fewer than the configured
// number of iterations have run and no terminal response has been seen.
//
// Model client errors abort the run and are returned wrapped. Reaching the bound returns
// the partial Result and ErrIterationLimit.
func (c *Controller) RunReAct(ctx context.Context, question string) (*Result, error) {
	ctx, r := c.newRun(ctx, c.prompt(ReActPrompt))
	res := &Result{Conversation: r.conv}
	parser := toolkit.NewParser(toolkit.BatchCallTags, toolkit.WithParserLogger(c.logger))

	r.append(ctx, r.conv, Message{Role: RoleUser, Content: toolkit.QuestionTags.Open + question + toolkit.QuestionTags.Close})

	for res.Iterations < c.maxIterations {
		content, err := r.chat(ctx, r.conv)
		if err != nil {
			r.transition(StateDone)
			return res, err
		}
		res.Iterations++

		r.transition(StateParsingOutput)
		if answer, ok := parser.Terminal(content); ok {
			r.append(ctx, r.conv, Message{Role: RoleAssistant, Content: content})
			res.Answer, res.Completed = answer, true
			r.transition(StateDone)
			r.logger.Info().Int("iterations", res.Iterations).Msg("final response received")
			return res, nil
		}
		r.append(ctx, r.conv, Message{Role: RoleAssistant, Content: content})

		r.transition(StateDispatching)
		for _, result := range c.dispatcher.Process(ctx, parser.Parse(content)) {
			r.append(ctx, r.conv, Message{Role: RoleTool, Content: toolkit.RenderResult(result)})
		}
		r.logger.Debug().Int("iteration", res.Iterations).Int("max_iterations", c.maxIterations).Msg("iteration complete")
		r.transition(StateAwaitingModel)
	}

	r.transition(StateDone)
	r.logger.Warn().Int("iterations", res.Iterations).Msg("iteration limit reached without a final response")
	return res, ErrIterationLimit
}

// RunSingleShot sends message once, dispatches every <tool_call> in the reply, then asks the
// model to answer from a second log holding only the message and the call results.
func (c *Controller) RunSingleShot(ctx context.Context, message string) (*Result, error) {
	ctx, r := c.newRun(ctx, c.prompt(ToolPrompt))
	res := &Result{Conversation: r.conv, Output: NewConversation()}
	parser := toolkit.NewParser(toolkit.CallTags, toolkit.WithParserLogger(c.logger))

	r.append(ctx, r.conv, Message{Role: RoleUser, Content: message})
	content, err := r.chat(ctx, r.conv)
	if err != nil {
		r.transition(StateDone)
		return res, err
	}
	res.Iterations = 1
	r.append(ctx, r.conv, Message{Role: RoleAssistant, Content: content})

	r.transition(StateParsingOutput)
	reqs := parser.Parse(content)

	r.transition(StateDispatching)
	r.append(ctx, res.Output, Message{Role: RoleUser, Content: message})
	for _, result := range c.dispatcher.Process(ctx, reqs) {
		r.append(ctx, res.Output, Message{
			Role:    RoleTool,
			Content: fmt.Sprintf("result of call to %s: %s", result.Name, result.Text()),
		})
	}

	r.transition(StateAwaitingModel)
	answer, err := r.chat(ctx, res.Output)
	if err != nil {
		r.transition(StateDone)
		return res, err
	}
	r.append(ctx, res.Output, Message{Role: RoleAssistant, Content: answer})
	res.Answer, res.Completed = answer, true
	r.transition(StateDone)
	return res, nil
}

func (c *Controller) prompt(fallback string) string {
	tmpl := c.systemPrompt
	if tmpl == "" {
		tmpl = fallback
	}
	return renderPrompt(tmpl, c.toolkit.GetToolkitDescription())
}

// --- run ---

// run holds the state of a single controller run.
type run struct {
	c      *Controller
	conv   *Conversation
	state  State
	logger zerolog.Logger
}

// newRun starts a run and returns ctx carrying the run logger, so tools logging through
// zerolog.Ctx tag their lines with the conversation id.
func (c *Controller) newRun(ctx context.Context, systemPrompt string) (context.Context, *run) {
	conv := NewConversation()
	r := &run{
		c:      c,
		conv:   conv,
		state:  StateAwaitingModel,
		logger: c.logger.With().Str("conversation_id", conv.ID()).Str("mode", string(c.mode)).Logger(),
	}
	ctx = r.logger.WithContext(ctx)
	r.append(ctx, conv, Message{Role: RoleSystem, Content: systemPrompt})
	return ctx, r
}

func (r *run) transition(to State) {
	from := r.state
	if from == to {
		return
	}
	r.state = to
	r.logger.Debug().Stringer("from", from).Stringer("to", to).Msg("state transition")
	if r.c.observer != nil {
		r.c.observer(from, to)
	}
}

func (r *run) chat(ctx context.Context, conv *Conversation) (string, error) {
	resp, err := r.c.client.Chat(ctx, r.c.model, conv.Messages())
	if err != nil {
		r.logger.Error().Err(err).Msg("model chat failed")
		return "", fmt.Errorf("agent: model chat: %w", err)
	}
	if resp == nil {
		return "", errors.New("agent: model chat: empty response")
	}
	return resp.Message.Content, nil
}

func (r *run) append(ctx context.Context, conv *Conversation, m Message) {
	r.record(ctx, conv, conv.Append(m))
}

func (r *run) record(ctx context.Context, conv *Conversation, seq int) {
	if r.c.transcript == nil {
		return
	}
	m := conv.messages[seq]
	if err := r.c.transcript.Record(ctx, conv.ID(), seq, m); err != nil {
		r.logger.Warn().Err(err).Int("seq", seq).Msg("transcript record failed")
	}
}

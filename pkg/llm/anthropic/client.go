// Package anthropic adapts the Anthropic Messages API to agent.ChatClient.
//
// The tagged tool protocol travels as plain text: system messages become the request's system
// prompt, tool results are sent as user turns, consecutive turns of the same role are merged,
// and a trailing assistant turn is followed by ContinuePrompt.
package anthropic

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/hamzaessahbaoui/agentic-toolkit/agent"
)

// DefaultMaxTokens caps each completion when no limit is configured.
const DefaultMaxTokens = 1024

// ContinuePrompt is sent as a user turn when the history ends on an assistant turn, which the
// API would otherwise treat as a prefill of the reply.
const ContinuePrompt = "Continue. Call tools inside <tool_calls> tags or give the final answer inside <response> tags."

// Client sends chat requests through the Anthropic SDK.
type Client struct {
	client      *anthropic.Client
	maxTokens   int64
	temperature *float64
	logger      zerolog.Logger
}

var _ agent.ChatClient = (*Client)(nil)

// Option configures a Client.
type Option func(*Client)

// WithMaxTokens sets the completion token limit.
func WithMaxTokens(n int64) Option {
	return func(c *Client) { c.maxTokens = n }
}

// WithTemperature sets the sampling temperature.
func WithTemperature(t float64) Option {
	return func(c *Client) { c.temperature = &t }
}

// WithLogger sets the client logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// New creates a Client. requestOpts are passed to the SDK (API key, base URL, retries, ...).
func New(apiKey string, opts []Option, requestOpts ...option.RequestOption) (*Client, error) {
	if apiKey == "" {
		return nil, errors.New("anthropic: api key is required")
	}
	c := &Client{
		client:    anthropic.NewClient(append([]option.RequestOption{option.WithAPIKey(apiKey)}, requestOpts...)...),
		maxTokens: DefaultMaxTokens,
		logger:    log.Logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Chat implements agent.ChatClient.
func (c *Client) Chat(ctx context.Context, model string, messages []agent.Message) (*agent.ChatResponse, error) {
	system, history := convertMessages(messages)
	if len(history) == 0 {
		return nil, errors.New("anthropic: at least one non-system message is required")
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.F(anthropic.Model(model)),
		MaxTokens: anthropic.Int(c.maxTokens),
		Messages:  anthropic.F(history),
	}
	if len(system) > 0 {
		params.System = anthropic.F(system)
	}
	if c.temperature != nil {
		params.Temperature = anthropic.Float(*c.temperature)
	}

	response, err := c.client.Messages.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("anthropic chat: %w", err)
	}
	c.logger.Debug().
		Str("model", model).
		Int64("input_tokens", response.Usage.InputTokens).
		Int64("output_tokens", response.Usage.OutputTokens).
		Msg("anthropic chat completed")

	var sb strings.Builder
	for _, block := range response.Content {
		switch b := block.AsUnion().(type) {
		case anthropic.TextBlock:
			sb.WriteString(b.Text)
		default:
			c.logger.Debug().Msgf("ignoring content block %T", b)
		}
	}
	return &agent.ChatResponse{Message: agent.Message{Role: agent.RoleAssistant, Content: sb.String()}}, nil
}

// convertMessages splits out the system prompt and merges consecutive turns of one role.
// The converted history always ends on a user turn.
func convertMessages(messages []agent.Message) ([]anthropic.TextBlockParam, []anthropic.MessageParam) {
	var (
		system  []anthropic.TextBlockParam
		history []anthropic.MessageParam
		blocks  []anthropic.ContentBlockParamUnion
		role    agent.Role
	)
	flush := func() {
		if len(blocks) == 0 {
			return
		}
		if role == agent.RoleAssistant {
			history = append(history, anthropic.NewAssistantMessage(blocks...))
		} else {
			history = append(history, anthropic.NewUserMessage(blocks...))
		}
		blocks = nil
	}

	for _, m := range messages {
		r := m.Role
		switch r {
		case agent.RoleSystem:
			system = append(system, anthropic.NewTextBlock(m.Content))
			continue
		case agent.RoleTool:
			r = agent.RoleUser
		}
		if r != role {
			flush()
			role = r
		}
		blocks = append(blocks, anthropic.NewTextBlock(m.Content))
	}
	if role == agent.RoleAssistant {
		flush()
		role = agent.RoleUser
		blocks = append(blocks, anthropic.NewTextBlock(ContinuePrompt))
	}
	flush()
	return system, history
}

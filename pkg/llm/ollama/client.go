// Package ollama adapts the Ollama chat API to agent.ChatClient.
package ollama

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/ollama/ollama/api"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/hamzaessahbaoui/agentic-toolkit/agent"
)

// DefaultHost is the address of a local Ollama server.
const DefaultHost = "http://localhost:11434"

// Client sends non-streaming chat requests to an Ollama server.
type Client struct {
	api     *api.Client
	options map[string]any
	logger  zerolog.Logger
}

var _ agent.ChatClient = (*Client)(nil)

// Option configures a Client.
type Option func(*Client)

// WithOptions sets model options (temperature, num_ctx, ...) sent with every request.
func WithOptions(opts map[string]any) Option {
	return func(c *Client) { c.options = opts }
}

// WithLogger sets the client logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// New creates a Client for the server at host. An empty host means DefaultHost.
// httpClient may be nil.
func New(host string, httpClient *http.Client, opts ...Option) (*Client, error) {
	if host == "" {
		host = DefaultHost
	}
	base, err := url.Parse(host)
	if err != nil {
		return nil, fmt.Errorf("invalid ollama host %q: %w", host, err)
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	c := &Client{
		api:    api.NewClient(base, httpClient),
		logger: log.Logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Chat implements agent.ChatClient.
func (c *Client) Chat(ctx context.Context, model string, messages []agent.Message) (*agent.ChatResponse, error) {
	stream := false
	req := &api.ChatRequest{
		Model:    model,
		Messages: make([]api.Message, 0, len(messages)),
		Stream:   &stream,
		Options:  c.options,
	}
	for _, m := range messages {
		req.Messages = append(req.Messages, api.Message{Role: string(m.Role), Content: m.Content})
	}

	var out *agent.ChatResponse
	err := c.api.Chat(ctx, req, func(resp api.ChatResponse) error {
		if out == nil {
			out = &agent.ChatResponse{Message: agent.Message{Role: agent.Role(resp.Message.Role)}}
		}
		out.Message.Content += resp.Message.Content
		if resp.Done {
			c.logger.Debug().
				Str("model", resp.Model).
				Int("prompt_tokens", resp.PromptEvalCount).
				Int("completion_tokens", resp.EvalCount).
				Msg("ollama chat completed")
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("ollama chat: %w", err)
	}
	if out == nil {
		return nil, errors.New("ollama chat: empty response")
	}
	return out, nil
}

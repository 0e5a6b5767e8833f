// Package agent drives the conversation between a language model and a toolkit.
//
// A Controller sends the conversation to a ChatClient, parses tool calls out of the model's
// tagged reply, dispatches them through a toolkit.Dispatcher and feeds the results back,
// until the model emits a terminal <response> or the iteration bound is reached.
package agent

import "context"

// Role identifies the author of a Message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// Message is one entry of a conversation log.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// ChatResponse is the model's reply to a Chat call.
type ChatResponse struct {
	Message Message `json:"message"`
}

// ChatClient is the contract a model backend must satisfy.
// Implementations live under pkg/llm.
type ChatClient interface {
	Chat(ctx context.Context, model string, messages []Message) (*ChatResponse, error)
}

// ChatClientFunc adapts a function to ChatClient.
type ChatClientFunc func(ctx context.Context, model string, messages []Message) (*ChatResponse, error)

// Chat calls f.
func (f ChatClientFunc) Chat(ctx context.Context, model string, messages []Message) (*ChatResponse, error) {
	return f(ctx, model, messages)
}

package agent

import (
	"slices"

	"github.com/google/uuid"
)

// Conversation is an append-only message log owned by a single run.
// It is not safe for concurrent use.
type Conversation struct {
	id       string
	messages []Message
}

// NewConversation creates an empty conversation with a fresh random ID.
func NewConversation() *Conversation {
	return &Conversation{id: uuid.NewString()}
}

// ID returns the conversation identifier.
func (c *Conversation) ID() string { return c.id }

// Append adds m to the end of the log and returns its sequence number (zero-based).
func (c *Conversation) Append(m Message) int {
	c.messages = append(c.messages, m)
	return len(c.messages) - 1
}

// Messages returns a copy of the log.
func (c *Conversation) Messages() []Message { return slices.Clone(c.messages) }

// Len returns the number of messages.
func (c *Conversation) Len() int { return len(c.messages) }

// Last returns the most recent message.
func (c *Conversation) Last() (Message, bool) {
	if len(c.messages) == 0 {
		return Message{}, false
	}
	return c.messages[len(c.messages)-1], true
}

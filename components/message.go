package components

import (
	cohere "github.com/cohere-ai/cohere-go/v2"
	anthropic "github.com/liushuangls/go-anthropic/v2"
	openai "github.com/sashabaranov/go-openai"

	"github.com/bububa/stockcritique/schema"
)

// MessageRole is the role of the message sender
type MessageRole = string

const (
	SystemRole    MessageRole = "system"
	UserRole      MessageRole = "user"
	AssistantRole MessageRole = "assistant"
)

// Message is a single chat message sent to a provider
type Message struct {
	role    MessageRole
	content schema.Schema
}

// NewMessage returns a new Message
func NewMessage(role MessageRole, content schema.Schema) *Message {
	return &Message{
		role:    role,
		content: content,
	}
}

// Role returns message role
func (m Message) Role() MessageRole {
	return m.role
}

// Content returns message content
func (m Message) Content() schema.Schema {
	return m.content
}

// Text returns the content rendered as prompt text
func (m Message) Text() string {
	return schema.Stringify(m.content)
}

// ToOpenAI convert message to openai ChatCompletionMessage
func (m Message) ToOpenAI(dist *openai.ChatCompletionMessage) {
	dist.Role = m.role
	dist.Content = m.Text()
}

// ToAnthropic convert message to anthropic Message.
// anthropic takes the system prompt outside of the message list, callers skip SystemRole messages.
func (m Message) ToAnthropic(dist *anthropic.Message) {
	if m.role == AssistantRole {
		dist.Role = anthropic.RoleAssistant
	} else {
		dist.Role = anthropic.RoleUser
	}
	dist.Content = []anthropic.MessageContent{anthropic.NewTextMessageContent(m.Text())}
}

// ToCohere convert message to cohere Message
func (m Message) ToCohere(dist *cohere.Message) {
	msg := &cohere.ChatMessage{
		Message: m.Text(),
	}
	switch m.role {
	case SystemRole:
		dist.Role = "SYSTEM"
		dist.System = msg
	case AssistantRole:
		dist.Role = "CHATBOT"
		dist.Chatbot = msg
	default:
		dist.Role = "USER"
		dist.User = msg
	}
}

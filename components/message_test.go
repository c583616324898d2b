package components

import (
	"testing"

	cohere "github.com/cohere-ai/cohere-go/v2"
	anthropic "github.com/liushuangls/go-anthropic/v2"
	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bububa/stockcritique/schema"
)

func TestMessageConversions(t *testing.T) {
	msg := NewMessage(UserRole, schema.String("Tell me about Tesla stock"))

	var o openai.ChatCompletionMessage
	msg.ToOpenAI(&o)
	assert.Equal(t, openai.ChatMessageRoleUser, o.Role)
	assert.Equal(t, "Tell me about Tesla stock", o.Content)

	var a anthropic.Message
	msg.ToAnthropic(&a)
	assert.Equal(t, anthropic.RoleUser, a.Role)
	require.Len(t, a.Content, 1)

	var c cohere.Message
	NewMessage(AssistantRole, schema.String("answer")).ToCohere(&c)
	assert.Equal(t, "CHATBOT", c.Role)
	require.NotNil(t, c.Chatbot)
	assert.Equal(t, "answer", c.Chatbot.Message)
}

func TestLLMUsageMerge(t *testing.T) {
	u := &LLMUsage{InputTokens: 3, OutputTokens: 4}
	u.Merge(&LLMUsage{InputTokens: 1, OutputTokens: 2})
	u.Merge(nil)
	assert.Equal(t, LLMUsage{InputTokens: 4, OutputTokens: 6}, *u)
}

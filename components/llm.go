package components

import (
	cohere "github.com/cohere-ai/cohere-go/v2"
	anthropic "github.com/liushuangls/go-anthropic/v2"
	openai "github.com/sashabaranov/go-openai"
)

// LLMResponse is the provider neutral metadata of a completion
type LLMResponse struct {
	ID      string      `json:"id,omitempty"`
	Role    MessageRole `json:"role,omitempty"`
	Model   string      `json:"model,omitempty"`
	Usage   *LLMUsage   `json:"usage,omitempty"`
	Details any         `json:"content,omitempty"`
}

// FromOpenAI convert response from openai
func (r *LLMResponse) FromOpenAI(v *openai.ChatCompletionResponse) {
	r.ID = v.ID
	r.Role = AssistantRole
	r.Model = v.Model
	r.Usage = &LLMUsage{
		InputTokens:  v.Usage.PromptTokens,
		OutputTokens: v.Usage.CompletionTokens,
	}
	r.Details = v.Choices
}

// FromAnthropic convert response from anthropic
func (r *LLMResponse) FromAnthropic(v *anthropic.MessagesResponse) {
	r.ID = v.ID
	r.Role = AssistantRole
	r.Model = string(v.Model)
	r.Usage = &LLMUsage{
		InputTokens:  v.Usage.InputTokens,
		OutputTokens: v.Usage.OutputTokens,
	}
	r.Details = v.Content
}

// FromCohere convert response from cohere
func (r *LLMResponse) FromCohere(v *cohere.NonStreamedChatResponse) {
	if v.GenerationId != nil {
		r.ID = *v.GenerationId
	}
	r.Role = AssistantRole
	if meta := v.Meta; meta != nil {
		if tokens := meta.Tokens; tokens != nil {
			r.Usage = new(LLMUsage)
			if tokens.InputTokens != nil {
				r.Usage.InputTokens = int(*tokens.InputTokens)
			}
			if tokens.OutputTokens != nil {
				r.Usage.OutputTokens = int(*tokens.OutputTokens)
			}
		}
		if version := meta.ApiVersion; version != nil {
			r.Model = version.Version
		}
	}
	r.Details = v.Text
}

// LLMUsage token usage of one or more provider calls
type LLMUsage struct {
	InputTokens  int `json:"input_tokens,omitempty"`
	OutputTokens int `json:"output_tokens,omitempty"`
}

// Merge adds v to u
func (u *LLMUsage) Merge(v *LLMUsage) {
	if u == nil || v == nil {
		return
	}
	u.InputTokens += v.InputTokens
	u.OutputTokens += v.OutputTokens
}

package agents

import (
	"context"
	"errors"
	"fmt"

	"github.com/bububa/instructor-go/pkg/instructor"
	cohere "github.com/cohere-ai/cohere-go/v2"
	anthropic "github.com/liushuangls/go-anthropic/v2"
	openai "github.com/sashabaranov/go-openai"

	"github.com/bububa/stockcritique/components"
	"github.com/bububa/stockcritique/components/systemprompt"
	"github.com/bububa/stockcritique/components/systemprompt/cot"
	"github.com/bububa/stockcritique/schema"
)

// ErrNoClient is returned when an Agent runs without a language model client
var ErrNoClient = errors.New("agents: no llm client configured")

// Config represents general agents configuration
type Config struct {
	// client Client for interacting with the language model
	client instructor.Instructor
	//	systemPromptGenerator Component for generating system prompts.
	systemPromptGenerator systemprompt.Generator
	// model llm model
	model string
	// temperature Temperature for response generation, typically ranging from 0 to 1.
	temperature float32
	// maxTokens Maximum number of tokens allowed in the response
	maxTokens int
	// name is Agent name presentation
	name string
}

// Agent is a single-shot structured completion agent.
// It keeps no conversation state, so one Agent can serve concurrent callers.
type Agent[I schema.Schema, O schema.Schema] struct {
	Config
}

// NewAgent initializes the Agent
func NewAgent[I schema.Schema, O schema.Schema](options ...Option) *Agent[I, O] {
	ret := new(Agent[I, O])
	for _, opt := range options {
		opt(&ret.Config)
	}
	if ret.systemPromptGenerator == nil {
		ret.systemPromptGenerator = cot.New()
	}
	if ret.maxTokens == 0 {
		ret.maxTokens = 1024
	}
	return ret
}

func (a Agent[I, O]) Name() string {
	return a.name
}

// Ready reports whether the Agent has a client
func (a Agent[I, O]) Ready() bool {
	return a.client != nil
}

// SystemPrompt returns the system prompt with extra context providers rendered
func (a *Agent[I, O]) SystemPrompt(extra ...systemprompt.ContextProvider) string {
	return a.systemPromptGenerator.Generate(extra...)
}

// Run sends the system prompt and userInput to the language model and decodes the reply into output
func (a *Agent[I, O]) Run(ctx context.Context, userInput *I, output *O, llmResp *components.LLMResponse, extra ...systemprompt.ContextProvider) error {
	if a.client == nil {
		return ErrNoClient
	}
	if userInput == nil {
		return errors.New("agents: nil input")
	}
	system := components.NewMessage(components.SystemRole, schema.String(a.SystemPrompt(extra...)))
	user := components.NewMessage(components.UserRole, *userInput)
	if err := a.response(ctx, system, user, output, llmResp); err != nil {
		return fmt.Errorf("%s: %w", a.name, err)
	}
	return nil
}

func (a *Agent[I, O]) response(ctx context.Context, system *components.Message, user *components.Message, output *O, llmResp *components.LLMResponse) error {
	switch clt := a.client.(type) {
	case *instructor.InstructorOpenAI:
		chatReq := openai.ChatCompletionRequest{
			Model:               a.model,
			Temperature:         a.temperature,
			MaxCompletionTokens: a.maxTokens,
		}
		for _, msg := range []*components.Message{system, user} {
			v := new(openai.ChatCompletionMessage)
			msg.ToOpenAI(v)
			chatReq.Messages = append(chatReq.Messages, *v)
		}
		res, err := clt.CreateChatCompletion(ctx, chatReq, output)
		if err != nil {
			return err
		}
		if llmResp != nil {
			llmResp.FromOpenAI(&res)
		}
	case *instructor.InstructorAnthropic:
		chatReq := anthropic.MessagesRequest{
			Model:       anthropic.Model(a.model),
			System:      system.Text(),
			Temperature: &a.temperature,
			MaxTokens:   a.maxTokens,
		}
		v := new(anthropic.Message)
		user.ToAnthropic(v)
		chatReq.Messages = append(chatReq.Messages, *v)
		res, err := clt.CreateMessages(ctx, chatReq, output)
		if err != nil {
			return err
		}
		if llmResp != nil {
			llmResp.FromAnthropic(&res)
		}
	case *instructor.InstructorCohere:
		temperature := float64(a.temperature)
		preamble := system.Text()
		chatReq := cohere.ChatRequest{
			Model:       &a.model,
			Preamble:    &preamble,
			Temperature: &temperature,
			MaxTokens:   &a.maxTokens,
			Message:     user.Text(),
		}
		res, err := clt.Chat(ctx, &chatReq, output)
		if err != nil {
			return err
		}
		if llmResp != nil {
			llmResp.FromCohere(res)
		}
	default:
		return fmt.Errorf("unsupported llm client %T", a.client)
	}
	return nil
}

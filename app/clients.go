package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/bububa/instructor-go/pkg/instructor"
	cohereClient "github.com/cohere-ai/cohere-go/v2/client"
	cohereOption "github.com/cohere-ai/cohere-go/v2/option"
	gemini "github.com/google/generative-ai-go/genai"
	anthropic "github.com/liushuangls/go-anthropic/v2"
	openai "github.com/sashabaranov/go-openai"
	"google.golang.org/api/option"

	"github.com/bububa/stockcritique/components/embedder"
	cohereEmbedder "github.com/bububa/stockcritique/components/embedder/providers/cohere"
	geminiEmbedder "github.com/bububa/stockcritique/components/embedder/providers/gemini"
	openaiEmbedder "github.com/bububa/stockcritique/components/embedder/providers/openai"
	"github.com/bububa/stockcritique/config"
)

const providerNone = "none"

// ErrUnknownProvider is returned for a provider name no client exists for
var ErrUnknownProvider = errors.New("unknown provider")

// NewInstructor returns the structured completion client of the configured provider,
// nil for provider none
func NewInstructor(cfg config.LLMConfig) (instructor.Instructor, error) {
	switch cfg.Provider {
	case providerNone, "":
		return nil, nil
	case "anthropic":
		clientOpts := make([]anthropic.ClientOption, 0, 1)
		if cfg.BaseURL != "" {
			clientOpts = append(clientOpts, anthropic.WithBaseURL(cfg.BaseURL))
		}
		clt := anthropic.NewClient(cfg.APIKey, clientOpts...)
		return instructor.FromAnthropic(clt, instructor.WithMode(instructor.ModeJSON), instructor.WithMaxRetries(3), instructor.WithValidation()), nil
	case "cohere":
		clientOpts := make([]cohereOption.RequestOption, 0, 2)
		clientOpts = append(clientOpts, cohereOption.WithToken(cfg.APIKey))
		if cfg.BaseURL != "" {
			clientOpts = append(clientOpts, cohereOption.WithBaseURL(cfg.BaseURL))
		}
		clt := cohereClient.NewClient(clientOpts...)
		return instructor.FromCohere(clt, instructor.WithMode(instructor.ModeJSON), instructor.WithMaxRetries(3), instructor.WithValidation()), nil
	case "openai":
		clientCfg := openai.DefaultConfig(cfg.APIKey)
		if cfg.BaseURL != "" {
			clientCfg.BaseURL = cfg.BaseURL
		}
		clt := openai.NewClientWithConfig(clientCfg)
		return instructor.FromOpenAI(clt, instructor.WithMode(instructor.ModeJSON), instructor.WithMaxRetries(3), instructor.WithValidation()), nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownProvider, cfg.Provider)
}

// NewEmbedder returns the configured embedder and a func releasing its client,
// a nil embedder for provider none
func NewEmbedder(ctx context.Context, cfg config.EmbedderConfig) (embedder.Embedder, func() error, error) {
	nop := func() error { return nil }
	var opts []embedder.Option
	if cfg.Model != "" {
		opts = append(opts, embedder.WithModel(cfg.Model))
	}
	switch cfg.Provider {
	case providerNone, "":
		return nil, nop, nil
	case "openai":
		clt := openai.NewClient(cfg.APIKey)
		return openaiEmbedder.New(clt, opts...), nop, nil
	case "cohere":
		clt := cohereClient.NewClient(cohereOption.WithToken(cfg.APIKey))
		return cohereEmbedder.New(clt, opts...), nop, nil
	case "gemini":
		clt, err := gemini.NewClient(ctx, option.WithAPIKey(cfg.APIKey))
		if err != nil {
			return nil, nop, fmt.Errorf("gemini: %w", err)
		}
		return geminiEmbedder.New(clt, opts...), clt.Close, nil
	}
	return nil, nop, fmt.Errorf("%w: %s", ErrUnknownProvider, cfg.Provider)
}

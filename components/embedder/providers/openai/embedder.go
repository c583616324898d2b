package openai

import (
	"context"
	"errors"

	openai "github.com/sashabaranov/go-openai"

	"github.com/bububa/stockcritique/components"
	"github.com/bububa/stockcritique/components/embedder"
)

// DefaultModel is used when no model is configured
const DefaultModel = string(openai.SmallEmbedding3)

type Embedder struct {
	*openai.Client

	embedder.Options
}

var _ embedder.Embedder = (*Embedder)(nil)

func New(client *openai.Client, opts ...embedder.Option) *Embedder {
	i := &Embedder{
		Client: client,
	}
	embedder.WithProvider(embedder.ProviderOpenAI)(&i.Options)
	embedder.WithModel(DefaultModel)(&i.Options)
	for _, opt := range opts {
		opt(&i.Options)
	}
	return i
}

func (p *Embedder) Embed(ctx context.Context, text string, embedding *embedder.Embedding, usage *components.LLMUsage) error {
	list, err := p.BatchEmbed(ctx, []string{text}, usage)
	if err != nil {
		return err
	}
	if len(list) == 0 {
		return errors.New("openai: empty embedding response")
	}
	*embedding = list[0]
	return nil
}

func (p *Embedder) BatchEmbed(ctx context.Context, parts []string, usage *components.LLMUsage) ([]embedder.Embedding, error) {
	req := openai.EmbeddingRequest{
		Input: parts,
		Model: openai.EmbeddingModel(p.Model()),
	}
	resp, err := p.CreateEmbeddings(ctx, req)
	if err != nil {
		return nil, err
	}
	usage.Merge(&components.LLMUsage{InputTokens: resp.Usage.PromptTokens})
	ret := make([]embedder.Embedding, 0, len(resp.Data))
	for _, v := range resp.Data {
		if v.Index < 0 || v.Index >= len(parts) {
			continue
		}
		ret = append(ret, embedder.Embedding{
			Object:    parts[v.Index],
			Embedding: embedder.Float64s(v.Embedding),
			Index:     v.Index,
		})
	}
	return ret, nil
}

package gemini

import (
	"context"
	"errors"

	gemini "github.com/google/generative-ai-go/genai"

	"github.com/bububa/stockcritique/components"
	"github.com/bububa/stockcritique/components/embedder"
)

// DefaultModel is used when no model is configured
const DefaultModel = "text-embedding-004"

type Embedder struct {
	*gemini.Client

	embedder.Options
}

var _ embedder.Embedder = (*Embedder)(nil)

func New(client *gemini.Client, opts ...embedder.Option) *Embedder {
	i := &Embedder{
		Client: client,
	}
	embedder.WithProvider(embedder.ProviderGemini)(&i.Options)
	embedder.WithModel(DefaultModel)(&i.Options)
	for _, opt := range opts {
		opt(&i.Options)
	}
	return i
}

func (p *Embedder) Embed(ctx context.Context, text string, embedding *embedder.Embedding, usage *components.LLMUsage) error {
	model := p.EmbeddingModel(p.Model())
	resp, err := model.EmbedContent(ctx, gemini.Text(text))
	if err != nil {
		return err
	}
	if resp.Embedding == nil {
		return errors.New("gemini: empty embedding response")
	}
	embedding.Object = text
	embedding.Embedding = embedder.Float64s(resp.Embedding.Values)
	embedding.Index = 0
	return nil
}

func (p *Embedder) BatchEmbed(ctx context.Context, parts []string, usage *components.LLMUsage) ([]embedder.Embedding, error) {
	model := p.EmbeddingModel(p.Model())
	batch := model.NewBatch()
	for _, part := range parts {
		batch.AddContent(gemini.Text(part))
	}
	resp, err := model.BatchEmbedContents(ctx, batch)
	if err != nil {
		return nil, err
	}
	ret := make([]embedder.Embedding, 0, len(resp.Embeddings))
	for idx, v := range resp.Embeddings {
		if idx >= len(parts) {
			break
		}
		ret = append(ret, embedder.Embedding{
			Object:    parts[idx],
			Embedding: embedder.Float64s(v.Values),
			Index:     idx,
		})
	}
	return ret, nil
}

package cohere

import (
	"context"
	"errors"

	cohere "github.com/cohere-ai/cohere-go/v2"
	cohereClient "github.com/cohere-ai/cohere-go/v2/client"

	"github.com/bububa/stockcritique/components"
	"github.com/bububa/stockcritique/components/embedder"
)

// DefaultModel is used when no model is configured
const DefaultModel = "embed-english-v3.0"

type Embedder struct {
	*cohereClient.Client

	embedder.Options
}

var _ embedder.Embedder = (*Embedder)(nil)

func New(client *cohereClient.Client, opts ...embedder.Option) *Embedder {
	i := &Embedder{
		Client: client,
	}
	embedder.WithProvider(embedder.ProviderCohere)(&i.Options)
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
		return errors.New("cohere: empty embedding response")
	}
	*embedding = list[0]
	return nil
}

func (p *Embedder) BatchEmbed(ctx context.Context, parts []string, usage *components.LLMUsage) ([]embedder.Embedding, error) {
	model := p.Model()
	inputType := cohere.EmbedInputTypeSearchDocument
	req := cohere.EmbedRequest{
		Texts:     parts,
		Model:     &model,
		InputType: &inputType,
	}
	resp, err := p.Client.Embed(ctx, &req)
	if err != nil {
		return nil, err
	}
	respV := resp.GetEmbeddingsFloats()
	if respV == nil {
		return nil, errors.New("cohere: unexpected embedding response type")
	}
	if respV.Meta != nil && respV.Meta.BilledUnits != nil && respV.Meta.BilledUnits.InputTokens != nil {
		usage.Merge(&components.LLMUsage{InputTokens: int(*respV.Meta.BilledUnits.InputTokens)})
	}
	ret := make([]embedder.Embedding, 0, len(respV.Embeddings))
	for idx, v := range respV.Embeddings {
		ret = append(ret, embedder.Embedding{
			Object:    parts[idx],
			Embedding: v,
			Index:     idx,
		})
	}
	return ret, nil
}

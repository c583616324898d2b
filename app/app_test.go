package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/atomic"

	"github.com/bububa/stockcritique/agents/finance"
	"github.com/bububa/stockcritique/components"
	"github.com/bububa/stockcritique/components/document"
	"github.com/bububa/stockcritique/components/embedder"
	"github.com/bububa/stockcritique/components/vectordb/engines/chromem"
	"github.com/bububa/stockcritique/components/vectordb/engines/memory"
	"github.com/bububa/stockcritique/config"
	"github.com/bububa/stockcritique/mcp"
)

func offlineConfig(t *testing.T) *config.Config {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "apple-2023-10k.txt"), []byte("Revenue: $383,285 million"), 0o644))
	cfg := config.DefaultConfig()
	cfg.LLM.Provider = "none"
	cfg.Embedder.Provider = "none"
	cfg.Corpus.Dir = dir
	return cfg
}

func TestNewInstructor(t *testing.T) {
	clt, err := NewInstructor(config.LLMConfig{Provider: "none"})
	require.NoError(t, err)
	assert.Nil(t, clt)
	for _, provider := range []string{"openai", "anthropic", "cohere"} {
		t.Run(provider, func(t *testing.T) {
			clt, err := NewInstructor(config.LLMConfig{Provider: provider, APIKey: "key", BaseURL: "http://localhost:9999"})
			require.NoError(t, err)
			assert.NotNil(t, clt)
		})
	}
	_, err = NewInstructor(config.LLMConfig{Provider: "llama"})
	assert.ErrorIs(t, err, ErrUnknownProvider)
}

func TestNewEmbedder(t *testing.T) {
	emb, closeFn, err := NewEmbedder(context.Background(), config.EmbedderConfig{Provider: "none"})
	require.NoError(t, err)
	assert.Nil(t, emb)
	assert.NoError(t, closeFn())

	emb, _, err = NewEmbedder(context.Background(), config.EmbedderConfig{Provider: "openai", Model: "text-embedding-3-large", APIKey: "key"})
	require.NoError(t, err)
	assert.Equal(t, embedder.ProviderOpenAI, emb.Provider())
	assert.Equal(t, "text-embedding-3-large", emb.Model())

	emb, _, err = NewEmbedder(context.Background(), config.EmbedderConfig{Provider: "cohere", APIKey: "key"})
	require.NoError(t, err)
	assert.Equal(t, embedder.ProviderCohere, emb.Provider())

	_, _, err = NewEmbedder(context.Background(), config.EmbedderConfig{Provider: "voyage"})
	assert.ErrorIs(t, err, ErrUnknownProvider)
}

func TestNewEngine(t *testing.T) {
	engine, err := NewEngine(context.Background(), config.VectorDBConfig{Engine: "memory", TopK: 4})
	require.NoError(t, err)
	assert.IsType(t, &memory.Engine{}, engine)

	engine, err = NewEngine(context.Background(), config.VectorDBConfig{Engine: "chromem", Path: filepath.Join(t.TempDir(), "index")})
	require.NoError(t, err)
	assert.IsType(t, &chromem.Engine{}, engine)

	_, err = NewEngine(context.Background(), config.VectorDBConfig{Engine: "redis"})
	assert.Error(t, err)
}

func TestNewCorpus(t *testing.T) {
	corpus, err := NewCorpus(context.Background(), config.CorpusConfig{Dir: "./filings"})
	require.NoError(t, err)
	dir, ok := corpus.(*document.Dir)
	require.True(t, ok)
	assert.Equal(t, "./filings", dir.Root())

	corpus, err = NewCorpus(context.Background(), config.CorpusConfig{})
	require.NoError(t, err)
	assert.Nil(t, corpus)

	corpus, err = NewCorpus(context.Background(), config.CorpusConfig{Dir: "./filings", Bucket: "filings", Region: "us-east-1"})
	require.NoError(t, err)
	assert.IsType(t, &document.S3Bucket{}, corpus)
}

func TestNewLogger(t *testing.T) {
	logger, err := NewLogger(config.LogConfig{Level: "warn", Format: "console", OutputPaths: []string{"stderr"}}, false)
	require.NoError(t, err)
	assert.False(t, logger.Core().Enabled(-1))
	assert.True(t, logger.Core().Enabled(1))

	logger, err = NewLogger(config.LogConfig{Level: "warn"}, true)
	require.NoError(t, err)
	assert.True(t, logger.Core().Enabled(-1), "debug overrides the configured level")

	_, err = NewLogger(config.LogConfig{Level: "loud"}, false)
	assert.Error(t, err)
}

func TestAppOffline(t *testing.T) {
	ctx := context.Background()
	a, err := New(ctx, offlineConfig(t), nil)
	require.NoError(t, err)
	t.Cleanup(func() { assert.NoError(t, a.Close()) })

	_, err = a.Index(ctx)
	assert.ErrorIs(t, err, ErrNoEmbedder)
	a.Start(ctx)
	ticker, ok := a.Router.Extractor().Table().Ticker("apple")
	assert.True(t, ok)
	assert.Equal(t, "AAPL", ticker)

	resp, err := a.Router.HandleQuery(ctx, "hello there", mcp.SourceCLI)
	require.NoError(t, err)
	require.Len(t, resp.Payload, 1)
	assert.Equal(t, mcp.AgentGeneral, resp.Payload[0].Agent)
	assert.True(t, resp.Payload[0].Failed(), "general agent has no LLM client")
	assert.Equal(t, mcp.StatusFailed, resp.Status)
}

func TestAppWatchDisabled(t *testing.T) {
	ctx := context.Background()
	a, err := New(ctx, offlineConfig(t), nil)
	require.NoError(t, err)
	defer a.Close()
	assert.NoError(t, a.Watch(ctx))
}

func TestAppBadEntities(t *testing.T) {
	cfg := offlineConfig(t)
	cfg.Entities.File = filepath.Join(t.TempDir(), "missing.yaml")
	_, err := New(context.Background(), cfg, nil)
	assert.Error(t, err)
}

// countingEmbedder embeds every text onto the same vector and counts batch calls
type countingEmbedder struct {
	batches atomic.Int64
}

func (e *countingEmbedder) Provider() embedder.Provider { return embedder.ProviderOpenAI }

func (e *countingEmbedder) Model() string { return "fake" }

func (e *countingEmbedder) Embed(_ context.Context, text string, out *embedder.Embedding, _ *components.LLMUsage) error {
	*out = embedder.Embedding{Object: text, Embedding: []float64{1, 1}}
	return nil
}

func (e *countingEmbedder) BatchEmbed(_ context.Context, parts []string, _ *components.LLMUsage) ([]embedder.Embedding, error) {
	e.batches.Inc()
	ret := make([]embedder.Embedding, 0, len(parts))
	for i, p := range parts {
		ret = append(ret, embedder.Embedding{Object: p, Embedding: []float64{1, 1}, Index: i})
	}
	return ret, nil
}

func TestAppStartResumesIndex(t *testing.T) {
	ctx := context.Background()
	a, err := New(ctx, offlineConfig(t), nil)
	require.NoError(t, err)
	t.Cleanup(func() { assert.NoError(t, a.Close()) })

	emb := new(countingEmbedder)
	engine := memory.New()
	a.embed = emb
	a.Finance = finance.New(emb, engine)
	a.Start(ctx)
	assert.Equal(t, int64(1), emb.batches.Load(), "first start builds the index")

	a.Finance = finance.New(emb, engine)
	a.Start(ctx)
	assert.Equal(t, int64(1), emb.batches.Load(), "second start serves the stored index")
	assert.Equal(t, []string{"apple"}, a.Finance.Companies())
}

package chromem

import (
	"context"
	"testing"

	"github.com/philippgille/chromem-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bububa/stockcritique/components/embedder"
	"github.com/bububa/stockcritique/components/vectordb"
)

func TestEngine(t *testing.T) {
	ctx := context.Background()
	engine := New(chromem.NewDB(), vectordb.WithTopK(10))
	require.NoError(t, engine.Insert(ctx, "docs",
		vectordb.Record{ID: "a", Embedding: embedder.Embedding{Object: "tesla revenue", Embedding: []float64{1, 0}, Meta: map[string]string{"company": "tesla"}}},
		vectordb.Record{ID: "b", Embedding: embedder.Embedding{Object: "apple revenue", Embedding: []float64{0, 1}, Meta: map[string]string{"company": "apple"}}},
	))

	got, err := engine.Search(ctx, []float64{1, 0}, vectordb.SearchWithCollection("docs"))
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "a", got[0].ID)
	assert.InDelta(t, 1.0, got[0].Score, 1e-6)
	assert.Equal(t, "tesla revenue", got[0].Embedding.Object)

	got, err = engine.Search(ctx, []float64{1, 0},
		vectordb.SearchWithCollection("docs"),
		vectordb.SearchWithMeta(map[string]string{"company": "apple"}))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "b", got[0].ID)

	got, err = engine.Search(ctx, []float64{1, 0}, vectordb.SearchWithCollection("empty"))
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestCountPersistent(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	engine, err := NewPersistent(dir)
	require.NoError(t, err)
	n, err := engine.Count(ctx, "docs")
	require.NoError(t, err)
	assert.Zero(t, n)
	require.NoError(t, engine.Insert(ctx, "docs",
		vectordb.Record{ID: "a", Embedding: embedder.Embedding{Object: "tesla revenue", Embedding: []float64{1, 0}}},
		vectordb.Record{ID: "b", Embedding: embedder.Embedding{Object: "apple revenue", Embedding: []float64{0, 1}}},
	))

	reopened, err := NewPersistent(dir)
	require.NoError(t, err)
	n, err = reopened.Count(ctx, "docs")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}
